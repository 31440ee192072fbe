// Package exchange drives one prompt/response cycle against the backend.
package exchange

import (
	"context"
	"fmt"
	"sync"

	"royal-terminal/internal/backend"
	"royal-terminal/internal/catalog"
	"royal-terminal/internal/conversation"
	"royal-terminal/internal/logging"
	"royal-terminal/internal/models"
)

const (
	textPending = "Generating Response..."
	textSuccess = "Response received"
	textFailure = "Failed to get response"
)

type Generator interface {
	Generate(ctx context.Context, req backend.Request) (backend.Response, error)
}

type HealthChecker interface {
	Health(ctx context.Context) error
}

// Result describes how an exchange ended. Reply is nil when nothing was
// appended.
type Result struct {
	ConversationID string
	Reply          *models.Message
	Err            error
	Cancelled      bool
}

type task struct {
	id     uint64
	cancel context.CancelFunc
}

type Orchestrator struct {
	store    *conversation.Store
	client   Generator
	catalog  *catalog.Catalog
	notifier Notifier

	mu       sync.Mutex
	inflight map[string]*task
	seq      uint64
}

func NewOrchestrator(store *conversation.Store, client Generator, cat *catalog.Catalog, notifier Notifier) *Orchestrator {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Orchestrator{
		store:    store,
		client:   client,
		catalog:  cat,
		notifier: notifier,
		inflight: make(map[string]*task),
	}
}

// Submit runs one exchange on conversation convID. The returned error is set
// only when the exchange could not start; request failures are reported in
// Result.Err and keep the user message in history.
func (o *Orchestrator) Submit(ctx context.Context, convID string, sub backend.Submission) (Result, error) {
	result := Result{ConversationID: convID}
	defer o.store.SetChatStarted(true)

	model, err := o.catalog.Lookup(sub.ModelLabel)
	if err != nil {
		o.notifier.Notify(Notification{Kind: NotifyFailure, Text: textFailure})
		return result, fmt.Errorf("cannot start exchange: %w", err)
	}

	conv, err := o.store.AppendMessage(convID, models.NewUserMessage(sub.Prompt, sub.ModelLabel))
	if err != nil {
		return result, fmt.Errorf("cannot start exchange: %w", err)
	}

	req := backend.BuildRequest(conv, sub, model)

	taskCtx, t := o.begin(ctx, convID)
	defer o.finish(convID, t)

	pendingID := fmt.Sprintf("exchange-%d", t.id)
	o.notifier.Notify(Notification{Kind: NotifyPending, ID: pendingID, Text: textPending})
	logging.Info("Exchange %d started: conversation=%s model=%s history=%d", t.id, convID, model.BackendModel, len(req.Messages))

	resp, err := o.client.Generate(taskCtx, req)
	o.notifier.Notify(Notification{Kind: NotifyDismiss, ID: pendingID})

	if o.superseded(convID, t) || taskCtx.Err() != nil {
		logging.Info("Exchange %d cancelled", t.id)
		result.Cancelled = true
		return result, nil
	}

	if err != nil {
		logging.Error("Exchange %d failed: %v", t.id, err)
		o.notifier.Notify(Notification{Kind: NotifyFailure, Text: textFailure})
		result.Err = err
		return result, nil
	}

	if resp.Message == "" && resp.ImageBase64 == "" {
		logging.Info("Exchange %d returned an empty response", t.id)
		return result, nil
	}

	reply := models.NewAssistantMessage(resp.Message, resp.ImageBase64, sub.ModelLabel)
	if _, err := o.store.AppendMessage(convID, reply); err != nil {
		// The conversation was deleted while the request was in flight
		logging.Error("Exchange %d reply dropped: %v", t.id, err)
		result.Err = err
		return result, nil
	}

	o.notifier.Notify(Notification{Kind: NotifySuccess, Text: textSuccess})
	result.Reply = &reply
	return result, nil
}

// begin registers a new task for convID, cancelling any pending one.
func (o *Orchestrator) begin(ctx context.Context, convID string) (context.Context, *task) {
	taskCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, ok := o.inflight[convID]; ok {
		prev.cancel()
	}
	o.seq++
	t := &task{id: o.seq, cancel: cancel}
	o.inflight[convID] = t
	return taskCtx, t
}

func (o *Orchestrator) superseded(convID string, t *task) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[convID] != t
}

func (o *Orchestrator) finish(convID string, t *task) {
	o.mu.Lock()
	defer o.mu.Unlock()

	t.cancel()
	if o.inflight[convID] == t {
		delete(o.inflight, convID)
	}
}

// Pending reports whether convID has an exchange in flight.
func (o *Orchestrator) Pending(convID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[convID]
	return ok
}

// Cancel aborts the pending exchange on convID, if any.
func (o *Orchestrator) Cancel(convID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if t, ok := o.inflight[convID]; ok {
		t.cancel()
		delete(o.inflight, convID)
	}
}

func (o *Orchestrator) CancelAll() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, t := range o.inflight {
		t.cancel()
		delete(o.inflight, id)
	}
}

// Probe checks the backend once and logs the outcome.
func Probe(ctx context.Context, hc HealthChecker) error {
	if err := hc.Health(ctx); err != nil {
		logging.Error("Backend connection error: %v", err)
		return err
	}
	logging.Info("Backend reachable")
	return nil
}
