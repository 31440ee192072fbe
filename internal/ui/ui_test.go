package ui

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"royal-terminal/internal/backend"
	"royal-terminal/internal/catalog"
	"royal-terminal/internal/conversation"
	"royal-terminal/internal/exchange"
	"royal-terminal/internal/models"
)

// 1x1 PNG
const pngFixture = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type memPersister struct {
	mu    sync.Mutex
	saved []models.Conversation
}

func (m *memPersister) Save(ctx context.Context, c []models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = c
	return nil
}

func (m *memPersister) Load(ctx context.Context) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, nil
}

func (m *memPersister) Close() error { return nil }

type stubGenerator struct {
	mu       sync.Mutex
	resp     backend.Response
	err      error
	requests []backend.Request
}

func (g *stubGenerator) Generate(ctx context.Context, req backend.Request) (backend.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.resp, g.err
}

func newTestChatView(t *testing.T, gen *stubGenerator) (ChatViewModel, *conversation.Store) {
	t.Helper()
	store := conversation.NewStore(&memPersister{}, conversation.WithDebounce(0))
	store.Initialize(context.Background())

	cat, err := catalog.New(catalog.DefaultModels)
	if err != nil {
		t.Fatal(err)
	}
	orch := exchange.NewOrchestrator(store, gen, cat, nil)
	return NewChatViewModel(context.Background(), store, orch, cat, t.TempDir(), 120, 40), store
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestChatViewSubmit(t *testing.T) {
	gen := &stubGenerator{resp: backend.Response{Message: "**hi** there"}}
	m, store := newTestChatView(t, gen)

	m.textarea.SetValue("hello royal")
	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected an exchange command")
	}
	if m.textarea.Value() != "" {
		t.Error("composer should be cleared on submit")
	}

	msg := cmd()
	finished, ok := msg.(ExchangeFinished)
	if !ok {
		t.Fatalf("expected ExchangeFinished, got %T", msg)
	}
	if finished.Err != nil || finished.Result.Reply == nil {
		t.Fatalf("unexpected result %+v", finished)
	}

	m, _ = m.Update(finished)

	conv, _ := store.Current()
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	if conv.Title != "hello royal" {
		t.Errorf("unexpected title %q", conv.Title)
	}
	if !store.ChatStarted() {
		t.Error("chat should be started after an exchange")
	}
	if gen.requests[0].Model != "gpt-4o" {
		t.Errorf("expected default model, got %q", gen.requests[0].Model)
	}
	if strings.Contains(m.viewport.View(), WelcomeBanner) {
		t.Error("banner should be hidden once the chat started")
	}
}

func TestChatViewIgnoresBlankPrompt(t *testing.T) {
	m, store := newTestChatView(t, &stubGenerator{})

	m.textarea.SetValue("   ")
	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd != nil {
		t.Error("blank prompt must not start an exchange")
	}
	conv, _ := store.Current()
	if len(conv.Messages) != 0 {
		t.Error("blank prompt must not touch the conversation")
	}
}

func TestChatViewShowsBanner(t *testing.T) {
	m, _ := newTestChatView(t, &stubGenerator{})
	if !strings.Contains(m.viewport.View(), WelcomeBanner) {
		t.Error("expected welcome banner before the first exchange")
	}
}

func writePNG(t *testing.T, name string) string {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(pngFixture)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestChatViewSendsImageAsFileForTextModel(t *testing.T) {
	gen := &stubGenerator{resp: backend.Response{Message: "a diagram"}}
	m, _ := newTestChatView(t, gen)
	path := writePNG(t, "photo.png")

	m, _ = m.Update(ModelPicked{Label: "Deepseek R1"})
	m.textarea.SetValue("describe " + path)
	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("expected an exchange, status %q", m.Status())
	}

	if finished, ok := cmd().(ExchangeFinished); !ok || finished.Err != nil {
		t.Fatalf("unexpected result %+v", finished)
	}

	req := gen.requests[0]
	if req.ImageBase64 != "" {
		t.Error("text-only model must not receive a prompt image")
	}
	if len(req.FileBase64) != 1 || !strings.HasSuffix(req.FileBase64[0], "*photo.png") {
		t.Errorf("expected the image as a file attachment, got %v", req.FileBase64)
	}
}

func TestChatViewRejectsImageForImageGenerationModel(t *testing.T) {
	gen := &stubGenerator{}
	m, _ := newTestChatView(t, gen)
	path := writePNG(t, "photo.png")

	m, _ = m.Update(ModelPicked{Label: "Flux"})
	m.textarea.SetValue("restyle " + path)
	m, cmd := m.Update(keyMsg(tea.KeyEnter))

	if cmd != nil {
		t.Error("expected no exchange for an image on an image-generation model")
	}
	if !strings.Contains(m.Status(), "does not accept images") {
		t.Errorf("unexpected status %q", m.Status())
	}
	if m.textarea.Value() == "" {
		t.Error("input should be kept for editing")
	}
}

func TestChatViewSearchToggle(t *testing.T) {
	gen := &stubGenerator{resp: backend.Response{Message: "ok"}}
	m, _ := newTestChatView(t, gen)

	m, _ = m.Update(keyMsg(tea.KeyCtrlT))
	if !m.UseSearch() {
		t.Fatal("ctrl+t should enable search")
	}

	m.textarea.SetValue("news")
	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	cmd()
	if !gen.requests[0].UseSearch {
		t.Error("request should carry the search flag")
	}
}

func TestChatViewFailureStatus(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	m, store := newTestChatView(t, gen)

	m.textarea.SetValue("hello")
	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	m, _ = m.Update(cmd())

	if !strings.Contains(m.Status(), "boom") {
		t.Errorf("unexpected status %q", m.Status())
	}
	conv, _ := store.Current()
	if len(conv.Messages) != 1 {
		t.Errorf("user message should remain, got %d messages", len(conv.Messages))
	}
}

func TestChatViewModelPicker(t *testing.T) {
	m, _ := newTestChatView(t, &stubGenerator{})

	m, _ = m.Update(keyMsg(tea.KeyCtrlL))
	if !m.PickerVisible() {
		t.Fatal("ctrl+l should open the picker")
	}

	m, _ = m.Update(keyMsg(tea.KeyDown))
	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	picked, ok := cmd().(ModelPicked)
	if !ok || picked.Label != "Deepseek R1" {
		t.Fatalf("unexpected pick %+v", picked)
	}

	m, _ = m.Update(picked)
	if m.PickerVisible() || m.ModelLabel() != "Deepseek R1" {
		t.Errorf("picker should close and select, visible=%v model=%q", m.PickerVisible(), m.ModelLabel())
	}
}

func TestChatViewSaveImageWithoutImage(t *testing.T) {
	m, _ := newTestChatView(t, &stubGenerator{})

	m, cmd := m.Update(keyMsg(tea.KeyCtrlO))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = m.Update(cmd())
	if !strings.Contains(m.Status(), "no image") {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestSidebarEmitsActions(t *testing.T) {
	first := models.NewConversation()
	second := models.NewConversation()

	s := NewSidebarModel(SidebarWidth, 30)
	s.SetConversations([]models.Conversation{first, second}, second.ID)
	if s.SelectedID() != second.ID {
		t.Fatalf("cursor should start on the active conversation")
	}

	_, cmd := s.Update(keyMsg(tea.KeyEnter))
	if sel, ok := cmd().(ConversationSelected); !ok || sel.ID != second.ID {
		t.Errorf("unexpected enter result %+v", sel)
	}

	_, cmd = s.Update(keyMsg(tea.KeyCtrlD))
	if del, ok := cmd().(DeleteConversation); !ok || del.ID != second.ID {
		t.Errorf("unexpected ctrl+d result %+v", del)
	}

	_, cmd = s.Update(keyMsg(tea.KeyEsc))
	if _, ok := cmd().(SidebarClosed); !ok {
		t.Error("esc should close the sidebar")
	}
}

func TestToastLifecycle(t *testing.T) {
	m := NewToastModel()

	m, cmd := m.Update(NotificationReceived{Notification: exchange.Notification{
		Kind: exchange.NotifyPending, ID: "exchange-1", Text: "Generating Response...",
	}})
	if cmd != nil {
		t.Error("pending toasts must not expire on their own")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 toast, got %d", m.Len())
	}

	m, _ = m.Update(NotificationReceived{Notification: exchange.Notification{
		Kind: exchange.NotifyDismiss, ID: "exchange-1",
	}})
	if m.Len() != 0 {
		t.Fatalf("dismiss should remove the pending toast")
	}

	m, cmd = m.Update(NotificationReceived{Notification: exchange.Notification{
		Kind: exchange.NotifySuccess, Text: "Response received",
	}})
	if cmd == nil {
		t.Fatal("success toast should schedule its expiry")
	}
	if got := m.Texts(); len(got) != 1 || got[0] != "Response received" {
		t.Fatalf("unexpected toasts %v", got)
	}

	m, _ = m.Update(toastExpired{id: m.toasts[0].id})
	if m.Len() != 0 {
		t.Error("expired toast should be removed")
	}
}

func TestNotifierNeverBlocks(t *testing.T) {
	notifier, ch := NewNotifier(1)

	notifier.Notify(exchange.Notification{Kind: exchange.NotifySuccess, Text: "first"})
	notifier.Notify(exchange.Notification{Kind: exchange.NotifySuccess, Text: "second"})

	msg := WaitForNotification(ch)()
	got, ok := msg.(NotificationReceived)
	if !ok || got.Notification.Text != "first" {
		t.Errorf("unexpected message %+v", msg)
	}
	if len(ch) != 0 {
		t.Error("overflowing notification should be dropped")
	}
}
