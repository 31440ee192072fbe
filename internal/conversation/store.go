// Package conversation owns the in-memory conversation collection and the
// active-conversation pointer, and keeps the persisted copy in sync.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"royal-terminal/internal/logging"
	"royal-terminal/internal/models"
	"royal-terminal/internal/storage"
)

var ErrNotFound = errors.New("conversation not found")

const DefaultDebounce = 250 * time.Millisecond

// PersistStatus reports the outcome of the most recent save.
type PersistStatus struct {
	LastSaved time.Time
	LastErr   error
	Pending   bool
	Saves     int
}

type Option func(*Store)

// WithDebounce sets how long saves are coalesced. Zero saves after every
// change before the mutating call returns.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.debounce = d
	}
}

type Store struct {
	mu            sync.Mutex
	conversations []models.Conversation
	activeID      string
	chatStarted   bool
	version       uint64

	persister storage.ConversationStore
	debounce  time.Duration
	timer     *time.Timer
	status    PersistStatus
	closed    bool

	// saveMu keeps saves ordered so an older snapshot never lands last
	saveMu sync.Mutex
}

func NewStore(persister storage.ConversationStore, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		debounce:  DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize installs the persisted conversations, or a single blank one when
// nothing could be loaded.
func (s *Store) Initialize(ctx context.Context) {
	loaded, err := s.persister.Load(ctx)
	if err != nil {
		logging.Error("Failed to load conversations: %v", err)
		loaded = nil
	}

	if len(loaded) == 0 {
		s.Create()
		return
	}

	s.mu.Lock()
	s.conversations = loaded
	s.activeID = loaded[0].ID
	s.version++
	s.mu.Unlock()

	logging.Info("Loaded %d conversations", len(loaded))
	s.changed()
}

// Create prepends a blank conversation and makes it active.
func (s *Store) Create() models.Conversation {
	s.mu.Lock()
	conv := s.createLocked()
	s.mu.Unlock()

	s.changed()
	return conv
}

func (s *Store) createLocked() models.Conversation {
	conv := models.NewConversation()
	s.conversations = append([]models.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.chatStarted = false
	s.version++
	return conv
}

// Select makes id active. Membership is not checked.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.activeID = id
	s.version++
	s.mu.Unlock()
}

// Delete removes id. If it was active the first remaining conversation becomes
// active; an emptied collection gets a fresh blank conversation.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	remaining := make([]models.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	s.conversations = remaining
	s.version++

	switch {
	case len(remaining) == 0:
		s.createLocked()
	case s.activeID == id:
		s.activeID = remaining[0].ID
	}
	s.mu.Unlock()

	s.changed()
}

// AppendMessage appends msg to conversation id and returns the updated
// conversation.
func (s *Store) AppendMessage(id string, msg models.Message) (models.Conversation, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Conversation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := s.conversations[idx].WithMessage(msg)
	s.conversations[idx] = updated
	s.version++
	s.mu.Unlock()

	s.changed()
	return updated, nil
}

func (s *Store) indexLocked(id string) int {
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Get returns conversation id.
func (s *Store) Get(id string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Conversation{}, false
	}
	return s.conversations[idx], true
}

// Current returns the active conversation.
func (s *Store) Current() (models.Conversation, bool) {
	return s.Get(s.ActiveID())
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Conversations returns a copy of the collection, newest first.
func (s *Store) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Snapshot returns the collection and the active id read together.
func (s *Store) Snapshot() ([]models.Conversation, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out, s.activeID
}

func (s *Store) ChatStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatStarted
}

func (s *Store) SetChatStarted(started bool) {
	s.mu.Lock()
	if s.chatStarted != started {
		s.chatStarted = started
		s.version++
	}
	s.mu.Unlock()
}

// Version increases on every state change. Views compare it to skip redraws.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) PersistStatus() PersistStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// changed schedules a save of the current collection.
func (s *Store) changed() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.status.Pending = true

	if s.debounce <= 0 {
		s.mu.Unlock()
		s.Flush(context.Background())
		return
	}

	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, func() {
			s.Flush(context.Background())
		})
	}
	s.mu.Unlock()
}

// Flush writes any pending change now.
func (s *Store) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.status.Pending {
		s.mu.Unlock()
		return nil
	}
	snapshot := models.NonEmpty(s.conversations)
	s.status.Pending = false
	s.mu.Unlock()

	err := s.persister.Save(ctx, snapshot)

	s.mu.Lock()
	s.status.LastErr = err
	if err == nil {
		s.status.LastSaved = time.Now()
		s.status.Saves++
	}
	s.mu.Unlock()

	if err != nil {
		logging.L().Error("Failed to save conversations",
			zap.Error(err),
			zap.Int("conversations", len(snapshot)),
		)
		return fmt.Errorf("failed to save conversations: %w", err)
	}
	logging.Debug("Saved %d conversations", len(snapshot))
	return nil
}

// Close flushes pending changes and stops further saves.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	return err
}
