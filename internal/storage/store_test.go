package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"royal-terminal/internal/config"
	"royal-terminal/internal/models"
)

func openStores(t *testing.T) map[string]ConversationStore {
	t.Helper()

	badgerStore, err := NewInMemoryBadgerStore()
	if err != nil {
		t.Fatalf("failed to open badger store: %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "royal.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}

	stores := map[string]ConversationStore{
		"badger": badgerStore,
		"sqlite": sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func sampleConversations() []models.Conversation {
	first := models.NewConversation().
		WithMessage(models.NewUserMessage("Hello", "GPT 4o")).
		WithMessage(models.NewAssistantMessage("Hi there", "", "GPT 4o")).
		WithMessage(models.NewUserMessage("Draw a cat", "Flux")).
		WithMessage(models.NewAssistantMessage("", "aW1hZ2U=", "Flux"))
	second := models.NewConversation().
		WithMessage(models.NewUserMessage("Second", "Llama 4"))

	return []models.Conversation{second, first}
}

func TestLoadWithoutData(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got != nil {
				t.Errorf("expected nil, got %+v", got)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	want := sampleConversations()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("expected %d conversations, got %d", len(want), len(got))
			}

			for i := range want {
				if got[i].ID != want[i].ID || got[i].Title != want[i].Title {
					t.Errorf("conversation %d mismatch: got %s/%q", i, got[i].ID, got[i].Title)
				}
				if len(got[i].Messages) != len(want[i].Messages) {
					t.Fatalf("conversation %d: expected %d messages, got %d", i, len(want[i].Messages), len(got[i].Messages))
				}
				for j := range want[i].Messages {
					if got[i].Messages[j] != want[i].Messages[j] {
						t.Errorf("conversation %d message %d: got %+v, want %+v", i, j, got[i].Messages[j], want[i].Messages[j])
					}
				}
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, sampleConversations()); err != nil {
				t.Fatal(err)
			}
			if err := store.Save(ctx, nil); err != nil {
				t.Fatal(err)
			}

			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got != nil {
				t.Errorf("expected empty list to load as nil, got %d conversations", len(got))
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr error
	}{
		{name: "badger", cfg: config.StorageConfig{Driver: config.DriverBadger, Path: filepath.Join(dir, "badger")}},
		{name: "sqlite", cfg: config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "sql", "royal.db")}},
		{name: "unknown", cfg: config.StorageConfig{Driver: "redis", Path: dir}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer store.Close()

			if err := store.Save(context.Background(), sampleConversations()); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		})
	}
}
