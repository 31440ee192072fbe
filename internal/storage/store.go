package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"royal-terminal/internal/config"
	"royal-terminal/internal/models"
)

// ConversationsKey is the only key the stores read or write.
const ConversationsKey = "conversations"

var ErrUnknownDriver = errors.New("unknown storage driver")

type ConversationStore interface {
	// Save replaces the stored conversation list
	Save(ctx context.Context, conversations []models.Conversation) error

	// Load returns the stored conversations, or nil if nothing was saved yet
	Load(ctx context.Context) ([]models.Conversation, error)

	// Close closes the underlying database
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(cfg config.StorageConfig) (ConversationStore, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return NewBadgerStore(cfg.Path)
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func encodeConversations(conversations []models.Conversation) ([]byte, error) {
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	data, err := json.Marshal(conversations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversations: %w", err)
	}
	return data, nil
}

func decodeConversations(data []byte) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversations: %w", err)
	}
	if len(conversations) == 0 {
		return nil, nil
	}
	return conversations, nil
}
