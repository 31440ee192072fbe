package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"royal-terminal/internal/models"
)

type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable logging

	return openBadger(opts)
}

// NewInMemoryBadgerStore opens a store that lives only as long as the process.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Save(ctx context.Context, conversations []models.Conversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeConversations(conversations)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ConversationsKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store conversations: %w", err)
	}
	return nil
}

func (s *BadgerStore) Load(ctx context.Context) ([]models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ConversationsKey))
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve conversations: %w", err)
	}

	return decodeConversations(data)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
