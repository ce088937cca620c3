package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/storage"
)

// MemoryRepository implements storage.MemoryRepository for BadgerDB.
type MemoryRepository struct {
	backend *Backend
}

var _ storage.MemoryRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a MemoryRepository on the given backend.
func NewMemoryRepository(backend *Backend) (*MemoryRepository, error) {
	return &MemoryRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is closed by its owner.
func (r *MemoryRepository) Close() error {
	return nil
}

// AddMemories merges items into the user's memory set. Items already present
// are ignored.
func (r *MemoryRepository) AddMemories(ctx context.Context, userID string, items ...string) (*core.UserMemory, error) {
	if err := core.ValidateUserId(userID); err != nil {
		return nil, err
	}

	var memory *core.UserMemory
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		memory, err = readUserMemory(tx, userID)
		if err != nil {
			return err
		}

		changed := false
		for _, item := range items {
			if item == "" || memory.Contains(item) {
				continue
			}
			memory.Items = append(memory.Items, item)
			changed = true
		}
		if !changed {
			return nil
		}

		memory.UpdatedAt = time.Now().UTC()
		key := makeUserMemoryKey(userID)
		if err := tx.Set(key, storage.MarshalUserMemory(memory)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return memory, nil
}

// GetMemories retrieves the user's memory. A user with no stored items yields
// an empty memory, not an error.
func (r *MemoryRepository) GetMemories(ctx context.Context, userID string) (*core.UserMemory, error) {
	if err := core.ValidateUserId(userID); err != nil {
		return nil, err
	}

	var memory *core.UserMemory
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		memory, err = readUserMemory(tx, userID)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return memory, nil
}

// readUserMemory reads a user's memory record inside a transaction.
// A missing record yields an empty memory.
func readUserMemory(tx *badger.Txn, userID string) (*core.UserMemory, error) {
	item, err := tx.Get(makeUserMemoryKey(userID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return &core.UserMemory{UserId: userID}, nil
		}
		return nil, err
	}

	var memory *core.UserMemory
	err = item.Value(func(val []byte) error {
		var err error
		memory, err = storage.UnmarshalUserMemory(val)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return memory, nil
}
