// Package storage provides the key-value abstraction the program host keeps
// its state in, with Badger, bbolt and in-memory backends.
package storage

import (
	"errors"
	"fmt"

	klog "github.com/Klingon-tech/gatemint/internal/log"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix in ascending key order.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Batch collects writes that are applied together by Commit.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	// Commit applies every buffered write atomically.
	Commit() error
}

// Batcher is implemented by backends that can commit a Batch atomically.
type Batcher interface {
	NewBatch() Batch
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Open opens the named backend rooted at path.
func Open(backend, path string) (DB, error) {
	var (
		db  DB
		err error
	)
	switch backend {
	case BackendBadger, "":
		db, err = NewBadger(path)
	case BackendBolt:
		db, err = NewBolt(path)
	case BackendMemory:
		db = NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	klog.Storage.Debug().Str("backend", backend).Str("path", path).Msg("storage opened")
	return db, nil
}
