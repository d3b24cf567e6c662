package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var boltBucket = []byte("gatemint")

// BoltDB implements DB on a single bbolt bucket.
type BoltDB struct {
	db *bbolt.DB
}

// NewBolt opens or creates a bbolt database file inside dir.
func NewBolt(dir string) (*BoltDB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("bolt: create directory: %w", err)
	}
	path := filepath.Join(dir, "state.db")
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt database at %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}
	return &BoltDB{db: db}, nil
}

// Get retrieves a value by key. Returns ErrNotFound if the key does not exist.
func (b *BoltDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		val = copyBytes(v)
		return nil
	})
	return val, err
}

// Put stores a key-value pair.
func (b *BoltDB) Put(key, value []byte) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, nonNil(value))
	})
	if err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

// Delete removes a key.
func (b *BoltDB) Delete(key []byte) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("bolt delete: %w", err)
	}
	return nil
}

// Has checks if a key exists.
func (b *BoltDB) Has(key []byte) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(boltBucket).Get(key) != nil
		return nil
	})
	return exists, err
}

// ForEach iterates over all keys with the given prefix.
func (b *BoltDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := fn(copyBytes(k), copyBytes(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewBatch buffers writes and applies them in one bolt read-write transaction.
func (b *BoltDB) NewBatch() Batch {
	return &boltBatch{db: b.db}
}

// Close closes the database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

type boltBatch struct {
	db  *bbolt.DB
	ops []batchOp
}

func (bb *boltBatch) Put(key, value []byte) error {
	bb.ops = append(bb.ops, batchOp{key: copyBytes(key), value: nonNil(copyBytes(value))})
	return nil
}

func (bb *boltBatch) Delete(key []byte) error {
	bb.ops = append(bb.ops, batchOp{key: copyBytes(key), del: true})
	return nil
}

func (bb *boltBatch) Commit() error {
	err := bb.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(boltBucket)
		for _, op := range bb.ops {
			var err error
			if op.del {
				err = bkt.Delete(op.key)
			} else {
				err = bkt.Put(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt batch commit: %w", err)
	}
	bb.ops = nil
	return nil
}

// batchOp is one buffered write; del distinguishes a delete from an empty value.
type batchOp struct {
	key   []byte
	value []byte
	del   bool
}

// bbolt rejects nil values, and an empty value must stay distinguishable from a delete.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
