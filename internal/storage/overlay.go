package storage

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoBatch is returned by Overlay.Commit when the base DB cannot apply
// a batch atomically.
var ErrNoBatch = errors.New("storage: backend does not support atomic batches")

// Overlay buffers writes on top of a base DB. Reads see the buffered writes
// first. Commit applies the whole write set in one atomic batch; Discard drops
// it, leaving the base untouched. The program executor runs every call inside
// its own Overlay.
type Overlay struct {
	base   DB
	writes map[string]batchOp
}

// NewOverlay creates an empty overlay over base.
func NewOverlay(base DB) *Overlay {
	return &Overlay{base: base, writes: make(map[string]batchOp)}
}

// Get retrieves a value, preferring buffered writes.
func (o *Overlay) Get(key []byte) ([]byte, error) {
	if op, ok := o.writes[string(key)]; ok {
		if op.del {
			return nil, ErrNotFound
		}
		return copyBytes(op.value), nil
	}
	return o.base.Get(key)
}

// Put buffers a write.
func (o *Overlay) Put(key, value []byte) error {
	o.writes[string(key)] = batchOp{key: copyBytes(key), value: nonNil(copyBytes(value))}
	return nil
}

// Delete buffers a delete.
func (o *Overlay) Delete(key []byte) error {
	o.writes[string(key)] = batchOp{key: copyBytes(key), del: true}
	return nil
}

// Has checks buffered writes, then the base.
func (o *Overlay) Has(key []byte) (bool, error) {
	if op, ok := o.writes[string(key)]; ok {
		return !op.del, nil
	}
	return o.base.Has(key)
}

// ForEach iterates the merged view of base and buffered writes in key order.
func (o *Overlay) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	err := o.base.ForEach(prefix, func(key, value []byte) error {
		merged[string(key)] = value
		return nil
	})
	if err != nil {
		return err
	}
	p := string(prefix)
	for k, op := range o.writes {
		if !strings.HasPrefix(k, p) {
			continue
		}
		if op.del {
			delete(merged, k)
		} else {
			merged[k] = copyBytes(op.value)
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the number of buffered writes.
func (o *Overlay) Pending() int {
	return len(o.writes)
}

// Commit writes every buffered change to the base in one batch and clears
// the overlay. On error nothing is cleared and the base is unchanged.
func (o *Overlay) Commit() error {
	if len(o.writes) == 0 {
		return nil
	}
	batcher, ok := o.base.(Batcher)
	if !ok {
		return ErrNoBatch
	}

	keys := make([]string, 0, len(o.writes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := batcher.NewBatch()
	for _, k := range keys {
		op := o.writes[k]
		var err error
		if op.del {
			err = b.Delete(op.key)
		} else {
			err = b.Put(op.key, op.value)
		}
		if err != nil {
			if d, ok := b.(interface{ Discard() }); ok {
				d.Discard()
			}
			return err
		}
	}
	if err := b.Commit(); err != nil {
		return err
	}
	o.Discard()
	return nil
}

// Discard drops all buffered writes.
func (o *Overlay) Discard() {
	o.writes = make(map[string]batchOp)
}

// Close discards buffered writes. The base DB stays open.
func (o *Overlay) Close() error {
	o.Discard()
	return nil
}
