package program

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// Receipt statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ErrReceiptNotFound is returned when no receipt exists for a call hash.
var ErrReceiptNotFound = errors.New("receipt not found")

// Receipt records the outcome of one executed call.
type Receipt struct {
	Hash   types.Hash      `json:"hash"`
	Method string          `json:"method"`
	Caller types.Address   `json:"caller"`
	Nonce  uint64          `json:"nonce"`
	Status string          `json:"status"`
	Code   int             `json:"code,omitempty"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// OK reports whether the call committed.
func (r *Receipt) OK() bool {
	return r.Status == StatusOK
}

// ReceiptStore persists receipts keyed by call hash.
type ReceiptStore struct {
	db storage.DB
}

// NewReceiptStore creates a receipt store over the receipts namespace of db.
func NewReceiptStore(db storage.DB) *ReceiptStore {
	return &ReceiptStore{db: storage.NewPrefixDB(db, PrefixReceipts)}
}

// Put stores r.
func (s *ReceiptStore) Put(r *Receipt) error {
	return putReceipt(s.db, r)
}

func putReceipt(db storage.DB, r *Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := db.Put(r.Hash[:], data); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

// Get returns the receipt of the call with the given hash.
func (s *ReceiptStore) Get(hash types.Hash) (*Receipt, error) {
	data, err := s.db.Get(hash[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("load receipt: %w", err)
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &r, nil
}
