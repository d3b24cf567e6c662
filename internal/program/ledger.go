package program

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/gatemint/internal/storage"
)

// LedgerKey is where the payment ledger is persisted.
var LedgerKey = []byte("wl/ledger")

// Ledger is the running total of collected payment not yet withdrawn.
type Ledger struct {
	Amount uint64 `json:"amount"`
}

// Add records payment collected by a mint.
func (l *Ledger) Add(amount uint64) error {
	if l.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: ledger %d + %d", ErrPaymentOverflow, l.Amount, amount)
	}
	l.Amount += amount
	return nil
}

func loadLedger(db storage.DB) (*Ledger, error) {
	data, err := db.Get(LedgerKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return &l, nil
}

func saveLedger(db storage.DB, l *Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := db.Put(LedgerKey, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
