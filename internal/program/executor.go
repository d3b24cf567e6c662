package program

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	klog "github.com/Klingon-tech/gatemint/internal/log"
	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/call"
	"github.com/Klingon-tech/gatemint/pkg/types"
	"github.com/rs/zerolog"
)

// Executor runs signed calls one at a time. Each call sees its own
// storage.Overlay: on success the overlay (nonce bump and receipt included)
// is committed as one batch. On failure it is discarded, and the nonce bump
// and failure receipt are committed as a separate batch. Every call that
// runs consumes its nonce.
type Executor struct {
	mu       sync.Mutex
	db       storage.DB
	program  *Program
	network  string
	receipts *ReceiptStore
	logger   zerolog.Logger
}

// NewExecutor creates an executor over db, which must support atomic
// batches (see storage.Batcher). Calls must name network.
func NewExecutor(db storage.DB, p *Program, network string) *Executor {
	return &Executor{
		db:       db,
		program:  p,
		network:  network,
		receipts: NewReceiptStore(db),
		logger:   klog.Host,
	}
}

// Receipts returns the receipt store.
func (e *Executor) Receipts() *ReceiptStore {
	return e.receipts
}

// View runs fn over the committed state while no call is executing, so
// every read inside fn sees the same committed state.
func (e *Executor) View(fn func(st *State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(NewState(e.db))
}

// Execute verifies and runs c. Calls rejected before they run (bad
// signature, wrong network, bad nonce) return an error and no receipt.
// Calls that run return their receipt; a failed call also returns its error.
func (e *Executor) Execute(ctx context.Context, c *call.Call) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	caller, err := c.Verify()
	if err != nil {
		return nil, err
	}
	if c.Network != e.network {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongNetwork, c.Network, e.network)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	base := NewState(e.db)
	last, err := base.Accounts.Nonce(caller)
	if err != nil {
		return nil, err
	}
	if c.Nonce != last+1 {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadNonce, c.Nonce, last+1)
	}

	rcpt := &Receipt{
		Hash:   c.Hash(),
		Method: c.Method,
		Caller: caller,
		Nonce:  c.Nonce,
	}

	overlay := storage.NewOverlay(e.db)
	err = e.run(overlay, caller, c, rcpt)
	if err == nil {
		err = overlay.Commit()
		if err != nil {
			err = fmt.Errorf("commit call: %w", err)
		}
	}
	if err != nil {
		overlay.Discard()
		rcpt.Status = StatusFailed
		rcpt.Code = ErrorCode(err)
		rcpt.Error = err.Error()
		rcpt.Result = nil
		if perr := e.recordFailure(caller, rcpt); perr != nil {
			e.logger.Error().Err(perr).Str("hash", rcpt.Hash.String()).Msg("Failed to record failed call")
		}
		e.logOutcome(rcpt)
		return rcpt, err
	}

	e.logOutcome(rcpt)
	return rcpt, nil
}

// run executes the call inside overlay and stages the nonce bump and the
// success receipt next to the program's writes.
func (e *Executor) run(overlay *storage.Overlay, caller types.Address, c *call.Call, rcpt *Receipt) error {
	st := NewState(overlay)
	result, err := e.program.Dispatch(st, caller, c)
	if err != nil {
		return err
	}
	if err := st.Accounts.SetNonce(caller, c.Nonce); err != nil {
		return err
	}

	rcpt.Status = StatusOK
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		rcpt.Result = raw
	}
	return NewReceiptStore(overlay).Put(rcpt)
}

// recordFailure commits the nonce bump and the failure receipt of a call
// whose own writes were discarded.
func (e *Executor) recordFailure(caller types.Address, rcpt *Receipt) error {
	overlay := storage.NewOverlay(e.db)
	if err := NewState(overlay).Accounts.SetNonce(caller, rcpt.Nonce); err != nil {
		return err
	}
	if err := NewReceiptStore(overlay).Put(rcpt); err != nil {
		return err
	}
	if err := overlay.Commit(); err != nil {
		overlay.Discard()
		return fmt.Errorf("commit failed call: %w", err)
	}
	return nil
}

func (e *Executor) logOutcome(r *Receipt) {
	var ev *zerolog.Event
	if r.OK() {
		ev = e.logger.Info()
	} else {
		ev = e.logger.Warn().Int("code", r.Code).Str("error", r.Error)
	}
	ev.Str("method", r.Method).
		Str("caller", r.Caller.String()).
		Uint64("nonce", r.Nonce).
		Str("hash", r.Hash.String()).
		Msg("call " + r.Status)
}
