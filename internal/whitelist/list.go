// Package whitelist implements the allow-list membership engine: an ordered
// set of claim records guarded by a single authority, with a per-address
// cumulative claim limit and a unit price.
//
// A List is not safe for concurrent use. The program executor serializes
// every call, so each List value is only touched by one call at a time.
package whitelist

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/gatemint/pkg/types"
)

// DefaultCapacity is the number of records a list reserves room for.
const DefaultCapacity = 200

// Allow-list errors.
var (
	ErrNotOwner  = errors.New("only the authority can call this")
	ErrImmutable = errors.New("allow-list is immutable")
	ErrNotOnList = errors.New("not on the allow-list")
	ErrOverLimit = errors.New("claim exceeds the per-address limit")
	ErrListFull  = errors.New("allow-list is full")
)

// Entry is one claim record. Records are never removed: Deleted marks a
// soft delete and Claimed survives it.
type Entry struct {
	Address types.Address `json:"address"`
	Claimed uint64        `json:"claimed"`
	Deleted bool          `json:"deleted"`
}

// List is the allow-list state.
type List struct {
	Authority types.Address
	Immutable bool
	Limit     uint64
	Price     uint64
	Capacity  int

	entries []Entry
	index   map[types.Address]int
}

// New creates an empty, mutable list owned by authority. A non-positive
// capacity selects DefaultCapacity.
func New(authority types.Address, limit, price uint64, capacity int) *List {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &List{
		Authority: authority,
		Limit:     limit,
		Price:     price,
		Capacity:  capacity,
		index:     make(map[types.Address]int),
	}
}

// checkAdmin gates every administrative mutation: the caller must be the
// authority and the list must not be frozen.
func (l *List) checkAdmin(caller types.Address) error {
	if caller != l.Authority {
		return fmt.Errorf("%w: caller %s", ErrNotOwner, caller)
	}
	if l.Immutable {
		return ErrImmutable
	}
	return nil
}

// Insert adds addresses in order. A known address has its deleted flag
// cleared in place and keeps its claimed total; an unknown one is appended
// with nothing claimed. Duplicates within addrs collapse into one record.
// Nothing changes when the new records would not fit.
func (l *List) Insert(caller types.Address, addrs []types.Address) error {
	if err := l.checkAdmin(caller); err != nil {
		return err
	}

	fresh := make(map[types.Address]struct{})
	for _, a := range addrs {
		if _, ok := l.index[a]; !ok {
			fresh[a] = struct{}{}
		}
	}
	if len(l.entries)+len(fresh) > l.Capacity {
		return fmt.Errorf("%w: %d records, %d new, capacity %d",
			ErrListFull, len(l.entries), len(fresh), l.Capacity)
	}

	for _, a := range addrs {
		if i, ok := l.index[a]; ok {
			l.entries[i].Deleted = false
			continue
		}
		l.index[a] = len(l.entries)
		l.entries = append(l.entries, Entry{Address: a})
	}
	return nil
}

// Delete soft-deletes addresses. Unknown addresses are ignored.
func (l *List) Delete(caller types.Address, addrs []types.Address) error {
	if err := l.checkAdmin(caller); err != nil {
		return err
	}
	for _, a := range addrs {
		if i, ok := l.index[a]; ok {
			l.entries[i].Deleted = true
		}
	}
	return nil
}

// Freeze makes the list permanently immutable.
func (l *List) Freeze(caller types.Address) error {
	if err := l.checkAdmin(caller); err != nil {
		return err
	}
	l.Immutable = true
	return nil
}

// TransferAuthority hands administration to newOwner.
func (l *List) TransferAuthority(caller, newOwner types.Address) error {
	if err := l.checkAdmin(caller); err != nil {
		return err
	}
	l.Authority = newOwner
	return nil
}

// UpdatePrice sets the unit price (scaled by 10^9).
func (l *List) UpdatePrice(caller types.Address, price uint64) error {
	if err := l.checkAdmin(caller); err != nil {
		return err
	}
	l.Price = price
	return nil
}

// UpdateLimit sets the per-address cumulative claim limit.
func (l *List) UpdateLimit(caller types.Address, limit uint64) error {
	if err := l.checkAdmin(caller); err != nil {
		return err
	}
	l.Limit = limit
	return nil
}

// Claim adds quantity to the caller's claimed total and returns the new
// total. The record is left untouched on failure.
func (l *List) Claim(caller types.Address, quantity uint64) (uint64, error) {
	i, ok := l.index[caller]
	if !ok || l.entries[i].Deleted {
		return 0, fmt.Errorf("%w: %s", ErrNotOnList, caller)
	}
	e := &l.entries[i]
	if e.Claimed > math.MaxUint64-quantity {
		return 0, fmt.Errorf("%w: claimed %d + %d overflows", ErrOverLimit, e.Claimed, quantity)
	}
	total := e.Claimed + quantity
	if total > l.Limit {
		return 0, fmt.Errorf("%w: claimed %d + %d > limit %d", ErrOverLimit, e.Claimed, quantity, l.Limit)
	}
	e.Claimed = total
	return total, nil
}

// Get returns the record for addr, deleted or not.
func (l *List) Get(addr types.Address) (Entry, bool) {
	i, ok := l.index[addr]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Entries returns a copy of every record in list order.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of records, deleted ones included.
func (l *List) Len() int {
	return len(l.entries)
}

// Active returns the number of records that are not deleted.
func (l *List) Active() int {
	n := 0
	for _, e := range l.entries {
		if !e.Deleted {
			n++
		}
	}
	return n
}
