package whitelist

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// StateKey is where the list is persisted.
var StateKey = []byte("wl/state")

// ErrNotInitialized is returned by Load when no list has been stored yet.
var ErrNotInitialized = errors.New("allow-list not initialized")

// ErrCorrupt is returned when a stored list fails to decode.
var ErrCorrupt = errors.New("corrupt allow-list state")

type listJSON struct {
	Authority types.Address `json:"authority"`
	Immutable bool          `json:"immutable"`
	Limit     uint64        `json:"limit"`
	Price     uint64        `json:"price"`
	Capacity  int           `json:"capacity"`
	Entries   []Entry       `json:"entries"`
}

// MarshalJSON encodes the list with its records in list order.
func (l *List) MarshalJSON() ([]byte, error) {
	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(listJSON{
		Authority: l.Authority,
		Immutable: l.Immutable,
		Limit:     l.Limit,
		Price:     l.Price,
		Capacity:  l.Capacity,
		Entries:   entries,
	})
}

// UnmarshalJSON decodes a list and rebuilds its address index.
func (l *List) UnmarshalJSON(data []byte) error {
	var j listJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Capacity <= 0 {
		j.Capacity = DefaultCapacity
	}
	index := make(map[types.Address]int, len(j.Entries))
	for i, e := range j.Entries {
		if _, dup := index[e.Address]; dup {
			return fmt.Errorf("%w: duplicate record for %s", ErrCorrupt, e.Address)
		}
		index[e.Address] = i
	}
	*l = List{
		Authority: j.Authority,
		Immutable: j.Immutable,
		Limit:     j.Limit,
		Price:     j.Price,
		Capacity:  j.Capacity,
		entries:   j.Entries,
		index:     index,
	}
	return nil
}

// Load reads the list from db.
func Load(db storage.DB) (*List, error) {
	data, err := db.Get(StateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("load allow-list: %w", err)
	}
	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &l, nil
}

// Exists reports whether a list has been stored.
func Exists(db storage.DB) (bool, error) {
	return db.Has(StateKey)
}

// Save writes the list to db.
func Save(db storage.DB, l *List) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode allow-list: %w", err)
	}
	if err := db.Put(StateKey, data); err != nil {
		return fmt.Errorf("save allow-list: %w", err)
	}
	return nil
}
