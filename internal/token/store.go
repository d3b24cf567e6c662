package token

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

var (
	prefixToken   = []byte("t/") // t/<tokenID(32)> -> Metadata JSON
	prefixBalance = []byte("b/") // b/<tokenID(32)><address(20)> -> amount(8)
)

// Store persists token metadata and balances.
type Store struct {
	db storage.DB
}

// NewStore creates a token store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Register stores the metadata of a new token with zero supply.
func (s *Store) Register(id types.TokenID, meta *Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	has, err := s.Has(id)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrTokenExists, id)
	}
	m := *meta
	m.Supply = 0
	return s.put(id, &m)
}

func (s *Store) put(id types.TokenID, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(tokenKey(id), data)
}

// Get retrieves metadata for a token.
func (s *Store) Get(id types.TokenID) (*Metadata, error) {
	data, err := s.db.Get(tokenKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, id)
	}
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Has checks if metadata exists for a token.
func (s *Store) Has(id types.TokenID) (bool, error) {
	return s.db.Has(tokenKey(id))
}

// Balance returns the token balance of addr.
func (s *Store) Balance(id types.TokenID, addr types.Address) (uint64, error) {
	data, err := s.db.Get(balanceKey(id, addr))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("token balance: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("token balance: corrupt record for %s", addr)
	}
	return binary.BigEndian.Uint64(data), nil
}

// Mint creates amount new tokens on addr's balance and raises the supply.
// Minting zero is a no-op on a registered token.
func (s *Store) Mint(id types.TokenID, to types.Address, amount uint64) error {
	meta, err := s.Get(id)
	if err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if meta.Supply > math.MaxUint64-amount {
		return fmt.Errorf("%w: supply %d + %d", ErrSupplyOverflow, meta.Supply, amount)
	}
	bal, err := s.Balance(id, to)
	if err != nil {
		return err
	}

	meta.Supply += amount
	if err := s.put(id, meta); err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bal+amount)
	return s.db.Put(balanceKey(id, to), buf[:])
}

// Holder is one non-zero balance of a token.
type Holder struct {
	Address types.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

// Holders lists every address holding id, in address order.
func (s *Store) Holders(id types.TokenID) ([]Holder, error) {
	prefix := balanceKey(id, types.Address{})[:len(prefixBalance)+types.HashSize]
	holders := []Holder{}
	err := s.db.ForEach(prefix, func(key, value []byte) error {
		if len(key) != len(prefix)+types.AddressSize || len(value) != 8 {
			return nil
		}
		var h Holder
		copy(h.Address[:], key[len(prefix):])
		h.Amount = binary.BigEndian.Uint64(value)
		holders = append(holders, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return holders, nil
}

// MetadataEntry pairs a token ID with its metadata.
type MetadataEntry struct {
	ID types.TokenID `json:"id"`
	Metadata
}

// List returns all registered tokens.
func (s *Store) List() ([]MetadataEntry, error) {
	entries := []MetadataEntry{}
	err := s.db.ForEach(prefixToken, func(key, value []byte) error {
		if len(key) != len(prefixToken)+types.HashSize {
			return nil
		}
		var e MetadataEntry
		copy(e.ID[:], key[len(prefixToken):])
		if err := json.Unmarshal(value, &e.Metadata); err != nil {
			return fmt.Errorf("token unmarshal %s: %w", e.ID, err)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func tokenKey(id types.TokenID) []byte {
	key := make([]byte, len(prefixToken)+types.HashSize)
	copy(key, prefixToken)
	copy(key[len(prefixToken):], id[:])
	return key
}

func balanceKey(id types.TokenID, addr types.Address) []byte {
	key := make([]byte, len(prefixBalance)+types.HashSize+types.AddressSize)
	copy(key, prefixBalance)
	copy(key[len(prefixBalance):], id[:])
	copy(key[len(prefixBalance)+types.HashSize:], addr[:])
	return key
}
