// Package accounts keeps native-coin balances and call nonces per address.
package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// Account errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrCorruptAccount    = errors.New("corrupt account record")
)

var prefixAccount = []byte("a/") // a/<address(20)> -> balance(8) | nonce(8)

const recordSize = 16

// Account is the native-coin state of one address.
type Account struct {
	Address types.Address `json:"address"`
	Balance uint64        `json:"balance"`
	Nonce   uint64        `json:"nonce"`
}

// Store persists accounts in a storage.DB. Missing accounts read as zero.
type Store struct {
	db storage.DB
}

// NewStore creates an account store backed by db.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

func accountKey(addr types.Address) []byte {
	key := make([]byte, len(prefixAccount)+types.AddressSize)
	copy(key, prefixAccount)
	copy(key[len(prefixAccount):], addr[:])
	return key
}

// Get returns the account at addr. Unknown addresses return a zero account.
func (s *Store) Get(addr types.Address) (*Account, error) {
	data, err := s.db.Get(accountKey(addr))
	if errors.Is(err, storage.ErrNotFound) {
		return &Account{Address: addr}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account get: %w", err)
	}
	return decodeAccount(addr, data)
}

func decodeAccount(addr types.Address, data []byte) (*Account, error) {
	if len(data) != recordSize {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrCorruptAccount, addr, len(data))
	}
	return &Account{
		Address: addr,
		Balance: binary.BigEndian.Uint64(data[:8]),
		Nonce:   binary.BigEndian.Uint64(data[8:]),
	}, nil
}

func (s *Store) put(acct *Account) error {
	var buf [recordSize]byte
	binary.BigEndian.PutUint64(buf[:8], acct.Balance)
	binary.BigEndian.PutUint64(buf[8:], acct.Nonce)
	if err := s.db.Put(accountKey(acct.Address), buf[:]); err != nil {
		return fmt.Errorf("account put: %w", err)
	}
	return nil
}

// Balance returns the native balance of addr.
func (s *Store) Balance(addr types.Address) (uint64, error) {
	acct, err := s.Get(addr)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Nonce returns the last used call nonce of addr (0 if it never called).
func (s *Store) Nonce(addr types.Address) (uint64, error) {
	acct, err := s.Get(addr)
	if err != nil {
		return 0, err
	}
	return acct.Nonce, nil
}

// SetNonce records n as the last used nonce of addr.
func (s *Store) SetNonce(addr types.Address, n uint64) error {
	acct, err := s.Get(addr)
	if err != nil {
		return err
	}
	acct.Nonce = n
	return s.put(acct)
}

// Credit adds amount to addr's balance.
func (s *Store) Credit(addr types.Address, amount uint64) error {
	acct, err := s.Get(addr)
	if err != nil {
		return err
	}
	if acct.Balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: credit %d to %s", ErrBalanceOverflow, amount, addr)
	}
	acct.Balance += amount
	return s.put(acct)
}

// Debit removes amount from addr's balance.
func (s *Store) Debit(addr types.Address, amount uint64) error {
	acct, err := s.Get(addr)
	if err != nil {
		return err
	}
	if acct.Balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, addr, acct.Balance, amount)
	}
	acct.Balance -= amount
	return s.put(acct)
}

// Transfer moves amount from one address to another. A zero amount is a
// no-op. Both sides are checked before anything is written.
func (s *Store) Transfer(from, to types.Address, amount uint64) error {
	if amount == 0 || from == to {
		bal, err := s.Balance(from)
		if err != nil {
			return err
		}
		if bal < amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, bal, amount)
		}
		return nil
	}

	src, err := s.Get(from)
	if err != nil {
		return err
	}
	dst, err := s.Get(to)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, src.Balance, amount)
	}
	if dst.Balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: credit %d to %s", ErrBalanceOverflow, amount, to)
	}
	src.Balance -= amount
	dst.Balance += amount
	if err := s.put(src); err != nil {
		return err
	}
	return s.put(dst)
}

// ForEach iterates over all stored accounts in address order.
func (s *Store) ForEach(fn func(*Account) error) error {
	return s.db.ForEach(prefixAccount, func(key, value []byte) error {
		if len(key) != len(prefixAccount)+types.AddressSize {
			return nil
		}
		var addr types.Address
		copy(addr[:], key[len(prefixAccount):])
		acct, err := decodeAccount(addr, value)
		if err != nil {
			return err
		}
		return fn(acct)
	})
}

// TotalSupply sums every stored balance.
func (s *Store) TotalSupply() (uint64, error) {
	var total uint64
	err := s.ForEach(func(a *Account) error {
		if total > math.MaxUint64-a.Balance {
			return ErrBalanceOverflow
		}
		total += a.Balance
		return nil
	})
	return total, err
}
