package accounts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

var (
	alice = types.Address{0xA1}
	bob   = types.Address{0xB0}
)

func balanceOf(t *testing.T, s *Store, addr types.Address) uint64 {
	t.Helper()
	bal, err := s.Balance(addr)
	require.NoError(t, err)
	return bal
}

func TestStore_ZeroAccount(t *testing.T) {
	s := NewStore(storage.NewMemory())

	acct, err := s.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, &Account{Address: alice}, acct)
}

func TestStore_CreditDebit(t *testing.T) {
	s := NewStore(storage.NewMemory())

	require.NoError(t, s.Credit(alice, 100))
	require.NoError(t, s.Debit(alice, 40))
	assert.Equal(t, uint64(60), balanceOf(t, s, alice))

	assert.ErrorIs(t, s.Debit(alice, 61), ErrInsufficientFunds)
	assert.Equal(t, uint64(60), balanceOf(t, s, alice), "failed debit keeps balance")

	require.NoError(t, s.Credit(bob, math.MaxUint64))
	assert.ErrorIs(t, s.Credit(bob, 1), ErrBalanceOverflow)
}

func TestStore_Transfer(t *testing.T) {
	s := NewStore(storage.NewMemory())
	require.NoError(t, s.Credit(alice, 10))

	require.NoError(t, s.Transfer(alice, bob, 7))
	assert.Equal(t, uint64(3), balanceOf(t, s, alice))
	assert.Equal(t, uint64(7), balanceOf(t, s, bob))

	assert.ErrorIs(t, s.Transfer(alice, bob, 4), ErrInsufficientFunds)
	assert.NoError(t, s.Transfer(alice, bob, 0))
	assert.NoError(t, s.Transfer(alice, alice, 3))
	assert.Equal(t, uint64(3), balanceOf(t, s, alice), "self transfer")
}

func TestStore_NonceKeepsBalance(t *testing.T) {
	s := NewStore(storage.NewMemory())
	require.NoError(t, s.Credit(alice, 5))

	require.NoError(t, s.SetNonce(alice, 9))
	acct, err := s.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), acct.Nonce)
	assert.Equal(t, uint64(5), acct.Balance)
}

func TestStore_ForEachAndSupply(t *testing.T) {
	s := NewStore(storage.NewMemory())
	require.NoError(t, s.Credit(bob, 2))
	require.NoError(t, s.Credit(alice, 1))

	var order []types.Address
	err := s.ForEach(func(a *Account) error {
		order = append(order, a.Address)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []types.Address{alice, bob}, order)

	total, err := s.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
}

func TestStore_CorruptRecord(t *testing.T) {
	db := storage.NewMemory()
	require.NoError(t, db.Put(accountKey(alice), []byte{1, 2, 3}))

	_, err := NewStore(db).Get(alice)
	assert.ErrorIs(t, err, ErrCorruptAccount)
}
