package program

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/call"
	"github.com/Klingon-tech/gatemint/pkg/crypto"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

const testNetwork = "testnet"

type harness struct {
	t     *testing.T
	db    storage.DB
	exec  *Executor
	owner *crypto.PrivateKey
	a     *crypto.PrivateKey
	b     *crypto.PrivateKey
	nonce map[types.Address]uint64
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	db := storage.NewMemory()
	h := &harness{
		t:     t,
		db:    db,
		exec:  NewExecutor(db, New(opts...), testNetwork),
		owner: mustKey(t),
		a:     mustKey(t),
		b:     mustKey(t),
		nonce: make(map[types.Address]uint64),
	}
	st := NewState(db)
	for _, k := range []*crypto.PrivateKey{h.owner, h.a, h.b} {
		require.NoError(t, st.Accounts.Credit(k.Address(), 100))
	}
	return h
}

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	require.NoError(t, err)
	return k
}

// submit signs a call with the signer's next nonce. The nonce is only
// advanced locally when the call commits.
func (h *harness) submit(signer *crypto.PrivateKey, method string, params any) (*Receipt, error) {
	h.t.Helper()
	addr := signer.Address()
	c, err := call.New(testNetwork, method, params, h.nonce[addr]+1)
	require.NoError(h.t, err)
	require.NoError(h.t, c.Sign(signer))
	rcpt, err := h.exec.Execute(context.Background(), c)
	if rcpt != nil {
		h.nonce[addr]++
	}
	return rcpt, err
}

func (h *harness) init() {
	h.t.Helper()
	_, err := h.submit(h.owner, MethodInit, InitParams{
		Metadata: testMetadata,
		Whitelist: InitWhitelist{
			Addresses: []types.Address{h.a.Address(), h.b.Address()},
			Limit:     5,
			Price:     unitPrice,
		},
	})
	require.NoError(h.t, err)
}

func (h *harness) state() *State {
	return NewState(h.db)
}

func TestExecute_Example(t *testing.T) {
	h := newHarness(t)
	h.init()

	rcpt, err := h.submit(h.a, MethodMint, MintParams{Quantity: 3})
	require.NoError(t, err)
	assert.True(t, rcpt.OK())

	var res MintResult
	require.NoError(t, json.Unmarshal(rcpt.Result, &res))
	assert.Equal(t, uint64(3), res.Claimed)

	rcpt, err = h.submit(h.a, MethodMint, MintParams{Quantity: 3})
	require.Error(t, err)
	require.NotNil(t, rcpt)
	assert.Equal(t, StatusFailed, rcpt.Status)
	assert.Equal(t, CodeOverLimit, rcpt.Code)

	st := h.state()
	assert.Equal(t, uint64(3), claimed(t, st, h.a.Address()))
	assert.Equal(t, uint64(3), ledgerAmount(t, st))
	assert.Equal(t, uint64(97), balance(t, st, h.a.Address()))
}

func TestExecute_MintFailureRollsBack(t *testing.T) {
	fail := false
	h := newHarness(t, withMinter(func(m Minter) Minter {
		if fail {
			return failingMinter{}
		}
		return m
	}))
	h.init()

	_, err := h.submit(h.a, MethodMint, MintParams{Quantity: 1})
	require.NoError(t, err)

	fail = true
	rcpt, err := h.submit(h.a, MethodMint, MintParams{Quantity: 2})
	assert.ErrorIs(t, err, errMintRejected)
	assert.Equal(t, StatusFailed, rcpt.Status)

	st := h.state()
	assert.Equal(t, uint64(1), claimed(t, st, h.a.Address()), "claim rolled back")
	assert.Equal(t, uint64(1), ledgerAmount(t, st), "ledger rolled back")
	assert.Equal(t, uint64(99), balance(t, st, h.a.Address()), "payment rolled back")
	assert.Equal(t, uint64(1), balance(t, st, CollectionAddress))
	tokens, err := st.Tokens.Balance(TokenID, h.a.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tokens)
}

func TestExecute_FailedCallConsumesNonce(t *testing.T) {
	h := newHarness(t)
	h.init()
	a := h.a.Address()

	_, err := h.submit(h.owner, MethodUpdateLimit, LimitParams{Limit: 1000})
	require.NoError(t, err)

	// a holds 100 and cannot pay for 150.
	c, err := call.New(testNetwork, MethodMint, MintParams{Quantity: 150}, 1)
	require.NoError(t, err)
	require.NoError(t, c.Sign(h.a))
	rcpt, err := h.exec.Execute(context.Background(), c)
	require.Error(t, err)
	require.NotNil(t, rcpt)
	assert.Equal(t, CodeInsufficientFunds, rcpt.Code)

	n, err := h.state().Accounts.Nonce(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	// Once a could pay, the same signed call is still refused.
	require.NoError(t, h.state().Accounts.Credit(a, 1000))
	again, err := h.exec.Execute(context.Background(), c)
	assert.ErrorIs(t, err, ErrBadNonce)
	assert.Nil(t, again)

	st := h.state()
	assert.Equal(t, uint64(1100), balance(t, st, a))
	assert.Equal(t, uint64(0), claimed(t, st, a))

	stored, err := h.exec.Receipts().Get(c.Hash())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, CodeInsufficientFunds, stored.Code)
}

func TestExecute_Rejections(t *testing.T) {
	h := newHarness(t)
	h.init()

	// Replay of an already used nonce.
	c, err := call.New(testNetwork, MethodFreeze, nil, 1)
	require.NoError(t, err)
	require.NoError(t, c.Sign(h.owner))
	rcpt, err := h.exec.Execute(context.Background(), c)
	assert.ErrorIs(t, err, ErrBadNonce)
	assert.Nil(t, rcpt)
	assert.Equal(t, CodeRejected, ErrorCode(err))

	// Wrong network.
	c, _ = call.New("mainnet", MethodFreeze, nil, 2)
	require.NoError(t, c.Sign(h.owner))
	_, err = h.exec.Execute(context.Background(), c)
	assert.ErrorIs(t, err, ErrWrongNetwork)

	// Tampered signature.
	c, _ = call.New(testNetwork, MethodFreeze, nil, 2)
	require.NoError(t, c.Sign(h.owner))
	c.Method = MethodWithdraw
	_, err = h.exec.Execute(context.Background(), c)
	assert.ErrorIs(t, err, call.ErrBadSignature)

	// Cancelled context.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ = call.New(testNetwork, MethodFreeze, nil, 2)
	require.NoError(t, c.Sign(h.owner))
	_, err = h.exec.Execute(ctx, c)
	assert.ErrorIs(t, err, context.Canceled)

	l, err := h.state().List()
	require.NoError(t, err)
	assert.False(t, l.Immutable)
}

func TestExecute_UnknownMethodAndBadParams(t *testing.T) {
	h := newHarness(t)
	h.init()

	rcpt, err := h.submit(h.owner, "selfdestruct", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Equal(t, CodeUnknownMethod, rcpt.Code)

	rcpt, err = h.submit(h.a, MethodMint, map[string]any{"qty": 1})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Equal(t, CodeInvalidParams, rcpt.Code)
}

func TestExecute_Receipts(t *testing.T) {
	h := newHarness(t)
	h.init()

	ok, err := h.submit(h.owner, MethodUpdatePrice, PriceParams{Price: 2 * unitPrice})
	require.NoError(t, err)
	failed, err := h.submit(h.a, MethodUpdatePrice, PriceParams{Price: 1})
	require.Error(t, err)
	assert.Equal(t, CodeUnauthorized, failed.Code)

	got, err := h.exec.Receipts().Get(ok.Hash)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, got.Status)
	assert.Equal(t, h.owner.Address(), got.Caller)

	got, err = h.exec.Receipts().Get(failed.Hash)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, CodeUnauthorized, got.Code)
	assert.NotEmpty(t, got.Error)

	_, err = h.exec.Receipts().Get(types.Hash{0x99})
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestExecute_FullLifecycle(t *testing.T) {
	h := newHarness(t)
	h.init()
	b := h.b.Address()

	_, err := h.submit(h.owner, MethodDelete, AddressesParams{Addresses: []types.Address{b}})
	require.NoError(t, err)
	rcpt, err := h.submit(h.b, MethodMint, MintParams{Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, CodeNotOnList, rcpt.Code)

	_, err = h.submit(h.owner, MethodInsert, AddressesParams{Addresses: []types.Address{b}})
	require.NoError(t, err)
	_, err = h.submit(h.b, MethodMint, MintParams{Quantity: 5})
	require.NoError(t, err)

	_, err = h.submit(h.owner, MethodUpdateLimit, LimitParams{Limit: 10})
	require.NoError(t, err)
	_, err = h.submit(h.owner, MethodFreeze, nil)
	require.NoError(t, err)
	_, err = h.submit(h.owner, MethodTransferAuthority, TransferAuthorityParams{NewOwner: b})
	assert.Error(t, err)

	rcpt, err = h.submit(h.owner, MethodWithdraw, nil)
	require.NoError(t, err)
	var res WithdrawResult
	require.NoError(t, json.Unmarshal(rcpt.Result, &res))
	assert.Equal(t, uint64(5), res.Amount)
	assert.Equal(t, uint64(105), balance(t, h.state(), h.owner.Address()))
}

func TestExecutor_ViewExcludesCalls(t *testing.T) {
	h := newHarness(t)
	h.init()
	a := h.a.Address()

	c, err := call.New(testNetwork, MethodMint, MintParams{Quantity: 2}, 1)
	require.NoError(t, err)
	require.NoError(t, c.Sign(h.a))

	done := make(chan error, 1)
	err = h.exec.View(func(st *State) error {
		go func() {
			_, err := h.exec.Execute(context.Background(), c)
			done <- err
		}()
		time.Sleep(50 * time.Millisecond)

		// The mint cannot commit while the view is open.
		l, err := st.Ledger()
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(0), l.Amount)
		assert.Equal(t, uint64(0), balance(t, st, CollectionAddress))
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	err = h.exec.View(func(st *State) error {
		l, err := st.Ledger()
		if err != nil {
			return err
		}
		assert.Equal(t, l.Amount, balance(t, st, CollectionAddress))
		assert.Equal(t, uint64(2), l.Amount)
		assert.Equal(t, uint64(98), balance(t, st, a))
		return nil
	})
	require.NoError(t, err)
}
