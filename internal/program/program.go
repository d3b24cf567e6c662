// Package program implements the allow-list gated minting program and the
// host-side executor that runs signed calls against it.
//
// Every entry point works on a State. The executor hands each call a State
// over a fresh storage.Overlay, so an entry point may fail at any step and
// none of its writes reach the database.
package program

import (
	"fmt"

	klog "github.com/Klingon-tech/gatemint/internal/log"
	"github.com/Klingon-tech/gatemint/internal/token"
	"github.com/Klingon-tech/gatemint/internal/whitelist"
	"github.com/Klingon-tech/gatemint/pkg/crypto"
	"github.com/Klingon-tech/gatemint/pkg/types"
	"github.com/rs/zerolog"
)

// Labels of the program-owned identifiers.
const (
	CollectionLabel = "receive"
	MintLabel       = "mint"
)

var (
	// CollectionAddress holds collected payment until withdrawal.
	CollectionAddress = crypto.DeriveAddress(CollectionLabel)
	// TokenID identifies the token the program mints.
	TokenID = crypto.DeriveTokenID(MintLabel)
)

// Minter credits newly created tokens. *token.Store implements it.
type Minter interface {
	Mint(id types.TokenID, to types.Address, amount uint64) error
}

// Option configures a Program.
type Option func(*Program)

// WithCapacity sets the record capacity of lists created by Init.
func WithCapacity(n int) Option {
	return func(p *Program) { p.capacity = n }
}

// Program holds the program's configuration. All state lives in the State
// passed to each entry point.
type Program struct {
	capacity   int
	wrapMinter func(Minter) Minter
	logger     zerolog.Logger
}

// New creates a program.
func New(opts ...Option) *Program {
	p := &Program{
		capacity: whitelist.DefaultCapacity,
		logger:   klog.Program,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Program) minter(st *State) Minter {
	var m Minter = st.Tokens
	if p.wrapMinter != nil {
		m = p.wrapMinter(m)
	}
	return m
}

// InitMetadata describes the token created by Init.
type InitMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	URI      string `json:"uri"`
	Decimals uint8  `json:"decimals"`
}

// InitWhitelist seeds the allow-list created by Init.
type InitWhitelist struct {
	Addresses []types.Address `json:"addresses"`
	Limit     uint64          `json:"limit"`
	Price     uint64          `json:"price"`
}

// InitResult is returned by Init.
type InitResult struct {
	Authority  types.Address `json:"authority"`
	TokenID    types.TokenID `json:"token_id"`
	Collection types.Address `json:"collection"`
	Entries    int           `json:"entries"`
}

// Init creates the allow-list with caller as authority, the zeroed ledger
// and the token type.
func (p *Program) Init(st *State, caller types.Address, meta InitMetadata, wl InitWhitelist) (*InitResult, error) {
	ok, err := st.Initialized()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrAlreadyInitialized
	}

	err = st.Tokens.Register(TokenID, &token.Metadata{
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		URI:      meta.URI,
		Decimals: meta.Decimals,
		Creator:  caller,
	})
	if err != nil {
		return nil, fmt.Errorf("register token: %w", err)
	}

	list := whitelist.New(caller, wl.Limit, wl.Price, p.capacity)
	if err := list.Insert(caller, wl.Addresses); err != nil {
		return nil, err
	}
	if err := st.SaveList(list); err != nil {
		return nil, err
	}
	if err := st.SaveLedger(&Ledger{}); err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("authority", caller.String()).
		Int("entries", list.Len()).
		Uint64("limit", wl.Limit).
		Uint64("price", wl.Price).
		Msg("program initialized")

	return &InitResult{
		Authority:  caller,
		TokenID:    TokenID,
		Collection: CollectionAddress,
		Entries:    list.Len(),
	}, nil
}

// update loads the list, applies an administrative mutation and saves it.
func (p *Program) update(st *State, fn func(*whitelist.List) error) error {
	list, err := st.List()
	if err != nil {
		return err
	}
	if err := fn(list); err != nil {
		return err
	}
	return st.SaveList(list)
}

// Insert adds or reinstates addresses.
func (p *Program) Insert(st *State, caller types.Address, addrs []types.Address) error {
	return p.update(st, func(l *whitelist.List) error { return l.Insert(caller, addrs) })
}

// Delete soft-deletes addresses.
func (p *Program) Delete(st *State, caller types.Address, addrs []types.Address) error {
	return p.update(st, func(l *whitelist.List) error { return l.Delete(caller, addrs) })
}

// Freeze makes the allow-list immutable.
func (p *Program) Freeze(st *State, caller types.Address) error {
	return p.update(st, func(l *whitelist.List) error { return l.Freeze(caller) })
}

// TransferAuthority hands the allow-list to newOwner.
func (p *Program) TransferAuthority(st *State, caller, newOwner types.Address) error {
	return p.update(st, func(l *whitelist.List) error { return l.TransferAuthority(caller, newOwner) })
}

// UpdatePrice sets the unit price.
func (p *Program) UpdatePrice(st *State, caller types.Address, price uint64) error {
	return p.update(st, func(l *whitelist.List) error { return l.UpdatePrice(caller, price) })
}

// UpdateLimit sets the per-address limit.
func (p *Program) UpdateLimit(st *State, caller types.Address, limit uint64) error {
	return p.update(st, func(l *whitelist.List) error { return l.UpdateLimit(caller, limit) })
}

// WithdrawResult is returned by Withdraw.
type WithdrawResult struct {
	Amount uint64        `json:"amount"`
	To     types.Address `json:"to"`
}

// Withdraw moves the whole ledger amount from the collection account to
// the authority and zeroes the ledger. Freezing does not affect it.
func (p *Program) Withdraw(st *State, caller types.Address) (*WithdrawResult, error) {
	list, err := st.List()
	if err != nil {
		return nil, err
	}
	if caller != list.Authority {
		return nil, fmt.Errorf("%w: caller %s", whitelist.ErrNotOwner, caller)
	}
	ledger, err := st.Ledger()
	if err != nil {
		return nil, err
	}
	if ledger.Amount == 0 {
		return nil, ErrNoFunds
	}

	amount := ledger.Amount
	if err := st.Accounts.Transfer(CollectionAddress, list.Authority, amount); err != nil {
		return nil, fmt.Errorf("withdraw transfer: %w", err)
	}
	ledger.Amount = 0
	if err := st.SaveLedger(ledger); err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("to", list.Authority.String()).
		Uint64("amount", amount).
		Msg("collection withdrawn")

	return &WithdrawResult{Amount: amount, To: list.Authority}, nil
}

// MintResult is returned by Mint.
type MintResult struct {
	Quantity uint64 `json:"quantity"`
	Claimed  uint64 `json:"claimed"`
	Payment  uint64 `json:"payment"`
}

// Mint claims quantity against the caller's allow-list record, charges
// quantity × price / 10^9 into the collection account and mints quantity
// tokens to the caller.
func (p *Program) Mint(st *State, caller types.Address, quantity uint64) (*MintResult, error) {
	list, err := st.List()
	if err != nil {
		return nil, err
	}
	claimed, err := list.Claim(caller, quantity)
	if err != nil {
		return nil, err
	}
	payment, err := Payment(quantity, list.Price)
	if err != nil {
		return nil, err
	}

	if err := st.Accounts.Transfer(caller, CollectionAddress, payment); err != nil {
		return nil, fmt.Errorf("mint payment: %w", err)
	}
	ledger, err := st.Ledger()
	if err != nil {
		return nil, err
	}
	if err := ledger.Add(payment); err != nil {
		return nil, err
	}
	if err := st.SaveLedger(ledger); err != nil {
		return nil, err
	}
	if err := st.SaveList(list); err != nil {
		return nil, err
	}
	if err := p.minter(st).Mint(TokenID, caller, quantity); err != nil {
		return nil, fmt.Errorf("mint tokens: %w", err)
	}

	p.logger.Debug().
		Str("caller", caller.String()).
		Uint64("quantity", quantity).
		Uint64("claimed", claimed).
		Uint64("payment", payment).
		Msg("tokens minted")

	return &MintResult{Quantity: quantity, Claimed: claimed, Payment: payment}, nil
}
