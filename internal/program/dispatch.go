package program

import (
	"fmt"

	"github.com/Klingon-tech/gatemint/pkg/call"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// Call methods.
const (
	MethodInit              = "init"
	MethodInsert            = "insert"
	MethodDelete            = "delete"
	MethodFreeze            = "freeze"
	MethodTransferAuthority = "transferAuthority"
	MethodUpdatePrice       = "updatePrice"
	MethodUpdateLimit       = "updateLimit"
	MethodWithdraw          = "withdraw"
	MethodMint              = "mint"
)

// InitParams are the params of an init call.
type InitParams struct {
	Metadata  InitMetadata  `json:"metadata"`
	Whitelist InitWhitelist `json:"whitelist"`
}

// AddressesParams are the params of insert and delete calls.
type AddressesParams struct {
	Addresses []types.Address `json:"addresses"`
}

// TransferAuthorityParams are the params of a transferAuthority call.
type TransferAuthorityParams struct {
	NewOwner types.Address `json:"new_owner"`
}

// PriceParams are the params of an updatePrice call.
type PriceParams struct {
	Price uint64 `json:"price"`
}

// LimitParams are the params of an updateLimit call.
type LimitParams struct {
	Limit uint64 `json:"limit"`
}

// MintParams are the params of a mint call.
type MintParams struct {
	Quantity uint64 `json:"quantity"`
}

type handler func(p *Program, st *State, caller types.Address, c *call.Call) (any, error)

var handlers = map[string]handler{
	MethodInit: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params InitParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return p.Init(st, caller, params.Metadata, params.Whitelist)
	},
	MethodInsert: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params AddressesParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return nil, p.Insert(st, caller, params.Addresses)
	},
	MethodDelete: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params AddressesParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return nil, p.Delete(st, caller, params.Addresses)
	},
	MethodFreeze: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		return nil, p.Freeze(st, caller)
	},
	MethodTransferAuthority: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params TransferAuthorityParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return nil, p.TransferAuthority(st, caller, params.NewOwner)
	},
	MethodUpdatePrice: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params PriceParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return nil, p.UpdatePrice(st, caller, params.Price)
	},
	MethodUpdateLimit: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params LimitParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return nil, p.UpdateLimit(st, caller, params.Limit)
	},
	MethodWithdraw: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		return p.Withdraw(st, caller)
	},
	MethodMint: func(p *Program, st *State, caller types.Address, c *call.Call) (any, error) {
		var params MintParams
		if err := decode(c, &params); err != nil {
			return nil, err
		}
		return p.Mint(st, caller, params.Quantity)
	},
}

// Methods lists every call method the program accepts.
func Methods() []string {
	return []string{
		MethodInit, MethodInsert, MethodDelete, MethodFreeze, MethodTransferAuthority,
		MethodUpdatePrice, MethodUpdateLimit, MethodWithdraw, MethodMint,
	}
}

// Dispatch routes a verified call to its entry point.
func (p *Program) Dispatch(st *State, caller types.Address, c *call.Call) (any, error) {
	h, ok := handlers[c.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, c.Method)
	}
	return h(p, st, caller, c)
}

func decode(c *call.Call, v any) error {
	if err := c.DecodeParams(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
