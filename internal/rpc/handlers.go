package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/gatemint/config"
	"github.com/Klingon-tech/gatemint/internal/program"
	"github.com/Klingon-tech/gatemint/internal/token"
	"github.com/Klingon-tech/gatemint/internal/whitelist"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// programError converts a program error into a JSON-RPC error object.
func programError(err error) *Error {
	return &Error{Code: program.ErrorCode(err), Message: err.Error()}
}

func internalError(err error) *Error {
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

func parseAddressParam(req *Request) (types.Address, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return types.Address{}, err
	}
	if params.Address == "" {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "address is required"}
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid address: %v", err)}
	}
	return addr, nil
}

// ── Calls ───────────────────────────────────────────────────────────────

func (s *Server) handleCallSubmit(ctx context.Context, req *Request) (interface{}, *Error) {
	var params CallSubmitParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Call == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "call is required"}
	}

	rcpt, err := s.exec.Execute(ctx, params.Call)
	if err != nil {
		rpcErr := programError(err)
		if rcpt != nil {
			// The call ran and failed; its receipt is stored under the hash.
			rpcErr.Data = rcpt
		}
		return nil, rpcErr
	}
	return rcpt, nil
}

func (s *Server) handleCallGetReceipt(req *Request) (interface{}, *Error) {
	var params HashParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	hash, err := types.HexToHash(params.Hash)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid hash: %v", err)}
	}

	rcpt, err := s.exec.Receipts().Get(hash)
	if errors.Is(err, program.ErrReceiptNotFound) {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("receipt %s not found", hash)}
	}
	if err != nil {
		return nil, internalError(err)
	}
	return rcpt, nil
}

// ── Program state ───────────────────────────────────────────────────────

func (s *Server) loadList() (*whitelist.List, *Error) {
	l, err := program.NewState(s.db).List()
	if err != nil {
		return nil, programError(err)
	}
	return l, nil
}

func (s *Server) handleWhitelistGet(req *Request) (interface{}, *Error) {
	l, rpcErr := s.loadList()
	if rpcErr != nil {
		return nil, rpcErr
	}
	return &WhitelistResult{
		Authority: l.Authority,
		Immutable: l.Immutable,
		Limit:     l.Limit,
		Price:     l.Price,
		Capacity:  l.Capacity,
		Active:    l.Active(),
		Entries:   l.Entries(),
	}, nil
}

func (s *Server) handleWhitelistGetEntry(req *Request) (interface{}, *Error) {
	addr, rpcErr := parseAddressParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	l, rpcErr := s.loadList()
	if rpcErr != nil {
		return nil, rpcErr
	}

	e, ok := l.Get(addr)
	if !ok {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s has no allow-list record", addr)}
	}
	res := &EntryResult{Entry: e}
	if !e.Deleted && e.Claimed < l.Limit {
		res.Remaining = l.Limit - e.Claimed
	}
	return res, nil
}

func (s *Server) handleLedgerGet(req *Request) (interface{}, *Error) {
	var (
		ledger *program.Ledger
		bal    uint64
	)
	err := s.exec.View(func(st *program.State) error {
		var err error
		if ledger, err = st.Ledger(); err != nil {
			return err
		}
		bal, err = st.Accounts.Balance(program.CollectionAddress)
		return err
	})
	if err != nil {
		return nil, programError(err)
	}
	return &LedgerResult{
		Amount:     ledger.Amount,
		Collection: program.CollectionAddress,
		Balance:    bal,
	}, nil
}

func (s *Server) handleAccountGet(req *Request) (interface{}, *Error) {
	addr, rpcErr := parseAddressParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	acct, err := program.NewState(s.db).Accounts.Get(addr)
	if err != nil {
		return nil, internalError(err)
	}
	return acct, nil
}

// ── Tokens ──────────────────────────────────────────────────────────────

// parseTokenParam reads optional token params; absent params select the
// program's token.
func parseTokenParam(req *Request) (TokenParam, types.TokenID, *Error) {
	var params TokenParam
	if req.Params != nil {
		if err := parseParams(req, &params); err != nil {
			return params, types.TokenID{}, err
		}
	}
	if params.TokenID == "" {
		return params, program.TokenID, nil
	}
	h, err := types.HexToHash(params.TokenID)
	if err != nil {
		return params, types.TokenID{}, &Error{Code: CodeInvalidParams, Message: "invalid token_id: must be 32-byte hex"}
	}
	return params, types.TokenID(h), nil
}

func (s *Server) handleTokenGetInfo(req *Request) (interface{}, *Error) {
	_, id, rpcErr := parseTokenParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}

	meta, err := program.NewState(s.db).Tokens.Get(id)
	if errors.Is(err, token.ErrUnknownToken) {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("token %s not found", id)}
	}
	if err != nil {
		return nil, internalError(err)
	}
	return &TokenInfoResult{
		TokenID:  id,
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		URI:      meta.URI,
		Decimals: meta.Decimals,
		Creator:  meta.Creator,
		Supply:   meta.Supply,
	}, nil
}

func (s *Server) handleTokenGetBalance(req *Request) (interface{}, *Error) {
	params, id, rpcErr := parseTokenParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if params.Address == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "address is required"}
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid address: %v", err)}
	}

	bal, err := program.NewState(s.db).Tokens.Balance(id, addr)
	if err != nil {
		return nil, internalError(err)
	}
	return &TokenBalanceResult{TokenID: id, Address: addr, Balance: bal}, nil
}

func (s *Server) handleTokenGetHolders(req *Request) (interface{}, *Error) {
	_, id, rpcErr := parseTokenParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	holders, err := program.NewState(s.db).Tokens.Holders(id)
	if err != nil {
		return nil, internalError(err)
	}
	return &TokenHoldersResult{TokenID: id, Holders: holders}, nil
}

// ── Node ────────────────────────────────────────────────────────────────

func (s *Server) handleNodeGetInfo(req *Request) (interface{}, *Error) {
	var (
		initialized bool
		supply      uint64
	)
	err := s.exec.View(func(st *program.State) error {
		var err error
		if initialized, err = st.Initialized(); err != nil {
			return err
		}
		supply, err = st.Accounts.TotalSupply()
		return err
	})
	if err != nil {
		return nil, internalError(err)
	}
	return &NodeInfoResult{
		Network:     s.genesis.ChainID,
		ChainName:   s.genesis.ChainName,
		Symbol:      s.genesis.Symbol,
		Version:     config.Version,
		Collection:  program.CollectionAddress,
		TokenID:     program.TokenID,
		Initialized: initialized,
		TotalSupply: supply,
		Methods:     program.Methods(),
	}, nil
}
