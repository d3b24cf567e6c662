package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/gatemint/internal/accounts"
	"github.com/Klingon-tech/gatemint/internal/program"
	"github.com/Klingon-tech/gatemint/internal/rpc"
	"github.com/Klingon-tech/gatemint/pkg/call"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// NodeInfo calls node_getInfo.
func (c *Client) NodeInfo(ctx context.Context) (*rpc.NodeInfoResult, error) {
	var res rpc.NodeInfoResult
	if err := c.CallContext(ctx, "node_getInfo", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Submit sends a signed call. A call that ran and failed returns its
// receipt together with the *RPCError.
func (c *Client) Submit(ctx context.Context, cl *call.Call) (*program.Receipt, error) {
	var rcpt program.Receipt
	err := c.CallContext(ctx, "call_submit", rpc.CallSubmitParam{Call: cl}, &rcpt)
	if err == nil {
		return &rcpt, nil
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && len(rpcErr.Data) > 0 {
		var failed program.Receipt
		if json.Unmarshal(rpcErr.Data, &failed) == nil {
			return &failed, err
		}
	}
	return nil, err
}

// Receipt calls call_getReceipt.
func (c *Client) Receipt(ctx context.Context, hash types.Hash) (*program.Receipt, error) {
	var rcpt program.Receipt
	if err := c.CallContext(ctx, "call_getReceipt", rpc.HashParam{Hash: hash.String()}, &rcpt); err != nil {
		return nil, err
	}
	return &rcpt, nil
}

// Whitelist calls whitelist_get.
func (c *Client) Whitelist(ctx context.Context) (*rpc.WhitelistResult, error) {
	var res rpc.WhitelistResult
	if err := c.CallContext(ctx, "whitelist_get", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Entry calls whitelist_getEntry.
func (c *Client) Entry(ctx context.Context, addr types.Address) (*rpc.EntryResult, error) {
	var res rpc.EntryResult
	if err := c.CallContext(ctx, "whitelist_getEntry", rpc.AddressParam{Address: addr.String()}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ledger calls ledger_get.
func (c *Client) Ledger(ctx context.Context) (*rpc.LedgerResult, error) {
	var res rpc.LedgerResult
	if err := c.CallContext(ctx, "ledger_get", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Account calls account_get.
func (c *Client) Account(ctx context.Context, addr types.Address) (*accounts.Account, error) {
	var res accounts.Account
	if err := c.CallContext(ctx, "account_get", rpc.AddressParam{Address: addr.String()}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// NextNonce returns the nonce the next call from addr must carry.
func (c *Client) NextNonce(ctx context.Context, addr types.Address) (uint64, error) {
	acct, err := c.Account(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("fetch nonce: %w", err)
	}
	return acct.Nonce + 1, nil
}

// TokenInfo calls token_getInfo for the program's token.
func (c *Client) TokenInfo(ctx context.Context) (*rpc.TokenInfoResult, error) {
	var res rpc.TokenInfoResult
	if err := c.CallContext(ctx, "token_getInfo", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TokenBalance calls token_getBalance for the program's token.
func (c *Client) TokenBalance(ctx context.Context, addr types.Address) (*rpc.TokenBalanceResult, error) {
	var res rpc.TokenBalanceResult
	if err := c.CallContext(ctx, "token_getBalance", rpc.TokenParam{Address: addr.String()}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TokenHolders calls token_getHolders for the program's token.
func (c *Client) TokenHolders(ctx context.Context) (*rpc.TokenHoldersResult, error) {
	var res rpc.TokenHoldersResult
	if err := c.CallContext(ctx, "token_getHolders", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
