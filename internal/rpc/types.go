package rpc

import (
	"github.com/Klingon-tech/gatemint/internal/program"
	"github.com/Klingon-tech/gatemint/internal/token"
	"github.com/Klingon-tech/gatemint/internal/whitelist"
	"github.com/Klingon-tech/gatemint/pkg/call"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// JSON-RPC 2.0 error codes. Program failures carry the codes from
// program.ErrorCode.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface so clients can return it directly.
func (e *Error) Error() string {
	return e.Message
}

// ── Param types ─────────────────────────────────────────────────────────

// CallSubmitParam is used by call_submit.
type CallSubmitParam struct {
	Call *call.Call `json:"call"`
}

// HashParam is used by call_getReceipt.
type HashParam struct {
	Hash string `json:"hash"`
}

// AddressParam is used by endpoints that take a single address.
type AddressParam struct {
	Address string `json:"address"`
}

// TokenParam is used by token endpoints. An empty TokenID selects the
// program's token.
type TokenParam struct {
	TokenID string `json:"token_id,omitempty"`
	Address string `json:"address,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// NodeInfoResult is returned by node_getInfo.
type NodeInfoResult struct {
	Network     string        `json:"network"`
	ChainName   string        `json:"chain_name"`
	Symbol      string        `json:"symbol,omitempty"`
	Version     string        `json:"version"`
	Collection  types.Address `json:"collection"`
	TokenID     types.TokenID `json:"token_id"`
	Initialized bool          `json:"initialized"`
	TotalSupply uint64        `json:"total_supply"`
	Methods     []string      `json:"methods"`
}

// WhitelistResult is returned by whitelist_get.
type WhitelistResult struct {
	Authority types.Address     `json:"authority"`
	Immutable bool              `json:"immutable"`
	Limit     uint64            `json:"limit"`
	Price     uint64            `json:"price"`
	Capacity  int               `json:"capacity"`
	Active    int               `json:"active"`
	Entries   []whitelist.Entry `json:"entries"`
}

// EntryResult is returned by whitelist_getEntry.
type EntryResult struct {
	whitelist.Entry
	Remaining uint64 `json:"remaining"` // Tokens still claimable under the current limit.
}

// LedgerResult is returned by ledger_get.
type LedgerResult struct {
	Amount     uint64        `json:"amount"`
	Collection types.Address `json:"collection"`
	Balance    uint64        `json:"balance"` // Native balance of the collection account.
}

// TokenInfoResult is returned by token_getInfo.
type TokenInfoResult struct {
	TokenID  types.TokenID `json:"token_id"`
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	URI      string        `json:"uri"`
	Decimals uint8         `json:"decimals"`
	Creator  types.Address `json:"creator"`
	Supply   uint64        `json:"supply"`
}

// TokenBalanceResult is returned by token_getBalance.
type TokenBalanceResult struct {
	TokenID types.TokenID `json:"token_id"`
	Address types.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

// TokenHoldersResult is returned by token_getHolders.
type TokenHoldersResult struct {
	TokenID types.TokenID  `json:"token_id"`
	Holders []token.Holder `json:"holders"`
}

// ReceiptResult is returned by call_submit and call_getReceipt.
type ReceiptResult = program.Receipt
