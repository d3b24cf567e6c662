package program

import (
	"errors"

	"github.com/Klingon-tech/gatemint/internal/accounts"
	"github.com/Klingon-tech/gatemint/internal/token"
	"github.com/Klingon-tech/gatemint/internal/whitelist"
	"github.com/Klingon-tech/gatemint/pkg/call"
)

// Program errors.
var (
	ErrNoFunds            = errors.New("no collected funds to withdraw")
	ErrAlreadyInitialized = errors.New("program already initialized")
	ErrNotInitialized     = whitelist.ErrNotInitialized
	ErrPaymentOverflow    = errors.New("payment does not fit in a balance")
	ErrUnknownMethod      = errors.New("unknown program method")
	ErrInvalidParams      = errors.New("invalid call params")
	ErrBadNonce           = errors.New("bad call nonce")
	ErrWrongNetwork       = errors.New("call is for another network")
)

// Error codes carried by receipts and JSON-RPC error objects.
const (
	CodeOK                = 0
	CodeUnauthorized      = -33001
	CodeImmutable         = -33002
	CodeNotOnList         = -33003
	CodeOverLimit         = -33004
	CodeNoFunds           = -33005
	CodeRejected          = -33010
	CodeInsufficientFunds = -33011
	CodeInitState         = -33012
	CodeListFull          = -33013
	CodePaymentOverflow   = -33014
	CodeUnknownMethod     = -32601
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

var errorCodes = []struct {
	err  error
	code int
}{
	{whitelist.ErrNotOwner, CodeUnauthorized},
	{whitelist.ErrImmutable, CodeImmutable},
	{whitelist.ErrNotOnList, CodeNotOnList},
	{whitelist.ErrOverLimit, CodeOverLimit},
	{ErrNoFunds, CodeNoFunds},
	{call.ErrBadSignature, CodeRejected},
	{call.ErrMissingSignature, CodeRejected},
	{call.ErrEmptyMethod, CodeRejected},
	{call.ErrParamsTooLarge, CodeRejected},
	{ErrBadNonce, CodeRejected},
	{ErrWrongNetwork, CodeRejected},
	{accounts.ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrAlreadyInitialized, CodeInitState},
	{ErrNotInitialized, CodeInitState},
	{whitelist.ErrListFull, CodeListFull},
	{ErrPaymentOverflow, CodePaymentOverflow},
	{ErrUnknownMethod, CodeUnknownMethod},
	{ErrInvalidParams, CodeInvalidParams},
	{token.ErrInvalidMetadata, CodeInvalidParams},
}

// ErrorCode maps an error to its code. Unclassified errors are internal.
func ErrorCode(err error) int {
	if err == nil {
		return CodeOK
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
