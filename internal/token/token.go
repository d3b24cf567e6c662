// Package token implements the fungible token minted by the program: one
// token type registry entry with metadata and supply, plus per-address
// balances.
package token

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/gatemint/pkg/types"
)

// Metadata field limits.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
	MaxDecimals  = 18
)

// Token errors.
var (
	ErrInvalidMetadata = errors.New("invalid token metadata")
	ErrTokenExists     = errors.New("token already registered")
	ErrUnknownToken    = errors.New("unknown token")
	ErrSupplyOverflow  = errors.New("token supply overflow")
)

// Metadata holds descriptive information about a token.
type Metadata struct {
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	URI      string        `json:"uri"`
	Decimals uint8         `json:"decimals"`
	Creator  types.Address `json:"creator"`
	Supply   uint64        `json:"supply"`
}

// Validate checks the descriptive fields.
func (m *Metadata) Validate() error {
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidMetadata)
	case len(m.Name) > MaxNameLen:
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidMetadata, MaxNameLen)
	case m.Symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrInvalidMetadata)
	case len(m.Symbol) > MaxSymbolLen:
		return fmt.Errorf("%w: symbol longer than %d bytes", ErrInvalidMetadata, MaxSymbolLen)
	case len(m.URI) > MaxURILen:
		return fmt.Errorf("%w: uri longer than %d bytes", ErrInvalidMetadata, MaxURILen)
	case m.Decimals > MaxDecimals:
		return fmt.Errorf("%w: decimals %d above %d", ErrInvalidMetadata, m.Decimals, MaxDecimals)
	}
	return nil
}
