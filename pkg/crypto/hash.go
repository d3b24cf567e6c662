// Package crypto provides the hashing, address derivation and signature
// primitives used by the program host.
package crypto

import (
	"github.com/Klingon-tech/gatemint/pkg/types"
	"github.com/zeebo/blake3"
)

// Domain tags keep label-derived identifiers from colliding with
// pubkey-derived addresses or with each other.
const (
	programAddressDomain = "gatemint/program-address/"
	tokenIDDomain        = "gatemint/token-id/"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// AddressFromPubKey derives an address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}

// DeriveAddress returns the address of a program-owned account identified by
// a constant label (e.g. "receive"). No private key exists for it, so only the
// program can move funds out.
func DeriveAddress(label string) types.Address {
	h := Hash([]byte(programAddressDomain + label))
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}

// DeriveTokenID returns the token type identifier bound to a constant label.
func DeriveTokenID(label string) types.TokenID {
	return types.TokenID(Hash([]byte(tokenIDDomain + label)))
}
