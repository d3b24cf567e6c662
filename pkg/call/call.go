// Package call defines the signed call envelope submitted to the program host.
package call

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/gatemint/pkg/crypto"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// signingDomain prefixes every signing payload.
const signingDomain = "gatemint/call/v1"

// MaxParamsSize bounds the params document of a single call.
const MaxParamsSize = 64 * 1024

// Validation errors.
var (
	ErrEmptyMethod      = errors.New("call method is empty")
	ErrParamsTooLarge   = errors.New("call params too large")
	ErrMissingSignature = errors.New("call is not signed")
	ErrBadSignature     = errors.New("invalid call signature")
)

// Call is one signed invocation of a program entry point. The signer's
// address is the caller; Nonce must be exactly one above the caller's stored
// nonce.
type Call struct {
	Network   string          `json:"network"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
	Nonce     uint64          `json:"nonce"`
	PubKey    []byte          `json:"-"`
	Signature []byte          `json:"-"`
}

// callJSON carries the hex-encoded byte fields.
type callJSON struct {
	Network   string          `json:"network"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
	Nonce     uint64          `json:"nonce"`
	PubKey    string          `json:"pubkey,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

// New builds an unsigned call, encoding params as JSON.
func New(network, method string, params any, nonce uint64) (*Call, error) {
	c := &Call{Network: network, Method: method, Nonce: nonce}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
		c.Params = raw
	}
	return c, nil
}

// MarshalJSON encodes the call with hex-encoded pubkey and signature.
func (c Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(callJSON{
		Network:   c.Network,
		Method:    c.Method,
		Params:    c.Params,
		Nonce:     c.Nonce,
		PubKey:    hex.EncodeToString(c.PubKey),
		Signature: hex.EncodeToString(c.Signature),
	})
}

// UnmarshalJSON decodes a call with hex-encoded pubkey and signature.
func (c *Call) UnmarshalJSON(data []byte) error {
	var j callJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	pub, err := hex.DecodeString(j.PubKey)
	if err != nil {
		return fmt.Errorf("invalid pubkey hex: %w", err)
	}
	sig, err := hex.DecodeString(j.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	*c = Call{
		Network:   j.Network,
		Method:    j.Method,
		Params:    j.Params,
		Nonce:     j.Nonce,
		PubKey:    pub,
		Signature: sig,
	}
	return nil
}

// SigningBytes returns the canonical byte representation that is signed.
// Format: domain | len(network)(4) network | len(method)(4) method |
// len(params)(4) compact(params) | nonce(8) | pubkey.
func (c *Call) SigningBytes() []byte {
	params := compactParams(c.Params)

	buf := make([]byte, 0, len(signingDomain)+len(c.Network)+len(c.Method)+len(params)+len(c.PubKey)+20)
	buf = append(buf, signingDomain...)
	buf = appendField(buf, []byte(c.Network))
	buf = appendField(buf, []byte(c.Method))
	buf = appendField(buf, params)
	buf = binary.LittleEndian.AppendUint64(buf, c.Nonce)
	buf = append(buf, c.PubKey...)
	return buf
}

// Hash returns the call ID: BLAKE3 of the signing bytes. Receipts are keyed
// by it. The signature is excluded.
func (c *Call) Hash() types.Hash {
	return crypto.Hash(c.SigningBytes())
}

// Sign sets the signer's public key and signs the call.
func (c *Call) Sign(signer crypto.Signer) error {
	c.PubKey = signer.PublicKey()
	h := c.Hash()
	sig, err := signer.Sign(h[:])
	if err != nil {
		return fmt.Errorf("sign call: %w", err)
	}
	c.Signature = sig
	return nil
}

// Validate checks the call's shape without verifying the signature.
func (c *Call) Validate() error {
	if c.Method == "" {
		return ErrEmptyMethod
	}
	if len(c.Params) > MaxParamsSize {
		return fmt.Errorf("%w: %d bytes", ErrParamsTooLarge, len(c.Params))
	}
	if len(c.Signature) == 0 || len(c.PubKey) == 0 {
		return ErrMissingSignature
	}
	return nil
}

// Verify checks the signature and returns the caller's address.
func (c *Call) Verify() (types.Address, error) {
	if err := c.Validate(); err != nil {
		return types.Address{}, err
	}
	h := c.Hash()
	if !crypto.VerifySignature(h[:], c.Signature, c.PubKey) {
		return types.Address{}, ErrBadSignature
	}
	return crypto.AddressFromPubKey(c.PubKey), nil
}

// DecodeParams unmarshals the params document into v. Empty params leave v
// untouched.
func (c *Call) DecodeParams(v any) error {
	if len(bytes.TrimSpace(c.Params)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(c.Params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s params: %w", c.Method, err)
	}
	return nil
}

func appendField(buf, field []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(field)))
	return append(buf, field...)
}

// compactParams strips insignificant whitespace so re-encoded JSON keeps the
// same signing bytes. Invalid JSON is signed as-is and rejected on decode.
func compactParams(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
