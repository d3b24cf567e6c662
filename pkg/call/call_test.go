package call

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Klingon-tech/gatemint/pkg/crypto"
)

type mintParams struct {
	Quantity uint64 `json:"quantity"`
}

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

func signedCall(t *testing.T, key *crypto.PrivateKey) *Call {
	t.Helper()
	c, err := New("testnet", "mint", mintParams{Quantity: 3}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Sign(key); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return c
}

func TestCall_SignVerify(t *testing.T) {
	key := mustKey(t)
	c := signedCall(t, key)

	caller, err := c.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if caller != key.Address() {
		t.Errorf("caller = %s, want %s", caller, key.Address())
	}
}

func TestCall_VerifyTampered(t *testing.T) {
	key := mustKey(t)

	tests := []struct {
		name   string
		mutate func(c *Call)
	}{
		{"method", func(c *Call) { c.Method = "withdraw" }},
		{"params", func(c *Call) { c.Params = json.RawMessage(`{"quantity":300}`) }},
		{"nonce", func(c *Call) { c.Nonce = 2 }},
		{"network", func(c *Call) { c.Network = "mainnet" }},
		{"pubkey", func(c *Call) { c.PubKey = mustKey(t).PublicKey() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := signedCall(t, key)
			tt.mutate(c)
			if _, err := c.Verify(); !errors.Is(err, ErrBadSignature) {
				t.Errorf("Verify() err = %v, want ErrBadSignature", err)
			}
		})
	}
}

func TestCall_Validate(t *testing.T) {
	key := mustKey(t)

	unsigned, _ := New("testnet", "freeze", nil, 1)
	if err := unsigned.Validate(); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("unsigned Validate() = %v, want ErrMissingSignature", err)
	}

	noMethod := signedCall(t, key)
	noMethod.Method = ""
	if err := noMethod.Validate(); !errors.Is(err, ErrEmptyMethod) {
		t.Errorf("empty method Validate() = %v, want ErrEmptyMethod", err)
	}

	big := signedCall(t, key)
	big.Params = make(json.RawMessage, MaxParamsSize+1)
	if err := big.Validate(); !errors.Is(err, ErrParamsTooLarge) {
		t.Errorf("large params Validate() = %v, want ErrParamsTooLarge", err)
	}
}

func TestCall_HashIgnoresSignatureAndWhitespace(t *testing.T) {
	key := mustKey(t)
	c := signedCall(t, key)
	h1 := c.Hash()

	c.Signature = []byte("other")
	if c.Hash() != h1 {
		t.Error("Hash() should not depend on the signature")
	}

	c.Params = json.RawMessage("{ \"quantity\" : 3 }")
	if c.Hash() != h1 {
		t.Error("Hash() should not depend on params whitespace")
	}
}

func TestCall_HashDistinctNonce(t *testing.T) {
	key := mustKey(t)
	a := signedCall(t, key)
	b := signedCall(t, key)
	b.Nonce = 2
	if a.Hash() == b.Hash() {
		t.Error("calls with different nonces share a hash")
	}
}

func TestCall_JSONRoundTrip(t *testing.T) {
	key := mustKey(t)
	c := signedCall(t, key)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Call
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, err := got.Verify(); err != nil {
		t.Fatalf("decoded call does not verify: %v", err)
	}
	if got.Hash() != c.Hash() {
		t.Error("decoded call hash differs")
	}
}

func TestCall_UnmarshalBadHex(t *testing.T) {
	var c Call
	err := json.Unmarshal([]byte(`{"method":"mint","nonce":1,"pubkey":"zz"}`), &c)
	if err == nil {
		t.Fatal("expected error for invalid pubkey hex")
	}
}

func TestCall_DecodeParams(t *testing.T) {
	c, _ := New("testnet", "mint", mintParams{Quantity: 7}, 1)

	var p mintParams
	if err := c.DecodeParams(&p); err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if p.Quantity != 7 {
		t.Errorf("Quantity = %d, want 7", p.Quantity)
	}

	c.Params = json.RawMessage(`{"quantity":1,"extra":true}`)
	if err := c.DecodeParams(&p); err == nil {
		t.Error("DecodeParams should reject unknown fields")
	}

	c.Params = nil
	p = mintParams{Quantity: 9}
	if err := c.DecodeParams(&p); err != nil || p.Quantity != 9 {
		t.Errorf("empty params: %v, quantity %d", err, p.Quantity)
	}
}
