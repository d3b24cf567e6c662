package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/Klingon-tech/gatemint/pkg/types"
)

func TestHash_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty input", []byte{}, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"hello", []byte("hello"), "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.input)
			if hex.EncodeToString(got[:]) != tt.want {
				t.Errorf("Hash(%q) = %x, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddressFromPubKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pub := key.PublicKey()

	addr := AddressFromPubKey(pub)
	h := Hash(pub)
	var want types.Address
	copy(want[:], h[:types.AddressSize])
	if addr != want {
		t.Errorf("AddressFromPubKey = %x, want %x", addr, want)
	}
	if key.Address() != addr {
		t.Errorf("PrivateKey.Address() = %x, want %x", key.Address(), addr)
	}
}

func TestDeriveAddress(t *testing.T) {
	a := DeriveAddress("receive")
	if a.IsZero() {
		t.Fatal("derived address should not be zero")
	}
	if DeriveAddress("receive") != a {
		t.Error("DeriveAddress is not deterministic")
	}
	if DeriveAddress("whitelist") == a {
		t.Error("different labels should give different addresses")
	}
	if AddressFromPubKey([]byte("receive")) == a {
		t.Error("label derivation should be domain separated from pubkey derivation")
	}
}

func TestDeriveTokenID(t *testing.T) {
	id := DeriveTokenID("mint")
	if id.IsZero() {
		t.Fatal("token ID should not be zero")
	}
	if DeriveTokenID("mint") != id {
		t.Error("DeriveTokenID is not deterministic")
	}
	if DeriveTokenID("other") == id {
		t.Error("different labels should give different token IDs")
	}
}
