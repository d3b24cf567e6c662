package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func withHRP(t *testing.T, hrp string) {
	t.Helper()
	old := activeHRP
	SetAddressHRP(hrp)
	t.Cleanup(func() { activeHRP = old })
}

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero-value Address should be zero")
	}
	if (Address{0x01}).IsZero() {
		t.Error("non-zero Address should not be zero")
	}
}

func TestAddress_String(t *testing.T) {
	a := Address{0xab, 19: 0xcd}

	withHRP(t, MainnetHRP)
	if s := a.String(); !strings.HasPrefix(s, "gm1") {
		t.Errorf("String() = %s, want gm1 prefix", s)
	}

	SetAddressHRP(TestnetHRP)
	if s := a.String(); !strings.HasPrefix(s, "tgm1") {
		t.Errorf("String() = %s, want tgm1 prefix", s)
	}
}

func TestAddress_Bytes_IsCopy(t *testing.T) {
	a := Address{0x01, 0x02, 0x03}
	b := a.Bytes()
	if len(b) != AddressSize {
		t.Fatalf("Bytes() length = %d, want %d", len(b), AddressSize)
	}
	b[0] = 0xFF
	if a[0] == 0xFF {
		t.Error("Bytes() should return a copy")
	}
}

func TestHexToAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "0123456789abcdef0123456789abcdef01234567", false},
		{"all zeros", strings.Repeat("0", 40), false},
		{"too short", "abcd", true},
		{"too long", strings.Repeat("a", 42), true},
		{"invalid hex", strings.Repeat("z", 40), true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := HexToAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("HexToAddress(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("HexToAddress(%q): %v", tt.input, err)
			}
			if a.Hex() != tt.input {
				t.Errorf("roundtrip: got %s, want %s", a.Hex(), tt.input)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	withHRP(t, MainnetHRP)

	rawHex := "0123456789abcdef0123456789abcdef01234567"
	a, _ := HexToAddress(rawHex)
	mainnet := a.String()
	SetAddressHRP(TestnetHRP)
	testnet := a.String()
	SetAddressHRP(MainnetHRP)

	foreign, _ := Bech32Encode("kgx", a[:])
	short, _ := Bech32Encode(MainnetHRP, a[:10])

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"raw hex", rawHex, false},
		{"bech32 mainnet", mainnet, false},
		{"bech32 testnet", testnet, false},
		{"surrounding space", "  " + mainnet + "\n", false},
		{"foreign prefix", foreign, true},
		{"wrong length", short, true},
		{"garbage", "gm1invalid!!!", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAddress(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress(%q): %v", tt.input, err)
			}
			if got != a {
				t.Errorf("ParseAddress(%q) = %x, want %x", tt.input, got, a)
			}
		})
	}
}

func TestParseAddresses_ReportsIndex(t *testing.T) {
	good := Address{0x01}.Hex()
	_, err := ParseAddresses([]string{good, "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "address 1") {
		t.Errorf("error %q should name the failing index", err)
	}

	out, err := ParseAddresses([]string{good, good})
	if err != nil {
		t.Fatalf("ParseAddresses: %v", err)
	}
	if len(out) != 2 || out[0] != (Address{0x01}) {
		t.Errorf("unexpected result %v", out)
	}
}

func TestAddress_JSON(t *testing.T) {
	withHRP(t, MainnetHRP)
	original := Address{0xab, 0xcd, 0xef}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "gm1") {
		t.Errorf("JSON should contain bech32 form, got %s", data)
	}

	var decoded Address
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: %x != %x", decoded, original)
	}

	var fromHex Address
	if err := json.Unmarshal([]byte(`"`+original.Hex()+`"`), &fromHex); err != nil {
		t.Fatalf("Unmarshal hex: %v", err)
	}
	if fromHex != original {
		t.Errorf("hex decode mismatch: %x != %x", fromHex, original)
	}
}

func TestAddress_JSONMapKey(t *testing.T) {
	withHRP(t, MainnetHRP)
	m := map[Address]uint64{{0x01}: 7}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[Address]uint64
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back[Address{0x01}] != 7 {
		t.Errorf("map roundtrip = %v", back)
	}
}
