package config

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"os"

	"github.com/Klingon-tech/gatemint/pkg/crypto"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// Denomination constants.
// 1 coin = 10^9 base units, matching the price scale of the minting program.
const (
	Decimals  = 9
	Coin      = 1_000_000_000
	MilliCoin = 1_000_000
	MicroCoin = 1_000
)

// Genesis holds the chain identity and the initial coin allocations.
// It is applied once when a node opens an empty state database.
type Genesis struct {
	// Chain identity. ChainID is also the network name every call is
	// signed over.
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`
	Symbol    string `json:"symbol,omitempty"` // Native coin symbol (e.g., "GMC")

	Timestamp uint64 `json:"timestamp"`
	ExtraData string `json:"extra_data,omitempty"`

	// Initial allocations (address -> balance in base units)
	Alloc map[string]uint64 `json:"alloc"`
}

// =============================================================================
// Testnet Identity
//
// Derived from the well-known BIP-39 test mnemonic (DO NOT use on mainnet):
//
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon art
//
// Derivation path: m/44'/8888'/0'/0/0 (no passphrase)
// =============================================================================

const (
	// TestnetMnemonic is the well-known seed phrase for the testnet faucet.
	TestnetMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

	// TestnetPubKey is the compressed public key (hex) derived from TestnetMnemonic.
	TestnetPubKey = "030bef68f8657df88098a0546da1712c88b459788bea1a6bbe964004166a25144f"

	// TestnetPrivKey is the private key (hex) derived from TestnetMnemonic.
	TestnetPrivKey = "1f0717e6e34acc6721021f4dfed54558ec8452452b6195545d06dd348b220091"
)

// TestnetAddress returns the faucet address derived from TestnetPrivKey,
// encoded with the testnet prefix.
func TestnetAddress() string {
	key, err := crypto.PrivateKeyFromHex(TestnetPrivKey)
	if err != nil {
		panic("config: bad testnet key: " + err.Error())
	}
	addr := key.Address()
	s, err := types.Bech32Encode(types.TestnetHRP, addr[:])
	if err != nil {
		panic("config: encode testnet address: " + err.Error())
	}
	return s
}

// =============================================================================
// Pre-defined genesis configurations
// =============================================================================

// MainnetGenesis returns the mainnet genesis configuration.
// Mainnet starts without allocations; operators fund accounts through a
// custom genesis file.
func MainnetGenesis() *Genesis {
	return &Genesis{
		ChainID:   "gatemint-mainnet-1",
		ChainName: "Gatemint Mainnet",
		Symbol:    "GMC",
		Timestamp: 1792281600, // 2026-10-18
		ExtraData: "Gatemint Genesis",
		Alloc:     map[string]uint64{},
	}
}

// TestnetGenesis returns the testnet genesis configuration.
func TestnetGenesis() *Genesis {
	g := MainnetGenesis()
	g.ChainID = "gatemint-testnet-1"
	g.ChainName = "Gatemint Testnet"
	g.ExtraData = "Gatemint Testnet Genesis"

	// Testnet allocation: 1,000,000 GMC to the well-known testnet address.
	g.Alloc = map[string]uint64{
		TestnetAddress(): 1_000_000 * Coin,
	}
	return g
}

// GenesisFor returns the genesis config for the given network.
func GenesisFor(network NetworkType) *Genesis {
	switch network {
	case Testnet:
		return TestnetGenesis()
	default:
		return MainnetGenesis()
	}
}

// =============================================================================
// Genesis file I/O
// =============================================================================

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}

	// Allocation addresses must parse and the total must fit in uint64.
	var total uint64
	for addrStr, v := range g.Alloc {
		if _, err := types.ParseAddress(addrStr); err != nil {
			return fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		sum, carry := bits.Add64(total, v, 0)
		if carry != 0 {
			return fmt.Errorf("genesis allocations overflow uint64")
		}
		total = sum
	}
	return nil
}

// TotalAlloc returns the sum of all allocations. Call Validate first.
func (g *Genesis) TotalAlloc() uint64 {
	var total uint64
	for _, v := range g.Alloc {
		total += v
	}
	return total
}

// Hash returns a BLAKE3 hash of the genesis configuration.
// Used to detect a state database opened with a different genesis.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
