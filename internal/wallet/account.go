package wallet

import (
	"fmt"

	"github.com/Klingon-tech/gatemint/pkg/crypto"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// Wallet is an unlocked wallet. All accounts live under BIP-44 account 0;
// the account index is the last path element.
type Wallet struct {
	Name   string
	master *HDKey
}

func newWallet(name string, seed []byte) (*Wallet, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return &Wallet{Name: name, master: master}, nil
}

// FromMnemonic builds an in-memory wallet without touching a keystore.
func FromMnemonic(name, mnemonic, passphrase string) (*Wallet, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)
	return newWallet(name, seed)
}

// Key returns the signing key of account index.
func (w *Wallet) Key(index uint32) (*crypto.PrivateKey, error) {
	k, err := w.master.DeriveAccount(0, index)
	if err != nil {
		return nil, fmt.Errorf("derive account %d: %w", index, err)
	}
	return k.Signer()
}

// Address returns the address of account index.
func (w *Wallet) Address(index uint32) (types.Address, error) {
	k, err := w.master.DeriveAccount(0, index)
	if err != nil {
		return types.Address{}, fmt.Errorf("derive account %d: %w", index, err)
	}
	return k.Address(), nil
}
