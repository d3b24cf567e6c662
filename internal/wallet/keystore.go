package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	klog "github.com/Klingon-tech/gatemint/internal/log"
)

const keystoreVersion = 1

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrBadWalletName  = errors.New("wallet name must match [A-Za-z0-9_-]{1,64}")
)

var walletNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// walletFile is the on-disk JSON format of one wallet.
type walletFile struct {
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	SealedSeed []byte         `json:"sealed_seed"`
	Accounts   []AccountEntry `json:"accounts"`
}

// AccountEntry records a derived account so it can be listed without
// unlocking the wallet.
type AccountEntry struct {
	Index   uint32 `json:"index"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Keystore stores encrypted wallets as <dir>/<name>.wallet files.
type Keystore struct {
	dir string
}

// NewKeystore opens (and creates if needed) a keystore directory.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) (string, error) {
	if !walletNameRE.MatchString(name) {
		return "", ErrBadWalletName
	}
	return filepath.Join(ks.dir, name+".wallet"), nil
}

// Exists reports whether a wallet with this name is stored.
func (ks *Keystore) Exists(name string) bool {
	path, err := ks.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Create seals seed under password and records account 0.
func (ks *Keystore) Create(name string, seed, password []byte, params KDFParams) (*Wallet, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, name)
	}

	w, err := newWallet(name, seed)
	if err != nil {
		return nil, err
	}
	first, err := w.Address(0)
	if err != nil {
		return nil, err
	}

	sealed, err := Seal(seed, password, params)
	if err != nil {
		return nil, fmt.Errorf("seal seed: %w", err)
	}
	wf := &walletFile{
		Version:    keystoreVersion,
		CreatedAt:  time.Now().UTC(),
		SealedSeed: sealed,
		Accounts:   []AccountEntry{{Index: 0, Name: "default", Address: first.String()}},
	}
	if err := writeWalletFile(path, wf); err != nil {
		return nil, err
	}

	klog.Wallet.Info().Str("wallet", name).Str("address", first.String()).Msg("wallet created")
	return w, nil
}

// Unlock decrypts a wallet's seed and returns a signing handle.
func (ks *Keystore) Unlock(name string, password []byte) (*Wallet, error) {
	wf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	seed, err := Open(wf.SealedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("unlock %s: %w", name, err)
	}
	defer wipe(seed)
	return newWallet(name, seed)
}

// Accounts lists the recorded accounts of a wallet, ordered by index.
func (ks *Keystore) Accounts(name string) ([]AccountEntry, error) {
	wf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	out := append([]AccountEntry(nil), wf.Accounts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// NextIndex returns the lowest index above every recorded account.
func (ks *Keystore) NextIndex(name string) (uint32, error) {
	accts, err := ks.Accounts(name)
	if err != nil {
		return 0, err
	}
	if len(accts) == 0 {
		return 0, nil
	}
	return accts[len(accts)-1].Index + 1, nil
}

// AddAccount records a derived account. Re-adding the same index with the
// same address is a no-op.
func (ks *Keystore) AddAccount(name string, acct AccountEntry) error {
	wf, err := ks.read(name)
	if err != nil {
		return err
	}
	for _, existing := range wf.Accounts {
		if existing.Index != acct.Index {
			continue
		}
		if existing.Address == acct.Address {
			return nil
		}
		return fmt.Errorf("account index %d already recorded with address %s", acct.Index, existing.Address)
	}
	wf.Accounts = append(wf.Accounts, acct)

	path, _ := ks.path(name)
	return writeWalletFile(path, wf)
}

// List returns the names of all stored wallets, sorted.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".wallet" {
			names = append(names, e.Name()[:len(e.Name())-len(ext)])
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
		}
		return err
	}
	klog.Wallet.Info().Str("wallet", name).Msg("wallet deleted")
	return nil
}

func (ks *Keystore) read(name string) (*walletFile, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
		}
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if wf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", wf.Version)
	}
	return &wf, nil
}

// writeWalletFile writes through a temp file so a crash never leaves a
// truncated wallet behind.
func writeWalletFile(path string, wf *walletFile) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}
