package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := NewKeystore(filepath.Join(t.TempDir(), "keystore"))
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	return ks
}

func TestKeystore_CreateAndUnlock(t *testing.T) {
	ks := testKeystore(t)
	seed := testSeed(t)

	w, err := ks.Create("main", seed, []byte("pw"), fastParams())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !ks.Exists("main") {
		t.Fatal("Exists() = false after Create")
	}

	unlocked, err := ks.Unlock("main", []byte("pw"))
	if err != nil {
		t.Fatalf("Unlock() error: %v", err)
	}
	a, _ := w.Address(0)
	b, _ := unlocked.Address(0)
	if a != b {
		t.Errorf("unlocked address %s, want %s", b, a)
	}

	accts, err := ks.Accounts("main")
	if err != nil {
		t.Fatalf("Accounts() error: %v", err)
	}
	if len(accts) != 1 || accts[0].Index != 0 || accts[0].Address != a.String() {
		t.Errorf("Accounts() = %+v", accts)
	}
}

func TestKeystore_CreateDuplicate(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("dup", testSeed(t), []byte("pw"), fastParams())
	if _, err := ks.Create("dup", testSeed(t), []byte("pw"), fastParams()); !errors.Is(err, ErrWalletExists) {
		t.Errorf("Create() err = %v, want ErrWalletExists", err)
	}
}

func TestKeystore_BadName(t *testing.T) {
	ks := testKeystore(t)
	for _, name := range []string{"", "../escape", "a/b", "has space"} {
		if _, err := ks.Create(name, testSeed(t), []byte("pw"), fastParams()); !errors.Is(err, ErrBadWalletName) {
			t.Errorf("Create(%q) err = %v, want ErrBadWalletName", name, err)
		}
	}
}

func TestKeystore_UnlockWrongPassword(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("w", testSeed(t), []byte("right"), fastParams())
	if _, err := ks.Unlock("w", []byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Unlock() err = %v, want ErrWrongPassword", err)
	}
}

func TestKeystore_UnlockMissing(t *testing.T) {
	ks := testKeystore(t)
	if _, err := ks.Unlock("nope", []byte("pw")); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("Unlock() err = %v, want ErrWalletNotFound", err)
	}
}

func TestKeystore_AddAccount(t *testing.T) {
	ks := testKeystore(t)
	w, _ := ks.Create("w", testSeed(t), []byte("pw"), fastParams())

	next, err := ks.NextIndex("w")
	if err != nil || next != 1 {
		t.Fatalf("NextIndex() = %d, %v; want 1", next, err)
	}
	addr, _ := w.Address(next)
	entry := AccountEntry{Index: next, Name: "minter", Address: addr.String()}
	if err := ks.AddAccount("w", entry); err != nil {
		t.Fatalf("AddAccount() error: %v", err)
	}
	// Same entry again is a no-op.
	if err := ks.AddAccount("w", entry); err != nil {
		t.Fatalf("AddAccount() repeat error: %v", err)
	}
	// Same index, different address is rejected.
	if err := ks.AddAccount("w", AccountEntry{Index: next, Address: "other"}); err == nil {
		t.Error("AddAccount() with conflicting address should fail")
	}

	accts, _ := ks.Accounts("w")
	if len(accts) != 2 || !reflect.DeepEqual(accts[1], entry) {
		t.Errorf("Accounts() = %+v", accts)
	}
	if next, _ := ks.NextIndex("w"); next != 2 {
		t.Errorf("NextIndex() = %d, want 2", next)
	}
}

func TestKeystore_ListAndDelete(t *testing.T) {
	ks := testKeystore(t)
	for _, name := range []string{"beta", "alpha"} {
		if _, err := ks.Create(name, testSeed(t), []byte("pw"), fastParams()); err != nil {
			t.Fatal(err)
		}
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "beta"}) {
		t.Errorf("List() = %v", names)
	}

	if err := ks.Delete("alpha"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if ks.Exists("alpha") {
		t.Error("Exists() = true after Delete")
	}
	if err := ks.Delete("alpha"); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("second Delete() err = %v, want ErrWalletNotFound", err)
	}
}

func TestKeystore_FilePermissions(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("perm", testSeed(t), []byte("pw"), fastParams())

	info, err := os.Stat(filepath.Join(ks.dir, "perm.wallet"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("wallet file mode = %o, want 600", perm)
	}
}

func TestFromMnemonic(t *testing.T) {
	w, err := FromMnemonic("tmp", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	if err != nil {
		t.Fatalf("FromMnemonic() error: %v", err)
	}
	key, err := w.Key(0)
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}
	addr, _ := w.Address(0)
	if key.Address() != addr {
		t.Error("Key(0) and Address(0) disagree")
	}
}
