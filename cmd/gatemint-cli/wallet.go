package main

import (
	"flag"
	"fmt"

	"github.com/Klingon-tech/gatemint/internal/wallet"
)

const walletUsage = "Usage: gatemint-cli wallet <create|import|list|address> [flags]"

func cmdWallet(e *env, args []string) {
	if len(args) < 1 {
		fatal(walletUsage)
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(e, args[1:])
	case "import":
		cmdWalletImport(e, args[1:])
	case "list":
		cmdWalletList(e)
	case "address":
		cmdWalletAddress(e, args[1:])
	default:
		fatal("Unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

func (e *env) keystore() *wallet.Keystore {
	ks, err := wallet.NewKeystore(e.cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	return ks
}

func cmdWalletCreate(e *env, args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: gatemint-cli wallet create --name <name>")
	}
	ks := e.keystore()
	if ks.Exists(*name) {
		fatal("wallet %q already exists", *name)
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	storeWallet(ks, *name, mnemonic, readNewPassword())
	fmt.Printf("\nWallet created: %s\n", *name)
}

func cmdWalletImport(e *env, args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: gatemint-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}
	ks := e.keystore()
	if ks.Exists(*name) {
		fatal("wallet %q already exists", *name)
	}

	storeWallet(ks, *name, *mnemonic, readNewPassword())
	fmt.Printf("Wallet imported: %s\n", *name)
}

// storeWallet seals the mnemonic's seed in the keystore and prints account 0.
func storeWallet(ks *wallet.Keystore, name, mnemonic string, password []byte) {
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	w, err := ks.Create(name, seed, password, wallet.DefaultKDFParams())
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		fatal("create wallet: %v", err)
	}

	addr, err := w.Address(0)
	if err != nil {
		fatal("derive address: %v", err)
	}
	fmt.Printf("Address: %s\n", addr)
}

func cmdWalletList(e *env) {
	names, err := e.keystore().List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdWalletAddress(e *env, args []string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	derive := fs.Bool("new", false, "Derive and record the next address")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: gatemint-cli wallet address --wallet <name> [--new]")
	}
	ks := e.keystore()

	if *derive {
		password, err := readPassword("Enter password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		w, err := ks.Unlock(*walletName, password)
		if err != nil {
			fatal("unlock wallet: %v", err)
		}
		idx, err := ks.NextIndex(*walletName)
		if err != nil {
			fatal("next index: %v", err)
		}
		addr, err := w.Address(idx)
		if err != nil {
			fatal("derive address: %v", err)
		}
		if err := ks.AddAccount(*walletName, wallet.AccountEntry{
			Index:   idx,
			Name:    fmt.Sprintf("account %d", idx),
			Address: addr.String(),
		}); err != nil {
			fatal("add account: %v", err)
		}
		fmt.Printf("New address [%d]: %s\n", idx, addr)
		return
	}

	accts, err := ks.Accounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}
	if len(accts) == 0 {
		fmt.Println("No addresses found.")
		return
	}
	for _, acct := range accts {
		fmt.Printf("  [%d] %s\n", acct.Index, acct.Address)
	}
}
