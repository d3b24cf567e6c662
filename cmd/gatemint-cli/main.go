// gatemint-cli is a command-line client for interacting with a gatemintd node.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/gatemint/config"
	"github.com/Klingon-tech/gatemint/internal/rpcclient"
	"github.com/Klingon-tech/gatemint/pkg/types"
	"golang.org/x/term"
)

const requestTimeout = 30 * time.Second

// env carries the global flags every command needs.
type env struct {
	cfg    *config.Config
	client *rpcclient.Client
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := ""
	dataDir := ""
	network := config.Mainnet

	// Scan for --rpc, --datadir, --network and --testnet before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = config.NetworkType(args[1])
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = config.NetworkType(args[0][len("--network="):])
			args = args[1:]
		case args[0] == "--testnet":
			network = config.Testnet
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if network != config.Mainnet && network != config.Testnet {
		fatal("unknown network %q", network)
	}
	if network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg := config.Default(network)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if rpcURL == "" {
		rpcURL = cfg.RPCEndpoint()
	}
	e := &env{cfg: cfg, client: rpcclient.New(rpcURL)}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(e)
	case "wallet":
		cmdWallet(e, cmdArgs)
	case "init":
		cmdInit(e, cmdArgs)
	case "insert":
		cmdInsert(e, cmdArgs)
	case "delete":
		cmdDelete(e, cmdArgs)
	case "freeze":
		cmdFreeze(e, cmdArgs)
	case "transfer-authority":
		cmdTransferAuthority(e, cmdArgs)
	case "update-price":
		cmdUpdatePrice(e, cmdArgs)
	case "update-limit":
		cmdUpdateLimit(e, cmdArgs)
	case "withdraw":
		cmdWithdraw(e, cmdArgs)
	case "mint":
		cmdMint(e, cmdArgs)
	case "whitelist":
		cmdWhitelist(e, cmdArgs)
	case "ledger":
		cmdLedger(e)
	case "balance":
		cmdBalance(e, cmdArgs)
	case "token":
		cmdToken(e, cmdArgs)
	case "receipt":
		cmdReceipt(e, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: gatemint-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: from network defaults)
  --datadir <path>    Data directory (default: ~/.gatemint)
  --network <net>     mainnet (default) or testnet
  --testnet           Shorthand for --network testnet

Commands:
  status                          Show node and program status

  wallet create --name <n>        Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets
  wallet address --wallet <w> [--new]
                                  List wallet addresses, or derive the next one

  init --wallet <w> --name <n> --symbol <SYM> --limit <n> --price <amt>
       [--uri <u>] [--decimals <d>] [addr ...]
                                  Create the allow-list and the token
  insert --wallet <w> <addr> ...  Add addresses to the allow-list
  delete --wallet <w> <addr> ...  Remove addresses from the allow-list
  freeze --wallet <w>             Make the allow-list immutable
  transfer-authority --wallet <w> --to <addr>
                                  Hand the allow-list to a new authority
  update-price --wallet <w> --price <amt>
                                  Set the price per token
  update-limit --wallet <w> --limit <n>
                                  Set the per-address claim limit
  withdraw --wallet <w>           Move collected payments to the authority
  mint --wallet <w> --quantity <n>
                                  Pay for and mint tokens

  whitelist [addr]                Show the allow-list, or one entry
  ledger                          Show collected payments
  balance <addr>                  Show coin and token balance
  token [info|holders]            Show token metadata or holders
  receipt <hash>                  Show a call receipt

Signing commands accept --account <index> (default 0).
`)
}

func (e *env) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(e *env) {
	ctx, cancel := e.ctx()
	defer cancel()

	info, err := e.client.NodeInfo(ctx)
	if err != nil {
		fatal("node_getInfo: %v", err)
	}

	fmt.Printf("Network:      %s (%s)\n", info.Network, info.ChainName)
	fmt.Printf("Version:      %s\n", info.Version)
	fmt.Printf("Initialized:  %v\n", info.Initialized)
	fmt.Printf("Collection:   %s\n", info.Collection)
	fmt.Printf("Token:        %s\n", info.TokenID)
	fmt.Printf("Supply:       %d\n", info.TotalSupply)
	fmt.Printf("Methods:      %s\n", strings.Join(info.Methods, ", "))
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readNewPassword prompts twice and requires both entries to match.
func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
