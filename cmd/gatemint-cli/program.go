package main

import (
	"errors"
	"flag"

	"github.com/Klingon-tech/gatemint/internal/program"
	"github.com/Klingon-tech/gatemint/internal/rpcclient"
	"github.com/Klingon-tech/gatemint/pkg/call"
)

// signerFlags registers the flags shared by every signing command.
type signerFlags struct {
	wallet  *string
	account *uint
}

func newSignerFlags(fs *flag.FlagSet) signerFlags {
	return signerFlags{
		wallet:  fs.String("wallet", "", "Wallet name"),
		account: fs.Uint("account", 0, "Account index within the wallet"),
	}
}

// submit unlocks the wallet, signs method with the account's next nonce
// and sends it to the node.
func (e *env) submit(sf signerFlags, method string, params any) {
	if *sf.wallet == "" {
		fatal("--wallet is required")
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	w, err := e.keystore().Unlock(*sf.wallet, password)
	if err != nil {
		fatal("unlock wallet: %v", err)
	}
	key, err := w.Key(uint32(*sf.account))
	if err != nil {
		fatal("derive key: %v", err)
	}
	defer key.Zero()

	ctx, cancel := e.ctx()
	defer cancel()

	info, err := e.client.NodeInfo(ctx)
	if err != nil {
		fatal("node_getInfo: %v", err)
	}
	nonce, err := e.client.NextNonce(ctx, key.Address())
	if err != nil {
		fatal("%v", err)
	}

	c, err := call.New(info.Network, method, params, nonce)
	if err != nil {
		fatal("build call: %v", err)
	}
	if err := c.Sign(key); err != nil {
		fatal("sign call: %v", err)
	}

	rcpt, err := e.client.Submit(ctx, c)
	if rcpt != nil {
		printReceipt(rcpt)
	}
	if err != nil {
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) {
			fatal("%s failed (code %d): %s", method, rpcErr.Code, rpcErr.Message)
		}
		fatal("call_submit: %v", err)
	}
}

func cmdInit(e *env, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	sf := newSignerFlags(fs)
	name := fs.String("name", "", "Token name")
	symbol := fs.String("symbol", "", "Token symbol")
	uri := fs.String("uri", "", "Token metadata URI")
	decimals := fs.Uint("decimals", 0, "Token decimal places")
	limit := fs.Uint64("limit", 0, "Per-address claim limit")
	priceStr := fs.String("price", "0", "Price per token in coins")
	fs.Parse(args)

	if *name == "" || *symbol == "" {
		fatal("Usage: gatemint-cli init --wallet <w> --name <n> --symbol <SYM> --limit <n> --price <amt> [addr ...]")
	}
	if *decimals > 255 {
		fatal("decimals out of range")
	}
	price, err := parseAmount(*priceStr)
	if err != nil {
		fatal("invalid price: %v", err)
	}
	addrs, err := parseAddresses(fs.Args())
	if err != nil {
		fatal("%v", err)
	}

	e.submit(sf, program.MethodInit, program.InitParams{
		Metadata: program.InitMetadata{
			Name:     *name,
			Symbol:   *symbol,
			URI:      *uri,
			Decimals: uint8(*decimals),
		},
		Whitelist: program.InitWhitelist{
			Addresses: addrs,
			Limit:     *limit,
			Price:     price,
		},
	})
}

func cmdInsert(e *env, args []string) {
	cmdAddresses(e, "insert", program.MethodInsert, args)
}

func cmdDelete(e *env, args []string) {
	cmdAddresses(e, "delete", program.MethodDelete, args)
}

func cmdAddresses(e *env, name, method string, args []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	sf := newSignerFlags(fs)
	fs.Parse(args)

	if fs.NArg() == 0 {
		fatal("Usage: gatemint-cli %s --wallet <w> <addr> ...", name)
	}
	addrs, err := parseAddresses(fs.Args())
	if err != nil {
		fatal("%v", err)
	}
	e.submit(sf, method, program.AddressesParams{Addresses: addrs})
}

func cmdFreeze(e *env, args []string) {
	fs := flag.NewFlagSet("freeze", flag.ExitOnError)
	sf := newSignerFlags(fs)
	fs.Parse(args)

	e.submit(sf, program.MethodFreeze, nil)
}

func cmdTransferAuthority(e *env, args []string) {
	fs := flag.NewFlagSet("transfer-authority", flag.ExitOnError)
	sf := newSignerFlags(fs)
	to := fs.String("to", "", "New authority address")
	fs.Parse(args)

	if *to == "" {
		fatal("Usage: gatemint-cli transfer-authority --wallet <w> --to <addr>")
	}
	addrs, err := parseAddresses([]string{*to})
	if err != nil {
		fatal("%v", err)
	}
	e.submit(sf, program.MethodTransferAuthority, program.TransferAuthorityParams{NewOwner: addrs[0]})
}

func cmdUpdatePrice(e *env, args []string) {
	fs := flag.NewFlagSet("update-price", flag.ExitOnError)
	sf := newSignerFlags(fs)
	priceStr := fs.String("price", "", "Price per token in coins")
	fs.Parse(args)

	if *priceStr == "" {
		fatal("Usage: gatemint-cli update-price --wallet <w> --price <amt>")
	}
	price, err := parseAmount(*priceStr)
	if err != nil {
		fatal("invalid price: %v", err)
	}
	e.submit(sf, program.MethodUpdatePrice, program.PriceParams{Price: price})
}

func cmdUpdateLimit(e *env, args []string) {
	fs := flag.NewFlagSet("update-limit", flag.ExitOnError)
	sf := newSignerFlags(fs)
	limit := fs.Uint64("limit", 0, "Per-address claim limit")
	fs.Parse(args)

	e.submit(sf, program.MethodUpdateLimit, program.LimitParams{Limit: *limit})
}

func cmdWithdraw(e *env, args []string) {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	sf := newSignerFlags(fs)
	fs.Parse(args)

	e.submit(sf, program.MethodWithdraw, nil)
}

func cmdMint(e *env, args []string) {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	sf := newSignerFlags(fs)
	quantity := fs.Uint64("quantity", 0, "Number of tokens to mint")
	fs.Parse(args)

	e.submit(sf, program.MethodMint, program.MintParams{Quantity: *quantity})
}
