package main

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/gatemint/internal/program"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// ── whitelist ───────────────────────────────────────────────────────────

func cmdWhitelist(e *env, args []string) {
	ctx, cancel := e.ctx()
	defer cancel()

	if len(args) > 0 {
		addr, err := types.ParseAddress(args[0])
		if err != nil {
			fatal("invalid address: %v", err)
		}
		entry, err := e.client.Entry(ctx, addr)
		if err != nil {
			fatal("whitelist_getEntry: %v", err)
		}
		fmt.Printf("Address:   %s\n", entry.Address)
		fmt.Printf("Claimed:   %d\n", entry.Claimed)
		fmt.Printf("Remaining: %d\n", entry.Remaining)
		fmt.Printf("Deleted:   %v\n", entry.Deleted)
		return
	}

	wl, err := e.client.Whitelist(ctx)
	if err != nil {
		fatal("whitelist_get: %v", err)
	}
	fmt.Printf("Authority: %s\n", wl.Authority)
	fmt.Printf("Immutable: %v\n", wl.Immutable)
	fmt.Printf("Limit:     %d\n", wl.Limit)
	fmt.Printf("Price:     %s\n", formatAmount(wl.Price))
	fmt.Printf("Entries:   %d active / %d capacity\n\n", wl.Active, wl.Capacity)
	for _, entry := range wl.Entries {
		status := ""
		if entry.Deleted {
			status = " (deleted)"
		}
		fmt.Printf("  %s  claimed %d%s\n", entry.Address, entry.Claimed, status)
	}
}

// ── ledger ──────────────────────────────────────────────────────────────

func cmdLedger(e *env) {
	ctx, cancel := e.ctx()
	defer cancel()

	res, err := e.client.Ledger(ctx)
	if err != nil {
		fatal("ledger_get: %v", err)
	}
	fmt.Printf("Collected:  %s\n", formatAmount(res.Amount))
	fmt.Printf("Collection: %s\n", res.Collection)
	fmt.Printf("Balance:    %s\n", formatAmount(res.Balance))
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gatemint-cli balance <address>")
	}
	addr, err := types.ParseAddress(args[0])
	if err != nil {
		fatal("invalid address: %v", err)
	}

	ctx, cancel := e.ctx()
	defer cancel()

	acct, err := e.client.Account(ctx, addr)
	if err != nil {
		fatal("account_get: %v", err)
	}
	fmt.Printf("Address: %s\n", acct.Address)
	fmt.Printf("Balance: %s\n", formatAmount(acct.Balance))
	fmt.Printf("Nonce:   %d\n", acct.Nonce)

	tb, err := e.client.TokenBalance(ctx, addr)
	if err != nil {
		fatal("token_getBalance: %v", err)
	}
	fmt.Printf("Tokens:  %d\n", tb.Balance)
}

// ── token ───────────────────────────────────────────────────────────────

func cmdToken(e *env, args []string) {
	sub := "info"
	if len(args) > 0 {
		sub = args[0]
	}

	ctx, cancel := e.ctx()
	defer cancel()

	switch sub {
	case "info":
		info, err := e.client.TokenInfo(ctx)
		if err != nil {
			fatal("token_getInfo: %v", err)
		}
		fmt.Printf("Token ID: %s\n", info.TokenID)
		fmt.Printf("Name:     %s\n", info.Name)
		fmt.Printf("Symbol:   %s\n", info.Symbol)
		fmt.Printf("URI:      %s\n", info.URI)
		fmt.Printf("Decimals: %d\n", info.Decimals)
		fmt.Printf("Creator:  %s\n", info.Creator)
		fmt.Printf("Supply:   %d\n", info.Supply)
	case "holders":
		res, err := e.client.TokenHolders(ctx)
		if err != nil {
			fatal("token_getHolders: %v", err)
		}
		if len(res.Holders) == 0 {
			fmt.Println("No holders.")
			return
		}
		for _, h := range res.Holders {
			fmt.Printf("  %s: %d\n", h.Address, h.Amount)
		}
	default:
		fatal("Unknown token command: %s\nUsage: gatemint-cli token [info|holders]", sub)
	}
}

// ── receipt ─────────────────────────────────────────────────────────────

func cmdReceipt(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gatemint-cli receipt <hash>")
	}
	hash, err := types.HexToHash(args[0])
	if err != nil {
		fatal("invalid hash: %v", err)
	}

	ctx, cancel := e.ctx()
	defer cancel()

	rcpt, err := e.client.Receipt(ctx, hash)
	if err != nil {
		fatal("call_getReceipt: %v", err)
	}
	printReceipt(rcpt)
}

func printReceipt(r *program.Receipt) {
	fmt.Printf("Call:    %s\n", r.Hash)
	fmt.Printf("Method:  %s\n", r.Method)
	fmt.Printf("Caller:  %s\n", r.Caller)
	fmt.Printf("Nonce:   %d\n", r.Nonce)
	fmt.Printf("Status:  %s\n", r.Status)
	if r.Error != "" {
		fmt.Printf("Error:   %s (code %d)\n", r.Error, r.Code)
	}
	if len(r.Result) > 0 && string(r.Result) != "null" {
		var pretty any
		if err := json.Unmarshal(r.Result, &pretty); err == nil {
			if data, err := json.MarshalIndent(pretty, "", "  "); err == nil {
				fmt.Printf("Result:\n%s\n", data)
			}
		}
	}
}
