// Package node wires config, storage, the minting program and the RPC
// server into a runnable node that can be embedded in any binary.
package node

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/gatemint/config"
	klog "github.com/Klingon-tech/gatemint/internal/log"
	"github.com/Klingon-tech/gatemint/internal/program"
	"github.com/Klingon-tech/gatemint/internal/rpc"
	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/pkg/types"
)

// ErrGenesisMismatch is returned when the state database was created
// from a different genesis than the one the node is loading.
var ErrGenesisMismatch = errors.New("state database belongs to a different genesis")

// genesisKey records the hash of the applied genesis.
var genesisKey = []byte("node/genesis")

// Node is a fully-initialized gatemint node.
type Node struct {
	cfg     *config.Config
	genesis *config.Genesis
	logger  zerolog.Logger

	db        storage.DB
	program   *program.Program
	executor  *program.Executor
	rpcServer *rpc.Server
}

// New creates and initializes a Node: address format, logger, genesis,
// storage and executor. The RPC server is built but not started; call
// Start for that.
func New(cfg *config.Config) (*Node, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// ── 1. Set address HRP ──────────────────────────────────────────
	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	// ── 2. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "gatemint.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Node

	// ── 3. Genesis ──────────────────────────────────────────────────
	genesis, err := loadGenesis(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("chain_id", genesis.ChainID).
		Str("network", string(cfg.Network)).
		Str("backend", cfg.DB.Backend).
		Msg("Starting gatemint node")

	// ── 4. Open storage ─────────────────────────────────────────────
	if cfg.DB.Backend != config.BackendMemory {
		if err := os.MkdirAll(cfg.StateDir(), 0700); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
	}
	db, err := storage.Open(cfg.DB.Backend, cfg.StateDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.StateDir(), err)
	}
	logger.Info().Str("path", cfg.StateDir()).Msg("Database opened")

	// ── 5. Apply genesis ────────────────────────────────────────────
	applied, err := applyGenesis(db, genesis)
	if err != nil {
		db.Close()
		return nil, err
	}
	if applied {
		logger.Info().
			Int("accounts", len(genesis.Alloc)).
			Uint64("total", genesis.TotalAlloc()).
			Msg("Genesis allocations applied")
	}

	// ── 6. Program and executor ─────────────────────────────────────
	p := program.New(program.WithCapacity(cfg.Program.Capacity))
	exec := program.NewExecutor(db, p, genesis.ChainID)

	n := &Node{
		cfg:      cfg,
		genesis:  genesis,
		logger:   logger,
		db:       db,
		program:  p,
		executor: exec,
	}

	// ── 7. RPC ──────────────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := net.JoinHostPort(cfg.RPC.Addr, strconv.Itoa(cfg.RPC.Port))
		n.rpcServer = rpc.New(addr, db, exec, genesis, cfg.RPC)
	}

	return n, nil
}

// loadGenesis reads the configured genesis file, or falls back to the
// built-in genesis of the network.
func loadGenesis(cfg *config.Config) (*config.Genesis, error) {
	if cfg.GenesisFile == "" {
		g := config.GenesisFor(cfg.Network)
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("built-in genesis: %w", err)
		}
		return g, nil
	}
	g, err := config.LoadGenesis(cfg.GenesisFile)
	if err != nil {
		return nil, fmt.Errorf("load genesis %s: %w", cfg.GenesisFile, err)
	}
	return g, nil
}

// applyGenesis credits the genesis allocations the first time a database
// is opened and records the genesis hash alongside them in one commit.
// Later opens only check the recorded hash.
func applyGenesis(db storage.DB, g *config.Genesis) (bool, error) {
	hash, err := g.Hash()
	if err != nil {
		return false, fmt.Errorf("hash genesis: %w", err)
	}

	stored, err := db.Get(genesisKey)
	switch {
	case err == nil:
		if !bytes.Equal(stored, hash.Bytes()) {
			return false, fmt.Errorf("%w: have %x, want %s", ErrGenesisMismatch, stored, hash)
		}
		return false, nil
	case !errors.Is(err, storage.ErrNotFound):
		return false, fmt.Errorf("read genesis marker: %w", err)
	}

	overlay := storage.NewOverlay(db)
	st := program.NewState(overlay)
	for addrStr, amount := range g.Alloc {
		addr, err := types.ParseAddress(addrStr)
		if err != nil {
			return false, fmt.Errorf("genesis alloc %s: %w", addrStr, err)
		}
		if err := st.Accounts.Credit(addr, amount); err != nil {
			return false, fmt.Errorf("genesis alloc %s: %w", addrStr, err)
		}
	}
	if err := overlay.Put(genesisKey, hash.Bytes()); err != nil {
		return false, err
	}
	if err := overlay.Commit(); err != nil {
		return false, fmt.Errorf("commit genesis: %w", err)
	}
	return true, nil
}

// Start begins serving RPC when enabled.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}

	n.logger.Info().
		Str("collection", program.CollectionAddress.String()).
		Str("token", program.TokenID.String()).
		Msg("Node started successfully")
	return nil
}

// Stop shuts the RPC server down and closes the database.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("Database close")
		}
	}
	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Genesis returns the genesis the node was opened with.
func (n *Node) Genesis() *config.Genesis {
	return n.genesis
}

// Executor returns the call executor.
func (n *Node) Executor() *program.Executor {
	return n.executor
}

// State returns a read view over the node database.
func (n *Node) State() *program.State {
	return program.NewState(n.db)
}
