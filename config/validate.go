package config

import (
	"fmt"
	"net"
)

// MaxProgramCapacity bounds program.capacity.
const MaxProgramCapacity = 100_000

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is required")
	}

	if cfg.DB.Backend == "" {
		cfg.DB.Backend = BackendBadger
	}
	switch cfg.DB.Backend {
	case BackendBadger, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("db.backend must be %q, %q or %q", BackendBadger, BackendBolt, BackendMemory)
	}

	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	for i, entry := range cfg.RPC.AllowedIPs {
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("rpc.allowed[%d] %q is not an IP or CIDR", i, entry)
		}
	}

	if cfg.Program.Capacity < 1 || cfg.Program.Capacity > MaxProgramCapacity {
		return fmt.Errorf("program.capacity must be in range [1, %d]", MaxProgramCapacity)
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}
