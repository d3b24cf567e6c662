// Package config handles node configuration.
//
// Configuration is split into two categories:
//   - Genesis: chain identity and initial balances, fixed at first start
//   - Node settings: runtime configuration, can vary per node
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Storage backends accepted by db.backend.
const (
	BackendBadger = "badger"
	BackendBolt   = "bolt"
	BackendMemory = "memory" // nothing persists; for development
)

// Config holds node-specific runtime configuration.
type Config struct {
	// Core
	Network     NetworkType `conf:"network"`
	DataDir     string      `conf:"datadir"`
	GenesisFile string      `conf:"genesis"`

	// Storage
	DB DBConfig

	// RPC server
	RPC RPCConfig

	// Program
	Program ProgramConfig

	// Logging
	Log LogConfig
}

// DBConfig holds storage settings.
type DBConfig struct {
	Backend string `conf:"db.backend"` // badger, bolt or memory
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// ProgramConfig holds settings of the minting program.
type ProgramConfig struct {
	// Capacity is the number of allow-list records reserved at init.
	Capacity int `conf:"program.capacity"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.gatemint
//	macOS:   ~/Library/Application Support/Gatemint
//	Windows: %APPDATA%\Gatemint
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gatemint"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Gatemint")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Gatemint")
		}
		return filepath.Join(home, "AppData", "Roaming", "Gatemint")
	default:
		return filepath.Join(home, ".gatemint")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// StateDir returns the program state database directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.ChainDataDir(), "state")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.ChainDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "gatemint.conf")
}

// RPCEndpoint returns the HTTP URL of the configured RPC server.
func (c *Config) RPCEndpoint() string {
	addr := c.RPC.Addr
	if addr == "" || addr == "0.0.0.0" {
		addr = "127.0.0.1"
	}
	return "http://" + addr + ":" + itoa(c.RPC.Port)
}
