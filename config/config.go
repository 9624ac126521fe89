// Package config loads the bootstrap configuration for cmd/lendingd: the
// owner/authority addresses each engine is constructed with, the data
// directory, and the observability knobs. Grounded on the teacher's
// config.Load (TOML via github.com/BurntSushi/toml, create-default-on-
// missing-file) with the blockchain-node fields (ListenAddress, RPCAddress,
// ValidatorKey, BootstrapPeers) replaced by this protocol's own bootstrap
// surface.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// Config is the full bootstrap configuration for a lendingd process.
type Config struct {
	// DataDir selects the storage backend: "memory" or an empty value keeps
	// state in-process (lost on exit); any other value is a goleveldb
	// directory path.
	DataDir string `toml:"DataDir"`

	// OwnerAddress is the initial Reputation engine owner (§4.2), hex
	// encoded, 0x-prefixed or bare.
	OwnerAddress string `toml:"OwnerAddress"`
	// LendingAddress is the identity the Lending engine presents to
	// Reputation's authority-gated mutators (§9).
	LendingAddress string `toml:"LendingAddress"`
	// ReputationVault and LendingVault are the custody addresses each
	// engine escrows tokens under.
	ReputationVault string `toml:"ReputationVault"`
	LendingVault    string `toml:"LendingVault"`

	// RateLimitPerSecond and RateLimitBurst configure the operator-level
	// AddressRateLimiter placed in front of create_offer/create_request by
	// the CLI (§5 EXPANSION); zero disables limiting.
	RateLimitPerSecond float64 `toml:"RateLimitPerSecond"`
	RateLimitBurst     int     `toml:"RateLimitBurst"`

	// MetricsAddress is the listen address of `lendingd serve`'s /metrics
	// endpoint; an empty value means ":9090".
	MetricsAddress string `toml:"MetricsAddress"`
	// LogLevel is one of debug, info, warn, error. lendingd attaches it to
	// every log line as the "configuredLevel" attribute; it does not change
	// the logger's level, which stays at Info.
	LogLevel string `toml:"LogLevel"`

	// SeedFile names a YAML seed document in the format config.LoadSeed
	// reads. lendingd does not read this field: no seed is loaded at
	// startup.
	SeedFile string `toml:"SeedFile"`
}

// Load reads cfg from path, writing out a generated default if the file
// does not yet exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:            "memory",
		OwnerAddress:       "0x0100000000000000000000000000000000000000",
		LendingAddress:     "0x0200000000000000000000000000000000000000",
		ReputationVault:    "0x0300000000000000000000000000000000000000",
		LendingVault:       "0x0400000000000000000000000000000000000000",
		RateLimitPerSecond: 0,
		RateLimitBurst:     0,
		MetricsAddress:     ":9090",
		LogLevel:           "info",
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Owner parses OwnerAddress.
func (c *Config) Owner() (types.Address, error) { return parse("OwnerAddress", c.OwnerAddress) }

// LendingIdentity parses LendingAddress.
func (c *Config) LendingIdentity() (types.Address, error) {
	return parse("LendingAddress", c.LendingAddress)
}

// ReputationVaultAddress parses ReputationVault.
func (c *Config) ReputationVaultAddress() (types.Address, error) {
	return parse("ReputationVault", c.ReputationVault)
}

// LendingVaultAddress parses LendingVault.
func (c *Config) LendingVaultAddress() (types.Address, error) {
	return parse("LendingVault", c.LendingVault)
}

func parse(field, value string) (types.Address, error) {
	addr, err := types.ParseAddress(value)
	if err != nil {
		return addr, fmt.Errorf("config: %s: %w", field, err)
	}
	return addr, nil
}
