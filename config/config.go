package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddress  string `toml:"ListenAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	NetworkName    string `toml:"NetworkName"`

	// Token service limits.
	MaxTokensPerAccount int    `toml:"MaxTokensPerAccount"`
	AutoRenewEnabled    bool   `toml:"AutoRenewEnabled"`
	MinAutoRenewPeriod  uint64 `toml:"MinAutoRenewPeriod"`
	MaxAutoRenewPeriod  uint64 `toml:"MaxAutoRenewPeriod"`

	// Precompile gas pricing.
	ReferenceGasPrice         uint64 `toml:"ReferenceGasPrice"`
	GasPriceMultiplierPercent uint64 `toml:"GasPriceMultiplierPercent"`

	// First entity number handed to the id source on a fresh ledger.
	FirstEntityNum uint64 `toml:"FirstEntityNum"`
}

// Load loads the configuration from the given path, creating a default
// file when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown field %q", path, undecoded[0].String())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.NetworkName) == "" {
		c.NetworkName = "helio-local"
	}
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = "0.0.0.0:6001"
	}
	if strings.TrimSpace(c.MetricsAddress) == "" {
		c.MetricsAddress = "0.0.0.0:9464"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./helio-data"
	}
	if c.MaxTokensPerAccount == 0 {
		c.MaxTokensPerAccount = 1000
	}
	if c.MinAutoRenewPeriod == 0 {
		c.MinAutoRenewPeriod = 2_592_000
	}
	if c.MaxAutoRenewPeriod == 0 {
		c.MaxAutoRenewPeriod = 8_000_001
	}
	if c.ReferenceGasPrice == 0 {
		c.ReferenceGasPrice = 1000
	}
	if c.GasPriceMultiplierPercent == 0 {
		c.GasPriceMultiplierPercent = 120
	}
	if c.FirstEntityNum == 0 {
		c.FirstEntityNum = 1001
	}
}

// Validate rejects configurations the node cannot safely run with.
func (c *Config) Validate() error {
	if c.MaxTokensPerAccount < 0 {
		return fmt.Errorf("MaxTokensPerAccount must not be negative")
	}
	if c.MinAutoRenewPeriod > c.MaxAutoRenewPeriod {
		return fmt.Errorf("MinAutoRenewPeriod %d exceeds MaxAutoRenewPeriod %d",
			c.MinAutoRenewPeriod, c.MaxAutoRenewPeriod)
	}
	if c.GasPriceMultiplierPercent < 100 {
		return fmt.Errorf("GasPriceMultiplierPercent must be at least 100")
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
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
