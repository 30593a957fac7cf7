package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "helio-local", cfg.NetworkName)
	require.Equal(t, 1000, cfg.MaxTokensPerAccount)
	require.Equal(t, uint64(1001), cfg.FirstEntityNum)

	// The file written to disk round-trips to the same config.
	require.FileExists(t, path)
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadAppliesDefaultsToSparseFile(t *testing.T) {
	path := writeConfig(t, `
NetworkName = "helio-test"
MaxTokensPerAccount = 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "helio-test", cfg.NetworkName)
	require.Equal(t, 25, cfg.MaxTokensPerAccount)
	require.Equal(t, "0.0.0.0:6001", cfg.ListenAddress)
	require.Equal(t, uint64(2_592_000), cfg.MinAutoRenewPeriod)
	require.Equal(t, uint64(120), cfg.GasPriceMultiplierPercent)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
NetworkName = "helio-test"
TokenLimit = 5
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
	require.Contains(t, err.Error(), "TokenLimit")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.MaxTokensPerAccount = -1
	require.Error(t, bad.Validate())

	bad = *cfg
	bad.MinAutoRenewPeriod = bad.MaxAutoRenewPeriod + 1
	require.Error(t, bad.Validate())

	bad = *cfg
	bad.GasPriceMultiplierPercent = 99
	require.Error(t, bad.Validate())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
GasPriceMultiplierPercent = 50
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "GasPriceMultiplierPercent")
}
