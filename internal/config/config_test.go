package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon-dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	cfg, err := LoadWith(viper.New(), path)
	require.NoError(t, err)
	def := DefaultConfig()
	require.Equal(t, def.Solana, cfg.Solana)
	require.Equal(t, def.Log, cfg.Log)
	require.Equal(t, def.Decoder, cfg.Decoder)
	require.Equal(t, def.Watch.PollInterval, cfg.Watch.PollInterval)
	require.Equal(t, def.Watch.DedupeCacheSize, cfg.Watch.DedupeCacheSize)
	require.Equal(t, def.Output, cfg.Output)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadWith(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon-dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
solana:
  network: devnet
  commitment: finalized
log:
  level: debug
  format: json
decoder:
  dlmm_layout: no_oracle
  workers: 8
watch:
  accounts:
    - 58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2
  poll_interval: 500ms
  dedupe_cache_size: 16
output:
  format: yaml
`), 0o600))

	cfg, err := LoadWith(viper.New(), path)
	require.NoError(t, err)

	require.Equal(t, "devnet", cfg.Solana.Network)
	require.Equal(t, "https://api.devnet.solana.com", cfg.Solana.GetRPCEndpoint())
	require.Equal(t, "wss://api.devnet.solana.com", cfg.Solana.GetWSEndpoint())
	require.Equal(t, "finalized", cfg.Solana.Commitment)
	require.Equal(t, 30, cfg.Solana.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, DlmmLayoutNoOracle, cfg.Decoder.DlmmLayout)
	require.Equal(t, 8, cfg.Decoder.Workers)
	require.Equal(t, 256, cfg.Decoder.BatchSize)
	require.Equal(t, []string{"58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"}, cfg.Watch.Accounts)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.PollInterval)
	require.Equal(t, 3, cfg.Watch.MaxRetries)
	require.Equal(t, 16, cfg.Watch.DedupeCacheSize)
	require.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon-dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	t.Setenv("CARBON_DEX_LOG_LEVEL", "warn")
	t.Setenv("CARBON_DEX_DECODER_DLMM_LAYOUT", "no_oracle")

	cfg, err := LoadWith(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, DlmmLayoutNoOracle, cfg.Decoder.DlmmLayout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon-dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decoder:\n  dlmm_layout: v3\n"), 0o600))

	_, err := LoadWith(viper.New(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dlmm_layout")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad output", func(c *Config) { c.Output.Format = "xml" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "logfmt" }, false},
		{"negative workers", func(c *Config) { c.Decoder.Workers = -1 }, false},
		{"negative batch size", func(c *Config) { c.Decoder.BatchSize = -1 }, false},
		{"negative cache", func(c *Config) { c.Watch.DedupeCacheSize = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestGetRPCEndpoint(t *testing.T) {
	tests := []struct {
		network string
		want    string
	}{
		{"mainnet", "https://api.mainnet-beta.solana.com"},
		{"testnet", "https://api.testnet.solana.com"},
		{"localnet", "http://localhost:8899"},
		{"", "https://api.devnet.solana.com"},
	}
	for _, tt := range tests {
		c := SolanaConfig{Network: tt.network}
		require.Equal(t, tt.want, c.GetRPCEndpoint())
	}

	c := SolanaConfig{Network: "localnet"}
	require.Equal(t, "ws://localhost:8900", c.GetWSEndpoint())
}
