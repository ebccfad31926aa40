package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CARBON_DEX_LOG_LEVEL.
const EnvPrefix = "CARBON_DEX"

// DLMM layout variants accepted by DecoderConfig.DlmmLayout.
const (
	DlmmLayoutCurrent  = "current"
	DlmmLayoutNoOracle = "no_oracle"
)

// Config holds all configuration for the application
type Config struct {
	Solana  SolanaConfig  `mapstructure:"solana"`
	Log     LogConfig     `mapstructure:"log"`
	Decoder DecoderConfig `mapstructure:"decoder"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Output  OutputConfig  `mapstructure:"output"`
}

// SolanaConfig holds Solana-specific configuration
type SolanaConfig struct {
	RPC        string `mapstructure:"rpc"`
	WS         string `mapstructure:"ws"`
	Network    string `mapstructure:"network"`
	Commitment string `mapstructure:"commitment"`
	Timeout    int    `mapstructure:"timeout"` // in seconds
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// DecoderConfig selects layout variants and batch parallelism.
type DecoderConfig struct {
	DlmmLayout string `mapstructure:"dlmm_layout"` // current or no_oracle
	Workers    int    `mapstructure:"workers"`
	BatchSize  int    `mapstructure:"batch_size"` // updates per replay decode batch
}

// WatchConfig configures the RPC account monitor.
type WatchConfig struct {
	Accounts        []string      `mapstructure:"accounts"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	DedupeCacheSize int           `mapstructure:"dedupe_cache_size"`
}

// OutputConfig selects how decoded records are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text, json or yaml
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			Network:    "mainnet",
			Commitment: "confirmed",
			Timeout:    30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Decoder: DecoderConfig{
			DlmmLayout: DlmmLayoutCurrent,
			Workers:    4,
			BatchSize:  256,
		},
		Watch: WatchConfig{
			PollInterval:    2 * time.Second,
			MaxRetries:      3,
			RetryDelay:      time.Second,
			DedupeCacheSize: 4096,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load loads configuration from file and environment using the global viper
// instance, so flags bound by the CLI take part.
func Load(configPath string) (*Config, error) {
	return LoadWith(viper.GetViper(), configPath)
}

// LoadWith loads configuration into v from configPath, or from .carbon-dex.yaml
// in the working or home directory when configPath is empty.
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".carbon-dex")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	setDefaults(v, DefaultConfig())

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so that environment overrides are seen by Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("solana.rpc", d.Solana.RPC)
	v.SetDefault("solana.ws", d.Solana.WS)
	v.SetDefault("solana.network", d.Solana.Network)
	v.SetDefault("solana.commitment", d.Solana.Commitment)
	v.SetDefault("solana.timeout", d.Solana.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("decoder.dlmm_layout", d.Decoder.DlmmLayout)
	v.SetDefault("decoder.workers", d.Decoder.Workers)
	v.SetDefault("decoder.batch_size", d.Decoder.BatchSize)
	v.SetDefault("watch.accounts", d.Watch.Accounts)
	v.SetDefault("watch.poll_interval", d.Watch.PollInterval)
	v.SetDefault("watch.max_retries", d.Watch.MaxRetries)
	v.SetDefault("watch.retry_delay", d.Watch.RetryDelay)
	v.SetDefault("watch.dedupe_cache_size", d.Watch.DedupeCacheSize)
	v.SetDefault("output.format", d.Output.Format)
}

// Validate checks enumerated settings and numeric bounds.
func (c *Config) Validate() error {
	switch c.Decoder.DlmmLayout {
	case DlmmLayoutCurrent, DlmmLayoutNoOracle:
	default:
		return fmt.Errorf("invalid decoder.dlmm_layout %q: want %s or %s",
			c.Decoder.DlmmLayout, DlmmLayoutCurrent, DlmmLayoutNoOracle)
	}

	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output.format %q: want text, json or yaml", c.Output.Format)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: want text or json", c.Log.Format)
	}

	if c.Decoder.Workers < 0 {
		return fmt.Errorf("decoder.workers must not be negative")
	}
	if c.Decoder.BatchSize < 0 {
		return fmt.Errorf("decoder.batch_size must not be negative")
	}
	if c.Watch.DedupeCacheSize < 0 {
		return fmt.Errorf("watch.dedupe_cache_size must not be negative")
	}
	return nil
}

// GetRPCEndpoint returns the RPC endpoint for the configured network
func (c *SolanaConfig) GetRPCEndpoint() string {
	if c.RPC != "" {
		return c.RPC
	}

	switch c.Network {
	case "mainnet", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet", "localhost":
		return "http://localhost:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}

// GetWSEndpoint returns the websocket endpoint, derived from the RPC endpoint
// when none is configured.
func (c *SolanaConfig) GetWSEndpoint() string {
	if c.WS != "" {
		return c.WS
	}
	rpcURL := c.GetRPCEndpoint()
	switch {
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://")
	case strings.HasPrefix(rpcURL, "http://localhost:8899"):
		return "ws://localhost:8900"
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://")
	default:
		return rpcURL
	}
}
