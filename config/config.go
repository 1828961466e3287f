package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the service-level settings for the ledger daemon. Everything
// domain-specific (queue ceiling, fee) is configurable so operators can tune
// a deployment without a rebuild.
type Config struct {
	DataDir        string  `toml:"DataDir"`
	Service        string  `toml:"Service"`
	Environment    string  `toml:"Environment"`
	LogFile        string  `toml:"LogFile"`
	MetricsAddress string  `toml:"MetricsAddress"`
	QueueSizeLimit uint32  `toml:"QueueSizeLimit"`
	FlatFeeUSD     float64 `toml:"FlatFeeUSD"`
	FeeToken       string  `toml:"FeeToken"`
	FeeDecimals    uint8   `toml:"FeeDecimals"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the daemon cannot safely run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	if c.QueueSizeLimit == 0 {
		return fmt.Errorf("config: QueueSizeLimit must be positive")
	}
	if c.FlatFeeUSD < 0 {
		return fmt.Errorf("config: FlatFeeUSD must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Service) == "" {
		cfg.Service = "m4ad"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9090"
	}
	if cfg.QueueSizeLimit == 0 {
		cfg.QueueSizeLimit = 100
	}
	if cfg.FlatFeeUSD == 0 {
		cfg.FlatFeeUSD = 0.04
	}
	if strings.TrimSpace(cfg.FeeToken) == "" {
		cfg.FeeToken = "USDC"
	}
	if cfg.FeeDecimals == 0 {
		cfg.FeeDecimals = 6
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir: "./m4a-data",
	}
	applyDefaults(cfg)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
