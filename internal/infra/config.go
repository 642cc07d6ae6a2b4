// Package infra carries the ambient shell around the decision core:
// configuration and logging.
package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the process reads. Loaded once at startup;
// trading constants are not runtime-mutable.
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Instruments struct {
		ETF    string `yaml:"etf"`
		Future string `yaml:"future"`
	} `yaml:"instruments"`

	Trading struct {
		LotSize          int64           `yaml:"lot_size"`
		PositionLimit    int64           `yaml:"position_limit"`
		TickSize         int64           `yaml:"tick_size"` // cents
		HistoryWindow    int             `yaml:"history_window"`
		DivergenceWindow int             `yaml:"divergence_window"` // defaults to history_window
		KSigma           decimal.Decimal `yaml:"k_sigma"`
		FeeRate          decimal.Decimal `yaml:"fee_rate"` // paper venue taker fee
	} `yaml:"trading"`

	Feed struct {
		Enabled bool   `yaml:"enabled"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"feed"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates the YAML configuration, applying
// defaults and environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Reference trading constants; the YAML normally carries them explicitly.
func (c *Config) applyDefaults() {
	if c.Trading.LotSize == 0 {
		c.Trading.LotSize = 10
	}
	if c.Trading.PositionLimit == 0 {
		c.Trading.PositionLimit = 100
	}
	if c.Trading.TickSize == 0 {
		c.Trading.TickSize = 100
	}
	if c.Trading.HistoryWindow == 0 {
		c.Trading.HistoryWindow = 31
	}
	if c.Trading.DivergenceWindow == 0 {
		c.Trading.DivergenceWindow = c.Trading.HistoryWindow
	}
	if c.Trading.KSigma.IsZero() {
		c.Trading.KSigma = decimal.NewFromInt(1)
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "data/pairs.db"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9091"
	}
	if c.Logging.File == "" {
		c.Logging.File = "logs/pairs.log"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Trading.LotSize <= 0 {
		return fmt.Errorf("lot_size must be positive, got %d", c.Trading.LotSize)
	}
	if c.Trading.PositionLimit <= 0 {
		return fmt.Errorf("position_limit must be positive, got %d", c.Trading.PositionLimit)
	}
	if c.Trading.TickSize <= 0 {
		return fmt.Errorf("tick_size must be positive, got %d", c.Trading.TickSize)
	}
	if c.Trading.HistoryWindow < 2 {
		return fmt.Errorf("history_window must be at least 2, got %d", c.Trading.HistoryWindow)
	}
	if c.Trading.DivergenceWindow < 2 {
		return fmt.Errorf("divergence_window must be at least 2, got %d", c.Trading.DivergenceWindow)
	}
	if c.Trading.KSigma.IsNegative() {
		return fmt.Errorf("k_sigma must not be negative, got %s", c.Trading.KSigma)
	}
	if c.Feed.Enabled {
		if !strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://") {
			return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
		}
	}
	return nil
}

// overrideWithEnv lets the environment take precedence over the file for
// deployment-specific values.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("PAIRS_FEED_URL"); url != "" {
		cfg.Feed.WSURL = url
	}
	if path := os.Getenv("PAIRS_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
	}
	if addr := os.Getenv("PAIRS_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}
	if level := os.Getenv("PAIRS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
