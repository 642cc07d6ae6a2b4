package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
app:
  name: pairs-go
  env: test
trading:
  lot_size: 10
  position_limit: 100
  tick_size: 100
  history_window: 31
  k_sigma: "1.5"
  fee_rate: "0.0002"
feed:
  enabled: true
  ws_url: "ws://localhost:8765/feed"
journal:
  enabled: true
  path: "data/test.db"
metrics:
  addr: ":9091"
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Trading.LotSize != 10 || cfg.Trading.PositionLimit != 100 {
		t.Errorf("Trading constants misread: %+v", cfg.Trading)
	}
	if cfg.Trading.KSigma.String() != "1.5" {
		t.Errorf("Expected k_sigma 1.5, got %s", cfg.Trading.KSigma)
	}
	if cfg.Trading.DivergenceWindow != 31 {
		t.Errorf("divergence_window should default to history_window, got %d", cfg.Trading.DivergenceWindow)
	}
	if !cfg.Feed.Enabled || cfg.Feed.WSURL != "ws://localhost:8765/feed" {
		t.Errorf("Feed section misread: %+v", cfg.Feed)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: pairs-go\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Trading.LotSize != 10 {
		t.Errorf("Expected default lot size 10, got %d", cfg.Trading.LotSize)
	}
	if cfg.Trading.PositionLimit != 100 {
		t.Errorf("Expected default position limit 100, got %d", cfg.Trading.PositionLimit)
	}
	if cfg.Trading.HistoryWindow != 31 {
		t.Errorf("Expected default window 31, got %d", cfg.Trading.HistoryWindow)
	}
	if !cfg.Trading.KSigma.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected default k_sigma 1, got %s", cfg.Trading.KSigma)
	}
	if cfg.Metrics.Addr != ":9091" {
		t.Errorf("Expected default metrics addr, got %s", cfg.Metrics.Addr)
	}
	if cfg.Logging.File != "logs/pairs.log" {
		t.Errorf("Expected default log file, got %s", cfg.Logging.File)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PAIRS_FEED_URL", "wss://feed.example.com/v1")
	t.Setenv("PAIRS_LOG_LEVEL", "warn")

	path := writeConfig(t, `
feed:
  enabled: true
  ws_url: "ws://localhost:8765/feed"
logging:
  level: info
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.WSURL != "wss://feed.example.com/v1" {
		t.Errorf("Env must override feed URL, got %s", cfg.Feed.WSURL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Env must override log level, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"negative lot size", "trading:\n  lot_size: -1\n"},
		{"tiny window", "trading:\n  history_window: 1\n"},
		{"negative k", "trading:\n  k_sigma: \"-2\"\n"},
		{"bad feed url", "feed:\n  enabled: true\n  ws_url: \"http://not-a-socket\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			if _, err := LoadConfig(path); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
