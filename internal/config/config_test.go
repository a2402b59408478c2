package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lrchart/chartai/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

catalog:
  source: inline
  pairs: ["EUR/USD", "GBP/USD"]

analysis:
  ui_timeout: 20s

llm:
  provider: claude
  claude:
    api_key: "${TEST_CLAUDE_KEY}"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_CLAUDE_KEY", "sk-test")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "inline" || len(cfg.Catalog.Pairs) != 2 {
		t.Errorf("unexpected catalog config: %+v", cfg.Catalog)
	}
	if cfg.Analysis.UITimeout != 20*time.Second {
		t.Errorf("expected ui_timeout 20s, got %s", cfg.Analysis.UITimeout)
	}
	if cfg.LLM.Claude.APIKey != "sk-test" {
		t.Errorf("expected expanded api key, got %q", cfg.LLM.Claude.APIKey)
	}
	// Untouched keys keep defaults.
	if cfg.Analysis.ForecastModel != "gemini-2.5-pro" {
		t.Errorf("expected default forecast model, got %s", cfg.Analysis.ForecastModel)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_APIKeyEnv(t *testing.T) {
	t.Setenv("API_KEY", "from-api-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.LLM.Gemini.APIKey != "from-api-key" {
		t.Errorf("expected API_KEY to populate gemini key, got %q", cfg.LLM.Gemini.APIKey)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("ANALYSIS_UI_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.UITimeout != 5*time.Second {
		t.Errorf("expected ui_timeout 5s, got %s", cfg.Analysis.UITimeout)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.UITimeout != 15*time.Second {
		t.Errorf("expected default ui_timeout 15s, got %s", cfg.Analysis.UITimeout)
	}
	if cfg.Analysis.ChartTemperature != 0.1 || cfg.Analysis.ForecastTemperature != 0.4 {
		t.Errorf("unexpected temperatures %v / %v", cfg.Analysis.ChartTemperature, cfg.Analysis.ForecastTemperature)
	}
	if cfg.UI.NextSignalDelay != 1500*time.Millisecond || cfg.UI.FutureListDelay != 2*time.Second {
		t.Errorf("unexpected delays %s / %s", cfg.UI.NextSignalDelay, cfg.UI.FutureListDelay)
	}
	if cfg.Signals.MaxRedraws != 1000 {
		t.Errorf("expected max_redraws 1000, got %d", cfg.Signals.MaxRedraws)
	}
	if len(cfg.Signals.Timeframes) != 5 || cfg.Signals.DefaultTimeframe != "1 Min" {
		t.Errorf("unexpected timeframes %v / %s", cfg.Signals.Timeframes, cfg.Signals.DefaultTimeframe)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected gemini provider, got %s", cfg.LLM.Provider)
	}
}

func validConfig() *Config {
	cfg := Defaults()
	cfg.LLM.Gemini.APIKey = "key"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"valid config", func(*Config) {}, nil},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, core.ErrConfigInvalid},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, core.ErrConfigInvalid},
		{"bad catalog source", func(c *Config) { c.Catalog.Source = "redis" }, core.ErrConfigInvalid},
		{"unknown location", func(c *Config) { c.Signals.Location = "Mars/Olympus" }, core.ErrConfigInvalid},
		{"ui timeout exceeds request timeout", func(c *Config) { c.Analysis.UITimeout = time.Hour }, core.ErrConfigInvalid},
		{"zero ui timeout", func(c *Config) { c.Analysis.UITimeout = 0 }, core.ErrConfigInvalid},
		{"no timeframes", func(c *Config) { c.Signals.Timeframes = nil }, core.ErrConfigInvalid},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bard" }, core.ErrConfigInvalid},
		{"missing gemini key", func(c *Config) { c.LLM.Gemini.APIKey = "" }, nil},
		{"claude without key", func(c *Config) { c.LLM.Provider = "claude" }, nil},
		{"inline catalog without pairs", func(c *Config) { c.Catalog.Source = "inline" }, core.ErrConfigMissing},
		{"s3 catalog without bucket", func(c *Config) { c.Catalog.Source = "s3" }, core.ErrConfigMissing},
		{"telegram without token", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"telegram": {Enabled: true}}
		}, core.ErrConfigMissing},
		{"disabled telegram without token", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"telegram": {Enabled: false}}
		}, nil},
		{"webhook bad url", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"webhook": {Enabled: true, URL: "not a url"}}
		}, core.ErrConfigInvalid},
		{"email without recipients", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"email": {Enabled: true, Host: "smtp.example.com", From: "bot@example.com"}}
		}, core.ErrConfigMissing},
		{"email bad recipient", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"email": {Enabled: true, Host: "smtp.example.com", From: "bot@example.com", To: []string{"nobody"}}}
		}, core.ErrConfigInvalid},
		{"unknown notifier", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"pager": {Enabled: true}}
		}, core.ErrConfigInvalid},
		{"broadcast without schedule", func(c *Config) {
			c.Broadcast.Enabled = true
			c.Broadcast.Schedule = ""
		}, core.ErrConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
