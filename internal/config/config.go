package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // signals.location must resolve on hosts without zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/ui"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Log       LogConfig                 `mapstructure:"log"`
	Catalog   CatalogConfig             `mapstructure:"catalog"`
	Signals   SignalsConfig             `mapstructure:"signals"`
	Analysis  AnalysisConfig            `mapstructure:"analysis"`
	UI        UIConfig                  `mapstructure:"ui"`
	LLM       LLMConfig                 `mapstructure:"llm"`
	Notifiers map[string]NotifierConfig `mapstructure:"notifiers" validate:"dive"`
	Broadcast BroadcastConfig           `mapstructure:"broadcast"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode        string `mapstructure:"mode" validate:"oneof=debug release"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours" validate:"gte=1"`
	MaxJobs     int    `mapstructure:"max_jobs" validate:"gte=1"`
	MaxBatches  int    `mapstructure:"max_batches" validate:"gte=1"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" validate:"gte=1,lte=50"`
}

// LogConfig controls the zap logger. File output is rotated by lumberjack.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// CatalogConfig selects where the pair list comes from.
type CatalogConfig struct {
	Source string   `mapstructure:"source" validate:"oneof=embedded inline file s3"`
	Pairs  []string `mapstructure:"pairs"`
	Path   string   `mapstructure:"path"`
	S3     S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// SignalsConfig holds synthetic generator settings.
type SignalsConfig struct {
	Location         string   `mapstructure:"location" validate:"required"`
	MaxRedraws       int      `mapstructure:"max_redraws" validate:"gte=0"`
	Timeframes       []string `mapstructure:"timeframes" validate:"min=1"`
	DefaultTimeframe string   `mapstructure:"default_timeframe" validate:"required"`
}

// AnalysisConfig holds AI analysis settings.
type AnalysisConfig struct {
	ChartModel          string        `mapstructure:"chart_model"`
	ForecastModel       string        `mapstructure:"forecast_model"`
	ChartTemperature    float64       `mapstructure:"chart_temperature" validate:"gte=0,lte=2"`
	ForecastTemperature float64       `mapstructure:"forecast_temperature" validate:"gte=0,lte=2"`
	UITimeout           time.Duration `mapstructure:"ui_timeout" validate:"gt=0"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	RatePerMinute       int           `mapstructure:"rate_per_minute" validate:"gte=0"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	NextSignalDelay time.Duration `mapstructure:"next_signal_delay" validate:"gte=0"`
	FutureListDelay time.Duration `mapstructure:"future_list_delay" validate:"gte=0"`
	UTCLabel        string        `mapstructure:"utc_label"`
	ZoneLabel       string        `mapstructure:"zone_label"`
	CommunityURL    string        `mapstructure:"community_url" validate:"omitempty,url"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider" validate:"oneof=gemini claude openai ollama"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type NotifierConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	// Webhook notifier fields
	Headers map[string]string `mapstructure:"headers"`
	// Email notifier fields
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from" validate:"omitempty,email"`
	To       []string `mapstructure:"to" validate:"omitempty,dive,email"`
}

// BroadcastConfig schedules automatic future-list publishing.
type BroadcastConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadLocation resolves the configured display time zone.
func (s SignalsConfig) LoadLocation() (*time.Location, error) {
	return time.LoadLocation(s.Location)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.job_ttl_hours", 1)
	v.SetDefault("server.max_jobs", 100)
	v.SetDefault("server.max_batches", 50)
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("catalog.source", "embedded")
	v.SetDefault("catalog.path", "pairs.txt")
	v.SetDefault("catalog.s3.bucket", "")
	v.SetDefault("catalog.s3.endpoint", "")
	v.SetDefault("catalog.s3.region", "us-east-1")
	v.SetDefault("catalog.s3.access_key", "")
	v.SetDefault("catalog.s3.secret_key", "")
	v.SetDefault("catalog.s3.prefix", "")

	v.SetDefault("signals.location", "Asia/Karachi")
	v.SetDefault("signals.max_redraws", 1000)
	v.SetDefault("signals.timeframes", []string{"5 Sec", "10 Sec", "30 Sec", "1 Min", "5 Min"})
	v.SetDefault("signals.default_timeframe", "1 Min")

	v.SetDefault("analysis.chart_model", "gemini-2.5-flash")
	v.SetDefault("analysis.forecast_model", "gemini-2.5-pro")
	v.SetDefault("analysis.chart_temperature", 0.1)
	v.SetDefault("analysis.forecast_temperature", 0.4)
	v.SetDefault("analysis.ui_timeout", 15*time.Second)
	v.SetDefault("analysis.request_timeout", 2*time.Minute)
	v.SetDefault("analysis.rate_per_minute", 30)
	v.SetDefault("analysis.cache_ttl", 0)

	v.SetDefault("ui.next_signal_delay", 1500*time.Millisecond)
	v.SetDefault("ui.future_list_delay", 2*time.Second)
	v.SetDefault("ui.utc_label", "+5:00")
	v.SetDefault("ui.zone_label", "PAKISTAN TIME ZONE")
	v.SetDefault("ui.community_url", ui.DefaultCommunityURL)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.claude.api_key", "")
	v.SetDefault("llm.claude.model", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "")
	v.SetDefault("llm.ollama.endpoint", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "")

	v.SetDefault("broadcast.enabled", false)
	v.SetDefault("broadcast.schedule", "*/30 * * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads configuration from path, environment variables and defaults.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("llm.gemini.api_key", "LLM_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("decoding defaults: %v", err))
	}
	return &cfg
}

var validate = validator.New()

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return core.WrapError(core.ErrConfigInvalid, err)
	}

	if _, err := c.Signals.LoadLocation(); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("signals.location: %w", err))
	}

	if c.Analysis.UITimeout > c.Analysis.RequestTimeout {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("analysis.ui_timeout (%s) exceeds request_timeout (%s)", c.Analysis.UITimeout, c.Analysis.RequestTimeout))
	}

	switch c.Catalog.Source {
	case "inline":
		if len(c.Catalog.Pairs) == 0 {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("catalog.pairs required when source is inline"))
		}
	case "file":
		if c.Catalog.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("catalog.path required when source is file"))
		}
	case "s3":
		if c.Catalog.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("catalog.s3.bucket required when source is s3"))
		}
	}

	// Provider credentials are not checked here. Without them the AI tools
	// are disabled and the synthetic generator keeps working.

	if c.Broadcast.Enabled && c.Broadcast.Schedule == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("broadcast.schedule required when broadcast is enabled"))
	}

	for name, n := range c.Notifiers {
		if !n.Enabled {
			continue
		}
		switch name {
		case "telegram":
			if n.BotToken == "" || n.ChatID == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("telegram bot_token and chat_id required"))
			}
		case "webhook":
			if n.URL == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("webhook url required"))
			}
		case "email":
			if n.Host == "" || n.From == "" || len(n.To) == 0 {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("email host, from and to required"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown notifier %q", name))
		}
	}

	return nil
}
