package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/catalog"
	"github.com/lrchart/chartai/internal/config"
	"github.com/lrchart/chartai/internal/generator"
	"github.com/lrchart/chartai/internal/llm/factory"
	"github.com/lrchart/chartai/internal/logger"
	"github.com/lrchart/chartai/internal/metrics"
	"github.com/lrchart/chartai/internal/notifier"
	"github.com/lrchart/chartai/internal/notifier/email"
	"github.com/lrchart/chartai/internal/notifier/telegram"
	"github.com/lrchart/chartai/internal/notifier/webhook"
	"github.com/lrchart/chartai/internal/storage/blob"
)

// loadConfig reads --config (or defaults plus environment) and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if debug {
		cfg.Server.Mode = "debug"
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.Build(logger.Options{
		Development: cfg.Server.Mode == "debug",
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	})
}

// buildCatalog loads the pair list from the configured source.
func buildCatalog(ctx context.Context, cfg config.CatalogConfig) (*catalog.Catalog, error) {
	switch cfg.Source {
	case "inline":
		return catalog.New(cfg.Pairs)
	case "file":
		fs, err := blob.NewLocalFS(filepath.Dir(cfg.Path))
		if err != nil {
			return nil, err
		}
		return catalog.Load(ctx, fs, filepath.Base(cfg.Path))
	case "s3":
		s3, err := blob.NewS3(blob.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return catalog.Load(ctx, s3, cfg.Path)
	default:
		return catalog.Default(), nil
	}
}

// buildAnalyzer wraps the configured model in rate limiting, caching and
// metrics. The outermost layer sees cache hits as fast successes.
func buildAnalyzer(ctx context.Context, cfg *config.Config, reg *metrics.Registry, log *zap.Logger) (analysis.Analyzer, error) {
	provider, err := factory.New(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	acfg := analysis.DefaultConfig()
	if cfg.Analysis.ChartModel != "" {
		acfg.ChartModel = cfg.Analysis.ChartModel
	}
	if cfg.Analysis.ForecastModel != "" {
		acfg.ForecastModel = cfg.Analysis.ForecastModel
	}
	acfg.ChartTemperature = cfg.Analysis.ChartTemperature
	acfg.ForecastTemperature = cfg.Analysis.ForecastTemperature

	var a analysis.Analyzer = analysis.New(provider, acfg, log.Named("analysis"))
	a = analysis.WithRateLimit(a, cfg.Analysis.RatePerMinute)
	a = analysis.WithCache(a, cfg.Analysis.CacheTTL)
	if reg != nil {
		a = analysis.WithMetrics(a, reg)
	}
	return a, nil
}

// buildNotifiers registers every enabled notifier.
func buildNotifiers(cfg map[string]config.NotifierConfig, log *zap.Logger) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()
	for name, nc := range cfg {
		if !nc.Enabled {
			continue
		}

		var n notifier.Notifier
		switch name {
		case "telegram":
			n = telegram.New(nc.BotToken, nc.ChatID)
		case "webhook":
			n = webhook.New(nc.URL, nc.Headers)
		case "email":
			n = email.New(nc.Host, nc.Port, nc.Username, nc.Password, nc.From, nc.To)
		default:
			log.Warn("unknown notifier ignored", zap.String("notifier", name))
			continue
		}

		if err := n.Init(notifier.Config{Type: name}); err != nil {
			return nil, fmt.Errorf("notifier %s: %w", name, err)
		}
		if err := reg.Register(n); err != nil {
			return nil, err
		}
		log.Info("notifier enabled", zap.String("notifier", name))
	}
	return reg, nil
}

// buildApp wires the application service. Without a usable LLM provider the
// synthetic tools still work and the AI tools report ErrConfigMissing.
func buildApp(ctx context.Context, cfg *config.Config, reg *metrics.Registry, log *zap.Logger) (*app.App, error) {
	cat, err := buildCatalog(ctx, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading pair catalog: %w", err)
	}
	log.Info("pair catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("pairs", cat.Len()))

	loc, err := cfg.Signals.LoadLocation()
	if err != nil {
		return nil, err
	}
	genOpts := []generator.Option{
		generator.WithLocation(loc),
		generator.WithMaxRedraws(cfg.Signals.MaxRedraws),
	}
	if reg != nil {
		genOpts = append(genOpts, generator.WithWaiverHook(reg.RecordDiversityWaiver))
	}
	gen, err := generator.New(cat.Pairs(), genOpts...)
	if err != nil {
		return nil, err
	}

	an, err := buildAnalyzer(ctx, cfg, reg, log)
	if err != nil {
		log.Warn("AI analysis disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}

	notifiers, err := buildNotifiers(cfg.Notifiers, log)
	if err != nil {
		return nil, err
	}

	jobs := job.NewStore(cfg.Server.MaxJobs, time.Duration(cfg.Server.JobTTLHours)*time.Hour)

	deps := app.Deps{
		Catalog:   cat,
		Generator: gen,
		Analyzer:  an,
		Jobs:      jobs,
		Notifiers: notifiers,
	}
	if reg != nil {
		deps.Recorder = reg
		jobs.SetObserver(reg.SetJobsActive)
		reg.SetCatalogSize(cat.Len())
	}

	a, err := app.New(cfg, deps, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}
