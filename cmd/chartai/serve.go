package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/api"
	"github.com/lrchart/chartai/internal/api/handler/web"
	"github.com/lrchart/chartai/internal/metrics"
)

var templatesDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LR - CHART AI server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "", "serve page templates from this directory instead of the embedded set")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	if cfgFile == "" {
		log.Warn("no config file specified, using defaults and environment")
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, reg, log)
	if err != nil {
		return err
	}

	log.Info("starting LR - CHART AI server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	// Create API server
	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		APIKey:       cfg.Server.APIKey,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		MetricsPath:  metricsPath,
		WriteTimeout: cfg.Analysis.UITimeout + 15*time.Second,
	}, api.Dependencies{
		App:     a,
		Metrics: reg,
		Web: web.Options{
			TemplatesDir:    templatesDir,
			NextSignalDelay: cfg.UI.NextSignalDelay,
			FutureListDelay: cfg.UI.FutureListDelay,
			CommunityURL:    cfg.UI.CommunityURL,
			Logger:          log.Named("web"),
		},
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if err := a.Start(); err != nil {
		return err
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
			return err
		}
	}

	log.Info("shutting down LR - CHART AI server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	return a.Stop(shutdownCtx)
}
