package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/jclee2044/faqwidget"
	"github.com/jclee2044/faqwidget/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the preview gallery server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview gallery",
	Long: `Start the faqwidget preview gallery.

The server will:
  - Load configuration from the specified YAML file
  - Mount every configured widget
  - Serve the gallery, each widget's rendered page, a live update
    stream and Prometheus metrics (/metrics) on the configured port
  - Re-mount widgets on their refresh_interval, if one is set

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  faqwidget serve -c faqwidget.yaml
  faqwidget serve --config /etc/faqwidget/faqwidget.yaml --verbose`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	serveCmd.Flags().BoolP("verbose", "v", false, "log debug output")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(level)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"widgets", len(cfg.Widgets),
		"port", cfg.Port,
	)

	opts, err := config.GalleryOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build widgets: %w", err)
	}
	opts = append(opts, faqwidget.WithLogger(logger))

	g, err := faqwidget.NewGallery(opts...)
	if err != nil {
		return fmt.Errorf("failed to create gallery: %w", err)
	}

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- g.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
