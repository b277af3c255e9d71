package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/swe-alert-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/swe-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/swe-alert-service/internal/adapter/noaa"
	"github.com/couchcryptid/swe-alert-service/internal/adapter/state"
	"github.com/couchcryptid/swe-alert-service/internal/config"
	"github.com/couchcryptid/swe-alert-service/internal/observability"
	"github.com/couchcryptid/swe-alert-service/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run checks on CHECK_INTERVAL and serve health, metrics and state over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return err
	}
	logSettingsProblems(logger, cfg.SettingsPath, settings)
	settingsStore := config.NewStore(settings)

	store, err := state.Open(cfg.StateBackend, cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		logger.Info("kafka alert publishing enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	fetcher := noaa.NewClient(cfg.FetchTimeout, metrics, logger)
	checker := pipeline.NewChecker(fetcher, settingsStore, notifiersFor(cfg, os.Stdout, publisher), store, logger, metrics)
	scheduler := pipeline.NewScheduler(checker, cfg.CheckInterval, nil, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, scheduler, store, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.WatchSettings {
		go func() {
			err := config.Watch(ctx, cfg.SettingsPath, logger, func(s *config.Settings) {
				logSettingsProblems(logger, cfg.SettingsPath, s)
				settingsStore.Set(s)
			})
			if err != nil {
				logger.Error("settings watcher stopped", "error", err)
			}
		}()
	}

	// Start scheduler.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeAfter(shutdownCtx, done, store, logger)
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// closeAfter closes the state store once the scheduler has stopped, so no
// check can be writing to it. If ctx expires first the store is left open
// and false is returned.
func closeAfter(ctx context.Context, done <-chan struct{}, store io.Closer, logger *slog.Logger) bool {
	select {
	case <-done:
		if err := store.Close(); err != nil {
			logger.Error("state store close error", "error", err)
		}
		return true
	case <-ctx.Done():
		logger.Warn("scheduler did not stop before shutdown timeout, leaving state store open")
		return false
	}
}
