// Package cli implements the swe-alert command tree.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/swe-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/swe-alert-service/internal/adapter/notify"
	"github.com/couchcryptid/swe-alert-service/internal/config"
	"github.com/couchcryptid/swe-alert-service/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "swe-alert",
	Short: "Snow water equivalent change alerts for a NOAA NWRFC station",
	Long: `swe-alert watches a NOAA NWRFC snow plot page, extracts the 6h/12h/24h/48h/1w
SWE change readings and raises an alert when any window meets its configured
threshold.

Service settings come from environment variables; station, thresholds and
notification target come from the settings file named by CONFIG_PATH.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// notifiersFor builds the notifier set for a settings snapshot: the
// configured console or webhook target, plus the Kafka publisher when one is
// given.
func notifiersFor(cfg *config.Config, console io.Writer, publisher *kafkaadapter.Publisher) pipeline.NotifierFunc {
	return func(s *config.Settings) []pipeline.Notifier {
		var out []pipeline.Notifier
		switch s.Notify.Method {
		case config.NotifyWebhook:
			out = append(out, notify.NewWebhook(s.Notify.WebhookURL, s.Notify.Token(), cfg.FetchTimeout))
		default:
			out = append(out, notify.NewConsole(console))
		}
		if publisher != nil {
			out = append(out, publisher)
		}
		return out
	}
}

func logSettingsProblems(logger *slog.Logger, path string, s *config.Settings) {
	for _, p := range s.Problems() {
		logger.Warn("ignoring threshold", "path", path, "problem", p)
	}
}
