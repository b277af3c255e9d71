package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/swe-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/swe-alert-service/internal/adapter/noaa"
	"github.com/couchcryptid/swe-alert-service/internal/adapter/state"
	"github.com/couchcryptid/swe-alert-service/internal/config"
	"github.com/couchcryptid/swe-alert-service/internal/observability"
	"github.com/couchcryptid/swe-alert-service/internal/pipeline"
)

var (
	checkNoNotify bool
	checkNoState  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single check and print the decision as JSON",
	Long: `Fetch the configured snow plot page once, evaluate it against the thresholds,
notify if an alert is raised, persist the result and print the decision JSON
to stdout. Exits non-zero if the page cannot be fetched or parsed.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkNoNotify, "no-notify", false, "Evaluate only; do not send notifications")
	checkCmd.Flags().BoolVar(&checkNoState, "no-state", false, "Do not persist the check result")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewUnregisteredMetrics()

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return err
	}
	logSettingsProblems(logger, cfg.SettingsPath, settings)

	var saver pipeline.StateSaver
	if !checkNoState {
		store, err := state.Open(cfg.StateBackend, cfg.StatePath)
		if err != nil {
			return fmt.Errorf("open state: %w", err)
		}
		defer store.Close() //nolint:errcheck // best-effort on exit
		saver = store
	}

	var notifiers pipeline.NotifierFunc
	if !checkNoNotify {
		var publisher *kafkaadapter.Publisher
		if cfg.KafkaEnabled {
			publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
			defer publisher.Close() //nolint:errcheck // best-effort on exit
		}
		// Console alerts go to stderr so stdout carries only the decision.
		notifiers = notifiersFor(cfg, cmd.ErrOrStderr(), publisher)
	}

	fetcher := noaa.NewClient(cfg.FetchTimeout, metrics, logger)
	checker := pipeline.NewChecker(fetcher, config.NewStore(settings), notifiers, saver, logger, metrics)

	res, err := checker.Check(cmd.Context())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res.Decision, "", "  ")
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
