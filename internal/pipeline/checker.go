// Package pipeline runs the check cycle: fetch the snow plot page, extract the
// SWE changes, evaluate them against the thresholds, notify on alert and
// persist the result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/couchcryptid/swe-alert-service/internal/config"
	"github.com/couchcryptid/swe-alert-service/internal/domain"
	"github.com/couchcryptid/swe-alert-service/internal/observability"
	"github.com/couchcryptid/swe-alert-service/internal/snowplot"
)

// Fetcher retrieves the raw snow plot page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Notifier delivers an alerting check result.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, res domain.CheckResult) error
}

// StateSaver persists each check result.
type StateSaver interface {
	Save(ctx context.Context, res domain.CheckResult) error
}

// SettingsSource yields the settings to use for the next check. Reloads take
// effect on the following cycle.
type SettingsSource interface {
	Current() *config.Settings
}

// NotifierFunc returns the notifiers for the given settings.
type NotifierFunc func(settings *config.Settings) []Notifier

// Checker runs one check cycle at a time.
type Checker struct {
	fetcher   Fetcher
	settings  SettingsSource
	notifiers NotifierFunc
	state     StateSaver
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewChecker wires a Checker. notifiers and state may be nil.
func NewChecker(f Fetcher, settings SettingsSource, notifiers NotifierFunc, state StateSaver, logger *slog.Logger, metrics *observability.Metrics) *Checker {
	return &Checker{
		fetcher:   f,
		settings:  settings,
		notifiers: notifiers,
		state:     state,
		logger:    logger,
		metrics:   metrics,
	}
}

// Check performs one cycle. Fetch and parse failures are returned; no
// decision is made and nothing is persisted. Notification and persistence
// failures are logged and counted but do not fail the check.
func (c *Checker) Check(ctx context.Context) (domain.CheckResult, error) {
	s := c.settings.Current()
	res := domain.CheckResult{
		ID:        uuid.NewString(),
		CheckedAt: domain.Now().UTC(),
		Station:   s.Station.Name,
		SourceURL: s.Station.URL,
	}
	logger := c.logger.With("check_id", res.ID, "station", res.Station)

	page, err := c.fetcher.Fetch(ctx, s.Station.URL)
	if err != nil {
		c.metrics.Checks.WithLabelValues("fetch_error").Inc()
		logger.Error("fetch snow plot page failed", "url", s.Station.URL, "error", err)
		return domain.CheckResult{}, fmt.Errorf("fetch: %w", err)
	}

	obs, err := snowplot.ExtractObservation(page)
	if err != nil {
		c.metrics.Checks.WithLabelValues("parse_error").Inc()
		c.metrics.ParseErrors.WithLabelValues(snowplot.KindOf(err)).Inc()
		logger.Error("extract SWE change failed", "error", err)
		return domain.CheckResult{}, fmt.Errorf("extract: %w", err)
	}
	if n := obs.NaNCount(); n > 0 {
		c.metrics.NaNCells.Add(float64(n))
		logger.Warn("unparseable SWE change cells", "count", n)
	}
	if obs.ObservedAtEstimated {
		logger.Warn("page timestamp missing or unrecognised, using check time")
	}

	res.Observation = obs
	res.Decision = domain.Evaluate(obs.SWEChange, s.Thresholds())
	c.observe(res)

	if res.Decision.Alert {
		c.metrics.Checks.WithLabelValues("alert").Inc()
		c.metrics.Alerts.Inc()
		logger.Info("SWE alert", "reasons", res.Decision.Reasons)
		c.dispatch(ctx, logger, s, res)
	} else {
		c.metrics.Checks.WithLabelValues("ok").Inc()
		logger.Info("no SWE alert")
	}

	if c.state != nil {
		if err := c.state.Save(ctx, res); err != nil {
			c.metrics.StateSaveErrors.Inc()
			logger.Error("save check result failed", "error", err)
		}
	}

	c.metrics.LastSuccessTimestamp.Set(float64(res.CheckedAt.Unix()))
	return res, nil
}

func (c *Checker) dispatch(ctx context.Context, logger *slog.Logger, s *config.Settings, res domain.CheckResult) {
	if c.notifiers == nil {
		return
	}
	for _, n := range c.notifiers(s) {
		if err := n.Notify(ctx, res); err != nil {
			c.metrics.Notifications.WithLabelValues(n.Name(), "error").Inc()
			logger.Error("notify failed", "notifier", n.Name(), "error", err)
			continue
		}
		c.metrics.Notifications.WithLabelValues(n.Name(), "success").Inc()
		logger.Debug("notified", "notifier", n.Name())
	}
}

// observe publishes the latest reading as gauges. NaN is exported as-is.
func (c *Checker) observe(res domain.CheckResult) {
	for _, w := range domain.Windows {
		c.metrics.SWEChange.WithLabelValues(w.String()).Set(res.Decision.Metrics[w])
		c.metrics.Threshold.WithLabelValues(w.String()).Set(res.Decision.Thresholds[w])
	}
	c.metrics.SnowDepth.Set(float64(res.Observation.SnowDepthIn))
}
