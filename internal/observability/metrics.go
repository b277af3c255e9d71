package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swe_alert"

// Metrics holds the Prometheus counters, histograms, and gauges for the check cycle.
type Metrics struct {
	Checks           *prometheus.CounterVec // labels: outcome={alert,ok,fetch_error,parse_error}
	ParseErrors      *prometheus.CounterVec // labels: kind={empty_input,table_not_found,no_data_row,insufficient_cells}
	Alerts           prometheus.Counter
	Notifications    *prometheus.CounterVec // labels: notifier, outcome={success,error}
	NaNCells         prometheus.Counter
	StateSaveErrors  prometheus.Counter
	SchedulerRunning prometheus.Gauge

	// Latest reading, per window.
	SWEChange *prometheus.GaugeVec // labels: window
	Threshold *prometheus.GaugeVec // labels: window
	SnowDepth prometheus.Gauge

	FetchDuration        prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all check metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Checks,
		m.ParseErrors,
		m.Alerts,
		m.Notifications,
		m.NaNCells,
		m.StateSaveErrors,
		m.SchedulerRunning,
		m.SWEChange,
		m.Threshold,
		m.SnowDepth,
		m.FetchDuration,
		m.LastSuccessTimestamp,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics without registering them, for
// one-shot commands and tests that would otherwise hit "already registered"
// panics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Check cycles by outcome.",
		}, []string{"outcome"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Snow plot pages that did not match the expected shape, by kind.",
		}, []string{"kind"}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Check cycles whose decision raised an alert.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Alert notifications by notifier and outcome.",
		}, []string{"notifier", "outcome"}),
		NaNCells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nan_cells_total",
			Help:      "SWE change cells that could not be parsed as numbers.",
		}),
		StateSaveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_save_errors_total",
			Help:      "Check results that could not be persisted.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the check scheduler is active, 0 when shut down.",
		}),
		SWEChange: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "swe_change_inches",
			Help:      "Latest SWE change per window, in inches.",
		}, []string{"window"}),
		Threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold_inches",
			Help:      "Configured alert threshold per window, in inches.",
		}, []string{"window"}),
		SnowDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snow_depth_inches",
			Help:      "Latest snow depth, in inches.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of snow plot page retrieval.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last check that produced a decision.",
		}),
	}
}
