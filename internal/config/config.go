package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// State backends.
const (
	StateBackendFile   = "file"
	StateBackendSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
// Alert thresholds and notification targets live in the settings file named
// by SettingsPath.
type Config struct {
	SettingsPath    string
	WatchSettings   bool
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	CheckInterval time.Duration
	FetchTimeout  time.Duration

	StateBackend string
	StatePath    string

	// Kafka alert publishing.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	checkInterval, err := parsePositiveDuration("CHECK_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	stateBackend := sharedcfg.EnvOrDefault("STATE_BACKEND", StateBackendFile)
	statePath := os.Getenv("STATE_PATH")
	if statePath == "" {
		statePath = defaultStatePath(stateBackend)
	}

	cfg := &Config{
		SettingsPath:    sharedcfg.EnvOrDefault("CONFIG_PATH", "config.yaml"),
		WatchSettings:   sharedcfg.EnvOrDefault("CONFIG_WATCH", "true") == "true",
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CheckInterval:   checkInterval,
		FetchTimeout:    fetchTimeout,
		StateBackend:    stateBackend,
		StatePath:       statePath,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "swe-alerts"),
	}

	if cfg.SettingsPath == "" {
		return nil, errors.New("CONFIG_PATH is required")
	}
	switch cfg.StateBackend {
	case StateBackendFile, StateBackendSQLite:
	default:
		return nil, fmt.Errorf("invalid STATE_BACKEND %q: want file or sqlite", cfg.StateBackend)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ALERT_TOPIC is empty")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func defaultStatePath(backend string) string {
	if backend == StateBackendSQLite {
		return "data/state.db"
	}
	return "data/last_state.json"
}
