package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// Notification methods.
const (
	NotifyConsole = "console"
	NotifyWebhook = "webhook"
)

// Settings is the alert settings file: which page to watch, the per-window
// thresholds, and where to send notifications. Fields map 1:1 to
// config.example.yaml.
type Settings struct {
	Station StationSettings `yaml:"station" toml:"station"`

	// ThresholdsCM maps a window label ("6h", "12h", "24h", "48h", "1w") to
	// a threshold in centimeters of SWE change. Values are decoded loosely;
	// anything that is not a number becomes a NaN threshold.
	ThresholdsCM map[string]any `yaml:"thresholds_cm" toml:"thresholds_cm"`

	Notify NotifySettings `yaml:"notify" toml:"notify"`
}

// StationSettings identifies the single station being watched.
type StationSettings struct {
	Name string `yaml:"name" toml:"name"`
	URL  string `yaml:"url" toml:"url"`
}

// NotifySettings selects how alerts are delivered.
type NotifySettings struct {
	// Method is one of: console | webhook.
	Method string `yaml:"method" toml:"method"`

	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`

	// BearerToken is sent as "Authorization: Bearer <token>" on webhook
	// calls. BearerTokenEnv names an environment variable to read it from
	// instead, so the token can stay out of the file.
	BearerToken    string `yaml:"bearer_token" toml:"bearer_token"`
	BearerTokenEnv string `yaml:"bearer_token_env" toml:"bearer_token_env"`
}

// Token returns the webhook bearer token, preferring the environment variable.
func (n NotifySettings) Token() string {
	if n.BearerTokenEnv != "" {
		if v := os.Getenv(n.BearerTokenEnv); v != "" {
			return v
		}
	}
	return n.BearerToken
}

// Thresholds converts the configured thresholds to domain form. Unknown
// window labels are skipped; malformed values become NaN.
func (s *Settings) Thresholds() domain.CentimeterThresholds {
	out := make(domain.CentimeterThresholds, len(s.ThresholdsCM))
	for label, raw := range s.ThresholdsCM {
		w, ok := domain.ParseWindow(strings.TrimSpace(label))
		if !ok {
			continue
		}
		out[w] = domain.ThresholdValue(raw)
	}
	return out
}

// Problems lists non-fatal issues with the thresholds: unknown window labels
// and values that did not parse as numbers. Callers log these.
func (s *Settings) Problems() []string {
	var out []string
	for label, raw := range s.ThresholdsCM {
		if _, ok := domain.ParseWindow(strings.TrimSpace(label)); !ok {
			out = append(out, fmt.Sprintf("thresholds_cm.%s: unknown window", label))
			continue
		}
		if raw != nil && math.IsNaN(domain.ThresholdValue(raw)) {
			out = append(out, fmt.Sprintf("thresholds_cm.%s: %v is not a number", label, raw))
		}
	}
	sort.Strings(out)
	return out
}

// LoadSettings reads and parses the settings file at path. Files ending in
// .toml are parsed as TOML, everything else as YAML. Missing optional fields
// are filled with defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read file: %w", err)
	}

	s := defaultSettings()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), s); err != nil {
			return nil, fmt.Errorf("settings: parse toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("settings: parse yaml: %w", err)
		}
	}
	if s.Notify.Method == "" {
		s.Notify.Method = NotifyConsole
	}

	if err := validateSettings(s); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return s, nil
}

func defaultSettings() *Settings {
	return &Settings{
		Station: StationSettings{Name: "station"},
		Notify:  NotifySettings{Method: NotifyConsole},
	}
}

func validateSettings(s *Settings) error {
	if s.Station.URL == "" {
		return fmt.Errorf("station.url is required")
	}
	switch s.Notify.Method {
	case NotifyConsole:
	case NotifyWebhook:
		if s.Notify.WebhookURL == "" {
			return fmt.Errorf("notify.webhook_url is required when notify.method is webhook")
		}
	default:
		return fmt.Errorf("unknown notify.method %q", s.Notify.Method)
	}
	return nil
}

// Store holds the active Settings and swaps them atomically on reload.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore creates a Store holding s.
func NewStore(s *Settings) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Current returns the active settings.
func (st *Store) Current() *Settings {
	return st.current.Load()
}

// Set replaces the active settings.
func (st *Store) Set(s *Settings) {
	st.current.Store(s)
}
