// Package notify delivers alert decisions to a console stream or an HTTP
// webhook.
package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// Console writes a human-readable alert summary to a stream, usually stdout.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console notifier writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

// Notify prints the station, the triggered reasons and the full metric and
// threshold snapshot.
func (c *Console) Notify(_ context.Context, res domain.CheckResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "SWE ALERT %s at %s\n", res.Station, res.CheckedAt.UTC().Format(time.RFC3339))
	for _, r := range res.Decision.Reasons {
		fmt.Fprintf(&b, "  - %s\n", r)
	}
	b.WriteString("  window  change(in)  threshold(in)\n")
	for _, w := range domain.Windows {
		fmt.Fprintf(&b, "  %-6s  %10s  %13s\n", w, formatInches(res.Decision.Metrics[w]), formatInches(res.Decision.Thresholds[w]))
	}
	if !res.Observation.SnowDepthIn.NaN() {
		fmt.Fprintf(&b, "  snow depth %.1f in\n", float64(res.Observation.SnowDepthIn))
	}

	if _, err := io.WriteString(c.w, b.String()); err != nil {
		return fmt.Errorf("console notify: %w", err)
	}
	return nil
}

func formatInches(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
