package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CentimetersPerInch converts configured centimeter thresholds to inches.
const CentimetersPerInch = 2.54

// CentimeterThresholds maps a window to its configured alert threshold in
// centimeters of SWE change. A missing window has no threshold.
type CentimeterThresholds map[Window]float64

// Decision is the outcome of comparing one reading against the thresholds.
// Alert is true iff Reasons is non-empty.
type Decision struct {
	Alert      bool         `json:"alert"`
	Reasons    []string     `json:"reasons"`
	Metrics    WindowValues `json:"metrics"`
	Thresholds WindowValues `json:"thresholds"`
}

// ThresholdsFromCentimeters converts centimeter thresholds to inches. Windows
// without an entry, or with a NaN entry, become NaN.
func ThresholdsFromCentimeters(cm CentimeterThresholds) WindowValues {
	out := NaNWindowValues()
	for _, w := range Windows {
		if v, ok := cm[w]; ok {
			out[w] = v / CentimetersPerInch
		}
	}
	return out
}

// Evaluate compares each window of reading against its threshold and builds a
// Decision. It never fails: NaN on either side means the window cannot
// trigger.
func Evaluate(reading WindowValues, thresholdsCM CentimeterThresholds) Decision {
	thresholds := ThresholdsFromCentimeters(thresholdsCM)

	d := Decision{
		Reasons:    []string{},
		Metrics:    reading,
		Thresholds: thresholds,
	}
	for _, w := range Windows {
		v, t := reading[w], thresholds[w]
		if !meetsThreshold(v, t) {
			continue
		}
		d.Reasons = append(d.Reasons, fmt.Sprintf("%s SWE change %.2f in >= %.2f in", w, v, t))
	}
	d.Alert = len(d.Reasons) > 0
	return d
}

// meetsThreshold is the inclusive, NaN-safe comparison v >= t.
func meetsThreshold(v, t float64) bool {
	if math.IsNaN(v) || math.IsNaN(t) {
		return false
	}
	return v >= t
}

// ThresholdValue converts a loosely-typed configuration value to a float64
// threshold. Numbers and numeric strings convert; nil, booleans, nested
// structures and non-numeric strings become NaN.
func ThresholdValue(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
