package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Window identifies one of the fixed SWE change look-back periods.
type Window int

const (
	Window6h Window = iota
	Window12h
	Window24h
	Window48h
	Window1w

	numWindows
)

// Windows lists every window in reporting order. Reasons and page columns
// follow this order.
var Windows = [numWindows]Window{Window6h, Window12h, Window24h, Window48h, Window1w}

var windowLabels = [numWindows]string{"6h", "12h", "24h", "48h", "1w"}

// String returns the window label used in config keys, reasons and JSON.
func (w Window) String() string {
	if w < 0 || w >= numWindows {
		return fmt.Sprintf("Window(%d)", int(w))
	}
	return windowLabels[w]
}

// ParseWindow maps a label such as "24h" to its Window.
func ParseWindow(label string) (Window, bool) {
	for i, l := range windowLabels {
		if l == label {
			return Window(i), true
		}
	}
	return 0, false
}

// WindowValues holds exactly one float64 per window, in inches. NaN marks an
// absent or unparseable value.
type WindowValues [numWindows]float64

// NaNWindowValues returns a WindowValues with every window set to NaN.
func NaNWindowValues() WindowValues {
	var v WindowValues
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// Get returns the value for w.
func (v WindowValues) Get(w Window) float64 {
	return v[w]
}

// Map returns the values keyed by window label.
func (v WindowValues) Map() map[string]float64 {
	out := make(map[string]float64, numWindows)
	for _, w := range Windows {
		out[w.String()] = v[w]
	}
	return out
}

// MarshalJSON encodes the values as an object keyed by window label in
// reporting order. NaN and infinities are written as null.
func (v WindowValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, w := range Windows {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", w.String())
		f := v[w]
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		b, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", w, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by window label. Null or missing
// windows decode to NaN; unknown keys are ignored.
func (v *WindowValues) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode window values: %w", err)
	}
	out := NaNWindowValues()
	for label, f := range raw {
		w, ok := ParseWindow(label)
		if !ok || f == nil {
			continue
		}
		out[w] = *f
	}
	*v = out
	return nil
}

// Measurement is a scalar quantity that may be NaN. It encodes NaN as JSON
// null and decodes null back to NaN.
type Measurement float64

// NaN reports whether m is absent.
func (m Measurement) NaN() bool {
	return math.IsNaN(float64(m))
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	var f *float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode measurement: %w", err)
	}
	if f == nil {
		*m = Measurement(math.NaN())
		return nil
	}
	*m = Measurement(*f)
	return nil
}
