package domain

import (
	"math"
	"time"
)

// Observation is everything extracted from one snow plot page: the five SWE
// change windows plus ancillary station fields when the page carries them.
type Observation struct {
	SWEChange   WindowValues `json:"swe_change_in"`
	SnowDepthIn Measurement  `json:"snow_depth_in"`
	ObservedAt  time.Time    `json:"observed_at"`

	// ObservedAtEstimated is set when the page timestamp was missing or did
	// not match a known layout and ObservedAt holds the extraction time.
	ObservedAtEstimated bool `json:"observed_at_estimated"`
}

// NewObservation returns an Observation for the given SWE changes with the
// ancillary fields unset: NaN depth and an estimated timestamp of now.
func NewObservation(swe WindowValues) Observation {
	return Observation{
		SWEChange:           swe,
		SnowDepthIn:         Measurement(math.NaN()),
		ObservedAt:          clock.Now().UTC(),
		ObservedAtEstimated: true,
	}
}

// NaNCount returns how many SWE windows could not be parsed.
func (o Observation) NaNCount() int {
	n := 0
	for _, v := range o.SWEChange {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// CheckResult is the persisted and published record of one check cycle.
type CheckResult struct {
	ID          string      `json:"id"`
	CheckedAt   time.Time   `json:"checked_at"`
	Station     string      `json:"station"`
	SourceURL   string      `json:"source_url"`
	Observation Observation `json:"observation"`
	Decision    Decision    `json:"decision"`
}
