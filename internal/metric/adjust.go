package metric

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Recency multipliers: metrics lose weight as they age.
const (
	recencyCurrent = 1.0 // under 6 months
	recencyRecent  = 0.9 // 6-12 months
	recencyStale   = 0.7 // over 12 months
)

// AdjustedMetric is a raw value discounted by confidence and recency. The
// original value and both multipliers are kept for auditability.
type AdjustedMetric struct {
	RawValue             *float64   `json:"raw_value"`
	AdjustedValue        *float64   `json:"adjusted_value"`
	Confidence           Confidence `json:"confidence"`
	ConfidenceMultiplier float64    `json:"confidence_multiplier"`
	RecencyMultiplier    float64    `json:"recency_multiplier"`
	RetrievedAt          time.Time  `json:"retrieved_at,omitzero"`
}

// Adjuster converts raw metric values into adjusted ones. The clock is
// injectable so the recency step function is testable at fixed instants.
type Adjuster struct {
	clock clockwork.Clock
}

// NewAdjuster creates an Adjuster using the real wall clock.
func NewAdjuster() *Adjuster {
	return &Adjuster{clock: clockwork.NewRealClock()}
}

// NewAdjusterWithClock creates an Adjuster with a caller-supplied clock.
func NewAdjusterWithClock(clock clockwork.Clock) *Adjuster {
	return &Adjuster{clock: clock}
}

// Adjust applies the confidence and recency multipliers to a raw value.
// A nil raw value yields a nil adjusted value regardless of multipliers.
func (a *Adjuster) Adjust(raw *float64, conf Confidence, retrievedAt time.Time) AdjustedMetric {
	am := AdjustedMetric{
		RawValue:             raw,
		Confidence:           conf,
		ConfidenceMultiplier: conf.Multiplier(),
		RecencyMultiplier:    a.recencyMultiplier(retrievedAt),
		RetrievedAt:          retrievedAt,
	}
	if raw == nil {
		return am
	}
	adjusted := *raw * am.ConfidenceMultiplier * am.RecencyMultiplier
	am.AdjustedValue = &adjusted
	return am
}

// recencyMultiplier is a pure step function of elapsed time. A zero
// timestamp is treated as current.
func (a *Adjuster) recencyMultiplier(retrievedAt time.Time) float64 {
	if retrievedAt.IsZero() {
		return recencyCurrent
	}
	months := a.clock.Now().Sub(retrievedAt).Hours() / 24 / 30
	switch {
	case months < 6:
		return recencyCurrent
	case months < 12:
		return recencyRecent
	default:
		return recencyStale
	}
}

// Float64 returns a pointer to v. Convenience for building raw metric values.
func Float64(v float64) *float64 {
	return &v
}
