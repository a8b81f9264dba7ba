// Package metric defines the confidence-tagged envelope every data source
// produces, and the adjustment step that discounts raw values by confidence
// and recency before scoring.
package metric

import "time"

// Confidence expresses the degree of trust in an externally sourced datum.
type Confidence string

const (
	ConfidenceGood         Confidence = "good"
	ConfidencePartial      Confidence = "partial"
	ConfidenceInterpolated Confidence = "interpolated"
	ConfidenceMissing      Confidence = "missing"
)

// Multiplier returns the scoring discount applied for this confidence level.
func (c Confidence) Multiplier() float64 {
	switch c {
	case ConfidenceGood:
		return 1.0
	case ConfidencePartial:
		return 0.8
	case ConfidenceInterpolated:
		return 0.6
	default:
		return 0.0
	}
}

// Envelope is the common unit every provider returns: a payload plus
// confidence, acquisition timestamp, and source. A missing envelope carries
// no usable value and must never be treated as zero downstream.
type Envelope struct {
	Value       any        `json:"value,omitempty"`
	Confidence  Confidence `json:"confidence"`
	RetrievedAt time.Time  `json:"retrieved_at"`
	Source      string     `json:"source"`
	Err         string     `json:"error,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// Good wraps a payload retrieved successfully and completely.
func Good(source string, value any) Envelope {
	return Envelope{
		Value:       value,
		Confidence:  ConfidenceGood,
		RetrievedAt: time.Now().UTC(),
		Source:      source,
	}
}

// Partial wraps a payload where some sub-queries succeeded and others did
// not. The note explains what is incomplete.
func Partial(source string, value any, note string) Envelope {
	return Envelope{
		Value:       value,
		Confidence:  ConfidencePartial,
		RetrievedAt: time.Now().UTC(),
		Source:      source,
		Note:        note,
	}
}

// Missing records a provider failure or absent configuration. No value is
// attached.
func Missing(source, errMsg string) Envelope {
	return Envelope{
		Confidence:  ConfidenceMissing,
		RetrievedAt: time.Now().UTC(),
		Source:      source,
		Err:         errMsg,
	}
}

// Usable reports whether the envelope carries data scoring may consume.
func (e Envelope) Usable() bool {
	return e.Confidence != ConfidenceMissing && e.Value != nil
}
