package model

import (
	"time"

	"github.com/sells-group/market-pulse/internal/metric"
)

// Provider names used as keys throughout the bundle, the rate limiter, and
// the data quality report.
const (
	SourceGeography    = "geography"
	SourceDemographics = "census"
	SourceEmployment   = "bls"
	SourceHousing      = "housing_index"
	SourceAmenities    = "places"
	SourceWeather      = "weather"
	SourceFlood        = "flood"
	SourceNews         = "news"
)

// BundleSources lists every provider slot a finished bundle carries, in
// report order.
var BundleSources = []string{
	SourceGeography,
	SourceDemographics,
	SourceEmployment,
	SourceHousing,
	SourceAmenities,
	SourceWeather,
	SourceFlood,
	SourceNews,
}

// RawBundle maps each provider to its envelope for one analysis run. Owned
// by a single run and never mutated after assembly.
type RawBundle struct {
	Geography    Geography       `json:"geography"`
	GeographyEnv metric.Envelope `json:"geography_env"`
	Demographics metric.Envelope `json:"census"`
	Employment   metric.Envelope `json:"bls"`
	Housing      metric.Envelope `json:"housing_index"`
	Amenities    metric.Envelope `json:"places"`
	Weather      metric.Envelope `json:"weather"`
	Flood        metric.Envelope `json:"flood"`
	News         metric.Envelope `json:"news"`
}

// Envelope returns the envelope for a named provider source.
func (b *RawBundle) Envelope(source string) metric.Envelope {
	switch source {
	case SourceGeography:
		return b.GeographyEnv
	case SourceDemographics:
		return b.Demographics
	case SourceEmployment:
		return b.Employment
	case SourceHousing:
		return b.Housing
	case SourceAmenities:
		return b.Amenities
	case SourceWeather:
		return b.Weather
	case SourceFlood:
		return b.Flood
	case SourceNews:
		return b.News
	default:
		return metric.Envelope{Confidence: metric.ConfidenceMissing}
	}
}

// SetEnvelope stores the envelope for a named provider source. Unknown
// sources are dropped.
func (b *RawBundle) SetEnvelope(source string, env metric.Envelope) {
	switch source {
	case SourceGeography:
		b.GeographyEnv = env
	case SourceDemographics:
		b.Demographics = env
	case SourceEmployment:
		b.Employment = env
	case SourceHousing:
		b.Housing = env
	case SourceAmenities:
		b.Amenities = env
	case SourceWeather:
		b.Weather = env
	case SourceFlood:
		b.Flood = env
	case SourceNews:
		b.News = env
	}
}

// Meta describes one analysis run.
type Meta struct {
	Query               string          `json:"query"`
	Mode                Mode            `json:"mode"`
	TopN                int             `json:"top_n,omitempty"`
	Slug                string          `json:"slug"`
	CreatedAt           time.Time       `json:"created_at"`
	ProcessingMS        int64           `json:"processing_time_ms"`
	ProvidersConfigured map[string]bool `json:"providers_configured"`
}

// RegionCandidate is one entry of a region-mode survey. Candidates are
// enumerated rather than measured, so they carry interpolated confidence.
type RegionCandidate struct {
	Name       string            `json:"name"`
	Confidence metric.Confidence `json:"confidence"`
	Note       string            `json:"note,omitempty"`
}

// AnalysisResult is the complete output of one run: always structurally
// complete, with missing data represented by confidence tags rather than
// absent keys.
type AnalysisResult struct {
	Meta             Meta              `json:"meta"`
	RawData          RawBundle         `json:"raw_data"`
	RegionCandidates []RegionCandidate `json:"region_candidates,omitempty"`
	ProcessedMetrics any               `json:"processed_metrics,omitempty"`
	InvestmentScore  any               `json:"investment_score,omitempty"`
	DataQuality      any               `json:"data_quality,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// Summary is the lightweight projection of a run for downstream consumers.
type Summary struct {
	Location    string             `json:"location"`
	Slug        string             `json:"slug"`
	FinalScore  int                `json:"investment_score"`
	Band        string             `json:"band"`
	DataQuality int                `json:"data_quality"`
	KeyMetrics  map[string]float64 `json:"key_metrics"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// RunStatus tracks a persisted run's lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is a persisted analysis run record.
type Run struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Query       string     `json:"query"`
	Status      RunStatus  `json:"status"`
	FinalScore  int        `json:"final_score"`
	Band        string     `json:"band"`
	Quality     int        `json:"quality"`
	Error       string     `json:"error,omitempty"`
	Snapshot    []byte     `json:"snapshot,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
