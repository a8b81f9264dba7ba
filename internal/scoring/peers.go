// Package scoring derives the investment score from a raw provider bundle:
// confidence/recency adjustment, percentile ranking against a peer universe,
// weighted component scores, transformation-stage analysis, and the final
// combined score with its qualitative band.
package scoring

import (
	"math/rand"
	"sort"
)

// Metric names used across ranking, components, and extraction.
const (
	MetricZHVI1YGrowth      = "zhvi_1y_growth"
	MetricZHVI3YCAGR        = "zhvi_3y_cagr"
	MetricCurrentZHVI       = "current_zhvi"
	MetricZORI1YGrowth      = "zori_1y_growth"
	MetricDaysOnMarket      = "days_on_market"
	MetricPopulation        = "population"
	MetricMedianIncome      = "median_household_income"
	MetricBachelorPlus      = "pct_bachelor_plus"
	MetricPct2534           = "pct_25_34"
	MetricRentalRate        = "rental_rate"
	MetricUnemploymentRate  = "unemployment_rate"
	MetricPriceToIncome     = "price_to_income_ratio"
	MetricRentToIncome      = "rent_to_income_ratio"
	MetricAmenityDensity    = "amenity_density_score"
	MetricMarketTemperature = "market_temperature"
)

// PeerSource supplies the comparison distribution for a metric. An empty
// slice means no peer universe exists for that metric and no percentile can
// be computed.
type PeerSource interface {
	Peers(metricName string) []float64
}

type distribution struct {
	mean   float64
	stddev float64
}

// Synthetic peer distributions, until a cross-run peer database exists.
// Growth figures are percents; ratios are raw.
var syntheticDistributions = map[string]distribution{
	MetricZHVI1YGrowth:     {5, 15},
	MetricZHVI3YCAGR:       {8, 12},
	MetricZORI1YGrowth:     {3, 8},
	MetricDaysOnMarket:     {45, 20},
	MetricMedianIncome:     {65000, 25000},
	MetricBachelorPlus:     {35, 15},
	MetricPct2534:          {12, 5},
	MetricRentalRate:       {35, 15},
	MetricUnemploymentRate: {4.5, 1.5},
	MetricPriceToIncome:    {4.5, 1.5},
	MetricAmenityDensity:   {25, 15},
}

// SyntheticPeers is a deterministic, seeded normal-distribution peer
// universe. Two instances with the same seed and count produce identical
// distributions, which keeps runs reproducible.
type SyntheticPeers struct {
	metrics map[string][]float64
}

// NewSyntheticPeers draws count values per metric from the configured
// distributions using the given seed.
func NewSyntheticPeers(seed int64, count int) *SyntheticPeers {
	if count < 2 {
		count = 2
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec

	sp := &SyntheticPeers{metrics: make(map[string][]float64, len(syntheticDistributions))}

	// Stable iteration order so the seed fully determines every series.
	names := make([]string, 0, len(syntheticDistributions))
	for name := range syntheticDistributions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := syntheticDistributions[name]
		values := make([]float64, count)
		for i := range values {
			values[i] = d.mean + d.stddev*rng.NormFloat64()
		}
		sort.Float64s(values)
		sp.metrics[name] = values
	}
	return sp
}

// Peers returns the sorted peer values for a metric, or nil when the metric
// has no synthetic universe.
func (sp *SyntheticPeers) Peers(metricName string) []float64 {
	return sp.metrics[metricName]
}
