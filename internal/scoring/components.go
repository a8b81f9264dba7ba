package scoring

import (
	"math"
	"sort"

	"github.com/sells-group/market-pulse/internal/metric"
)

// Component names. The primary set is percentile-driven; the transformation
// set comes from stage analysis.
const (
	ComponentMarketMomentum      = "market_momentum"
	ComponentSupplyDemand        = "supply_demand"
	ComponentRentalStrength      = "rental_strength"
	ComponentAffordability       = "affordability"
	ComponentEconomic            = "economic_fundamentals"
	ComponentAmenities           = "amenities_access"
	ComponentTransformationStage = "transformation_stage"
	ComponentHistoricalPattern   = "historical_pattern"
	ComponentInvestmentTiming    = "investment_timing"
)

// Constituent metrics and intra-component weights. These are contract:
// downstream consumers depend on the exact metric-weight maps.
var componentDefs = map[string]map[string]float64{
	ComponentMarketMomentum: {
		MetricZHVI1YGrowth: 0.6,
		MetricZHVI3YCAGR:   0.4,
	},
	ComponentSupplyDemand: {
		MetricDaysOnMarket: 1.0,
	},
	ComponentRentalStrength: {
		MetricZORI1YGrowth: 0.6,
		MetricRentalRate:   0.4,
	},
	ComponentAffordability: {
		MetricPriceToIncome: 1.0,
	},
	ComponentEconomic: {
		MetricUnemploymentRate: 0.6,
		MetricBachelorPlus:     0.4,
	},
	ComponentAmenities: {
		MetricAmenityDensity: 1.0,
	},
}

// neutralScore is used when a component has no available metrics, so a fully
// missing component does not drag the aggregate toward zero.
const neutralScore = 50.0

// MetricContribution records one metric's part in a component score.
type MetricContribution struct {
	Percentile   *float64 `json:"percentile"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
	Note         string   `json:"note,omitempty"`
}

// ComponentScore is one named sub-score with its provenance.
type ComponentScore struct {
	Score            float64                       `json:"score"`
	Confidence       metric.Confidence             `json:"confidence"`
	AvailableMetrics int                           `json:"available_metrics"`
	TotalMetrics     int                           `json:"total_metrics"`
	Details          map[string]MetricContribution `json:"details,omitempty"`
	Stage            string                        `json:"stage,omitempty"`
	TimingBand       string                        `json:"timing_band,omitempty"`
	Note             string                        `json:"note,omitempty"`
}

// PrimaryComponents scores every percentile-driven component. Each score is
// the weighted average of the available constituent percentiles, renormalized
// over only the metrics that produced one.
func PrimaryComponents(ranks map[string]PercentileRank) map[string]ComponentScore {
	out := make(map[string]ComponentScore, len(componentDefs))
	for name, weights := range componentDefs {
		out[name] = scoreComponent(weights, ranks)
	}
	return out
}

func scoreComponent(weights map[string]float64, ranks map[string]PercentileRank) ComponentScore {
	cs := ComponentScore{
		TotalMetrics: len(weights),
		Details:      make(map[string]MetricContribution, len(weights)),
	}

	names := make([]string, 0, len(weights))
	for m := range weights {
		names = append(names, m)
	}
	sort.Strings(names)

	weightedSum := 0.0
	totalWeight := 0.0
	for _, m := range names {
		w := weights[m]
		r, ok := ranks[m]
		if !ok || r.Percentile == nil {
			cs.Details[m] = MetricContribution{Weight: w, Note: "missing data"}
			continue
		}
		weightedSum += *r.Percentile * w
		totalWeight += w
		cs.AvailableMetrics++
		cs.Details[m] = MetricContribution{
			Percentile:   r.Percentile,
			Weight:       w,
			Contribution: *r.Percentile * w,
		}
	}

	switch {
	case cs.AvailableMetrics == cs.TotalMetrics:
		cs.Confidence = metric.ConfidenceGood
	case cs.AvailableMetrics > 0:
		cs.Confidence = metric.ConfidencePartial
	default:
		cs.Confidence = metric.ConfidenceMissing
	}

	if totalWeight > 0 {
		cs.Score = math.Round(weightedSum/totalWeight*10) / 10
	} else {
		cs.Score = neutralScore
	}
	return cs
}
