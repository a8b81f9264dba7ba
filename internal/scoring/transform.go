package scoring

import (
	"github.com/sells-group/market-pulse/internal/metric"
)

// Stage classifies how far along a market transformation the location is.
type Stage string

const (
	StagePre       Stage = "pre-transformation"
	StageEarly     Stage = "early-transformation"
	StageActive    Stage = "active-transformation"
	StageLate      Stage = "late-stage"
	StageDeclining Stage = "declining"
	StageUnknown   Stage = "unknown"
)

// Appreciation thresholds, in percent of annual home-value growth.
const (
	earlyGrowthPct       = 10
	activeGrowthPct      = 15
	speculationGrowthPct = 25
)

// TimingBand qualifies the investment-timing score.
func TimingBand(score int) string {
	switch {
	case score >= 5:
		return "Optimal"
	case score >= 3:
		return "Good"
	case score >= 1:
		return "Poor"
	default:
		return "Avoid"
	}
}

// TransformationAnalysis is the classification output attached to a score.
type TransformationAnalysis struct {
	Stage                Stage             `json:"stage"`
	Signals              []string          `json:"signals"`
	Risks                []string          `json:"risks"`
	HistoricalIndicators map[string]string `json:"historical_indicators"`
	TimingScore          int               `json:"timing_score"`
	TimingBand           string            `json:"timing_band"`
	TimingRationale      []string          `json:"timing_rationale"`
}

// AnalyzeTransformation classifies the location's transformation stage from
// adjusted metrics and assesses entry timing.
func AnalyzeTransformation(adjusted map[string]metric.AdjustedMetric) TransformationAnalysis {
	a := TransformationAnalysis{
		Stage:   StagePre,
		Signals: []string{},
		Risks:   []string{},
		// Historical pattern matching needs a cross-run time-series store,
		// which does not exist yet; indicators stay unknown.
		HistoricalIndicators: map[string]string{
			"employment_catalyst":    "unknown",
			"infrastructure_signals": "unknown",
			"policy_catalysts":       "unknown",
		},
	}

	growth, hasGrowth := value(adjusted, MetricZHVI1YGrowth)
	switch {
	case !hasGrowth:
		a.Stage = StageUnknown
	case growth > speculationGrowthPct:
		a.Stage = StageLate
		a.Risks = append(a.Risks, "potential speculation risk (>25% price growth)")
	case growth > activeGrowthPct:
		a.Stage = StageActive
		a.Signals = append(a.Signals, "strong price appreciation (>15% annually)")
	case growth > earlyGrowthPct:
		a.Stage = StageEarly
		a.Signals = append(a.Signals, "moderate price appreciation (10-15% annually)")
	}

	if v, ok := value(adjusted, MetricPct2534); ok && v > 15 {
		a.Signals = append(a.Signals, "high young professional population (>15%)")
	}
	if v, ok := value(adjusted, MetricBachelorPlus); ok && v > 40 {
		a.Signals = append(a.Signals, "high education levels (>40% BA+)")
	}
	if v, ok := value(adjusted, MetricPriceToIncome); ok && v > 6 {
		a.Risks = append(a.Risks, "high price-to-income ratio indicates affordability stress")
	}

	a.TimingScore, a.TimingRationale = timing(a.Stage)
	a.TimingBand = TimingBand(a.TimingScore)
	return a
}

func timing(stage Stage) (int, []string) {
	switch stage {
	case StagePre:
		return 3, []string{"good opportunity with moderate timing risk"}
	case StageEarly:
		return 5, []string{"optimal investment window currently open"}
	case StageActive:
		return 3, []string{"late-stage opportunity with higher risk"}
	case StageLate:
		return 1, []string{"poor timing - high speculation risk"}
	default:
		return 0, []string{"cannot assess timing due to insufficient data"}
	}
}

var stageScores = map[Stage]float64{
	StagePre:       60,
	StageEarly:     80,
	StageActive:    90,
	StageLate:      40,
	StageDeclining: 20,
}

// TransformationComponents converts the analysis into the three
// transformation-side component scores.
func TransformationComponents(a TransformationAnalysis) map[string]ComponentScore {
	stageScore, ok := stageScores[a.Stage]
	if !ok {
		stageScore = neutralScore
	}

	return map[string]ComponentScore{
		ComponentTransformationStage: {
			Score:      stageScore,
			Confidence: metric.ConfidencePartial,
			Stage:      string(a.Stage),
		},
		ComponentHistoricalPattern: {
			Score:      neutralScore,
			Confidence: metric.ConfidencePartial,
			Note:       "pattern matching requires historical time-series analysis",
		},
		ComponentInvestmentTiming: {
			Score:      float64(a.TimingScore) / 5 * 100,
			Confidence: metric.ConfidencePartial,
			TimingBand: a.TimingBand,
		},
	}
}

func value(adjusted map[string]metric.AdjustedMetric, name string) (float64, bool) {
	am, ok := adjusted[name]
	if !ok || am.AdjustedValue == nil {
		return 0, false
	}
	return *am.AdjustedValue, true
}
