package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
)

// InvestmentScore is the full scoring output for one location.
type InvestmentScore struct {
	FinalScore      int                              `json:"final_score"`
	Band            string                           `json:"band"`
	DataCoverage    float64                          `json:"data_coverage"`
	ComponentScores map[string]ComponentScore        `json:"component_scores"`
	PercentileRanks map[string]PercentileRank        `json:"percentile_ranks"`
	AdjustedMetrics map[string]metric.AdjustedMetric `json:"adjusted_metrics"`
	Transformation  TransformationAnalysis           `json:"transformation_analysis"`
	Rationale       []string                         `json:"rationale"`
}

// Engine computes investment scores. Given the same bundle, clock, peer
// source, and weights, the output is fully deterministic.
type Engine struct {
	adjuster *metric.Adjuster
	peers    PeerSource
	weights  Weights
}

// NewEngine builds a scoring engine with the real clock.
func NewEngine(peers PeerSource, weights Weights) *Engine {
	return &Engine{adjuster: metric.NewAdjuster(), peers: peers, weights: weights}
}

// NewEngineWithClock is NewEngine with an injected clock for tests.
func NewEngineWithClock(peers PeerSource, weights Weights, clock clockwork.Clock) *Engine {
	return &Engine{adjuster: metric.NewAdjusterWithClock(clock), peers: peers, weights: weights}
}

// Score runs the full pipeline: extract and adjust metrics, rank against
// peers, score components, classify transformation, and combine.
func (e *Engine) Score(bundle *model.RawBundle) *InvestmentScore {
	adjusted := extractMetrics(bundle, e.adjuster)
	ranks := Rank(adjusted, e.peers)

	components := PrimaryComponents(ranks)
	transformation := AnalyzeTransformation(adjusted)
	for name, cs := range TransformationComponents(transformation) {
		components[name] = cs
	}

	final, coverage := Combine(components, e.weights)

	score := &InvestmentScore{
		FinalScore:      final,
		Band:            Band(final),
		DataCoverage:    coverage,
		ComponentScores: components,
		PercentileRanks: ranks,
		AdjustedMetrics: adjusted,
		Transformation:  transformation,
	}
	score.Rationale = rationale(score)
	return score
}

func rationale(s *InvestmentScore) []string {
	out := []string{
		fmt.Sprintf("Investment score: %d/100 (%s)", s.FinalScore, s.Band),
	}

	var strong, weak []string
	names := make([]string, 0, len(s.ComponentScores))
	for name := range s.ComponentScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cs := s.ComponentScores[name]
		if cs.Confidence == metric.ConfidenceMissing {
			continue
		}
		switch {
		case cs.Score >= 70:
			strong = append(strong, fmt.Sprintf("%s: %.0f", name, cs.Score))
		case cs.Score <= 30:
			weak = append(weak, fmt.Sprintf("%s: %.0f", name, cs.Score))
		}
	}
	if len(strong) > 0 {
		out = append(out, "Strong performance in: "+strings.Join(strong, ", "))
	}
	if len(weak) > 0 {
		out = append(out, "Areas of concern: "+strings.Join(weak, ", "))
	}

	out = append(out, fmt.Sprintf("Transformation stage: %s", s.Transformation.Stage))
	if s.DataCoverage < 0.5 {
		out = append(out, "Limited data coverage affects reliability; consider gathering additional data")
	}
	return out
}
