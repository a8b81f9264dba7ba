package scoring

import (
	_ "embed"
	"math"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed weights.yaml
var defaultWeightsYAML []byte

// Weights maps component names to their share of the final score.
type Weights map[string]float64

// DefaultWeights returns the built-in component weight table.
func DefaultWeights() Weights {
	w, err := parseWeights(defaultWeightsYAML)
	if err != nil {
		// The embedded table is validated by tests; a parse failure here is a
		// build defect.
		panic(err)
	}
	return w
}

// LoadWeights reads a component weight table from a YAML file and validates
// that it sums to 1.0.
func LoadWeights(path string) (Weights, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: read weights file")
	}
	return parseWeights(raw)
}

func parseWeights(raw []byte) (Weights, error) {
	var w Weights
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, eris.Wrap(err, "scoring: parse weights")
	}

	sum := 0.0
	for name, v := range w {
		if v < 0 {
			return nil, eris.Errorf("scoring: negative weight for %s", name)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 0.001 {
		return nil, eris.Errorf("scoring: weights sum to %.3f, want 1.0", sum)
	}
	return w, nil
}

// Combine blends component scores into the final 0-100 integer score. Each
// weighted component is discounted by its confidence multiplier; components
// with zero availability drop out of both numerator and denominator instead
// of being forced to zero. The returned coverage is the fraction of total
// weight that had any confidence behind it.
func Combine(components map[string]ComponentScore, w Weights) (score int, coverage float64) {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	num := 0.0
	den := 0.0
	totalWeight := 0.0
	for _, name := range names {
		weight := w[name]
		totalWeight += weight
		comp, ok := components[name]
		if !ok {
			continue
		}
		cm := comp.Confidence.Multiplier()
		num += comp.Score * weight * cm
		den += weight * cm
	}

	if totalWeight > 0 {
		coverage = den / totalWeight
	}
	if den == 0 {
		return 0, coverage
	}

	final := math.Round(num / den)
	if final < 0 {
		final = 0
	} else if final > 100 {
		final = 100
	}
	return int(final), coverage
}

// Band maps a final score to its qualitative label.
func Band(score int) string {
	switch {
	case score >= 90:
		return "Exceptional"
	case score >= 75:
		return "Strong Buy"
	case score >= 60:
		return "Moderate Opportunity"
	case score >= 40:
		return "Market Rate"
	case score >= 25:
		return "Below Average"
	default:
		return "Avoid"
	}
}
