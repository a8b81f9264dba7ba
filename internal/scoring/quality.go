package scoring

import (
	"math"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
)

// Provider weights for the quality report. Geography anchors everything and
// counts triple; census and the housing index feed most scoring metrics and
// count double.
var qualityWeights = map[string]int{
	model.SourceGeography:    3,
	model.SourceDemographics: 2,
	model.SourceHousing:      2,
	model.SourceEmployment:   1,
	model.SourceAmenities:    1,
	model.SourceWeather:      1,
	model.SourceFlood:        1,
	model.SourceNews:         1,
}

// ProviderQuality is one provider's entry in the quality report.
type ProviderQuality struct {
	Score      int               `json:"score"`
	Confidence metric.Confidence `json:"confidence"`
	Weight     int               `json:"weight"`
}

// QualityReport grades how much of the bundle arrived usable.
type QualityReport struct {
	Providers    map[string]ProviderQuality `json:"providers"`
	OverallScore int                        `json:"overall_score"`
}

// AssessQuality scores each provider 100/60/0 for good/partial/other and
// folds the weighted scores into a 0-100 overall grade.
func AssessQuality(bundle *model.RawBundle) QualityReport {
	report := QualityReport{
		Providers: make(map[string]ProviderQuality, len(model.BundleSources)),
	}

	weightedSum := 0
	totalWeight := 0
	for _, source := range model.BundleSources {
		env := bundle.Envelope(source)
		score := 0
		switch env.Confidence {
		case metric.ConfidenceGood:
			score = 100
		case metric.ConfidencePartial:
			score = 60
		}

		weight := qualityWeights[source]
		report.Providers[source] = ProviderQuality{
			Score:      score,
			Confidence: env.Confidence,
			Weight:     weight,
		}
		weightedSum += score * weight
		totalWeight += 100 * weight
	}

	if totalWeight > 0 {
		report.OverallScore = int(math.Round(float64(weightedSum) / float64(totalWeight) * 100))
	}
	return report
}
