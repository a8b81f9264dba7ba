package scoring

import (
	"math"

	"github.com/sells-group/market-pulse/internal/metric"
)

// Metrics where a lower value outranks peers.
var invertedMetrics = map[string]bool{
	MetricDaysOnMarket:  true,
	MetricPriceToIncome: true,
}

// PercentileRank places one adjusted metric inside its peer distribution. A
// nil percentile means the metric could not be ranked; it is never
// substituted with zero or a neutral value.
type PercentileRank struct {
	Percentile *float64 `json:"percentile"`
	PeerCount  int      `json:"peer_count"`
	Rank       int      `json:"rank,omitempty"`
	Value      float64  `json:"value,omitempty"`
	PeerMean   float64  `json:"peer_mean,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// Rank computes percentile ranks for every adjusted metric against the peer
// source. The percentile is the share of peers strictly worse than the
// value: rank/(n-1)*100, rounded to one decimal.
func Rank(adjusted map[string]metric.AdjustedMetric, peers PeerSource) map[string]PercentileRank {
	out := make(map[string]PercentileRank, len(adjusted))

	for name, am := range adjusted {
		peerValues := peers.Peers(name)
		if am.AdjustedValue == nil || len(peerValues) < 2 {
			out[name] = PercentileRank{
				Note: "insufficient data for percentile calculation",
			}
			continue
		}

		value := *am.AdjustedValue
		worse := 0
		sum := 0.0
		for _, p := range peerValues {
			sum += p
			if invertedMetrics[name] {
				if p > value {
					worse++
				}
			} else if p < value {
				worse++
			}
		}

		pct := float64(worse) / float64(len(peerValues)-1) * 100
		pct = math.Round(pct*10) / 10
		out[name] = PercentileRank{
			Percentile: &pct,
			PeerCount:  len(peerValues),
			Rank:       worse + 1,
			Value:      value,
			PeerMean:   sum / float64(len(peerValues)),
		}
	}
	return out
}
