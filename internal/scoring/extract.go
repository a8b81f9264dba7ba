package scoring

import (
	"github.com/sells-group/market-pulse/internal/housing"
	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/internal/provider"
)

// extractMetrics pulls the scoreable metrics out of a raw bundle and applies
// confidence/recency adjustment to each. Metrics from unusable envelopes are
// simply not extracted; absence flows through ranking as a nil percentile.
func extractMetrics(b *model.RawBundle, adj *metric.Adjuster) map[string]metric.AdjustedMetric {
	out := make(map[string]metric.AdjustedMetric)

	if b.Housing.Usable() {
		if hm, ok := b.Housing.Value.(*housing.Metrics); ok {
			env := b.Housing
			add := func(name string, v *float64) {
				out[name] = adj.Adjust(v, env.Confidence, env.RetrievedAt)
			}
			add(MetricZHVI1YGrowth, hm.ZHVI1YGrowth)
			add(MetricZHVI3YCAGR, hm.ZHVI3YCAGR)
			add(MetricCurrentZHVI, hm.CurrentZHVI)
			add(MetricZORI1YGrowth, hm.ZORI1YGrowth)
			add(MetricDaysOnMarket, hm.DaysOnMarket)
			add(MetricMarketTemperature, hm.MarketTemperature)
		}
	}

	if b.Demographics.Usable() {
		if dd, ok := b.Demographics.Value.(*provider.DemographicsData); ok {
			env := b.Demographics
			c := dd.Computed
			add := func(name string, v *float64) {
				out[name] = adj.Adjust(v, env.Confidence, env.RetrievedAt)
			}
			add(MetricPopulation, c.Population)
			add(MetricMedianIncome, c.MedianHouseholdIncome)
			add(MetricBachelorPlus, c.BachelorPlusRate)
			add(MetricRentalRate, c.RentalRate)
			add(MetricPriceToIncome, c.PriceToIncomeRatio)
			add(MetricRentToIncome, c.RentToIncomeRatio)

			// Census unemployment is the fallback when BLS coverage is absent.
			add(MetricUnemploymentRate, c.UnemploymentRate)
		}
	}

	if b.Employment.Usable() {
		if ed, ok := b.Employment.Value.(*provider.EmploymentData); ok && ed.CurrentUnemploymentRate != nil {
			out[MetricUnemploymentRate] = adj.Adjust(
				ed.CurrentUnemploymentRate, b.Employment.Confidence, b.Employment.RetrievedAt)
		}
	}

	if b.Amenities.Usable() {
		if ad, ok := b.Amenities.Value.(*provider.AmenitiesData); ok {
			density := ad.DensityScore
			out[MetricAmenityDensity] = adj.Adjust(
				&density, b.Amenities.Confidence, b.Amenities.RetrievedAt)
		}
	}

	return out
}
