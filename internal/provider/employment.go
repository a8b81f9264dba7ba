package provider

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/bls"
)

// metroCentroid anchors a major metro's LAUS area code to its center point.
type metroCentroid struct {
	Name string
	Lat  float64
	Lng  float64
	Code string
}

// Major metro coverage for local-area unemployment lookups. Matching is
// nearest-neighbor in raw degree space; anything farther than
// metroMatchThreshold degrees from every centroid is uncovered.
var metroCentroids = []metroCentroid{
	{"New York", 40.7128, -74.0060, "35620"},
	{"Boston", 42.3601, -71.0589, "14460"},
	{"Philadelphia", 39.9526, -75.1652, "37980"},
	{"Atlanta", 33.7490, -84.3880, "12060"},
	{"Chicago", 41.8781, -87.6298, "16980"},
	{"Dallas", 32.7767, -96.7970, "19100"},
	{"Los Angeles", 34.0522, -118.2437, "31080"},
	{"San Francisco", 37.7749, -122.4194, "41860"},
	{"Seattle", 47.6062, -122.3321, "42660"},
	{"Denver", 39.7392, -104.9903, "19740"},
}

const metroMatchThreshold = 2.0

// EmploymentPoint is one monthly unemployment observation.
type EmploymentPoint struct {
	Year   string  `json:"year"`
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Date   string  `json:"date"`
}

// EmploymentData is the unemployment payload for a matched metro area.
type EmploymentData struct {
	AreaCode                string            `json:"area_code"`
	MetroName               string            `json:"metro_name"`
	SeriesID                string            `json:"series_id"`
	CurrentUnemploymentRate *float64          `json:"current_unemployment_rate,omitempty"`
	TimeSeries              []EmploymentPoint `json:"time_series"`
}

// Employment fetches metro-level unemployment from the BLS LAUS series.
type Employment struct {
	client     bls.Client
	limiter    *Limiter
	clock      clockwork.Clock
	configured bool
}

// NewEmployment builds the employment adapter.
func NewEmployment(client bls.Client, limiter *Limiter, configured bool) *Employment {
	return &Employment{client: client, limiter: limiter, clock: clockwork.NewRealClock(), configured: configured}
}

// NewEmploymentWithClock is NewEmployment with an injected clock for tests.
func NewEmploymentWithClock(client bls.Client, limiter *Limiter, configured bool, clock clockwork.Clock) *Employment {
	return &Employment{client: client, limiter: limiter, clock: clock, configured: configured}
}

func (e *Employment) Name() string { return model.SourceEmployment }

func (e *Employment) Fetch(ctx context.Context, geo *model.Geography) metric.Envelope {
	if !e.configured {
		return metric.Missing(model.SourceEmployment, "bls not configured")
	}
	if geo.Coordinates == nil {
		return metric.Missing(model.SourceEmployment, "no coordinates for location")
	}

	metro, ok := nearestMetro(geo.Coordinates.Lat, geo.Coordinates.Lng)
	if !ok {
		return metric.Partial(model.SourceEmployment, nil,
			"location not covered by major metro employment data")
	}

	seriesID := fmt.Sprintf("LAUMT%s000000003", metro.Code)
	year := e.clock.Now().UTC().Year()

	if err := e.limiter.Acquire(ctx, "bls"); err != nil {
		return metric.Missing(model.SourceEmployment, err.Error())
	}
	resp, err := e.client.TimeSeries(ctx, seriesID, year-3, year)
	if err != nil {
		return metric.Missing(model.SourceEmployment, err.Error())
	}
	if resp.Status != bls.StatusSucceeded || len(resp.Results.Series) == 0 {
		msg := "bls request failed"
		if len(resp.Message) > 0 {
			msg = resp.Message[0]
		}
		return metric.Missing(model.SourceEmployment, msg)
	}

	// Observations arrive most recent first; keep the trailing year.
	obs := resp.Results.Series[0].Data
	if len(obs) > 12 {
		obs = obs[:12]
	}

	data := &EmploymentData{
		AreaCode:  metro.Code,
		MetroName: metro.Name,
		SeriesID:  seriesID,
	}
	for _, o := range obs {
		v, perr := strconv.ParseFloat(o.Value, 64)
		if perr != nil {
			continue
		}
		data.TimeSeries = append(data.TimeSeries, EmploymentPoint{
			Year:   o.Year,
			Period: o.Period,
			Value:  v,
			Date:   observationDate(o),
		})
	}
	if len(data.TimeSeries) > 0 {
		data.CurrentUnemploymentRate = &data.TimeSeries[0].Value
	}

	return metric.Good(model.SourceEmployment, data)
}

func nearestMetro(lat, lng float64) (metroCentroid, bool) {
	var best metroCentroid
	minDist := math.Inf(1)
	found := false
	for _, m := range metroCentroids {
		d := math.Hypot(lat-m.Lat, lng-m.Lng)
		if d < minDist && d < metroMatchThreshold {
			minDist = d
			best = m
			found = true
		}
	}
	return best, found
}

func observationDate(o bls.Observation) string {
	month := strings.TrimPrefix(o.Period, "M")
	if len(month) == 1 {
		month = "0" + month
	}
	return fmt.Sprintf("%s-%s-01", o.Year, month)
}
