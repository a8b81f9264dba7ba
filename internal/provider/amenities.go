package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/googlemaps"
)

// AmenityTypes are the place categories surveyed around every location.
var AmenityTypes = []string{
	"restaurant",
	"grocery_or_supermarket",
	"hospital",
	"school",
	"park",
	"gym",
}

// AmenityCount is the per-category tally.
type AmenityCount struct {
	Count  int    `json:"count"`
	Status string `json:"status"`
}

// AmenityPlace is one nearby place, kept for the closest few per run.
type AmenityPlace struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Vicinity string  `json:"vicinity,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Distance float64 `json:"distance_deg"`
}

// AmenitiesData is the amenity survey payload: full per-category counts plus
// the ten closest places across all categories.
type AmenitiesData struct {
	RadiusMeters int                     `json:"radius_meters"`
	Counts       map[string]AmenityCount `json:"amenity_counts"`
	TotalCount   int                     `json:"total_count"`
	DensityScore float64                 `json:"amenity_density_score"`
	Closest      []AmenityPlace          `json:"closest_places,omitempty"`
}

// Amenities surveys nearby places per category. Category failures are
// isolated: one failed category degrades confidence to partial rather than
// losing the survey.
type Amenities struct {
	client     googlemaps.Client
	limiter    *Limiter
	radius     int
	configured bool
}

// NewAmenities builds the amenities adapter.
func NewAmenities(client googlemaps.Client, limiter *Limiter, radius int, configured bool) *Amenities {
	return &Amenities{client: client, limiter: limiter, radius: radius, configured: configured}
}

func (a *Amenities) Name() string { return model.SourceAmenities }

func (a *Amenities) Fetch(ctx context.Context, geo *model.Geography) metric.Envelope {
	if !a.configured {
		return metric.Missing(model.SourceAmenities, "google places not configured")
	}
	if geo.Coordinates == nil {
		return metric.Missing(model.SourceAmenities, "no coordinates for location")
	}
	origin := geo.Coordinates.Coord()

	data := &AmenitiesData{
		RadiusMeters: a.radius,
		Counts:       make(map[string]AmenityCount, len(AmenityTypes)),
	}
	var places []AmenityPlace
	var failed []string

	for _, typ := range AmenityTypes {
		if err := a.limiter.Acquire(ctx, "google"); err != nil {
			return metric.Missing(model.SourceAmenities, err.Error())
		}
		resp, err := a.client.PlacesNearby(ctx, geo.Coordinates.Lat, geo.Coordinates.Lng, a.radius, typ)
		if err != nil {
			zap.L().Warn("amenity category lookup failed",
				zap.String("type", typ), zap.Error(err))
			data.Counts[typ] = AmenityCount{Status: "error"}
			failed = append(failed, typ)
			continue
		}

		data.Counts[typ] = AmenityCount{Count: len(resp.Results), Status: resp.Status}
		data.TotalCount += len(resp.Results)
		for _, p := range resp.Results {
			loc := geom.Coord{p.Geometry.Location.Lng, p.Geometry.Location.Lat}
			places = append(places, AmenityPlace{
				Name:     p.Name,
				Type:     typ,
				Vicinity: p.Vicinity,
				Rating:   p.Rating,
				Distance: xy.Distance(origin, loc),
			})
		}
	}

	if len(failed) == len(AmenityTypes) {
		return metric.Missing(model.SourceAmenities, "all amenity categories failed")
	}

	sort.Slice(places, func(i, j int) bool { return places[i].Distance < places[j].Distance })
	if len(places) > 10 {
		places = places[:10]
	}
	data.Closest = places
	data.DensityScore = float64(data.TotalCount)

	if len(failed) > 0 {
		return metric.Partial(model.SourceAmenities, data,
			fmt.Sprintf("categories failed: %s", strings.Join(failed, ", ")))
	}
	return metric.Good(model.SourceAmenities, data)
}
