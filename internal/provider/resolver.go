package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/census"
	"github.com/sells-group/market-pulse/pkg/googlemaps"
)

// Resolver turns a free-text location into the run's geography context:
// geocoded coordinates plus the administrative hierarchy around them.
//
// Unlike the fan-out providers, geocoding failure is fatal to the run; the
// analyzer aborts before any other provider is called. Hierarchy lookup
// failure only degrades the envelope to partial.
type Resolver struct {
	maps       googlemaps.Client
	census     census.Client
	limiter    *Limiter
	configured bool
}

// NewResolver wires the geocoding and geography clients. configured reports
// whether a Google credential is present.
func NewResolver(maps googlemaps.Client, cen census.Client, limiter *Limiter, configured bool) *Resolver {
	return &Resolver{maps: maps, census: cen, limiter: limiter, configured: configured}
}

// Resolve geocodes the location and attaches the census hierarchy. A nil
// geography means the run cannot proceed; the envelope carries the reason.
func (r *Resolver) Resolve(ctx context.Context, location string) (*model.Geography, metric.Envelope) {
	if !r.configured {
		return nil, metric.Missing(model.SourceGeography, "google geocoding not configured")
	}

	if err := r.limiter.Acquire(ctx, "google"); err != nil {
		return nil, metric.Missing(model.SourceGeography, err.Error())
	}
	resp, err := r.maps.Geocode(ctx, location)
	if err != nil {
		return nil, metric.Missing(model.SourceGeography, err.Error())
	}
	if resp.Status != googlemaps.StatusOK || len(resp.Results) == 0 {
		return nil, metric.Missing(model.SourceGeography,
			fmt.Sprintf("geocoding returned status %s", resp.Status))
	}

	best := resp.Results[0]
	geo := &model.Geography{
		Query:     location,
		Formatted: best.FormattedAddress,
		PlaceID:   best.PlaceID,
		Coordinates: &model.Coordinates{
			Lat: best.Geometry.Location.Lat,
			Lng: best.Geometry.Location.Lng,
		},
	}

	hierarchy, herr := r.lookupHierarchy(ctx, geo.Coordinates.Lat, geo.Coordinates.Lng)
	if herr != nil {
		zap.L().Warn("geography hierarchy lookup failed",
			zap.String("location", location), zap.Error(herr))
		return geo, metric.Partial(model.SourceGeography, geo,
			"coordinates resolved but census hierarchy unavailable: "+herr.Error())
	}
	geo.Hierarchy = hierarchy

	return geo, metric.Good(model.SourceGeography, geo)
}

func (r *Resolver) lookupHierarchy(ctx context.Context, lat, lng float64) (*model.Hierarchy, error) {
	if err := r.limiter.Acquire(ctx, "census"); err != nil {
		return nil, err
	}
	resp, err := r.census.GeographyForCoordinates(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	h := &model.Hierarchy{
		Tract:      firstUnit(resp, census.LayerTracts),
		BlockGroup: firstUnit(resp, census.LayerBlockGroups),
		County:     firstUnit(resp, census.LayerCounties),
		State:      firstUnit(resp, census.LayerStates),
		Place:      firstUnit(resp, census.LayerPlaces),
		ZCTA:       firstUnit(resp, census.LayerZCTAs),
	}
	return h, nil
}

func firstUnit(resp *census.GeographyResponse, layer string) *model.GeoUnit {
	layers := resp.Result.Geographies[layer]
	if len(layers) == 0 {
		return nil
	}
	l := layers[0]
	return &model.GeoUnit{
		GEOID:  l.GEOID,
		Name:   l.Name,
		State:  l.State,
		County: l.County,
		Tract:  l.Tract,
	}
}

// StateAbbrev extracts a two-letter state code from a formatted address like
// "Denver, CO 80202, USA". Empty when no component matches.
func StateAbbrev(formatted string) string {
	for _, part := range strings.Split(formatted, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		for _, f := range fields {
			if len(f) == 2 && f != "US" &&
				f[0] >= 'A' && f[0] <= 'Z' && f[1] >= 'A' && f[1] <= 'Z' {
				return f
			}
		}
	}
	return ""
}
