// Package model holds the core data types shared across the analysis
// pipeline: location queries, resolved geography, raw provider bundles, and
// persisted run records.
package model

import (
	"github.com/twpayne/go-geom"
)

// Mode selects between analyzing a single place and surveying a region.
type Mode string

const (
	ModePoint  Mode = "point"
	ModeRegion Mode = "region"
)

// LocationQuery is the input to a single analysis run.
type LocationQuery struct {
	Location string `json:"location"`
	Mode     Mode   `json:"mode"`
	TopN     int    `json:"top_n,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coord returns the point as a go-geom coordinate (x=lng, y=lat).
func (c Coordinates) Coord() geom.Coord {
	return geom.Coord{c.Lng, c.Lat}
}

// GeoUnit is a single administrative unit from the geography hierarchy.
type GeoUnit struct {
	GEOID string `json:"geoid,omitempty"`
	Name  string `json:"name,omitempty"`
	State string `json:"state,omitempty"`
	// County and Tract carry the FIPS components needed to key ACS lookups.
	County string `json:"county,omitempty"`
	Tract  string `json:"tract,omitempty"`
}

// Hierarchy is the nested administrative context around a coordinate, used
// purely as lookup keys for downstream providers.
type Hierarchy struct {
	Tract      *GeoUnit `json:"tract,omitempty"`
	BlockGroup *GeoUnit `json:"block_group,omitempty"`
	County     *GeoUnit `json:"county,omitempty"`
	State      *GeoUnit `json:"state,omitempty"`
	Place      *GeoUnit `json:"place,omitempty"`
	ZCTA       *GeoUnit `json:"zcta,omitempty"`
}

// Geography is the resolved location context for one run. Created once after
// geocoding succeeds and immutable thereafter; the run aborts if coordinates
// cannot be resolved.
type Geography struct {
	Query       string       `json:"query"`
	Formatted   string       `json:"formatted_address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	PlaceID     string       `json:"place_id,omitempty"`
	Hierarchy   *Hierarchy   `json:"hierarchy,omitempty"`
}
