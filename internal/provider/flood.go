package provider

import (
	"context"
	"strings"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/fema"
)

// FloodData summarizes declared disaster history for the location's state,
// used as a flood-risk proxy. The data is always tagged partial: it describes
// the state, not the parcel.
type FloodData struct {
	State           string   `json:"state"`
	DisasterCount   int      `json:"disaster_count"`
	FloodRelated    int      `json:"flood_related_count"`
	RecentIncidents []string `json:"recent_incident_types,omitempty"`
}

// Flood fetches FEMA disaster history for the location's state.
type Flood struct {
	client  fema.Client
	limiter *Limiter
}

// NewFlood builds the flood adapter. FEMA open data needs no credential.
func NewFlood(client fema.Client, limiter *Limiter) *Flood {
	return &Flood{client: client, limiter: limiter}
}

func (f *Flood) Name() string { return model.SourceFlood }

func (f *Flood) Fetch(ctx context.Context, geo *model.Geography) metric.Envelope {
	// FEMA filters on the two-letter state code.
	state := StateAbbrev(geo.Formatted)
	if state == "" && geo.Hierarchy != nil && geo.Hierarchy.State != nil {
		state = geo.Hierarchy.State.Name
	}
	if state == "" {
		return metric.Missing(model.SourceFlood, "no state resolved for location")
	}

	if err := f.limiter.Acquire(ctx, "flood"); err != nil {
		return metric.Missing(model.SourceFlood, err.Error())
	}
	resp, err := f.client.DisasterSummaries(ctx, state)
	if err != nil {
		return metric.Missing(model.SourceFlood, err.Error())
	}

	data := &FloodData{State: state, DisasterCount: len(resp.DisasterSummaries)}
	for _, d := range resp.DisasterSummaries {
		if strings.Contains(strings.ToLower(d.IncidentType), "flood") {
			data.FloodRelated++
		}
		if len(data.RecentIncidents) < 10 {
			data.RecentIncidents = append(data.RecentIncidents, d.IncidentType)
		}
	}

	return metric.Partial(model.SourceFlood, data,
		"using FEMA disaster history as flood risk proxy")
}
