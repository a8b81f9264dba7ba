// Package provider contains the data-source adapters the analyzer fans out
// to. Every adapter implements the same contract: it never panics, never
// returns a Go error, and reports all failure modes through the confidence
// tag of the envelope it produces.
package provider

import (
	"context"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
)

// Provider is one external data source in the fan-out stage.
type Provider interface {
	// Name returns the bundle source key this provider fills.
	Name() string
	// Fetch acquires the provider's data for a resolved location. A failure
	// of any kind yields a missing-confidence envelope, never an error.
	Fetch(ctx context.Context, geo *model.Geography) metric.Envelope
}
