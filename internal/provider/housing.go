package provider

import (
	"context"
	"fmt"

	"github.com/sells-group/market-pulse/internal/housing"
	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
)

// Housing serves pre-loaded regional index metrics. It performs no network
// calls; failure means the location could not be matched to a loaded region.
type Housing struct {
	dataset *housing.Dataset
}

// NewHousing builds the housing adapter over a loaded dataset. A nil dataset
// means the index files were unavailable at startup.
func NewHousing(dataset *housing.Dataset) *Housing {
	return &Housing{dataset: dataset}
}

func (h *Housing) Name() string { return model.SourceHousing }

func (h *Housing) Fetch(_ context.Context, geo *model.Geography) metric.Envelope {
	if h.dataset == nil {
		return metric.Missing(model.SourceHousing, "housing index dataset not loaded")
	}

	region, ok := h.dataset.Resolve(geo.Query)
	if !ok && geo.Formatted != "" {
		region, ok = h.dataset.Resolve(geo.Formatted)
	}
	if !ok {
		return metric.Missing(model.SourceHousing,
			fmt.Sprintf("no housing index region matches %q", geo.Query))
	}

	return metric.Good(model.SourceHousing, region.Metrics())
}
