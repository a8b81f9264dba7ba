package provider

import (
	"context"
	"strconv"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/census"
)

// DemographicsData is the ACS payload for one tract: the raw variable map
// plus the derived rates scoring consumes. Derived rates are nil when their
// denominator is zero; a rate is never fabricated as zero.
type DemographicsData struct {
	TractFIPS string            `json:"tract_fips"`
	Raw       map[string]string `json:"raw_acs"`
	Computed  ComputedDemographics `json:"computed_metrics"`
}

// ComputedDemographics holds the derived demographic metrics.
type ComputedDemographics struct {
	Population            *float64 `json:"population,omitempty"`
	MedianHouseholdIncome *float64 `json:"median_household_income,omitempty"`
	TotalHousingUnits     *float64 `json:"total_housing_units,omitempty"`
	OccupiedHousingUnits  *float64 `json:"occupied_housing_units,omitempty"`
	OwnershipRate         *float64 `json:"ownership_rate,omitempty"`
	RentalRate            *float64 `json:"rental_rate,omitempty"`
	VacancyRate           *float64 `json:"vacancy_rate,omitempty"`
	MedianHomeValue       *float64 `json:"median_home_value,omitempty"`
	MedianGrossRent       *float64 `json:"median_gross_rent,omitempty"`
	UnemploymentRate      *float64 `json:"unemployment_rate,omitempty"`
	BachelorPlusRate      *float64 `json:"bachelor_plus_rate,omitempty"`
	PriceToIncomeRatio    *float64 `json:"price_to_income_ratio,omitempty"`
	RentToIncomeRatio     *float64 `json:"rent_to_income_ratio,omitempty"`
}

// Demographics fetches ACS tract data and derives demographic rates.
type Demographics struct {
	client     census.Client
	limiter    *Limiter
	configured bool
}

// NewDemographics builds the demographics adapter.
func NewDemographics(client census.Client, limiter *Limiter, configured bool) *Demographics {
	return &Demographics{client: client, limiter: limiter, configured: configured}
}

func (d *Demographics) Name() string { return model.SourceDemographics }

func (d *Demographics) Fetch(ctx context.Context, geo *model.Geography) metric.Envelope {
	if !d.configured {
		return metric.Missing(model.SourceDemographics, "census not configured")
	}
	if geo.Hierarchy == nil || geo.Hierarchy.Tract == nil {
		return metric.Missing(model.SourceDemographics, "no census tract resolved for location")
	}
	tract := geo.Hierarchy.Tract

	if err := d.limiter.Acquire(ctx, "census"); err != nil {
		return metric.Missing(model.SourceDemographics, err.Error())
	}
	raw, err := d.client.ACS5(ctx, tract.State, tract.County, tract.Tract)
	if err != nil {
		return metric.Missing(model.SourceDemographics, err.Error())
	}

	data := &DemographicsData{
		TractFIPS: tract.State + tract.County + tract.Tract,
		Raw:       raw,
		Computed:  deriveDemographics(raw),
	}
	return metric.Good(model.SourceDemographics, data)
}

func deriveDemographics(raw map[string]string) ComputedDemographics {
	get := func(code string) *float64 {
		s, ok := raw[code]
		if !ok || s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			// ACS encodes suppressed values as large negatives.
			return nil
		}
		return &v
	}

	c := ComputedDemographics{
		Population:            get("B01003_001E"),
		MedianHouseholdIncome: get("B19013_001E"),
		TotalHousingUnits:     get("B25001_001E"),
		OccupiedHousingUnits:  get("B25003_001E"),
		MedianHomeValue:       get("B25077_001E"),
		MedianGrossRent:       get("B25064_001E"),
	}

	ownerOccupied := get("B25003_002E")
	renterOccupied := get("B25003_003E")
	laborForce := get("B23025_002E")
	unemployed := get("B23025_005E")
	bachelorPlus := get("B15003_022E")
	eduUniverse := get("B15003_001E")

	c.OwnershipRate = ratio(ownerOccupied, c.OccupiedHousingUnits, 100)
	c.RentalRate = ratio(renterOccupied, c.OccupiedHousingUnits, 100)
	if c.TotalHousingUnits != nil && c.OccupiedHousingUnits != nil && *c.TotalHousingUnits > 0 {
		vacant := *c.TotalHousingUnits - *c.OccupiedHousingUnits
		v := vacant / *c.TotalHousingUnits * 100
		c.VacancyRate = &v
	}
	c.UnemploymentRate = ratio(unemployed, laborForce, 100)
	c.BachelorPlusRate = ratio(bachelorPlus, eduUniverse, 100)
	c.PriceToIncomeRatio = ratio(c.MedianHomeValue, c.MedianHouseholdIncome, 1)
	if c.MedianGrossRent != nil && c.MedianHouseholdIncome != nil && *c.MedianHouseholdIncome > 0 {
		r := *c.MedianGrossRent * 12 / *c.MedianHouseholdIncome
		c.RentToIncomeRatio = &r
	}

	return c
}

// ratio returns num/den*scale, or nil when either side is absent or the
// denominator is zero.
func ratio(num, den *float64, scale float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den * scale
	return &v
}
