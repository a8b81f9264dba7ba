package provider

import (
	"context"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/openweather"
)

// WeatherData is the current-conditions payload.
type WeatherData struct {
	CurrentTemperature float64 `json:"current_temperature"`
	Conditions         string  `json:"conditions,omitempty"`
	Humidity           int     `json:"humidity"`
}

// Weather fetches current conditions for the location's coordinates.
type Weather struct {
	client     openweather.Client
	limiter    *Limiter
	configured bool
}

// NewWeather builds the weather adapter.
func NewWeather(client openweather.Client, limiter *Limiter, configured bool) *Weather {
	return &Weather{client: client, limiter: limiter, configured: configured}
}

func (w *Weather) Name() string { return model.SourceWeather }

func (w *Weather) Fetch(ctx context.Context, geo *model.Geography) metric.Envelope {
	if !w.configured {
		return metric.Missing(model.SourceWeather, "weather not configured")
	}
	if geo.Coordinates == nil {
		return metric.Missing(model.SourceWeather, "no coordinates for location")
	}

	if err := w.limiter.Acquire(ctx, "weather"); err != nil {
		return metric.Missing(model.SourceWeather, err.Error())
	}
	resp, err := w.client.Current(ctx, geo.Coordinates.Lat, geo.Coordinates.Lng)
	if err != nil {
		return metric.Missing(model.SourceWeather, err.Error())
	}
	if resp.Main == nil {
		return metric.Missing(model.SourceWeather, "invalid weather response")
	}

	data := &WeatherData{
		CurrentTemperature: resp.Main.Temp,
		Humidity:           resp.Main.Humidity,
	}
	if len(resp.Weather) > 0 {
		data.Conditions = resp.Weather[0].Description
	}
	return metric.Good(model.SourceWeather, data)
}
