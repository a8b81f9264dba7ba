package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/market-pulse/internal/config"
	"github.com/sells-group/market-pulse/internal/housing"
	"github.com/sells-group/market-pulse/internal/provider"
	"github.com/sells-group/market-pulse/internal/scoring"
	"github.com/sells-group/market-pulse/internal/store"
	"github.com/sells-group/market-pulse/pkg/bls"
	"github.com/sells-group/market-pulse/pkg/census"
	"github.com/sells-group/market-pulse/pkg/fema"
	"github.com/sells-group/market-pulse/pkg/gnews"
	"github.com/sells-group/market-pulse/pkg/googlemaps"
	"github.com/sells-group/market-pulse/pkg/openweather"
)

// FromConfig wires a complete Analyzer and its run store from configuration.
// The caller owns the returned store and must Close it.
func FromConfig(ctx context.Context, cfg *config.Config) (*Analyzer, store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	limiter := provider.NewLimiter(map[string]time.Duration{
		"google":  interval(cfg.Providers.Google.MinIntervalMS),
		"census":  interval(cfg.Providers.Census.MinIntervalMS),
		"bls":     interval(cfg.Providers.BLS.MinIntervalMS),
		"weather": interval(cfg.Providers.Weather.MinIntervalMS),
		"news":    interval(cfg.Providers.News.MinIntervalMS),
		"flood":   interval(cfg.Providers.Flood.MinIntervalMS),
	})

	maps := googlemaps.NewClient(cfg.Providers.Google.Key,
		googlemaps.WithBaseURL(cfg.Providers.Google.BaseURL))
	cen := census.NewClient(cfg.Providers.Census.Key,
		census.WithBaseURL(cfg.Providers.Census.BaseURL),
		census.WithGeoBaseURL(cfg.Providers.Census.GeoBaseURL))
	employment := bls.NewClient(cfg.Providers.BLS.Key,
		bls.WithBaseURL(cfg.Providers.BLS.BaseURL))
	weather := openweather.NewClient(cfg.Providers.Weather.Key,
		openweather.WithBaseURL(cfg.Providers.Weather.BaseURL))
	flood := fema.NewClient(fema.WithBaseURL(cfg.Providers.Flood.BaseURL))
	news := gnews.NewClient(cfg.Providers.News.Key, cfg.Providers.News.SearchID,
		gnews.WithBaseURL(cfg.Providers.News.BaseURL))

	configured := cfg.Providers.ConfiguredFlags()

	// The housing dataset is bulk-loaded from disk. A missing or empty data
	// directory degrades the provider rather than failing startup.
	dataset, err := housing.Load(cfg.Housing.DataDir)
	if err != nil {
		zap.L().Warn("housing dataset unavailable",
			zap.String("dir", cfg.Housing.DataDir), zap.Error(err))
		dataset = nil
	}

	providers := []provider.Provider{
		provider.NewDemographics(cen, limiter, configured["census"]),
		provider.NewEmployment(employment, limiter, configured["bls"]),
		provider.NewHousing(dataset),
		provider.NewAmenities(maps, limiter, cfg.Providers.Google.AmenityRadiusM, configured["google"]),
		provider.NewWeather(weather, limiter, configured["weather"]),
		provider.NewFlood(flood, limiter),
		provider.NewNews(news, limiter, configured["news"]),
	}

	weights := scoring.DefaultWeights()
	if cfg.Scoring.WeightsFile != "" {
		weights, err = scoring.LoadWeights(cfg.Scoring.WeightsFile)
		if err != nil {
			_ = st.Close()
			return nil, nil, err
		}
	}
	peers := scoring.NewSyntheticPeers(cfg.Scoring.PeerSeed, cfg.Scoring.PeerCount)

	var regions RegionLister
	if dataset != nil {
		regions = dataset
	}

	a := New(Params{
		Resolver:     provider.NewResolver(maps, cen, limiter, configured["google"]),
		Providers:    providers,
		Engine:       scoring.NewEngine(peers, weights),
		Store:        st,
		Writer:       NewSnapshotWriter(cfg.Output.Dir),
		Regions:      regions,
		Configured:   configured,
		FetchTimeout: time.Duration(cfg.Providers.FetchTimeoutSecs) * time.Second,
	})
	return a, st, nil
}

func interval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
