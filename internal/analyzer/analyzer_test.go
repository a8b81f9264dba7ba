package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-pulse/internal/housing"
	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/internal/provider"
	"github.com/sells-group/market-pulse/internal/scoring"
	"github.com/sells-group/market-pulse/internal/store"
)

type fakeResolver struct {
	geo *model.Geography
	env metric.Envelope
}

func (r *fakeResolver) Resolve(_ context.Context, _ string) (*model.Geography, metric.Envelope) {
	return r.geo, r.env
}

type fakeProvider struct {
	name  string
	env   metric.Envelope
	calls atomic.Int32
	block bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Fetch(ctx context.Context, _ *model.Geography) metric.Envelope {
	p.calls.Add(1)
	if p.block {
		<-ctx.Done()
		return metric.Missing(p.name, ctx.Err().Error())
	}
	return p.env
}

type fakeRegions struct {
	names []string
}

func (r *fakeRegions) Regions() []string { return r.names }

func denverGeo() *model.Geography {
	return &model.Geography{
		Query:       "Denver, CO",
		Formatted:   "Denver, CO, USA",
		Coordinates: &model.Coordinates{Lat: 39.7392, Lng: -104.9903},
		Hierarchy: &model.Hierarchy{
			State: &model.GeoUnit{Name: "Colorado", State: "08"},
		},
	}
}

func newTestAnalyzer(t *testing.T, resolver GeoResolver, providers []provider.Provider, regions RegionLister) (*Analyzer, store.Store, string) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	outDir := t.TempDir()
	a := New(Params{
		Resolver:     resolver,
		Providers:    providers,
		Engine:       scoring.NewEngine(scoring.NewSyntheticPeers(1, 50), scoring.DefaultWeights()),
		Store:        st,
		Writer:       NewSnapshotWriter(outDir),
		Regions:      regions,
		Configured:   map[string]bool{"google": true},
		FetchTimeout: 5 * time.Second,
	})
	return a, st, outDir
}

func TestAnalyzeHappyPath(t *testing.T) {
	resolver := &fakeResolver{geo: denverGeo(), env: metric.Good(model.SourceGeography, denverGeo())}
	housingProvider := &fakeProvider{
		name: model.SourceHousing,
		env: metric.Good(model.SourceHousing, &housing.Metrics{
			MetroName:    "Denver, CO",
			ZHVI1YGrowth: metric.Float64(12.0),
			DaysOnMarket: metric.Float64(30),
		}),
	}
	weatherProvider := &fakeProvider{
		name: model.SourceWeather,
		env:  metric.Good(model.SourceWeather, &provider.WeatherData{CurrentTemperature: 72}),
	}

	a, st, outDir := newTestAnalyzer(t, resolver, []provider.Provider{housingProvider, weatherProvider}, nil)

	result, err := a.Analyze(context.Background(), model.LocationQuery{Location: "Denver, CO"})
	require.NoError(t, err)
	assert.Empty(t, result.Error)
	assert.Equal(t, model.ModePoint, result.Meta.Mode)
	assert.Equal(t, "denver_co", result.Meta.Slug)
	assert.EqualValues(t, 1, housingProvider.calls.Load())

	score, ok := result.InvestmentScore.(*scoring.InvestmentScore)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score.FinalScore, 0)
	assert.LessOrEqual(t, score.FinalScore, 100)
	assert.NotEmpty(t, score.Band)

	// Run record reflects the scored outcome.
	run, err := st.GetRun(context.Background(), "denver_co")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, score.FinalScore, run.FinalScore)
	assert.Equal(t, score.Band, run.Band)
	assert.NotEmpty(t, run.Snapshot)

	// Snapshot on disk round-trips the final score and band.
	data, err := os.ReadFile(filepath.Join(outDir, "denver_co", "denver_co_analysis.json"))
	require.NoError(t, err)
	var snap struct {
		InvestmentScore struct {
			FinalScore int    `json:"final_score"`
			Band       string `json:"band"`
		} `json:"investment_score"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, score.FinalScore, snap.InvestmentScore.FinalScore)
	assert.Equal(t, score.Band, snap.InvestmentScore.Band)

	// Summary is written alongside the snapshot.
	data, err = os.ReadFile(filepath.Join(outDir, "denver_co", "denver_co_summary.json"))
	require.NoError(t, err)
	var summary model.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, score.FinalScore, summary.FinalScore)
	assert.Equal(t, 12.0, summary.KeyMetrics["zhvi_1y_growth"])
}

func TestAnalyzeAbortsWhenLocationUnresolvable(t *testing.T) {
	resolver := &fakeResolver{env: metric.Missing(model.SourceGeography, "geocoding returned status ZERO_RESULTS")}
	p := &fakeProvider{name: model.SourceWeather, env: metric.Good(model.SourceWeather, nil)}

	a, st, outDir := newTestAnalyzer(t, resolver, []provider.Provider{p}, nil)

	result, err := a.Analyze(context.Background(), model.LocationQuery{Location: "Atlantis"})
	require.NoError(t, err)
	assert.Equal(t, "geocoding returned status ZERO_RESULTS", result.Error)
	assert.EqualValues(t, 0, p.calls.Load(), "providers must not run for an unresolvable location")

	// Every provider slot is stamped missing, never left blank.
	for _, source := range model.BundleSources {
		env := result.RawData.Envelope(source)
		assert.Equal(t, metric.ConfidenceMissing, env.Confidence, source)
	}

	run, err := st.GetRun(context.Background(), "atlantis")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Equal(t, "geocoding returned status ZERO_RESULTS", run.Error)

	// The error snapshot is still written.
	_, err = os.Stat(filepath.Join(outDir, "atlantis", "atlantis_analysis.json"))
	assert.NoError(t, err)
}

func TestAnalyzeStampsUnwiredProviders(t *testing.T) {
	resolver := &fakeResolver{geo: denverGeo(), env: metric.Good(model.SourceGeography, denverGeo())}
	a, _, _ := newTestAnalyzer(t, resolver, nil, nil)

	result, err := a.Analyze(context.Background(), model.LocationQuery{Location: "Denver, CO"})
	require.NoError(t, err)

	env := result.RawData.Envelope(model.SourceDemographics)
	assert.Equal(t, metric.ConfidenceMissing, env.Confidence)
	assert.Equal(t, "provider not wired", env.Err)
}

func TestAnalyzeProviderTimeout(t *testing.T) {
	resolver := &fakeResolver{geo: denverGeo(), env: metric.Good(model.SourceGeography, denverGeo())}
	blocked := &fakeProvider{name: model.SourceNews, block: true}

	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	a := New(Params{
		Resolver:     resolver,
		Providers:    []provider.Provider{blocked},
		Engine:       scoring.NewEngine(scoring.NewSyntheticPeers(1, 50), scoring.DefaultWeights()),
		Store:        st,
		Writer:       NewSnapshotWriter(t.TempDir()),
		FetchTimeout: 20 * time.Millisecond,
	})

	done := make(chan struct{})
	var result *model.AnalysisResult
	go func() {
		defer close(done)
		result, err = a.Analyze(context.Background(), model.LocationQuery{Location: "Denver, CO"})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fan-out did not respect the fetch timeout")
	}
	require.NoError(t, err)
	assert.Equal(t, metric.ConfidenceMissing, result.RawData.News.Confidence)
}

func TestAnalyzeRegionMode(t *testing.T) {
	resolver := &fakeResolver{geo: denverGeo(), env: metric.Good(model.SourceGeography, denverGeo())}
	regions := &fakeRegions{names: []string{
		"Denver, CO", "Colorado Springs, CO", "Austin, TX", "Boulder, CO", "Fort Collins, CO",
	}}

	a, _, _ := newTestAnalyzer(t, resolver, nil, regions)

	result, err := a.Analyze(context.Background(), model.LocationQuery{
		Location: "Denver, CO", Mode: model.ModeRegion, TopN: 3,
	})
	require.NoError(t, err)

	require.Len(t, result.RegionCandidates, 3)
	assert.Equal(t, "Denver, CO", result.RegionCandidates[0].Name)
	assert.Equal(t, "Colorado Springs, CO", result.RegionCandidates[1].Name)
	for _, c := range result.RegionCandidates {
		assert.Equal(t, metric.ConfidenceInterpolated, c.Confidence)
	}
}

func TestAnalyzePointModeSkipsCandidates(t *testing.T) {
	resolver := &fakeResolver{geo: denverGeo(), env: metric.Good(model.SourceGeography, denverGeo())}
	regions := &fakeRegions{names: []string{"Denver, CO"}}

	a, _, _ := newTestAnalyzer(t, resolver, nil, regions)

	result, err := a.Analyze(context.Background(), model.LocationQuery{Location: "Denver, CO"})
	require.NoError(t, err)
	assert.Empty(t, result.RegionCandidates)
}

func TestRegionInState(t *testing.T) {
	assert.True(t, regionInState("Denver, CO", "CO"))
	assert.False(t, regionInState("Austin, TX", "CO"))
	assert.False(t, regionInState("CO", "CO"))
}
