// Package analyzer orchestrates a full analysis run: resolve the location,
// fan out to every data provider, score the assembled bundle, grade data
// quality, and persist the result.
package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/internal/provider"
	"github.com/sells-group/market-pulse/internal/scoring"
	"github.com/sells-group/market-pulse/internal/store"
)

const defaultRegionCandidates = 5

// GeoResolver resolves a free-text location to the run's geography context.
type GeoResolver interface {
	Resolve(ctx context.Context, location string) (*model.Geography, metric.Envelope)
}

// RegionLister enumerates known market names for region-mode surveys.
type RegionLister interface {
	Regions() []string
}

// Params wires an Analyzer. Resolver, Engine, Store, and Writer are required;
// the rest have working defaults.
type Params struct {
	Resolver   GeoResolver
	Providers  []provider.Provider
	Engine     *scoring.Engine
	Store      store.Store
	Writer     *SnapshotWriter
	Regions    RegionLister
	Configured map[string]bool

	// FetchTimeout bounds each provider call during fan-out.
	FetchTimeout time.Duration
	Clock        clockwork.Clock
}

// Analyzer runs the full analysis pipeline for one location at a time.
type Analyzer struct {
	resolver     GeoResolver
	providers    []provider.Provider
	engine       *scoring.Engine
	store        store.Store
	writer       *SnapshotWriter
	regions      RegionLister
	configured   map[string]bool
	fetchTimeout time.Duration
	clock        clockwork.Clock
}

// New builds an Analyzer from its parts.
func New(p Params) *Analyzer {
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = 30 * time.Second
	}
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	return &Analyzer{
		resolver:     p.Resolver,
		providers:    p.Providers,
		engine:       p.Engine,
		store:        p.Store,
		writer:       p.Writer,
		regions:      p.Regions,
		configured:   p.Configured,
		fetchTimeout: p.FetchTimeout,
		clock:        p.Clock,
	}
}

// Analyze executes one run end to end. Provider failures degrade the result;
// only an unresolvable location or infrastructure failure (store, snapshot
// write) is treated as fatal. The returned result is always structurally
// complete, with the Error field set on aborted runs.
func (a *Analyzer) Analyze(ctx context.Context, query model.LocationQuery) (*model.AnalysisResult, error) {
	if query.Mode == "" {
		query.Mode = model.ModePoint
	}
	slug := model.Slug(query.Location)
	start := a.clock.Now().UTC()

	run, err := a.store.CreateRun(ctx, slug, query.Location)
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: create run")
	}

	result := &model.AnalysisResult{
		Meta: model.Meta{
			Query:               query.Location,
			Mode:                query.Mode,
			TopN:                query.TopN,
			Slug:                slug,
			CreatedAt:           start,
			ProvidersConfigured: a.configured,
		},
	}

	geo, geoEnv := a.resolver.Resolve(ctx, query.Location)
	result.RawData.GeographyEnv = geoEnv
	if geo == nil {
		return a.abort(ctx, run.ID, result, geoEnv.Err)
	}
	result.RawData.Geography = *geo

	a.fanOut(ctx, geo, &result.RawData)

	if query.Mode == model.ModeRegion {
		result.RegionCandidates = a.regionCandidates(geo, query.TopN)
	}

	score := a.engine.Score(&result.RawData)
	quality := scoring.AssessQuality(&result.RawData)
	result.InvestmentScore = score
	result.ProcessedMetrics = score.AdjustedMetrics
	result.DataQuality = quality
	result.Meta.ProcessingMS = a.clock.Now().UTC().Sub(start).Milliseconds()

	snapshot, err := a.writer.Write(slug, result, summarize(result, score, quality))
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: write snapshot")
	}

	if err := a.store.CompleteRun(ctx, run.ID, score.FinalScore, score.Band, quality.OverallScore, snapshot); err != nil {
		return nil, eris.Wrap(err, "analyzer: complete run")
	}

	zap.L().Info("analysis complete",
		zap.String("slug", slug),
		zap.Int("score", score.FinalScore),
		zap.String("band", score.Band),
		zap.Int("quality", quality.OverallScore),
		zap.Int64("processing_ms", result.Meta.ProcessingMS))

	return result, nil
}

// abort finalizes a run whose location could not be resolved. Every provider
// slot is stamped missing so the snapshot stays structurally complete.
func (a *Analyzer) abort(ctx context.Context, runID string, result *model.AnalysisResult, reason string) (*model.AnalysisResult, error) {
	if reason == "" {
		reason = "location could not be resolved"
	}
	result.Error = reason
	for _, source := range model.BundleSources {
		if source == model.SourceGeography {
			continue
		}
		result.RawData.SetEnvelope(source, metric.Missing(source, "aborted: "+reason))
	}
	result.Meta.ProcessingMS = a.clock.Now().UTC().Sub(result.Meta.CreatedAt).Milliseconds()

	if _, err := a.writer.Write(result.Meta.Slug, result, nil); err != nil {
		return nil, eris.Wrap(err, "analyzer: write snapshot")
	}
	if err := a.store.FailRun(ctx, runID, reason); err != nil {
		return nil, eris.Wrap(err, "analyzer: fail run")
	}

	zap.L().Warn("analysis aborted",
		zap.String("slug", result.Meta.Slug), zap.String("reason", reason))

	return result, nil
}

// fanOut runs every provider concurrently, each under its own timeout.
// Providers report failures through their envelopes, so the group never
// returns an error.
func (a *Analyzer) fanOut(ctx context.Context, geo *model.Geography, bundle *model.RawBundle) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, p := range a.providers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, a.fetchTimeout)
			defer cancel()

			env := p.Fetch(fctx, geo)

			mu.Lock()
			bundle.SetEnvelope(p.Name(), env)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Providers that were never wired still get an explicit missing envelope.
	filled := make(map[string]bool, len(a.providers))
	for _, p := range a.providers {
		filled[p.Name()] = true
	}
	for _, source := range model.BundleSources {
		if source == model.SourceGeography || filled[source] {
			continue
		}
		bundle.SetEnvelope(source, metric.Missing(source, "provider not wired"))
	}
}

// regionCandidates enumerates known markets in the resolved state. Candidates
// are listed, not measured, so they carry interpolated confidence.
func (a *Analyzer) regionCandidates(geo *model.Geography, topN int) []model.RegionCandidate {
	if a.regions == nil {
		return nil
	}
	if topN <= 0 {
		topN = defaultRegionCandidates
	}

	state := provider.StateAbbrev(geo.Formatted)
	var out []model.RegionCandidate
	for _, name := range a.regions.Regions() {
		if state != "" && !regionInState(name, state) {
			continue
		}
		out = append(out, model.RegionCandidate{
			Name:       name,
			Confidence: metric.ConfidenceInterpolated,
			Note:       "enumerated from housing index coverage, not individually analyzed",
		})
		if len(out) >= topN {
			break
		}
	}
	return out
}

// regionInState matches housing index region names like "Denver, CO" against
// a two-letter state code.
func regionInState(region, state string) bool {
	i := len(region) - len(state)
	if i <= 0 {
		return false
	}
	return region[i:] == state && region[i-1] == ' '
}

// summarize builds the lightweight run projection persisted next to the full
// snapshot.
func summarize(result *model.AnalysisResult, score *scoring.InvestmentScore, quality scoring.QualityReport) *model.Summary {
	key := make(map[string]float64)
	for name, am := range score.AdjustedMetrics {
		if am.RawValue != nil {
			key[name] = *am.RawValue
		}
	}
	return &model.Summary{
		Location:    result.RawData.Geography.Formatted,
		Slug:        result.Meta.Slug,
		FinalScore:  score.FinalScore,
		Band:        score.Band,
		DataQuality: quality.OverallScore,
		KeyMetrics:  key,
		GeneratedAt: result.Meta.CreatedAt,
	}
}
