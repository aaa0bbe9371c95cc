package query

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/internal/telemetry"
	"github.com/yairfalse/regiondex/pkg/region"
)

// SnapshotSource hands out the snapshot currently in effect.
type SnapshotSource interface {
	Current() *catalog.Snapshot
}

// Recorder receives per-query measurements.
type Recorder interface {
	RecordQuery(ctx context.Context, operation string, d time.Duration, results int)
}

// Engine runs queries against whatever snapshot its source holds at call
// time. Each call loads the snapshot exactly once.
type Engine struct {
	source   SnapshotSource
	tracer   trace.Tracer
	recorder Recorder
	logger   *telemetry.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer sets the tracer used for query spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithRecorder sets where query metrics go.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine reading from source.
func NewEngine(source SnapshotSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		tracer: otel.Tracer("regiondex.query"),
		logger: telemetry.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the snapshot currently in effect.
func (e *Engine) Snapshot() *catalog.Snapshot {
	return e.source.Current()
}

// begin opens the span for op and returns the snapshot to query along with
// the callback that closes the span and records the result count.
func (e *Engine) begin(ctx context.Context, op string) (*catalog.Snapshot, func(int)) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "query."+op)
	snap := e.source.Current()

	return snap, func(results int) {
		span.SetAttributes(attribute.Int("results", results))
		span.End()
		if e.recorder != nil {
			e.recorder.RecordQuery(ctx, op, time.Since(start), results)
		}
		e.logger.LogSpanEnd(ctx, "query."+op, nil, attribute.Int("results", results))
	}
}

// ListRegions returns regions matching p.
func (e *Engine) ListRegions(ctx context.Context, p ListParams) []region.Region {
	snap, done := e.begin(ctx, "list_regions")
	out := ListRegions(snap, p)
	done(len(out))
	return out
}

// GetRegion looks up a region by id.
func (e *Engine) GetRegion(ctx context.Context, id string) (region.Region, bool) {
	snap, done := e.begin(ctx, "get_region")
	r, ok := snap.Region(id)
	done(boolCount(ok))
	return r, ok
}

// ListProviders returns providers, optionally restricted to tiers.
func (e *Engine) ListProviders(ctx context.Context, tiers []region.Tier) []ProviderSummary {
	snap, done := e.begin(ctx, "list_providers")
	out := ListProviders(snap, tiers)
	done(len(out))
	return out
}

// GetProvider looks up a provider and its regions.
func (e *Engine) GetProvider(ctx context.Context, id string) (ProviderDetail, bool) {
	snap, done := e.begin(ctx, "get_provider")
	d, ok := GetProvider(snap, id)
	done(boolCount(ok))
	return d, ok
}

// Nearby ranks regions by distance from a point.
func (e *Engine) Nearby(ctx context.Context, p NearbyParams) []RegionDistance {
	snap, done := e.begin(ctx, "find_nearby")
	out := Nearby(snap, p)
	done(len(out))
	return out
}

// Search runs a text search.
func (e *Engine) Search(ctx context.Context, p SearchParams) []region.Region {
	snap, done := e.begin(ctx, "search_regions")
	out := Search(snap, p)
	done(len(out))
	return out
}

// Compliant returns regions holding every requested certification.
func (e *Engine) Compliant(ctx context.Context, p ComplianceParams) []region.Region {
	snap, done := e.begin(ctx, "find_compliant_regions")
	out := Compliant(snap, p)
	done(len(out))
	return out
}

// Sustainable returns carbon-neutral regions.
func (e *Engine) Sustainable(ctx context.Context, p SustainabilityParams) []region.Region {
	snap, done := e.begin(ctx, "find_sustainable_regions")
	out := Sustainable(snap, p)
	done(len(out))
	return out
}

// GPU returns GPU-capable regions.
func (e *Engine) GPU(ctx context.Context, p GPUParams) []region.Region {
	snap, done := e.begin(ctx, "find_gpu_regions")
	out := GPU(snap, p)
	done(len(out))
	return out
}

// Coverage counts matching regions per provider.
func (e *Engine) Coverage(ctx context.Context, p CoverageParams) map[string]int {
	snap, done := e.begin(ctx, "compare_coverage")
	out := Coverage(snap, p)
	done(len(out))
	return out
}

// Countries groups the regions matching c by country.
func (e *Engine) Countries(ctx context.Context, c filter.Criteria) []CountryCount {
	snap, done := e.begin(ctx, "list_countries")
	out := Countries(filter.Apply(snap.Regions(), c, snap))
	done(len(out))
	return out
}

// Cities groups the regions matching c by city.
func (e *Engine) Cities(ctx context.Context, c filter.Criteria) []CityCount {
	snap, done := e.begin(ctx, "list_cities")
	out := Cities(filter.Apply(snap.Regions(), c, snap))
	done(len(out))
	return out
}

// Stats summarises the current snapshot.
func (e *Engine) Stats(ctx context.Context) Stats {
	snap, done := e.begin(ctx, "get_stats")
	out := ComputeStats(snap)
	done(out.TotalRegions)
	return out
}

// RegionsByCountry returns the regions in a country, in snapshot order.
func (e *Engine) RegionsByCountry(ctx context.Context, countryCode string) []region.Region {
	snap, done := e.begin(ctx, "regions_by_country")
	out := nonNil(snap.RegionsByCountry(countryCode))
	done(len(out))
	return out
}

// RegionsByContinent returns the regions on a continent, in snapshot order.
func (e *Engine) RegionsByContinent(ctx context.Context, c region.Continent) []region.Region {
	snap, done := e.begin(ctx, "regions_by_continent")
	out := nonNil(snap.RegionsByContinent(c))
	done(len(out))
	return out
}

// Info describes the snapshot in effect.
func (e *Engine) Info(ctx context.Context) DataInfo {
	snap, done := e.begin(ctx, "data_info")
	out := Info(snap)
	done(1)
	return out
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func nonNil(regions []region.Region) []region.Region {
	if regions == nil {
		return []region.Region{}
	}
	return slices.Clip(regions)
}
