// Package loader produces catalog datasets from a remote URL, the on-disk
// cache of the last good download, or the dataset compiled into the binary,
// in that order of preference.
package loader

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/yairfalse/regiondex/internal/storage"
	"github.com/yairfalse/regiondex/internal/telemetry"
	"github.com/yairfalse/regiondex/pkg/region"
)

//go:embed data/regions.json
var bundledPayload []byte

// maxPayloadBytes caps how much of a remote response is read.
const maxPayloadBytes = 32 << 20

// ErrMalformedPayload is returned when a payload is not a catalog document
// or holds no regions.
var ErrMalformedPayload = errors.New("loader: malformed catalog payload")

// HTTPClient is the subset of *http.Client the loader needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder receives one event per completed load.
type Recorder interface {
	RecordDatasetLoad(ctx context.Context, source string)
}

// Config controls the fallback chain.
type Config struct {
	URL      string        // empty: skip the remote fetch
	Timeout  time.Duration // bound on the remote fetch
	CacheTTL time.Duration // in-memory reuse window; 0 disables it
	MaxStale time.Duration // oldest on-disk payload still accepted
}

// Loader resolves a dataset through the fallback chain.
type Loader struct {
	cfg        Config
	httpClient HTTPClient
	disk       *storage.Cache
	recorder   Recorder
	logger     *telemetry.Logger
	now        func() time.Time

	mu       sync.Mutex
	cached   *region.Dataset
	cachedAt time.Time
}

// Option customises a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(l *Loader) { l.httpClient = c }
}

// WithDiskCache enables the on-disk last-good fallback.
func WithDiskCache(c *storage.Cache) Option {
	return func(l *Loader) { l.disk = c }
}

// WithRecorder sets where load metrics go.
func WithRecorder(r Recorder) Option {
	return func(l *Loader) { l.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(lg *telemetry.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// New creates a loader.
func New(cfg Config, opts ...Option) *Loader {
	l := &Loader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     telemetry.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns a dataset. It only fails if the bundled dataset itself
// cannot be decoded.
func (l *Loader) Load(ctx context.Context) (region.Dataset, error) {
	if ds, ok := l.fromMemory(); ok {
		return ds, nil
	}

	if l.cfg.URL != "" {
		ds, payload, err := l.fetch(ctx)
		if err == nil {
			l.remember(ds)
			l.persist(ctx, payload, ds.FetchedAt)
			return l.done(ctx, ds), nil
		}
		l.logger.LogFallback(ctx, "remote", err)

		ds, err = l.fromDisk()
		if err == nil {
			return l.done(ctx, ds), nil
		}
		if !errors.Is(err, storage.ErrEmpty) {
			l.logger.LogFallback(ctx, "disk", err)
		}
	}

	ds, err := Bundled()
	if err != nil {
		return region.Dataset{}, err
	}
	ds.FetchedAt = l.now()
	return l.done(ctx, ds), nil
}

// Invalidate drops the in-memory copy so the next Load goes back to the
// remote source.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}

func (l *Loader) done(ctx context.Context, ds region.Dataset) region.Dataset {
	if l.recorder != nil {
		l.recorder.RecordDatasetLoad(ctx, string(ds.Source))
	}
	l.logger.LogDatasetLoaded(ctx, string(ds.Source), len(ds.Regions), len(ds.Providers))
	return ds
}

func (l *Loader) fromMemory() (region.Dataset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached == nil || l.cfg.CacheTTL <= 0 {
		return region.Dataset{}, false
	}
	if l.now().Sub(l.cachedAt) >= l.cfg.CacheTTL {
		return region.Dataset{}, false
	}
	return *l.cached, true
}

func (l *Loader) remember(ds region.Dataset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = &ds
	l.cachedAt = l.now()
}

func (l *Loader) fetch(ctx context.Context) (region.Dataset, []byte, error) {
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return region.Dataset{}, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return region.Dataset{}, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return region.Dataset{}, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return region.Dataset{}, nil, fmt.Errorf("read body: %w", err)
	}

	ds, err := Decode(payload)
	if err != nil {
		return region.Dataset{}, nil, err
	}
	ds.Source = region.SourceRemote
	ds.FetchedAt = l.now()
	return ds, payload, nil
}

func (l *Loader) persist(ctx context.Context, payload []byte, fetchedAt time.Time) {
	if l.disk == nil {
		return
	}
	if _, err := l.disk.Put(payload, fetchedAt); err != nil {
		l.logger.LogCacheError(ctx, "put", err)
	}
}

func (l *Loader) fromDisk() (region.Dataset, error) {
	if l.disk == nil {
		return region.Dataset{}, storage.ErrEmpty
	}
	e, err := l.disk.Get()
	if err != nil {
		return region.Dataset{}, err
	}
	if age := e.Age(l.now()); age > l.cfg.MaxStale {
		return region.Dataset{}, fmt.Errorf("cached payload is %s old, limit %s", age.Round(time.Second), l.cfg.MaxStale)
	}

	ds, err := Decode(e.Payload)
	if err != nil {
		return region.Dataset{}, err
	}
	ds.Source = region.SourceRemote
	ds.FetchedAt = e.FetchedAt
	return ds, nil
}

// Decode parses a catalog document. The payload must hold at least one
// region.
func Decode(payload []byte) (region.Dataset, error) {
	var ds region.Dataset
	if err := json.Unmarshal(payload, &ds); err != nil {
		return region.Dataset{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(ds.Regions) == 0 {
		return region.Dataset{}, fmt.Errorf("%w: no regions", ErrMalformedPayload)
	}
	return ds, nil
}

// Bundled returns the dataset compiled into the binary.
func Bundled() (region.Dataset, error) {
	ds, err := Decode(bundledPayload)
	if err != nil {
		return region.Dataset{}, fmt.Errorf("bundled dataset: %w", err)
	}
	ds.Source = region.SourceBundled
	return ds, nil
}
