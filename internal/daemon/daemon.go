// Package daemon keeps the published catalog snapshot fresh.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/telemetry"
	"github.com/yairfalse/regiondex/pkg/region"
)

// Loader produces datasets.
type Loader interface {
	Load(ctx context.Context) (region.Dataset, error)
	Invalidate()
}

// Publisher holds the published snapshot and swaps in new ones.
type Publisher interface {
	Current() *catalog.Snapshot
	Replace(ds region.Dataset) *catalog.Snapshot
}

// maxLoggedChanges caps the per-region detail attached to the change log.
const maxLoggedChanges = 20

// Config holds daemon configuration
type Config struct {
	Interval time.Duration
}

// Daemon reloads the catalog on a fixed interval and on demand.
type Daemon struct {
	interval  time.Duration
	loader    Loader
	publisher Publisher
	metrics   *DaemonMetrics
	logger    *telemetry.Logger
	startTime time.Time

	// serialises refreshes so snapshots are published in load order
	mu           sync.Mutex
	refreshCount atomic.Int64
	lastRefresh  atomic.Pointer[refreshResult]
}

type refreshResult struct {
	at      time.Time
	source  region.Source
	regions int
}

// NewDaemon creates a new daemon instance
func NewDaemon(config Config, loader Loader, publisher Publisher, logger *telemetry.Logger) (*Daemon, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("daemon: interval must be positive (got %s)", config.Interval)
	}
	if logger == nil {
		logger = telemetry.Nop()
	}

	metrics, err := NewDaemonMetrics()
	if err != nil {
		return nil, fmt.Errorf("create daemon metrics: %w", err)
	}

	return &Daemon{
		interval:  config.Interval,
		loader:    loader,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Start runs the refresh loop until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.Refresh(ctx); err != nil {
				d.logger.WithContext(ctx).Error().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// Refresh loads a dataset, honouring the loader's caches, and publishes it.
func (d *Daemon) Refresh(ctx context.Context) (*catalog.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshLocked(ctx)
}

// ForceRefresh bypasses the loader's in-memory cache before refreshing.
func (d *Daemon) ForceRefresh(ctx context.Context) (*catalog.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loader.Invalidate()
	return d.refreshLocked(ctx)
}

func (d *Daemon) refreshLocked(ctx context.Context) (*catalog.Snapshot, error) {
	start := time.Now()
	d.refreshCount.Add(1)

	ds, err := d.loader.Load(ctx)
	if err != nil {
		d.metrics.RecordRefresh(ctx, "error", "")
		d.metrics.RecordRefreshDuration(ctx, time.Since(start).Seconds(), "error")
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	prev := d.publisher.Current()
	snap := d.publisher.Replace(ds)
	source := string(snap.Source())
	d.reportChanges(ctx, catalog.Diff(prev, snap))

	d.metrics.RecordRefresh(ctx, "success", source)
	d.metrics.RecordRefreshDuration(ctx, time.Since(start).Seconds(), "success")
	d.metrics.RecordCatalogSize(ctx, int64(len(snap.Regions())), source)
	d.lastRefresh.Store(&refreshResult{at: time.Now(), source: snap.Source(), regions: len(snap.Regions())})

	return snap, nil
}

// reportChanges logs and counts what a refresh changed.
func (d *Daemon) reportChanges(ctx context.Context, changes []catalog.RegionChange) {
	if len(changes) == 0 {
		return
	}

	counts := catalog.CountChanges(changes)
	for kind, n := range counts {
		d.metrics.RecordCatalogChanges(ctx, string(kind), int64(n))
	}

	event := d.logger.WithContext(ctx).Info().
		Int("added", counts[catalog.ChangeAdded]).
		Int("removed", counts[catalog.ChangeRemoved]).
		Int("modified", counts[catalog.ChangeModified])
	if len(changes) <= maxLoggedChanges {
		event = event.Interface("changes", changes)
	}
	event.Msg("catalog changed")
}

// Health returns daemon health status
func (d *Daemon) Health() HealthStatus {
	h := HealthStatus{
		Status:    "healthy",
		Uptime:    int64(time.Since(d.startTime).Seconds()),
		Refreshes: d.refreshCount.Load(),
	}
	if last := d.lastRefresh.Load(); last != nil {
		h.LastRefresh = last.at
		h.Source = last.source
		h.Regions = last.regions
	}
	return h
}

// HealthStatus represents daemon health
type HealthStatus struct {
	Status      string        `json:"status"`
	Uptime      int64         `json:"uptimeSeconds"`
	Refreshes   int64         `json:"refreshes"`
	LastRefresh time.Time     `json:"lastRefresh"`
	Source      region.Source `json:"source,omitempty"`
	Regions     int           `json:"regions"`
}

// RefreshCount returns total refreshes run
func (d *Daemon) RefreshCount() int64 {
	return d.refreshCount.Load()
}
