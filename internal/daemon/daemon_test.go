package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/catalog/catalogtest"
	"github.com/yairfalse/regiondex/internal/telemetry"
	"github.com/yairfalse/regiondex/pkg/region"
)

type fakeLoader struct {
	mu          sync.Mutex
	ds          region.Dataset
	err         error
	loads       int
	invalidated int
}

func (f *fakeLoader) Load(context.Context) (region.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.ds, f.err
}

func (f *fakeLoader) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func newTestDaemon(t *testing.T, interval time.Duration, loader *fakeLoader) (*Daemon, *catalog.Store) {
	t.Helper()
	bundled := catalogtest.Dataset()
	bundled.Regions = bundled.Regions[:1]
	store := catalog.NewStore(bundled)

	d, err := NewDaemon(Config{Interval: interval}, loader, store, nil)
	require.NoError(t, err)
	return d, store
}

func TestNewDaemon_RejectsNonPositiveInterval(t *testing.T) {
	_, err := NewDaemon(Config{}, &fakeLoader{}, catalog.NewStore(catalogtest.Dataset()), nil)
	require.Error(t, err)
}

func TestDaemon_RefreshPublishesSnapshot(t *testing.T) {
	ds := catalogtest.Dataset()
	ds.Source = region.SourceRemote
	loader := &fakeLoader{ds: ds}
	d, store := newTestDaemon(t, time.Hour, loader)

	snap, err := d.Refresh(context.Background())
	require.NoError(t, err)

	assert.Same(t, snap, store.Current())
	assert.Len(t, store.Current().Regions(), 8)
	assert.Equal(t, region.SourceRemote, store.Current().Source())

	h := d.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, int64(1), h.Refreshes)
	assert.Equal(t, region.SourceRemote, h.Source)
	assert.Equal(t, 8, h.Regions)
	assert.False(t, h.LastRefresh.IsZero())
}

func TestDaemon_RefreshErrorKeepsPreviousSnapshot(t *testing.T) {
	loader := &fakeLoader{err: errors.New("bundled dataset: corrupt")}
	d, store := newTestDaemon(t, time.Hour, loader)
	before := store.Current()

	_, err := d.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, before, store.Current())
}

func TestDaemon_ForceRefreshInvalidatesLoader(t *testing.T) {
	loader := &fakeLoader{ds: catalogtest.Dataset()}
	d, _ := newTestDaemon(t, time.Hour, loader)

	_, err := d.ForceRefresh(context.Background())
	require.NoError(t, err)
	_, err = d.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loader.invalidated)
	assert.Equal(t, 2, loader.loads)
	assert.Equal(t, int64(2), d.RefreshCount())
}

func TestDaemon_Start(t *testing.T) {
	d, _ := newTestDaemon(t, time.Second, &fakeLoader{ds: catalogtest.Dataset()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	select {
	case err := <-errCh:
		t.Fatalf("Daemon exited early: %v", err)
	default:
	}

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Daemon did not shutdown within timeout")
	}
}

func TestDaemon_RefreshLoop(t *testing.T) {
	loader := &fakeLoader{ds: catalogtest.Dataset()}
	d, store := newTestDaemon(t, 50*time.Millisecond, loader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = d.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return d.RefreshCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Len(t, store.Current().Regions(), 8)
}

func TestDaemon_Health(t *testing.T) {
	d, _ := newTestDaemon(t, time.Minute, &fakeLoader{})

	health := d.Health()

	assert.NotEmpty(t, health.Status)
	assert.GreaterOrEqual(t, health.Uptime, int64(0))
	assert.Equal(t, int64(0), health.Refreshes)
	assert.True(t, health.LastRefresh.IsZero())
}

func TestDaemon_RefreshLogsCatalogChanges(t *testing.T) {
	bundled := catalogtest.Dataset()
	bundled.Regions = bundled.Regions[:1]
	store := catalog.NewStore(bundled)

	var buf bytes.Buffer
	d, err := NewDaemon(Config{Interval: time.Hour}, &fakeLoader{ds: catalogtest.Dataset()}, store, telemetry.NewLoggerTo(&buf, "test"))
	require.NoError(t, err)

	_, err = d.Refresh(context.Background())
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "catalog changed", entry["message"])
	assert.EqualValues(t, 7, entry["added"])
	assert.EqualValues(t, 0, entry["removed"])
	assert.Len(t, entry["changes"], 7)

	buf.Reset()
	_, err = d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "an unchanged catalog logs nothing")
}
