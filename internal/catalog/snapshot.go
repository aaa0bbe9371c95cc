// Package catalog holds the immutable dataset snapshot and its derived indices.
package catalog

import (
	"slices"
	"time"

	"github.com/google/btree"

	"github.com/yairfalse/regiondex/pkg/region"
)

// indexEntry maps a region id to its position in Snapshot.regions.
type indexEntry struct {
	id  string
	pos int
}

// Snapshot is one complete, read-only view of the catalog.
// Nothing mutates a Snapshot after NewSnapshot returns; slices handed out by
// its accessors are shared and clipped to their length, so appending to one
// reallocates instead of writing into the snapshot.
type Snapshot struct {
	regions   []region.Region
	providers []region.Provider
	metadata  region.Metadata
	source    region.Source
	fetchedAt time.Time
	loadedAt  time.Time

	regionIndex   *btree.BTreeG[indexEntry]
	providerIndex map[string]int

	byProvider  map[string][]region.Region
	byCountry   map[string][]region.Region
	byContinent map[region.Continent][]region.Region
}

// NewSnapshot copies the dataset and builds every index over the copy.
// Duplicate region ids collapse to the last occurrence in the id index; the
// region list and grouping views still contain every record.
func NewSnapshot(ds region.Dataset) *Snapshot {
	s := &Snapshot{
		regions:   slices.Clone(ds.Regions),
		providers: slices.Clone(ds.Providers),
		metadata:  ds.Metadata,
		source:    ds.Source,
		fetchedAt: ds.FetchedAt,
		loadedAt:  time.Now(),
		regionIndex: btree.NewG[indexEntry](32, func(a, b indexEntry) bool {
			return a.id < b.id
		}),
		providerIndex: make(map[string]int, len(ds.Providers)),
		byProvider:    make(map[string][]region.Region),
		byCountry:     make(map[string][]region.Region),
		byContinent:   make(map[region.Continent][]region.Region),
	}

	for i, r := range s.regions {
		s.regionIndex.ReplaceOrInsert(indexEntry{id: r.ID, pos: i})
		s.byProvider[r.Provider] = append(s.byProvider[r.Provider], r)
		s.byCountry[r.Location.CountryCode] = append(s.byCountry[r.Location.CountryCode], r)
		s.byContinent[r.Location.Continent] = append(s.byContinent[r.Location.Continent], r)
	}

	for i, p := range s.providers {
		s.providerIndex[p.ID] = i
	}

	return s
}

// Regions returns every region in dataset order.
func (s *Snapshot) Regions() []region.Region {
	return slices.Clip(s.regions)
}

// Providers returns every provider in dataset order.
func (s *Snapshot) Providers() []region.Provider {
	return slices.Clip(s.providers)
}

// Metadata returns the dataset metadata.
func (s *Snapshot) Metadata() region.Metadata {
	return s.metadata
}

// Source returns where the dataset came from.
func (s *Snapshot) Source() region.Source {
	return s.source
}

// FetchedAt returns when the loader obtained the dataset.
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// LoadedAt returns when this snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Region looks up a region by id.
func (s *Snapshot) Region(id string) (region.Region, bool) {
	entry, ok := s.regionIndex.Get(indexEntry{id: id})
	if !ok {
		return region.Region{}, false
	}
	return s.regions[entry.pos], true
}

// Provider looks up a provider by id.
func (s *Snapshot) Provider(id string) (region.Provider, bool) {
	pos, ok := s.providerIndex[id]
	if !ok {
		return region.Provider{}, false
	}
	return s.providers[pos], true
}

// RegionIDs returns every indexed region id in ascending order.
func (s *Snapshot) RegionIDs() []string {
	ids := make([]string, 0, s.regionIndex.Len())
	s.regionIndex.Ascend(func(e indexEntry) bool {
		ids = append(ids, e.id)
		return true
	})
	return ids
}

// RegionsByProvider returns the regions a provider operates, in dataset order.
func (s *Snapshot) RegionsByProvider(providerID string) []region.Region {
	return slices.Clip(s.byProvider[providerID])
}

// RegionsByCountry returns the regions in a country, in dataset order.
func (s *Snapshot) RegionsByCountry(countryCode string) []region.Region {
	return slices.Clip(s.byCountry[countryCode])
}

// RegionsByContinent returns the regions on a continent, in dataset order.
func (s *Snapshot) RegionsByContinent(c region.Continent) []region.Region {
	return slices.Clip(s.byContinent[c])
}
