package query

import (
	"time"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/pkg/region"
)

// ListParams filters the full region list.
type ListParams struct {
	Filter filter.Criteria `json:"filter"`
	Limit  int             `json:"limit,omitempty"` // <= 0: no limit
}

// ProviderSummary is a provider with the number of regions it operates.
type ProviderSummary struct {
	region.Provider `yaml:",inline"`
	RegionCount     int `json:"regionCount" yaml:"regionCount"`
}

// ProviderDetail is a provider with all of its regions.
type ProviderDetail struct {
	Provider region.Provider `json:"provider" yaml:"provider"`
	Regions  []region.Region `json:"regions" yaml:"regions"`
}

// DataInfo describes the snapshot currently in effect.
type DataInfo struct {
	Metadata       region.Metadata `json:"metadata" yaml:"metadata"`
	Source         region.Source   `json:"source" yaml:"source"`
	FetchedAt      time.Time       `json:"fetchedAt" yaml:"fetchedAt"`
	LoadedAt       time.Time       `json:"loadedAt" yaml:"loadedAt"`
	RegionCount    int             `json:"regionCount" yaml:"regionCount"`
	ProviderCount  int             `json:"providerCount" yaml:"providerCount"`
	IndexedRegions int             `json:"indexedRegions" yaml:"indexedRegions"`
}

// ListRegions filters every region and truncates to p.Limit.
func ListRegions(snap *catalog.Snapshot, p ListParams) []region.Region {
	regions := filter.Apply(snap.Regions(), p.Filter, snap)
	if p.Limit > 0 && len(regions) > p.Limit {
		regions = regions[:p.Limit:p.Limit]
	}
	return regions
}

// ListProviders returns providers in table order, optionally restricted to tiers.
func ListProviders(snap *catalog.Snapshot, tiers []region.Tier) []ProviderSummary {
	allowed := make(map[region.Tier]bool, len(tiers))
	for _, t := range tiers {
		allowed[t] = true
	}

	out := make([]ProviderSummary, 0, len(snap.Providers()))
	for _, p := range snap.Providers() {
		if len(allowed) > 0 && !allowed[p.Tier] {
			continue
		}
		out = append(out, ProviderSummary{
			Provider:    p,
			RegionCount: len(snap.RegionsByProvider(p.ID)),
		})
	}
	return out
}

// GetProvider returns a provider and its regions.
func GetProvider(snap *catalog.Snapshot, id string) (ProviderDetail, bool) {
	p, ok := snap.Provider(id)
	if !ok {
		return ProviderDetail{}, false
	}
	regions := snap.RegionsByProvider(id)
	if regions == nil {
		regions = []region.Region{}
	}
	return ProviderDetail{Provider: p, Regions: regions}, true
}

// Info describes snap.
func Info(snap *catalog.Snapshot) DataInfo {
	return DataInfo{
		Metadata:       snap.Metadata(),
		Source:         snap.Source(),
		FetchedAt:      snap.FetchedAt(),
		LoadedAt:       snap.LoadedAt(),
		RegionCount:    len(snap.Regions()),
		ProviderCount:  len(snap.Providers()),
		IndexedRegions: len(snap.RegionIDs()),
	}
}
