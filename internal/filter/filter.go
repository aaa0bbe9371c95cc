// Package filter composes region predicates from a declarative criteria value.
package filter

import (
	"github.com/yairfalse/regiondex/pkg/region"
)

// Criteria is an unordered set of optional constraints. Every set field must
// hold for a region to match; unset fields impose nothing.
type Criteria struct {
	Providers            []string            `json:"providers,omitempty"`
	Tiers                []region.Tier       `json:"tiers,omitempty"`
	CountryCodes         []string            `json:"countryCodes,omitempty"`
	Continents           []region.Continent  `json:"continents,omitempty"`
	Compliance           []string            `json:"compliance,omitempty"` // ALL required
	CarbonNeutral        bool                `json:"carbonNeutral,omitempty"`
	HasGPU               bool                `json:"hasGpu,omitempty"`
	Statuses             []region.Status     `json:"statuses,omitempty"`
	RegionTypes          []region.RegionType `json:"regionTypes,omitempty"`
	DataResidency        *string             `json:"dataResidency,omitempty"`
	MinAvailabilityZones *int                `json:"minAvailabilityZones,omitempty"`
}

// IsEmpty returns true if no criterion is set.
func (c Criteria) IsEmpty() bool {
	return len(c.Providers) == 0 &&
		len(c.Tiers) == 0 &&
		len(c.CountryCodes) == 0 &&
		len(c.Continents) == 0 &&
		len(c.Compliance) == 0 &&
		!c.CarbonNeutral &&
		!c.HasGPU &&
		len(c.Statuses) == 0 &&
		len(c.RegionTypes) == 0 &&
		c.DataResidency == nil &&
		c.MinAvailabilityZones == nil
}

// ProviderResolver resolves a provider id to its table entry.
type ProviderResolver interface {
	Provider(id string) (region.Provider, bool)
}

// Filter is a compiled Criteria.
type Filter struct {
	criteria Criteria
	resolver ProviderResolver

	providers    map[string]bool
	tiers        map[region.Tier]bool
	countryCodes map[string]bool
	continents   map[region.Continent]bool
	statuses     map[region.Status]bool
	regionTypes  map[region.RegionType]bool
}

// New compiles criteria into lookup sets. resolver is only consulted for the
// tier criterion; a nil resolver leaves every provider unresolved.
func New(c Criteria, resolver ProviderResolver) *Filter {
	return &Filter{
		criteria:     c,
		resolver:     resolver,
		providers:    toSet(c.Providers),
		tiers:        toSet(c.Tiers),
		countryCodes: toSet(c.CountryCodes),
		continents:   toSet(c.Continents),
		statuses:     toSet(c.Statuses),
		regionTypes:  toSet(c.RegionTypes),
	}
}

// Apply filters regions with c in one call.
func Apply(regions []region.Region, c Criteria, resolver ProviderResolver) []region.Region {
	return New(c, resolver).FilterRegions(regions)
}

// IsEmpty returns true if the filter imposes no constraint.
func (f *Filter) IsEmpty() bool {
	return f.criteria.IsEmpty()
}

// Matches returns true if r satisfies every criterion.
// Criteria are checked in a fixed order and the first failure stops the check.
func (f *Filter) Matches(r region.Region) bool {
	c := f.criteria

	if f.providers != nil && !f.providers[r.Provider] {
		return false
	}
	if f.tiers != nil && !f.matchesTier(r) {
		return false
	}
	if f.countryCodes != nil && !f.countryCodes[r.Location.CountryCode] {
		return false
	}
	if f.continents != nil && !f.continents[r.Location.Continent] {
		return false
	}
	if len(c.Compliance) > 0 && !r.HasCompliance(c.Compliance) {
		return false
	}
	if c.CarbonNeutral && !r.IsCarbonNeutral() {
		return false
	}
	if c.HasGPU && !r.HasGPU() {
		return false
	}
	if f.statuses != nil && !f.statuses[r.Status] {
		return false
	}
	if f.regionTypes != nil && !f.regionTypes[r.RegionType] {
		return false
	}
	if c.DataResidency != nil && (r.Sovereignty == nil || r.Sovereignty.DataResidency != *c.DataResidency) {
		return false
	}
	if c.MinAvailabilityZones != nil && r.Zones() < *c.MinAvailabilityZones {
		return false
	}

	return true
}

// matchesTier treats an unresolved provider as a non-match.
func (f *Filter) matchesTier(r region.Region) bool {
	if f.resolver == nil {
		return false
	}
	p, ok := f.resolver.Provider(r.Provider)
	if !ok {
		return false
	}
	return f.tiers[p.Tier]
}

// FilterRegions returns only regions that pass the filter, in input order.
// An empty filter returns regions itself.
func (f *Filter) FilterRegions(regions []region.Region) []region.Region {
	if f.IsEmpty() {
		return regions
	}

	filtered := make([]region.Region, 0, len(regions))
	for _, r := range regions {
		if f.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func toSet[T comparable](items []T) map[T]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[T]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
