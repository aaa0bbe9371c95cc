package query

import (
	"strings"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/pkg/region"
)

// ComplianceParams asks for regions holding every listed certification.
type ComplianceParams struct {
	Certifications []string        `json:"certifications"`
	Filter         filter.Criteria `json:"filter"`
}

// SustainabilityParams asks for carbon-neutral regions.
type SustainabilityParams struct {
	Filter filter.Criteria `json:"filter"`
}

// GPUParams asks for GPU-capable regions, optionally offering a GPU model.
type GPUParams struct {
	GPUType string          `json:"gpuType,omitempty"`
	Filter  filter.Criteria `json:"filter"`
}

// CoverageParams narrows a coverage comparison to a country and/or continent.
type CoverageParams struct {
	CountryCode string           `json:"countryCode,omitempty"`
	Continent   region.Continent `json:"continent,omitempty"`
}

// Compliant pins the compliance criterion to p.Certifications, replacing any
// compliance set in p.Filter, and applies the rest of the filter unchanged.
func Compliant(snap *catalog.Snapshot, p ComplianceParams) []region.Region {
	c := p.Filter
	c.Compliance = p.Certifications
	return filter.Apply(snap.Regions(), c, snap)
}

// Sustainable returns carbon-neutral regions matching p.Filter.
func Sustainable(snap *catalog.Snapshot, p SustainabilityParams) []region.Region {
	c := p.Filter
	c.CarbonNeutral = true
	return filter.Apply(snap.Regions(), c, snap)
}

// GPU returns GPU-capable regions matching p.Filter. With a GPUType, at least
// one of the region's GPU models must contain it, ignoring case.
func GPU(snap *catalog.Snapshot, p GPUParams) []region.Region {
	c := p.Filter
	c.HasGPU = true
	candidates := filter.Apply(snap.Regions(), c, snap)

	if p.GPUType == "" {
		return candidates
	}

	needle := strings.ToLower(p.GPUType)
	matches := make([]region.Region, 0, len(candidates))
	for _, r := range candidates {
		if offersGPU(r, needle) {
			matches = append(matches, r)
		}
	}
	return matches
}

func offersGPU(r region.Region, needle string) bool {
	for _, model := range r.Services.GPUTypes {
		if strings.Contains(strings.ToLower(model), needle) {
			return true
		}
	}
	return false
}

// Coverage counts matching regions per provider. Providers without a match
// are absent from the result.
func Coverage(snap *catalog.Snapshot, p CoverageParams) map[string]int {
	c := filter.Criteria{}
	if p.CountryCode != "" {
		c.CountryCodes = []string{p.CountryCode}
	}
	if p.Continent != "" {
		c.Continents = []region.Continent{p.Continent}
	}

	counts := make(map[string]int)
	for _, r := range filter.Apply(snap.Regions(), c, snap) {
		counts[r.Provider]++
	}
	return counts
}
