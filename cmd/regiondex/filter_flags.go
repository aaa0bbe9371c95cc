package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/pkg/region"
)

// filterFlags binds the region filter to command flags.
type filterFlags struct {
	providers     []string
	tiers         []string
	countries     []string
	continents    []string
	compliance    []string
	carbonNeutral bool
	gpu           bool
	statuses      []string
	regionTypes   []string
	dataResidency string
	minAZ         int

	cmd *cobra.Command
}

func addFilterFlags(cmd *cobra.Command) *filterFlags {
	f := &filterFlags{cmd: cmd}
	fs := cmd.Flags()
	fs.StringSliceVar(&f.providers, "provider", nil, "Provider ids (any of)")
	fs.StringSliceVar(&f.tiers, "tier", nil, "Provider tiers (any of)")
	fs.StringSliceVar(&f.countries, "country", nil, "ISO country codes (any of)")
	fs.StringSliceVar(&f.continents, "continent", nil, "Continents (any of)")
	fs.StringSliceVar(&f.compliance, "compliance", nil, "Certifications (all of)")
	fs.BoolVar(&f.carbonNeutral, "carbon-neutral", false, "Only carbon-neutral regions")
	fs.BoolVar(&f.gpu, "gpu", false, "Only GPU-capable regions")
	fs.StringSliceVar(&f.statuses, "status", nil, "Region statuses (any of)")
	fs.StringSliceVar(&f.regionTypes, "type", nil, "Region types (any of)")
	fs.StringVar(&f.dataResidency, "data-residency", "", "Required data residency")
	fs.IntVar(&f.minAZ, "min-az", 0, "Minimum availability zones")
	return f
}

// criteria converts the parsed flags. Unset flags impose no constraint.
func (f *filterFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		Providers:     f.providers,
		CountryCodes:  f.countries,
		Compliance:    f.compliance,
		CarbonNeutral: f.carbonNeutral,
		HasGPU:        f.gpu,
	}
	for _, t := range f.tiers {
		c.Tiers = append(c.Tiers, region.Tier(t))
	}
	for _, s := range f.continents {
		cont := region.Continent(s)
		if !cont.Valid() {
			return filter.Criteria{}, fmt.Errorf("unknown continent %q", s)
		}
		c.Continents = append(c.Continents, cont)
	}
	for _, s := range f.statuses {
		c.Statuses = append(c.Statuses, region.Status(s))
	}
	for _, t := range f.regionTypes {
		c.RegionTypes = append(c.RegionTypes, region.RegionType(t))
	}

	fs := f.cmd.Flags()
	if fs.Changed("data-residency") {
		dr := f.dataResidency
		c.DataResidency = &dr
	}
	if fs.Changed("min-az") {
		if f.minAZ < 0 {
			return filter.Criteria{}, fmt.Errorf("--min-az must not be negative (got %d)", f.minAZ)
		}
		n := f.minAZ
		c.MinAvailabilityZones = &n
	}
	return c, nil
}
