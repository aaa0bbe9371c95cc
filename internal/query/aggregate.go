package query

import (
	"sort"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/pkg/region"
)

// CountryCount is one row of the by-country listing.
type CountryCount struct {
	CountryCode string `json:"countryCode" yaml:"countryCode"`
	Country     string `json:"country" yaml:"country"`
	Count       int    `json:"count" yaml:"count"`
}

// CityCount is one row of the by-city listing.
type CityCount struct {
	City        string   `json:"city" yaml:"city"`
	Country     string   `json:"country" yaml:"country"`
	CountryCode string   `json:"countryCode" yaml:"countryCode"`
	Providers   []string `json:"providers" yaml:"providers"`
	Count       int      `json:"count" yaml:"count"`
}

// Stats summarises a snapshot.
type Stats struct {
	TotalRegions         int            `json:"totalRegions" yaml:"totalRegions"`
	TotalProviders       int            `json:"totalProviders" yaml:"totalProviders"`
	ByProvider           map[string]int `json:"byProvider" yaml:"byProvider"`
	ByCountry            map[string]int `json:"byCountry" yaml:"byCountry"`
	ByContinent          map[string]int `json:"byContinent" yaml:"byContinent"`
	ByRegionType         map[string]int `json:"byRegionType" yaml:"byRegionType"`
	GPURegions           int            `json:"gpuRegions" yaml:"gpuRegions"`
	CarbonNeutralRegions int            `json:"carbonNeutralRegions" yaml:"carbonNeutralRegions"`
}

// Countries groups regions by country code, most regions first. Countries
// with equal counts keep first-seen order; the display name is the first one
// seen for the code.
func Countries(regions []region.Region) []CountryCount {
	index := make(map[string]int)
	rows := make([]CountryCount, 0)

	for _, r := range regions {
		code := r.Location.CountryCode
		i, ok := index[code]
		if !ok {
			i = len(rows)
			index[code] = i
			rows = append(rows, CountryCount{CountryCode: code, Country: r.Location.Country})
		}
		rows[i].Count++
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// cityKey identifies a city; same-named cities in different countries differ.
type cityKey struct {
	city        string
	countryCode string
}

// Cities groups regions by (city, country code), most regions first.
// Providers are listed once each in first-seen order.
func Cities(regions []region.Region) []CityCount {
	index := make(map[cityKey]int)
	seen := make(map[cityKey]map[string]bool)
	rows := make([]CityCount, 0)

	for _, r := range regions {
		key := cityKey{city: r.Location.City, countryCode: r.Location.CountryCode}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			seen[key] = make(map[string]bool)
			rows = append(rows, CityCount{
				City:        r.Location.City,
				Country:     r.Location.Country,
				CountryCode: r.Location.CountryCode,
				Providers:   make([]string, 0, 1),
			})
		}
		rows[i].Count++
		if !seen[key][r.Provider] {
			seen[key][r.Provider] = true
			rows[i].Providers = append(rows[i].Providers, r.Provider)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// ComputeStats counts regions along every grouping dimension.
func ComputeStats(snap *catalog.Snapshot) Stats {
	regions := snap.Regions()
	s := Stats{
		TotalRegions:   len(regions),
		TotalProviders: len(snap.Providers()),
		ByProvider:     make(map[string]int),
		ByCountry:      make(map[string]int),
		ByContinent:    make(map[string]int),
		ByRegionType:   make(map[string]int),
	}

	for _, r := range regions {
		s.ByProvider[r.Provider]++
		s.ByCountry[r.Location.CountryCode]++
		s.ByContinent[string(r.Location.Continent)]++
		s.ByRegionType[string(r.RegionType)]++
		if r.HasGPU() {
			s.GPURegions++
		}
		if r.IsCarbonNeutral() {
			s.CarbonNeutralRegions++
		}
	}
	return s
}
