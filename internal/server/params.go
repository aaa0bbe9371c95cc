package server

import (
	"errors"
	"fmt"

	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/internal/query"
	"github.com/yairfalse/regiondex/pkg/region"
)

func validateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit must not be negative (got %d)", limit)
	}
	return nil
}

func validateCriteria(c filter.Criteria) error {
	if c.MinAvailabilityZones != nil && *c.MinAvailabilityZones < 0 {
		return fmt.Errorf("filter.minAvailabilityZones must not be negative (got %d)", *c.MinAvailabilityZones)
	}
	for _, cont := range c.Continents {
		if !cont.Valid() {
			return fmt.Errorf("filter.continents: unknown continent %q", cont)
		}
	}
	return nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %v)", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %v)", lng)
	}
	return nil
}

// ListRegionsParams defines the parameters for list_regions
type ListRegionsParams struct {
	query.ListParams
}

// Validate validates the parameters for list_regions
func (p ListRegionsParams) Validate() error {
	if err := validateLimit(p.Limit); err != nil {
		return err
	}
	return validateCriteria(p.Filter)
}

// IDParams identifies a region or provider.
type IDParams struct {
	ID string `json:"id"`
}

// Validate validates the parameters for get_region and get_provider
func (p IDParams) Validate() error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

// ListProvidersParams defines the parameters for list_providers
type ListProvidersParams struct {
	Tiers []region.Tier `json:"tiers,omitempty"`
}

// Validate validates the parameters for list_providers
func (p ListProvidersParams) Validate() error { return nil }

// NearbyParams defines the parameters for find_nearby
type NearbyParams struct {
	query.NearbyParams
}

// Validate validates the parameters for find_nearby
func (p NearbyParams) Validate() error {
	if err := validateCoordinates(p.Latitude, p.Longitude); err != nil {
		return err
	}
	if err := validateLimit(p.Limit); err != nil {
		return err
	}
	if p.MaxDistanceKm != nil && *p.MaxDistanceKm < 0 {
		return fmt.Errorf("maxDistanceKm must not be negative (got %v)", *p.MaxDistanceKm)
	}
	return validateCriteria(p.Filter)
}

// SearchParams defines the parameters for search_regions
type SearchParams struct {
	query.SearchParams
}

// Validate validates the parameters for search_regions
func (p SearchParams) Validate() error {
	if p.Query == "" {
		return errors.New("query is required")
	}
	return validateLimit(p.Limit)
}

// ComplianceParams defines the parameters for find_compliant_regions
type ComplianceParams struct {
	query.ComplianceParams
}

// Validate validates the parameters for find_compliant_regions
func (p ComplianceParams) Validate() error {
	if len(p.Certifications) == 0 {
		return errors.New("certifications is required")
	}
	return validateCriteria(p.Filter)
}

// SustainabilityParams defines the parameters for find_sustainable_regions
type SustainabilityParams struct {
	query.SustainabilityParams
}

// Validate validates the parameters for find_sustainable_regions
func (p SustainabilityParams) Validate() error {
	return validateCriteria(p.Filter)
}

// GPUParams defines the parameters for find_gpu_regions
type GPUParams struct {
	query.GPUParams
}

// Validate validates the parameters for find_gpu_regions
func (p GPUParams) Validate() error {
	return validateCriteria(p.Filter)
}

// CoverageParams defines the parameters for compare_coverage
type CoverageParams struct {
	query.CoverageParams
}

// Validate validates the parameters for compare_coverage
func (p CoverageParams) Validate() error {
	if p.Continent != "" && !p.Continent.Valid() {
		return fmt.Errorf("unknown continent %q", p.Continent)
	}
	return nil
}

// GroupingParams defines the parameters for list_countries and list_cities
type GroupingParams struct {
	Filter filter.Criteria `json:"filter"`
}

// Validate validates the parameters for list_countries and list_cities
func (p GroupingParams) Validate() error {
	return validateCriteria(p.Filter)
}

// CountryParams defines the parameters for regions_by_country
type CountryParams struct {
	CountryCode string `json:"countryCode"`
}

// Validate validates the parameters for regions_by_country
func (p CountryParams) Validate() error {
	if p.CountryCode == "" {
		return errors.New("countryCode is required")
	}
	return nil
}

// ContinentParams defines the parameters for regions_by_continent
type ContinentParams struct {
	Continent region.Continent `json:"continent"`
}

// Validate validates the parameters for regions_by_continent
func (p ContinentParams) Validate() error {
	if p.Continent == "" {
		return errors.New("continent is required")
	}
	if !p.Continent.Valid() {
		return fmt.Errorf("unknown continent %q", p.Continent)
	}
	return nil
}

// PolicyParams defines the parameters for evaluate_policy
type PolicyParams struct {
	Filter filter.Criteria `json:"filter"`
}

// Validate validates the parameters for evaluate_policy
func (p PolicyParams) Validate() error {
	return validateCriteria(p.Filter)
}
