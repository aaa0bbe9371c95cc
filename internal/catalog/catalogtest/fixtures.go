// Package catalogtest provides small, hand-checked datasets for tests.
package catalogtest

import (
	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/pkg/region"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Providers returns the fixture provider table. "ghost" is deliberately absent.
func Providers() []region.Provider {
	return []region.Provider{
		{ID: "aws", Name: "Amazon Web Services", Tier: region.TierHyperscaler, Website: "https://aws.amazon.com"},
		{ID: "azure", Name: "Microsoft Azure", Tier: region.TierHyperscaler, Website: "https://azure.microsoft.com"},
		{ID: "gcp", Name: "Google Cloud", Tier: region.TierHyperscaler, Website: "https://cloud.google.com"},
		{ID: "ovh", Name: "OVHcloud", Tier: region.TierRegional, Website: "https://www.ovhcloud.com"},
	}
}

// Regions returns the fixture regions in a fixed order.
//
//	US x4, FR x2, DE x1, JP x1
func Regions() []region.Region {
	return []region.Region{
		{
			ID: "aws-us-east-1", Provider: "aws", Code: "us-east-1", Name: "US East (N. Virginia)",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "United States", CountryCode: "US", City: "Ashburn",
				Latitude: 39.0438, Longitude: -77.4874, Continent: region.NorthAmerica,
			},
			AvailabilityZones: Ptr(6),
			Status:            region.StatusGA,
			Compliance:        []string{"HIPAA", "SOC2", "PCI-DSS", "FedRAMP"},
			Sustainability:    &region.Sustainability{RenewablePercentage: Ptr(90.0), PUE: Ptr(1.2)},
			Services:          &region.Services{Compute: true, GPU: true, GPUTypes: []string{"NVIDIA A100", "NVIDIA H100"}},
		},
		{
			ID: "aws-us-west-2", Provider: "aws", Code: "us-west-2", Name: "US West (Oregon)",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "United States", CountryCode: "US", City: "Boardman",
				Latitude: 45.8399, Longitude: -119.7006, Continent: region.NorthAmerica,
			},
			AvailabilityZones: Ptr(4),
			Status:            region.StatusGA,
			Compliance:        []string{"HIPAA", "SOC2"},
			Sustainability:    &region.Sustainability{CarbonNeutral: true, RenewablePercentage: Ptr(100.0)},
			Services:          &region.Services{Compute: true, GPU: true, GPUTypes: []string{"NVIDIA A100"}},
		},
		{
			ID: "gcp-europe-west3", Provider: "gcp", Code: "europe-west3", Name: "Frankfurt",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "Germany", CountryCode: "DE", City: "Frankfurt",
				Latitude: 50.1109, Longitude: 8.6821, Continent: region.Europe,
			},
			AvailabilityZones: Ptr(3),
			Status:            region.StatusGA,
			Compliance:        []string{"SOC2", "ISO27001", "C5"},
			Sustainability:    &region.Sustainability{CarbonNeutral: true},
			Services:          &region.Services{Compute: true, GPU: true, GPUTypes: []string{"NVIDIA L4"}},
		},
		{
			ID: "azure-francecentral", Provider: "azure", Code: "francecentral", Name: "France Central",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "France", CountryCode: "FR", City: "Paris",
				Latitude: 48.8566, Longitude: 2.3522, Continent: region.Europe,
			},
			AvailabilityZones: Ptr(3),
			Status:            region.StatusGA,
			Compliance:        []string{"SOC2", "HDS"},
			Services:          &region.Services{Compute: true},
		},
		{
			ID: "azure-usgovvirginia", Provider: "azure", Code: "usgovvirginia", Name: "US Gov Virginia",
			RegionType: region.TypeGovernment,
			Location: region.Location{
				Country: "United States", CountryCode: "US", City: "Boydton",
				Latitude: 36.6676, Longitude: -78.3875, Continent: region.NorthAmerica,
			},
			Status:     region.StatusGA,
			Compliance: []string{"FedRAMP", "SOC2"},
			Sovereignty: &region.Sovereignty{
				DataResidency: "US", ResidencyGuarantee: true, GovernmentClassification: "FedRAMP High",
			},
		},
		{
			ID: "ovh-gra", Provider: "ovh", Code: "gra", Name: "Gravelines",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "France", CountryCode: "FR", City: "Gravelines",
				Latitude: 50.9871, Longitude: 2.1255, Continent: region.Europe,
			},
			Status:     region.StatusGA,
			Compliance: []string{"ISO27001"},
		},
		{
			ID: "ghost-tokyo", Provider: "ghost", Code: "tokyo", Name: "Tokyo",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "Japan", CountryCode: "JP", City: "Tokyo",
				Latitude: 35.6762, Longitude: 139.6503, Continent: region.Asia,
			},
			Status: region.StatusPreview,
		},
		{
			ID: "gcp-us-central1", Provider: "gcp", Code: "us-central1", Name: "Iowa",
			RegionType: region.TypeCommercial,
			Location: region.Location{
				Country: "United States", CountryCode: "US", City: "Council Bluffs",
				Latitude: 41.2619, Longitude: -95.8608, Continent: region.NorthAmerica,
			},
			AvailabilityZones: Ptr(4),
			Status:            region.StatusGA,
			Compliance:        []string{"HIPAA", "SOC2", "PCI-DSS"},
			Services:          &region.Services{Compute: true, GPU: true, GPUTypes: []string{"NVIDIA H100", "Google TPU v5e"}},
		},
	}
}

// Dataset returns the fixture regions and providers as a bundled dataset.
func Dataset() region.Dataset {
	return region.Dataset{
		Regions:   Regions(),
		Providers: Providers(),
		Metadata: region.Metadata{
			LastUpdated:    "2026-01-15",
			TotalRegions:   8,
			TotalProviders: 4,
		},
		Source: region.SourceBundled,
	}
}

// Snapshot returns a snapshot over Dataset.
func Snapshot() *catalog.Snapshot {
	return catalog.NewSnapshot(Dataset())
}
