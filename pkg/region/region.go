// Package region defines the catalog data model for regiondex.
package region

import "time"

// RegionType classifies who a region is built for.
type RegionType string

const (
	TypeCommercial       RegionType = "commercial"
	TypeGovernment       RegionType = "government"
	TypeSovereign        RegionType = "sovereign"
	TypeChina            RegionType = "china"
	TypeMulticloudHosted RegionType = "multicloud-hosted"
)

// Status is the lifecycle state of a region.
type Status string

const (
	StatusGA         Status = "ga"
	StatusPreview    Status = "preview"
	StatusLimited    Status = "limited"
	StatusDeprecated Status = "deprecated"
)

// Continent groups regions geographically.
type Continent string

const (
	NorthAmerica Continent = "north-america"
	SouthAmerica Continent = "south-america"
	Europe       Continent = "europe"
	Asia         Continent = "asia"
	MiddleEast   Continent = "middle-east"
	Africa       Continent = "africa"
	Oceania      Continent = "oceania"
)

// Continents returns every known continent.
func Continents() []Continent {
	return []Continent{NorthAmerica, SouthAmerica, Europe, Asia, MiddleEast, Africa, Oceania}
}

// Valid reports whether c is a known continent.
func (c Continent) Valid() bool {
	for _, k := range Continents() {
		if c == k {
			return true
		}
	}
	return false
}

// Tier is the coarse market position of a provider.
type Tier string

const (
	TierHyperscaler Tier = "hyperscaler"
	TierMajor       Tier = "major"
	TierSpecialized Tier = "specialized"
	TierRegional    Tier = "regional"
)

// Source records where a dataset came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceBundled Source = "bundled"
)

// Region is a single data-center location operated by one provider.
// Optional blocks are pointers: nil means the catalog carries no data for them.
type Region struct {
	ID                string          `json:"id" yaml:"id"`             // e.g. "aws-us-east-1"
	Provider          string          `json:"provider" yaml:"provider"` // provider id, e.g. "aws"
	Code              string          `json:"code" yaml:"code"`         // provider-local code, e.g. "us-east-1"
	Name              string          `json:"name" yaml:"name"`
	RegionType        RegionType      `json:"regionType" yaml:"regionType"`
	Location          Location        `json:"location" yaml:"location"`
	AvailabilityZones *int            `json:"availabilityZones,omitempty" yaml:"availabilityZones,omitempty"`
	LaunchDate        string          `json:"launchDate,omitempty" yaml:"launchDate,omitempty"`
	Status            Status          `json:"status" yaml:"status"`
	Compliance        []string        `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Sustainability    *Sustainability `json:"sustainability,omitempty" yaml:"sustainability,omitempty"`
	Network           *Network        `json:"network,omitempty" yaml:"network,omitempty"`
	Services          *Services       `json:"services,omitempty" yaml:"services,omitempty"`
	Sovereignty       *Sovereignty    `json:"sovereignty,omitempty" yaml:"sovereignty,omitempty"`
}

// Location places a region on the map.
type Location struct {
	Country     string    `json:"country" yaml:"country"`
	CountryCode string    `json:"countryCode" yaml:"countryCode"` // ISO 3166-1 alpha-2
	City        string    `json:"city" yaml:"city"`
	Latitude    float64   `json:"latitude" yaml:"latitude"`
	Longitude   float64   `json:"longitude" yaml:"longitude"`
	Continent   Continent `json:"continent" yaml:"continent"`
}

// Sustainability holds published energy metrics.
type Sustainability struct {
	RenewablePercentage *float64 `json:"renewablePercentage,omitempty" yaml:"renewablePercentage,omitempty"`
	CarbonNeutral       bool     `json:"carbonNeutral" yaml:"carbonNeutral"`
	PUE                 *float64 `json:"pue,omitempty" yaml:"pue,omitempty"`
}

// Network holds connectivity flags.
type Network struct {
	DirectConnect bool `json:"directConnect" yaml:"directConnect"`
	PrivateLink   bool `json:"privateLink" yaml:"privateLink"`
	EdgeLocations bool `json:"edgeLocations" yaml:"edgeLocations"`
}

// Services holds service-availability flags.
type Services struct {
	Compute  bool     `json:"compute" yaml:"compute"`
	Storage  bool     `json:"storage" yaml:"storage"`
	Database bool     `json:"database" yaml:"database"`
	AIML     bool     `json:"aiMl" yaml:"aiMl"`
	GPU      bool     `json:"gpu" yaml:"gpu"`
	GPUTypes []string `json:"gpuTypes,omitempty" yaml:"gpuTypes,omitempty"`
}

// Sovereignty describes data-residency guarantees for sovereign and government offerings.
type Sovereignty struct {
	DataResidency            string `json:"dataResidency,omitempty" yaml:"dataResidency,omitempty"`
	ResidencyGuarantee       bool   `json:"residencyGuarantee" yaml:"residencyGuarantee"`
	GovernmentClassification string `json:"governmentClassification,omitempty" yaml:"governmentClassification,omitempty"`
	Operator                 string `json:"operator,omitempty" yaml:"operator,omitempty"`
	HostProvider             string `json:"hostProvider,omitempty" yaml:"hostProvider,omitempty"`
}

// Provider is a cloud operator owning zero or more regions.
type Provider struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Tier            Tier     `json:"tier" yaml:"tier"`
	Website         string   `json:"website" yaml:"website"`
	DocsURL         string   `json:"docsUrl,omitempty" yaml:"docsUrl,omitempty"`
	StatusURL       string   `json:"statusUrl,omitempty" yaml:"statusUrl,omitempty"`
	Description     string   `json:"description" yaml:"description"`
	Specializations []string `json:"specializations,omitempty" yaml:"specializations,omitempty"`
}

// Metadata describes the dataset as a whole.
type Metadata struct {
	LastUpdated    string            `json:"lastUpdated" yaml:"lastUpdated"`
	TotalRegions   int               `json:"totalRegions" yaml:"totalRegions"`
	TotalProviders int               `json:"totalProviders" yaml:"totalProviders"`
	Sources        map[string]string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Dataset is what a loader hands to the catalog.
type Dataset struct {
	Regions   []Region   `json:"regions" yaml:"regions"`
	Providers []Provider `json:"providers" yaml:"providers"`
	Metadata  Metadata   `json:"metadata" yaml:"metadata"`
	Source    Source     `json:"source" yaml:"source"`
	FetchedAt time.Time  `json:"fetchedAt" yaml:"fetchedAt"`
}

// Zones returns the availability-zone count, or 0 when the catalog has none.
func (r Region) Zones() int {
	if r.AvailabilityZones == nil {
		return 0
	}
	return *r.AvailabilityZones
}

// HasGPU reports whether the region advertises GPU capacity.
func (r Region) HasGPU() bool {
	return r.Services != nil && r.Services.GPU
}

// IsCarbonNeutral reports whether the region is marked carbon neutral.
func (r Region) IsCarbonNeutral() bool {
	return r.Sustainability != nil && r.Sustainability.CarbonNeutral
}

// HasCompliance reports whether the region carries every given certification.
func (r Region) HasCompliance(required []string) bool {
	for _, want := range required {
		found := false
		for _, have := range r.Compliance {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
