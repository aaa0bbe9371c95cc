package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/catalog/catalogtest"
	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/pkg/region"
)

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func regionIDs(regions []region.Region) []string {
	return ids(regions, func(r region.Region) string { return r.ID })
}

func distanceIDs(ranked []RegionDistance) []string {
	return ids(ranked, func(r RegionDistance) string { return r.ID })
}

func TestDistanceKm(t *testing.T) {
	assert.Equal(t, 0, DistanceKm(48.8566, 2.3522, 48.8566, 2.3522))

	// Paris to Frankfurt is roughly 480 km.
	d := DistanceKm(48.8566, 2.3522, 50.1109, 8.6821)
	assert.InDelta(t, 479, d, 2)

	// Symmetric.
	assert.Equal(t, d, DistanceKm(50.1109, 8.6821, 48.8566, 2.3522))
}

func TestNearby_ParisClosestIsFranceCentral(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Nearby(snap, NearbyParams{Latitude: 48.8566, Longitude: 2.3522, Limit: 1})

	require.Len(t, got, 1)
	assert.Equal(t, "azure-francecentral", got[0].ID)
	assert.Equal(t, 0, got[0].DistanceKm)
}

func TestNearby_SortedAscendingWithoutBounds(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Nearby(snap, NearbyParams{Latitude: 40.0, Longitude: -80.0})

	require.Len(t, got, len(snap.Regions()))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DistanceKm, got[i].DistanceKm)
	}
}

func TestNearby_TiesKeepDatasetOrder(t *testing.T) {
	at := func(id string, lat, lng float64) region.Region {
		return region.Region{ID: id, Provider: "aws", Location: region.Location{Latitude: lat, Longitude: lng}}
	}
	snap := catalog.NewSnapshot(region.Dataset{
		Providers: catalogtest.Providers(),
		Regions: []region.Region{
			at("far", 40, 40),
			at("z", 10, 10),
			at("a", 10, 10),
			at("m", 10, 10),
		},
	})

	got := Nearby(snap, NearbyParams{Latitude: 0, Longitude: 0})

	require.Len(t, got, 4)
	assert.Equal(t, []string{"z", "a", "m", "far"}, distanceIDs(got))
	assert.Equal(t, got[0].DistanceKm, got[2].DistanceKm)
}

func TestNearby_MaxDistanceIsInclusive(t *testing.T) {
	snap := catalogtest.Snapshot()
	all := Nearby(snap, NearbyParams{Latitude: 48.8566, Longitude: 2.3522})
	require.GreaterOrEqual(t, len(all), 3)

	bound := float64(all[1].DistanceKm)
	got := Nearby(snap, NearbyParams{Latitude: 48.8566, Longitude: 2.3522, MaxDistanceKm: &bound})

	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, all[1].ID, got[1].ID)
	for _, r := range got {
		assert.LessOrEqual(t, float64(r.DistanceKm), bound)
	}
}

func TestNearby_BoundThenLimit(t *testing.T) {
	snap := catalogtest.Snapshot()
	bound := 300.0

	got := Nearby(snap, NearbyParams{Latitude: 48.8566, Longitude: 2.3522, MaxDistanceKm: &bound})
	assert.Equal(t, []string{"azure-francecentral", "ovh-gra"}, distanceIDs(got))

	got = Nearby(snap, NearbyParams{Latitude: 48.8566, Longitude: 2.3522, MaxDistanceKm: &bound, Limit: 1})
	assert.Equal(t, []string{"azure-francecentral"}, distanceIDs(got))
}

func TestNearby_AppliesFilterFirst(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Nearby(snap, NearbyParams{
		Latitude: 48.8566, Longitude: 2.3522, Limit: 1,
		Filter: filter.Criteria{Providers: []string{"gcp"}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "gcp-europe-west3", got[0].ID)
}

func TestNearby_Idempotent(t *testing.T) {
	snap := catalogtest.Snapshot()
	p := NearbyParams{Latitude: 35.0, Longitude: 139.0, Limit: 3}

	assert.Equal(t, Nearby(snap, p), Nearby(snap, p))
}

func TestSearch(t *testing.T) {
	snap := catalogtest.Snapshot()

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"name", SearchParams{Query: "frank"}, []string{"gcp-europe-west3"}},
		{"code", SearchParams{Query: "us-"}, []string{"aws-us-east-1", "aws-us-west-2", "gcp-us-central1"}},
		{"country ignores case", SearchParams{Query: "FRANCE"}, []string{"azure-francecentral", "ovh-gra"}},
		{"city", SearchParams{Query: "council"}, []string{"gcp-us-central1"}},
		{"provider id", SearchParams{Query: "ovh"}, []string{"ovh-gra"}},
		{"narrowed by provider", SearchParams{Query: "france", Providers: []string{"ovh"}}, []string{"ovh-gra"}},
		{"limit", SearchParams{Query: "france", Limit: 1}, []string{"azure-francecentral"}},
		{"no match", SearchParams{Query: "atlantis"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, regionIDs(Search(snap, tt.params)))
		})
	}
}

func TestCompliant_RequiresEveryCertification(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Compliant(snap, ComplianceParams{Certifications: []string{"HIPAA", "SOC2"}})

	assert.Equal(t, []string{"aws-us-east-1", "aws-us-west-2", "gcp-us-central1"}, regionIDs(got))
}

func TestCompliant_PinOverridesFilterCompliance(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Compliant(snap, ComplianceParams{
		Certifications: []string{"FedRAMP"},
		Filter: filter.Criteria{
			Compliance: []string{"ISO27001"},
			Providers:  []string{"azure"},
		},
	})

	assert.Equal(t, []string{"azure-usgovvirginia"}, regionIDs(got))
}

func TestSustainable(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Sustainable(snap, SustainabilityParams{})
	assert.Equal(t, []string{"aws-us-west-2", "gcp-europe-west3"}, regionIDs(got))

	got = Sustainable(snap, SustainabilityParams{Filter: filter.Criteria{Continents: []region.Continent{region.Europe}}})
	assert.Equal(t, []string{"gcp-europe-west3"}, regionIDs(got))
}

func TestGPU(t *testing.T) {
	snap := catalogtest.Snapshot()

	assert.Equal(t,
		[]string{"aws-us-east-1", "aws-us-west-2", "gcp-europe-west3", "gcp-us-central1"},
		regionIDs(GPU(snap, GPUParams{})))

	assert.Equal(t,
		[]string{"aws-us-east-1", "gcp-us-central1"},
		regionIDs(GPU(snap, GPUParams{GPUType: "H100"})))

	assert.Equal(t,
		[]string{"aws-us-east-1", "gcp-us-central1"},
		regionIDs(GPU(snap, GPUParams{GPUType: "h100"})))

	assert.Empty(t, GPU(snap, GPUParams{GPUType: "MI300"}))
}

func TestCoverage_OmitsProvidersWithoutMatches(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := Coverage(snap, CoverageParams{CountryCode: "FR"})

	assert.Equal(t, map[string]int{"azure": 1, "ovh": 1}, got)
	assert.NotContains(t, got, "aws")
}

func TestCoverage_CountryAndContinentNarrowTogether(t *testing.T) {
	snap := catalogtest.Snapshot()

	assert.Equal(t, map[string]int{"gcp": 1, "azure": 1, "ovh": 1},
		Coverage(snap, CoverageParams{Continent: region.Europe}))

	assert.Empty(t, Coverage(snap, CoverageParams{CountryCode: "US", Continent: region.Europe}))

	assert.Equal(t, map[string]int{"aws": 2, "azure": 2, "gcp": 2, "ovh": 1, "ghost": 1},
		Coverage(snap, CoverageParams{}))
}

func TestCountries_DescendingWithFirstSeenTies(t *testing.T) {
	got := Countries(catalogtest.Regions())

	assert.Equal(t, []CountryCount{
		{CountryCode: "US", Country: "United States", Count: 4},
		{CountryCode: "FR", Country: "France", Count: 2},
		{CountryCode: "DE", Country: "Germany", Count: 1},
		{CountryCode: "JP", Country: "Japan", Count: 1},
	}, got)
}

func TestCountries_ThreeToOne(t *testing.T) {
	regions := []region.Region{
		{ID: "a", Location: region.Location{CountryCode: "US", Country: "United States"}},
		{ID: "b", Location: region.Location{CountryCode: "DE", Country: "Germany"}},
		{ID: "c", Location: region.Location{CountryCode: "US", Country: "USA"}},
		{ID: "d", Location: region.Location{CountryCode: "US", Country: "United States"}},
	}

	got := Countries(regions)

	assert.Equal(t, []CountryCount{
		{CountryCode: "US", Country: "United States", Count: 3},
		{CountryCode: "DE", Country: "Germany", Count: 1},
	}, got)
}

func TestCities_KeyedByCityAndCountry(t *testing.T) {
	regions := []region.Region{
		{ID: "1", Provider: "aws", Location: region.Location{City: "London", Country: "United Kingdom", CountryCode: "GB"}},
		{ID: "2", Provider: "hetzner", Location: region.Location{City: "London", Country: "Canada", CountryCode: "CA"}},
		{ID: "3", Provider: "gcp", Location: region.Location{City: "London", Country: "United Kingdom", CountryCode: "GB"}},
		{ID: "4", Provider: "aws", Location: region.Location{City: "London", Country: "United Kingdom", CountryCode: "GB"}},
	}

	got := Cities(regions)

	require.Len(t, got, 2)
	assert.Equal(t, CityCount{
		City: "London", Country: "United Kingdom", CountryCode: "GB",
		Providers: []string{"aws", "gcp"}, Count: 3,
	}, got[0])
	assert.Equal(t, CityCount{
		City: "London", Country: "Canada", CountryCode: "CA",
		Providers: []string{"hetzner"}, Count: 1,
	}, got[1])
}

func TestCities_NamesWithSeparatorCharacters(t *testing.T) {
	regions := []region.Region{
		{ID: "1", Provider: "a", Location: region.Location{City: "Kansas City|MO", CountryCode: "US"}},
		{ID: "2", Provider: "b", Location: region.Location{City: "Kansas City", CountryCode: "MO|US"}},
		{ID: "3", Provider: "c", Location: region.Location{City: "St. John's, NL", CountryCode: "CA"}},
	}

	got := Cities(regions)

	require.Len(t, got, 3)
	assert.Equal(t, "Kansas City|MO", got[0].City)
	assert.Equal(t, "US", got[0].CountryCode)
	assert.Equal(t, "Kansas City", got[1].City)
	assert.Equal(t, "St. John's, NL", got[2].City)
}

func TestComputeStats(t *testing.T) {
	got := ComputeStats(catalogtest.Snapshot())

	assert.Equal(t, 8, got.TotalRegions)
	assert.Equal(t, 4, got.TotalProviders)
	assert.Equal(t, map[string]int{"aws": 2, "azure": 2, "gcp": 2, "ovh": 1, "ghost": 1}, got.ByProvider)
	assert.Equal(t, map[string]int{"US": 4, "FR": 2, "DE": 1, "JP": 1}, got.ByCountry)
	assert.Equal(t, map[string]int{"north-america": 4, "europe": 3, "asia": 1}, got.ByContinent)
	assert.Equal(t, map[string]int{"commercial": 7, "government": 1}, got.ByRegionType)
	assert.Equal(t, 4, got.GPURegions)
	assert.Equal(t, 2, got.CarbonNeutralRegions)
}

func TestListRegions(t *testing.T) {
	snap := catalogtest.Snapshot()

	assert.Len(t, ListRegions(snap, ListParams{}), 8)
	assert.Len(t, ListRegions(snap, ListParams{Limit: 3}), 3)
	assert.Equal(t, []string{"ovh-gra"},
		regionIDs(ListRegions(snap, ListParams{Filter: filter.Criteria{Tiers: []region.Tier{region.TierRegional}}})))
}

func TestListRegions_LimitedResultDoesNotShareSnapshot(t *testing.T) {
	snap := catalogtest.Snapshot()
	second := snap.Regions()[1].ID

	got := ListRegions(snap, ListParams{Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, len(got), cap(got))

	_ = append(got, region.Region{ID: "intruder"})

	assert.Equal(t, second, snap.Regions()[1].ID)
}

func TestListProviders(t *testing.T) {
	snap := catalogtest.Snapshot()

	got := ListProviders(snap, nil)
	require.Len(t, got, 4)
	assert.Equal(t, "aws", got[0].ID)
	assert.Equal(t, 2, got[0].RegionCount)
	assert.Equal(t, "ovh", got[3].ID)
	assert.Equal(t, 1, got[3].RegionCount)

	got = ListProviders(snap, []region.Tier{region.TierRegional})
	require.Len(t, got, 1)
	assert.Equal(t, "ovh", got[0].ID)
}

func TestGetProvider(t *testing.T) {
	snap := catalogtest.Snapshot()

	d, ok := GetProvider(snap, "gcp")
	require.True(t, ok)
	assert.Equal(t, "Google Cloud", d.Provider.Name)
	assert.Equal(t, []string{"gcp-europe-west3", "gcp-us-central1"}, regionIDs(d.Regions))

	// Regions exist for "ghost" but it has no provider record.
	_, ok = GetProvider(snap, "ghost")
	assert.False(t, ok)
}

func TestGetProvider_NoRegions(t *testing.T) {
	ds := catalogtest.Dataset()
	ds.Providers = append(ds.Providers, region.Provider{ID: "empty", Name: "Empty", Tier: region.TierSpecialized})
	snap := catalog.NewSnapshot(ds)

	d, ok := GetProvider(snap, "empty")
	require.True(t, ok)
	assert.NotNil(t, d.Regions)
	assert.Empty(t, d.Regions)
}

func TestInfo(t *testing.T) {
	got := Info(catalogtest.Snapshot())

	assert.Equal(t, region.SourceBundled, got.Source)
	assert.Equal(t, 8, got.RegionCount)
	assert.Equal(t, 4, got.ProviderCount)
	assert.Equal(t, 8, got.IndexedRegions)
	assert.Equal(t, "2026-01-15", got.Metadata.LastUpdated)
	assert.False(t, got.LoadedAt.IsZero())
}
