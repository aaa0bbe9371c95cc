package server

// RPC method names
const (
	MethodListRegions        = "list_regions"
	MethodGetRegion          = "get_region"
	MethodListProviders      = "list_providers"
	MethodGetProvider        = "get_provider"
	MethodFindNearby         = "find_nearby"
	MethodSearchRegions      = "search_regions"
	MethodFindCompliant      = "find_compliant_regions"
	MethodFindSustainable    = "find_sustainable_regions"
	MethodFindGPU            = "find_gpu_regions"
	MethodCompareCoverage    = "compare_coverage"
	MethodListCountries      = "list_countries"
	MethodListCities         = "list_cities"
	MethodGetStats           = "get_stats"
	MethodRegionsByCountry   = "regions_by_country"
	MethodRegionsByContinent = "regions_by_continent"
	MethodDataInfo           = "data_info"
	MethodRefreshData        = "refresh_data"
	MethodEvaluatePolicy     = "evaluate_policy"
)

// Methods lists every RPC method in a stable order.
func Methods() []string {
	return []string{
		MethodListRegions, MethodGetRegion, MethodListProviders, MethodGetProvider,
		MethodFindNearby, MethodSearchRegions, MethodFindCompliant, MethodFindSustainable,
		MethodFindGPU, MethodCompareCoverage, MethodListCountries, MethodListCities,
		MethodGetStats, MethodRegionsByCountry, MethodRegionsByContinent, MethodDataInfo,
		MethodRefreshData, MethodEvaluatePolicy,
	}
}

// Common error messages
const (
	ErrMsgInvalidParams    = "Invalid parameters"
	ErrMsgInvalidReqFormat = "Invalid request format"
	ErrMsgMethodRequired   = "Method is required"
	ErrMsgUnknownMethod    = "Unknown method"
	ErrMsgInternal         = "Internal error"

	ErrMsgRegionNotFound   = "Region not found"
	ErrMsgProviderNotFound = "Provider not found"
)
