package query

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/pkg/region"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// NearbyParams describes a nearest-region lookup.
type NearbyParams struct {
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Limit         int             `json:"limit,omitempty"`         // <= 0: no limit
	MaxDistanceKm *float64        `json:"maxDistanceKm,omitempty"` // inclusive
	Filter        filter.Criteria `json:"filter"`
}

// RegionDistance is a region annotated with its rounded distance to the target.
type RegionDistance struct {
	region.Region `yaml:",inline"`
	DistanceKm    int `json:"distanceKm" yaml:"distanceKm"`
}

// DistanceKm returns the Haversine distance between two points, rounded to
// the nearest kilometre.
func DistanceKm(lat1, lng1, lat2, lng2 float64) int {
	return int(math.Round(haversine(s2.LatLngFromDegrees(lat1, lng1), s2.LatLngFromDegrees(lat2, lng2))))
}

func haversine(a, b s2.LatLng) float64 {
	dLat := (b.Lat - a.Lat).Radians()
	dLng := (b.Lng - a.Lng).Radians()

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(a.Lat.Radians())*math.Cos(b.Lat.Radians())*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Nearby ranks regions by distance to the target, closest first.
// Equal distances keep dataset order. Without Limit and MaxDistanceKm every
// candidate is returned.
func Nearby(snap *catalog.Snapshot, p NearbyParams) []RegionDistance {
	candidates := filter.Apply(snap.Regions(), p.Filter, snap)

	ranked := make([]RegionDistance, 0, len(candidates))
	for _, r := range candidates {
		ranked = append(ranked, RegionDistance{
			Region:     r,
			DistanceKm: DistanceKm(p.Latitude, p.Longitude, r.Location.Latitude, r.Location.Longitude),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if p.MaxDistanceKm != nil {
		bound := *p.MaxDistanceKm
		cut := sort.Search(len(ranked), func(i int) bool {
			return float64(ranked[i].DistanceKm) > bound
		})
		ranked = ranked[:cut]
	}

	if p.Limit > 0 && len(ranked) > p.Limit {
		ranked = ranked[:p.Limit]
	}

	return ranked
}
