// Package query implements the read-only operations over a catalog snapshot:
// listing, text search, nearest-region ranking, specialised filters, coverage
// comparison and aggregate statistics.
//
// Every function takes the snapshot explicitly and returns newly allocated
// results; nothing here mutates a snapshot.
package query

import (
	"strings"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/filter"
	"github.com/yairfalse/regiondex/pkg/region"
)

// SearchParams describes a text search.
type SearchParams struct {
	Query     string   `json:"query"`
	Providers []string `json:"providers,omitempty"`
	Limit     int      `json:"limit,omitempty"` // <= 0: no limit
}

// Search returns regions where the query is a case-insensitive substring of
// the name, code, city, country or provider id. Results keep dataset order.
func Search(snap *catalog.Snapshot, p SearchParams) []region.Region {
	candidates := filter.Apply(snap.Regions(), filter.Criteria{Providers: p.Providers}, snap)
	needle := strings.ToLower(p.Query)

	matches := make([]region.Region, 0)
	for _, r := range candidates {
		if !matchesText(r, needle) {
			continue
		}
		matches = append(matches, r)
		if p.Limit > 0 && len(matches) == p.Limit {
			break
		}
	}
	return matches
}

func matchesText(r region.Region, needle string) bool {
	for _, field := range []string{r.Name, r.Code, r.Location.City, r.Location.Country, r.Provider} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
