package catalog

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/yairfalse/regiondex/pkg/region"
)

// Store publishes the current snapshot. Readers load it once per operation
// and see either the old snapshot or the new one in full, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding a snapshot of ds.
func NewStore(ds region.Dataset) *Store {
	s := &Store{}
	s.Replace(ds)
	return s
}

// Current returns the published snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace builds a fresh snapshot from ds and swaps it in.
func (s *Store) Replace(ds region.Dataset) *Snapshot {
	next := NewSnapshot(ds)
	prev := s.current.Swap(next)

	event := log.Info().
		Str("source", string(next.Source())).
		Int("regions", len(next.Regions())).
		Int("providers", len(next.Providers()))
	if prev != nil {
		event = event.Int("previous_regions", len(prev.Regions()))
	}
	event.Msg("catalog snapshot published")

	return next
}
