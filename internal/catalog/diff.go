package catalog

import (
	"reflect"
	"sort"

	"github.com/yairfalse/regiondex/pkg/region"
)

// ChangeKind classifies a region change between two snapshots.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// RegionChange is one region that differs between two snapshots.
type RegionChange struct {
	Kind   ChangeKind `json:"kind" yaml:"kind"`
	ID     string     `json:"id" yaml:"id"`
	Fields []string   `json:"fields,omitempty" yaml:"fields,omitempty"` // modified only
}

// Diff compares regions by id. It returns nil when prev is nil (nothing to
// compare against) and an empty slice when nothing changed. Changes are
// ordered by region id.
func Diff(prev, curr *Snapshot) []RegionChange {
	if prev == nil || curr == nil {
		return nil
	}

	changes := make([]RegionChange, 0)
	for _, id := range prev.RegionIDs() {
		before, _ := prev.Region(id)
		after, ok := curr.Region(id)
		if !ok {
			changes = append(changes, RegionChange{Kind: ChangeRemoved, ID: id})
			continue
		}
		if fields := changedFields(before, after); len(fields) > 0 {
			changes = append(changes, RegionChange{Kind: ChangeModified, ID: id, Fields: fields})
		}
	}
	for _, id := range curr.RegionIDs() {
		if _, ok := prev.Region(id); !ok {
			changes = append(changes, RegionChange{Kind: ChangeAdded, ID: id})
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].ID < changes[j].ID
	})
	return changes
}

// changedFields lists the JSON names of the fields that differ. A nil list
// and an empty one compare equal.
func changedFields(a, b region.Region) []string {
	a, b = normalizeLists(a), normalizeLists(b)
	fields := []struct {
		name       string
		prev, curr any
	}{
		{"provider", a.Provider, b.Provider},
		{"code", a.Code, b.Code},
		{"name", a.Name, b.Name},
		{"regionType", a.RegionType, b.RegionType},
		{"location", a.Location, b.Location},
		{"availabilityZones", a.AvailabilityZones, b.AvailabilityZones},
		{"launchDate", a.LaunchDate, b.LaunchDate},
		{"status", a.Status, b.Status},
		{"compliance", a.Compliance, b.Compliance},
		{"sustainability", a.Sustainability, b.Sustainability},
		{"network", a.Network, b.Network},
		{"services", a.Services, b.Services},
		{"sovereignty", a.Sovereignty, b.Sovereignty},
	}

	var changed []string
	for _, f := range fields {
		if !reflect.DeepEqual(f.prev, f.curr) {
			changed = append(changed, f.name)
		}
	}
	return changed
}

// CountChanges tallies changes by kind.
func CountChanges(changes []RegionChange) map[ChangeKind]int {
	counts := make(map[ChangeKind]int, 3)
	for _, c := range changes {
		counts[c.Kind]++
	}
	return counts
}

// normalizeLists maps empty list fields to nil. Services is copied before
// it is touched.
func normalizeLists(r region.Region) region.Region {
	if len(r.Compliance) == 0 {
		r.Compliance = nil
	}
	if r.Services != nil && r.Services.GPUTypes != nil && len(r.Services.GPUTypes) == 0 {
		svc := *r.Services
		svc.GPUTypes = nil
		r.Services = &svc
	}
	return r
}
