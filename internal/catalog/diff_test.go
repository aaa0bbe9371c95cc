package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/catalog/catalogtest"
	"github.com/yairfalse/regiondex/pkg/region"
)

func TestDiff_NoBaseline(t *testing.T) {
	assert.Nil(t, catalog.Diff(nil, catalogtest.Snapshot()))
}

func TestDiff_NoChanges(t *testing.T) {
	changes := catalog.Diff(catalogtest.Snapshot(), catalogtest.Snapshot())
	require.NotNil(t, changes)
	assert.Empty(t, changes, "identical snapshots should produce no changes")
}

func TestDiff_AddedRemovedModified(t *testing.T) {
	prev := catalogtest.Snapshot()

	ds := catalogtest.Dataset()
	var regions []region.Region
	for _, r := range ds.Regions {
		switch r.ID {
		case "ghost-tokyo":
			continue
		case "ovh-gra":
			r.Status = region.StatusDeprecated
			r.Compliance = append([]string{"SecNumCloud"}, r.Compliance...)
		}
		regions = append(regions, r)
	}
	regions = append(regions, region.Region{ID: "aws-eu-north-1", Provider: "aws", Code: "eu-north-1"})
	ds.Regions = regions

	changes := catalog.Diff(prev, catalog.NewSnapshot(ds))

	assert.Equal(t, []catalog.RegionChange{
		{Kind: catalog.ChangeAdded, ID: "aws-eu-north-1"},
		{Kind: catalog.ChangeRemoved, ID: "ghost-tokyo"},
		{Kind: catalog.ChangeModified, ID: "ovh-gra", Fields: []string{"status", "compliance"}},
	}, changes)

	assert.Equal(t, map[catalog.ChangeKind]int{
		catalog.ChangeAdded:    1,
		catalog.ChangeRemoved:  1,
		catalog.ChangeModified: 1,
	}, catalog.CountChanges(changes))
}

func TestDiff_OptionalBlockChange(t *testing.T) {
	prev := catalogtest.Snapshot()

	ds := catalogtest.Dataset()
	ds.Regions[3].Sustainability = &region.Sustainability{CarbonNeutral: true}

	changes := catalog.Diff(prev, catalog.NewSnapshot(ds))
	require.Len(t, changes, 1)
	assert.Equal(t, "azure-francecentral", changes[0].ID)
	assert.Equal(t, []string{"sustainability"}, changes[0].Fields)
}

func TestDiff_NilAndEmptyListsAreEqual(t *testing.T) {
	withLists := func(compliance, gpuTypes []string) *catalog.Snapshot {
		ds := catalogtest.Dataset()
		for i := range ds.Regions {
			if ds.Regions[i].ID != "ovh-gra" {
				continue
			}
			ds.Regions[i].Compliance = compliance
			ds.Regions[i].Services = &region.Services{Compute: true, GPUTypes: gpuTypes}
		}
		return catalog.NewSnapshot(ds)
	}

	assert.Empty(t, catalog.Diff(withLists(nil, nil), withLists([]string{}, []string{})))
	assert.Empty(t, catalog.Diff(withLists([]string{}, []string{}), withLists(nil, nil)))

	changes := catalog.Diff(withLists(nil, nil), withLists([]string{"ISO27001"}, nil))
	require.Len(t, changes, 1)
	assert.Equal(t, []string{"compliance"}, changes[0].Fields)
}

func TestDiff_LeavesSnapshotsUntouched(t *testing.T) {
	ds := catalogtest.Dataset()
	ds.Regions[0].Services = &region.Services{GPU: true, GPUTypes: []string{}}
	prev := catalog.NewSnapshot(ds)

	catalog.Diff(prev, catalogtest.Snapshot())

	r, ok := prev.Region(ds.Regions[0].ID)
	require.True(t, ok)
	assert.NotNil(t, r.Services.GPUTypes)
}
