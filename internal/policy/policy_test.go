package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/regiondex/internal/catalog/catalogtest"
	"github.com/yairfalse/regiondex/pkg/region"
)

const euSovereignPolicy = `package regiondex

import rego.v1

default allow := false

allow if {
	input.location.continent == "europe"
	"ISO27001" in input.compliance
}

allow if {
	input.sovereignty.residencyGuarantee
}
`

func ids(regions []region.Region) []string {
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		out = append(out, r.ID)
	}
	return out
}

func TestEngine_Allowed(t *testing.T) {
	ctx := context.Background()
	e, err := Compile(ctx, "eu.rego", euSovereignPolicy, nil)
	require.NoError(t, err)

	got, err := e.Allowed(ctx, catalogtest.Regions())
	require.NoError(t, err)

	assert.Equal(t, []string{"gcp-europe-west3", "azure-usgovvirginia", "ovh-gra"}, ids(got))
}

func TestEngine_UndefinedIsDenial(t *testing.T) {
	ctx := context.Background()
	e, err := Compile(ctx, "narrow.rego", `package regiondex

import rego.v1

allow if input.provider == "ovh"
`, nil)
	require.NoError(t, err)

	regions := catalogtest.Regions()
	ok, err := e.Allow(ctx, regions[0])
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := e.Allowed(ctx, regions)
	require.NoError(t, err)
	assert.Equal(t, []string{"ovh-gra"}, ids(got))
}

func TestEngine_NonBooleanAllowIsAnError(t *testing.T) {
	ctx := context.Background()
	e, err := Compile(ctx, "bad.rego", `package regiondex

allow := "yes"
`, nil)
	require.NoError(t, err)

	_, err = e.Allowed(ctx, catalogtest.Regions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want bool")
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(context.Background(), "broken.rego", "package regiondex\n\nallow if {", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.rego")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eu.rego")
	require.NoError(t, os.WriteFile(path, []byte(euSovereignPolicy), 0600))

	e, err := LoadFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, e.Name())

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.rego"), nil)
	require.Error(t, err)
}
