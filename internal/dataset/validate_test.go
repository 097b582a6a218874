// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/roadgraph/pkg/types"
)

func scanOne(t *testing.T, root string) types.Region {
	t.Helper()
	result, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Regions, 1)
	return result.Regions[0]
}

func TestValidateRegionOK(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 64, allKinds()...)

	problems := ValidateRegion(scanOne(t, root), 64)
	assert.Empty(t, problems)
}

func TestValidateRegionSizeMismatch(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 64, allKinds()...)

	problems := ValidateRegion(scanOne(t, root), 128)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Detail, "configured size 128")
}

func TestValidateRegionNonSquareImage(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 64, types.FileGT, types.FileGraph)
	writePNG(t, filepath.Join(root, "Boston_region_0_sat.png"), 64, 32)

	problems := ValidateRegion(scanOne(t, root), 0)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0].Detail, "not square")
}

func TestValidateRegionCorruptImage(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 64, types.FileGT, types.FileGraph)
	satPath := filepath.Join(root, "Boston_region_0_sat.png")
	require.NoError(t, os.WriteFile(satPath, []byte("not a png"), 0o644))

	problems := ValidateRegion(scanOne(t, root), 0)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0].Detail, "sat image")
}

func TestValidateRegionCorruptSatStillChecksGT(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 64, types.FileGraph)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "Boston_region_0_sat.png"), []byte("not a png"), 0o644))
	writePNG(t, filepath.Join(root, "Boston_region_0_gt.png"), 64, 32)

	problems := ValidateRegion(scanOne(t, root), 0)
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0].Detail, "sat image")
	assert.Contains(t, problems[1].Detail, "gt image is not square")
}

func TestValidateRegionEmptyGraph(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 32, types.FileSat, types.FileGT)
	graphPath := filepath.Join(root, "Boston_region_0_refine_gt_graph.p")
	// A pickled empty dict: a loadable graph with no nodes.
	require.NoError(t, os.WriteFile(graphPath, []byte("(d."), 0o644))

	problems := ValidateRegion(scanOne(t, root), 32)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Detail, "graph is empty")
}

func TestValidateAll(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 32, allKinds()...)
	writeRegion(t, root, "Boston", 1, 32, types.FileSat) // gt and graph missing

	result, err := Scan(root)
	require.NoError(t, err)

	problems := ValidateAll(result, 32)
	require.Len(t, problems, 2)
	for _, p := range problems {
		assert.Equal(t, "Boston_region_1", p.Region)
		assert.Contains(t, p.Detail, "missing")
	}
}

func TestProblemString(t *testing.T) {
	p := Problem{Region: "Boston_region_1", Detail: "missing gt.png"}
	assert.Equal(t, "Boston_region_1: missing gt.png", fmt.Sprint(p))
}
