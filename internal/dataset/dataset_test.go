// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/roadgraph/pkg/types"
)

// --- test helpers ---

// writePNG writes a w x h grayscale PNG.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

// writeGraphPickle writes a protocol-0 pickle of a two-node adjacency
// dict, the minimal loadable ground-truth graph.
func writeGraphPickle(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("(d")
	buf.WriteString("(I0\nI0\nt(l(I0\nI5\ntas")
	buf.WriteString("(I0\nI5\nt(l(I0\nI0\ntas")
	buf.WriteString(".")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeRegion creates the named subset of a region's files.
func writeRegion(t *testing.T, root, city string, id, imageSize int, kinds ...types.RegionFileKind) {
	t.Helper()
	for _, kind := range kinds {
		path := filepath.Join(root, fmt.Sprintf("%s_region_%d_%s", city, id, kind))
		switch kind {
		case types.FileSat, types.FileGT:
			writePNG(t, path, imageSize, imageSize)
		case types.FileGraph:
			writeGraphPickle(t, path)
		}
	}
}

func allKinds() []types.RegionFileKind {
	return []types.RegionFileKind{types.FileSat, types.FileGT, types.FileGraph}
}

// --- tests ---

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		wantCity string
		wantID   int
		wantKind types.RegionFileKind
		wantErr  bool
	}{
		{file: "Boston_region_0_sat.png", wantCity: "Boston", wantID: 0, wantKind: types.FileSat},
		{file: "Boston_region_12_gt.png", wantCity: "Boston", wantID: 12, wantKind: types.FileGT},
		{file: "Boston_region_3_refine_gt_graph.p", wantCity: "Boston", wantID: 3, wantKind: types.FileGraph},
		{name: "city with underscores", file: "New_York_region_7_sat.png", wantCity: "New_York", wantID: 7, wantKind: types.FileSat},
		{name: "no marker", file: "readme.txt", wantErr: true},
		{name: "empty city", file: "_region_3_sat.png", wantErr: true},
		{name: "non-numeric id", file: "Boston_region_abc_sat.png", wantErr: true},
		{name: "unknown suffix", file: "Boston_region_3_depth.png", wantErr: true},
		{name: "missing suffix", file: "Boston_region_3", wantErr: true},
	}

	for _, tt := range tests {
		name := tt.name
		if name == "" {
			name = tt.file
		}
		t.Run(name, func(t *testing.T) {
			city, id, kind, err := parseFileName(tt.file)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCity, city)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Boston", 0, 16, allKinds()...)
	writeRegion(t, root, "Boston", 1, 16, allKinds()...)
	writeRegion(t, root, "Amsterdam", 2, 16, types.FileSat, types.FileGT) // graph missing
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	result, err := Scan(root)
	require.NoError(t, err)

	require.Len(t, result.Regions, 2)
	assert.Equal(t, "Boston_region_0", result.Regions[0].Name())
	assert.Equal(t, "Boston_region_1", result.Regions[1].Name())
	assert.True(t, result.Regions[0].Complete())

	require.Len(t, result.Incomplete, 1)
	assert.Equal(t, "Amsterdam_region_2", result.Incomplete[0].Name())
	assert.Equal(t, []types.RegionFileKind{types.FileGraph}, result.Incomplete[0].Missing())

	assert.Equal(t, []string{"notes.txt"}, result.Skipped)
}

func TestScanOrdersByCityThenID(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, "Chicago", 10, 8, allKinds()...)
	writeRegion(t, root, "Chicago", 2, 8, allKinds()...)
	writeRegion(t, root, "Boston", 5, 8, allKinds()...)

	result, err := Scan(root)
	require.NoError(t, err)

	names := make([]string, len(result.Regions))
	for i, r := range result.Regions {
		names[i] = r.Name()
	}
	assert.Equal(t, []string{"Boston_region_5", "Chicago_region_2", "Chicago_region_10"}, names)
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
