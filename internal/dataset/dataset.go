// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset indexes the on-disk region dataset. File names follow
// the convention [Cityname]_region_[id]_[rest] with rest one of sat.png,
// gt.png, or refine_gt_graph.p; a region is usable only when all three
// files are present.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/roadgraph/pkg/types"
)

const regionMarker = "_region_"

// ScanResult is the outcome of indexing a dataset directory.
type ScanResult struct {
	// Regions are the complete regions, ordered by city then id.
	Regions []types.Region

	// Incomplete are regions with at least one file missing.
	Incomplete []types.Region

	// Skipped are file names that do not follow the naming convention.
	Skipped []string
}

// Scan indexes root and groups files into regions. Unreadable
// directories are errors; unrecognized file names are collected in
// Skipped, not rejected.
func Scan(root string) (ScanResult, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ScanResult{}, fmt.Errorf("reading dataset directory %s: %w", root, err)
	}

	byName := make(map[string]*types.Region)
	var result ScanResult

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		city, id, kind, err := parseFileName(name)
		if err != nil {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		key := fmt.Sprintf("%s_region_%d", city, id)
		r, ok := byName[key]
		if !ok {
			r = &types.Region{City: city, ID: id}
			byName[key] = r
		}

		path := filepath.Join(root, name)
		switch kind {
		case types.FileSat:
			r.SatPath = path
		case types.FileGT:
			r.GTPath = path
		case types.FileGraph:
			r.GraphPath = path
		}
	}

	for _, r := range byName {
		if r.Complete() {
			result.Regions = append(result.Regions, *r)
		} else {
			result.Incomplete = append(result.Incomplete, *r)
		}
	}
	sortRegions(result.Regions)
	sortRegions(result.Incomplete)
	sort.Strings(result.Skipped)

	return result, nil
}

// parseFileName splits [Cityname]_region_[id]_[rest] into its parts.
// City names may themselves contain underscores, so the split anchors
// on the "_region_" marker.
func parseFileName(name string) (city string, id int, kind types.RegionFileKind, err error) {
	idx := strings.LastIndex(name, regionMarker)
	if idx <= 0 {
		return "", 0, "", fmt.Errorf("file %s: missing %q marker", name, regionMarker)
	}
	city = name[:idx]
	rest := name[idx+len(regionMarker):]

	sep := strings.Index(rest, "_")
	if sep <= 0 {
		return "", 0, "", fmt.Errorf("file %s: missing region id", name)
	}
	id, err = strconv.Atoi(rest[:sep])
	if err != nil {
		return "", 0, "", fmt.Errorf("file %s: region id %q is not a number", name, rest[:sep])
	}

	switch k := types.RegionFileKind(rest[sep+1:]); k {
	case types.FileSat, types.FileGT, types.FileGraph:
		return city, id, k, nil
	default:
		return "", 0, "", fmt.Errorf("file %s: unknown suffix %q", name, rest[sep+1:])
	}
}

func sortRegions(regions []types.Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].City != regions[j].City {
			return regions[i].City < regions[j].City
		}
		return regions[i].ID < regions[j].ID
	})
}
