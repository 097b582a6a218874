// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RegionFileKind identifies one of the three files that make up a region.
type RegionFileKind string

const (
	// FileSat is the satellite image ([name]_sat.png).
	FileSat RegionFileKind = "sat.png"

	// FileGT is the rendered ground-truth mask ([name]_gt.png).
	FileGT RegionFileKind = "gt.png"

	// FileGraph is the pickled ground-truth graph
	// ([name]_refine_gt_graph.p).
	FileGraph RegionFileKind = "refine_gt_graph.p"
)

// Region is one city sub-area: a satellite image, a ground-truth mask,
// and a ground-truth graph, identified by city name and region id.
type Region struct {
	City string `json:"city" yaml:"city"`
	ID   int    `json:"id" yaml:"id"`

	// SatPath, GTPath and GraphPath are absolute or root-relative file
	// paths. An empty path means the file is missing.
	SatPath   string `json:"sat_path" yaml:"sat_path"`
	GTPath    string `json:"gt_path" yaml:"gt_path"`
	GraphPath string `json:"graph_path" yaml:"graph_path"`
}

// Name returns the canonical region name, e.g. "Boston_region_7".
func (r Region) Name() string {
	return fmt.Sprintf("%s_region_%d", r.City, r.ID)
}

// Complete reports whether all three region files are present.
func (r Region) Complete() bool {
	return r.SatPath != "" && r.GTPath != "" && r.GraphPath != ""
}

// Missing lists the file kinds absent from the region.
func (r Region) Missing() []RegionFileKind {
	var missing []RegionFileKind
	if r.SatPath == "" {
		missing = append(missing, FileSat)
	}
	if r.GTPath == "" {
		missing = append(missing, FileGT)
	}
	if r.GraphPath == "" {
		missing = append(missing, FileGraph)
	}
	return missing
}

// SplitManifest records a deterministic train/val split so a run can be
// reproduced from the manifest alone.
type SplitManifest struct {
	DataPath   string   `json:"data_path" yaml:"data_path"`
	Seed       int64    `json:"seed" yaml:"seed"`
	Split      float64  `json:"split" yaml:"split"`
	MaxSamples int      `json:"max_samples,omitempty" yaml:"max_samples,omitempty"`
	Train      []string `json:"train" yaml:"train"`
	Val        []string `json:"val" yaml:"val"`
}
