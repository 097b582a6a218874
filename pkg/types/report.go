// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RegionMetrics holds the evaluation result for a single region. A
// non-empty Error means the region could not be scored; the metric
// fields are then zero.
type RegionMetrics struct {
	City     string `json:"city" yaml:"city"`
	RegionID int    `json:"region_id" yaml:"region_id"`

	// AP is the mean average precision of node detection over the
	// configured distance-threshold range.
	AP float64 `json:"ap" yaml:"ap"`

	// APAt holds AP at each explicitly listed threshold, keyed by the
	// threshold value formatted with %g.
	APAt map[string]float64 `json:"ap_at,omitempty" yaml:"ap_at,omitempty"`

	// AR is the mean recall over the threshold range at the
	// max-detections cap.
	AR float64 `json:"ar" yaml:"ar"`

	// EdgeF1 is the edge-detection F1 score at the largest listed
	// threshold.
	EdgeF1 float64 `json:"edge_f1" yaml:"edge_f1"`

	// Topology comparisons between prediction and ground truth.
	ComponentDelta int     `json:"component_delta" yaml:"component_delta"`
	LengthRatio    float64 `json:"length_ratio" yaml:"length_ratio"`

	NodesGT   int `json:"nodes_gt" yaml:"nodes_gt"`
	NodesPred int `json:"nodes_pred" yaml:"nodes_pred"`
	EdgesGT   int `json:"edges_gt" yaml:"edges_gt"`
	EdgesPred int `json:"edges_pred" yaml:"edges_pred"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunSummary aggregates region metrics across one evaluation run.
type RunSummary struct {
	Regions int `json:"regions" yaml:"regions"`
	Failed  int `json:"failed" yaml:"failed"`

	MeanAP   float64 `json:"mean_ap" yaml:"mean_ap"`
	StddevAP float64 `json:"stddev_ap" yaml:"stddev_ap"`
	MedianAP float64 `json:"median_ap" yaml:"median_ap"`

	MeanAR     float64 `json:"mean_ar" yaml:"mean_ar"`
	MeanEdgeF1 float64 `json:"mean_edge_f1" yaml:"mean_edge_f1"`
}

// RunReport is the full output of one evaluation run: provenance,
// per-region rows, and the aggregate summary.
type RunReport struct {
	Started    time.Time `json:"started" yaml:"started"`
	ConfigPath string    `json:"config_path" yaml:"config_path"`
	Model      string    `json:"model" yaml:"model"`
	Dataset    string    `json:"dataset" yaml:"dataset"`

	// Checkpoint provenance. The file itself is never parsed.
	Checkpoint       string `json:"checkpoint" yaml:"checkpoint"`
	CheckpointSHA256 string `json:"checkpoint_sha256" yaml:"checkpoint_sha256"`
	CheckpointBytes  int64  `json:"checkpoint_bytes" yaml:"checkpoint_bytes"`

	Summary RunSummary      `json:"summary" yaml:"summary"`
	Rows    []RegionMetrics `json:"rows" yaml:"rows"`
}
