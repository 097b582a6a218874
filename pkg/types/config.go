// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the roadgraph pipeline:
// experiment configuration, dataset regions, and evaluation reports.
package types

import "fmt"

// DataConfig describes the dataset on disk and how it is split.
type DataConfig struct {
	// DataPath is the dataset root directory, e.g. "data/20cities".
	DataPath string `json:"data_path" yaml:"data_path"`

	// TestDataPath is an optional held-out dataset root. When empty the
	// validation portion of DataPath is used for testing.
	TestDataPath string `json:"test_data_path,omitempty" yaml:"test_data_path,omitempty"`

	// ImageSize is the expected square image dimension in pixels.
	ImageSize int `json:"image_size" yaml:"image_size"`

	// PadSize is the border padding applied when images were rendered.
	// Graph coordinates are expressed relative to the padded frame.
	PadSize int `json:"pad_size" yaml:"pad_size"`

	// Seed drives the deterministic shuffle used for splitting.
	Seed int64 `json:"seed" yaml:"seed"`

	// Split is the train fraction for the train/val split (default 0.95).
	Split float64 `json:"split" yaml:"split"`

	// MaxSamples truncates the dataset when > 0. Useful for smoke runs.
	MaxSamples int `json:"max_samples,omitempty" yaml:"max_samples,omitempty"`

	// BatchSize is the evaluation batch size hint recorded in reports.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// ThresholdRange describes a (start, stop, step) grid of node-match
// distance thresholds, inclusive of stop.
type ThresholdRange struct {
	Start float64 `json:"start" yaml:"start"`
	Stop  float64 `json:"stop" yaml:"stop"`
	Step  float64 `json:"step" yaml:"step"`
}

// EvalConfig holds settings for the evaluation stage.
type EvalConfig struct {
	// DistanceList are specific match thresholds (in pixels) at which
	// AP is reported individually.
	DistanceList []float64 `json:"distance_list" yaml:"distance_list"`

	// DistanceRange is the threshold grid over which mean AP and AR
	// are computed.
	DistanceRange ThresholdRange `json:"distance_range" yaml:"distance_range"`

	// RecallSamples is the number of evenly spaced recall points used
	// for AP interpolation (default 101).
	RecallSamples int `json:"recall_samples" yaml:"recall_samples"`

	// MaxDetections caps the number of predicted nodes scored per
	// region (default 300).
	MaxDetections int `json:"max_detections" yaml:"max_detections"`

	// Workers bounds the number of regions evaluated concurrently
	// (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// PredictionsDir holds per-region predicted graphs
	// ([City]_region_[id]_pred_graph.json).
	PredictionsDir string `json:"predictions_dir" yaml:"predictions_dir"`

	// ReportsDir receives report YAML files and the runs database.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// ModelConfig identifies the external model whose predictions are scored.
// The checkpoint is opaque: roadgraph fingerprints it but never parses it.
type ModelConfig struct {
	// Name is a human-readable model identifier recorded in run records.
	Name string `json:"name" yaml:"name"`

	// Checkpoint is the default checkpoint path; overridable with
	// --model / --checkpoint on the CLI.
	Checkpoint string `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
}

// ExperimentConfig groups all settings for one experiment. It is loaded
// once per run and treated as read-only afterwards.
type ExperimentConfig struct {
	Data  DataConfig  `json:"data" yaml:"data"`
	Eval  EvalConfig  `json:"eval" yaml:"eval"`
	Model ModelConfig `json:"model" yaml:"model"`
}

// ApplyDefaults fills unset fields with the standard experiment defaults.
func (c *ExperimentConfig) ApplyDefaults() {
	if c.Data.ImageSize == 0 {
		c.Data.ImageSize = 128
	}
	if c.Data.Split == 0 {
		c.Data.Split = 0.95
	}
	if c.Data.BatchSize == 0 {
		c.Data.BatchSize = 16
	}
	if len(c.Eval.DistanceList) == 0 {
		c.Eval.DistanceList = []float64{2, 5, 10}
	}
	if c.Eval.DistanceRange == (ThresholdRange{}) {
		c.Eval.DistanceRange = ThresholdRange{Start: 1, Stop: 10, Step: 1}
	}
	if c.Eval.RecallSamples == 0 {
		c.Eval.RecallSamples = 101
	}
	if c.Eval.MaxDetections == 0 {
		c.Eval.MaxDetections = 300
	}
	if c.Eval.Workers == 0 {
		c.Eval.Workers = 4
	}
	if c.Eval.PredictionsDir == "" {
		c.Eval.PredictionsDir = "predictions"
	}
	if c.Eval.ReportsDir == "" {
		c.Eval.ReportsDir = "reports"
	}
}

// Validate reports the first configuration error found, or nil.
func (c *ExperimentConfig) Validate() error {
	if c.Data.DataPath == "" {
		return fmt.Errorf("data.data_path is required")
	}
	if c.Data.ImageSize <= 0 {
		return fmt.Errorf("data.image_size must be positive, got %d", c.Data.ImageSize)
	}
	if c.Data.PadSize < 0 || c.Data.PadSize*2 >= c.Data.ImageSize {
		return fmt.Errorf("data.pad_size %d is out of range for image size %d", c.Data.PadSize, c.Data.ImageSize)
	}
	if c.Data.Split <= 0 || c.Data.Split > 1 {
		return fmt.Errorf("data.split must be in (0, 1], got %v", c.Data.Split)
	}
	if c.Data.MaxSamples < 0 {
		return fmt.Errorf("data.max_samples must not be negative, got %d", c.Data.MaxSamples)
	}
	r := c.Eval.DistanceRange
	if r.Step <= 0 || r.Stop < r.Start {
		return fmt.Errorf("eval.distance_range (%v, %v, %v) is not a valid grid", r.Start, r.Stop, r.Step)
	}
	for _, d := range c.Eval.DistanceList {
		if d <= 0 {
			return fmt.Errorf("eval.distance_list entries must be positive, got %v", d)
		}
	}
	if c.Eval.RecallSamples < 2 {
		return fmt.Errorf("eval.recall_samples must be at least 2, got %d", c.Eval.RecallSamples)
	}
	if c.Eval.MaxDetections <= 0 {
		return fmt.Errorf("eval.max_detections must be positive, got %d", c.Eval.MaxDetections)
	}
	if c.Eval.Workers <= 0 {
		return fmt.Errorf("eval.workers must be positive, got %d", c.Eval.Workers)
	}
	return nil
}
