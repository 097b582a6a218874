// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eval runs batch evaluation: for every dataset region it loads
// the ground-truth graph and the external model's predicted graph,
// scores them, and aggregates the rows into a run report.
package eval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/roadgraph/internal/metrics"
	"github.com/pdiddy/roadgraph/pkg/graph"
	"github.com/pdiddy/roadgraph/pkg/types"
)

// predSuffix is appended to a region name to locate its prediction file.
const predSuffix = "_pred_graph.json"

// Runner evaluates predictions for a fixed experiment configuration.
type Runner struct {
	cfg    types.ExperimentConfig
	logger *log.Logger
}

// NewRunner returns a runner for cfg. A nil logger discards progress
// output.
func NewRunner(cfg types.ExperimentConfig, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{cfg: cfg, logger: logger}
}

// PredictionPath returns the prediction file expected for a region.
func PredictionPath(dir string, r types.Region) string {
	return filepath.Join(dir, r.Name()+predSuffix)
}

// FingerprintCheckpoint hashes the opaque checkpoint file. The file
// must exist; its contents are never interpreted.
func FingerprintCheckpoint(path string) (sum string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening checkpoint %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	size, err = io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing checkpoint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// Run evaluates all regions with bounded concurrency and returns the
// report. A missing or unreadable prediction marks its region as failed
// without aborting the run; only context cancellation stops it early.
func (r *Runner) Run(ctx context.Context, checkpoint string, regions []types.Region) (types.RunReport, error) {
	report := types.RunReport{
		Started:    time.Now().UTC(),
		Model:      r.cfg.Model.Name,
		Dataset:    r.cfg.Data.DataPath,
		Checkpoint: checkpoint,
	}

	sum, size, err := FingerprintCheckpoint(checkpoint)
	if err != nil {
		return types.RunReport{}, err
	}
	report.CheckpointSHA256 = sum
	report.CheckpointBytes = size

	params := metrics.ParamsFromConfig(r.cfg.Eval)
	rows := make([]types.RegionMetrics, len(regions))

	workers := r.cfg.Eval.Workers
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rows[i] = r.evaluateRegion(region, params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.RunReport{}, err
	}

	report.Rows = rows
	report.Summary = metrics.Aggregate(rows)
	r.logger.Info("run complete",
		"regions", report.Summary.Regions,
		"failed", report.Summary.Failed,
		"mean_ap", fmt.Sprintf("%.4f", report.Summary.MeanAP),
		"mean_ar", fmt.Sprintf("%.4f", report.Summary.MeanAR))
	return report, nil
}

func (r *Runner) evaluateRegion(region types.Region, params metrics.Params) types.RegionMetrics {
	row := types.RegionMetrics{City: region.City, RegionID: region.ID}

	fail := func(err error) types.RegionMetrics {
		row.Error = err.Error()
		r.logger.Warn("region failed", "region", region.Name(), "err", err)
		return row
	}

	gt, err := graph.LoadPickle(region.GraphPath)
	if err != nil {
		return fail(err)
	}

	predPath := PredictionPath(r.cfg.Eval.PredictionsDir, region)
	pred, err := graph.LoadJSON(predPath)
	if err != nil {
		return fail(fmt.Errorf("prediction: %w", err))
	}

	res, err := metrics.Evaluate(pred, gt, params)
	if err != nil {
		return fail(err)
	}

	row.AP = res.AP
	row.APAt = res.APAt
	row.AR = res.AR
	row.EdgeF1 = res.EdgeF1
	row.ComponentDelta = res.ComponentDelta
	row.LengthRatio = res.LengthRatio
	row.NodesGT = len(gt.Nodes)
	row.NodesPred = len(pred.Nodes)
	row.EdgesGT = len(gt.Edges)
	row.EdgesPred = len(pred.Edges)

	r.logger.Info("evaluated", "region", region.Name(),
		"ap", fmt.Sprintf("%.4f", row.AP),
		"ar", fmt.Sprintf("%.4f", row.AR),
		"edge_f1", fmt.Sprintf("%.4f", row.EdgeF1))
	return row
}

// WriteReport serializes the report to dir as YAML and returns the
// written path. Reports are named run-[UTC timestamp].yaml.
func WriteReport(report types.RunReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run-%s.yaml", report.Started.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}
