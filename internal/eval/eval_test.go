// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadgraph/pkg/graph"
	"github.com/pdiddy/roadgraph/pkg/types"
)

// --- test helpers ---

var testPoints = [][2]float64{{0, 0}, {10, 0}, {20, 0}, {20, 10}}

func testConfig(t *testing.T) types.ExperimentConfig {
	t.Helper()
	tmp := t.TempDir()

	cfg := types.ExperimentConfig{}
	cfg.Data.DataPath = filepath.Join(tmp, "data")
	cfg.Eval.PredictionsDir = filepath.Join(tmp, "predictions")
	cfg.Eval.ReportsDir = filepath.Join(tmp, "reports")
	cfg.Model.Name = "relation-net-test"
	cfg.ApplyDefaults()
	cfg.Eval.Workers = 2

	for _, dir := range []string{cfg.Data.DataPath, cfg.Eval.PredictionsDir, cfg.Eval.ReportsDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	return cfg
}

// writeRegion creates a region's three files plus a prediction graph
// identical to the ground truth.
func writeRegion(t *testing.T, cfg types.ExperimentConfig, city string, id int, withPrediction bool) types.Region {
	t.Helper()
	r := types.Region{
		City:      city,
		ID:        id,
		SatPath:   regionFile(cfg, city, id, "sat.png"),
		GTPath:    regionFile(cfg, city, id, "gt.png"),
		GraphPath: regionFile(cfg, city, id, "refine_gt_graph.p"),
	}

	for _, path := range []string{r.SatPath, r.GTPath} {
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 32, 32))))
		require.NoError(t, f.Close())
	}
	writePathPickle(t, r.GraphPath, testPoints)

	if withPrediction {
		pred := pathGraph(testPoints, 0.9)
		require.NoError(t, pred.WriteJSON(PredictionPath(cfg.Eval.PredictionsDir, r)))
	}
	return r
}

func regionFile(cfg types.ExperimentConfig, city string, id int, rest string) string {
	return filepath.Join(cfg.Data.DataPath, fmt.Sprintf("%s_region_%d_%s", city, id, rest))
}

// writePathPickle writes a protocol-0 pickle of the adjacency dict of a
// path graph through the given integer points.
func writePathPickle(t *testing.T, path string, points [][2]float64) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("(d")
	for i, p := range points {
		fmt.Fprintf(&buf, "(I%d\nI%d\nt(l", int(p[0]), int(p[1]))
		if i > 0 {
			fmt.Fprintf(&buf, "(I%d\nI%d\nta", int(points[i-1][0]), int(points[i-1][1]))
		}
		if i < len(points)-1 {
			fmt.Fprintf(&buf, "(I%d\nI%d\nta", int(points[i+1][0]), int(points[i+1][1]))
		}
		buf.WriteString("s")
	}
	buf.WriteString(".")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func pathGraph(points [][2]float64, score float64) *graph.Graph {
	g := graph.New()
	prev := -1
	for _, p := range points {
		id := g.AddNode(p[0], p[1], score)
		if prev >= 0 {
			g.AddEdge(prev, id)
		}
		prev = id
	}
	return g
}

func writeCheckpoint(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "best.pt")
	require.NoError(t, os.WriteFile(path, []byte("opaque model weights"), 0o644))
	return path
}

// --- tests ---

func TestFingerprintCheckpoint(t *testing.T) {
	path := writeCheckpoint(t, t.TempDir())

	sum, size, err := FingerprintCheckpoint(path)
	require.NoError(t, err)
	assert.Len(t, sum, 64)
	assert.Equal(t, int64(len("opaque model weights")), size)

	again, _, err := FingerprintCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, sum, again)
}

func TestFingerprintCheckpointMissing(t *testing.T) {
	_, _, err := FingerprintCheckpoint(filepath.Join(t.TempDir(), "absent.pt"))
	require.Error(t, err)
}

func TestPredictionPath(t *testing.T) {
	r := types.Region{City: "Boston", ID: 3}
	assert.Equal(t, filepath.Join("preds", "Boston_region_3_pred_graph.json"),
		PredictionPath("preds", r))
}

func TestRunPerfectPredictions(t *testing.T) {
	cfg := testConfig(t)
	regions := []types.Region{
		writeRegion(t, cfg, "Boston", 0, true),
		writeRegion(t, cfg, "Boston", 1, true),
	}
	checkpoint := writeCheckpoint(t, t.TempDir())

	runner := NewRunner(cfg, nil)
	report, err := runner.Run(context.Background(), checkpoint, regions)
	require.NoError(t, err)

	assert.Equal(t, checkpoint, report.Checkpoint)
	assert.Len(t, report.CheckpointSHA256, 64)
	assert.Equal(t, "relation-net-test", report.Model)

	require.Len(t, report.Rows, 2)
	for _, row := range report.Rows {
		assert.Empty(t, row.Error)
		assert.InDelta(t, 1.0, row.AP, 1e-9)
		assert.InDelta(t, 1.0, row.AR, 1e-9)
		assert.InDelta(t, 1.0, row.EdgeF1, 1e-9)
		assert.Equal(t, len(testPoints), row.NodesGT)
		assert.Equal(t, len(testPoints)-1, row.EdgesGT)
	}

	assert.Equal(t, 2, report.Summary.Regions)
	assert.Zero(t, report.Summary.Failed)
	assert.InDelta(t, 1.0, report.Summary.MeanAP, 1e-9)
}

func TestRunMissingPredictionIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	regions := []types.Region{
		writeRegion(t, cfg, "Boston", 0, true),
		writeRegion(t, cfg, "Boston", 1, false), // no prediction file
	}
	checkpoint := writeCheckpoint(t, t.TempDir())

	report, err := NewRunner(cfg, nil).Run(context.Background(), checkpoint, regions)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.Failed)
	assert.Empty(t, report.Rows[0].Error)
	assert.Contains(t, report.Rows[1].Error, "prediction")
	// The healthy region still contributes to the summary.
	assert.InDelta(t, 1.0, report.Summary.MeanAP, 1e-9)
}

func TestRunMissingCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	regions := []types.Region{writeRegion(t, cfg, "Boston", 0, true)}

	_, err := NewRunner(cfg, nil).Run(context.Background(), filepath.Join(t.TempDir(), "absent.pt"), regions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint")
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	regions := []types.Region{
		writeRegion(t, cfg, "Boston", 0, true),
		writeRegion(t, cfg, "Boston", 1, true),
	}
	checkpoint := writeCheckpoint(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(cfg, nil).Run(ctx, checkpoint, regions)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteReport(t *testing.T) {
	cfg := testConfig(t)
	regions := []types.Region{writeRegion(t, cfg, "Boston", 0, true)}
	checkpoint := writeCheckpoint(t, t.TempDir())

	report, err := NewRunner(cfg, nil).Run(context.Background(), checkpoint, regions)
	require.NoError(t, err)

	path, err := WriteReport(report, cfg.Eval.ReportsDir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back types.RunReport
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, report.CheckpointSHA256, back.CheckpointSHA256)
	assert.Len(t, back.Rows, 1)
}
