// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics scores predicted road graphs against ground truth.
// Node detection follows the COCO evaluation scheme with spatial
// distance in place of IoU: predictions are matched greedily to ground
// truth, precision/recall curves are built per distance threshold, and
// AP is the interpolated precision averaged over evenly spaced recall
// points. Edge and topology scores build on the node matching.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/roadgraph/pkg/graph"
	"github.com/pdiddy/roadgraph/pkg/types"
)

// Params configures one evaluation.
type Params struct {
	// DistanceList are thresholds reported individually.
	DistanceList []float64

	// DistanceRange is the grid over which AP and AR are averaged.
	DistanceRange types.ThresholdRange

	// RecallSamples is the number of recall points for AP interpolation.
	RecallSamples int

	// MaxDetections caps the number of predicted nodes considered.
	MaxDetections int
}

// ParamsFromConfig derives evaluation parameters from the experiment
// config.
func ParamsFromConfig(cfg types.EvalConfig) Params {
	return Params{
		DistanceList:  cfg.DistanceList,
		DistanceRange: cfg.DistanceRange,
		RecallSamples: cfg.RecallSamples,
		MaxDetections: cfg.MaxDetections,
	}
}

// Result holds the scores for one region.
type Result struct {
	AP             float64
	APAt           map[string]float64
	AR             float64
	EdgeF1         float64
	ComponentDelta int
	LengthRatio    float64
}

// Evaluate scores a predicted graph against ground truth.
func Evaluate(pred, gt *graph.Graph, p Params) (Result, error) {
	if len(gt.Nodes) == 0 {
		return Result{}, fmt.Errorf("ground-truth graph has no nodes")
	}

	detections := topDetections(pred.Nodes, p.MaxDetections)
	rangeGrid := GridThresholds(p.DistanceRange)
	if len(rangeGrid) == 0 {
		return Result{}, fmt.Errorf("distance range (%v, %v, %v) yields no thresholds",
			p.DistanceRange.Start, p.DistanceRange.Stop, p.DistanceRange.Step)
	}

	var apSum, arSum float64
	for _, t := range rangeGrid {
		matched := matchNodes(detections, gt.Nodes, t)
		apSum += averagePrecision(matched, len(gt.Nodes), p.RecallSamples)
		arSum += recall(matched, len(gt.Nodes))
	}

	res := Result{
		AP:   apSum / float64(len(rangeGrid)),
		AR:   arSum / float64(len(rangeGrid)),
		APAt: make(map[string]float64, len(p.DistanceList)),
	}

	var edgeThreshold float64
	for _, t := range p.DistanceList {
		matched := matchNodes(detections, gt.Nodes, t)
		res.APAt[fmt.Sprintf("%g", t)] = averagePrecision(matched, len(gt.Nodes), p.RecallSamples)
		if t > edgeThreshold {
			edgeThreshold = t
		}
	}
	if edgeThreshold == 0 {
		edgeThreshold = p.DistanceRange.Stop
	}
	res.EdgeF1 = edgeF1(pred, gt, detections, edgeThreshold)

	res.ComponentDelta = pred.Components() - gt.Components()
	if gtLen := gt.TotalLength(); gtLen > 0 {
		res.LengthRatio = pred.TotalLength() / gtLen
	}

	return res, nil
}

// GridThresholds expands a (start, stop, step) range into the threshold
// grid, inclusive of stop.
func GridThresholds(r types.ThresholdRange) []float64 {
	if r.Step <= 0 || r.Stop < r.Start {
		return nil
	}
	n := int(math.Round((r.Stop-r.Start)/r.Step)) + 1
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{r.Start}
	}
	return floats.Span(make([]float64, n), r.Start, r.Stop)
}

// topDetections orders predicted nodes by descending score (ties keep
// input order) and caps them at maxDetections.
func topDetections(nodes []graph.Node, maxDetections int) []graph.Node {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if maxDetections > 0 && len(out) > maxDetections {
		out = out[:maxDetections]
	}
	return out
}

// matchNodes assigns each detection the nearest unmatched ground-truth
// node within threshold, in detection order. The result maps detection
// index to ground-truth node ID, -1 for unmatched.
func matchNodes(detections, gt []graph.Node, threshold float64) []int {
	matched := make([]int, len(detections))
	taken := make([]bool, len(gt))

	for i, d := range detections {
		matched[i] = -1
		best := threshold
		for j, g := range gt {
			if taken[j] {
				continue
			}
			if dist := graph.Dist(d, g); dist <= best {
				best = dist
				matched[i] = g.ID
			}
		}
		if matched[i] >= 0 {
			taken[matched[i]] = true
		}
	}
	return matched
}

// averagePrecision computes interpolated AP from the detection-order
// match outcomes: precision is sampled at evenly spaced recall points
// after taking the running maximum from the right.
func averagePrecision(matched []int, numGT, recallSamples int) float64 {
	if numGT == 0 {
		return 0
	}

	precisions := make([]float64, len(matched))
	recalls := make([]float64, len(matched))
	tp := 0
	for i, m := range matched {
		if m >= 0 {
			tp++
		}
		precisions[i] = float64(tp) / float64(i+1)
		recalls[i] = float64(tp) / float64(numGT)
	}

	// Monotone envelope: each precision becomes the max to its right.
	for i := len(precisions) - 2; i >= 0; i-- {
		if precisions[i+1] > precisions[i] {
			precisions[i] = precisions[i+1]
		}
	}

	samples := floats.Span(make([]float64, recallSamples), 0, 1)
	var sum float64
	for _, r := range samples {
		// First curve point with recall >= r.
		idx := sort.SearchFloat64s(recalls, r)
		if idx < len(precisions) {
			sum += precisions[idx]
		}
	}
	return sum / float64(recallSamples)
}

// recall is the fraction of ground-truth nodes matched.
func recall(matched []int, numGT int) float64 {
	if numGT == 0 {
		return 0
	}
	tp := 0
	for _, m := range matched {
		if m >= 0 {
			tp++
		}
	}
	return float64(tp) / float64(numGT)
}

// edgeF1 scores predicted edges: an edge is correct when both endpoints
// matched ground-truth nodes and the counterpart ground-truth edge
// exists. Detections are matched at the given threshold.
func edgeF1(pred, gt *graph.Graph, detections []graph.Node, threshold float64) float64 {
	if len(pred.Edges) == 0 || len(gt.Edges) == 0 {
		return 0
	}

	matched := matchNodes(detections, gt.Nodes, threshold)
	predToGT := make(map[int]int, len(detections))
	for i, m := range matched {
		if m >= 0 {
			predToGT[detections[i].ID] = m
		}
	}

	tp := 0
	for _, e := range pred.Edges {
		ga, okA := predToGT[e.A]
		gb, okB := predToGT[e.B]
		if okA && okB && gt.HasEdge(ga, gb) {
			tp++
		}
	}

	precision := float64(tp) / float64(len(pred.Edges))
	rec := float64(tp) / float64(len(gt.Edges))
	if precision+rec == 0 {
		return 0
	}
	return 2 * precision * rec / (precision + rec)
}
