// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/roadgraph/pkg/types"
)

// Aggregate folds per-region rows into a run summary. Failed rows count
// toward Failed but are excluded from the score statistics.
func Aggregate(rows []types.RegionMetrics) types.RunSummary {
	summary := types.RunSummary{Regions: len(rows)}

	var aps, ars, edgeF1s []float64
	for _, row := range rows {
		if row.Error != "" {
			summary.Failed++
			continue
		}
		aps = append(aps, row.AP)
		ars = append(ars, row.AR)
		edgeF1s = append(edgeF1s, row.EdgeF1)
	}
	if len(aps) == 0 {
		return summary
	}

	summary.MeanAP = stat.Mean(aps, nil)
	if len(aps) > 1 {
		summary.StddevAP = stat.StdDev(aps, nil)
	}

	sorted := append([]float64(nil), aps...)
	sort.Float64s(sorted)
	summary.MedianAP = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	summary.MeanAR = stat.Mean(ars, nil)
	summary.MeanEdgeF1 = stat.Mean(edgeF1s, nil)
	return summary
}
