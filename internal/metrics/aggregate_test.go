// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/roadgraph/pkg/types"
)

func TestAggregate(t *testing.T) {
	rows := []types.RegionMetrics{
		{City: "Boston", RegionID: 0, AP: 0.5, AR: 0.6, EdgeF1: 0.4},
		{City: "Boston", RegionID: 1, AP: 1.0, AR: 0.8, EdgeF1: 0.6},
		{City: "Chicago", RegionID: 2, Error: "prediction: file missing"},
	}

	s := Aggregate(rows)
	assert.Equal(t, 3, s.Regions)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 0.75, s.MeanAP, 1e-9)
	assert.InDelta(t, math.Sqrt(0.125), s.StddevAP, 1e-9)
	assert.InDelta(t, 0.5, s.MedianAP, 1e-9)
	assert.InDelta(t, 0.7, s.MeanAR, 1e-9)
	assert.InDelta(t, 0.5, s.MeanEdgeF1, 1e-9)
}

func TestAggregateAllFailed(t *testing.T) {
	rows := []types.RegionMetrics{
		{City: "Boston", RegionID: 0, Error: "x"},
		{City: "Boston", RegionID: 1, Error: "y"},
	}

	s := Aggregate(rows)
	assert.Equal(t, 2, s.Regions)
	assert.Equal(t, 2, s.Failed)
	assert.Zero(t, s.MeanAP)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.Regions)
	assert.Zero(t, s.Failed)
}

func TestAggregateSingleRow(t *testing.T) {
	s := Aggregate([]types.RegionMetrics{{AP: 0.7, AR: 0.7, EdgeF1: 0.7}})
	assert.InDelta(t, 0.7, s.MeanAP, 1e-9)
	assert.Zero(t, s.StddevAP)
}
