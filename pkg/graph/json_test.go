// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	const doc = `{
		"nodes": [
			{"id": 0, "x": 1, "y": 2, "score": 0.9},
			{"id": 7, "x": 3, "y": 4}
		],
		"edges": [[0, 7]]
	}`

	g, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, 0.9, g.Nodes[0].Score)
	// External node ids are remapped to dense indices.
	assert.Len(t, g.Edges, 1)
	assert.True(t, g.HasEdge(0, 1))
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{
			name:   "not json",
			doc:    "nodes: []",
			errMsg: "",
		},
		{
			name:   "duplicate node id",
			doc:    `{"nodes": [{"id": 1, "x": 0, "y": 0}, {"id": 1, "x": 5, "y": 5}], "edges": []}`,
			errMsg: "duplicate node id 1",
		},
		{
			name:   "edge references unknown node",
			doc:    `{"nodes": [{"id": 0, "x": 0, "y": 0}], "edges": [[0, 3]]}`,
			errMsg: "unknown node id 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := New()
	a := g.AddNode(1, 2, 0.5)
	b := g.AddNode(3, 4, 0.8)
	c := g.AddNode(5, 6, 0.1)
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, c))

	path := filepath.Join(t.TempDir(), "pred.json")
	require.NoError(t, g.WriteJSON(path))

	back, err := LoadJSON(path)
	require.NoError(t, err)

	assert.Equal(t, g.Nodes, back.Nodes)
	assert.Equal(t, g.Edges, back.Edges)
}

func TestLoadJSONMissingFile(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
