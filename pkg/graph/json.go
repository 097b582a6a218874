// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// graphJSON is the on-disk JSON form: a node list plus [a, b] edge
// pairs. Model predictions and `graph convert` output both use it.
type graphJSON struct {
	Nodes []Node   `json:"nodes"`
	Edges [][2]int `json:"edges"`
}

// LoadJSON reads a graph from a JSON file.
func LoadJSON(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph %s: %w", path, err)
	}
	defer f.Close()

	g, err := DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("decoding graph %s: %w", path, err)
	}
	return g, nil
}

// DecodeJSON reads a graph from r.
func DecodeJSON(r io.Reader) (*Graph, error) {
	var raw graphJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	g := New()
	ids := make(map[int]int, len(raw.Nodes))
	for _, n := range raw.Nodes {
		if _, dup := ids[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", n.ID)
		}
		ids[n.ID] = g.AddNode(n.X, n.Y, n.Score)
	}
	for _, e := range raw.Edges {
		a, ok := ids[e[0]]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node id %d", e[0])
		}
		b, ok := ids[e[1]]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node id %d", e[1])
		}
		if err := g.AddEdge(a, b); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// WriteJSON writes the graph to path in the JSON graph format.
func (g *Graph) WriteJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := g.EncodeJSON(f); err != nil {
		return fmt.Errorf("encoding graph to %s: %w", path, err)
	}
	return nil
}

// EncodeJSON writes the graph to w as indented JSON.
func (g *Graph) EncodeJSON(w io.Writer) error {
	raw := graphJSON{
		Nodes: g.Nodes,
		Edges: make([][2]int, len(g.Edges)),
	}
	for i, e := range g.Edges {
		raw.Edges[i] = [2]int{e.A, e.B}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&raw)
}
