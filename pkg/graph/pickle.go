// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"

	"github.com/nlpodyssey/gopickle/pickle"
	pytypes "github.com/nlpodyssey/gopickle/types"
)

// LoadPickle reads a ground-truth graph from a Python pickle file. The
// expected payload is an adjacency dict mapping (x, y) coordinate
// tuples to lists of neighbor coordinate tuples, the format the dataset
// generation tooling writes as [name]_refine_gt_graph.p.
func LoadPickle(path string) (*Graph, error) {
	obj, err := pickle.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unpickling %s: %w", path, err)
	}

	dict, ok := obj.(*pytypes.Dict)
	if !ok {
		return nil, fmt.Errorf("unpickling %s: expected adjacency dict, got %T", path, obj)
	}

	return FromAdjacencyDict(dict)
}

// FromAdjacencyDict converts an unpickled adjacency dict into a Graph.
// Symmetric entries (each edge listed from both endpoints) collapse into
// a single undirected edge.
func FromAdjacencyDict(dict *pytypes.Dict) (*Graph, error) {
	g := New()

	for _, entry := range *dict {
		x, y, err := coordinate(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("adjacency key: %w", err)
		}
		from := g.AddNode(x, y, 0)

		neighbors, err := sequence(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("neighbors of (%g, %g): %w", x, y, err)
		}
		for _, nb := range neighbors {
			nx, ny, err := coordinate(nb)
			if err != nil {
				return nil, fmt.Errorf("neighbor of (%g, %g): %w", x, y, err)
			}
			to := g.AddNode(nx, ny, 0)
			if err := g.AddEdge(from, to); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// coordinate extracts an (x, y) pair from an unpickled tuple or list.
func coordinate(v interface{}) (float64, float64, error) {
	seq, err := sequence(v)
	if err != nil {
		return 0, 0, err
	}
	if len(seq) != 2 {
		return 0, 0, fmt.Errorf("expected 2 elements, got %d", len(seq))
	}
	x, err := number(seq[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := number(seq[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// sequence normalizes unpickled tuples and lists to a Go slice.
func sequence(v interface{}) ([]interface{}, error) {
	switch s := v.(type) {
	case *pytypes.Tuple:
		out := make([]interface{}, s.Len())
		for i := 0; i < s.Len(); i++ {
			out[i] = s.Get(i)
		}
		return out, nil
	case *pytypes.List:
		out := make([]interface{}, s.Len())
		for i := 0; i < s.Len(); i++ {
			out[i] = s.Get(i)
		}
		return out, nil
	case []interface{}:
		return s, nil
	default:
		return nil, fmt.Errorf("expected tuple or list, got %T", v)
	}
}

// number coerces the numeric types the unpickler produces to float64.
func number(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
