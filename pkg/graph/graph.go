// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph models the spatial road graphs the pipeline extracts
// from imagery: nodes are 2D points, edges are undirected segments.
// Ground truth arrives as Python pickle adjacency dicts, predictions as
// JSON; both decode into the same Graph type.
package graph

import (
	"fmt"
	"math"
)

// Node is a graph vertex at a 2D pixel coordinate. Score is the model
// confidence for predicted nodes; ground-truth nodes carry score 0.
type Node struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score,omitempty"`
}

// Edge is an undirected segment between two node IDs, stored with A < B.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Graph is a spatial graph. Node IDs are dense indices into Nodes.
type Graph struct {
	Nodes []Node
	Edges []Edge

	adj      map[int]map[int]bool
	coordIdx map[[2]float64]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		adj:      make(map[int]map[int]bool),
		coordIdx: make(map[[2]float64]int),
	}
}

// AddNode inserts a node at (x, y) and returns its ID. Coordinates are
// deduplicated: adding the same point twice returns the existing ID.
func (g *Graph) AddNode(x, y, score float64) int {
	key := [2]float64{x, y}
	if id, ok := g.coordIdx[key]; ok {
		return id
	}
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{ID: id, X: x, Y: y, Score: score})
	g.coordIdx[key] = id
	return id
}

// AddEdge inserts an undirected edge between a and b. Self-loops and
// duplicate edges are ignored.
func (g *Graph) AddEdge(a, b int) error {
	if a < 0 || a >= len(g.Nodes) || b < 0 || b >= len(g.Nodes) {
		return fmt.Errorf("edge (%d, %d) references unknown node (graph has %d nodes)", a, b, len(g.Nodes))
	}
	if a == b {
		return nil
	}
	if a > b {
		a, b = b, a
	}
	if g.adj[a][b] {
		return nil
	}
	if g.adj[a] == nil {
		g.adj[a] = make(map[int]bool)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[int]bool)
	}
	g.adj[a][b] = true
	g.adj[b][a] = true
	g.Edges = append(g.Edges, Edge{A: a, B: b})
	return nil
}

// HasEdge reports whether an undirected edge exists between a and b.
func (g *Graph) HasEdge(a, b int) bool {
	return g.adj[a][b]
}

// Neighbors returns the node IDs adjacent to id.
func (g *Graph) Neighbors(id int) []int {
	ns := make([]int, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		ns = append(ns, n)
	}
	return ns
}

// Dist returns the Euclidean distance between two nodes.
func Dist(a, b Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// TotalLength returns the summed Euclidean length of all edges.
func (g *Graph) TotalLength() float64 {
	var total float64
	for _, e := range g.Edges {
		total += Dist(g.Nodes[e.A], g.Nodes[e.B])
	}
	return total
}

// Components returns the number of connected components. Isolated nodes
// count as components of size one.
func (g *Graph) Components() int {
	visited := make([]bool, len(g.Nodes))
	count := 0
	queue := make([]int, 0, len(g.Nodes))

	for start := range g.Nodes {
		if visited[start] {
			continue
		}
		count++
		visited[start] = true
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for n := range g.adj[cur] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
	return count
}

// Stats summarizes a graph for reporting.
type Stats struct {
	Nodes       int     `json:"nodes" yaml:"nodes"`
	Edges       int     `json:"edges" yaml:"edges"`
	Components  int     `json:"components" yaml:"components"`
	TotalLength float64 `json:"total_length" yaml:"total_length"`
}

// Stats computes summary statistics for the graph.
func (g *Graph) Stats() Stats {
	return Stats{
		Nodes:       len(g.Nodes),
		Edges:       len(g.Edges),
		Components:  g.Components(),
		TotalLength: g.TotalLength(),
	}
}
