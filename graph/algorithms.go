package graph

import (
	"errors"
	"math"
)

// ErrCycleDetected is returned when a relaxation-based algorithm fails to
// stabilize because the graph contains a cycle it cannot resolve.
var ErrCycleDetected = errors.New("cycle detected")

// BellmanFord finds the shortest distance from a starting node to all other
// nodes, using the provided callback for edge weights. Unreachable nodes
// keep a distance of +Inf. It returns ErrCycleDetected if a negative weight
// cycle keeps the relaxation from stabilizing.
func BellmanFord(g Graph, start NodeID, weight func(EdgeID) float64) (map[NodeID]float64, error) {
	adj := FromGraph(g)
	nodes := adj.Nodes()
	edges := adj.Edges()
	distances := make(map[NodeID]float64, len(nodes))
	for _, node := range nodes {
		distances[node] = math.Inf(1)
	}
	distances[start] = 0

	n := len(nodes)
	for i := 0; i < n; i++ {
		for _, id := range edges {
			e, _ := adj.Edge(id)
			if d := distances[e.From] + weight(id); d < distances[e.To] {
				if i == n-1 {
					return nil, ErrCycleDetected
				}
				distances[e.To] = d
			}
		}
	}
	return distances, nil
}

// HasCycle reports whether the graph contains a directed cycle. It runs a
// shortest-path relaxation from every node with every edge weighted -1, so
// that any reachable cycle is a negative cycle and keeps the relaxation from
// stabilizing.
func HasCycle(g Graph) bool {
	adj := FromGraph(g)
	for _, node := range adj.Nodes() {
		if _, err := BellmanFord(adj, node, func(EdgeID) float64 { return -1 }); err != nil {
			return true
		}
	}
	return false
}

// ColorNodes assigns a color to each node such that adjacent nodes have
// different colors. Nodes are processed in enumeration order and each gets
// the smallest color not already used by a colored neighbor; the result is
// deterministic, but not necessarily an optimal coloring.
func ColorNodes(g Graph) map[NodeID]int {
	adj := FromGraph(g)
	colors := make(map[NodeID]int, len(adj.Nodes()))
	for _, node := range adj.Nodes() {
		used := make(map[int]bool)
		for _, neighbor := range Neighbors(adj, node) {
			if c, ok := colors[neighbor]; ok {
				used[c] = true
			}
		}
		colors[node] = smallestUnused(used, 0)
	}
	return colors
}

// ColorEdges assigns a color to each edge such that no two edges incident on
// the same node share a color. Edges are processed in enumeration order and
// each gets the smallest color not already used by a colored edge sharing an
// endpoint; the result is deterministic, but not necessarily optimal.
func ColorEdges(g Graph) map[EdgeID]int {
	adj := FromGraph(g)
	colors := make(map[EdgeID]int, len(adj.Edges()))
	for _, id := range adj.Edges() {
		e, _ := adj.Edge(id)
		used := make(map[int]bool)
		for _, other := range adjacentEdges(adj, e) {
			if other == id {
				continue
			}
			if c, ok := colors[other]; ok {
				used[c] = true
			}
		}
		colors[id] = smallestUnused(used, 0)
	}
	return colors
}

// adjacentEdges returns every edge sharing an endpoint with e, possibly with
// duplicates. Self-loops are covered by the from-side lists.
func adjacentEdges(adj *Adjacency, e Edge) []EdgeID {
	var out []EdgeID
	out = append(out, adj.Incoming(e.From)...)
	out = append(out, adj.Outgoing(e.From)...)
	if e.To != e.From {
		out = append(out, adj.Incoming(e.To)...)
		out = append(out, adj.Outgoing(e.To)...)
	}
	return out
}

// smallestUnused returns the smallest color >= floor not present in used.
func smallestUnused(used map[int]bool, floor int) int {
	for c := floor; ; c++ {
		if !used[c] {
			return c
		}
	}
}
