// SPDX-License-Identifier: MPL-2.0

// Package dag orders the nodes of a directed graph. The build-order computer
// uses it to group an already linearized build order into waves of modules
// that can be processed in parallel.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError indicates that the graph contains a cycle, preventing an ordering.
	// It wraps ErrCycle for errors.Is() compatibility.
	CycleError struct {
		// Cycle lists one cycle as a closed path, first node repeated last.
		Cycle []string
	}

	// Graph is a directed graph keyed by node name. An edge from A to B means A
	// must be processed before B. Node and edge order are insertion order, which
	// makes every ordering deterministic.
	Graph struct {
		nodes     []string
		nodeSet   map[string]bool
		adjacency map[string][]string
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodeSet:   make(map[string]bool),
		adjacency: make(map[string][]string),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds the edge from -> to, adding missing nodes. Repeated edges are
// recorded once.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if !slices.Contains(g.adjacency[from], to) {
		g.adjacency[from] = append(g.adjacency[from], to)
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodes) }

// Successors returns the nodes that must come after name.
func (g *Graph) Successors(name string) []string { return slices.Clone(g.adjacency[name]) }

// TopologicalSort returns a valid order using Kahn's algorithm. Nodes that
// become ready together keep their insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// Levels partitions the nodes into levels: level 0 holds nodes without
// predecessors and every node sits one level after its deepest predecessor.
// Nodes within a level have no edges between them.
func (g *Graph) Levels() ([][]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		for _, next := range g.adjacency[node] {
			inDegree[next]++
		}
	}

	var current []string
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			current = append(current, node)
		}
	}

	var (
		levels [][]string
		placed int
	)
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		ready := make(map[string]bool)
		for _, node := range current {
			for _, next := range g.adjacency[node] {
				inDegree[next]--
				if inDegree[next] == 0 {
					ready[next] = true
				}
			}
		}
		var next []string
		for _, node := range g.nodes {
			if ready[node] {
				next = append(next, node)
			}
		}
		current = next
	}

	if placed != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle(inDegree)}
	}
	return levels, nil
}

// findCycle walks the nodes left with positive in-degree after Kahn's
// algorithm, which always contain a cycle, and returns one as a closed path.
func (g *Graph) findCycle(inDegree map[string]int) []string {
	const (
		unseen = iota
		onPath
		done
	)
	state := make(map[string]int)
	var path []string

	var walk func(string) []string
	walk = func(node string) []string {
		state[node] = onPath
		path = append(path, node)
		for _, next := range g.adjacency[node] {
			if inDegree[next] <= 0 {
				continue
			}
			switch state[next] {
			case onPath:
				start := slices.Index(path, next)
				return append(slices.Clone(path[start:]), next)
			case unseen:
				if cycle := walk(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[node] = done
		return nil
	}

	for _, node := range g.nodes {
		if inDegree[node] > 0 && state[node] == unseen {
			if cycle := walk(node); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
