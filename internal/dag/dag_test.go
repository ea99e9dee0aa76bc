// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()

	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("xml-apis", "batik-all")
	g.AddEdge("batik-all", "batik")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"xml-apis", "batik-all", "batik"}; !slices.Equal(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestTopologicalSort_InsertionOrderTieBreak(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("c")
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "z")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"c", "a", "b", "z"}; !slices.Equal(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestLevels(t *testing.T) {
	t.Parallel()

	g := New()
	// Five leaves feed batik-all, which feeds batik. The harness is independent of batik-all.
	for _, leaf := range []string{"xml-apis", "xml-apis-ext", "xmlgraphics-commons", "commons-io", "commons-logging"} {
		g.AddEdge(leaf, "batik-all")
	}
	g.AddEdge("batik-all", "batik")
	g.AddEdge("harness", "batik")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"xml-apis", "xml-apis-ext", "xmlgraphics-commons", "commons-io", "commons-logging", "harness"},
		{"batik-all"},
		{"batik"},
	}
	if !slices.EqualFunc(levels, want, slices.Equal[[]string]) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}
}

func TestLevels_DeepestPredecessorWins(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("a", "c")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 3 || levels[2][0] != "c" {
		t.Errorf("Levels() = %v, want c on the third level", levels)
	}
}

func TestTopologicalSort_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edges [][2]string
		want  []string
	}{
		{name: "self loop", edges: [][2]string{{"a", "a"}}, want: []string{"a", "a"}},
		{name: "two nodes", edges: [][2]string{{"a", "b"}, {"b", "a"}}, want: []string{"a", "b", "a"}},
		{
			name:  "cycle behind a dead end",
			edges: [][2]string{{"root", "x"}, {"x", "y"}, {"y", "x"}, {"x", "sink"}},
			want:  []string{"x", "y", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			_, err := g.TopologicalSort()
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("expected ErrCycle, got %v", err)
			}
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected *CycleError, got %T", err)
			}
			if !slices.Equal(cycleErr.Cycle, tt.want) {
				t.Errorf("Cycle = %v, want %v", cycleErr.Cycle, tt.want)
			}
		})
	}
}

func TestAddEdge_Duplicates(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")
	if got := g.Successors("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Successors(a) = %v, want [b]", got)
	}
	if g.Len() != 2 || !slices.Equal(g.Nodes(), []string{"a", "b"}) {
		t.Errorf("Nodes() = %v", g.Nodes())
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()

	err := &CycleError{Cycle: []string{"a:b:1", "c:d:2", "a:b:1"}}
	if want := "dependency cycle detected: a:b:1 -> c:d:2 -> a:b:1"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// Random DAGs: edges only go from lower to higher indices.
func TestLevels_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "nodes")
		g := New()
		for i := range n {
			g.AddNode(fmt.Sprint(i))
		}
		var edges [][2]string
		for i := range n {
			for j := i + 1; j < n; j++ {
				if rapid.Bool().Draw(t, fmt.Sprintf("edge %d->%d", i, j)) {
					from, to := fmt.Sprint(i), fmt.Sprint(j)
					g.AddEdge(from, to)
					edges = append(edges, [2]string{from, to})
				}
			}
		}

		levels, err := g.Levels()
		if err != nil {
			t.Fatalf("Levels() on a DAG: %v", err)
		}
		levelOf := make(map[string]int)
		for i, level := range levels {
			for _, node := range level {
				if _, dup := levelOf[node]; dup {
					t.Fatalf("node %s placed twice", node)
				}
				levelOf[node] = i
			}
		}
		if len(levelOf) != n {
			t.Fatalf("placed %d nodes, want %d", len(levelOf), n)
		}
		for _, e := range edges {
			if levelOf[e[0]] >= levelOf[e[1]] {
				t.Fatalf("edge %s->%s crosses levels %d->%d", e[0], e[1], levelOf[e[0]], levelOf[e[1]])
			}
		}
	})
}
