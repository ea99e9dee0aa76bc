// SPDX-License-Identifier: MPL-2.0

package buildorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/ivymod"
)

const mavenMapping = "compile->master(*);runtime->master(*),runtime(*);test->master(*),runtime(*)"

var errNotFound = errors.New("module not found")

// graphResolver serves modules built from an adjacency list.
type graphResolver struct {
	modules map[coord.Coordinate]*ivymod.Module
	calls   map[coord.Coordinate]int
}

func newGraphResolver(t *testing.T, edges map[string][]string) *graphResolver {
	t.Helper()

	r := &graphResolver{
		modules: make(map[coord.Coordinate]*ivymod.Module),
		calls:   make(map[coord.Coordinate]int),
	}
	for from, tos := range edges {
		bp := ivymod.NewBlueprint(coord.MustParse(from))
		for _, to := range tos {
			bp.Dep(coord.MustParse(to), "")
		}
		m, err := bp.Build()
		if err != nil {
			t.Fatalf("Build(%s) error: %v", from, err)
		}
		r.modules[m.ID()] = m
	}
	return r
}

func (r *graphResolver) Resolve(_ context.Context, id coord.Coordinate) (*ivymod.Module, error) {
	r.calls[id]++
	m, ok := r.modules[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, errNotFound)
	}
	return m, nil
}

func TestCompute_BatikScenario(t *testing.T) {
	t.Parallel()

	batik := coord.MustParse("dacapo:batik:1.0")
	batikAll := coord.MustParse("org.apache.xmlgraphics:batik-all:1.16")
	compileDeps := []coord.Coordinate{
		coord.MustParse("xml-apis:xml-apis:1.4.01"),
		coord.MustParse("xml-apis:xml-apis-ext:1.3.04"),
		coord.MustParse("org.apache.xmlgraphics:xmlgraphics-commons:2.7"),
		coord.MustParse("commons-io:commons-io:1.3.1"),
		coord.MustParse("commons-logging:commons-logging:1.0.4"),
	}

	r := &graphResolver{modules: make(map[coord.Coordinate]*ivymod.Module), calls: make(map[coord.Coordinate]int)}
	add := func(m *ivymod.Module) { r.modules[m.ID()] = m }

	add(ivymod.NewBlueprint(batik).
		PublicConf("compile").
		PublicConf("runtime", "compile").
		Dep(batikAll, "runtime->default").
		NoArtifacts().
		MustBuild())
	bp := ivymod.NewBlueprint(batikAll).
		PublicConf("default", "runtime", "master").
		PublicConf("master").
		PublicConf("compile").
		PublicConf("runtime", "compile")
	for _, d := range compileDeps {
		bp.ForcedDep(d, mavenMapping)
		add(ivymod.NewBlueprint(d).MustBuild())
	}
	add(bp.MustBuild())

	res, err := Compute(context.Background(), r, batik)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	if len(res.Order) != 7 {
		t.Fatalf("Order = %v, want 7 coordinates", coord.Strings(res.Order))
	}
	if last := res.Order[len(res.Order)-1]; last != batik {
		t.Errorf("last = %s, want %s", last, batik)
	}
	for _, d := range append(slices.Clone(compileDeps), batikAll) {
		if i := res.Index(d); i < 0 || i >= res.Index(batik) {
			t.Errorf("%s at %d, want before %s at %d", d, i, batik, res.Index(batik))
		}
	}
	for _, d := range compileDeps {
		if res.Index(d) >= res.Index(batikAll) {
			t.Errorf("%s should precede %s", d, batikAll)
		}
	}

	waves, err := res.Waves()
	if err != nil {
		t.Fatalf("Waves() error: %v", err)
	}
	if len(waves) != 3 || len(waves[0]) != 5 || waves[1][0] != batikAll || waves[2][0] != batik {
		t.Errorf("Waves() = %v", waves)
	}
}

func TestCompute_DiamondPostOrder(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"o:a:1": {"o:b:1", "o:c:1"},
		"o:b:1": {"o:d:1"},
		"o:c:1": {"o:d:1"},
		"o:d:1": nil,
	})

	res, err := Compute(context.Background(), r, coord.MustParse("o:a:1"))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	want := []string{"o:d:1", "o:b:1", "o:c:1", "o:a:1"}
	if got := coord.Strings(res.Order); !slices.Equal(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
	if got := len(res.VisitedFrom[coord.MustParse("o:d:1")]); got != 2 {
		t.Errorf("o:d:1 reached %d times, want 2", got)
	}
	if res.HasCycles() {
		t.Error("diamond has no cycles")
	}
}

func TestCompute_CycleTolerance(t *testing.T) {
	t.Parallel()

	a, b := coord.MustParse("o:a:1"), coord.MustParse("o:b:1")
	r := newGraphResolver(t, map[string][]string{
		"o:a:1": {"o:b:1"},
		"o:b:1": {"o:a:1"},
	})

	res, err := Compute(context.Background(), r, a)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if !slices.Equal(res.Order, []coord.Coordinate{b, a}) {
		t.Errorf("Order = %v, want [o:b:1 o:a:1]", coord.Strings(res.Order))
	}
	if !slices.Equal(res.BackEdges, []Edge{{From: b, To: a}}) {
		t.Errorf("BackEdges = %v, want [b->a]", res.BackEdges)
	}

	waves, err := res.Waves()
	if err != nil {
		t.Fatalf("Waves() error: %v", err)
	}
	if len(waves) != 2 || waves[0][0] != b || waves[1][0] != a {
		t.Errorf("Waves() = %v, want [[b] [a]]", waves)
	}
}

func TestCompute_SelfDependency(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{"o:a:1": {"o:a:1"}})
	res, err := Compute(context.Background(), r, coord.MustParse("o:a:1"))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(res.Order) != 1 || len(res.BackEdges) != 1 {
		t.Errorf("Order = %v, BackEdges = %v", res.Order, res.BackEdges)
	}
}

func TestCompute_Strict(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"o:root:1": {"o:a:1"},
		"o:a:1":    {"o:b:1"},
		"o:b:1":    {"o:c:1"},
		"o:c:1":    {"o:a:1"},
	})

	_, err := Compute(context.Background(), r, coord.MustParse("o:root:1"), WithStrict(true))
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("Compute() error = %v, want ErrDependencyCycle", err)
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	want := []string{"o:a:1", "o:b:1", "o:c:1", "o:a:1"}
	if got := coord.Strings(cycleErr.Cycle); !slices.Equal(got, want) {
		t.Errorf("Cycle = %v, want %v", got, want)
	}
}

func TestCompute_UnresolvedDependency(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"o:root:1": {"o:a:1"},
		"o:a:1":    {"o:missing:1"},
	})

	_, err := Compute(context.Background(), r, coord.MustParse("o:root:1"))
	if !errors.Is(err, ErrUnresolvedDependency) {
		t.Fatalf("Compute() error = %v, want ErrUnresolvedDependency", err)
	}
	if !errors.Is(err, errNotFound) {
		t.Errorf("Compute() error = %v, want the resolver cause preserved", err)
	}
	var uErr *UnresolvedDependencyError
	if !errors.As(err, &uErr) {
		t.Fatalf("expected *UnresolvedDependencyError, got %T", err)
	}
	if uErr.Dependency != coord.MustParse("o:missing:1") {
		t.Errorf("Dependency = %s", uErr.Dependency)
	}
	if got := coord.Strings(uErr.Trace); !slices.Equal(got, []string{"o:root:1", "o:a:1"}) {
		t.Errorf("Trace = %v", got)
	}
	if !strings.Contains(err.Error(), "o:root:1 -> o:a:1") {
		t.Errorf("error %q should show the trace path", err)
	}
}

func TestCompute_UnresolvedRoot(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, nil)
	if _, err := Compute(context.Background(), r, coord.MustParse("o:none:1")); !errors.Is(err, errNotFound) {
		t.Errorf("Compute() error = %v, want errNotFound", err)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"o:a:1": {"o:c:1", "o:b:1"},
		"o:b:1": {"o:c:1"},
		"o:c:1": nil,
	})
	root := coord.MustParse("o:a:1")

	first, err := Compute(context.Background(), r, root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	second, err := Compute(context.Background(), r, root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if !slices.Equal(first.Order, second.Order) {
		t.Errorf("orders differ: %v vs %v", first.Order, second.Order)
	}
}

func TestVisitor_Trace(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"o:a:1": {"o:b:1", "o:c:1"},
		"o:b:1": {"o:c:1"},
		"o:c:1": {"o:a:1"},
	})

	var buf strings.Builder
	if _, err := Compute(context.Background(), r, coord.MustParse("o:a:1"), WithTrace(&buf)); err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := strings.Join([]string{
		"o:a:1",
		"  o:b:1",
		"    o:c:1",
		"    ^ o:a:1 (cycle)",
		"^ o:c:1",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("trace =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestVisitor_MultipleRoots(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"o:a:1":      {"o:shared:1"},
		"o:b:1":      {"o:shared:1"},
		"o:shared:1": nil,
	})

	v := NewVisitor(r)
	for _, root := range []string{"o:a:1", "o:b:1"} {
		if err := v.Visit(context.Background(), coord.MustParse(root)); err != nil {
			t.Fatalf("Visit(%s) error: %v", root, err)
		}
	}
	if v.State(coord.MustParse("o:shared:1")) != Left {
		t.Errorf("State(shared) = %s, want left", v.State(coord.MustParse("o:shared:1")))
	}
	if v.State(coord.MustParse("o:other:1")) != Unvisited {
		t.Error("unknown coordinates are unvisited")
	}
	want := []string{"o:shared:1", "o:a:1", "o:b:1"}
	if got := coord.Strings(v.Result(coord.MustParse("o:a:1")).Order); !slices.Equal(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestResult_Visited(t *testing.T) {
	t.Parallel()

	r := newGraphResolver(t, map[string][]string{
		"z:z:1": {"b:b:1", "a:a:1"},
		"b:b:1": nil,
		"a:a:1": nil,
	})
	res, err := Compute(context.Background(), r, coord.MustParse("z:z:1"))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got := coord.Strings(res.Visited()); !slices.Equal(got, []string{"a:a:1", "b:b:1", "z:z:1"}) {
		t.Errorf("Visited() = %v", got)
	}
	if got := coord.Strings(res.Dependencies(coord.MustParse("z:z:1"))); !slices.Equal(got, []string{"b:b:1", "a:a:1"}) {
		t.Errorf("Dependencies() = %v", got)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{Unvisited: "unvisited", Entered: "entered", Left: "left", State(7): "State(7)"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
