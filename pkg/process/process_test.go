package process

import (
	"errors"
	"reflect"
	"testing"
)

func mustBuild(t *testing.T, nodes []Node, edges []Edge) *Graph {
	t.Helper()
	g, err := Build(nodes, edges)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

// linearNodes returns Start -> a -> b -> End.
func linearNodes() ([]Node, []Edge) {
	nodes := []Node{
		{ID: "start", Kind: KindStart},
		{ID: "a", Kind: KindTask},
		{ID: "b", Kind: KindTask},
		{ID: "end", Kind: KindEnd},
	}
	edges := []Edge{
		{From: "start", To: "a"},
		{From: "a", To: "b"},
		{From: "b", To: "end"},
	}
	return nodes, edges
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		edges   []Edge
		wantErr error
	}{
		{
			name:    "empty node ID",
			nodes:   []Node{{ID: ""}},
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "duplicate node ID",
			nodes:   []Node{{ID: "a"}, {ID: "a"}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "edge from unknown node",
			nodes:   []Node{{ID: "a"}},
			edges:   []Edge{{From: "ghost", To: "a"}},
			wantErr: ErrUnknownEdgeEndpoint,
		},
		{
			name:    "edge to unknown node",
			nodes:   []Node{{ID: "a"}},
			edges:   []Edge{{From: "a", To: "ghost"}},
			wantErr: ErrUnknownEdgeEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.nodes, tt.edges)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
			if g != nil {
				t.Error("Build() should not return a partial graph on error")
			}
		})
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	g := mustBuild(t, nil, nil)
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty graph has %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestAdjacency(t *testing.T) {
	nodes, edges := linearNodes()
	g := mustBuild(t, nodes, edges)

	succs, err := g.Successors("a")
	if err != nil {
		t.Fatalf("Successors(a) error = %v", err)
	}
	if !reflect.DeepEqual(succs, []string{"b"}) {
		t.Errorf("Successors(a) = %v, want [b]", succs)
	}

	preds, err := g.Predecessors("a")
	if err != nil {
		t.Fatalf("Predecessors(a) error = %v", err)
	}
	if !reflect.DeepEqual(preds, []string{"start"}) {
		t.Errorf("Predecessors(a) = %v, want [start]", preds)
	}

	if _, err := g.Successors("ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Successors(ghost) error = %v, want ErrUnknownNode", err)
	}
	if _, err := g.Predecessors("ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Predecessors(ghost) error = %v, want ErrUnknownNode", err)
	}
}

func TestParallelEdgesKept(t *testing.T) {
	g := mustBuild(t,
		[]Node{{ID: "a"}, {ID: "b"}},
		[]Edge{{From: "a", To: "b"}, {From: "a", To: "b"}},
	)

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (parallel edges must not merge)", g.EdgeCount())
	}
	if g.OutDegree("a") != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", g.OutDegree("a"))
	}
	if got := g.DistinctPredecessors("b"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("DistinctPredecessors(b) = %v, want [a]", got)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	nodes, edges := linearNodes()
	g := mustBuild(t, nodes, edges)

	want := []string{"start", "a", "b", "end"}
	if got := g.NodeIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("NodeIDs() = %v, want %v", got, want)
	}
	if got := g.Edges(); !reflect.DeepEqual(got, edges) {
		t.Errorf("Edges() = %v, want %v", got, edges)
	}
}

func TestNodesOfKind(t *testing.T) {
	nodes, edges := linearNodes()
	g := mustBuild(t, nodes, edges)

	if got := g.NodesOfKind(KindStart); !reflect.DeepEqual(got, []string{"start"}) {
		t.Errorf("NodesOfKind(Start) = %v, want [start]", got)
	}
	if got := g.NodesOfKind(KindTask); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("NodesOfKind(Task) = %v, want [a b]", got)
	}
	if got := g.NodesOfKind(KindGateway); got != nil {
		t.Errorf("NodesOfKind(Gateway) = %v, want nil", got)
	}
}

func TestSourcesAndSinks(t *testing.T) {
	nodes, edges := linearNodes()
	g := mustBuild(t, nodes, edges)

	if got := g.Sources(); !reflect.DeepEqual(got, []string{"start"}) {
		t.Errorf("Sources() = %v, want [start]", got)
	}
	if got := g.Sinks(); !reflect.DeepEqual(got, []string{"end"}) {
		t.Errorf("Sinks() = %v, want [end]", got)
	}
}

func TestDeadEnds(t *testing.T) {
	// "b" has no outgoing edge and is not End-kind.
	g := mustBuild(t,
		[]Node{
			{ID: "start", Kind: KindStart},
			{ID: "b", Kind: KindTask},
			{ID: "end", Kind: KindEnd},
		},
		[]Edge{
			{From: "start", To: "b"},
			{From: "start", To: "end"},
		},
	)

	if got := g.DeadEnds(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("DeadEnds() = %v, want [b]", got)
	}
}

func TestKindRoundTrip(t *testing.T) {
	kinds := []Kind{KindTask, KindStart, KindEnd, KindGateway, KindEvent}
	for _, k := range kinds {
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, ok)
		}
	}

	if _, ok := ParseKind("Sprocket"); ok {
		t.Error("ParseKind(Sprocket) should fail")
	}
	if _, ok := ParseKind("task"); ok {
		t.Error("ParseKind is case-sensitive; lowercase should fail")
	}
}

func TestNodesReturnsCopy(t *testing.T) {
	nodes, edges := linearNodes()
	g := mustBuild(t, nodes, edges)

	got := g.Nodes()
	got[0].ID = "mutated"

	if g.Nodes()[0].ID != "start" {
		t.Error("mutating the returned slice changed the graph")
	}
}
