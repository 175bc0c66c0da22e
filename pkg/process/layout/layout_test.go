package layout

import (
	"reflect"
	"testing"

	"github.com/procscope/procscope/pkg/process"
)

func build(t *testing.T, nodes []process.Node, edges []process.Edge) *process.Graph {
	t.Helper()
	g, err := process.Build(nodes, edges)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

// chain builds start -> a -> b -> end.
func chain(t *testing.T) *process.Graph {
	return build(t,
		[]process.Node{
			{ID: "start", Kind: process.KindStart},
			{ID: "a", Kind: process.KindTask},
			{ID: "b", Kind: process.KindTask},
			{ID: "end", Kind: process.KindEnd},
		},
		[]process.Edge{
			{From: "start", To: "a"},
			{From: "a", To: "b"},
			{From: "b", To: "end"},
		},
	)
}

// diamond builds start -> {left, right} -> end.
func diamond(t *testing.T) *process.Graph {
	return build(t,
		[]process.Node{
			{ID: "start", Kind: process.KindStart},
			{ID: "left", Kind: process.KindTask},
			{ID: "right", Kind: process.KindTask},
			{ID: "end", Kind: process.KindEnd},
		},
		[]process.Edge{
			{From: "start", To: "left"},
			{From: "start", To: "right"},
			{From: "left", To: "end"},
			{From: "right", To: "end"},
		},
	)
}

func layerOf(t *testing.T, res *Result, id string) int {
	t.Helper()
	p, ok := res.Placement(id)
	if !ok {
		t.Fatalf("node %s missing from result", id)
	}
	return p.Layer
}

func TestComputeLinearChain(t *testing.T) {
	res := Compute(chain(t), Config{})

	want := map[string]int{"start": 0, "a": 1, "b": 2, "end": 3}
	for id, layer := range want {
		if got := layerOf(t, res, id); got != layer {
			t.Errorf("layer(%s) = %d, want %d", id, got, layer)
		}
	}
	if res.Degenerate {
		t.Error("chain should not be degenerate")
	}
	if len(res.Isolated) != 0 {
		t.Errorf("Isolated = %v, want none", res.Isolated)
	}
}

func TestComputeDiamond(t *testing.T) {
	res := Compute(diamond(t), Config{})

	if got := layerOf(t, res, "left"); got != 1 {
		t.Errorf("layer(left) = %d, want 1", got)
	}
	if got := layerOf(t, res, "right"); got != 1 {
		t.Errorf("layer(right) = %d, want 1", got)
	}
	if got := layerOf(t, res, "end"); got != 2 {
		t.Errorf("layer(end) = %d, want 2", got)
	}

	layers := res.Layers()
	if len(layers) != 3 {
		t.Fatalf("Layers() has %d layers, want 3", len(layers))
	}
	// Same predecessor position, so siblings order by node ID.
	if !reflect.DeepEqual(layers[1], []string{"left", "right"}) {
		t.Errorf("layer 1 = %v, want [left right]", layers[1])
	}
}

func TestComputeSpacing(t *testing.T) {
	res := Compute(diamond(t), Config{NodeSpacingX: 100, LayerSpacingY: 50})

	left, _ := res.Placement("left")
	right, _ := res.Placement("right")
	if left.X != 0 || right.X != 100 {
		t.Errorf("X positions = %v, %v, want 0, 100", left.X, right.X)
	}
	if left.Y != 50 {
		t.Errorf("Y(left) = %v, want 50", left.Y)
	}

	end, _ := res.Placement("end")
	if end.Y != 100 {
		t.Errorf("Y(end) = %v, want 100", end.Y)
	}
}

func TestComputeDefaultSpacing(t *testing.T) {
	res := Compute(chain(t), Config{})

	a, _ := res.Placement("a")
	if a.Y != DefaultLayerSpacingY {
		t.Errorf("Y(a) = %v, want %v", a.Y, DefaultLayerSpacingY)
	}
}

// Back edges must not inflate layers: first BFS visit wins.
func TestComputeReworkLoop(t *testing.T) {
	g := build(t,
		[]process.Node{
			{ID: "start", Kind: process.KindStart},
			{ID: "review", Kind: process.KindTask},
			{ID: "fix", Kind: process.KindTask},
			{ID: "end", Kind: process.KindEnd},
		},
		[]process.Edge{
			{From: "start", To: "review"},
			{From: "review", To: "fix"},
			{From: "fix", To: "review"}, // rework loop
			{From: "review", To: "end"},
		},
	)

	res := Compute(g, Config{})
	if got := layerOf(t, res, "review"); got != 1 {
		t.Errorf("layer(review) = %d, want 1 (cycle must not push it deeper)", got)
	}
	if got := layerOf(t, res, "fix"); got != 2 {
		t.Errorf("layer(fix) = %d, want 2", got)
	}
}

// A fully cyclic graph has no start and no source; the smallest node ID
// becomes the root and the result is flagged.
func TestComputeDegenerate(t *testing.T) {
	g := build(t,
		[]process.Node{
			{ID: "b", Kind: process.KindTask},
			{ID: "a", Kind: process.KindTask},
		},
		[]process.Edge{
			{From: "a", To: "b"},
			{From: "b", To: "a"},
		},
	)

	res := Compute(g, Config{})
	if !res.Degenerate {
		t.Error("fully cyclic graph should be flagged degenerate")
	}
	if got := layerOf(t, res, "a"); got != 0 {
		t.Errorf("layer(a) = %d, want 0 (lexicographically smallest root)", got)
	}
	if got := layerOf(t, res, "b"); got != 1 {
		t.Errorf("layer(b) = %d, want 1", got)
	}
}

func TestComputeIsolatedNodes(t *testing.T) {
	g := build(t,
		[]process.Node{
			{ID: "start", Kind: process.KindStart},
			{ID: "end", Kind: process.KindEnd},
			{ID: "orphan", Kind: process.KindTask},
			{ID: "island", Kind: process.KindTask},
		},
		[]process.Edge{
			{From: "start", To: "end"},
			{From: "island", To: "orphan"},
		},
	)

	res := Compute(g, Config{})
	// start is the only root; island and orphan are unreachable from it.
	if !reflect.DeepEqual(res.Isolated, []string{"orphan", "island"}) {
		t.Errorf("Isolated = %v, want [orphan island]", res.Isolated)
	}
	for _, id := range res.Isolated {
		if got := layerOf(t, res, id); got != 0 {
			t.Errorf("isolated node %s in layer %d, want 0", id, got)
		}
	}
	if len(res.Placements) != g.NodeCount() {
		t.Errorf("placed %d nodes, want %d (every node gets a position)",
			len(res.Placements), g.NodeCount())
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	g := build(t, nil, nil)
	res := Compute(g, Config{})
	if len(res.Placements) != 0 || res.Degenerate {
		t.Errorf("empty graph: placements = %v, degenerate = %v", res.Placements, res.Degenerate)
	}
}

// Identical inputs must produce bit-identical results.
func TestComputeDeterministic(t *testing.T) {
	g := diamond(t)
	first := Compute(g, Config{})
	for i := 0; i < 10; i++ {
		again := Compute(g, Config{})
		if !reflect.DeepEqual(first.Placements, again.Placements) {
			t.Fatalf("run %d differs:\n%v\n%v", i, first.Placements, again.Placements)
		}
	}
}

func TestRestore(t *testing.T) {
	g := chain(t)
	orig := Compute(g, Config{})

	restored := Restore(orig.Placements, orig.Isolated, orig.Degenerate)
	if !reflect.DeepEqual(restored.Placements, orig.Placements) {
		t.Error("Restore() changed placements")
	}
	p, ok := restored.Placement("b")
	if !ok {
		t.Fatal("Placement(b) not found after Restore")
	}
	if want, _ := orig.Placement("b"); p != want {
		t.Errorf("Placement(b) = %+v, want %+v", p, want)
	}
}
