package export

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/analyze"
	"github.com/procscope/procscope/pkg/process/layout"
)

func f(v float64) *float64 { return &v }

func sampleGraph(t *testing.T) *process.Graph {
	t.Helper()
	g, err := process.Build(
		[]process.Node{
			{ID: "start", Label: "Receive order", Kind: process.KindStart, Duration: f(0.5)},
			{ID: "pick", Label: "Pick items", Kind: process.KindTask, Duration: f(4), Cost: f(12), Role: "warehouse"},
			{ID: "end", Label: "Shipped", Kind: process.KindEnd},
		},
		[]process.Edge{
			{From: "start", To: "pick"},
			{From: "pick", To: "end"},
		},
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestDocumentRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	info := ProcessInfo{ID: "orders", Name: "Order fulfillment"}

	doc := Build(info, g, Sections{})
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(back, doc) {
		t.Errorf("round trip changed document:\ngot  %+v\nwant %+v", back, doc)
	}

	g2, err := ToGraph(back)
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	if !reflect.DeepEqual(g2.Nodes(), g.Nodes()) {
		t.Errorf("nodes differ after round trip")
	}
	if !reflect.DeepEqual(g2.Edges(), g.Edges()) {
		t.Errorf("edges differ after round trip")
	}
}

func TestDocumentOmitsEmptySections(t *testing.T) {
	doc := Build(ProcessInfo{ID: "p"}, sampleGraph(t), Sections{})
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(data)
	for _, key := range []string{"layout", "paths", "bottlenecks", "criticalPath"} {
		if strings.Contains(s, `"`+key+`"`) {
			t.Errorf("document without sections contains %q key", key)
		}
	}
}

func TestDocumentSections(t *testing.T) {
	g := sampleGraph(t)
	lr := layout.Compute(g, layout.Config{})
	paths, err := analyze.EnumeratePaths(g, analyze.PathOptions{})
	if err != nil {
		t.Fatalf("EnumeratePaths() error = %v", err)
	}
	cp, err := analyze.ComputeCriticalPath(g, analyze.WeightDuration, analyze.PathOptions{})
	if err != nil {
		t.Fatalf("ComputeCriticalPath() error = %v", err)
	}

	doc := Build(ProcessInfo{ID: "orders"}, g, Sections{
		Layout:      lr,
		Paths:       paths,
		Bottlenecks: analyze.FindBottlenecks(g),
		Critical:    &cp,
	})

	if len(doc.Layout) != g.NodeCount() {
		t.Errorf("layout has %d placements, want %d", len(doc.Layout), g.NodeCount())
	}
	if len(doc.Paths) != 1 {
		t.Errorf("paths = %v, want one", doc.Paths)
	}
	if doc.Critical == nil || doc.Critical.Weight != 4.5 {
		t.Errorf("critical = %+v, want weight 4.5", doc.Critical)
	}

	// Sections survive serialization.
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(back.Paths, doc.Paths) {
		t.Errorf("paths changed: %v != %v", back.Paths, doc.Paths)
	}
}

func TestDocumentJSONKeys(t *testing.T) {
	g := sampleGraph(t)
	doc := Build(ProcessInfo{ID: "orders"}, g, Sections{
		Bottlenecks: []analyze.Bottleneck{{ID: "pick", DistinctPredecessors: 2}},
	})
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"distinctPredecessorCount": 2`) {
		t.Errorf("bottleneck count key missing:\n%s", s)
	}
	if !strings.Contains(s, `"kind": "Start"`) {
		t.Errorf("kind names should serialize as canonical strings:\n%s", s)
	}
}

func TestToGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			name: "unknown kind",
			doc: Document{
				Nodes: []Node{{ID: "a", Kind: "Sprocket"}},
			},
		},
		{
			name: "duplicate node",
			doc: Document{
				Nodes: []Node{{ID: "a", Kind: "Task"}, {ID: "a", Kind: "Task"}},
			},
		},
		{
			name: "dangling edge",
			doc: Document{
				Nodes: []Node{{ID: "a", Kind: "Task"}},
				Edges: []Edge{{From: "a", To: "ghost"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToGraph(tt.doc); err == nil {
				t.Error("ToGraph() should fail")
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	doc := Build(ProcessInfo{ID: "orders"}, sampleGraph(t), Sections{})
	path := filepath.Join(t.TempDir(), "orders.json")

	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !reflect.DeepEqual(back, doc) {
		t.Error("file round trip changed document")
	}
}

func TestNodesCSV(t *testing.T) {
	data, err := NodesCSV(sampleGraph(t))
	if err != nil {
		t.Fatalf("NodesCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), data)
	}
	if lines[0] != "ID,Label,Kind,Duration,Cost,Role" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "pick,Pick items,Task,4,12,warehouse" {
		t.Errorf("pick row = %q", lines[2])
	}
	// Absent weights are empty cells, not zeros.
	if lines[3] != "end,Shipped,End,,," {
		t.Errorf("end row = %q", lines[3])
	}
}

func TestEdgesCSV(t *testing.T) {
	data, err := EdgesCSV(sampleGraph(t))
	if err != nil {
		t.Fatalf("EdgesCSV() error = %v", err)
	}

	want := "Source,Target\nstart,pick\npick,end\n"
	if string(data) != want {
		t.Errorf("EdgesCSV() = %q, want %q", data, want)
	}
}

func TestToDOT(t *testing.T) {
	g := sampleGraph(t)
	dot := ToDOT(g, DOTOptions{})

	for _, want := range []string{
		"digraph process {",
		`"start" [label="Receive order", fillcolor="#2ecc71"]`,
		`"pick" -> "end";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("DOT without layout should not pin positions")
	}
}

func TestToDOTWithLayout(t *testing.T) {
	g := sampleGraph(t)
	lr := layout.Compute(g, layout.Config{NodeSpacingX: 100, LayerSpacingY: 50})
	dot := ToDOT(g, DOTOptions{Detailed: true, Layout: lr})

	if !strings.Contains(dot, `pos="0,-50!"`) {
		t.Errorf("DOT missing pinned position for pick:\n%s", dot)
	}
	if !strings.Contains(dot, "duration: 4") {
		t.Errorf("detailed DOT missing duration label:\n%s", dot)
	}
	if !strings.Contains(dot, "role: warehouse") {
		t.Errorf("detailed DOT missing role label:\n%s", dot)
	}
}
