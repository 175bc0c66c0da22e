package export

import (
	"fmt"

	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/analyze"
	"github.com/procscope/procscope/pkg/process/layout"
)

// =============================================================================
// Document - Process Interchange Format
// =============================================================================

// Document is the self-describing interchange format for a process graph
// plus any subset of its analysis results. It is used for file export, API
// responses, and graph store persistence.
//
// Only Process, Nodes, and Edges are mandatory; each analysis section may
// be present or absent independently. A document with no optional sections
// is a plain graph export and round-trips through [ToGraph] and [Build]
// into an isomorphic graph (same node IDs, attributes, and edge multiset).
// Layout is advisory: it is recomputed from structure, never treated as
// ground truth.
type Document struct {
	Process     ProcessInfo   `json:"process" bson:"process"`
	Nodes       []Node        `json:"nodes" bson:"nodes"`
	Edges       []Edge        `json:"edges" bson:"edges"`
	Layout      []Placement   `json:"layout,omitempty" bson:"layout,omitempty"`
	Paths       [][]string    `json:"paths,omitempty" bson:"paths,omitempty"`
	Bottlenecks []Bottleneck  `json:"bottlenecks,omitempty" bson:"bottlenecks,omitempty"`
	Critical    *CriticalPath `json:"criticalPath,omitempty" bson:"critical_path,omitempty"`
}

// ProcessInfo identifies the process a document describes.
type ProcessInfo struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Node is the serialized form of a workflow step. Duration and Cost are
// pointers so absent attributes stay absent across round trips.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Label    string   `json:"label,omitempty" bson:"label,omitempty"`
	Kind     string   `json:"kind" bson:"kind"`
	Duration *float64 `json:"duration,omitempty" bson:"duration,omitempty"`
	Cost     *float64 `json:"cost,omitempty" bson:"cost,omitempty"`
	Role     string   `json:"role,omitempty" bson:"role,omitempty"`
}

// Edge is a serialized directed sequence relation.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Placement is a serialized layout position.
type Placement struct {
	ID    string  `json:"id" bson:"id"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Layer int     `json:"layer" bson:"layer"`
}

// Bottleneck is a serialized convergence record.
type Bottleneck struct {
	ID                   string `json:"id" bson:"id"`
	DistinctPredecessors int    `json:"distinctPredecessorCount" bson:"distinct_predecessor_count"`
}

// CriticalPath is a serialized critical path result.
type CriticalPath struct {
	Nodes  []string `json:"nodes" bson:"nodes"`
	Weight float64  `json:"weight" bson:"weight"`
}

// =============================================================================
// Sections - Optional Analysis Payloads
// =============================================================================

// Sections collects the analysis results to embed in a document. Nil fields
// are omitted, so any subset can be exported.
type Sections struct {
	Layout      *layout.Result
	Paths       []analyze.Path
	Bottlenecks []analyze.Bottleneck
	Critical    *analyze.CriticalPath
}

// =============================================================================
// Graph <-> Document Conversion
// =============================================================================

// Build serializes a graph and the given analysis sections into a document.
// Nodes and edges keep the graph's insertion order, which is deterministic
// because the graph itself preserves construction order.
func Build(info ProcessInfo, g *process.Graph, s Sections) Document {
	doc := Document{
		Process: info,
		Nodes:   make([]Node, 0, g.NodeCount()),
		Edges:   make([]Edge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, Node{
			ID:       n.ID,
			Label:    n.Label,
			Kind:     n.Kind.String(),
			Duration: n.Duration,
			Cost:     n.Cost,
			Role:     n.Role,
		})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, Edge{From: e.From, To: e.To})
	}

	if s.Layout != nil {
		doc.Layout = make([]Placement, 0, len(s.Layout.Placements))
		for _, p := range s.Layout.Placements {
			doc.Layout = append(doc.Layout, Placement{ID: p.ID, X: p.X, Y: p.Y, Layer: p.Layer})
		}
	}
	if s.Paths != nil {
		doc.Paths = make([][]string, 0, len(s.Paths))
		for _, p := range s.Paths {
			doc.Paths = append(doc.Paths, p.Clone())
		}
	}
	if s.Bottlenecks != nil {
		doc.Bottlenecks = make([]Bottleneck, 0, len(s.Bottlenecks))
		for _, b := range s.Bottlenecks {
			doc.Bottlenecks = append(doc.Bottlenecks, Bottleneck{
				ID:                   b.ID,
				DistinctPredecessors: b.DistinctPredecessors,
			})
		}
	}
	if s.Critical != nil {
		doc.Critical = &CriticalPath{
			Nodes:  s.Critical.Nodes.Clone(),
			Weight: s.Critical.Weight,
		}
	}

	return doc
}

// ToGraph reconstructs a graph from a document's nodes and edges. Analysis
// sections are ignored: layout and analyses are recomputed, not restored.
//
// Returns an error when a node kind is not one of the five known names or
// when [process.Build] rejects the structure (duplicate ID, unknown edge
// endpoint).
func ToGraph(doc Document) (*process.Graph, error) {
	nodes := make([]process.Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		kind, ok := process.ParseKind(n.Kind)
		if !ok {
			return nil, fmt.Errorf("node %s: unknown kind %q", n.ID, n.Kind)
		}
		nodes = append(nodes, process.Node{
			ID:       n.ID,
			Label:    n.Label,
			Kind:     kind,
			Duration: n.Duration,
			Cost:     n.Cost,
			Role:     n.Role,
		})
	}

	edges := make([]process.Edge, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		edges = append(edges, process.Edge{From: e.From, To: e.To})
	}

	g, err := process.Build(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.Process.ID, err)
	}
	return g, nil
}
