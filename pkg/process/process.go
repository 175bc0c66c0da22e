package process

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Build] when a node has an empty ID.
	// All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Build] when two nodes share the same
	// ID. Node IDs must be unique within a graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEdgeEndpoint is returned by [Build] when an edge references a
	// node ID that is not part of the node list.
	ErrUnknownEdgeEndpoint = errors.New("edge references unknown node")

	// ErrUnknownNode is returned by [Graph.Successors] and
	// [Graph.Predecessors] when the queried node ID does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Kind classifies a workflow step. The set is closed: every consumer
// (layout, analysis, export) switches exhaustively over these five values
// instead of inspecting node attributes at runtime.
type Kind int

const (
	// KindTask represents a regular work step.
	KindTask Kind = iota
	// KindStart marks a process entry point. A graph is expected to have
	// one, but the engine tolerates zero or several.
	KindStart
	// KindEnd marks a process exit point.
	KindEnd
	// KindGateway represents a branching or merging decision point.
	KindGateway
	// KindEvent represents an intermediate event (timer, message, signal).
	KindEvent
)

var kindNames = map[Kind]string{
	KindTask:    "Task",
	KindStart:   "Start",
	KindEnd:     "End",
	KindGateway: "Gateway",
	KindEvent:   "Event",
}

// String returns the canonical name of the kind ("Task", "Start", ...).
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a kind name back to its Kind value.
// Returns false for unrecognized names.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindTask, false
}

// Node represents one workflow step. Duration and Cost are optional weight
// attributes; nil means the attribute is absent (analysis treats absent as
// zero). Role is free-text and absent when empty.
//
// The zero value is not usable directly - ID must be set before the node is
// passed to [Build].
type Node struct {
	ID       string
	Label    string
	Kind     Kind
	Duration *float64
	Cost     *float64
	Role     string
}

// Edge is a directed sequence relation between two nodes of the same graph.
// Multiple edges between the same ordered pair are permitted and represent
// parallel flows; they are kept as-is, never merged.
type Edge struct {
	From string
	To   string
}

// Graph is a validated, read-only index over one process definition.
//
// A Graph is built once by [Build] and never mutated afterwards, so it is
// safe to share between goroutines without locking. Cycles are expected
// domain data (rework loops), not an error - construction performs no
// acyclicity check.
type Graph struct {
	nodes map[string]Node
	order []string // node IDs in insertion order
	edges []Edge

	successors   map[string][]string // edge targets, insertion order
	predecessors map[string][]string // edge sources, insertion order
}

// Build constructs a Graph from nodes and edges.
//
// It returns ErrInvalidNodeID for an empty node ID, ErrDuplicateNodeID when
// an ID appears twice, or ErrUnknownEdgeEndpoint when an edge references a
// node that is not in the list. On error no partial graph is produced.
//
// Adjacency lists are computed eagerly in O(V+E); all later queries are
// index lookups.
func Build(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes:        make(map[string]Node, len(nodes)),
		order:        make([]string, 0, len(nodes)),
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, ErrInvalidNodeID
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, e := range edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownEdgeEndpoint)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownEdgeEndpoint)
		}
		g.edges = append(g.edges, e)
		g.successors[e.From] = append(g.successors[e.From], e.To)
		g.predecessors[e.To] = append(g.predecessors[e.To], e.From)
	}

	return g, nil
}

// Node returns the node with the given ID and true, or a zero Node and
// false if not found.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice is a copy; modifying it does not affect the graph.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Edges returns a copy of all edges in insertion order. Parallel edges
// between the same pair appear once per occurrence.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the IDs this node has edges to, in edge insertion
// order. Returns ErrUnknownNode if the ID does not exist. The returned
// slice must be treated as read-only.
func (g *Graph) Successors(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("successors of %s: %w", id, ErrUnknownNode)
	}
	return g.successors[id], nil
}

// Predecessors returns the IDs that have edges to this node, in edge
// insertion order. Returns ErrUnknownNode if the ID does not exist. The
// returned slice must be treated as read-only.
func (g *Graph) Predecessors(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("predecessors of %s: %w", id, ErrUnknownNode)
	}
	return g.predecessors[id], nil
}

// DistinctPredecessors returns the set of distinct predecessor node IDs,
// in first-seen edge order. Parallel edges from the same source count once.
func (g *Graph) DistinctPredecessors(id string) []string {
	seen := make(map[string]bool)
	var distinct []string
	for _, p := range g.predecessors[id] {
		if !seen[p] {
			seen[p] = true
			distinct = append(distinct, p)
		}
	}
	return distinct
}

// OutDegree returns the number of outgoing edges from the node,
// counting parallel edges. Returns 0 if the node does not exist.
func (g *Graph) OutDegree(id string) int { return len(g.successors[id]) }

// InDegree returns the number of incoming edges to the node,
// counting parallel edges. Returns 0 if the node does not exist.
func (g *Graph) InDegree(id string) int { return len(g.predecessors[id]) }

// NodesOfKind returns the IDs of all nodes with the given kind,
// in insertion order.
func (g *Graph) NodesOfKind(kind Kind) []string {
	var ids []string
	for _, id := range g.order {
		if g.nodes[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// Sources returns the IDs of nodes with no incoming edges, in insertion
// order. These are the layering roots when no Start-kind node exists.
func (g *Graph) Sources() []string {
	var sources []string
	for _, id := range g.order {
		if len(g.predecessors[id]) == 0 {
			sources = append(sources, id)
		}
	}
	return sources
}

// Sinks returns the IDs of nodes with no outgoing edges, in insertion order.
func (g *Graph) Sinks() []string {
	var sinks []string
	for _, id := range g.order {
		if len(g.successors[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// DeadEnds returns nodes that have no outgoing edges but are not End-kind.
// Such nodes indicate a modeling mistake; they are reported here rather
// than silently dropped by any analysis.
func (g *Graph) DeadEnds() []string {
	var dead []string
	for _, id := range g.order {
		if len(g.successors[id]) == 0 && g.nodes[id].Kind != KindEnd {
			dead = append(dead, id)
		}
	}
	return dead
}
