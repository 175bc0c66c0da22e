// Package layout computes deterministic 2-D positions for a process graph.
//
// Nodes are assigned to layers by multi-source breadth-first distance from
// the graph's start nodes, ordered within each layer so siblings stay close
// to source order, and scaled by configurable spacing constants. The result
// is a pure function of (graph structure, spacing configuration): no
// randomness, no clock, no map iteration order leaks into the output, so
// identical inputs always produce bit-identical coordinates.
package layout

import (
	"math"
	"slices"

	"github.com/procscope/procscope/pkg/process"
)

// Default spacing constants. Chosen so node glyphs of a typical fixed pixel
// size (120x60) do not overlap at default zoom.
const (
	DefaultNodeSpacingX  = 170.0
	DefaultLayerSpacingY = 120.0
)

// Config holds the spacing constants applied to the computed grid.
// The zero value is usable; zero or negative spacings fall back to the
// package defaults.
type Config struct {
	NodeSpacingX  float64 // horizontal distance between sibling nodes
	LayerSpacingY float64 // vertical distance between layers
}

func (c Config) withDefaults() Config {
	if c.NodeSpacingX <= 0 {
		c.NodeSpacingX = DefaultNodeSpacingX
	}
	if c.LayerSpacingY <= 0 {
		c.LayerSpacingY = DefaultLayerSpacingY
	}
	return c
}

// Placement is the computed position of a single node. Layer is the BFS
// distance class (the y coordinate divided by the layer spacing); X is the
// within-layer position scaled by the node spacing.
type Placement struct {
	ID    string
	X     float64
	Y     float64
	Layer int
}

// Result maps every node of the graph to a placement.
//
// Placements are ordered by layer, then by within-layer position, which is
// also the order they were assigned. Isolated lists nodes that no layering
// root could reach; they sit in layer 0 and callers may want to surface
// them. Degenerate is set when the graph had no Start-kind node and no
// zero-in-degree node, forcing an arbitrary (lexicographically smallest)
// root - layout is still produced.
type Result struct {
	Placements []Placement
	Isolated   []string
	Degenerate bool

	byID map[string]Placement
}

// Placement returns the placement for a node ID and true, or a zero
// placement and false if the node is not part of the result.
func (r *Result) Placement(id string) (Placement, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Layers groups the placed node IDs by layer, ordered by within-layer
// position. The outer slice index is the layer number.
func (r *Result) Layers() [][]string {
	maxLayer := -1
	for _, p := range r.Placements {
		if p.Layer > maxLayer {
			maxLayer = p.Layer
		}
	}
	layers := make([][]string, maxLayer+1)
	for _, p := range r.Placements {
		layers[p.Layer] = append(layers[p.Layer], p.ID)
	}
	return layers
}

// Restore rebuilds a Result from previously computed placements, for
// callers deserializing a cached or exported layout. Placements must be in
// assignment order (layer, then within-layer position).
func Restore(placements []Placement, isolated []string, degenerate bool) *Result {
	res := &Result{
		Placements: placements,
		Isolated:   isolated,
		Degenerate: degenerate,
		byID:       make(map[string]Placement, len(placements)),
	}
	for _, p := range placements {
		res.byID[p.ID] = p
	}
	return res
}

// Compute runs the layered layout over g.
//
// Layering roots are chosen in order of preference: all Start-kind nodes;
// failing that, all nodes with zero in-degree; failing that (a fully cyclic
// graph with no source), the single lexicographically smallest node ID, and
// Result.Degenerate is set. A multi-source BFS then assigns each node the
// minimum distance from any root - first visit wins, so back edges never
// push a node past the longest acyclic prefix. Unreached nodes land in
// layer 0 and are listed in Result.Isolated.
//
// Within a layer, nodes are ordered by the minimum placed position among
// their already-placed predecessors (keeping siblings close to source
// order), tie-broken by node ID.
func Compute(g *process.Graph, cfg Config) *Result {
	cfg = cfg.withDefaults()
	res := &Result{byID: make(map[string]Placement, g.NodeCount())}
	if g.NodeCount() == 0 {
		return res
	}

	roots := pickRoots(g, res)
	layers := assignLayers(g, roots)

	// Nodes the BFS never reached: layer 0, flagged isolated.
	for _, id := range g.NodeIDs() {
		if _, ok := layers[id]; !ok {
			layers[id] = 0
			res.Isolated = append(res.Isolated, id)
		}
	}

	placeNodes(g, layers, cfg, res)
	return res
}

// pickRoots selects the BFS start set per the root preference order.
func pickRoots(g *process.Graph, res *Result) []string {
	if roots := g.NodesOfKind(process.KindStart); len(roots) > 0 {
		return roots
	}
	if roots := g.Sources(); len(roots) > 0 {
		return roots
	}
	res.Degenerate = true
	return []string{slices.Min(g.NodeIDs())}
}

// assignLayers runs a multi-source BFS and returns the distance of every
// reached node. First visit wins; later visits at equal or greater distance
// are ignored, which is what keeps cycles from inflating layers.
func assignLayers(g *process.Graph, roots []string) map[string]int {
	layers := make(map[string]int, g.NodeCount())
	queue := make([]string, 0, g.NodeCount())
	for _, r := range roots {
		if _, seen := layers[r]; !seen {
			layers[r] = 0
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		succs, _ := g.Successors(curr)
		for _, next := range succs {
			if _, seen := layers[next]; seen {
				continue
			}
			layers[next] = layers[curr] + 1
			queue = append(queue, next)
		}
	}
	return layers
}

// placeNodes orders each layer and scales positions into coordinates.
func placeNodes(g *process.Graph, layers map[string]int, cfg Config, res *Result) {
	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}

	grouped := make([][]string, maxLayer+1)
	for _, id := range g.NodeIDs() {
		l := layers[id]
		grouped[l] = append(grouped[l], id)
	}

	// Position of every already-placed node within its layer.
	placed := make(map[string]int, g.NodeCount())

	for layer, ids := range grouped {
		type ranked struct {
			id  string
			key int
		}
		rank := make([]ranked, len(ids))
		for i, id := range ids {
			key := math.MaxInt
			preds, _ := g.Predecessors(id)
			for _, p := range preds {
				if pos, ok := placed[p]; ok && layers[p] < layer && pos < key {
					key = pos
				}
			}
			rank[i] = ranked{id: id, key: key}
		}
		slices.SortStableFunc(rank, func(a, b ranked) int {
			if a.key != b.key {
				if a.key < b.key {
					return -1
				}
				return 1
			}
			if a.id < b.id {
				return -1
			}
			if a.id > b.id {
				return 1
			}
			return 0
		})

		for i, r := range rank {
			placed[r.id] = i
			p := Placement{
				ID:    r.id,
				X:     float64(i) * cfg.NodeSpacingX,
				Y:     float64(layer) * cfg.LayerSpacingY,
				Layer: layer,
			}
			res.Placements = append(res.Placements, p)
			res.byID[r.id] = p
		}
	}
}
