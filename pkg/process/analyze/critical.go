package analyze

import (
	"errors"
	"fmt"

	"github.com/procscope/procscope/pkg/process"
)

// ErrNoPath is returned by [ComputeCriticalPath] when the graph contains no
// start-to-end path at all. A graph whose cycles are reachable from a start
// node but never reach an end node falls in this category: the calculator
// refuses to return a cyclic "path".
var ErrNoPath = errors.New("no start-to-end path exists")

// Weight selects which node attribute accumulates along a path.
type Weight int

const (
	// WeightDuration sums the per-node duration attribute.
	WeightDuration Weight = iota
	// WeightCost sums the per-node cost attribute.
	WeightCost
)

// String returns "duration" or "cost".
func (w Weight) String() string {
	if w == WeightCost {
		return "cost"
	}
	return "duration"
}

// ParseWeight converts "duration" or "cost" to a Weight.
// Returns false for anything else.
func ParseWeight(s string) (Weight, bool) {
	switch s {
	case "duration":
		return WeightDuration, true
	case "cost":
		return WeightCost, true
	}
	return WeightDuration, false
}

// CriticalPath is the start-to-end path with the maximal accumulated
// weight, together with that weight.
type CriticalPath struct {
	Nodes  Path
	Weight float64
}

// ComputeCriticalPath finds the start-to-end path maximizing the sum of the
// selected weight attribute over the path's nodes. Absent attributes count
// as zero, so a graph with no weights at all still yields a result: the
// shortest-hop path with weight 0 rather than an error.
//
// Ties are broken by preferring the path with fewer nodes, then the
// lexicographically smallest node-ID sequence, which makes the result a
// pure, order-independent function of the graph.
//
// Returns an error wrapping [ErrNoPath] when no start-to-end path exists.
// If enumeration hit the [PathOptions] length bound, the best path among
// those found is still returned; the bound only narrows the candidate set.
func ComputeCriticalPath(g *process.Graph, w Weight, opts PathOptions) (CriticalPath, error) {
	paths, err := EnumeratePaths(g, opts)
	if err != nil && !errors.Is(err, ErrPathLimit) {
		return CriticalPath{}, err
	}
	if len(paths) == 0 {
		return CriticalPath{}, fmt.Errorf("critical path (%s): %w", w, ErrNoPath)
	}

	best := CriticalPath{Nodes: paths[0], Weight: pathWeight(g, paths[0], w)}
	for _, p := range paths[1:] {
		candidate := CriticalPath{Nodes: p, Weight: pathWeight(g, p, w)}
		if better(candidate, best) {
			best = candidate
		}
	}
	return best, nil
}

// better reports whether a beats b under the weight-then-ties ordering.
func better(a, b CriticalPath) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	if len(a.Nodes) != len(b.Nodes) {
		return len(a.Nodes) < len(b.Nodes)
	}
	return a.Nodes.Compare(b.Nodes) < 0
}

func pathWeight(g *process.Graph, p Path, w Weight) float64 {
	var total float64
	for _, id := range p {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		switch w {
		case WeightCost:
			if n.Cost != nil {
				total += *n.Cost
			}
		default:
			if n.Duration != nil {
				total += *n.Duration
			}
		}
	}
	return total
}
