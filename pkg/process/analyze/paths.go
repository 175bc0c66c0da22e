package analyze

import (
	"errors"
	"fmt"

	"github.com/procscope/procscope/pkg/process"
)

// ErrPathLimit is returned by [EnumeratePaths] when the search hit the
// configured path length bound. It is a signal, not a failure: the paths
// discovered before the bound was hit are returned alongside it.
var ErrPathLimit = errors.New("path length limit exceeded")

// Path is an ordered sequence of node IDs from a start node to an end node.
// A path is simple: no node appears twice.
type Path []string

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Compare orders two paths lexicographically by node ID sequence.
// It follows the slices.Compare contract (-1, 0, +1).
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] < q[i] {
			return -1
		}
		if p[i] > q[i] {
			return 1
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	}
	return 0
}

// PathOptions bounds the exhaustive search.
type PathOptions struct {
	// MaxPathLength caps the number of nodes on a single path. Zero means
	// the default of twice the graph's node count. Exceeding the cap stops
	// enumeration for the affected start node and surfaces [ErrPathLimit]
	// with the paths found so far.
	MaxPathLength int
}

func (o PathOptions) maxLen(g *process.Graph) int {
	if o.MaxPathLength > 0 {
		return o.MaxPathLength
	}
	return 2 * g.NodeCount()
}

// EnumeratePaths lists every simple path from each Start-kind node to each
// End-kind node, in depth-first discovery order over successors.
//
// The visited set is scoped to the current path, not global, which both
// guarantees termination on cyclic graphs and enforces the simple-path
// contract. A start node with no outgoing edges, or a graph with no end
// nodes, yields an empty result and no error.
//
// Parallel edges are distinct routes, so they produce one path per edge:
// the same node sequence appears once for each way of reaching it.
//
// If the search exceeds opts.MaxPathLength the partial result is returned
// together with an error wrapping [ErrPathLimit].
func EnumeratePaths(g *process.Graph, opts PathOptions) ([]Path, error) {
	starts := g.NodesOfKind(process.KindStart)
	if len(starts) == 0 {
		return nil, nil
	}

	maxLen := opts.maxLen(g)
	var (
		paths   []Path
		limited bool
	)

	for _, start := range starts {
		e := enumerator{g: g, maxLen: maxLen, onPath: make(map[string]bool)}
		e.walk(start)
		paths = append(paths, e.paths...)
		if e.limited {
			limited = true
		}
	}

	if limited {
		return paths, fmt.Errorf("enumeration stopped after %d nodes per path: %w", maxLen, ErrPathLimit)
	}
	return paths, nil
}

// enumerator holds the state of one DFS rooted at a single start node.
type enumerator struct {
	g       *process.Graph
	maxLen  int
	current Path
	onPath  map[string]bool
	paths   []Path
	limited bool
}

func (e *enumerator) walk(id string) {
	if e.limited {
		return
	}
	if len(e.current) >= e.maxLen {
		e.limited = true
		return
	}

	e.current = append(e.current, id)
	e.onPath[id] = true

	if n, ok := e.g.Node(id); ok && n.Kind == process.KindEnd {
		e.paths = append(e.paths, e.current.Clone())
	}

	succs, _ := e.g.Successors(id)
	for _, next := range succs {
		if e.onPath[next] {
			continue // would revisit a node: not a simple path
		}
		e.walk(next)
		if e.limited {
			break
		}
	}

	delete(e.onPath, id)
	e.current = e.current[:len(e.current)-1]
}
