package analyze

import (
	"slices"

	"github.com/procscope/procscope/pkg/process"
)

// Bottleneck records a convergence point: a node where more than one
// distinct branch merges. Parallel edges from the same predecessor count
// once - convergence is about distinct predecessor nodes, not edge
// multiplicity.
type Bottleneck struct {
	ID                   string
	DistinctPredecessors int
}

// FindBottlenecks ranks convergence points by the number of distinct
// predecessor nodes, descending. Nodes with at most one distinct
// predecessor are not convergence points and are excluded. Ties are broken
// by node ID ascending, so the ranking is deterministic.
func FindBottlenecks(g *process.Graph) []Bottleneck {
	var out []Bottleneck
	for _, id := range g.NodeIDs() {
		if count := len(g.DistinctPredecessors(id)); count > 1 {
			out = append(out, Bottleneck{ID: id, DistinctPredecessors: count})
		}
	}

	slices.SortFunc(out, func(a, b Bottleneck) int {
		if a.DistinctPredecessors != b.DistinctPredecessors {
			return b.DistinctPredecessors - a.DistinctPredecessors
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}
