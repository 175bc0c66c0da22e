package analyze

import "github.com/procscope/procscope/pkg/process"

// Statistics summarizes one process definition: size, composition, total
// weights, and modeling problems worth surfacing (dead ends).
type Statistics struct {
	NodeCount     int
	EdgeCount     int
	KindCounts    map[string]int
	TotalDuration float64
	TotalCost     float64
	DeadEnds      []string
}

// Stats computes summary statistics for the graph. Absent duration/cost
// attributes contribute nothing to the totals. DeadEnds lists nodes with no
// outgoing edges that are not End-kind, in insertion order.
func Stats(g *process.Graph) Statistics {
	s := Statistics{
		NodeCount:  g.NodeCount(),
		EdgeCount:  g.EdgeCount(),
		KindCounts: make(map[string]int),
		DeadEnds:   g.DeadEnds(),
	}
	for _, n := range g.Nodes() {
		s.KindCounts[n.Kind.String()]++
		if n.Duration != nil {
			s.TotalDuration += *n.Duration
		}
		if n.Cost != nil {
			s.TotalCost += *n.Cost
		}
	}
	return s
}

// BranchGroup records the successor fan-out of a node with more than one
// outgoing edge - the branches that may execute in parallel.
type BranchGroup struct {
	From    string
	Targets []string
}

// FindParallelBranches returns the successor groups of all nodes with
// out-degree greater than one, in node insertion order. Targets keep edge
// insertion order; parallel edges to the same target appear once per edge.
func FindParallelBranches(g *process.Graph) []BranchGroup {
	var groups []BranchGroup
	for _, id := range g.NodeIDs() {
		succs, _ := g.Successors(id)
		if len(succs) > 1 {
			targets := make([]string, len(succs))
			copy(targets, succs)
			groups = append(groups, BranchGroup{From: id, Targets: targets})
		}
	}
	return groups
}
