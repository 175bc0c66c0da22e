package analyze

import (
	"sort"
	"strings"

	"github.com/procscope/procscope/pkg/process"
)

// MatchTasks returns the Task-kind nodes whose label contains query,
// case-insensitively, in node insertion order. Nodes without a label match
// on their ID instead. An empty query matches every task.
func MatchTasks(g *process.Graph, query string) []process.Node {
	q := strings.ToLower(query)
	var out []process.Node
	for _, n := range g.Nodes() {
		if n.Kind != process.KindTask {
			continue
		}
		name := n.Label
		if name == "" {
			name = n.ID
		}
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, n)
		}
	}
	return out
}

// GatewayBranch is one branching point: a Gateway- or Event-kind node
// together with its count of distinct successors.
type GatewayBranch struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Branches int    `json:"branches"`
}

// ListGateways returns the graph's branching points in node insertion
// order. Parallel edges to the same successor count once, and Gateway or
// Event nodes with no outgoing edges are omitted because nothing branches
// there.
func ListGateways(g *process.Graph) []GatewayBranch {
	var out []GatewayBranch
	for _, n := range g.Nodes() {
		if n.Kind != process.KindGateway && n.Kind != process.KindEvent {
			continue
		}
		succs, _ := g.Successors(n.ID)
		distinct := make(map[string]bool, len(succs))
		for _, s := range succs {
			distinct[s] = true
		}
		if len(distinct) == 0 {
			continue
		}
		out = append(out, GatewayBranch{ID: n.ID, Label: n.Label, Branches: len(distinct)})
	}
	return out
}

// reservedRoles are bookkeeping role values that do not represent staff.
var reservedRoles = map[string]bool{
	"System": true,
	"Start":  true,
	"End":    true,
}

// Roles returns the distinct staffing roles assigned to the graph's nodes,
// sorted. Empty roles and the reserved System, Start, and End values are
// skipped.
func Roles(g *process.Graph) []string {
	seen := make(map[string]bool)
	for _, n := range g.Nodes() {
		if n.Role == "" || reservedRoles[n.Role] {
			continue
		}
		seen[n.Role] = true
	}
	out := make([]string, 0, len(seen))
	for role := range seen {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}
