package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/procscope/procscope/pkg/process"
)

// NodesCSV renders the graph's nodes as CSV with an ID,Label,Kind,
// Duration,Cost,Role header. Absent duration/cost attributes become empty
// cells, not zeros. Rows keep node insertion order.
func NodesCSV(g *process.Graph) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ID", "Label", "Kind", "Duration", "Cost", "Role"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, n := range g.Nodes() {
		row := []string{n.ID, n.Label, n.Kind.String(), formatWeight(n.Duration), formatWeight(n.Cost), n.Role}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write node %s: %w", n.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EdgesCSV renders the graph's edges as CSV with a Source,Target header,
// in edge insertion order. Parallel edges appear once per occurrence.
func EdgesCSV(g *process.Graph) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Source", "Target"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, e := range g.Edges() {
		if err := w.Write([]string{e.From, e.To}); err != nil {
			return nil, fmt.Errorf("write edge %s->%s: %w", e.From, e.To, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatWeight(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
