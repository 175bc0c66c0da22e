package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/layout"
)

// DOTOptions configures DOT emission.
type DOTOptions struct {
	// Detailed includes layer, duration, cost, and role in node labels.
	// When false, only the label (or ID) is shown.
	Detailed bool

	// Layout pins nodes to their computed positions via pos attributes.
	// When nil, node placement is left to the Graphviz engine.
	Layout *layout.Result
}

// kindFill maps node kinds to fill colors, matching the palette the
// dashboard uses for the same kinds.
var kindFill = map[process.Kind]string{
	process.KindStart:   "#2ecc71",
	process.KindEnd:     "#e74c3c",
	process.KindTask:    "#3498db",
	process.KindGateway: "#f39c12",
	process.KindEvent:   "#1abc9c",
}

// ToDOT converts a graph to Graphviz DOT format. Nodes are colored by kind
// and, when opts.Layout is set, pinned to the computed coordinates so the
// rendered diagram matches the engine's layout instead of Graphviz's own.
//
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(g *process.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph process {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q%s];\n",
			n.ID, dotLabel(n, opts), kindFill[n.Kind], dotPos(n.ID, opts.Layout))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(n process.Node, opts DOTOptions) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !opts.Detailed {
		return label
	}

	if opts.Layout != nil {
		if p, ok := opts.Layout.Placement(n.ID); ok {
			label += fmt.Sprintf("\nlayer: %d", p.Layer)
		}
	}
	if n.Duration != nil {
		label += fmt.Sprintf("\nduration: %g", *n.Duration)
	}
	if n.Cost != nil {
		label += fmt.Sprintf("\ncost: %g", *n.Cost)
	}
	if n.Role != "" {
		label += "\nrole: " + n.Role
	}
	return label
}

func dotPos(id string, res *layout.Result) string {
	if res == nil {
		return ""
	}
	p, ok := res.Placement(id)
	if !ok {
		return ""
	}
	// Graphviz points grow upward; flip Y so layer 0 renders at the top.
	return fmt.Sprintf(", pos=\"%g,%g!\"", p.X, -p.Y)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
