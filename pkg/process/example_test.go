package process_test

import (
	"fmt"

	"github.com/procscope/procscope/pkg/process"
)

func ExampleBuild() {
	// Model a small review workflow: submit → review → approve
	g, _ := process.Build(
		[]process.Node{
			{ID: "submit", Kind: process.KindStart},
			{ID: "review", Kind: process.KindTask},
			{ID: "approve", Kind: process.KindEnd},
		},
		[]process.Edge{
			{From: "submit", To: "review"},
			{From: "review", To: "approve"},
		},
	)

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Nodes: 3
	// Edges: 2
}

func ExampleGraph_Successors() {
	// A gateway that fans out into two branches
	g, _ := process.Build(
		[]process.Node{
			{ID: "decide", Kind: process.KindGateway},
			{ID: "ship", Kind: process.KindTask},
			{ID: "refund", Kind: process.KindTask},
		},
		[]process.Edge{
			{From: "decide", To: "ship"},
			{From: "decide", To: "refund"},
		},
	)

	succs, _ := g.Successors("decide")
	fmt.Println("Branches:", succs)
	fmt.Println("Out-degree:", g.OutDegree("decide"))
	// Output:
	// Branches: [ship refund]
	// Out-degree: 2
}
