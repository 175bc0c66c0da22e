package analyze

import (
	"reflect"
	"testing"

	"github.com/procscope/procscope/pkg/process"
)

func TestMatchTasks(t *testing.T) {
	g := build(t,
		[]process.Node{
			{ID: "start", Label: "Review kickoff", Kind: process.KindStart},
			{ID: "t1", Label: "Review order", Kind: process.KindTask},
			{ID: "t2", Label: "Legal REVIEW", Kind: process.KindTask},
			{ID: "t3", Label: "Ship", Kind: process.KindTask},
			{ID: "review", Kind: process.KindTask},
			{ID: "end", Kind: process.KindEnd},
		},
		nil,
	)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		// Start-kind nodes never match, even with a matching label.
		{"substring case insensitive", "review", []string{"t1", "t2", "review"}},
		{"exact label", "Ship", []string{"t3"}},
		{"no match", "invoice", nil},
		{"empty query matches all tasks", "", []string{"t1", "t2", "t3", "review"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, n := range MatchTasks(g, tt.query) {
				got = append(got, n.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchTasks(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestListGateways(t *testing.T) {
	g := build(t,
		[]process.Node{
			{ID: "start", Kind: process.KindStart},
			{ID: "split", Label: "Approved?", Kind: process.KindGateway},
			{ID: "wait", Kind: process.KindEvent},
			{ID: "deadend", Kind: process.KindGateway},
			{ID: "work", Kind: process.KindTask},
			{ID: "end", Kind: process.KindEnd},
		},
		[]process.Edge{
			{From: "start", To: "split"},
			{From: "split", To: "wait"},
			{From: "split", To: "work"},
			// A duplicate edge must not inflate the branch count.
			{From: "split", To: "work"},
			{From: "wait", To: "end"},
			{From: "work", To: "end"},
		},
	)

	want := []GatewayBranch{
		{ID: "split", Label: "Approved?", Branches: 2},
		{ID: "wait", Branches: 1},
	}
	if got := ListGateways(g); !reflect.DeepEqual(got, want) {
		t.Errorf("ListGateways() = %v, want %v", got, want)
	}
}

func TestListGatewaysTaskFanOutIgnored(t *testing.T) {
	// Only Gateway and Event kinds are branching points, no matter how
	// many successors a task has.
	g := build(t,
		[]process.Node{
			{ID: "a", Kind: process.KindTask},
			{ID: "b", Kind: process.KindTask},
			{ID: "c", Kind: process.KindTask},
		},
		[]process.Edge{
			{From: "a", To: "b"},
			{From: "a", To: "c"},
		},
	)
	if got := ListGateways(g); got != nil {
		t.Errorf("ListGateways() = %v, want none", got)
	}
}

func TestRoles(t *testing.T) {
	g := build(t,
		[]process.Node{
			{ID: "start", Kind: process.KindStart, Role: "Start"},
			{ID: "t1", Kind: process.KindTask, Role: "Clerk"},
			{ID: "t2", Kind: process.KindTask, Role: "Approver"},
			{ID: "t3", Kind: process.KindTask, Role: "Clerk"},
			{ID: "t4", Kind: process.KindTask, Role: "System"},
			{ID: "t5", Kind: process.KindTask},
			{ID: "end", Kind: process.KindEnd, Role: "End"},
		},
		nil,
	)

	want := []string{"Approver", "Clerk"}
	if got := Roles(g); !reflect.DeepEqual(got, want) {
		t.Errorf("Roles() = %v, want %v", got, want)
	}
}
