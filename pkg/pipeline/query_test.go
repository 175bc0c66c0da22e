package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/procscope/procscope/pkg/cache"
	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/process/analyze"
	"github.com/procscope/procscope/pkg/store"
)

// queryStore seeds two processes: "hiring" (two roled review tasks behind a
// gateway) and "orders" (one unroled task).
func queryStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()

	hiring := export.Document{
		Process: export.ProcessInfo{ID: "hiring", Name: "Hiring"},
		Nodes: []export.Node{
			{ID: "start", Kind: "Start"},
			{ID: "screen", Label: "Screen CV", Kind: "Task", Duration: f(30), Cost: f(5), Role: "Recruiter"},
			{ID: "decide", Label: "Fit?", Kind: "Gateway"},
			{ID: "tech", Label: "Technical review", Kind: "Task", Duration: f(60), Cost: f(20), Role: "Engineer"},
			{ID: "hr", Label: "HR review", Kind: "Task", Duration: f(45), Cost: f(10), Role: "Recruiter"},
			{ID: "end", Kind: "End"},
		},
		Edges: []export.Edge{
			{From: "start", To: "screen"},
			{From: "screen", To: "decide"},
			{From: "decide", To: "tech"},
			{From: "decide", To: "hr"},
			{From: "tech", To: "end"},
			{From: "hr", To: "end"},
		},
	}
	orders := export.Document{
		Process: export.ProcessInfo{ID: "orders", Name: "Orders"},
		Nodes: []export.Node{
			{ID: "start", Kind: "Start"},
			{ID: "review", Label: "Review order", Kind: "Task", Duration: f(10), Cost: f(2)},
			{ID: "end", Kind: "End"},
		},
		Edges: []export.Edge{
			{From: "start", To: "review"},
			{From: "review", To: "end"},
		},
	}

	for _, doc := range []export.Document{hiring, orders} {
		if _, err := s.Save(context.Background(), doc); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	return s
}

func TestRunnerFindTask(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(queryStore(t), cache.NewNullCache(), nil, testLogger())

	matches, err := r.FindTask(ctx, "review")
	if err != nil {
		t.Fatalf("FindTask error: %v", err)
	}

	want := []TaskMatch{
		{ProcessID: "hiring", ProcessName: "Hiring", TaskID: "tech", TaskLabel: "Technical review"},
		{ProcessID: "hiring", ProcessName: "Hiring", TaskID: "hr", TaskLabel: "HR review"},
		{ProcessID: "orders", ProcessName: "Orders", TaskID: "review", TaskLabel: "Review order"},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("FindTask() = %v, want %v", matches, want)
	}
}

func TestRunnerFindTaskNoMatch(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(queryStore(t), cache.NewNullCache(), nil, testLogger())

	matches, err := r.FindTask(ctx, "invoice")
	if err != nil {
		t.Fatalf("FindTask error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("FindTask() = %v, want none", matches)
	}
}

func TestRunnerListGateways(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(queryStore(t), cache.NewNullCache(), nil, testLogger())

	listings, err := r.ListGateways(ctx)
	if err != nil {
		t.Fatalf("ListGateways error: %v", err)
	}

	want := []GatewayListing{
		{ProcessID: "hiring", ProcessName: "Hiring", NodeID: "decide", Label: "Fit?", Branches: 2},
	}
	if !reflect.DeepEqual(listings, want) {
		t.Errorf("ListGateways() = %v, want %v", listings, want)
	}
}

func TestRunnerWeightKPIsDuration(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(queryStore(t), cache.NewNullCache(), nil, testLogger())

	kpis, err := r.WeightKPIs(ctx, analyze.WeightDuration)
	if err != nil {
		t.Fatalf("WeightKPIs error: %v", err)
	}

	// hiring sums to 135 minutes = 2.25 hours, orders to 10 minutes.
	want := []WeightKPI{
		{ProcessID: "hiring", ProcessName: "Hiring", Total: 135, Hours: 2.25},
		{ProcessID: "orders", ProcessName: "Orders", Total: 10, Hours: 0.17},
	}
	if !reflect.DeepEqual(kpis, want) {
		t.Errorf("WeightKPIs() = %v, want %v", kpis, want)
	}
}

func TestRunnerWeightKPIsCost(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(queryStore(t), cache.NewNullCache(), nil, testLogger())

	kpis, err := r.WeightKPIs(ctx, analyze.WeightCost)
	if err != nil {
		t.Fatalf("WeightKPIs error: %v", err)
	}

	want := []WeightKPI{
		{ProcessID: "hiring", ProcessName: "Hiring", Total: 35},
		{ProcessID: "orders", ProcessName: "Orders", Total: 2},
	}
	if !reflect.DeepEqual(kpis, want) {
		t.Errorf("WeightKPIs() = %v, want %v", kpis, want)
	}
}

func TestRunnerRoleRequirements(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(queryStore(t), cache.NewNullCache(), nil, testLogger())

	reqs, err := r.RoleRequirements(ctx)
	if err != nil {
		t.Fatalf("RoleRequirements error: %v", err)
	}

	// orders assigns no roles, so only hiring appears.
	want := []RoleRequirement{
		{ProcessID: "hiring", ProcessName: "Hiring", Roles: []string{"Engineer", "Recruiter"}},
	}
	if !reflect.DeepEqual(reqs, want) {
		t.Errorf("RoleRequirements() = %v, want %v", reqs, want)
	}
}
