package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/analyze"
)

// Cross-process queries. Each one walks every stored document through
// [Runner.Fetch], so repeated queries reuse the document cache.

// forEachProcess fetches every stored process in listing order (sorted by
// ID) and hands its graph to fn.
func (r *Runner) forEachProcess(ctx context.Context, fn func(info export.ProcessInfo, g *process.Graph) error) error {
	infos, err := r.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}
	for _, info := range infos {
		g, fetched, err := r.Fetch(ctx, Options{ProcessID: info.ID})
		if err != nil {
			return fmt.Errorf("fetch process %s: %w", info.ID, err)
		}
		if err := fn(fetched, g); err != nil {
			return err
		}
	}
	return nil
}

// TaskMatch locates one task inside one stored process.
type TaskMatch struct {
	ProcessID   string `json:"process_id"`
	ProcessName string `json:"process_name,omitempty"`
	TaskID      string `json:"task_id"`
	TaskLabel   string `json:"task_label"`
}

// FindTask searches every stored process for Task-kind nodes whose label
// contains query, case-insensitively. Results follow store listing order,
// then node insertion order within each process.
func (r *Runner) FindTask(ctx context.Context, query string) ([]TaskMatch, error) {
	var matches []TaskMatch
	err := r.forEachProcess(ctx, func(info export.ProcessInfo, g *process.Graph) error {
		for _, n := range analyze.MatchTasks(g, query) {
			label := n.Label
			if label == "" {
				label = n.ID
			}
			matches = append(matches, TaskMatch{
				ProcessID:   info.ID,
				ProcessName: info.Name,
				TaskID:      n.ID,
				TaskLabel:   label,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// GatewayListing is one branching point inside one stored process.
type GatewayListing struct {
	ProcessID   string `json:"process_id"`
	ProcessName string `json:"process_name,omitempty"`
	NodeID      string `json:"node_id"`
	Label       string `json:"label,omitempty"`
	Branches    int    `json:"branches"`
}

// ListGateways reports the branching points of every stored process, in
// store listing order.
func (r *Runner) ListGateways(ctx context.Context) ([]GatewayListing, error) {
	var listings []GatewayListing
	err := r.forEachProcess(ctx, func(info export.ProcessInfo, g *process.Graph) error {
		for _, gw := range analyze.ListGateways(g) {
			listings = append(listings, GatewayListing{
				ProcessID:   info.ID,
				ProcessName: info.Name,
				NodeID:      gw.ID,
				Label:       gw.Label,
				Branches:    gw.Branches,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// WeightKPI totals one weight attribute over every node of a stored
// process. Hours is only set for the duration weight, where node durations
// are taken as minutes.
type WeightKPI struct {
	ProcessID   string  `json:"process_id"`
	ProcessName string  `json:"process_name,omitempty"`
	Total       float64 `json:"total"`
	Hours       float64 `json:"hours,omitempty"`
}

// WeightKPIs totals the given weight for every stored process, heaviest
// first. Ties break on process ID so the order is deterministic.
func (r *Runner) WeightKPIs(ctx context.Context, w analyze.Weight) ([]WeightKPI, error) {
	var kpis []WeightKPI
	err := r.forEachProcess(ctx, func(info export.ProcessInfo, g *process.Graph) error {
		stats := analyze.Stats(g)
		kpi := WeightKPI{ProcessID: info.ID, ProcessName: info.Name}
		if w == analyze.WeightCost {
			kpi.Total = stats.TotalCost
		} else {
			kpi.Total = stats.TotalDuration
			kpi.Hours = math.Round(kpi.Total/60*100) / 100
		}
		kpis = append(kpis, kpi)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(kpis, func(i, j int) bool {
		if kpis[i].Total != kpis[j].Total {
			return kpis[i].Total > kpis[j].Total
		}
		return kpis[i].ProcessID < kpis[j].ProcessID
	})
	return kpis, nil
}

// RoleRequirement lists the distinct staffing roles one stored process
// needs.
type RoleRequirement struct {
	ProcessID   string   `json:"process_id"`
	ProcessName string   `json:"process_name,omitempty"`
	Roles       []string `json:"roles"`
}

// RoleRequirements reports roles per stored process, in store listing
// order. Processes that assign no roles are omitted.
func (r *Runner) RoleRequirements(ctx context.Context) ([]RoleRequirement, error) {
	var reqs []RoleRequirement
	err := r.forEachProcess(ctx, func(info export.ProcessInfo, g *process.Graph) error {
		roles := analyze.Roles(g)
		if len(roles) == 0 {
			return nil
		}
		reqs = append(reqs, RoleRequirement{
			ProcessID:   info.ID,
			ProcessName: info.Name,
			Roles:       roles,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
