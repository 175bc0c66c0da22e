package api

import (
	"net/http"

	"github.com/procscope/procscope/pkg/errors"
	"github.com/procscope/procscope/pkg/pipeline"
	"github.com/procscope/procscope/pkg/process/analyze"
)

// Cross-process query endpoints. These answer questions about the whole
// store rather than one process: where a task appears, where flows branch,
// what each process totals in time or cost, and which roles it needs.

type searchResponse struct {
	Query   string               `json:"query"`
	Matches []pipeline.TaskMatch `json:"matches"`
}

func (s *Server) handleSearchTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidConfig, "missing q parameter"))
		return
	}

	matches, err := s.runner.FindTask(r.Context(), query)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "search tasks"))
		return
	}
	if matches == nil {
		matches = []pipeline.TaskMatch{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Matches: matches})
}

type gatewaysResponse struct {
	Gateways []pipeline.GatewayListing `json:"gateways"`
}

func (s *Server) handleGateways(w http.ResponseWriter, r *http.Request) {
	listings, err := s.runner.ListGateways(r.Context())
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "list gateways"))
		return
	}
	if listings == nil {
		listings = []pipeline.GatewayListing{}
	}
	writeJSON(w, http.StatusOK, gatewaysResponse{Gateways: listings})
}

type kpiResponse struct {
	Weight string               `json:"weight"`
	KPIs   []pipeline.WeightKPI `json:"kpis"`
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	weight := r.URL.Query().Get("weight")
	if weight == "" {
		weight = "duration"
	}
	if err := pipeline.ValidateWeight(weight); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidWeight, err, "validate weight"))
		return
	}
	parsed, _ := analyze.ParseWeight(weight)

	kpis, err := s.runner.WeightKPIs(r.Context(), parsed)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "aggregate kpi"))
		return
	}
	if kpis == nil {
		kpis = []pipeline.WeightKPI{}
	}
	writeJSON(w, http.StatusOK, kpiResponse{Weight: weight, KPIs: kpis})
}

type resourcesResponse struct {
	Resources []pipeline.RoleRequirement `json:"resources"`
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.runner.RoleRequirements(r.Context())
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "aggregate resources"))
		return
	}
	if reqs == nil {
		reqs = []pipeline.RoleRequirement{}
	}
	writeJSON(w, http.StatusOK, resourcesResponse{Resources: reqs})
}
