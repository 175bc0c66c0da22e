package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/procscope/procscope/pkg/errors"
	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/pipeline"
	"github.com/procscope/procscope/pkg/process/analyze"
	"github.com/procscope/procscope/pkg/process/layout"
)

// =============================================================================
// Process Management
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "list processes"))
		return
	}
	if infos == nil {
		infos = []export.ProcessInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"processes": infos})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var doc export.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode request body"))
		return
	}

	if doc.Process.ID != "" {
		if err := errors.ValidateProcessID(doc.Process.ID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	// Reject documents whose graph would not reconstruct.
	if _, err := export.ToGraph(doc); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidDocument, err, "validate document"))
		return
	}

	id, err := s.store.Save(r.Context(), doc)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "save process"))
		return
	}

	// Drop any cached document for a re-imported process.
	_ = s.runner.Invalidate(r.Context(), id)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Fetch(r.Context(), processID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := processID(r)
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	_ = s.runner.Invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Analysis Endpoints
// =============================================================================

type layoutResponse struct {
	ProcessID  string             `json:"process_id"`
	Placements []layout.Placement `json:"placements"`
	Isolated   []string           `json:"isolated,omitempty"`
	Degenerate bool               `json:"degenerate,omitempty"`
	Cached     bool               `json:"cached"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		ProcessID:  opts.ProcessID,
		Placements: res.Layout.Placements,
		Isolated:   res.Layout.Isolated,
		Degenerate: res.Layout.Degenerate,
		Cached:     res.CacheInfo.LayoutHit,
	})
}

type pathsResponse struct {
	ProcessID string         `json:"process_id"`
	Paths     []analyze.Path `json:"paths"`
	Truncated bool           `json:"truncated,omitempty"`
	Cached    bool           `json:"cached"`
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	paths := res.Paths
	if paths == nil {
		paths = []analyze.Path{}
	}
	writeJSON(w, http.StatusOK, pathsResponse{
		ProcessID: opts.ProcessID,
		Paths:     paths,
		Truncated: res.PathsTruncated,
		Cached:    res.CacheInfo.AnalysisHit,
	})
}

type bottlenecksResponse struct {
	ProcessID   string               `json:"process_id"`
	Bottlenecks []analyze.Bottleneck `json:"bottlenecks"`
	Cached      bool                 `json:"cached"`
}

func (s *Server) handleBottlenecks(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bottlenecks := res.Bottlenecks
	if bottlenecks == nil {
		bottlenecks = []analyze.Bottleneck{}
	}
	writeJSON(w, http.StatusOK, bottlenecksResponse{
		ProcessID:   opts.ProcessID,
		Bottlenecks: bottlenecks,
		Cached:      res.CacheInfo.AnalysisHit,
	})
}

type criticalResponse struct {
	ProcessID string                `json:"process_id"`
	Weight    string                `json:"weight"`
	Critical  *analyze.CriticalPath `json:"critical"`
	Cached    bool                  `json:"cached"`
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Critical == nil {
		writeError(w, r, errors.New(errors.ErrCodeNoPath,
			"process %s has no start-to-end path", opts.ProcessID))
		return
	}

	writeJSON(w, http.StatusOK, criticalResponse{
		ProcessID: opts.ProcessID,
		Weight:    opts.Weight,
		Critical:  res.Critical,
		Cached:    res.CacheInfo.AnalysisHit,
	})
}

type statisticsResponse struct {
	ProcessID  string             `json:"process_id"`
	Statistics analyze.Statistics `json:"statistics"`
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statisticsResponse{
		ProcessID:  opts.ProcessID,
		Statistics: res.Statistics,
	})
}

// =============================================================================
// Export Endpoint
// =============================================================================

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, res.Document)

	case "csv":
		var data []byte
		var err error
		if r.URL.Query().Get("table") == "edges" {
			data, err = export.EdgesCSV(res.Graph)
		} else {
			data, err = export.NodesCSV(res.Graph)
		}
		if err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode csv"))
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write(data)

	case "dot":
		dot := export.ToDOT(res.Graph, export.DOTOptions{Detailed: true, Layout: res.Layout})
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))

	case "svg":
		dot := export.ToDOT(res.Graph, export.DOTOptions{Detailed: true, Layout: res.Layout})
		svg, err := export.RenderSVG(dot)
		if err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)

	default:
		writeError(w, r, errors.New(errors.ErrCodeInvalidConfig,
			"invalid format: %q (must be one of: json, csv, dot, svg)", format))
	}
}

// =============================================================================
// Query Parsing
// =============================================================================

// optionsFromQuery builds pipeline options from the route and query string.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		ProcessID: processID(r),
		Weight:    q.Get("weight"),
		Refresh:   q.Get("refresh") == "true",
	}

	var err error
	if opts.MaxPathLength, err = intParam(q.Get("max_path_length")); err != nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidConfig,
			"invalid max_path_length: %q", q.Get("max_path_length"))
	}
	if opts.NodeSpacingX, err = floatParam(q.Get("node_spacing_x")); err != nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidConfig,
			"invalid node_spacing_x: %q", q.Get("node_spacing_x"))
	}
	if opts.LayerSpacingY, err = floatParam(q.Get("layer_spacing_y")); err != nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidConfig,
			"invalid layer_spacing_y: %q", q.Get("layer_spacing_y"))
	}

	if opts.Weight != "" {
		if err := pipeline.ValidateWeight(opts.Weight); err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidWeight, err, "validate weight")
		}
	}
	return opts, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func floatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
