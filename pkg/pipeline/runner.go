package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/procscope/procscope/pkg/cache"
	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/observability"
	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/analyze"
	"github.com/procscope/procscope/pkg/process/layout"
	"github.com/procscope/procscope/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the store, cache, and logger - it
// doesn't keep pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given store, cache, and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → analyze pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	logger := opts.Logger

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	g, info, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Graph = g
	result.Info = info
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Compute graph hash for cache keys and API responses
	result.GraphHash = GraphHash(info, g)

	logger.Info("fetched process",
		"process", info.ID,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.FetchTime)

	if dead := g.DeadEnds(); len(dead) > 0 {
		logger.Warn("process has dead ends", "nodes", dead)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	lr, layoutHit, err := r.LayoutWithCacheInfo(ctx, result.GraphHash, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = lr
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	if lr.Degenerate {
		logger.Warn("no start node and no source node, layout rooted at smallest node ID",
			"process", info.ID)
	}
	if len(lr.Isolated) > 0 {
		logger.Warn("unreachable nodes placed in layer 0", "nodes", lr.Isolated)
	}

	logger.Info("computed layout",
		"layers", len(lr.Layers()),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Analyze
	analysisStart := time.Now()
	a, analysisHit, err := r.AnalyzeWithCacheInfo(ctx, result.GraphHash, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Paths = a.Paths
	result.PathsTruncated = a.Truncated
	result.Bottlenecks = a.Bottlenecks
	result.Critical = a.Critical
	result.Statistics = a.Statistics
	result.Stats.AnalysisTime = time.Since(analysisStart)
	result.CacheInfo.AnalysisHit = analysisHit

	if a.Truncated {
		logger.Warn("path enumeration truncated at length limit",
			"max_path_length", opts.PathOptions().MaxPathLength,
			"paths", len(a.Paths))
	}
	if a.Critical == nil {
		logger.Warn("no start-to-end path, critical path unavailable", "process", info.ID)
	}

	logger.Info("analyzed process",
		"paths", len(a.Paths),
		"bottlenecks", len(a.Bottlenecks),
		"duration", result.Stats.AnalysisTime)

	result.Document = export.Build(info, g, export.Sections{
		Layout:      lr,
		Paths:       a.Paths,
		Bottlenecks: a.Bottlenecks,
		Critical:    a.Critical,
	})

	return result, nil
}

// Fetch loads the process document from the store and rebuilds its graph.
// The raw document is cached under the process ID so repeated runs skip the
// store round trip; Refresh bypasses and repopulates that cache.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*process.Graph, export.ProcessInfo, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, export.ProcessInfo{}, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, opts.ProcessID)
	start := time.Now()

	doc, err := r.fetchDocument(ctx, opts)
	if err != nil {
		hooks.OnFetchComplete(ctx, opts.ProcessID, 0, time.Since(start), err)
		return nil, export.ProcessInfo{}, err
	}

	g, err := export.ToGraph(doc)
	hooks.OnFetchComplete(ctx, opts.ProcessID, len(doc.Nodes), time.Since(start), err)
	if err != nil {
		return nil, export.ProcessInfo{}, err
	}
	return g, doc.Process, nil
}

func (r *Runner) fetchDocument(ctx context.Context, opts Options) (export.Document, error) {
	cacheKey := r.Keyer.DocumentKey(opts.ProcessID)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "document")
			if doc, err := export.Unmarshal(data); err == nil {
				return doc, nil
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "document")
		}
	}

	doc, err := r.Store.Fetch(ctx, opts.ProcessID)
	if err != nil {
		return export.Document{}, err
	}

	if data, err := export.Marshal(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDocument)
		observability.Cache().OnCacheSet(ctx, "document", len(data))
	}
	return doc, nil
}

// cachedLayout is the serialized form of a layout result.
type cachedLayout struct {
	Placements []layout.Placement `json:"placements"`
	Isolated   []string           `json:"isolated,omitempty"`
	Degenerate bool               `json:"degenerate,omitempty"`
}

// LayoutWithCacheInfo computes the layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, graphHash string, g *process.Graph, opts Options) (*layout.Result, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.ProcessID, g.NodeCount())
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached cachedLayout
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			hooks.OnLayoutComplete(ctx, opts.ProcessID, time.Since(start), nil)
			return layout.Restore(cached.Placements, cached.Isolated, cached.Degenerate), true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	lr := layout.Compute(g, opts.LayoutConfig())

	if data, err := json.Marshal(cachedLayout{
		Placements: lr.Placements,
		Isolated:   lr.Isolated,
		Degenerate: lr.Degenerate,
	}); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	hooks.OnLayoutComplete(ctx, opts.ProcessID, time.Since(start), nil)
	return lr, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *process.Graph, opts Options) (*layout.Result, error) {
	lr, _, err := r.LayoutWithCacheInfo(ctx, graphHashFor(opts.ProcessID, g), g, opts)
	return lr, err
}

// Analysis bundles the analysis stage outputs.
type Analysis struct {
	Paths       []analyze.Path        `json:"paths"`
	Truncated   bool                  `json:"truncated,omitempty"`
	Bottlenecks []analyze.Bottleneck  `json:"bottlenecks"`
	Critical    *analyze.CriticalPath `json:"critical,omitempty"`
	Statistics  analyze.Statistics    `json:"statistics"`
}

// AnalyzeWithCacheInfo runs all analyses with caching and returns cache hit info.
//
// Hitting the path length bound is not an error at this level: the partial
// path set is kept, Truncated is set, and the critical path is chosen among
// the paths that were found. A graph with no start-to-end path yields a nil
// Critical rather than a failure, so layout-only processes still analyze.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, graphHash string, g *process.Graph, opts Options) (Analysis, bool, error) {
	if err := opts.ValidateForAnalysis(); err != nil {
		return Analysis{}, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnAnalysisStart(ctx, opts.ProcessID, opts.Weight)
	start := time.Now()

	cacheKey := r.Keyer.AnalysisKey(graphHash, opts.AnalysisKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached Analysis
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "analysis")
			hooks.OnAnalysisComplete(ctx, opts.ProcessID, len(cached.Paths), time.Since(start), nil)
			return cached, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "analysis")

	a := Analysis{}

	paths, err := analyze.EnumeratePaths(g, opts.PathOptions())
	if err != nil && !errors.Is(err, analyze.ErrPathLimit) {
		hooks.OnAnalysisComplete(ctx, opts.ProcessID, 0, time.Since(start), err)
		return Analysis{}, false, err
	}
	a.Paths = paths
	a.Truncated = errors.Is(err, analyze.ErrPathLimit)

	a.Bottlenecks = analyze.FindBottlenecks(g)
	a.Statistics = analyze.Stats(g)

	cp, err := analyze.ComputeCriticalPath(g, opts.ParsedWeight(), opts.PathOptions())
	switch {
	case err == nil:
		a.Critical = &cp
	case errors.Is(err, analyze.ErrNoPath):
		// Critical stays nil.
	default:
		hooks.OnAnalysisComplete(ctx, opts.ProcessID, len(a.Paths), time.Since(start), err)
		return Analysis{}, false, err
	}

	if data, err := json.Marshal(a); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLAnalysis)
		observability.Cache().OnCacheSet(ctx, "analysis", len(data))
	}

	hooks.OnAnalysisComplete(ctx, opts.ProcessID, len(a.Paths), time.Since(start), nil)
	return a, false, nil
}

// Analyze is a convenience wrapper that discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *process.Graph, opts Options) (Analysis, error) {
	a, _, err := r.AnalyzeWithCacheInfo(ctx, graphHashFor(opts.ProcessID, g), g, opts)
	return a, err
}

// Invalidate drops the cached document for a process. Layout and analysis
// entries are keyed by graph content, so they expire naturally once the
// document changes.
func (r *Runner) Invalidate(ctx context.Context, processID string) error {
	return r.Cache.Delete(ctx, r.Keyer.DocumentKey(processID))
}

// Close releases resources held by the runner (the cache and the store).
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close(ctx))
	}
	return errors.Join(errs...)
}

// applyLogger sets the runner's logger on options if not already set, so
// stage log lines honor a per-invocation logger when the caller provides
// one.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// GraphHash hashes a graph-only document, the canonical content identity of
// a process. Analysis sections never participate, so cached layout and
// analysis entries survive re-saving a document with stale sections.
func GraphHash(info export.ProcessInfo, g *process.Graph) string {
	doc := export.Build(info, g, export.Sections{})
	data, err := export.Marshal(doc)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func graphHashFor(processID string, g *process.Graph) string {
	return GraphHash(export.ProcessInfo{ID: processID}, g)
}
