// Package pipeline provides the core analysis pipeline for procscope.
//
// This package implements the complete fetch → layout → analyze pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load the process document from the store and rebuild the graph
//  2. Layout: Compute layered positions for the process graph
//  3. Analyze: Enumerate paths, find bottlenecks, compute the critical path
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	opts := pipeline.Options{
//	    ProcessID: "order-fulfillment",
//	    Weight:    "duration",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Document
//
// Run individual stages:
//
//	// Fetch only
//	g, info, err := runner.Fetch(ctx, opts)
//
//	// Layout with existing graph
//	lr, err := runner.ComputeLayout(ctx, g, opts)
//
//	// Analyze with existing graph
//	a, err := runner.Analyze(ctx, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/procscope/procscope/pkg/cache"
	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/analyze"
	"github.com/procscope/procscope/pkg/process/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultWeight is the default weight attribute for critical path analysis.
const DefaultWeight = "duration"

// ValidWeights is the set of supported weight attributes.
var ValidWeights = map[string]bool{
	"duration": true,
	"cost":     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	ProcessID string `json:"process_id"`
	Refresh   bool   `json:"refresh,omitempty"`

	// Layout options
	NodeSpacingX  float64 `json:"node_spacing_x,omitempty"`
	LayerSpacingY float64 `json:"layer_spacing_y,omitempty"`

	// Analysis options
	Weight        string `json:"weight,omitempty"`
	MaxPathLength int    `json:"max_path_length,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the reconstructed process graph.
	Graph *process.Graph

	// Info identifies the analyzed process.
	Info export.ProcessInfo

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains the computed placements.
	Layout *layout.Result

	// Analysis results.
	Paths          []analyze.Path
	PathsTruncated bool
	Bottlenecks    []analyze.Bottleneck
	Critical       *analyze.CriticalPath
	Statistics     analyze.Statistics

	// Document is the complete export document with all sections attached.
	Document export.Document

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	FetchTime    time.Duration
	LayoutTime   time.Duration
	AnalysisTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit   bool // Whether the layout result came from cache
	AnalysisHit bool // Whether the analysis results came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateWeight checks that a weight attribute is valid.
func ValidateWeight(weight string) error {
	if !ValidWeights[weight] {
		return fmt.Errorf("invalid weight: %q (must be one of: duration, cost)", weight)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForAnalysis(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for fetching.
func (o *Options) ValidateForFetch() error {
	if o.ProcessID == "" {
		return fmt.Errorf("process_id is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.NodeSpacingX == 0 {
		o.NodeSpacingX = layout.DefaultNodeSpacingX
	}
	if o.LayerSpacingY == 0 {
		o.LayerSpacingY = layout.DefaultLayerSpacingY
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForAnalysis validates and sets defaults for analysis.
func (o *Options) ValidateForAnalysis() error {
	if o.Weight == "" {
		o.Weight = DefaultWeight
	}
	if o.MaxPathLength < 0 {
		return fmt.Errorf("max_path_length must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateWeight(o.Weight)
}

// ParsedWeight returns the weight attribute as an analysis weight value.
// Options must have been validated first.
func (o *Options) ParsedWeight() analyze.Weight {
	w, _ := analyze.ParseWeight(o.Weight)
	return w
}

// LayoutConfig returns the layout spacing configuration.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{
		NodeSpacingX:  o.NodeSpacingX,
		LayerSpacingY: o.LayerSpacingY,
	}
}

// PathOptions returns the path enumeration options.
func (o *Options) PathOptions() analyze.PathOptions {
	return analyze.PathOptions{MaxPathLength: o.MaxPathLength}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeSpacingX:  o.NodeSpacingX,
		LayerSpacingY: o.LayerSpacingY,
	}
}

// AnalysisKeyOpts returns cache key options for analysis.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		Weight:        o.Weight,
		MaxPathLength: o.MaxPathLength,
	}
}
