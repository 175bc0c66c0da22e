// Package cache provides the result cache used around the analysis engine.
//
// The engine itself never caches - layout and analysis results are produced
// fresh per call - so caching lives here, owned by the caller (pipeline,
// API). Keys are derived from a content hash of the graph plus the options
// that shaped the result, which makes invalidation automatic: a different
// graph or different options is simply a different key.
//
// Backends: [FileCache] for CLI use, [RedisCache] for multi-instance
// deployments, [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per result type. Documents change only when re-imported;
// layout and analysis results are cheap to recompute, so they expire
// sooner to bound stale reads against an updated store.
const (
	TTLDocument = 24 * time.Hour
	TTLLayout   = 6 * time.Hour
	TTLAnalysis = 6 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get returns the cached data and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the options that shape a layout result.
type LayoutKeyOpts struct {
	NodeSpacingX  float64
	LayerSpacingY float64
}

// AnalysisKeyOpts are the options that shape an analysis result.
type AnalysisKeyOpts struct {
	Weight        string
	MaxPathLength int
}

// Keyer generates cache keys. Implementations must be deterministic: the
// same inputs always produce the same key.
type Keyer interface {
	// DocumentKey keys a stored process document by its process ID.
	DocumentKey(processID string) string

	// LayoutKey keys a layout result by graph content hash and spacing.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// AnalysisKey keys the combined analysis results by graph content
	// hash and analysis options.
	AnalysisKey(graphHash string, opts AnalysisKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// DocumentKey generates a key for a stored process document.
func (k *DefaultKeyer) DocumentKey(processID string) string {
	return hashKey("doc", processID)
}

// LayoutKey generates a key for a layout result.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// AnalysisKey generates a key for combined analysis results.
func (k *DefaultKeyer) AnalysisKey(graphHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", graphHash, opts)
}
