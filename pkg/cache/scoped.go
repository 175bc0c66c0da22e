package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful when several environments share one Redis instance and their
// cached results must not collide.
//
// Example usage:
//
//	stagingKeyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DocumentKey generates a prefixed key for a stored process document.
func (k *ScopedKeyer) DocumentKey(processID string) string {
	return k.prefix + k.inner.DocumentKey(processID)
}

// LayoutKey generates a prefixed key for a layout result.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// AnalysisKey generates a prefixed key for combined analysis results.
func (k *ScopedKeyer) AnalysisKey(graphHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(graphHash, opts)
}
