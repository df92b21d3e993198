package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis or MongoDB backend without seeing each other's entries.
//
// Example usage:
//
//	// API server results live under their own namespace
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
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

// TreeKey generates a prefixed key for solve results.
func (k *ScopedKeyer) TreeKey(graphHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(graphHash, opts)
}
