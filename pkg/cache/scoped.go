package cache

// ScopedKeyer wraps a Keyer with a prefix, so several projects can share
// one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "myproject:")
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

// PayloadKey generates a prefixed payload key.
func (k *ScopedKeyer) PayloadKey(sourceHash string, opts PayloadKeyOpts) string {
	return k.prefix + k.inner.PayloadKey(sourceHash, opts)
}

// TreeKey generates a prefixed tree key.
func (k *ScopedKeyer) TreeKey(sourceHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(sourceHash, opts)
}
