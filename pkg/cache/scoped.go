package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
// The CLI scopes keys by proxy host so that switching GOPROXY never serves
// a response cached from a different proxy:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "goproxy.io:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
