package cache

// ScopedKeyer prefixes the keys of another Keyer so several tenants or
// environments can share one backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArrayKey implements Keyer.
func (k *ScopedKeyer) ArrayKey(definitionHash string) string {
	return k.prefix + k.inner.ArrayKey(definitionHash)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(definitionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(definitionHash, opts)
}
