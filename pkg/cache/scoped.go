package cache

// ScopedKeyer prefixes every key of another Keyer. Deployments that share a
// Redis database or cache directory set distinct scopes:
//
//	keyer := NewScopedKeyer(nil, "staging:")
type ScopedKeyer struct {
	Inner Keyer
	Scope string
}

// NewScopedKeyer scopes inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Inner: inner, Scope: scope}
}

func (k ScopedKeyer) RouteKey(circuitHash, deviceHash string, opts RouteKeyOpts) string {
	return k.Scope + k.Inner.RouteKey(circuitHash, deviceHash, opts)
}

func (k ScopedKeyer) ArtifactKey(routeKey string, opts ArtifactKeyOpts) string {
	return k.Scope + k.Inner.ArtifactKey(routeKey, opts)
}
