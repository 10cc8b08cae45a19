package cache

// Key namespaces.
const (
	KindRoute    = "route"
	KindArtifact = "artifact"
)

// RouteKeyOpts holds the router settings that change a routed result.
type RouteKeyOpts struct {
	Methods       []string `json:"methods"`
	Depth         int      `json:"depth"`
	BridgeDepth   int      `json:"bridge_depth"`
	MaxAdvance    int      `json:"max_advance"`
	MaxIterations int      `json:"max_iterations"`
	Seed          string   `json:"seed,omitempty"`
}

// ArtifactKeyOpts identifies one rendering of a routed result.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Title  string `json:"title,omitempty"`
}

// Keyer derives cache keys. Inputs are content hashes, so equal circuits on
// equal devices share entries regardless of file names.
type Keyer interface {
	RouteKey(circuitHash, deviceHash string, opts RouteKeyOpts) string
	ArtifactKey(routeKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every input into a namespaced key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RouteKey returns route:<sha256>.
func (DefaultKeyer) RouteKey(circuitHash, deviceHash string, opts RouteKeyOpts) string {
	return hashKey(KindRoute, circuitHash, deviceHash, opts)
}

// ArtifactKey returns artifact:<sha256>.
func (DefaultKeyer) ArtifactKey(routeKey string, opts ArtifactKeyOpts) string {
	return hashKey(KindArtifact, routeKey, opts)
}
