package cache

// TreeKeyOpts are the solver settings that change a cached result.
type TreeKeyOpts struct {
	Strategy   string `json:"strategy"`
	Iterations int    `json:"iterations,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey returns the key for a solve of the graph with the given content
	// hash (see [Hash]).
	TreeKey(graphHash string, opts TreeKeyOpts) string
}

// DefaultKeyer builds "tree:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TreeKey hashes the graph hash together with the options.
// Iterations and seed only matter for the randomized strategy and are
// dropped otherwise, so exhaustive keys do not vary with them.
func (DefaultKeyer) TreeKey(graphHash string, opts TreeKeyOpts) string {
	if opts.Strategy != "randomized" {
		opts.Iterations, opts.Seed = 0, 0
	}
	return hashKey("tree", graphHash, opts)
}
