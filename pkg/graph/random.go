package graph

import (
	"math/rand/v2"

	"github.com/matzehuels/leafspan/pkg/errors"
)

// RandomOption configures [GenerateRandom].
type RandomOption func(*randomConfig)

type randomConfig struct {
	rng  *rand.Rand
	opts []Option
}

// WithSeed makes generation reproducible by seeding a PCG source.
func WithSeed(seed uint64) RandomOption {
	return func(c *randomConfig) { c.rng = NewRand(seed) }
}

// WithRand uses the given generator. It overrides any earlier WithSeed.
func WithRand(rng *rand.Rand) RandomOption {
	return func(c *randomConfig) { c.rng = rng }
}

// WithGraphOptions forwards options to the [New] call that creates the graph.
func WithGraphOptions(opts ...Option) RandomOption {
	return func(c *randomConfig) { c.opts = append(c.opts, opts...) }
}

// NewRand returns a PCG-backed generator for seed. Equal seeds produce equal
// streams on every platform.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// GenerateRandom samples an Erdős–Rényi graph G(n, p) and repairs it to be
// connected.
//
// Every unordered pair i < j is visited in ascending order and kept with
// probability p. If the sample is disconnected, each component after the
// first is linked by a single edge from its first-listed vertex to the
// first-listed vertex of the first component (see [Graph.Components]).
//
// The repair adds exactly len(components)-1 edges and always attaches to the
// first component, so the output distribution is skewed toward vertex 0 and is
// not G(n, p) conditioned on connectivity. With p == 0 the result is a star
// centred on vertex 0.
//
// Returns INVALID_ARGUMENT if n < 0 or p is outside [0, 1]. Without WithSeed
// or WithRand the generator is seeded from the runtime's entropy source.
func GenerateRandom(n int, p float64, opts ...RandomOption) (*Graph, error) {
	if err := errors.ValidateVertexCount(n); err != nil {
		return nil, err
	}
	if err := errors.ValidateProbability(p); err != nil {
		return nil, err
	}

	cfg := randomConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if cfg.rng.Float64() < p {
				edges = append(edges, Edge{U: i, V: j})
			}
		}
	}

	g, err := FromEdges(n, edges, cfg.opts...)
	if err != nil {
		return nil, err
	}
	if err := repairConnectivity(g); err != nil {
		return nil, err
	}
	return g, nil
}

func repairConnectivity(g *Graph) error {
	if g.n <= 1 {
		return nil
	}
	comps := g.Components()
	if len(comps) <= 1 {
		return nil
	}
	anchor := comps[0][0]
	for _, comp := range comps[1:] {
		if err := g.AddEdge(comp[0], anchor); err != nil {
			return err
		}
	}
	return nil
}
