package engine

// Option configures an Engine during creation.
// Use functional options to customize build parameters:
//
//	eng := engine.New(
//	    engine.WithRadius(500),
//	    engine.WithBudget(900_000),
//	    engine.WithSeed(42),
//	)
type Option func(*engineOptions)

// engineOptions holds configuration applied at Engine creation.
type engineOptions struct {
	radius   float64
	budget   int
	badRate  float64
	seed     uint64
	levels   int
	maxDepth int
	maxItems int
	workers  int
}

// defaultEngineOptions returns the default engine configuration.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		radius:  500,
		budget:  900_000,
		badRate: 0.005,
		levels:  6,
	}
}

// WithRadius sets the disk radius R. Values below 1 are clamped to 1
// at generation time.
func WithRadius(r float64) Option {
	return func(o *engineOptions) { o.radius = r }
}

// WithBudget sets the target maximum tile count B.
func WithBudget(b int) Option {
	return func(o *engineOptions) { o.budget = b }
}

// WithBadRate sets the Bernoulli rate for bad-data tiles.
func WithBadRate(rate float64) Option {
	return func(o *engineOptions) { o.badRate = rate }
}

// WithSeed seeds the generator PRNG, making the field reproducible.
func WithSeed(seed uint64) Option {
	return func(o *engineOptions) { o.seed = seed }
}

// WithLevels sets the LOD pyramid depth (default 6).
func WithLevels(l int) Option {
	return func(o *engineOptions) {
		if l > 0 {
			o.levels = l
		}
	}
}

// WithQuadtreeParams overrides the quadtree subdivision parameters.
// Zero values keep the quadtree package defaults.
func WithQuadtreeParams(maxDepth, maxItems int) Option {
	return func(o *engineOptions) {
		o.maxDepth = maxDepth
		o.maxItems = maxItems
	}
}

// WithWorkers sets the worker count for the background build
// (default GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(o *engineOptions) { o.workers = n }
}
