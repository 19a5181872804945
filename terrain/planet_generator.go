package terrain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lunargen/core"
	"lunargen/logging"
)

// Result is a complete generation: the mesh plus everything needed to
// reproduce or describe it.
type Result struct {
	Mesh     *core.Mesh
	Params   core.GenerationParams // Seed is always set
	Seed     uint64
	Sites    []Site
	Warnings []error // Non-fatal conditions such as *core.DegenerateError
	Stats    core.Stats
}

// Generator runs the surface pipeline: tessellate, place features, displace
// and recompute normals. A Generator holds configuration only and is safe
// for concurrent use; every call allocates its own mesh.
type Generator struct {
	relief    ReliefField // Overrides params.Relief when set
	newSource SourceFactory
	sampling  core.Sampling
	logger    *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithRelief fixes the relief field for every generation, ignoring params.Relief
func WithRelief(r ReliefField) Option {
	return func(g *Generator) {
		g.relief = r
	}
}

// WithRandomSource replaces the seeded PCG source used for feature placement
func WithRandomSource(f SourceFactory) Option {
	return func(g *Generator) {
		g.newSource = f
	}
}

// WithSampling sets the default site sampling used when params leave it empty
func WithSampling(s core.Sampling) Option {
	return func(g *Generator) {
		g.sampling = s
	}
}

// WithLogger sets the logger for generation events
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator creates a generator with options
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		newSource: NewRandomSource,
		sampling:  core.SamplingAngular,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds one planet surface. Either a complete mesh with recomputed
// normals is returned or an error; no partial mesh ever escapes. Params
// without a seed get a fresh random one, reported in Result.Seed.
func (g *Generator) Generate(ctx context.Context, params core.GenerationParams) (*Result, error) {
	start := time.Now()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	var seed uint64
	if params.Seed != nil {
		seed = *params.Seed
	} else {
		seed = RandomSeed()
		params = params.WithSeed(seed)
	}
	if params.Sampling == "" {
		params.Sampling = g.sampling
	}
	params = params.Normalized()

	relief := g.relief
	if relief == nil {
		var err error
		relief, err = NewRelief(params.Relief, seed)
		if err != nil {
			return nil, err
		}
	}

	mesh, err := core.GenerateSphere(params.Size, params.LatSegments, params.LonSegments)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrGenerationAborted, err)
	}

	rng := g.newSource(seed)
	sites := PlaceFeatures(rng, params.MountainHeight, params.CraterDensity, params.Sampling)

	degenerate, err := ApplyFeatures(ctx, mesh, relief, sites)
	if err != nil {
		return nil, err
	}

	core.RecomputeNormals(mesh)

	result := &Result{
		Mesh:   mesh,
		Params: params,
		Seed:   seed,
		Sites:  sites,
	}
	if degenerate != nil {
		result.Warnings = append(result.Warnings, degenerate)
		g.logger.Warn("displacement exceeds sanity bound",
			"seed", seed,
			"vertices", degenerate.Count,
			"max", degenerate.MaxAbs,
		)
	}

	mountains, craters := CountKinds(sites)
	minR, maxR := mesh.RadiusRange()
	result.Stats = core.Stats{
		Vertices:   mesh.VertexCount(),
		Triangles:  mesh.TriangleCount(),
		Mountains:  mountains,
		Craters:    craters,
		MinRadius:  minR,
		MaxRadius:  maxR,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
	}

	g.logger.Debug("generated surface",
		"seed", seed,
		"vertices", result.Stats.Vertices,
		"mountains", mountains,
		"craters", craters,
		"duration_ms", result.Stats.DurationMs,
	)

	return result, nil
}

var defaultGenerator = NewGenerator()

// Generate runs the default generator without cancellation
func Generate(params core.GenerationParams) (*core.Mesh, error) {
	result, err := defaultGenerator.Generate(context.Background(), params)
	if err != nil {
		return nil, err
	}
	return result.Mesh, nil
}
