package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lunargen/cache"
	"lunargen/core"
	"lunargen/logging"
	"lunargen/terrain"
	"lunargen/worker"
)

// Service generates surfaces through a mesh cache. Identical seeded
// requests that miss at the same time are computed once, and the shared
// computation is cancelled once every caller waiting on it has gone.
type Service struct {
	gen     worker.Generator
	cache   cache.MeshCache // May be nil
	metrics *Metrics        // May be nil
	logger  *slog.Logger
	group   singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context shared by the callers of one in-flight key
type flight struct {
	ctx    context.Context
	cancel context.CancelFunc
	refs   int
}

// NewService creates a generation service. cache and metrics are optional.
func NewService(gen worker.Generator, meshCache cache.MeshCache, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		gen:     gen,
		cache:   meshCache,
		metrics: metrics,
		logger:  logger,
		flights: make(map[string]*flight),
	}
}

// Generate returns the surface for params. It satisfies worker.Generator.
func (s *Service) Generate(ctx context.Context, params core.GenerationParams) (*terrain.Result, error) {
	result, _, err := s.Fetch(ctx, params)
	return result, err
}

// Fetch is Generate that also reports whether the mesh came from the cache.
// Results served from the cache carry no sites; their stats are rebuilt from
// the mesh and params.
func (s *Service) Fetch(ctx context.Context, params core.GenerationParams) (*terrain.Result, bool, error) {
	key, cacheable := params.GeometryKey()
	if !cacheable || s.cache == nil {
		result, err := s.compute(ctx, params)
		return result, false, err
	}

	if err := params.Validate(); err != nil {
		s.observe("invalid", 0)
		return nil, false, err
	}

	if mesh, err := s.cache.Get(ctx, key); err == nil {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		s.observe("cached", 0)
		return cachedResult(params, mesh), true, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("mesh cache read failed", "key", key, "error", err)
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	f := s.join(ctx, key)
	defer s.leave(key, f)

	ch := s.group.DoChan(key, func() (any, error) {
		result, err := s.compute(f.ctx, params)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(context.WithoutCancel(f.ctx), key, result.Mesh); err != nil {
			s.logger.Warn("mesh cache write failed", "key", key, "error", err)
		}
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		if res.Shared {
			s.logger.Debug("joined in-flight generation", "key", key)
		}
		return res.Val.(*terrain.Result), false, nil
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %w", core.ErrGenerationAborted, ctx.Err())
	}
}

// join registers a caller of key. The first caller creates the shared
// context; it outlives that caller as long as others are still waiting.
func (s *Service) join(ctx context.Context, key string) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		s.flights[key] = f
	}
	f.refs++
	return f
}

// leave drops a caller of key. The last one out cancels the shared context
// and makes later callers start a fresh computation.
func (s *Service) leave(key string, f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.refs--
	if f.refs > 0 {
		return
	}
	if s.flights[key] == f {
		delete(s.flights, key)
		s.group.Forget(key)
	}
	f.cancel()
}

func (s *Service) compute(ctx context.Context, params core.GenerationParams) (*terrain.Result, error) {
	start := time.Now()
	result, err := s.gen.Generate(ctx, params)
	switch {
	case err == nil:
		s.observe("generated", time.Since(start))
	case errors.Is(err, core.ErrGenerationAborted):
		s.observe("aborted", 0)
	case errors.Is(err, core.ErrInvalidParameter):
		s.observe("invalid", 0)
	default:
		s.observe("failed", 0)
	}
	return result, err
}

func (s *Service) observe(outcome string, d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Generations.WithLabelValues(outcome).Inc()
	if d > 0 {
		s.metrics.Duration.Observe(d.Seconds())
	}
}

func cachedResult(params core.GenerationParams, mesh *core.Mesh) *terrain.Result {
	params = params.Normalized()
	minR, maxR := mesh.RadiusRange()
	return &terrain.Result{
		Mesh:   mesh,
		Params: params,
		Seed:   *params.Seed,
		Stats: core.Stats{
			Vertices:  mesh.VertexCount(),
			Triangles: mesh.TriangleCount(),
			Mountains: terrain.MountainCount(params.MountainHeight),
			Craters:   terrain.CraterCount(params.CraterDensity),
			MinRadius: minR,
			MaxRadius: maxR,
		},
	}
}
