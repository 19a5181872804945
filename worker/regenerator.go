package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"lunargen/core"
	"lunargen/logging"
	"lunargen/terrain"
)

// Generator produces one surface per call. *terrain.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, params core.GenerationParams) (*terrain.Result, error)
}

// Regenerator runs generations in the background. Submitting new params
// cancels the generation in flight, and only the newest submission is ever
// published (last-write-wins). Readers never block on a generation.
type Regenerator struct {
	gen    Generator
	logger *slog.Logger

	// Thread control
	ctx      context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	seq     uint64             // Last submitted sequence number
	cancel  context.CancelFunc // Cancels the generation in flight
	lastErr error
	closed  bool

	latest  atomic.Pointer[terrain.Result]
	updates chan *terrain.Result
}

// Option configures a Regenerator
type Option func(*Regenerator)

// WithLogger sets the logger for generation outcomes
func WithLogger(l *slog.Logger) Option {
	return func(r *Regenerator) {
		r.logger = l
	}
}

// NewRegenerator creates a background regenerator around gen
func NewRegenerator(gen Generator, opts ...Option) *Regenerator {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Regenerator{
		gen:      gen,
		logger:   logging.NewNop(),
		ctx:      ctx,
		shutdown: cancel,
		updates:  make(chan *terrain.Result, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit starts generating params, superseding any earlier submission. It
// returns the submission's sequence number, or 0 once the regenerator is closed.
func (r *Regenerator) Submit(params core.GenerationParams) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0
	}
	if r.cancel != nil {
		r.cancel()
	}

	r.seq++
	seq := r.seq
	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.run(ctx, cancel, seq, params)

	return seq
}

func (r *Regenerator) run(ctx context.Context, cancel context.CancelFunc, seq uint64, params core.GenerationParams) {
	defer r.wg.Done()
	defer cancel()

	result, err := r.gen.Generate(ctx, params)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq {
		r.logger.Debug("discarding superseded generation", "seq", seq, "latest", r.seq)
		return
	}
	if err != nil {
		if errors.Is(err, core.ErrGenerationAborted) {
			return
		}
		r.lastErr = err
		r.logger.Warn("generation failed", "seq", seq, "error", err)
		return
	}

	r.lastErr = nil
	r.latest.Store(result)

	// Replace a result nobody has read yet
	select {
	case <-r.updates:
	default:
	}
	r.updates <- result
}

// Latest returns the most recently published result, or nil
func (r *Regenerator) Latest() *terrain.Result {
	return r.latest.Load()
}

// Updates delivers each published result. Results that are not received
// before a newer one is published are dropped. The channel is closed by Close.
func (r *Regenerator) Updates() <-chan *terrain.Result {
	return r.updates
}

// Err returns the error of the newest submission if it failed
func (r *Regenerator) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Wait blocks until no generation is running
func (r *Regenerator) Wait() {
	r.wg.Wait()
}

// Close cancels the generation in flight, waits for it and closes Updates.
func (r *Regenerator) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.shutdown()
	r.mu.Unlock()

	r.wg.Wait()
	close(r.updates)
}
