package cache

import (
	"context"
	"errors"
	"sync"

	"lunargen/core"
)

// ErrCacheMiss is returned by Get when the key is not cached
var ErrCacheMiss = errors.New("cache miss")

// MeshCache stores generated meshes by geometry key. Meshes handed to and
// returned from a cache are shared and must not be mutated.
type MeshCache interface {
	Get(ctx context.Context, key string) (*core.Mesh, error)
	Put(ctx context.Context, key string, mesh *core.Mesh) error
}

// Memory is a bounded in-process cache that evicts the oldest entry first
type Memory struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*core.Mesh
	order    []string
}

// NewMemory creates an in-process cache holding at most capacity meshes.
// A capacity below 1 is treated as 1.
func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{
		capacity: capacity,
		entries:  make(map[string]*core.Mesh, capacity),
	}
}

func (m *Memory) Get(_ context.Context, key string) (*core.Mesh, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mesh, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return mesh, nil
}

func (m *Memory) Put(_ context.Context, key string, mesh *core.Mesh) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		m.entries[key] = mesh
		return nil
	}

	for len(m.order) >= m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[key] = mesh
	m.order = append(m.order, key)
	return nil
}

// Len returns the number of cached meshes
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
