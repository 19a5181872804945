package cache

import (
	"context"
	"errors"

	"lunargen/core"
)

// Tiered reads through a fast near cache to a shared far cache and fills
// the near cache on far hits.
type Tiered struct {
	Near MeshCache
	Far  MeshCache
}

func (t *Tiered) Get(ctx context.Context, key string) (*core.Mesh, error) {
	mesh, err := t.Near.Get(ctx, key)
	if err == nil {
		return mesh, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	mesh, err = t.Far.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := t.Near.Put(ctx, key, mesh); err != nil {
		return nil, err
	}
	return mesh, nil
}

func (t *Tiered) Put(ctx context.Context, key string, mesh *core.Mesh) error {
	if err := t.Far.Put(ctx, key, mesh); err != nil {
		return err
	}
	return t.Near.Put(ctx, key, mesh)
}
