// Package store resolves entity ids to full records. The graph itself lives elsewhere; a
// Store is only ever read.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/japaniel/kanjigraph/pkg/entity"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("entity not found")

// Store returns the full record for an id.
type Store interface {
	Get(ctx context.Context, id int64) (entity.Entity, error)
}

// Func adapts a plain function to the Store interface.
type Func func(ctx context.Context, id int64) (entity.Entity, error)

// Get implements Store.
func (f Func) Get(ctx context.Context, id int64) (entity.Entity, error) { return f(ctx, id) }

// Memory is a map-backed Store. It is used for tests and for small fixture graphs.
type Memory map[int64]entity.Entity

// NewMemory builds a Memory store from a list of records.
func NewMemory(entities ...entity.Entity) Memory {
	m := make(Memory, len(entities))
	for _, e := range entities {
		m[e.ID] = e
	}
	return m
}

// Get implements Store.
func (m Memory) Get(ctx context.Context, id int64) (entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return entity.Entity{}, err
	}
	e, ok := m[id]
	if !ok {
		return entity.Entity{}, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	return e, nil
}
