// Package collection implements the fetch / mutate / refetch cycle shared by
// every list page: a mutation never patches the list locally, it is always
// followed by a full reload of the authoritative collection.
package collection

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stemsi/institute-console/internal/response"
)

// FetchFunc returns the full current collection.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Snapshot is the result of one load. On failure Items is empty and Message
// holds the text to show in place of the list.
type Snapshot[T any] struct {
	Items   []T
	Err     error
	Message string
}

// OK reports whether the load succeeded.
func (s Snapshot[T]) OK() bool { return s.Err == nil }

// Collection is one remote resource list.
type Collection[T any] struct {
	name  string
	fetch FetchFunc[T]
}

// New creates a collection named name (used in error wrapping).
func New[T any](name string, fetch func(ctx context.Context) ([]T, error)) *Collection[T] {
	return &Collection[T]{name: name, fetch: fetch}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Load issues one fetch and replaces the whole list. No cache, no retry.
func (c *Collection[T]) Load(ctx context.Context) (Snapshot[T], error) {
	items, err := c.fetch(ctx)
	if err != nil {
		err = fmt.Errorf("load %s: %w", c.name, err)
		return Snapshot[T]{Items: []T{}, Err: err, Message: response.MessageFor(err)}, err
	}
	if items == nil {
		items = []T{}
	}
	return Snapshot[T]{Items: items}, nil
}

// Mutate runs op and, only if it succeeds, reloads the collection.
// A failed op returns its error and an empty snapshot; the caller still holds
// whatever it showed before and may retry. A failed reload after a successful
// op is reported inside the snapshot, not as an error.
func (c *Collection[T]) Mutate(ctx context.Context, op func(ctx context.Context) error) (Snapshot[T], error) {
	if err := op(ctx); err != nil {
		return Snapshot[T]{}, err
	}
	snap, _ := c.Load(ctx)
	return snap, nil
}

// Into returns a loader that stores the result of c.Load in dst. Use with LoadAll.
func Into[T any](c *Collection[T], dst *Snapshot[T]) func(context.Context) {
	return func(ctx context.Context) {
		*dst, _ = c.Load(ctx)
	}
}

// LoadAll runs loaders concurrently and waits for all of them. Each loader
// owns its own result slot, so one failing does not affect the others.
func LoadAll(ctx context.Context, loaders ...func(context.Context)) {
	var g errgroup.Group
	for _, load := range loaders {
		g.Go(func() error {
			load(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

// Filter returns the items keep accepts, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the first item accepted by match.
func Find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
