package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/storage"
)

const keyPrefix = "waste-collection-"

// records is one persisted collection of T stored as a single JSON array under key.
// Reads fall back to seed when nothing is stored or the backend cannot be read;
// writes to a backend that cannot be written are dropped.
type records[T any] struct {
	backend storage.Backend
	key     string
	seed    func() []T
	id      func(T) string
	log     zerolog.Logger

	// serializes read-modify-write within this process
	mu sync.Mutex
}

func newRecords[T any](backend storage.Backend, name string, seed func() []T, id func(T) string, log zerolog.Logger) *records[T] {
	if backend == nil {
		backend = storage.Unavailable{}
	}
	if seed == nil {
		seed = func() []T { return nil }
	}
	return &records[T]{
		backend: backend,
		key:     keyPrefix + name,
		seed:    seed,
		id:      id,
		log:     log.With().Str("records", name).Logger(),
	}
}

func (r *records[T]) List(ctx context.Context) []T {
	raw, err := r.backend.Get(ctx, r.key)
	if err != nil {
		r.logReadFailure(err)
		return r.seed()
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		r.log.Warn().Err(err).Msg("stored records are not decodable, serving seed data")
		return r.seed()
	}
	return items
}

func (r *records[T]) GetByID(ctx context.Context, id string) (T, bool) {
	for _, item := range r.List(ctx) {
		if r.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Upsert replaces the record with the same id or appends it, then rewrites the whole collection.
func (r *records[T]) Upsert(ctx context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, writable := r.loadForWrite(ctx)
	if !writable {
		return nil
	}
	replaced := false
	for i := range items {
		if r.id(items[i]) == r.id(item) {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return r.store(ctx, items)
}

// Update applies mutate to the record with id and stores the result, all under the write lock.
// The bool is false when no such record exists. An error from mutate aborts the write.
func (r *records[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	items, writable := r.loadForWrite(ctx)
	pos := -1
	for i := range items {
		if r.id(items[i]) == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return zero, false, nil
	}

	item := items[pos]
	if err := mutate(&item); err != nil {
		return zero, true, err
	}
	if !writable {
		return item, true, nil
	}
	items[pos] = item
	if err := r.store(ctx, items); err != nil {
		return zero, true, err
	}
	return item, true, nil
}

// loadForWrite reads the stored set for a read-modify-write. Only a missing key starts from seed;
// when the stored set cannot be read or decoded the seed is returned unwritable so the write is dropped.
func (r *records[T]) loadForWrite(ctx context.Context) ([]T, bool) {
	raw, err := r.backend.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return r.seed(), true
	}
	if err != nil {
		r.logWriteFailure(err)
		return r.seed(), false
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		r.log.Warn().Err(err).Msg("stored records are not decodable, write dropped")
		return r.seed(), false
	}
	return items, true
}

func (r *records[T]) store(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.backend.Set(ctx, r.key, raw); err != nil {
		r.logWriteFailure(err)
	}
	return nil
}

func (r *records[T]) logReadFailure(err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrUnavailable):
		r.log.Debug().Msg("storage unavailable, serving seed data")
	default:
		r.log.Warn().Err(err).Msg("read failed, serving seed data")
	}
}

func (r *records[T]) logWriteFailure(err error) {
	if errors.Is(err, storage.ErrUnavailable) {
		r.log.Debug().Msg("storage unavailable, write dropped")
		return
	}
	r.log.Warn().Err(err).Msg("write failed, record not persisted")
}
