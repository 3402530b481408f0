package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/storage"
)

type CollectionRepository struct {
	records *records[model.Collection]
}

func NewCollectionRepository(backend storage.Backend, seed bool, log zerolog.Logger) *CollectionRepository {
	var seedFn func() []model.Collection
	if seed {
		seedFn = SeedCollections
	}
	return &CollectionRepository{
		records: newRecords(backend, "collections", seedFn, func(c model.Collection) string { return c.ID }, log),
	}
}

func (r *CollectionRepository) List(ctx context.Context) []model.Collection {
	return r.records.List(ctx)
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (model.Collection, bool) {
	return r.records.GetByID(ctx, id)
}

// ListForUser serves both the client and the company view: it matches either side of the collection.
func (r *CollectionRepository) ListForUser(ctx context.Context, userID string) []model.Collection {
	all := r.records.List(ctx)
	result := make([]model.Collection, 0, len(all))
	for _, c := range all {
		if c.InvolvesUser(userID) {
			result = append(result, c)
		}
	}
	return result
}

func (r *CollectionRepository) Upsert(ctx context.Context, collection model.Collection) error {
	return r.records.Upsert(ctx, collection)
}

// Update runs mutate against the stored collection with id and saves it, serialized with every other write.
func (r *CollectionRepository) Update(ctx context.Context, id string, mutate func(*model.Collection) error) (model.Collection, bool, error) {
	return r.records.Update(ctx, id, mutate)
}
