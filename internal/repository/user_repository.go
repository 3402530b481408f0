package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/storage"
)

type UserRepository struct {
	records *records[model.User]
}

func NewUserRepository(backend storage.Backend, seed bool, log zerolog.Logger) *UserRepository {
	var seedFn func() []model.User
	if seed {
		seedFn = SeedUsers
	}
	return &UserRepository{
		records: newRecords(backend, "users", seedFn, func(u model.User) string { return u.ID }, log),
	}
}

func (r *UserRepository) List(ctx context.Context) []model.User {
	return r.records.List(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, bool) {
	return r.records.GetByID(ctx, id)
}

// GetByEmail returns the first user whose email matches exactly.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, bool) {
	for _, user := range r.records.List(ctx) {
		if user.Email == email {
			return user, true
		}
	}
	return model.User{}, false
}

func (r *UserRepository) Upsert(ctx context.Context, user model.User) error {
	return r.records.Upsert(ctx, user)
}
