package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/storage"
)

type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Set(context.Context, string, []byte) error   { return f.err }
func (f failingBackend) Delete(context.Context, string) error        { return f.err }

func TestListFallsBackToSeedWhenEmpty(t *testing.T) {
	repo := NewUserRepository(storage.NewMemory(), true, zerolog.Nop())

	users := repo.List(context.Background())
	require.Len(t, users, len(SeedUsers()))
	assert.Equal(t, "admin@wasteops.local", users[0].Email)
}

func TestListWithoutSeedIsEmpty(t *testing.T) {
	repo := NewCollectionRepository(storage.NewMemory(), false, zerolog.Nop())
	assert.Empty(t, repo.List(context.Background()))
}

func TestUpsertThenGetByIDRoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(storage.NewMemory(), false, zerolog.Nop())
	completedAt := time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)
	collection := model.Collection{
		ID:            "c-1",
		ClientID:      "client",
		CompanyID:     "company",
		WasteType:     model.WasteTypeGeneral,
		ScheduledDate: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Address:       "Oak 1, North",
		QuantityKg:    7,
		Status:        model.CollectionStatusCompleted,
		Notes:         "bags",
		CompletedAt:   &completedAt,
		CreatedAt:     time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Upsert(ctx, collection))

	stored, ok := repo.GetByID(ctx, "c-1")
	require.True(t, ok)
	assert.Equal(t, collection, stored)

	_, ok = repo.GetByID(ctx, "missing")
	assert.False(t, ok)
}

func TestUpsertReplacesInPlaceAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(storage.NewMemory(), true, zerolog.Nop())

	seeded := SeedUsers()
	updated := seeded[1]
	updated.Name = "Maria G."
	require.NoError(t, repo.Upsert(ctx, updated))

	users := repo.List(ctx)
	require.Len(t, users, len(seeded))
	assert.Equal(t, "Maria G.", users[1].Name)
	assert.Equal(t, model.UserRoleClient, users[1].Role())
	assert.Equal(t, "Av. Libertad 123, Centro", users[1].Address())

	require.NoError(t, repo.Upsert(ctx, model.User{ID: "new", Email: "n@x.com", Profile: model.AdminProfile{}}))
	users = repo.List(ctx)
	require.Len(t, users, len(seeded)+1)
	assert.Equal(t, "new", users[len(users)-1].ID)
}

func TestUnavailableBackendServesSeedAndDropsWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(storage.Unavailable{}, true, zerolog.Nop())

	require.NoError(t, repo.Upsert(ctx, model.Collection{ID: "dropped"}))
	_, ok := repo.GetByID(ctx, "dropped")
	assert.False(t, ok)
	assert.Len(t, repo.List(ctx), len(SeedCollections()))
}

func TestBrokenBackendDegradesSilently(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(failingBackend{err: errors.New("disk on fire")}, true, zerolog.Nop())

	assert.Len(t, repo.List(ctx), len(SeedReports()))
	assert.NoError(t, repo.Upsert(ctx, model.Report{ID: "r-9"}))
}

// flakyBackend fails the next Get once when armed.
type flakyBackend struct {
	storage.Backend
	mu       sync.Mutex
	failNext bool
}

func (f *flakyBackend) arm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = true
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failNext
	f.failNext = false
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset")
	}
	return f.Backend.Get(ctx, key)
}

func TestFailedReadDropsWriteAndKeepsStoredRecords(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{Backend: storage.NewMemory()}
	repo := NewUserRepository(backend, true, zerolog.Nop())

	for _, id := range []string{"user-a", "user-b", "user-c"} {
		require.NoError(t, repo.Upsert(ctx, model.User{ID: id, Email: id + "@x.com", Profile: model.AdminProfile{}}))
	}
	require.Len(t, repo.List(ctx), len(SeedUsers())+3)

	backend.arm()
	require.NoError(t, repo.Upsert(ctx, model.User{ID: "new", Profile: model.AdminProfile{}}))

	users := repo.List(ctx)
	assert.Len(t, users, len(SeedUsers())+3)
	_, ok := repo.GetByID(ctx, "user-a")
	assert.True(t, ok)
	_, ok = repo.GetByID(ctx, "new")
	assert.False(t, ok, "a write after a failed read is dropped")

	backend.arm()
	_, found, err := repo.records.Update(ctx, "user-b", func(u *model.User) error {
		u.Name = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.False(t, found, "user-b is not in the seed served after a failed read")

	stored, ok := repo.GetByID(ctx, "user-b")
	require.True(t, ok)
	assert.Empty(t, stored.Name)
}

func TestUndecodableDataIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, "waste-collection-reports", []byte("{not json")))

	repo := NewReportRepository(backend, true, zerolog.Nop())
	require.NoError(t, repo.Upsert(ctx, model.Report{ID: "r-1"}))

	raw, err := backend.Get(ctx, "waste-collection-reports")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestUndecodableDataServesSeed(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, "waste-collection-reports", []byte("{not json")))

	repo := NewReportRepository(backend, true, zerolog.Nop())
	assert.Len(t, repo.List(ctx), len(SeedReports()))
}

func TestGetByEmail(t *testing.T) {
	repo := NewUserRepository(storage.NewMemory(), true, zerolog.Nop())

	user, ok := repo.GetByEmail(context.Background(), "company@wasteops.local")
	require.True(t, ok)
	assert.Equal(t, "EcoRecolecta S.A.", user.CompanyName())

	_, ok = repo.GetByEmail(context.Background(), "COMPANY@wasteops.local")
	assert.False(t, ok)
}

func TestListForUserMatchesClientOrCompany(t *testing.T) {
	ctx := context.Background()
	collections := NewCollectionRepository(storage.NewMemory(), true, zerolog.Nop())
	reports := NewReportRepository(storage.NewMemory(), true, zerolog.Nop())

	assert.Len(t, collections.ListForUser(ctx, "2"), 3)
	assert.Len(t, collections.ListForUser(ctx, "3"), 2)
	assert.Empty(t, collections.ListForUser(ctx, "1"))

	assert.Len(t, reports.ListForUser(ctx, "2"), 1)
	assert.Empty(t, reports.ListForUser(ctx, "3"))
}

func TestConcurrentUpsertsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(storage.NewMemory(), false, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Upsert(ctx, model.Collection{ID: string(rune('a' + i)), QuantityKg: i + 1})
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.List(ctx), 20)
}

func TestUpdateMutatesUnderLock(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(storage.NewMemory(), false, zerolog.Nop())
	require.NoError(t, repo.Upsert(ctx, model.Collection{ID: "c-1", QuantityKg: 0}))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = repo.Update(ctx, "c-1", func(c *model.Collection) error {
				c.QuantityKg++
				return nil
			})
		}()
	}
	wg.Wait()

	stored, ok := repo.GetByID(ctx, "c-1")
	require.True(t, ok)
	assert.Equal(t, 25, stored.QuantityKg)
}

func TestUpdateMissingAndRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(storage.NewMemory(), true, zerolog.Nop())

	_, found, err := repo.Update(ctx, "missing", func(*model.Collection) error {
		t.Fatal("mutate must not run for a missing record")
		return nil
	})
	assert.False(t, found)
	assert.NoError(t, err)

	rejected := errors.New("rejected")
	_, found, err = repo.Update(ctx, "1", func(c *model.Collection) error {
		c.Notes = "should not stick"
		return rejected
	})
	assert.True(t, found)
	require.ErrorIs(t, err, rejected)

	stored, _ := repo.GetByID(ctx, "1")
	assert.Equal(t, "Cardboard and plastic bottles", stored.Notes)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	repo := NewSessionRepository(backend, zerolog.Nop())

	_, ok := repo.Get(ctx, "")
	assert.False(t, ok)

	repo.Set(ctx, "", "2")
	repo.Set(ctx, "tab-b", "3")

	userID, ok := repo.Get(ctx, "")
	require.True(t, ok)
	assert.Equal(t, "2", userID)

	raw, err := backend.Get(ctx, "waste-collection-auth")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"2"}`, string(raw))

	repo.Clear(ctx, "")
	_, ok = repo.Get(ctx, "")
	assert.False(t, ok)

	userID, ok = repo.Get(ctx, "tab-b")
	require.True(t, ok)
	assert.Equal(t, "3", userID)
}

func TestSessionRepositoryUnavailable(t *testing.T) {
	repo := NewSessionRepository(nil, zerolog.Nop())
	repo.Set(context.Background(), "", "1")
	_, ok := repo.Get(context.Background(), "")
	assert.False(t, ok)
}
