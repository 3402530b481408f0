package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/config"
	"github.com/nurpe/wasteops-collections/internal/model"
)

type CollectionStore interface {
	List(ctx context.Context) []model.Collection
	GetByID(ctx context.Context, id string) (model.Collection, bool)
	ListForUser(ctx context.Context, userID string) []model.Collection
	Upsert(ctx context.Context, collection model.Collection) error
	Update(ctx context.Context, id string, mutate func(*model.Collection) error) (model.Collection, bool, error)
}

// CompletionPolicy decides who may complete a collection.
type CompletionPolicy int

const (
	// CompletionAnyCompany trusts every caller that reaches Complete.
	CompletionAnyCompany CompletionPolicy = iota
	// CompletionAssignedOnly requires the caller to be the assigned company.
	CompletionAssignedOnly
)

func ParseCompletionPolicy(raw string) CompletionPolicy {
	if strings.EqualFold(strings.TrimSpace(raw), config.CompletePolicyAssigned) {
		return CompletionAssignedOnly
	}
	return CompletionAnyCompany
}

type CollectionService struct {
	collections CollectionStore
	policy      CompletionPolicy
	log         zerolog.Logger
	opts        options
}

type CreateCollectionInput struct {
	ClientID      string
	WasteType     model.WasteType
	ScheduledDate time.Time
	ScheduledTime string
	Address       string
	QuantityKg    int
	Notes         string
}

func NewCollectionService(collections CollectionStore, policy CompletionPolicy, log zerolog.Logger, opts ...Option) *CollectionService {
	return &CollectionService{
		collections: collections,
		policy:      policy,
		log:         log,
		opts:        buildOptions(opts),
	}
}

// Create stores a new scheduled, unassigned collection.
func (s *CollectionService) Create(ctx context.Context, input CreateCollectionInput) (*model.Collection, error) {
	now := s.opts.now().UTC()

	if strings.TrimSpace(input.ClientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if !input.WasteType.Valid() {
		return nil, fmt.Errorf("%w: unknown waste type %q", ErrInvalidInput, input.WasteType)
	}
	if input.QuantityKg <= 0 {
		return nil, fmt.Errorf("%w: quantity_kg must be positive", ErrInvalidInput)
	}
	if input.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_date is required", ErrInvalidInput)
	}
	if dateOnly(input.ScheduledDate).Before(dateOnly(now)) {
		return nil, fmt.Errorf("%w: scheduled_date is in the past", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	collection := model.Collection{
		ID:            s.opts.newID(),
		ClientID:      input.ClientID,
		WasteType:     input.WasteType,
		ScheduledDate: input.ScheduledDate.UTC(),
		ScheduledTime: strings.TrimSpace(input.ScheduledTime),
		Address:       strings.TrimSpace(input.Address),
		QuantityKg:    input.QuantityKg,
		Status:        model.CollectionStatusScheduled,
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     now,
	}
	if err := s.collections.Upsert(ctx, collection); err != nil {
		return nil, err
	}

	s.opts.observer.CollectionCreated(string(collection.WasteType))
	s.log.Info().
		Str("collection_id", collection.ID).
		Str("client_id", collection.ClientID).
		Str("waste_type", string(collection.WasteType)).
		Int("quantity_kg", collection.QuantityKg).
		Msg("collection created")
	return &collection, nil
}

// ListAvailable returns the collections no company has accepted yet.
func (s *CollectionService) ListAvailable(ctx context.Context) []model.Collection {
	all := s.collections.List(ctx)
	result := make([]model.Collection, 0, len(all))
	for _, c := range all {
		if c.Available() {
			result = append(result, c)
		}
	}
	return result
}

// Accept assigns the collection to companyID. Accepting twice as the same company changes nothing.
func (s *CollectionService) Accept(ctx context.Context, id, companyID string) (*model.Collection, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, fmt.Errorf("%w: company_id is required", ErrInvalidInput)
	}

	changed := false
	collection, found, err := s.collections.Update(ctx, id, func(c *model.Collection) error {
		if c.CompanyID == companyID {
			return nil
		}
		if c.Assigned() {
			return ErrAlreadyAssigned
		}
		if c.Status.Terminal() {
			return fmt.Errorf("%w: collection is %s", ErrInvalidTransition, c.Status)
		}
		c.CompanyID = companyID
		changed = true
		return nil
	})
	if !found {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if changed {
		s.opts.observer.CollectionAccepted()
		s.log.Info().Str("collection_id", id).Str("company_id", companyID).Msg("collection accepted")
	}
	return &collection, nil
}

// Complete marks the collection completed. Completing a completed collection changes nothing.
func (s *CollectionService) Complete(ctx context.Context, id, actorID string) (*model.Collection, error) {
	changed := false
	collection, found, err := s.collections.Update(ctx, id, func(c *model.Collection) error {
		if s.policy == CompletionAssignedOnly && c.CompanyID != actorID {
			return ErrPermissionDenied
		}
		switch c.Status {
		case model.CollectionStatusCompleted:
			return nil
		case model.CollectionStatusCancelled:
			return fmt.Errorf("%w: collection is cancelled", ErrInvalidTransition)
		}
		completedAt := s.opts.now().UTC()
		c.Status = model.CollectionStatusCompleted
		c.CompletedAt = &completedAt
		changed = true
		return nil
	})
	if !found {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if changed {
		s.opts.observer.CollectionCompleted(collection.QuantityKg)
		s.log.Info().Str("collection_id", id).Str("actor_id", actorID).Msg("collection completed")
	}
	return &collection, nil
}

// CollectionsForUser returns what the user requested or what was assigned to them.
func (s *CollectionService) CollectionsForUser(ctx context.Context, userID string) []model.Collection {
	return s.collections.ListForUser(ctx, userID)
}

func (s *CollectionService) ListAll(ctx context.Context) []model.Collection {
	return s.collections.List(ctx)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
