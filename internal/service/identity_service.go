package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/model"
)

type UserStore interface {
	List(ctx context.Context) []model.User
	GetByID(ctx context.Context, id string) (model.User, bool)
	GetByEmail(ctx context.Context, email string) (model.User, bool)
	Upsert(ctx context.Context, user model.User) error
}

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (string, bool)
	Set(ctx context.Context, sessionID, userID string)
	Clear(ctx context.Context, sessionID string)
}

// IdentityService resolves sessions and logs users in and out.
// Failures are reported as absence, never as errors.
type IdentityService struct {
	users    UserStore
	sessions SessionStore
	verifier CredentialVerifier
	log      zerolog.Logger
	opts     options
}

type RegisterInput struct {
	Email       string
	Name        string
	Role        model.UserRole
	Phone       string
	Address     string
	CompanyName string
}

func NewIdentityService(users UserStore, sessions SessionStore, verifier CredentialVerifier, log zerolog.Logger, opts ...Option) *IdentityService {
	return &IdentityService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		log:      log,
		opts:     buildOptions(opts),
	}
}

// CurrentSession returns the user the session points at, if both exist.
func (s *IdentityService) CurrentSession(ctx context.Context, sessionID string) (*model.User, bool) {
	userID, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, false
	}
	user, ok := s.users.GetByID(ctx, userID)
	if !ok {
		return nil, false
	}
	return &user, true
}

func (s *IdentityService) Login(ctx context.Context, sessionID, email, password string) (*model.User, bool) {
	user, ok := s.users.GetByEmail(ctx, email)
	if !ok || !s.verifier.Verify(user, password) {
		s.opts.observer.LoginAttempt(false)
		s.log.Info().Str("email", email).Msg("login rejected")
		return nil, false
	}
	s.sessions.Set(ctx, sessionID, user.ID)
	s.opts.observer.LoginAttempt(true)
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role())).Msg("login")
	return &user, true
}

// Register creates the user and logs the session in as them. Emails are not checked for duplicates.
func (s *IdentityService) Register(ctx context.Context, sessionID string, input RegisterInput) (*model.User, error) {
	profile, ok := model.NewProfile(input.Role, strings.TrimSpace(input.Address), strings.TrimSpace(input.CompanyName))
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	user := model.User{
		ID:        s.opts.newID(),
		Email:     strings.TrimSpace(input.Email),
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Profile:   profile,
		CreatedAt: s.opts.now().UTC(),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	s.sessions.Set(ctx, sessionID, user.ID)

	s.opts.observer.UserRegistered(string(user.Role()))
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role())).Msg("user registered")
	return &user, nil
}

func (s *IdentityService) Logout(ctx context.Context, sessionID string) {
	s.sessions.Clear(ctx, sessionID)
}

func (s *IdentityService) ListUsers(ctx context.Context) []model.User {
	return s.users.List(ctx)
}

func (s *IdentityService) GetUser(ctx context.Context, id string) (*model.User, bool) {
	user, ok := s.users.GetByID(ctx, id)
	if !ok {
		return nil, false
	}
	return &user, true
}
