package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/storage"
)

const sessionKey = keyPrefix + "auth"

type sessionPointer struct {
	UserID string `json:"user_id"`
}

// SessionRepository stores the session pointer: the id of the user a session is logged in as.
// An empty session id addresses the single default pointer.
type SessionRepository struct {
	backend storage.Backend
	log     zerolog.Logger
}

func NewSessionRepository(backend storage.Backend, log zerolog.Logger) *SessionRepository {
	if backend == nil {
		backend = storage.Unavailable{}
	}
	return &SessionRepository{backend: backend, log: log.With().Str("records", "auth").Logger()}
}

func (r *SessionRepository) key(sessionID string) string {
	if sessionID == "" {
		return sessionKey
	}
	return sessionKey + ":" + sessionID
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (string, bool) {
	raw, err := r.backend.Get(ctx, r.key(sessionID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrUnavailable) {
			r.log.Warn().Err(err).Msg("read session pointer failed")
		}
		return "", false
	}
	var pointer sessionPointer
	if err := json.Unmarshal(raw, &pointer); err != nil || pointer.UserID == "" {
		return "", false
	}
	return pointer.UserID, true
}

func (r *SessionRepository) Set(ctx context.Context, sessionID, userID string) {
	raw, _ := json.Marshal(sessionPointer{UserID: userID})
	if err := r.backend.Set(ctx, r.key(sessionID), raw); err != nil && !errors.Is(err, storage.ErrUnavailable) {
		r.log.Warn().Err(err).Msg("write session pointer failed")
	}
}

func (r *SessionRepository) Clear(ctx context.Context, sessionID string) {
	if err := r.backend.Delete(ctx, r.key(sessionID)); err != nil && !errors.Is(err, storage.ErrUnavailable) {
		r.log.Warn().Err(err).Msg("clear session pointer failed")
	}
}
