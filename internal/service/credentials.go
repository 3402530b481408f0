package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nurpe/wasteops-collections/internal/config"
	"github.com/nurpe/wasteops-collections/internal/model"
)

// CredentialVerifier decides whether password logs user in.
type CredentialVerifier interface {
	Verify(user model.User, password string) bool
}

// SharedPasswordVerifier accepts one password for every user.
type SharedPasswordVerifier struct {
	password []byte
}

func NewSharedPasswordVerifier(password string) SharedPasswordVerifier {
	return SharedPasswordVerifier{password: []byte(password)}
}

func (v SharedPasswordVerifier) Verify(_ model.User, password string) bool {
	if len(v.password) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(v.password, []byte(password)) == 1
}

// BcryptVerifier accepts the password matching a bcrypt hash shared by every user.
type BcryptVerifier struct {
	hash []byte
}

func NewBcryptVerifier(hash string) (BcryptVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return BcryptVerifier{}, fmt.Errorf("invalid shared password hash: %w", err)
	}
	return BcryptVerifier{hash: []byte(hash)}, nil
}

func (v BcryptVerifier) Verify(_ model.User, password string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}

// NewCredentialVerifier prefers the hash when one is configured.
func NewCredentialVerifier(cfg config.AuthConfig) (CredentialVerifier, error) {
	if cfg.SharedPasswordHash != "" {
		return NewBcryptVerifier(cfg.SharedPasswordHash)
	}
	return NewSharedPasswordVerifier(cfg.SharedPassword), nil
}
