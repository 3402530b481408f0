// Package storage holds the key-value backends the record repositories persist through.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend stores opaque values under string keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Unavailable is the backend used when no persistence medium exists.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }
func (Unavailable) Set(context.Context, string, []byte) error   { return ErrUnavailable }
func (Unavailable) Delete(context.Context, string) error        { return ErrUnavailable }
