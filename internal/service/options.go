package service

import (
	"time"

	"github.com/google/uuid"
)

// Observer receives lifecycle events, e.g. for metrics.
type Observer interface {
	CollectionCreated(wasteType string)
	CollectionAccepted()
	CollectionCompleted(quantityKg int)
	LoginAttempt(success bool)
	UserRegistered(role string)
}

type nopObserver struct{}

func (nopObserver) CollectionCreated(string) {}
func (nopObserver) CollectionAccepted()      {}
func (nopObserver) CollectionCompleted(int)  {}
func (nopObserver) LoginAttempt(bool)        {}
func (nopObserver) UserRegistered(string)    {}

type options struct {
	now      func() time.Time
	newID    func() string
	observer Observer
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		newID:    newTimeOrderedID,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newTimeOrderedID returns a UUIDv7, which embeds the creation time.
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
