package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyAssigned   = errors.New("collection already assigned to another company")
	ErrInvalidTransition = errors.New("invalid status transition")
)
