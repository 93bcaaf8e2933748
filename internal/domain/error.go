package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound              = errors.New("entity not found")
	ErrUnauthorized          = errors.New("user is not an admin")
	ErrNoActiveSession       = errors.New("no active announcement session")
	ErrNoPendingAnnouncement = errors.New("no pending announcement for user")
	ErrInvalidChannel        = errors.New("invalid channel selection")
	ErrInvalidGroup          = errors.New("invalid group selection")
	ErrInvalidSelection      = errors.New("invalid selection")
	ErrInternal              = errors.New("internal error")
)
