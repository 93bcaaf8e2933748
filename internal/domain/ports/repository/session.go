package repository

import (
	"context"

	"telegram-announce-bot/internal/domain/model"
)

// SessionRepository is the port for the per-user announcement session store.
// Set overwrites any existing entry for the user; Get returns
// domain.ErrNotFound when the user has no live session; Clear is a no-op for
// absent users.
//
// Implementations must allow many users' sessions to progress independently:
// mutations for one user key never block another's.
type SessionRepository interface {
	Set(ctx context.Context, userID int64, s *model.Session) error
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Clear(ctx context.Context, userID int64) error
}
