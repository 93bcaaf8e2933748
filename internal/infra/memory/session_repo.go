package memory

import (
	"context"
	"sync"

	"telegram-announce-bot/internal/domain"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo is the default in-process session store. One map, one mutex:
// each operation is individually atomic; read-modify-write sequences are
// serialized per user by the announcement flow itself, so this lock is only
// held for the duration of a map access.
//
// Entries have no expiry: an abandoned flow keeps its pending announcement
// until overwritten, cancelled, or the process restarts. Use the Redis store
// when expiry is wanted.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[int64]*model.Session)}
}

func (r *SessionRepo) Set(ctx context.Context, userID int64, s *model.Session) error {
	cp := *s
	r.mu.Lock()
	r.sessions[userID] = &cp
	r.mu.Unlock()
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, userID int64) (*model.Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
	return nil
}

// Len reports the number of live sessions (used by the ops status endpoint).
func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
