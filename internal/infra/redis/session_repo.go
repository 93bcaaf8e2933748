package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-announce-bot/internal/domain"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps announcement sessions in Redis with a TTL, for
// deployments that want abandoned flows to expire instead of lingering
// until overwritten (the in-memory store's behavior).
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func (r *SessionRepo) sessionKey(userID int64) string {
	return fmt.Sprintf("announce_session:%d", userID)
}

func (r *SessionRepo) Set(ctx context.Context, userID int64, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.sessionKey(userID), data, r.ttl)
}

func (r *SessionRepo) Get(ctx context.Context, userID int64) (*model.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(userID))
	if IsNil(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Clear(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, r.sessionKey(userID))
}
