package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-announce-bot/internal/domain/ports/repository"
)

var _ repository.DeliveryLogRepository = (*deliveryLogRepo)(nil)

// deliveryLogRepo writes dispatch outcomes to announcement_deliveries.
// Schema:
//
//	CREATE TABLE announcement_deliveries (
//	    id              TEXT PRIMARY KEY,
//	    user_id         BIGINT NOT NULL,
//	    destination_key TEXT NOT NULL,
//	    kind            TEXT NOT NULL,
//	    chat_id         BIGINT NOT NULL,
//	    message_id      BIGINT NOT NULL,
//	    status          TEXT NOT NULL,
//	    error           TEXT NOT NULL DEFAULT '',
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type deliveryLogRepo struct {
	pool *pgxpool.Pool
}

func NewDeliveryLogRepo(pool *pgxpool.Pool) repository.DeliveryLogRepository {
	return &deliveryLogRepo{pool: pool}
}

func (r *deliveryLogRepo) Save(ctx context.Context, rec *repository.DeliveryRecord) error {
	const q = `
INSERT INTO announcement_deliveries (id, user_id, destination_key, kind, chat_id, message_id, status, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, q,
		uuid.NewString(), rec.UserID, rec.DestinationKey, rec.Kind,
		rec.ChatID, rec.MessageID, rec.Status, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		// A replayed insert is not worth failing the flow over.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}
