package repository

import (
	"context"
	"time"
)

// DeliveryRecord is one dispatch outcome for the audit trail. Only the
// outcome is recorded; announcement content itself is never persisted.
type DeliveryRecord struct {
	UserID         int64
	DestinationKey string
	Kind           string
	ChatID         int64
	MessageID      int
	Status         string
	Error          string
	CreatedAt      time.Time
}

// DeliveryLogRepository is the port for the optional delivery audit log.
type DeliveryLogRepository interface {
	Save(ctx context.Context, rec *DeliveryRecord) error
}
