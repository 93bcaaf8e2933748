package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/adapter"
	"telegram-announce-bot/internal/domain/ports/repository"
	"telegram-announce-bot/internal/infra/logging"
	"telegram-announce-bot/internal/infra/metrics"
)

type DeliveryStatus string

const (
	DeliveryDelivered          DeliveryStatus = "delivered"
	DeliveryChatNotFound       DeliveryStatus = "chat_not_found"
	DeliveryBotNotMember       DeliveryStatus = "bot_not_member"
	DeliveryMissingAdminRights DeliveryStatus = "missing_admin_rights"
	DeliveryOther              DeliveryStatus = "other"
)

// DeliveryError is a send failure classified from the transport's error text.
type DeliveryError struct {
	Status  DeliveryStatus
	Message string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed (%s): %s", e.Status, e.Message)
}

// classifyDeliveryError maps transport error text onto a DeliveryStatus.
// The matching is best-effort: the exact wording is owned by the platform and
// may change, so it stays in this one function.
func classifyDeliveryError(err error) *DeliveryError {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "chat not found"):
		return &DeliveryError{Status: DeliveryChatNotFound, Message: msg}
	case strings.Contains(lower, "bot is not a member"):
		return &DeliveryError{Status: DeliveryBotNotMember, Message: msg}
	case strings.Contains(lower, "administrator rights"):
		return &DeliveryError{Status: DeliveryMissingAdminRights, Message: msg}
	default:
		return &DeliveryError{Status: DeliveryOther, Message: msg}
	}
}

// DeliveryUseCase dispatches a composed announcement to one destination.
type DeliveryUseCase interface {
	Deliver(ctx context.Context, userID int64, dst *model.Destination, ann *model.Announcement) (int, error)
}

type deliveryUC struct {
	bot        adapter.TelegramBotAdapter
	deliveries repository.DeliveryLogRepository
	log        *zerolog.Logger
}

// NewDeliveryUseCase constructs the dispatcher. deliveries may be nil when no
// audit log is configured.
func NewDeliveryUseCase(bot adapter.TelegramBotAdapter, deliveries repository.DeliveryLogRepository, logger *zerolog.Logger) DeliveryUseCase {
	return &deliveryUC{bot: bot, deliveries: deliveries, log: logger}
}

// Deliver sends the announcement and returns the platform message ID. A
// failure comes back as *DeliveryError; no retry is attempted.
func (uc *deliveryUC) Deliver(ctx context.Context, userID int64, dst *model.Destination, ann *model.Announcement) (int, error) {
	rows := make([][]adapter.InlineButton, 0, len(ann.Buttons))
	for _, row := range ann.Buttons {
		r := make([]adapter.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, adapter.InlineButton{Text: b.Label, URL: b.URL})
		}
		rows = append(rows, r)
	}

	start := time.Now()
	msgID, err := uc.bot.SendAnnouncement(ctx, dst.ChatID, ann.Body, rows)
	latencyMs := time.Since(start).Milliseconds()

	log := logging.With(ctx, uc.log)
	if err != nil {
		derr := classifyDeliveryError(err)
		metrics.ObserveDelivery(string(derr.Status), latencyMs)
		log.Warn().
			Str("destination", dst.Key).
			Str("kind", string(dst.Kind)).
			Str("status", string(derr.Status)).
			Err(err).
			Msg("announcement delivery failed")
		uc.record(ctx, userID, dst, 0, string(derr.Status), derr.Message)
		return 0, derr
	}

	metrics.ObserveDelivery(string(DeliveryDelivered), latencyMs)
	log.Info().
		Str("destination", dst.Key).
		Str("kind", string(dst.Kind)).
		Int("message_id", msgID).
		Int("buttons", ann.ButtonCount()).
		Msg("announcement delivered")
	uc.record(ctx, userID, dst, msgID, string(DeliveryDelivered), "")
	return msgID, nil
}

// record appends to the audit log; failures are logged, never surfaced.
func (uc *deliveryUC) record(ctx context.Context, userID int64, dst *model.Destination, msgID int, status, errText string) {
	if uc.deliveries == nil {
		return
	}
	rec := &repository.DeliveryRecord{
		UserID:         userID,
		DestinationKey: dst.Key,
		Kind:           string(dst.Kind),
		ChatID:         dst.ChatID,
		MessageID:      msgID,
		Status:         status,
		Error:          errText,
		CreatedAt:      time.Now(),
	}
	if err := uc.deliveries.Save(ctx, rec); err != nil {
		logging.With(ctx, uc.log).Warn().Err(err).Str("destination", dst.Key).Msg("failed to record delivery")
	}
}
