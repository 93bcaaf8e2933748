package telegram

import (
	"context"
	"log"
	"time"

	"telegram-announce-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct{}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s\n", chatID, text)
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s [buttons: %v]\n", chatID, text, rows)
	return nil
}

func (b *NoopBotAdapter) SendAnnouncement(ctx context.Context, chatID int64, body string, rows [][]adapter.InlineButton) (int, error) {
	if err := b.pause(ctx); err != nil {
		return 0, err
	}
	log.Printf("[noop-telegram] Announcement to chat %d: %s [buttons: %v]\n", chatID, body, rows)
	return 1, nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] Edit message %d in chat %d: %s\n", messageID, chatID, text)
	return nil
}

// pause simulates slight processing time and respects ctx.
func (b *NoopBotAdapter) pause(ctx context.Context) error {
	select {
	case <-time.After(100 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
