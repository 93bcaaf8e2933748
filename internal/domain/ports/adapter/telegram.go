// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	// SendAnnouncement sends Markdown body text with a link-button keyboard
	// and returns the platform message ID of the delivered message.
	SendAnnouncement(ctx context.Context, chatID int64, body string, rows [][]InlineButton) (int, error)
	// EditMessage rewrites a previously sent message in place.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
}
