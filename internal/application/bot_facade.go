package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-announce-bot/internal/domain"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/adapter"
	"telegram-announce-bot/internal/usecase"
)

// BotFacade composes the announcement usecases into high-level bot replies.
// Methods return the text (and keyboards) the Telegram adapter forwards to
// the chat; an empty reply means "say nothing", which is how unauthorized
// use inside shared chats stays invisible.
type BotFacade struct {
	announce usecase.AnnounceUseCase
	admins   *model.AdminRegistry
	registry *model.DestinationRegistry
	log      *zerolog.Logger
}

func NewBotFacade(
	announce usecase.AnnounceUseCase,
	admins *model.AdminRegistry,
	registry *model.DestinationRegistry,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		announce: announce,
		admins:   admins,
		registry: registry,
		log:      logger,
	}
}

const usageText = `Send the announcement in this format:

Example:
This is a test announcement 🎉
%%
Button 1 - https://google.com && Button 2 - https://t.me/example

Rules:
• The announcement text comes first
• Separate the text from the buttons with %%
• Each button is: label - url
• Separate buttons on the same line with &&
• Buttons on different lines render as separate rows`

// HandleStart answers /start with a short help plus the current chat's ID,
// which is how operators discover chat IDs for the destination registry.
// Non-admins in a shared chat get nothing.
func (b *BotFacade) HandleStart(ctx context.Context, userID, chatID int64, chatType, chatTitle string) (string, error) {
	if isGroupChat(chatType) && !b.admins.IsAuthorized(userID) {
		return "", nil
	}
	if chatTitle == "" {
		chatTitle = "private chat"
	}
	return fmt.Sprintf(
		"Welcome to the announcement bot!\nAdmins can use /announce to send an announcement.\n\nCurrent chat ID: %d\nType: %s\nName: %s",
		chatID, chatType, chatTitle,
	), nil
}

// HandleAnnounceStart opens the flow. Unauthorized users are ignored in
// group chats and denied explicitly in private ones.
func (b *BotFacade) HandleAnnounceStart(ctx context.Context, userID int64, groupChat bool) (string, error) {
	err := b.announce.Start(ctx, userID)
	if errors.Is(err, domain.ErrUnauthorized) {
		if groupChat {
			return "", nil
		}
		return "Sorry, only admins can send announcements.", nil
	}
	if err != nil {
		return "Something went wrong, please try again.", nil
	}
	return usageText, nil
}

// ContentReply is what the adapter sends back after a content submission:
// either ErrorText (retry stays open), or a preview message carrying the
// announcement's own keyboard followed by the destination prompt.
type ContentReply struct {
	ErrorText      string
	Preview        string
	PreviewButtons [][]adapter.InlineButton
	Prompt         string
	PromptButtons  [][]adapter.InlineButton
}

// HandleContent feeds free text into the state machine. A nil reply means
// the message was not part of an announcement flow.
func (b *BotFacade) HandleContent(ctx context.Context, userID int64, text string) (*ContentReply, error) {
	ann, err := b.announce.SubmitContent(ctx, userID, text)
	if errors.Is(err, domain.ErrNoActiveSession) {
		return nil, nil
	}
	var perr *model.ParseError
	if errors.As(err, &perr) {
		return &ContentReply{ErrorText: parseErrorText(perr)}, nil
	}
	if err != nil {
		return &ContentReply{ErrorText: "Something went wrong, please try again."}, nil
	}

	return &ContentReply{
		Preview:        "📢 Here is your announcement preview:\n\n" + ann.Body,
		PreviewButtons: announcementKeyboard(ann),
		Prompt:         "Select where to send the announcement:",
		PromptButtons:  b.destinationKeyboard(),
	}, nil
}

// HandleSelection resolves a destination pick and returns the text the
// selection prompt is edited to. Empty text means the callback was stale and
// should be ignored.
func (b *BotFacade) HandleSelection(ctx context.Context, userID int64, token string) (string, error) {
	res, err := b.announce.SelectDestination(ctx, userID, token)
	switch {
	case errors.Is(err, domain.ErrNoActiveSession):
		return "", nil
	case errors.Is(err, domain.ErrInvalidChannel):
		return "Error: invalid channel selection", nil
	case errors.Is(err, domain.ErrInvalidGroup):
		return "Error: invalid group selection", nil
	case errors.Is(err, domain.ErrInvalidSelection):
		return "Error: invalid selection", nil
	}

	var derr *usecase.DeliveryError
	if errors.As(err, &derr) {
		return b.deliveryErrorText(token, derr), nil
	}
	if err != nil {
		return "Something went wrong, please try again.", nil
	}

	if res.Cancelled {
		return "❌ Announcement cancelled", nil
	}
	return fmt.Sprintf("✅ Announcement sent to %s %s!", kindLabel(res.Destination.Kind), res.Destination.Name), nil
}

// HandleCancel aborts the flow via the /cancel command. Empty reply when
// there was nothing to cancel.
func (b *BotFacade) HandleCancel(ctx context.Context, userID int64) (string, error) {
	had, err := b.announce.Cancel(ctx, userID)
	if err != nil {
		return "Something went wrong, please try again.", nil
	}
	if !had {
		return "", nil
	}
	return "Announcement sending cancelled.", nil
}

func parseErrorText(e *model.ParseError) string {
	switch e.Kind {
	case model.ParseMissingDelimiter:
		return "Error: wrong message format, use %% to separate the text from the buttons"
	case model.ParseEmptySection:
		return "Error: neither the announcement text nor the button section may be empty"
	case model.ParseBadButtonFormat:
		return fmt.Sprintf("Error: bad button format %q\nExpected: label - url", e.Token)
	case model.ParseEmptyLabelOrURL:
		return "Error: button label and URL may not be empty"
	case model.ParseInvalidURL:
		return fmt.Sprintf("Error: invalid URL %q\nURLs must start with http://, https:// or t.me/", e.Token)
	case model.ParseNoButtons:
		return "Error: no valid buttons"
	default:
		return "Error: could not read the announcement, please check the format"
	}
}

func (b *BotFacade) deliveryErrorText(token string, derr *usecase.DeliveryError) string {
	// Re-resolve purely to name the destination kind in the message.
	label := "destination"
	if dst, err := b.registry.Resolve(token); err == nil {
		label = kindLabel(dst.Kind)
	}
	switch derr.Status {
	case usecase.DeliveryChatNotFound:
		return fmt.Sprintf("Error: %s not found, check the configured chat ID", label)
	case usecase.DeliveryBotNotMember:
		return fmt.Sprintf("Error: the bot is not a member of the %s", label)
	case usecase.DeliveryMissingAdminRights:
		return fmt.Sprintf("Error: the bot needs administrator rights in the %s", label)
	default:
		return "Delivery failed: " + derr.Message
	}
}

// announcementKeyboard converts parsed button rows into the inline keyboard
// attached to both the preview and the delivered announcement.
func announcementKeyboard(ann *model.Announcement) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(ann.Buttons))
	for _, row := range ann.Buttons {
		r := make([]adapter.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, adapter.InlineButton{Text: btn.Label, URL: btn.URL})
		}
		rows = append(rows, r)
	}
	return rows
}

// destinationKeyboard lists every configured group, then every channel, one
// per row, with a cancel row at the bottom.
func (b *BotFacade) destinationKeyboard() [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, b.registry.Len()+1)
	for _, g := range b.registry.Groups() {
		rows = append(rows, []adapter.InlineButton{{Text: "👥 " + g.Name, Data: g.SelectionToken()}})
	}
	for _, c := range b.registry.Channels() {
		rows = append(rows, []adapter.InlineButton{{Text: "📢 " + c.Name, Data: c.SelectionToken()}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "❌ Cancel", Data: model.CancelToken}})
	return rows
}

func kindLabel(k model.DestinationKind) string {
	if k == model.DestinationChannel {
		return "channel"
	}
	return "group"
}

func isGroupChat(chatType string) bool {
	return chatType == "group" || chatType == "supergroup"
}
