package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-announce-bot/internal/application"
	"telegram-announce-bot/internal/config"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/adapter"
	"telegram-announce-bot/internal/infra/logging"
	"telegram-announce-bot/internal/infra/metrics"
	red "telegram-announce-bot/internal/infra/redis"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to
// BotFacade. It is also the outbound send capability the dispatcher uses.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// SetFacade wires the inbound handler. The adapter is constructed before the
// facade because the delivery dispatcher sends through this same adapter.
func (r *RealTelegramBotAdapter) SetFacade(facade *application.BotFacade) {
	r.facade = facade
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.facade == nil {
		return errors.New("bot facade is not set")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	// Drop the pre-start backlog so stale commands are not replayed.
	updates.Clear()

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	// One channel per worker, sharded by user: all of a user's updates run on
	// the same worker in arrival order, so the flow never sees two of their
	// updates concurrently.
	var wg sync.WaitGroup
	shards := make([]chan tgbotapi.Update, r.updateWorkers)
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, 100)
	}

	for i, ch := range shards {
		wg.Add(1)
		go func(id int, ch chan tgbotapi.Update) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-ch:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i, ch)
	}

	for {
		select {
		case <-ctx.Done():
			for _, ch := range shards {
				close(ch)
			}
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			shards[shardIndex(updateUserID(up), len(shards))] <- up
		}
	}
}

// updateUserID extracts the acting user from an update. Updates without one
// all land on shard zero.
func updateUserID(up tgbotapi.Update) int64 {
	if up.CallbackQuery != nil && up.CallbackQuery.From != nil {
		return up.CallbackQuery.From.ID
	}
	if up.Message != nil && up.Message.From != nil {
		return up.Message.From.ID
	}
	return 0
}

func shardIndex(userID int64, shards int) int {
	if shards <= 1 {
		return 0
	}
	idx := int(userID % int64(shards))
	if idx < 0 {
		idx += shards
	}
	return idx
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	// ----- Inline keyboard callbacks (destination selection) -----
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	// ----- Regular messages -----
	if update.Message == nil {
		return nil
	}
	from := update.Message.From
	if from == nil {
		return nil
	}
	chat := update.Message.Chat
	userID := from.ID
	ctx = logging.WithTgID(logging.WithTraceID(ctx, uuid.NewString()), userID)

	command := "message"
	if update.Message.IsCommand() {
		command = "/" + update.Message.Command()
	}
	metrics.IncTelegramCommand(command)

	if !r.allow(ctx, userID, command) {
		return r.SendMessage(ctx, chat.ID, "Rate limit exceeded. Please try again later.")
	}

	switch command {
	case "/start":
		text, err := r.facade.HandleStart(ctx, userID, chat.ID, chat.Type, chat.Title)
		if err != nil || text == "" {
			return err
		}
		return r.SendMessage(ctx, chat.ID, text)

	case "/announce":
		text, err := r.facade.HandleAnnounceStart(ctx, userID, chat.IsGroup() || chat.IsSuperGroup())
		if err != nil || text == "" {
			return err
		}
		return r.SendMessage(ctx, chat.ID, text)

	case "/cancel":
		text, err := r.facade.HandleCancel(ctx, userID)
		if err != nil || text == "" {
			return err
		}
		return r.SendMessage(ctx, chat.ID, text)

	case "message":
		if update.Message.Text == "" {
			return nil
		}
		reply, err := r.facade.HandleContent(ctx, userID, update.Message.Text)
		if err != nil {
			return err
		}
		if reply == nil {
			// Not part of an announcement flow.
			return nil
		}
		if reply.ErrorText != "" {
			return r.SendMessage(ctx, chat.ID, reply.ErrorText)
		}
		// Preview carries the announcement's own keyboard, then the
		// destination prompt follows as a separate message.
		if _, err := r.SendAnnouncement(ctx, chat.ID, reply.Preview, reply.PreviewButtons); err != nil {
			return err
		}
		return r.SendButtons(ctx, chat.ID, reply.Prompt, reply.PromptButtons)

	default:
		// Unknown commands are not ours to answer.
		return nil
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop the telegram spinner when we return.
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	data := strings.TrimSpace(query.Data)
	if !isSelectionToken(data) {
		return nil
	}

	userID := query.From.ID
	ctx = logging.WithTgID(logging.WithTraceID(ctx, uuid.NewString()), userID)
	if !r.allow(ctx, userID, "cb:"+data) {
		return nil
	}

	text, err := r.facade.HandleSelection(ctx, userID, data)
	if err != nil {
		return err
	}
	if text == "" {
		// Stale callback; nothing to edit.
		return nil
	}

	if query.Message != nil && query.Message.Chat != nil {
		return r.EditMessage(ctx, query.Message.Chat.ID, query.Message.MessageID, text)
	}
	return r.SendMessage(ctx, userID, text)
}

// allow applies the per-user per-command rate limit when Redis is wired.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, userID int64, command string) bool {
	if r.rateLimiter == nil {
		return true
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, command), 20, time.Minute)
	if err != nil {
		r.log.Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}

func isSelectionToken(data string) bool {
	return data == model.CancelToken ||
		strings.HasPrefix(data, model.GroupTokenPrefix) ||
		strings.HasPrefix(data, model.ChannelTokenPrefix)
}

// SendMessage sends a plain text message.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendButtons sends a message with an inline keyboard.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = buildKeyboard(rows)
	_, err := r.bot.Send(msg)
	return err
}

// SendAnnouncement sends Markdown body text with a link-button keyboard and
// returns the delivered message's ID.
func (r *RealTelegramBotAdapter) SendAnnouncement(ctx context.Context, chatID int64, body string, rows [][]adapter.InlineButton) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, body)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = buildKeyboard(rows)
	sent, err := r.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage rewrites a previously sent message in place.
func (r *RealTelegramBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	_, err := r.bot.Send(edit)
	return err
}

func buildKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			kr = append(kr, kb)
		}
		kbRows = append(kbRows, kr)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}
