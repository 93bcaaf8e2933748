//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"telegram-announce-bot/internal/domain"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/adapter"
	"telegram-announce-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// ---- Mock TelegramBotAdapter ----

type sentAnnouncement struct {
	ChatID int64
	Body   string
	Rows   [][]adapter.InlineButton
}

type MockTelegramBot struct {
	mu            sync.Mutex
	Sent          []sentAnnouncement
	Messages      []string
	Edits         []string
	NextMessageID int

	SendAnnouncementFunc func(ctx context.Context, chatID int64, body string, rows [][]adapter.InlineButton) (int, error)
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, text)
	return nil
}

func (m *MockTelegramBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, text)
	return nil
}

func (m *MockTelegramBot) SendAnnouncement(ctx context.Context, chatID int64, body string, rows [][]adapter.InlineButton) (int, error) {
	if m.SendAnnouncementFunc != nil {
		return m.SendAnnouncementFunc(ctx, chatID, body, rows)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentAnnouncement{ChatID: chatID, Body: body, Rows: rows})
	if m.NextMessageID == 0 {
		m.NextMessageID = 1
	}
	return m.NextMessageID, nil
}

func (m *MockTelegramBot) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, text)
	return nil
}

// ---- Mock SessionRepository ----

type MockSessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session

	SetFunc   func(ctx context.Context, userID int64, s *model.Session) error
	GetFunc   func(ctx context.Context, userID int64) (*model.Session, error)
	ClearFunc func(ctx context.Context, userID int64) error
}

var _ repository.SessionRepository = (*MockSessionRepo)(nil)

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{sessions: make(map[int64]*model.Session)}
}

func (m *MockSessionRepo) Set(ctx context.Context, userID int64, s *model.Session) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, userID, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[userID] = &cp
	return nil
}

func (m *MockSessionRepo) Get(ctx context.Context, userID int64) (*model.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepo) Clear(ctx context.Context, userID int64) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Has reports whether a session currently exists for the user.
func (m *MockSessionRepo) Has(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	return ok
}

// ---- Mock DeliveryLogRepository ----

type MockDeliveryLog struct {
	mu      sync.Mutex
	Records []repository.DeliveryRecord

	SaveFunc func(ctx context.Context, rec *repository.DeliveryRecord) error
}

var _ repository.DeliveryLogRepository = (*MockDeliveryLog)(nil)

func (m *MockDeliveryLog) Save(ctx context.Context, rec *repository.DeliveryRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MockDeliveryLog) Last() *repository.DeliveryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Records) == 0 {
		return nil
	}
	rec := m.Records[len(m.Records)-1]
	return &rec
}

// ---- Shared fixtures ----

func testAdmins() *model.AdminRegistry {
	return model.NewAdminRegistry([]int64{100}, []int64{200})
}

func testRegistry() *model.DestinationRegistry {
	return model.NewDestinationRegistry(
		[]model.Destination{
			{Key: "group1", ChatID: -1001, Name: "Main Group"},
			{Key: "group2", ChatID: -1002, Name: "Side Group"},
		},
		[]model.Destination{
			{Key: "channel1", ChatID: -2001, Name: "News Channel"},
		},
	)
}

func testAnnouncementText() string {
	return "hello%%A - http://x.com"
}
