package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"telegram-announce-bot/internal/domain"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/domain/ports/repository"
	"telegram-announce-bot/internal/infra/logging"
	"telegram-announce-bot/internal/infra/metrics"
)

// SelectionResult is the outcome of a destination pick that did not error.
type SelectionResult struct {
	Cancelled   bool
	Destination *model.Destination
	MessageID   int
}

// AnnounceUseCase is the announcement-composition state machine. Sessions
// move awaiting_content -> awaiting_destination -> gone; every selection
// outcome and every cancel is terminal and destroys the session. Operations
// for one user are mutually exclusive; different users never block each other.
type AnnounceUseCase interface {
	// Start opens a session for an authorized admin. Returns
	// domain.ErrUnauthorized for everyone else; the caller decides whether
	// that is answered or silently ignored (it depends on the chat context).
	Start(ctx context.Context, userID int64) error
	// SubmitContent parses submitted text into the pending announcement.
	// A *model.ParseError leaves the session in awaiting_content for retry.
	SubmitContent(ctx context.Context, userID int64, text string) (*model.Announcement, error)
	// SelectDestination resolves a selection token and dispatches the pending
	// announcement. All outcomes end the session.
	SelectDestination(ctx context.Context, userID int64, token string) (*SelectionResult, error)
	// Cancel aborts any in-progress flow. Reports whether one existed.
	Cancel(ctx context.Context, userID int64) (bool, error)
}

type announceUC struct {
	admins   *model.AdminRegistry
	sessions repository.SessionRepository
	registry *model.DestinationRegistry
	delivery DeliveryUseCase
	log      *zerolog.Logger

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewAnnounceUseCase(
	admins *model.AdminRegistry,
	sessions repository.SessionRepository,
	registry *model.DestinationRegistry,
	delivery DeliveryUseCase,
	logger *zerolog.Logger,
) AnnounceUseCase {
	return &announceUC{
		admins:    admins,
		sessions:  sessions,
		registry:  registry,
		delivery:  delivery,
		log:       logger,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// userLock serializes the flow per user. A double-tapped inline button or two
// rapid updates from the same admin must not interleave between the session
// read and the terminal clear, or the announcement goes out twice. Locks are
// never evicted: the key space is the static admin allow-list.
func (uc *announceUC) userLock(userID int64) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		uc.userLocks[userID] = l
	}
	return l
}

func (uc *announceUC) Start(ctx context.Context, userID int64) (err error) {
	lock := uc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	defer uc.guard(ctx, userID, &err)

	if !uc.admins.IsAuthorized(userID) {
		return domain.ErrUnauthorized
	}
	if err := uc.sessions.Set(ctx, userID, model.NewSession()); err != nil {
		return err
	}
	logging.With(ctx, uc.log).Info().Msg("announcement flow started")
	return nil
}

func (uc *announceUC) SubmitContent(ctx context.Context, userID int64, text string) (ann *model.Announcement, err error) {
	lock := uc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	defer uc.guard(ctx, userID, &err)

	log := logging.With(ctx, uc.log)
	sess, err := uc.activeSession(ctx, userID, model.StepAwaitingContent)
	if err != nil {
		return nil, err
	}

	ann, err = model.ParseAnnouncement(text)
	if err != nil {
		var perr *model.ParseError
		if errors.As(err, &perr) {
			metrics.IncParseFailure(string(perr.Kind))
			log.Debug().Str("kind", string(perr.Kind)).Msg("announcement rejected")
		}
		// Session stays in awaiting_content; the user retries.
		return nil, err
	}

	// Resubmission overwrites any earlier pending announcement.
	sess.Announcement = ann
	sess.Step = model.StepAwaitingDestination
	if err := uc.sessions.Set(ctx, userID, sess); err != nil {
		return nil, err
	}
	metrics.IncAnnouncementComposed()
	log.Info().Int("buttons", ann.ButtonCount()).Msg("announcement composed")
	return ann, nil
}

func (uc *announceUC) SelectDestination(ctx context.Context, userID int64, token string) (res *SelectionResult, err error) {
	lock := uc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	defer uc.guard(ctx, userID, &err)

	log := logging.With(ctx, uc.log)
	sess, err := uc.activeSession(ctx, userID, model.StepAwaitingDestination)
	if err != nil {
		return nil, err
	}

	// Every path below is terminal for the session.
	defer func() {
		if cerr := uc.sessions.Clear(ctx, userID); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to clear session")
		}
	}()

	if token == model.CancelToken {
		metrics.IncFlowCancelled()
		log.Info().Msg("announcement flow cancelled at selection")
		return &SelectionResult{Cancelled: true}, nil
	}

	dst, err := uc.registry.Resolve(token)
	if err != nil {
		log.Info().Str("token", token).Err(err).Msg("destination rejected")
		return nil, err
	}

	if sess.Announcement == nil {
		return nil, domain.ErrNoPendingAnnouncement
	}

	msgID, err := uc.delivery.Deliver(ctx, userID, dst, sess.Announcement)
	if err != nil {
		// Terminal: the user restarts the flow rather than retrying delivery.
		return nil, err
	}
	return &SelectionResult{Destination: dst, MessageID: msgID}, nil
}

func (uc *announceUC) Cancel(ctx context.Context, userID int64) (had bool, err error) {
	lock := uc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	defer uc.guard(ctx, userID, &err)

	_, err = uc.sessions.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := uc.sessions.Clear(ctx, userID); err != nil {
		return false, err
	}
	metrics.IncFlowCancelled()
	logging.With(ctx, uc.log).Info().Msg("announcement flow cancelled")
	return true, nil
}

// activeSession fetches the user's session and checks it is at the wanted
// step. Absence and a step mismatch both read as "no active session": text
// arriving outside awaiting_content is simply not part of the flow.
func (uc *announceUC) activeSession(ctx context.Context, userID int64, step model.SessionStep) (*model.Session, error) {
	sess, err := uc.sessions.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}
	if sess.Step != step {
		return nil, domain.ErrNoActiveSession
	}
	return sess, nil
}

// guard keeps a panic inside one user's flow from taking the process down or
// leaving the session stuck: the session is destroyed and the caller gets a
// generic error to report.
func (uc *announceUC) guard(ctx context.Context, userID int64, err *error) {
	if r := recover(); r != nil {
		log := logging.With(ctx, uc.log)
		log.Error().Interface("panic", r).Int64("tg_id", userID).Msg("announcement flow panicked")
		if cerr := uc.sessions.Clear(ctx, userID); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to clear session after panic")
		}
		*err = domain.ErrInternal
	}
}
