package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kitbuilder587/cine-bot/internal/cache/memory"
	"github.com/kitbuilder587/cine-bot/internal/controller"
	"github.com/kitbuilder587/cine-bot/internal/domain"
	"github.com/kitbuilder587/cine-bot/internal/metrics"
	"github.com/kitbuilder587/cine-bot/internal/repository"
	"github.com/kitbuilder587/cine-bot/internal/search"
)

// SessionService держит по контроллеру на чат и пишет историю.
type SessionService interface {
	Submit(ctx context.Context, chatID int64, query string) (controller.State, controller.Outcome)
	LoadMore(ctx context.Context, chatID int64) (controller.State, controller.Outcome)
	Clear(chatID int64) controller.State
	Snapshot(chatID int64) controller.State
	History(ctx context.Context, chatID int64, limit int) ([]domain.HistoryEntry, error)
	Forget(ctx context.Context, chatID int64) error
	Close()
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type SessionServiceDeps struct {
	Search  search.SearchClient
	History repository.HistoryRepository
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Config  SessionConfig
}

type sessionService struct {
	search  search.SearchClient
	history repository.HistoryRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
	ttl     time.Duration

	sessions *memory.Cache[*controller.Controller]
	group    singleflight.Group
}

func NewSessionService(deps SessionServiceDeps) SessionService {
	if deps.Config.TTL == 0 {
		deps.Config.TTL = time.Hour
	}
	if deps.Config.CleanupInterval == 0 {
		deps.Config.CleanupInterval = time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &sessionService{
		search:  deps.Search,
		history: deps.History,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		ttl:     deps.Config.TTL,
		sessions: memory.New[*controller.Controller](memory.Config{
			CleanupInterval: deps.Config.CleanupInterval,
		}),
	}

	s.sessions.OnEvict(func(key string, _ *controller.Controller) {
		s.logger.Debug("session expired", zap.String("key", key))
		s.reportActive()
	})

	return s
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("chat:%d", chatID)
}

func (s *sessionService) Submit(ctx context.Context, chatID int64, query string) (controller.State, controller.Outcome) {
	c := s.session(chatID)
	state, outcome := c.SubmitQuery(ctx, query)
	s.observe(ctx, chatID, domain.HistoryInitial, state, outcome)
	return state, outcome
}

func (s *sessionService) LoadMore(ctx context.Context, chatID int64) (controller.State, controller.Outcome) {
	c, ok := s.lookup(chatID)
	if !ok {
		return controller.State{Phase: controller.Idle}, controller.Ignored
	}
	state, outcome := c.LoadMore(ctx)
	s.observe(ctx, chatID, domain.HistoryMore, state, outcome)
	return state, outcome
}

func (s *sessionService) Clear(chatID int64) controller.State {
	c, ok := s.lookup(chatID)
	if !ok {
		return controller.State{Phase: controller.Idle}
	}
	return c.ClearQuery()
}

func (s *sessionService) Snapshot(chatID int64) controller.State {
	c, ok := s.lookup(chatID)
	if !ok {
		return controller.State{Phase: controller.Idle}
	}
	return c.Snapshot()
}

func (s *sessionService) History(ctx context.Context, chatID int64, limit int) ([]domain.HistoryEntry, error) {
	return s.history.ListRecent(ctx, chatID, limit)
}

// Forget закрывает сессию чата и стирает его историю.
func (s *sessionService) Forget(ctx context.Context, chatID int64) error {
	s.sessions.Delete(sessionKey(chatID))
	s.reportActive()

	n, err := s.history.DeleteByChat(ctx, chatID)
	if err != nil {
		return fmt.Errorf("forget chat %d: %w", chatID, err)
	}
	s.logger.Info("chat history deleted",
		zap.Int64("chat_id", chatID),
		zap.Int64("entries", n),
	)
	return nil
}

func (s *sessionService) Close() {
	s.sessions.Stop()
}

func (s *sessionService) lookup(chatID int64) (*controller.Controller, bool) {
	key := sessionKey(chatID)
	c, ok := s.sessions.Get(key)
	if ok {
		s.sessions.Touch(key, s.ttl)
	}
	return c, ok
}

// session возвращает контроллер чата, создавая его один раз даже при
// параллельных сообщениях из одного чата.
func (s *sessionService) session(chatID int64) *controller.Controller {
	if c, ok := s.lookup(chatID); ok {
		return c
	}

	key := sessionKey(chatID)
	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		if c, ok := s.sessions.Get(key); ok {
			return c, nil
		}
		c := controller.New(s.search, s.logger.With(zap.Int64("chat_id", chatID)), s.metrics)
		s.sessions.Set(key, c, s.ttl)
		if s.metrics != nil {
			s.metrics.RecordSessionCreated()
		}
		s.reportActive()
		return c, nil
	})
	return v.(*controller.Controller)
}

func (s *sessionService) observe(ctx context.Context, chatID int64, kind domain.HistoryKind, state controller.State, outcome controller.Outcome) {
	if s.metrics != nil {
		s.metrics.RecordOutcome(string(kind), outcome.String())
	}
	if outcome != controller.Applied {
		return
	}

	// LastSubmittedQuery обновляется только при успешном submit
	query := state.PendingQuery
	if kind == domain.HistoryMore {
		query = state.LastSubmittedQuery
	}

	entry := &domain.HistoryEntry{
		ChatID:      chatID,
		SearchID:    state.SearchID,
		Query:       query,
		Kind:        kind,
		Outcome:     state.ErrorKind,
		ResultCount: state.LastBatch,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record history",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func (s *sessionService) reportActive() {
	if s.metrics != nil {
		s.metrics.SetActiveSessions(float64(s.sessions.Len()))
	}
}
