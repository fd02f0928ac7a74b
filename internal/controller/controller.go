package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/cine-bot/internal/domain"
	"github.com/kitbuilder587/cine-bot/internal/metrics"
	"github.com/kitbuilder587/cine-bot/internal/search"
)

// Outcome - что стало с вызовом SubmitQuery/LoadMore.
type Outcome int

const (
	// Applied - ответ бэкенда применен к состоянию
	Applied Outcome = iota
	// Ignored - пустой ввод или не выполнено предусловие
	Ignored
	// Busy - такая же операция уже в полете
	Busy
	// Superseded - ответ пришел, но его перебил более новый запрос
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	case Busy:
		return "busy"
	case Superseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Controller - автомат одной сессии поиска.
// Все методы безопасны для конкурентного вызова; ошибки наружу не отдаются,
// вызывающий смотрит на State.
type Controller struct {
	client  search.SearchClient
	logger  *zap.Logger
	metrics *metrics.Metrics
	newID   func() string

	mu      sync.Mutex
	state   State
	seq     uint64
	pending uint64

	lmu       sync.Mutex
	listeners map[int]func(State)
	nextSub   int
}

func New(client search.SearchClient, logger *zap.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		client:    client,
		logger:    logger,
		metrics:   m,
		newID:     uuid.NewString,
		state:     State{Phase: Idle, Results: []domain.ResultRecord{}},
		listeners: make(map[int]func(State)),
	}
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe вызывает fn после каждого перехода. Снимки могут прийти
// не по порядку при конкурентных вызовах, сверяйтесь с State.Version.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.lmu.Lock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

func (c *Controller) SubmitQuery(ctx context.Context, raw string) (State, Outcome) {
	query := domain.NormalizeQuery(raw)
	if query == "" {
		return c.Snapshot(), Ignored
	}

	c.mu.Lock()
	if c.state.Phase == Searching {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, Busy
	}
	tag := c.dispatch()
	searchID := c.newID()
	snap := c.transition(func(s State) State { return submitted(s, raw, query, searchID) })
	c.mu.Unlock()
	c.notify(snap)

	c.logger.Debug("search submitted",
		zap.String("search_id", searchID),
		zap.String("query", query),
	)

	resp, err := c.client.FetchInitial(ctx, query)
	if err != nil {
		c.logger.Warn("initial search failed",
			zap.String("search_id", searchID),
			zap.Error(err),
		)
	}

	c.mu.Lock()
	if c.pending != tag {
		snap := c.state.clone()
		c.mu.Unlock()
		c.discard(searchID, "initial")
		return snap, Superseded
	}
	c.pending = 0
	snap = c.transition(func(s State) State { return initialResolved(s, query, resp, err) })
	c.mu.Unlock()
	c.notify(snap)

	return snap, Applied
}

func (c *Controller) LoadMore(ctx context.Context) (State, Outcome) {
	c.mu.Lock()
	if c.state.Phase == LoadingMore {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, Busy
	}
	if c.state.Phase != Ready || c.state.LastSubmittedQuery == "" {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, Ignored
	}
	tag := c.dispatch()
	query := c.state.LastSubmittedQuery
	titles := domain.Titles(c.state.Results)
	searchID := c.state.SearchID
	snap := c.transition(moreRequested)
	c.mu.Unlock()
	c.notify(snap)

	c.logger.Debug("load more requested",
		zap.String("search_id", searchID),
		zap.Int("previous", len(titles)),
	)

	resp, err := c.client.FetchMore(ctx, query, titles)
	if err != nil {
		c.logger.Warn("load more failed",
			zap.String("search_id", searchID),
			zap.Error(err),
		)
	}

	c.mu.Lock()
	if c.pending != tag {
		snap := c.state.clone()
		c.mu.Unlock()
		c.discard(searchID, "more")
		return snap, Superseded
	}
	c.pending = 0
	snap = c.transition(func(s State) State { return moreResolved(s, resp, err) })
	c.mu.Unlock()
	c.notify(snap)

	return snap, Applied
}

// ClearQuery сбрасывает только ввод; результаты и фаза остаются.
func (c *Controller) ClearQuery() State {
	c.mu.Lock()
	snap := c.transition(queryCleared)
	c.mu.Unlock()
	c.notify(snap)
	return snap
}

func (c *Controller) SetQuery(raw string) State {
	c.mu.Lock()
	snap := c.transition(func(s State) State { return queryEdited(s, raw) })
	c.mu.Unlock()
	c.notify(snap)
	return snap
}

// dispatch выдает тег новому запросу. Вызывать под mu.
func (c *Controller) dispatch() uint64 {
	c.seq++
	c.pending = c.seq
	return c.seq
}

// transition применяет переход и возвращает копию. Вызывать под mu.
func (c *Controller) transition(fn func(State) State) State {
	next := fn(c.state)
	next.Version = c.state.Version + 1
	c.state = next
	return c.state.clone()
}

func (c *Controller) discard(searchID, op string) {
	c.logger.Debug("discarding stale response",
		zap.String("search_id", searchID),
		zap.String("op", op),
	)
	if c.metrics != nil {
		c.metrics.RecordStaleResponse()
	}
}

func (c *Controller) notify(s State) {
	c.lmu.Lock()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(s.clone())
	}
}
