package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/cine-bot/internal/domain"
)

type Call struct {
	Op             string
	Query          string
	PreviousTitles []string
}

// Reply - заготовленный ответ на один вызов.
type Reply struct {
	Response *domain.SearchResponse
	Err      error
	// Gate держит ответ, пока тест не закроет канал
	Gate chan struct{}
}

// Client отдает Replies по очереди, потом повторяет Fallback.
type Client struct {
	Replies  []Reply
	Fallback Reply
	Delay    time.Duration

	CallCount int
	LastCall  Call
	AllCalls  []Call

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithResults(results ...domain.ResultRecord) *Client {
	c.Fallback = Reply{Response: Response(results...)}
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Fallback = Reply{Err: err}
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

// Then добавляет ответ в очередь.
func (c *Client) Then(r Reply) *Client {
	c.mu.Lock()
	c.Replies = append(c.Replies, r)
	c.mu.Unlock()
	return c
}

func (c *Client) FetchInitial(ctx context.Context, query string) (*domain.SearchResponse, error) {
	return c.call(ctx, Call{Op: "initial", Query: query})
}

func (c *Client) FetchMore(ctx context.Context, query string, previousTitles []string) (*domain.SearchResponse, error) {
	titles := make([]string, len(previousTitles))
	copy(titles, previousTitles)
	return c.call(ctx, Call{Op: "more", Query: query, PreviousTitles: titles})
}

func (c *Client) call(ctx context.Context, call Call) (*domain.SearchResponse, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastCall = call
	c.AllCalls = append(c.AllCalls, call)
	reply := c.Fallback
	if len(c.Replies) > 0 {
		reply = c.Replies[0]
		c.Replies = c.Replies[1:]
	}
	delay := c.Delay
	c.mu.Unlock()

	if reply.Gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-reply.Gate:
		}
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if reply.Err != nil {
		return nil, reply.Err
	}
	if reply.Response == nil {
		return Response(), nil
	}
	return reply.Response, nil
}

func (c *Client) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.AllCalls))
	copy(out, c.AllCalls)
	return out
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastCall = Call{}
	c.AllCalls = nil
	c.Replies = nil
}

// Response собирает успешный ответ из списка фильмов.
func Response(results ...domain.ResultRecord) *domain.SearchResponse {
	if results == nil {
		results = []domain.ResultRecord{}
	}
	return &domain.SearchResponse{
		Results:         results,
		QueryUnderstood: len(results) > 0,
		TotalResults:    len(results),
	}
}

func BadQuery() *domain.SearchResponse {
	return &domain.SearchResponse{Results: []domain.ResultRecord{}, BadQuery: true}
}

// Movies - фильмы с названиями titles и пустым описанием.
func Movies(titles ...string) []domain.ResultRecord {
	out := make([]domain.ResultRecord, len(titles))
	for i, t := range titles {
		out[i] = domain.ResultRecord{Title: t, Description: t + " description"}
	}
	return out
}
