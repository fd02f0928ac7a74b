package search

import (
	"context"
	"errors"

	"github.com/kitbuilder587/cine-bot/internal/domain"
)

var (
	ErrTransport         = errors.New("search backend unreachable")
	ErrBadStatus         = errors.New("search backend returned non-2xx status")
	ErrMalformedResponse = errors.New("search backend returned malformed response")
)

// SearchClient - транспорт до сервиса подбора фильмов.
// Ретраев и кеша нет: каждый вызов = ровно один HTTP запрос.
type SearchClient interface {
	FetchInitial(ctx context.Context, query string) (*domain.SearchResponse, error)
	FetchMore(ctx context.Context, query string, previousTitles []string) (*domain.SearchResponse, error)
}

// StatusLabel - метка для метрик.
func StatusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "transport"
	}
}
