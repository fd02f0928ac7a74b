package controller

import (
	"github.com/kitbuilder587/cine-bot/internal/domain"
)

type Phase int

const (
	Idle Phase = iota
	Searching
	LoadingMore
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case LoadingMore:
		return "loading_more"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State - снимок сессии поиска. Снимки не разделяют память с контроллером.
type State struct {
	// Query - текущий ввод пользователя как есть
	Query              string
	LastSubmittedQuery string
	// PendingQuery - нормализованный текст последнего submit, в том числе неудачного
	PendingQuery       string
	Results            []domain.ResultRecord
	Phase              Phase
	ErrorKind          domain.ErrorKind
	ErrorMessage       string

	// SearchID меняется на каждый submit
	SearchID string
	// LastBatch - сколько фильмов добавил последний примененный ответ
	LastBatch int
	// Version растет на каждом переходе
	Version uint64
}

func (s State) Loading() bool {
	return s.Phase == Searching || s.Phase == LoadingMore
}

func (s State) HasError() bool {
	return s.ErrorMessage != ""
}

// CanLoadMore - активна ли кнопка "Generate more".
func (s State) CanLoadMore() bool {
	return s.Phase == Ready && len(s.Results) > 0
}

// NewResults - хвост Results, добавленный последним ответом.
func (s State) NewResults() []domain.ResultRecord {
	if s.LastBatch <= 0 || s.LastBatch > len(s.Results) {
		return nil
	}
	return s.Results[len(s.Results)-s.LastBatch:]
}

func (s State) clone() State {
	out := s
	out.Results = make([]domain.ResultRecord, len(s.Results))
	copy(out.Results, s.Results)
	return out
}

// MessageFor возвращает текст для вида ошибки.
// TransportFailure зависит от операции, поэтому для нее нужен more.
func MessageFor(kind domain.ErrorKind, more bool) string {
	switch kind {
	case domain.ErrorInvalidQuery:
		return domain.MsgInvalidQuery
	case domain.ErrorEmptyResult:
		return domain.MsgEmptyResult
	case domain.ErrorNoMoreResults:
		return domain.MsgNoMoreResults
	case domain.ErrorTransportFailure:
		if more {
			return domain.MsgLoadMoreFailed
		}
		return domain.MsgFetchFailed
	default:
		return ""
	}
}
