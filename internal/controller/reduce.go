package controller

import (
	"github.com/kitbuilder587/cine-bot/internal/domain"
)

// Переходы автомата. Чистые функции: на вход старое состояние и событие,
// на выход новое. Блокировки и теги запросов живут в Controller.

func submitted(s State, raw, query, searchID string) State {
	s.Query = raw
	s.PendingQuery = query
	s.Phase = Searching
	s.Results = []domain.ResultRecord{}
	s.ErrorKind = domain.ErrorNone
	s.ErrorMessage = ""
	s.SearchID = searchID
	s.LastBatch = 0
	return s
}

func initialResolved(s State, query string, resp *domain.SearchResponse, err error) State {
	s.LastBatch = 0

	switch {
	case err != nil || resp == nil:
		// results не трогаем: после submit они и так пустые
		return failed(s, domain.ErrorTransportFailure, false)
	case resp.BadQuery:
		s.Results = []domain.ResultRecord{}
		return failed(s, domain.ErrorInvalidQuery, false)
	case len(resp.Results) == 0:
		s.Results = []domain.ResultRecord{}
		return failed(s, domain.ErrorEmptyResult, false)
	}

	s.Results = append([]domain.ResultRecord(nil), resp.Results...)
	s.LastSubmittedQuery = query
	s.LastBatch = len(resp.Results)
	s.Phase = Ready
	s.ErrorKind = domain.ErrorNone
	s.ErrorMessage = ""
	return s
}

func moreRequested(s State) State {
	s.Phase = LoadingMore
	s.ErrorKind = domain.ErrorNone
	s.ErrorMessage = ""
	s.LastBatch = 0
	return s
}

func moreResolved(s State, resp *domain.SearchResponse, err error) State {
	s.LastBatch = 0

	switch {
	case err != nil || resp == nil:
		return failed(s, domain.ErrorTransportFailure, true)
	case resp.BadQuery:
		return failed(s, domain.ErrorInvalidQuery, true)
	case len(resp.Results) == 0:
		s.Phase = Ready
		s.ErrorKind = domain.ErrorNoMoreResults
		s.ErrorMessage = MessageFor(domain.ErrorNoMoreResults, true)
		return s
	}

	merged := make([]domain.ResultRecord, 0, len(s.Results)+len(resp.Results))
	merged = append(merged, s.Results...)
	merged = append(merged, resp.Results...)
	s.Results = merged
	s.LastBatch = len(resp.Results)
	s.Phase = Ready
	s.ErrorKind = domain.ErrorNone
	s.ErrorMessage = ""
	return s
}

func queryCleared(s State) State {
	s.Query = ""
	return s
}

func queryEdited(s State, raw string) State {
	s.Query = raw
	return s
}

func failed(s State, kind domain.ErrorKind, more bool) State {
	s.Phase = Failed
	s.ErrorKind = kind
	s.ErrorMessage = MessageFor(kind, more)
	return s
}
