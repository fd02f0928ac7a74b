package domain

import "errors"

var (
	ErrEmptyQuery   = errors.New("empty query")
	ErrQueryTooLong = errors.New("query too long")
)

var (
	ErrInvalidHistoryKind = errors.New("invalid history kind")
	ErrInvalidChatID      = errors.New("invalid chat id")
)

// ErrorKind - категория ошибки, которую видит пользователь.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorInvalidQuery
	ErrorEmptyResult
	ErrorTransportFailure
	ErrorNoMoreResults
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorInvalidQuery:
		return "invalid_query"
	case ErrorEmptyResult:
		return "empty_result"
	case ErrorTransportFailure:
		return "transport_failure"
	case ErrorNoMoreResults:
		return "no_more_results"
	default:
		return "unknown"
	}
}

// ParseErrorKind - обратное к String, для чтения из базы.
func ParseErrorKind(s string) ErrorKind {
	switch s {
	case "invalid_query":
		return ErrorInvalidQuery
	case "empty_result":
		return ErrorEmptyResult
	case "transport_failure":
		return ErrorTransportFailure
	case "no_more_results":
		return ErrorNoMoreResults
	default:
		return ErrorNone
	}
}

const (
	MsgInvalidQuery   = "Requests must be for movies"
	MsgEmptyResult    = "No movies found"
	MsgNoMoreResults  = "No more results available"
	MsgFetchFailed    = "Failed to fetch results. Please try again."
	MsgLoadMoreFailed = "Failed to load more results. Please try again."
)
