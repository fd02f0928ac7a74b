package domain

import "time"

type HistoryKind string

const (
	HistoryInitial HistoryKind = "initial"
	HistoryMore    HistoryKind = "more"
)

func (k HistoryKind) IsValid() bool {
	return k == HistoryInitial || k == HistoryMore
}

// HistoryEntry - одна завершенная операция поиска в чате.
type HistoryEntry struct {
	ID          int64
	ChatID      int64
	SearchID    string
	Query       string
	Kind        HistoryKind
	Outcome     ErrorKind
	ResultCount int
	CreatedAt   time.Time
}

func (h *HistoryEntry) Validate() error {
	if h.ChatID == 0 {
		return ErrInvalidChatID
	}
	if !h.Kind.IsValid() {
		return ErrInvalidHistoryKind
	}
	return ValidateQuery(h.Query)
}

func (h *HistoryEntry) Succeeded() bool {
	return h.Outcome == ErrorNone
}
