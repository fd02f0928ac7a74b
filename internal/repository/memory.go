package repository

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/cine-bot/internal/domain"
)

// MemoryHistoryRepository - история в памяти, когда DATABASE_URL не задан.
// Держит не больше maxPerChat записей на чат.
type MemoryHistoryRepository struct {
	mu         sync.RWMutex
	entries    map[int64][]domain.HistoryEntry
	nextID     int64
	maxPerChat int
}

func NewMemoryHistoryRepository(maxPerChat int) *MemoryHistoryRepository {
	if maxPerChat <= 0 {
		maxPerChat = 100
	}
	return &MemoryHistoryRepository{
		entries:    make(map[int64][]domain.HistoryEntry),
		nextID:     1,
		maxPerChat: maxPerChat,
	}
}

func (m *MemoryHistoryRepository) Record(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.nextID
	m.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	list := append(m.entries[entry.ChatID], *entry)
	if len(list) > m.maxPerChat {
		list = append([]domain.HistoryEntry(nil), list[len(list)-m.maxPerChat:]...)
	}
	m.entries[entry.ChatID] = list
	return nil
}

func (m *MemoryHistoryRepository) ListRecent(ctx context.Context, chatID int64, limit int) ([]domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.entries[chatID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}

	out := make([]domain.HistoryEntry, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (m *MemoryHistoryRepository) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.entries[chatID]))
	delete(m.entries, chatID)
	return n, nil
}
