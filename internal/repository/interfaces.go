package repository

import (
	"context"

	"github.com/kitbuilder587/cine-bot/internal/domain"
)

// HistoryRepository - журнал поисков по чатам.
type HistoryRepository interface {
	// Record сохраняет запись и проставляет ID и CreatedAt
	Record(ctx context.Context, entry *domain.HistoryEntry) error
	// ListRecent - последние записи чата, свежие первыми
	ListRecent(ctx context.Context, chatID int64, limit int) ([]domain.HistoryEntry, error)
	DeleteByChat(ctx context.Context, chatID int64) (int64, error)
}
