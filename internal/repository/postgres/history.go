package postgres

import (
	"context"
	"fmt"

	"github.com/kitbuilder587/cine-bot/internal/domain"
)

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Record(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
        INSERT INTO search_history (chat_id, search_id, query, kind, outcome, result_count)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `

	err := r.db.Pool.QueryRow(ctx, query,
		entry.ChatID,
		entry.SearchID,
		entry.Query,
		string(entry.Kind),
		entry.Outcome.String(),
		entry.ResultCount,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	return nil
}

func (r *HistoryRepo) ListRecent(ctx context.Context, chatID int64, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, chat_id, search_id, query, kind, outcome, result_count, created_at
        FROM search_history
        WHERE chat_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `

	rows, err := r.db.Pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var kind, outcome string
		err := rows.Scan(
			&e.ID,
			&e.ChatID,
			&e.SearchID,
			&e.Query,
			&kind,
			&outcome,
			&e.ResultCount,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Kind = domain.HistoryKind(kind)
		e.Outcome = domain.ParseErrorKind(outcome)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepo) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM search_history WHERE chat_id = $1`, chatID)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	return result.RowsAffected(), nil
}
