package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// SaveAudit inserts one audit journal row.
func (d *DB) SaveAudit(ctx context.Context, entry domain.AuditEntry) error {
	const query = `
		INSERT INTO audit_entries (id, message_id, direction, chat_id, chat_type, blocked, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := d.pool.Exec(ctx, query,
		entry.ID,
		entry.MessageID,
		string(entry.Direction),
		entry.ChatID,
		string(entry.ChatType),
		entry.Blocked,
		entry.Outcome,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// RecentAudits returns journal rows created after the given time, newest
// first, up to limit.
func (d *DB) RecentAudits(ctx context.Context, since time.Time, limit int) ([]domain.AuditEntry, error) {
	const query = `
		SELECT id, message_id, direction, chat_id, chat_type, blocked, outcome, created_at
		FROM audit_entries
		WHERE created_at > $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := d.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry

	for rows.Next() {
		var (
			entry     domain.AuditEntry
			direction string
			chatType  string
		)

		if err := rows.Scan(&entry.ID, &entry.MessageID, &direction, &entry.ChatID, &chatType, &entry.Blocked, &entry.Outcome, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entry.Direction = domain.Direction(direction)
		entry.ChatType = domain.ChatType(chatType)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}
