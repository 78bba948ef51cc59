package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/feed"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
)

type feedRepository struct {
	db *database.DB
}

func NewFeedRepository(db *database.DB) feed.FeedRepository {
	return &feedRepository{db: db}
}

// Append implements feed.FeedRepository.
func (r *feedRepository) Append(ctx context.Context, rec feed.Record) error {
	q := GetQuerier(ctx, r.db)

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode feed record: %w", err)
	}

	query := `
		INSERT INTO update_feed (uid, event_id, record_id, day_key, ts, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid, event_id, record_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, rec.UID, rec.EventID, rec.ID, rec.Key, rec.Timestamp, payload); err != nil {
		return fmt.Errorf("failed to append feed record: %w", err)
	}
	return nil
}

// ListSince implements feed.FeedRepository.
func (r *feedRepository) ListSince(ctx context.Context, uid string, since int64, limit int) ([]feed.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT payload
		FROM update_feed
		WHERE uid = $1 AND ts >= $2
		ORDER BY ts, created_at
		LIMIT $3
	`
	rows, err := q.Query(ctx, query, uid, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed records: %w", err)
	}
	defer rows.Close()

	var records []feed.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan feed record: %w", err)
		}
		var rec feed.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode feed record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed records: %w", err)
	}
	return records, nil
}
