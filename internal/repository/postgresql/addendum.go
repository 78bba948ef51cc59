package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/addendum"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
)

type addendumRepository struct {
	db *database.DB
}

func NewAddendumRepository(db *database.DB) addendum.AddendumRepository {
	return &addendumRepository{db: db}
}

// Create implements addendum.AddendumRepository.
func (r *addendumRepository) Create(ctx context.Context, a addendum.Addendum) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO addendum (id, office_id, phone_number, ts, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := q.Exec(ctx, query, a.ID, a.OfficeID, a.PhoneNumber, a.Timestamp, a.Latitude, a.Longitude)
	if err != nil {
		return false, fmt.Errorf("failed to create addendum: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkAggregated implements addendum.AddendumRepository.
func (r *addendumRepository) MarkAggregated(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE addendum SET aggregated_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to mark addendum aggregated: %w", err)
	}
	return nil
}

// ListStale implements addendum.AddendumRepository.
func (r *addendumRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]addendum.Addendum, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, office_id, phone_number, ts, latitude, longitude, created_at, aggregated_at, corrected_at
		FROM addendum
		WHERE aggregated_at IS NULL AND corrected_at IS NULL AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := q.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale addendum: %w", err)
	}
	defer rows.Close()

	var out []addendum.Addendum
	for rows.Next() {
		var a addendum.Addendum
		if err := rows.Scan(&a.ID, &a.OfficeID, &a.PhoneNumber, &a.Timestamp, &a.Latitude, &a.Longitude,
			&a.CreatedAt, &a.AggregatedAt, &a.CorrectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan addendum: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addendum: %w", err)
	}
	return out, nil
}

// MarkCorrected implements addendum.AddendumRepository.
func (r *addendumRepository) MarkCorrected(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE addendum SET corrected_at = $1 WHERE id = ANY($2)`, at, ids); err != nil {
		return fmt.Errorf("failed to mark addendum corrected: %w", err)
	}
	return nil
}
