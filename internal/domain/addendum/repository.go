package addendum

import (
	"context"
	"time"
)

type AddendumRepository interface {
	// Create stores a raw check-in. created is false when a check-in with the
	// same id already exists.
	Create(ctx context.Context, a Addendum) (created bool, err error)

	// MarkAggregated stamps the check-in as folded into its attendance map.
	MarkAggregated(ctx context.Context, id string, at time.Time) error

	// ListStale returns check-ins created before cutoff that were never
	// aggregated or corrected, oldest first.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Addendum, error)

	// MarkCorrected stamps a group of check-ins as repaired by
	// reconciliation. Callers bound the group size.
	MarkCorrected(ctx context.Context, ids []string, at time.Time) error
}
