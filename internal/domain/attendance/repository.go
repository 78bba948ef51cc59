package attendance

import (
	"context"
	"time"
)

// MapRepository is the only write path for attendance maps. Writes are
// optimistic: MergeWrite succeeds only if the stored version still equals the
// version the caller read.
type MapRepository interface {
	// FindOne returns nil when no map exists for key.
	FindOne(ctx context.Context, key Key) (*AttendanceMap, error)

	// FetchOrDefault returns the stored map, or a new empty map with
	// Version 0 when none exists.
	FetchOrDefault(ctx context.Context, key Key) (AttendanceMap, error)

	// MergeWrite inserts a new map (Version 0) or replaces a stored one whose
	// version matches. On success m.Version is bumped and timestamps set. A
	// stale version returns ErrVersionConflict.
	MergeWrite(ctx context.Context, m *AttendanceMap) error

	// ListByMonth returns every map of the office for month/year.
	ListByMonth(ctx context.Context, officeID string, month time.Month, year int) ([]AttendanceMap, error)
}
