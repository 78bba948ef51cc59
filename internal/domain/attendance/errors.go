package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceMapNotFound = errors.New("attendance map not found")
	ErrVersionConflict       = errors.New("attendance map was modified concurrently")
	ErrInvalidDateRange      = errors.New("leave end is before its start")
	ErrNoResolvableIdentity  = errors.New("employee has no resolvable identity")
)
