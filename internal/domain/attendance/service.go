package attendance

import (
	"context"
	"time"
)

// AggregatorService folds trigger events into attendance maps. Every handler
// commits all of an event's writes atomically.
type AggregatorService interface {
	HandleCheckIn(ctx context.Context, req CheckInRequest) error
	HandleRegularization(ctx context.Context, req RegularizationRequest) error
	HandleLeave(ctx context.Context, req LeaveRequest) error
	HandleBranchHoliday(ctx context.Context, req BranchHolidayRequest) error
	HandleWeeklyOff(ctx context.Context, req WeeklyOffRequest) error

	// GetAttendanceMap returns the stored map or an empty one.
	GetAttendanceMap(ctx context.Context, key Key) (AttendanceMap, error)

	// MarkWeeklyOffs applies the weekly off of every employee of every office
	// whose configured weekday is today in the office's time zone.
	MarkWeeklyOffs(ctx context.Context, now time.Time) error

	// MarkBranchHolidays applies branch holidays scheduled today.
	MarkBranchHolidays(ctx context.Context, now time.Time) error

	// ReconcileStaleAddendum re-applies raw check-ins that were stored but
	// never aggregated and marks them corrected. It returns how many were
	// corrected.
	ReconcileStaleAddendum(ctx context.Context, olderThan time.Duration) (int, error)
}

// VoucherRecomputer is notified of every employee-day whose attendance
// changed so the voucher of the containing cycle can be refreshed.
type VoucherRecomputer interface {
	RecomputeVoucherForDay(ctx context.Context, officeID, phoneNumber string, day time.Time) error
}
