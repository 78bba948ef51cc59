package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day5 = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

func checkInAt(id string, hour, minute int) CheckInEvent {
	ts := time.Date(2024, time.March, 5, hour, minute, 0, 0, time.UTC).UnixMilli()
	return CheckInEvent{CheckIn: CheckIn{EventID: id, Timestamp: ts, Latitude: 12.9, Longitude: 77.6}}
}

func TestApplyEvent_CheckInRoundTrip(t *testing.T) {
	policy := office.EmployeePolicy{
		MinimumDailyActivityCount: intPtr(2),
		MinimumWorkingHours:       floatPtr(4),
	}

	rec, changed := ApplyEvent(DayRecord{}, checkInAt("a", 9, 0), policy, day5)
	require.True(t, changed)
	rec, changed = ApplyEvent(rec, checkInAt("b", 11, 0), policy, day5)
	require.True(t, changed)

	require.NotNil(t, rec.Working)
	assert.Equal(t, 2, rec.Working.NumberOfCheckIns)
	assert.InDelta(t, 2.0, rec.HoursWorked(), 1e-9)
	assert.InDelta(t, 0.5, rec.Attendance, 1e-12)
	assert.Equal(t, Worked{CheckIns: 2, Hours: 2}, rec.Status())
}

func TestApplyEvent_CheckInOutOfOrder(t *testing.T) {
	rec, _ := ApplyEvent(DayRecord{}, checkInAt("late", 17, 0), office.EmployeePolicy{}, day5)
	rec, _ = ApplyEvent(rec, checkInAt("early", 8, 0), office.EmployeePolicy{}, day5)

	require.Len(t, rec.Addendum, 2)
	assert.Equal(t, "early", rec.Addendum[0].EventID)
	assert.Equal(t, rec.Addendum[0].Timestamp, rec.Working.FirstCheckInTimestamp)
	assert.Equal(t, rec.Addendum[1].Timestamp, rec.Working.LastCheckInTimestamp)
}

func TestApplyEvent_DuplicateCheckInIgnored(t *testing.T) {
	ev := checkInAt("dup", 9, 0)
	once, _ := ApplyEvent(DayRecord{}, ev, office.EmployeePolicy{}, day5)
	twice, changed := ApplyEvent(once, ev, office.EmployeePolicy{}, day5)

	assert.False(t, changed)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, twice.NumberOfCheckIns())
}

func TestApplyEvent_PinnedDayNotDowngraded(t *testing.T) {
	policy := office.EmployeePolicy{MinimumDailyActivityCount: intPtr(4)}
	pins := []struct {
		name string
		ev   Event
	}{
		{"leave", LeaveEvent{Status: StatusConfirmed, LeaveType: "Sick"}},
		{"ar", RegularizationEvent{Status: StatusPending}},
		{"weekly off", WeeklyOffEvent{}},
		{"holiday", HolidayEvent{Name: "Founders Day"}},
	}

	for _, p := range pins {
		t.Run(p.name, func(t *testing.T) {
			rec, _ := ApplyEvent(DayRecord{}, p.ev, policy, day5)
			require.Equal(t, 1.0, rec.Attendance)

			rec, changed := ApplyEvent(rec, checkInAt("c1", 9, 0), policy, day5)
			assert.True(t, changed)
			assert.Equal(t, 1.0, rec.Attendance)
			assert.True(t, rec.Pinned())
			assert.Equal(t, 1, rec.NumberOfCheckIns())
		})
	}
}

func TestApplyEvent_LeaveKeepsOnLeaveAfterCheckIn(t *testing.T) {
	rec, _ := ApplyEvent(DayRecord{}, LeaveEvent{Status: StatusConfirmed, LeaveType: "Casual", Reason: "family"}, office.EmployeePolicy{}, day5)
	rec, _ = ApplyEvent(rec, checkInAt("x", 10, 0), office.EmployeePolicy{}, day5)

	assert.True(t, rec.OnLeave)
	assert.Equal(t, 1.0, rec.Attendance)
	assert.Equal(t, Leave{LeaveType: "Casual"}, rec.Status())
	assert.Equal(t, "family", rec.Leave.Reason)
}

func TestApplyEvent_ARCancelRevertsToCheckIns(t *testing.T) {
	policy := office.EmployeePolicy{MinimumDailyActivityCount: intPtr(4)}
	actor := StatusStamp{PhoneNumber: "+911111111111", Timestamp: 1}

	rec, _ := ApplyEvent(DayRecord{}, checkInAt("a", 9, 0), policy, day5)
	assert.Equal(t, 0.25, rec.Attendance)

	rec, _ = ApplyEvent(rec, RegularizationEvent{Status: StatusPending, Reason: "forgot phone", Actor: actor}, policy, day5)
	assert.True(t, rec.OnAr)
	assert.Equal(t, 1.0, rec.Attendance)

	rec, _ = ApplyEvent(rec, RegularizationEvent{Status: StatusCancelled, Actor: actor}, policy, day5)
	assert.False(t, rec.OnAr)
	assert.Equal(t, 0.25, rec.Attendance)
	assert.Equal(t, "forgot phone", rec.AR.Reason)
	assert.Contains(t, rec.AR.Status, StatusPending)
	assert.Contains(t, rec.AR.Status, StatusCancelled)
}

func TestApplyEvent_LeaveCancelRevertsToCheckIns(t *testing.T) {
	policy := office.EmployeePolicy{MinimumDailyActivityCount: intPtr(4)}
	actor := StatusStamp{PhoneNumber: "+911111111111", Timestamp: 1}

	rec, _ := ApplyEvent(DayRecord{}, checkInAt("a", 9, 0), policy, day5)
	rec, _ = ApplyEvent(rec, LeaveEvent{Status: StatusConfirmed, LeaveType: "Sick", Actor: actor}, policy, day5)
	require.True(t, rec.OnLeave)
	assert.Equal(t, 1.0, rec.Attendance)

	rec, changed := ApplyEvent(rec, LeaveEvent{Status: StatusCancelled, Actor: actor}, policy, day5)

	assert.True(t, changed)
	assert.False(t, rec.OnLeave)
	assert.Equal(t, 0.25, rec.Attendance)
	assert.Equal(t, KindWorked, rec.Status().Kind())
	assert.Equal(t, "Sick", rec.Leave.LeaveType)
	assert.Contains(t, rec.Leave.Status, StatusConfirmed)
	assert.Contains(t, rec.Leave.Status, StatusCancelled)
}

func TestApplyEvent_PriorityOrder(t *testing.T) {
	rec := DayRecord{}
	rec, _ = ApplyEvent(rec, HolidayEvent{Name: "Diwali"}, office.EmployeePolicy{}, day5)
	assert.Equal(t, KindHoliday, rec.Status().Kind())

	rec, _ = ApplyEvent(rec, WeeklyOffEvent{}, office.EmployeePolicy{}, day5)
	assert.Equal(t, KindWeeklyOff, rec.Status().Kind())

	rec, _ = ApplyEvent(rec, RegularizationEvent{Status: StatusConfirmed}, office.EmployeePolicy{}, day5)
	assert.Equal(t, KindRegularization, rec.Status().Kind())

	rec, _ = ApplyEvent(rec, LeaveEvent{Status: StatusConfirmed, LeaveType: "Sick"}, office.EmployeePolicy{}, day5)
	assert.Equal(t, KindLeave, rec.Status().Kind())

	rec, _ = ApplyEvent(rec, LeaveEvent{Status: StatusCancelled}, office.EmployeePolicy{}, day5)
	assert.Equal(t, KindRegularization, rec.Status().Kind())
	assert.Equal(t, "Sick", rec.Leave.LeaveType)
}

func TestApplyEvent_IsLate(t *testing.T) {
	policy := office.EmployeePolicy{DailyStartTime: "09:30"}

	rec, _ := ApplyEvent(DayRecord{}, checkInAt("a", 9, 45), policy, day5)
	assert.True(t, rec.IsLate)

	rec, _ = ApplyEvent(rec, checkInAt("b", 9, 0), policy, day5)
	assert.False(t, rec.IsLate)

	rec, _ = ApplyEvent(DayRecord{}, checkInAt("c", 11, 0), office.EmployeePolicy{}, day5)
	assert.False(t, rec.IsLate)
}

func TestAttendanceMap_SumMissingDays(t *testing.T) {
	m := NewAttendanceMap(Key{OfficeID: "o1", PhoneNumber: "p1", Month: time.March, Year: 2024})
	m.SetDay(1, DayRecord{Attendance: 1})
	m.SetDay(2, DayRecord{Attendance: 0.25})

	assert.Equal(t, "1.25", m.Sum([]int{1, 2, 3}).String())

	var missing *AttendanceMap
	assert.True(t, missing.Sum([]int{1, 2}).IsZero())
}
