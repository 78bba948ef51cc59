package attendance

import (
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
)

// Event is a single mutation of one employee-day.
type Event interface {
	event()
}

// CheckInEvent folds one raw check-in into the day.
type CheckInEvent struct {
	CheckIn CheckIn
}

// RegularizationEvent records an AR status transition.
type RegularizationEvent struct {
	Status ActivityStatus
	Reason string
	Actor  StatusStamp
}

// LeaveEvent records a leave status transition for one day of the leave.
type LeaveEvent struct {
	Status    ActivityStatus
	Reason    string
	LeaveType string
	Actor     StatusStamp
}

// HolidayEvent marks the day as a branch holiday.
type HolidayEvent struct {
	Name string
}

// WeeklyOffEvent marks the day as the employee's weekly off.
type WeeklyOffEvent struct{}

func (CheckInEvent) event()        {}
func (RegularizationEvent) event() {}
func (LeaveEvent) event()          {}
func (HolidayEvent) event()        {}
func (WeeklyOffEvent) event()      {}

// ApplyEvent returns rec with ev folded in and attendance recomputed from the
// resulting status. changed is false when ev had already been applied (a
// redelivered check-in, a day already marked holiday or weekly off) and rec is
// returned untouched.
//
// day is the calendar day of rec in the office location; it is used to decide
// lateness.
func ApplyEvent(rec DayRecord, ev Event, policy office.EmployeePolicy, day time.Time) (DayRecord, bool) {
	switch e := ev.(type) {
	case CheckInEvent:
		if rec.HasCheckIn(e.CheckIn.EventID) {
			return rec, false
		}
		rec.Addendum = append(append([]CheckIn(nil), rec.Addendum...), e.CheckIn)
		sortCheckIns(rec.Addendum)
		rec.Working = workingFrom(rec.Addendum)
		rec.IsLate = isLate(rec.Working, policy, day)

	case RegularizationEvent:
		ar := RegularizationInfo{Status: map[ActivityStatus]StatusStamp{}}
		if rec.AR != nil {
			ar.Reason = rec.AR.Reason
			for k, v := range rec.AR.Status {
				ar.Status[k] = v
			}
		}
		if e.Reason != "" {
			ar.Reason = e.Reason
		}
		ar.Status[e.Status] = e.Actor
		rec.AR = &ar
		rec.OnAr = e.Status != StatusCancelled

	case LeaveEvent:
		leave := LeaveInfo{Status: map[ActivityStatus]StatusStamp{}}
		if rec.Leave != nil {
			leave.Reason = rec.Leave.Reason
			leave.LeaveType = rec.Leave.LeaveType
			for k, v := range rec.Leave.Status {
				leave.Status[k] = v
			}
		}
		if e.Reason != "" {
			leave.Reason = e.Reason
		}
		if e.LeaveType != "" {
			leave.LeaveType = e.LeaveType
		}
		leave.Status[e.Status] = e.Actor
		rec.Leave = &leave
		rec.OnLeave = e.Status != StatusCancelled

	case HolidayEvent:
		if rec.Holiday && (e.Name == "" || e.Name == rec.HolidayName) {
			return rec, false
		}
		rec.Holiday = true
		if e.Name != "" {
			rec.HolidayName = e.Name
		}

	case WeeklyOffEvent:
		if rec.WeeklyOff {
			return rec, false
		}
		rec.WeeklyOff = true

	default:
		return rec, false
	}

	rec.Attendance = Credit(rec.Status(), policy)
	return rec, true
}

func workingFrom(checkIns []CheckIn) *Working {
	if len(checkIns) == 0 {
		return nil
	}
	return &Working{
		FirstCheckInTimestamp: checkIns[0].Timestamp,
		LastCheckInTimestamp:  checkIns[len(checkIns)-1].Timestamp,
		NumberOfCheckIns:      len(checkIns),
	}
}

func isLate(w *Working, policy office.EmployeePolicy, day time.Time) bool {
	if w == nil {
		return false
	}
	start, ok := policy.StartTimeOn(day)
	if !ok {
		return false
	}
	return time.UnixMilli(w.FirstCheckInTimestamp).After(start)
}
