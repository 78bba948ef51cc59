package attendance

import "github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"

// StatusKind names a DayStatus variant.
type StatusKind string

const (
	KindLeave          StatusKind = "leave"
	KindRegularization StatusKind = "ar"
	KindWeeklyOff      StatusKind = "weekly_off"
	KindHoliday        StatusKind = "holiday"
	KindWorked         StatusKind = "worked"
	KindBlank          StatusKind = "blank"
)

// DayStatus is the single authoritative source of a day's credit. Exactly one
// variant applies to a day; see DayRecord.Status for the precedence.
type DayStatus interface {
	Kind() StatusKind
	dayStatus()
}

type Leave struct {
	LeaveType string
}

type Regularization struct{}

type WeeklyOff struct{}

type Holiday struct {
	Name string
}

type Worked struct {
	CheckIns int
	Hours    float64
}

type Blank struct{}

func (Leave) Kind() StatusKind          { return KindLeave }
func (Regularization) Kind() StatusKind { return KindRegularization }
func (WeeklyOff) Kind() StatusKind      { return KindWeeklyOff }
func (Holiday) Kind() StatusKind        { return KindHoliday }
func (Worked) Kind() StatusKind         { return KindWorked }
func (Blank) Kind() StatusKind          { return KindBlank }

func (Leave) dayStatus()          {}
func (Regularization) dayStatus() {}
func (WeeklyOff) dayStatus()      {}
func (Holiday) dayStatus()        {}
func (Worked) dayStatus()         {}
func (Blank) dayStatus()          {}

// Status derives the authoritative variant from the record's flags:
// leave > AR > weekly-off > holiday > worked > blank.
func (d DayRecord) Status() DayStatus {
	switch {
	case d.OnLeave:
		leaveType := ""
		if d.Leave != nil {
			leaveType = d.Leave.LeaveType
		}
		return Leave{LeaveType: leaveType}
	case d.OnAr:
		return Regularization{}
	case d.WeeklyOff:
		return WeeklyOff{}
	case d.Holiday:
		return Holiday{Name: d.HolidayName}
	case d.NumberOfCheckIns() > 0:
		return Worked{CheckIns: d.NumberOfCheckIns(), Hours: d.HoursWorked()}
	default:
		return Blank{}
	}
}

// Credit returns the attendance value a status is worth under policy.
func Credit(s DayStatus, policy office.EmployeePolicy) float64 {
	switch v := s.(type) {
	case Leave, Regularization, WeeklyOff, Holiday:
		return 1
	case Worked:
		return ResolveDayStatus(ResolverInput{
			NumberOfCheckIns:          v.CheckIns,
			HoursWorked:               v.Hours,
			MinimumWorkingHours:       policy.MinimumWorkingHours,
			MinimumDailyActivityCount: policy.MinimumDailyActivityCount,
		})
	default:
		return 0
	}
}
