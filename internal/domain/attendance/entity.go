package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ActivityStatus is the approval state of a leave or regularization activity.
type ActivityStatus string

const (
	StatusPending   ActivityStatus = "PENDING"
	StatusConfirmed ActivityStatus = "CONFIRMED"
	StatusCancelled ActivityStatus = "CANCELLED"
)

func (s ActivityStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Key identifies one employee-month.
type Key struct {
	OfficeID    string
	PhoneNumber string
	Month       time.Month
	Year        int
}

// KeyFor returns the key of the month containing day.
func KeyFor(officeID, phoneNumber string, day time.Time) Key {
	return Key{OfficeID: officeID, PhoneNumber: phoneNumber, Month: day.Month(), Year: day.Year()}
}

// AttendanceMap is the system of record for one employee-month. Days are
// created lazily; a missing day has no recorded signal at all.
type AttendanceMap struct {
	ID          string            `json:"id"`
	OfficeID    string            `json:"officeId"`
	PhoneNumber string            `json:"phoneNumber"`
	Month       time.Month        `json:"month"`
	Year        int               `json:"year"`
	Attendance  map[int]DayRecord `json:"attendance"`
	Version     int64             `json:"version"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewAttendanceMap returns an empty, unsaved map for key.
func NewAttendanceMap(key Key) AttendanceMap {
	return AttendanceMap{
		OfficeID:    key.OfficeID,
		PhoneNumber: key.PhoneNumber,
		Month:       key.Month,
		Year:        key.Year,
		Attendance:  make(map[int]DayRecord),
	}
}

func (m AttendanceMap) Key() Key {
	return Key{OfficeID: m.OfficeID, PhoneNumber: m.PhoneNumber, Month: m.Month, Year: m.Year}
}

// IsNew reports whether the map has never been persisted.
func (m AttendanceMap) IsNew() bool {
	return m.Version == 0
}

// Day returns the record for day, or the zero record when absent.
func (m AttendanceMap) Day(day int) DayRecord {
	return m.Attendance[day]
}

// Lookup returns the record for day and whether it exists.
func (m AttendanceMap) Lookup(day int) (DayRecord, bool) {
	rec, ok := m.Attendance[day]
	return rec, ok
}

func (m *AttendanceMap) SetDay(day int, rec DayRecord) {
	if m.Attendance == nil {
		m.Attendance = make(map[int]DayRecord)
	}
	m.Attendance[day] = rec
}

// Sum adds up the attendance credit of the given days. Missing days count as
// zero.
func (m *AttendanceMap) Sum(days []int) decimal.Decimal {
	total := decimal.Zero
	if m == nil {
		return total
	}
	for _, d := range days {
		if rec, ok := m.Attendance[d]; ok {
			total = total.Add(decimal.NewFromFloat(rec.Attendance))
		}
	}
	return total
}

// DayRecord is the derived state of one employee-day.
type DayRecord struct {
	Attendance  float64             `json:"attendance"`
	OnLeave     bool                `json:"onLeave"`
	OnAr        bool                `json:"onAr"`
	WeeklyOff   bool                `json:"weeklyOff"`
	Holiday     bool                `json:"holiday"`
	IsLate      bool                `json:"isLate"`
	HolidayName string              `json:"holidayName,omitempty"`
	Working     *Working            `json:"working,omitempty"`
	Leave       *LeaveInfo          `json:"leave,omitempty"`
	AR          *RegularizationInfo `json:"ar,omitempty"`
	Addendum    []CheckIn           `json:"addendum,omitempty"`
}

// HasCheckIn reports whether the event has already been folded into the day.
func (d DayRecord) HasCheckIn(eventID string) bool {
	for _, c := range d.Addendum {
		if c.EventID == eventID {
			return true
		}
	}
	return false
}

// NumberOfCheckIns returns the number of check-ins recorded for the day.
func (d DayRecord) NumberOfCheckIns() int {
	if d.Working == nil {
		return 0
	}
	return d.Working.NumberOfCheckIns
}

// HoursWorked returns the time between the first and last check-in in hours.
func (d DayRecord) HoursWorked() float64 {
	if d.Working == nil {
		return 0
	}
	return d.Working.Hours()
}

// Pinned reports whether a flag fixes the day's credit regardless of
// check-ins.
func (d DayRecord) Pinned() bool {
	return d.OnLeave || d.OnAr || d.WeeklyOff || d.Holiday
}

// Working summarizes the day's check-ins.
type Working struct {
	FirstCheckInTimestamp int64 `json:"firstCheckInTimestamp"`
	LastCheckInTimestamp  int64 `json:"lastCheckInTimestamp"`
	NumberOfCheckIns      int   `json:"numberOfCheckIns"`
}

func (w Working) Hours() float64 {
	if w.LastCheckInTimestamp <= w.FirstCheckInTimestamp {
		return 0
	}
	return float64(w.LastCheckInTimestamp-w.FirstCheckInTimestamp) / float64(time.Hour/time.Millisecond)
}

// StatusStamp records who moved an activity into a status and when.
type StatusStamp struct {
	PhoneNumber string `json:"phoneNumber"`
	Timestamp   int64  `json:"timestamp"`
}

type LeaveInfo struct {
	Reason    string                         `json:"reason"`
	LeaveType string                         `json:"leaveType"`
	Status    map[ActivityStatus]StatusStamp `json:"status"`
}

type RegularizationInfo struct {
	Reason string                         `json:"reason"`
	Status map[ActivityStatus]StatusStamp `json:"status"`
}

// CheckIn is one raw check-in as folded into a day.
type CheckIn struct {
	EventID          string   `json:"eventId"`
	Timestamp        int64    `json:"timestamp"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	DistanceFromBase *float64 `json:"distanceFromBase,omitempty"`
}

func sortCheckIns(c []CheckIn) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Timestamp == c[j].Timestamp {
			return c[i].EventID < c[j].EventID
		}
		return c[i].Timestamp < c[j].Timestamp
	})
}
