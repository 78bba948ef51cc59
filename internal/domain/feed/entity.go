package feed

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/cycle"
)

// TypeAttendance is the _type of attendance feed records.
const TypeAttendance = "attendance"

// Record is the denormalized per-user copy of one changed employee-day,
// consumed by client sync.
type Record struct {
	ID         string               `json:"id"`
	UID        string               `json:"uid"`
	EventID    string               `json:"eventId"`
	Key        int64                `json:"key"`
	Date       int                  `json:"date"`
	Month      int                  `json:"month"`
	Year       int                  `json:"year"`
	OfficeID   string               `json:"officeId"`
	Office     string               `json:"office"`
	ActivityID string               `json:"activityId"`
	Timestamp  int64                `json:"timestamp"`
	Type       string               `json:"_type"`
	OnAr       bool                 `json:"onAr"`
	OnLeave    bool                 `json:"onLeave"`
	WeeklyOff  bool                 `json:"weeklyOff"`
	Holiday    bool                 `json:"holiday"`
	IsLate     bool                 `json:"isLate"`
	Attendance float64              `json:"attendance"`
	Addendum   []attendance.CheckIn `json:"addendum"`
}

// RecordID is the composite id of a day: date, month, year and office id
// concatenated.
func RecordID(day time.Time, officeID string) string {
	return fmt.Sprintf("%d%d%d%s", day.Day(), int(day.Month()), day.Year(), officeID)
}

// Source describes the event that changed a day.
type Source struct {
	EventID    string
	ActivityID string
	Timestamp  int64
}

// NewRecord builds the feed record for one day of an attendance map. day must
// be midnight of that day in the office location.
func NewRecord(uid, officeID, officeName string, day time.Time, rec attendance.DayRecord, src Source) Record {
	addendum := rec.Addendum
	if addendum == nil {
		addendum = []attendance.CheckIn{}
	}
	return Record{
		ID:         RecordID(day, officeID),
		UID:        uid,
		EventID:    src.EventID,
		Key:        cycle.StartOfDayMillis(day.Year(), day.Month(), day.Day(), day.Location()),
		Date:       day.Day(),
		Month:      int(day.Month()),
		Year:       day.Year(),
		OfficeID:   officeID,
		Office:     officeName,
		ActivityID: src.ActivityID,
		Timestamp:  src.Timestamp,
		Type:       TypeAttendance,
		OnAr:       rec.OnAr,
		OnLeave:    rec.OnLeave,
		WeeklyOff:  rec.WeeklyOff,
		Holiday:    rec.Holiday,
		IsLate:     rec.IsLate,
		Attendance: rec.Attendance,
		Addendum:   addendum,
	}
}
