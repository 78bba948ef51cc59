package office

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/cycle"
	"github.com/shopspring/decimal"
)

// Office is the per-tenant configuration read by the attendance and payroll
// pipelines. It is synced from the office document and never mutated by them.
type Office struct {
	ID                     string                    `json:"id"`
	Name                   string                    `json:"name"`
	FirstDayOfMonthlyCycle int                       `json:"first_day_of_monthly_cycle"`
	Timezone               string                    `json:"timezone"`
	Employees              map[string]EmployeePolicy `json:"employees"`
	Branches               map[string]Branch         `json:"branches"`
	CreatedAt              time.Time                 `json:"created_at"`
	UpdatedAt              time.Time                 `json:"updated_at"`
}

// Location returns the office time zone, UTC when unset or unknown.
func (o Office) Location() *time.Location {
	return cycle.LoadLocation(o.Timezone)
}

// FirstDay returns the normalized first day of the monthly cycle.
func (o Office) FirstDay() int {
	return cycle.NormalizeFirstDay(o.FirstDayOfMonthlyCycle)
}

// Employee looks up an employee policy by phone number.
func (o Office) Employee(phoneNumber string) (EmployeePolicy, bool) {
	p, ok := o.Employees[phoneNumber]
	if ok && p.PhoneNumber == "" {
		p.PhoneNumber = phoneNumber
	}
	return p, ok
}

// EmployeesAt returns the employees whose base location is the given branch,
// sorted by phone number.
func (o Office) EmployeesAt(branch string) []EmployeePolicy {
	var out []EmployeePolicy
	for phone, p := range o.Employees {
		if strings.EqualFold(p.BaseLocation, branch) {
			if p.PhoneNumber == "" {
				p.PhoneNumber = phone
			}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out
}

// SortedEmployees returns every employee sorted by phone number.
func (o Office) SortedEmployees() []EmployeePolicy {
	out := make([]EmployeePolicy, 0, len(o.Employees))
	for phone, p := range o.Employees {
		if p.PhoneNumber == "" {
			p.PhoneNumber = phone
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out
}

// BranchOf returns the branch an employee is based at.
func (o Office) BranchOf(p EmployeePolicy) (Branch, bool) {
	if p.BaseLocation == "" {
		return Branch{}, false
	}
	for name, b := range o.Branches {
		if strings.EqualFold(name, p.BaseLocation) {
			return b, true
		}
	}
	return Branch{}, false
}

// EmployeePolicy holds the thresholds and schedule of one employee.
type EmployeePolicy struct {
	PhoneNumber               string           `json:"phone_number"`
	UID                       string           `json:"uid,omitempty"`
	Name                      string           `json:"name"`
	EmployeeCode              string           `json:"employee_code,omitempty"`
	MinimumWorkingHours       *float64         `json:"minimum_working_hours,omitempty"`
	MinimumDailyActivityCount *int             `json:"minimum_daily_activity_count,omitempty"`
	BaseLocation              string           `json:"base_location,omitempty"`
	WeeklyOff                 string           `json:"weekly_off,omitempty"`
	DailyStartTime            string           `json:"daily_start_time,omitempty"`
	DailyRate                 *decimal.Decimal `json:"daily_rate,omitempty"`
}

// IsWeeklyOff reports whether day falls on the configured weekly-off weekday.
func (p EmployeePolicy) IsWeeklyOff(day time.Time) bool {
	if p.WeeklyOff == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.WeeklyOff), day.Weekday().String())
}

// StartTimeOn returns the configured daily start time on the calendar day of
// day, in day's location.
func (p EmployeePolicy) StartTimeOn(day time.Time) (time.Time, bool) {
	if p.DailyStartTime == "" {
		return time.Time{}, false
	}
	hm, err := time.Parse("15:04", p.DailyStartTime)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, day.Location()), true
}

// Branch is a named work location with optional coordinates and its holiday
// calendar.
type Branch struct {
	Name      string    `json:"name"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Holidays  []Holiday `json:"holidays,omitempty"`
}

// HasCoordinates reports whether the branch has a usable position.
func (b Branch) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// HolidayOn returns the holiday scheduled on the given calendar day.
func (b Branch) HolidayOn(day time.Time) (Holiday, bool) {
	date := day.Format(DateLayout)
	for _, h := range b.Holidays {
		if h.Date == date {
			return h, true
		}
	}
	return Holiday{}, false
}

// Holiday is a single branch schedule entry.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// DateLayout is the layout of holiday dates and date query parameters.
const DateLayout = "2006-01-02"

// Day parses the holiday date in loc.
func (h Holiday) Day(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, h.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse holiday date %q: %w", h.Date, err)
	}
	return t, nil
}
