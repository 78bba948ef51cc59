package payroll

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/shopspring/decimal"
)

// DefaultLeaveType labels leave days recorded without a type.
const DefaultLeaveType = "Leave"

// SheetDateLayout is the layout of dates in payroll rows.
const SheetDateLayout = "2006-01-02"

// EmployeeInput is everything the sheet needs about one employee. Policy is
// nil when the office no longer configures the employee.
type EmployeeInput struct {
	PhoneNumber string
	Policy      *office.EmployeePolicy
	Maps        []attendance.AttendanceMap
}

type monthKey struct {
	month time.Month
	year  int
}

func (e EmployeeInput) index() map[monthKey]attendance.AttendanceMap {
	out := make(map[monthKey]attendance.AttendanceMap, len(e.Maps))
	for _, m := range e.Maps {
		out[monthKey{m.Month, m.Year}] = m
	}
	return out
}

// GetTypeValue classifies a day for the sheet:
// onLeave > weeklyOff > onAr > isLate > working > blank.
func GetTypeValue(rec attendance.DayRecord, ok bool) string {
	if !ok {
		return TypeBlank
	}
	switch {
	case rec.OnLeave:
		if rec.Leave != nil && rec.Leave.LeaveType != "" {
			return rec.Leave.LeaveType
		}
		return DefaultLeaveType
	case rec.WeeklyOff:
		return TypeWeeklyOff
	case rec.OnAr:
		return TypeAR
	case rec.IsLate:
		return TypeLate
	case rec.NumberOfCheckIns() > 0:
		return TypeWorking
	default:
		return TypeBlank
	}
}

// GetAttendanceValue returns the stored attendance of a day, or nil when the
// day has no record.
func GetAttendanceValue(rec attendance.DayRecord, ok bool) *float64 {
	if !ok {
		return nil
	}
	v := rec.Attendance
	return &v
}

// BuildPayrollSheet lays out one row per employee per date and one summary
// per employee. Employees without a policy still get rows; only their
// descriptive fields stay empty.
func BuildPayrollSheet(employees []EmployeeInput, dates []time.Time) PayrollSheet {
	sheet := PayrollSheet{
		Dates:     make([]string, 0, len(dates)),
		Rows:      make([]PayrollRow, 0, len(employees)*len(dates)),
		Summaries: make([]EmployeeSummary, 0, len(employees)),
	}
	for _, d := range dates {
		sheet.Dates = append(sheet.Dates, d.Format(SheetDateLayout))
	}

	leaveTypes := make(map[string]struct{})
	for _, emp := range employees {
		summary := EmployeeSummary{
			PhoneNumber:   emp.PhoneNumber,
			LeaveCounts:   make(map[string]int),
			MTDAttendance: decimal.Zero,
			TotalDays:     len(dates),
			PolicyMissing: emp.Policy == nil,
		}
		if emp.Policy != nil {
			summary.EmployeeName = emp.Policy.Name
			summary.EmployeeCode = emp.Policy.EmployeeCode
			summary.BaseLocation = emp.Policy.BaseLocation
		}

		maps := emp.index()
		for i, d := range dates {
			var rec attendance.DayRecord
			ok := false
			if m, found := maps[monthKey{d.Month(), d.Year()}]; found {
				rec, ok = m.Lookup(d.Day())
			}

			sheet.Rows = append(sheet.Rows, PayrollRow{
				PhoneNumber:  emp.PhoneNumber,
				EmployeeName: summary.EmployeeName,
				EmployeeCode: summary.EmployeeCode,
				Date:         sheet.Dates[i],
				Type:         GetTypeValue(rec, ok),
				Attendance:   GetAttendanceValue(rec, ok),
			})

			if !ok {
				continue
			}
			if rec.OnLeave {
				lt := GetTypeValue(rec, ok)
				summary.LeaveCounts[lt]++
				leaveTypes[lt] = struct{}{}
			}
			if rec.OnAr {
				summary.ARCount++
			}
			if rec.Holiday {
				summary.HolidayCount++
			}
			if rec.WeeklyOff {
				summary.WeeklyOffCount++
			}
			if rec.IsLate {
				summary.LateCount++
			}
			summary.MTDAttendance = summary.MTDAttendance.Add(decimal.NewFromFloat(rec.Attendance))
		}
		sheet.Summaries = append(sheet.Summaries, summary)
	}

	for lt := range leaveTypes {
		sheet.LeaveTypes = append(sheet.LeaveTypes, lt)
	}
	sort.Strings(sheet.LeaveTypes)
	return sheet
}
