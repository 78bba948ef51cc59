package payroll

import (
	"github.com/shopspring/decimal"
)

// Day type values shown in the payroll sheet.
const (
	TypeWeeklyOff = "Weekly Off"
	TypeAR        = "AR"
	TypeLate      = "Late"
	TypeWorking   = "Working"
	TypeBlank     = ""
)

// PayrollSheet is the payroll view of one office cycle: one row per
// employee-day plus one summary per employee.
type PayrollSheet struct {
	OfficeID    string            `json:"office_id"`
	OfficeName  string            `json:"office_name"`
	CycleStart  string            `json:"cycle_start"`
	CycleEnd    string            `json:"cycle_end"`
	Dates       []string          `json:"dates"`
	Rows        []PayrollRow      `json:"rows"`
	Summaries   []EmployeeSummary `json:"summaries"`
	LeaveTypes  []string          `json:"leave_types"`
	GeneratedAt string            `json:"generated_at"`
}

// PayrollRow is one employee-day. Attendance is nil when the day has no
// record.
type PayrollRow struct {
	PhoneNumber  string   `json:"phone_number"`
	EmployeeName string   `json:"employee_name"`
	EmployeeCode string   `json:"employee_code"`
	Date         string   `json:"date"`
	Type         string   `json:"type"`
	Attendance   *float64 `json:"attendance"`
}

// EmployeeSummary totals one employee over the cycle.
type EmployeeSummary struct {
	PhoneNumber    string          `json:"phone_number"`
	EmployeeName   string          `json:"employee_name"`
	EmployeeCode   string          `json:"employee_code"`
	BaseLocation   string          `json:"base_location"`
	LeaveCounts    map[string]int  `json:"leave_counts"`
	ARCount        int             `json:"ar_count"`
	HolidayCount   int             `json:"holiday_count"`
	WeeklyOffCount int             `json:"weekly_off_count"`
	LateCount      int             `json:"late_count"`
	MTDAttendance  decimal.Decimal `json:"mtd_attendance"`
	TotalDays      int             `json:"total_days"`
	PolicyMissing  bool            `json:"policy_missing"`
}
