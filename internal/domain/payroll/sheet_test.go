package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTypeValue(t *testing.T) {
	working := &attendance.Working{NumberOfCheckIns: 2}

	tests := []struct {
		name string
		rec  attendance.DayRecord
		ok   bool
		want string
	}{
		{"missing day", attendance.DayRecord{}, false, TypeBlank},
		{"leave with type", attendance.DayRecord{OnLeave: true, WeeklyOff: true, Leave: &attendance.LeaveInfo{LeaveType: "Casual"}}, true, "Casual"},
		{"leave without type", attendance.DayRecord{OnLeave: true}, true, DefaultLeaveType},
		{"weekly off beats AR", attendance.DayRecord{WeeklyOff: true, OnAr: true}, true, TypeWeeklyOff},
		{"AR beats late", attendance.DayRecord{OnAr: true, IsLate: true, Working: working}, true, TypeAR},
		{"late beats working", attendance.DayRecord{IsLate: true, Working: working}, true, TypeLate},
		{"working", attendance.DayRecord{Working: working}, true, TypeWorking},
		{"holiday only", attendance.DayRecord{Holiday: true, Attendance: 1}, true, TypeBlank},
		{"empty record", attendance.DayRecord{}, true, TypeBlank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetTypeValue(tt.rec, tt.ok))
		})
	}
}

func TestGetAttendanceValue(t *testing.T) {
	assert.Nil(t, GetAttendanceValue(attendance.DayRecord{Attendance: 1}, false))

	v := GetAttendanceValue(attendance.DayRecord{}, true)
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)

	v = GetAttendanceValue(attendance.DayRecord{Attendance: 0.5}, true)
	require.NotNil(t, v)
	assert.Equal(t, 0.5, *v)
}

func TestBuildPayrollSheet(t *testing.T) {
	// Arrange
	dates := []time.Time{
		time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	jan := attendance.NewAttendanceMap(attendance.Key{OfficeID: "o", PhoneNumber: "p1", Month: time.January, Year: 2025})
	jan.SetDay(31, attendance.DayRecord{Attendance: 1, OnLeave: true})
	feb := attendance.NewAttendanceMap(attendance.Key{OfficeID: "o", PhoneNumber: "p1", Month: time.February, Year: 2025})
	feb.SetDay(1, attendance.DayRecord{Attendance: 0.5, Working: &attendance.Working{NumberOfCheckIns: 1}})

	policy := office.EmployeePolicy{PhoneNumber: "p1", Name: "Sari", EmployeeCode: "E1"}
	employees := []EmployeeInput{
		{PhoneNumber: "p1", Policy: &policy, Maps: []attendance.AttendanceMap{jan, feb}},
		{PhoneNumber: "p2"},
	}

	// Act
	sheet := BuildPayrollSheet(employees, dates)

	// Assert
	assert.Equal(t, []string{"2025-01-31", "2025-02-01"}, sheet.Dates)
	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, DefaultLeaveType, sheet.Rows[0].Type)
	assert.Equal(t, TypeWorking, sheet.Rows[1].Type)
	assert.Equal(t, "Sari", sheet.Rows[1].EmployeeName)
	assert.Nil(t, sheet.Rows[2].Attendance)
	assert.Equal(t, []string{DefaultLeaveType}, sheet.LeaveTypes)

	require.Len(t, sheet.Summaries, 2)
	assert.Equal(t, "1.5", sheet.Summaries[0].MTDAttendance.String())
	assert.Equal(t, 1, sheet.Summaries[0].LeaveCounts[DefaultLeaveType])
	assert.False(t, sheet.Summaries[0].PolicyMissing)
	assert.True(t, sheet.Summaries[1].PolicyMissing)
	assert.True(t, sheet.Summaries[1].MTDAttendance.IsZero())
}
