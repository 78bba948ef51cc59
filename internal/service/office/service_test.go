package office

import (
	"context"
	"errors"
	"testing"
	_ "time/tzdata"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfficeService_SyncOffice(t *testing.T) {
	// Arrange
	svc := NewOfficeService(memory.NewStore().Offices())
	req := office.SyncOfficeRequest{
		ID:                     "office-1",
		Name:                   "Bandung",
		FirstDayOfMonthlyCycle: 10,
		Timezone:               "Asia/Jakarta",
		Employees: map[string]office.EmployeePolicy{
			"+628111": {Name: "Sari", WeeklyOff: "Sunday", BaseLocation: "HQ"},
		},
		Branches: map[string]office.Branch{
			"HQ": {Holidays: []office.Holiday{{Date: "2025-03-29", Name: "Nyepi"}}},
		},
	}

	// Act
	o, err := svc.SyncOffice(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, o.FirstDay())
	p, ok := o.Employee("+628111")
	require.True(t, ok)
	assert.Equal(t, "+628111", p.PhoneNumber)
	assert.Equal(t, "HQ", o.Branches["HQ"].Name)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestOfficeService_SyncOffice_Validation(t *testing.T) {
	svc := NewOfficeService(memory.NewStore().Offices())

	_, err := svc.SyncOffice(context.Background(), office.SyncOfficeRequest{
		ID:                     "office-1",
		FirstDayOfMonthlyCycle: 31,
		Timezone:               "Mars/Olympus",
		Employees: map[string]office.EmployeePolicy{
			"+628111": {WeeklyOff: "Funday", DailyStartTime: "9am"},
		},
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "first_day_of_monthly_cycle")
	assert.Contains(t, fields, "timezone")
	assert.Contains(t, fields, "employees.+628111.weekly_off")
	assert.Contains(t, fields, "employees.+628111.daily_start_time")
}

func TestOfficeService_GetOffice(t *testing.T) {
	svc := NewOfficeService(memory.NewStore().Offices())

	_, err := svc.GetOffice(context.Background(), "missing")
	assert.ErrorIs(t, err, office.ErrOfficeNotFound)

	_, err = svc.GetOffice(context.Background(), "")
	assert.ErrorIs(t, err, office.ErrMissingOfficeID)
}
