package office

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
)

// SyncOfficeRequest carries the office document fields the pipelines read.
type SyncOfficeRequest struct {
	ID                     string                    `json:"id"`
	Name                   string                    `json:"name"`
	FirstDayOfMonthlyCycle int                       `json:"first_day_of_monthly_cycle"`
	Timezone               string                    `json:"timezone"`
	Employees              map[string]EmployeePolicy `json:"employees"`
	Branches               map[string]Branch         `json:"branches"`
}

func (r *SyncOfficeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.FirstDayOfMonthlyCycle != 0 && (r.FirstDayOfMonthlyCycle < 1 || r.FirstDayOfMonthlyCycle > 28) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_day_of_monthly_cycle",
			Message: "first_day_of_monthly_cycle must be between 1 and 28",
		})
	}

	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "timezone",
				Message: "timezone must be a valid IANA zone name",
			})
		}
	}

	for phone, p := range r.Employees {
		field := fmt.Sprintf("employees.%s", phone)
		if p.MinimumWorkingHours != nil && *p.MinimumWorkingHours < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".minimum_working_hours",
				Message: "minimum_working_hours must not be negative",
			})
		}
		if p.MinimumDailyActivityCount != nil && *p.MinimumDailyActivityCount < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".minimum_daily_activity_count",
				Message: "minimum_daily_activity_count must not be negative",
			})
		}
		if p.WeeklyOff != "" && !validator.IsWeekday(p.WeeklyOff) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".weekly_off",
				Message: "weekly_off must be a weekday name",
			})
		}
		if p.DailyStartTime != "" {
			if _, err := time.Parse("15:04", p.DailyStartTime); err != nil {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".daily_start_time",
					Message: "daily_start_time must use HH:MM format",
				})
			}
		}
	}

	for name, b := range r.Branches {
		for i, h := range b.Holidays {
			if _, ok := validator.IsValidDate(h.Date); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("branches.%s.holidays[%d].date", name, i),
					Message: "date must use YYYY-MM-DD format",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToOffice converts the request into the stored configuration.
func (r *SyncOfficeRequest) ToOffice() Office {
	employees := make(map[string]EmployeePolicy, len(r.Employees))
	for phone, p := range r.Employees {
		p.PhoneNumber = phone
		employees[phone] = p
	}
	branches := make(map[string]Branch, len(r.Branches))
	for name, b := range r.Branches {
		b.Name = name
		branches[name] = b
	}
	return Office{
		ID:                     r.ID,
		Name:                   r.Name,
		FirstDayOfMonthlyCycle: r.FirstDayOfMonthlyCycle,
		Timezone:               r.Timezone,
		Employees:              employees,
		Branches:               branches,
	}
}
