package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
)

// Activity trigger actions.
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionChangeStatus = "changeStatus"
)

var validActions = []string{ActionCreate, ActionUpdate, ActionChangeStatus}

// MaxLeaveSpan caps the range a single leave write may cover.
const MaxLeaveSpan = 366 * 24 * time.Hour

// ========================================
// TRIGGER DTOs
// ========================================

// CheckInRequest is a raw check-in written to the office addendum.
type CheckInRequest struct {
	EventID     string  `json:"event_id"`
	OfficeID    string  `json:"office_id"`
	PhoneNumber string  `json:"phone_number"`
	Timestamp   int64   `json:"timestamp"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EventID) {
		errs = append(errs, validator.ValidationError{
			Field:   "event_id",
			Message: "event_id is required",
		})
	}

	errs = append(errs, requireOfficeAndPhone(r.OfficeID, r.PhoneNumber)...)

	if r.Timestamp <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be a positive unix millisecond value",
		})
	}

	if r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RegularizationRequest is an AR activity write for one day.
type RegularizationRequest struct {
	ActivityID       string         `json:"activity_id"`
	OfficeID         string         `json:"office_id"`
	PhoneNumber      string         `json:"phone_number"`
	Action           string         `json:"action"`
	Status           ActivityStatus `json:"status"`
	Reason           string         `json:"reason"`
	Date             string         `json:"date"`
	ActorPhoneNumber string         `json:"actor_phone_number"`
	Timestamp        int64          `json:"timestamp"`
}

func (r *RegularizationRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, requireOfficeAndPhone(r.OfficeID, r.PhoneNumber)...)
	errs = append(errs, validateActivity(r.ActivityID, r.Action, r.Status, r.Timestamp)...)

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must use YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LeaveRequest is a leave activity write covering [StartTime, EndTime].
type LeaveRequest struct {
	ActivityID       string         `json:"activity_id"`
	OfficeID         string         `json:"office_id"`
	PhoneNumber      string         `json:"phone_number"`
	Action           string         `json:"action"`
	Status           ActivityStatus `json:"status"`
	Reason           string         `json:"reason"`
	LeaveType        string         `json:"leave_type"`
	StartTime        int64          `json:"start_time"`
	EndTime          int64          `json:"end_time"`
	ActorPhoneNumber string         `json:"actor_phone_number"`
	Timestamp        int64          `json:"timestamp"`
}

func (r *LeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, requireOfficeAndPhone(r.OfficeID, r.PhoneNumber)...)
	errs = append(errs, validateActivity(r.ActivityID, r.Action, r.Status, r.Timestamp)...)

	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	}

	if r.StartTime <= 0 || r.EndTime <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time and end_time are required",
		})
	} else if r.EndTime < r.StartTime {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must not be before start_time",
		})
	} else if r.EndTime-r.StartTime > MaxLeaveSpan.Milliseconds() {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: fmt.Sprintf("leave must not span more than %d days", int(MaxLeaveSpan/(24*time.Hour))),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BranchHolidayRequest schedules holidays for every employee based at a
// branch.
type BranchHolidayRequest struct {
	ActivityID string   `json:"activity_id"`
	OfficeID   string   `json:"office_id"`
	Branch     string   `json:"branch"`
	Name       string   `json:"name"`
	Dates      []string `json:"dates"`
}

func (r *BranchHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "office_id",
			Message: "office_id is required",
		})
	}

	if validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch",
			Message: "branch is required",
		})
	}

	if len(r.Dates) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "dates",
			Message: "at least one date is required",
		})
	}
	for _, d := range r.Dates {
		if _, ok := validator.IsValidDate(d); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "dates",
				Message: "dates must use YYYY-MM-DD format",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WeeklyOffRequest marks Date as weekly off for the employees whose weekly
// off falls on it. An empty PhoneNumber means every such employee.
type WeeklyOffRequest struct {
	OfficeID    string `json:"office_id"`
	PhoneNumber string `json:"phone_number"`
	Date        string `json:"date"`
}

func (r *WeeklyOffRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "office_id",
			Message: "office_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must use YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func requireOfficeAndPhone(officeID, phoneNumber string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(officeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "office_id",
			Message: "office_id is required",
		})
	}
	if validator.IsEmpty(phoneNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "phone_number is required",
		})
	}
	return errs
}

// validateActivity checks the fields shared by leave and AR writes. The
// timestamp is part of the feed event id, so it must come from the source
// document rather than the delivery time.
func validateActivity(activityID, action string, status ActivityStatus, ts int64) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(activityID) {
		errs = append(errs, validator.ValidationError{
			Field:   "activity_id",
			Message: "activity_id is required",
		})
	}
	if !validator.IsInSlice(action, validActions) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: create, update, changeStatus",
		})
	}
	if !status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: PENDING, CONFIRMED, CANCELLED",
		})
	}
	if ts <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be a positive unix millisecond value",
		})
	}
	return errs
}
