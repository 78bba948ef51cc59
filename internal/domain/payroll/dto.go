package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SUMMARY DTOs ==========

// PayrollSummaryRequest selects the cycle that starts in Month/Year.
type PayrollSummaryRequest struct {
	OfficeID string `json:"office_id"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

func (r *PayrollSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{Field: "office_id", Message: "office_id is required"})
	}
	errs = append(errs, validatePeriod(r.Month, r.Year)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== VOUCHER DTOs ==========

// ComputeVoucherRequest recomputes the ATTENDANCE voucher of one employee
// for the cycle starting in Month/Year.
type ComputeVoucherRequest struct {
	OfficeID    string `json:"office_id"`
	PhoneNumber string `json:"phone_number"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}

func (r *ComputeVoucherRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{Field: "office_id", Message: "office_id is required"})
	}
	if validator.IsEmpty(r.PhoneNumber) {
		errs = append(errs, validator.ValidationError{Field: "phone_number", Message: "phone_number is required"})
	}
	errs = append(errs, validatePeriod(r.Month, r.Year)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AssignBatchRequest moves open vouchers into a payment batch.
type AssignBatchRequest struct {
	OfficeID   string   `json:"office_id"`
	BatchID    string   `json:"batch_id"`
	VoucherIDs []string `json:"voucher_ids"`
}

func (r *AssignBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{Field: "office_id", Message: "office_id is required"})
	}
	if validator.IsEmpty(r.BatchID) {
		errs = append(errs, validator.ValidationError{Field: "batch_id", Message: "batch_id is required"})
	}
	if len(r.VoucherIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "voucher_ids", Message: "at least one voucher id is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignBatchResponse struct {
	BatchID  string `json:"batch_id"`
	Assigned int    `json:"assigned"`
}

// ========== REIMBURSEMENT DTOs ==========

type ReimbursementRequest struct {
	ClaimID     string              `json:"claim_id"`
	OfficeID    string              `json:"office_id"`
	PhoneNumber string              `json:"phone_number"`
	ClaimType   string              `json:"claim_type"`
	Amount      decimal.Decimal     `json:"amount"`
	Timestamp   int64               `json:"timestamp"`
	Status      voucher.ClaimStatus `json:"status"`
}

func (r *ReimbursementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ClaimID) {
		errs = append(errs, validator.ValidationError{Field: "claim_id", Message: "claim_id is required"})
	}
	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{Field: "office_id", Message: "office_id is required"})
	}
	if validator.IsEmpty(r.PhoneNumber) {
		errs = append(errs, validator.ValidationError{Field: "phone_number", Message: "phone_number is required"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be non-negative"})
	}
	if r.Timestamp <= 0 {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be a positive unix millisecond value"})
	}
	if !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: PENDING, CONFIRMED, CANCELLED"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	currentYear := time.Now().Year()
	if year < 2020 || year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}
	return errs
}
