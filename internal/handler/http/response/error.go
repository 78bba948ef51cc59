package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrOfficeScopeRequired):
		Forbidden(w, "Token is not scoped to an office")
	case errors.Is(err, auth.ErrUIDRequired):
		Forbidden(w, "Token carries no uid")
	case errors.Is(err, auth.ErrInsufficientRole):
		Forbidden(w, "Insufficient role")

	// Office errors
	case errors.Is(err, office.ErrOfficeNotFound):
		NotFound(w, "Office not found")
	case errors.Is(err, office.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, office.ErrMissingOfficeID):
		BadRequest(w, "Office id is missing", nil)

	// Attendance errors
	case errors.Is(err, attendance.ErrAttendanceMapNotFound):
		NotFound(w, "Attendance map not found")
	case errors.Is(err, attendance.ErrVersionConflict):
		Conflict(w, "Attendance was modified concurrently, retry")
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, "Leave end is before its start", nil)
	case errors.Is(err, attendance.ErrNoResolvableIdentity):
		NotFound(w, "Employee has no resolvable identity")

	// Payroll and voucher errors
	case errors.Is(err, payroll.ErrNoEmployees):
		NotFound(w, "Office has no employees configured")
	case errors.Is(err, payroll.ErrClaimOutsideOffice):
		NotFound(w, "Claim belongs to an unknown employee")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, voucher.ErrVoucherNotFound):
		NotFound(w, "Voucher not found")
	case errors.Is(err, voucher.ErrVoucherAlreadyBatched):
		Conflict(w, "Voucher is already part of a payment batch")
	case errors.Is(err, voucher.ErrOpenVoucherExists):
		Conflict(w, "An open voucher already exists for this cycle")

	// Report errors
	case errors.Is(err, report.ErrNoRecipients):
		BadRequest(w, "Report has no recipients", nil)
	case errors.Is(err, report.ErrDeliveryFailed):
		writeJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "DELIVERY_FAILED",
				Message: "Report could not be delivered",
			},
		})

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// IsSkippable reports whether a trigger failed for lack of context that a
// redelivery cannot supply. Such triggers are acknowledged without writes.
func IsSkippable(err error) bool {
	return errors.Is(err, office.ErrOfficeNotFound) ||
		errors.Is(err, office.ErrEmployeeNotFound) ||
		errors.Is(err, office.ErrMissingOfficeID) ||
		errors.Is(err, attendance.ErrNoResolvableIdentity) ||
		errors.Is(err, payroll.ErrClaimOutsideOffice)
}
