package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
)

// ========================================
// PAYROLL REPORT
// ========================================

// PayrollReportRequest renders the payroll sheet of the cycle starting in
// Month/Year and mails it to Recipients.
type PayrollReportRequest struct {
	OfficeID   string   `json:"office_id"`
	Month      int      `json:"month"`
	Year       int      `json:"year"`
	Recipients []string `json:"recipients"`
}

func (r *PayrollReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "office_id",
			Message: "office_id is required",
		})
	}

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(r.Recipients) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "recipients",
			Message: "at least one recipient is required",
		})
	}
	for _, to := range r.Recipients {
		if !validator.IsValidEmail(to) {
			errs = append(errs, validator.ValidationError{
				Field:   "recipients",
				Message: fmt.Sprintf("%q is not a valid email address", to),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PayrollReportResult describes a delivered report.
type PayrollReportResult struct {
	FileName   string   `json:"file_name"`
	Path       string   `json:"path"`
	URL        string   `json:"url"`
	Size       int64    `json:"size"`
	CycleStart string   `json:"cycle_start"`
	CycleEnd   string   `json:"cycle_end"`
	Recipients []string `json:"recipients"`
	SentAt     string   `json:"sent_at"`
}

// Workbook is a rendered spreadsheet.
type Workbook struct {
	FileName string
	Content  []byte
}

// ContentTypeXLSX is the MIME type of rendered workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
