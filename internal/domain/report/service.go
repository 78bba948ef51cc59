package report

import (
	"context"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
)

// ReportService renders payroll sheets and delivers them.
type ReportService interface {
	// RenderPayrollWorkbook builds the XLSX workbook of an office cycle.
	RenderPayrollWorkbook(ctx context.Context, req payroll.PayrollSummaryRequest) (Workbook, error)

	// SendPayrollReport renders, stores and mails the payroll workbook.
	SendPayrollReport(ctx context.Context, req PayrollReportRequest) (PayrollReportResult, error)
}
