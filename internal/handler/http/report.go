package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// DownloadPayrollWorkbook streams the XLSX payroll sheet.
	DownloadPayrollWorkbook(w http.ResponseWriter, r *http.Request)

	// SendPayrollReport stores the workbook and mails it.
	SendPayrollReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// DownloadPayrollWorkbook handles GET /payroll/reports/workbook
func (h *reportHandlerImpl) DownloadPayrollWorkbook(w http.ResponseWriter, r *http.Request) {
	officeID, err := middleware.OfficeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month, year, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	workbook, err := h.reportService.RenderPayrollWorkbook(r.Context(), payroll.PayrollSummaryRequest{
		OfficeID: officeID,
		Month:    month,
		Year:     year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workbook.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(workbook.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(workbook.Content)
}

// SendPayrollReport handles POST /payroll/reports
func (h *reportHandlerImpl) SendPayrollReport(w http.ResponseWriter, r *http.Request) {
	officeID, err := middleware.OfficeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req report.PayrollReportRequest
	if !decode(w, r, &req) {
		return
	}
	req.OfficeID = officeID

	result, err := h.reportService.SendPayrollReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll report sent", result)
}
