package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/storage"
	"github.com/xuri/excelize/v2"
)

const (
	payrollSheet = "Payroll"
	summarySheet = "Summary"
)

type ReportServiceImpl struct {
	payrollService payroll.PayrollService
	fileStorage    storage.FileStorage
	emailService   email.EmailService
	now            func() time.Time
}

func NewReportService(payrollService payroll.PayrollService, fileStorage storage.FileStorage, emailService email.EmailService) *ReportServiceImpl {
	return &ReportServiceImpl{
		payrollService: payrollService,
		fileStorage:    fileStorage,
		emailService:   emailService,
		now:            time.Now,
	}
}

// RenderPayrollWorkbook implements report.ReportService.
func (s *ReportServiceImpl) RenderPayrollWorkbook(ctx context.Context, req payroll.PayrollSummaryRequest) (report.Workbook, error) {
	sheet, err := s.payrollService.ComputePayrollSummary(ctx, req)
	if err != nil {
		return report.Workbook{}, err
	}
	return renderWorkbook(sheet, req.Month, req.Year)
}

// SendPayrollReport implements report.ReportService.
func (s *ReportServiceImpl) SendPayrollReport(ctx context.Context, req report.PayrollReportRequest) (report.PayrollReportResult, error) {
	if err := req.Validate(); err != nil {
		return report.PayrollReportResult{}, err
	}
	if len(req.Recipients) == 0 {
		return report.PayrollReportResult{}, report.ErrNoRecipients
	}

	sheet, err := s.payrollService.ComputePayrollSummary(ctx, payroll.PayrollSummaryRequest{
		OfficeID: req.OfficeID,
		Month:    req.Month,
		Year:     req.Year,
	})
	if err != nil {
		return report.PayrollReportResult{}, err
	}

	wb, err := renderWorkbook(sheet, req.Month, req.Year)
	if err != nil {
		return report.PayrollReportResult{}, err
	}

	path := fmt.Sprintf("payroll/%s/%s", req.OfficeID, wb.FileName)
	info, err := s.fileStorage.Upload(ctx, bytes.NewReader(wb.Content), path, report.ContentTypeXLSX)
	if err != nil {
		return report.PayrollReportResult{}, errors.Join(report.ErrDeliveryFailed, fmt.Errorf("failed to store report: %w", err))
	}

	data := email.PayrollReportData{
		OfficeName:    officeLabel(sheet),
		CycleStart:    sheet.CycleStart,
		CycleEnd:      sheet.CycleEnd,
		EmployeeCount: len(sheet.Summaries),
		GeneratedAt:   sheet.GeneratedAt,
		FileName:      wb.FileName,
		URL:           info.URL,
	}
	attachment := email.Attachment{
		FileName:    wb.FileName,
		ContentType: report.ContentTypeXLSX,
		Content:     wb.Content,
	}
	if err := s.emailService.SendPayrollReport(ctx, req.Recipients, data, attachment); err != nil {
		return report.PayrollReportResult{}, errors.Join(report.ErrDeliveryFailed, fmt.Errorf("failed to email report: %w", err))
	}

	slog.Info("Payroll report delivered",
		"office_id", req.OfficeID,
		"cycle_start", sheet.CycleStart,
		"path", info.Path,
		"recipients", len(req.Recipients),
	)

	return report.PayrollReportResult{
		FileName:   wb.FileName,
		Path:       info.Path,
		URL:        info.URL,
		Size:       info.FileSize,
		CycleStart: sheet.CycleStart,
		CycleEnd:   sheet.CycleEnd,
		Recipients: req.Recipients,
		SentAt:     s.now().UTC().Format(time.RFC3339),
	}, nil
}

func officeLabel(sheet payroll.PayrollSheet) string {
	if sheet.OfficeName != "" {
		return sheet.OfficeName
	}
	return sheet.OfficeID
}

func renderWorkbook(sheet payroll.PayrollSheet, month, year int) (report.Workbook, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(payrollSheet); err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}

	title := fmt.Sprintf("PAYROLL %s: %s - %s", officeLabel(sheet), sheet.CycleStart, sheet.CycleEnd)

	if err := writePayrollRows(f, sheet, title, titleStyle, headerStyle); err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}
	if err := writeSummaries(f, sheet, title, titleStyle, headerStyle); err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}

	if idx, err := f.GetSheetIndex(payrollSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return report.Workbook{}, errors.Join(report.ErrRenderFailed, err)
	}

	return report.Workbook{
		FileName: fmt.Sprintf("payroll_%s_%04d-%02d.xlsx", sheet.OfficeID, year, month),
		Content:  buf.Bytes(),
	}, nil
}

// writeRow writes values starting at column A of row.
func writeRow(f *excelize.File, name string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(name, cell, &values)
}

func styleHeader(f *excelize.File, name string, row, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(name, fmt.Sprintf("A%d", row), last, style)
}

func writePayrollRows(f *excelize.File, sheet payroll.PayrollSheet, title string, titleStyle, headerStyle int) error {
	if err := f.SetCellValue(payrollSheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(payrollSheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	headers := []any{"Phone Number", "Employee Name", "Employee Code", "Date", "Type", "Attendance"}
	if err := writeRow(f, payrollSheet, 3, headers...); err != nil {
		return err
	}
	if err := styleHeader(f, payrollSheet, 3, len(headers), headerStyle); err != nil {
		return err
	}

	row := 4
	for _, r := range sheet.Rows {
		var att any
		if r.Attendance != nil {
			att = *r.Attendance
		}
		if err := writeRow(f, payrollSheet, row, r.PhoneNumber, r.EmployeeName, r.EmployeeCode, r.Date, r.Type, att); err != nil {
			return err
		}
		row++
	}

	if err := f.SetColWidth(payrollSheet, "A", "C", 18); err != nil {
		return err
	}
	return f.SetColWidth(payrollSheet, "D", "F", 12)
}

func writeSummaries(f *excelize.File, sheet payroll.PayrollSheet, title string, titleStyle, headerStyle int) error {
	if err := f.SetCellValue(summarySheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	headers := []any{"Phone Number", "Employee Name", "Employee Code", "Base Location"}
	for _, lt := range sheet.LeaveTypes {
		headers = append(headers, lt)
	}
	headers = append(headers, "AR", "Holiday", "Weekly Off", "Late", "MTD Attendance", "Total Days", "Policy Missing")
	if err := writeRow(f, summarySheet, 3, headers...); err != nil {
		return err
	}
	if err := styleHeader(f, summarySheet, 3, len(headers), headerStyle); err != nil {
		return err
	}

	row := 4
	for _, s := range sheet.Summaries {
		values := []any{s.PhoneNumber, s.EmployeeName, s.EmployeeCode, s.BaseLocation}
		for _, lt := range sheet.LeaveTypes {
			values = append(values, s.LeaveCounts[lt])
		}
		mtd, _ := s.MTDAttendance.Float64()
		values = append(values, s.ARCount, s.HolidayCount, s.WeeklyOffCount, s.LateCount, mtd, s.TotalDays, s.PolicyMissing)
		if err := writeRow(f, summarySheet, row, values...); err != nil {
			return err
		}
		row++
	}

	return f.SetColWidth(summarySheet, "A", "D", 18)
}

var _ report.ReportService = (*ReportServiceImpl)(nil)
