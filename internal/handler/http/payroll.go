package http

import (
	"net/http"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	// Summary
	GetPayrollSummary(w http.ResponseWriter, r *http.Request)

	// Vouchers
	ComputeVoucher(w http.ResponseWriter, r *http.Request)
	AssignBatch(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== SUMMARY ==========

// GetPayrollSummary handles GET /payroll/summary
func (h *payrollHandlerImpl) GetPayrollSummary(w http.ResponseWriter, r *http.Request) {
	officeID, err := middleware.OfficeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month, year, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ComputePayrollSummary(r.Context(), payroll.PayrollSummaryRequest{
		OfficeID: officeID,
		Month:    month,
		Year:     year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== VOUCHERS ==========

// ComputeVoucher handles POST /payroll/vouchers
func (h *payrollHandlerImpl) ComputeVoucher(w http.ResponseWriter, r *http.Request) {
	officeID, err := middleware.OfficeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.ComputeVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	req.OfficeID = officeID

	result, err := h.payrollService.ComputeVoucher(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Voucher computed", result)
}

// AssignBatch handles POST /payroll/vouchers/batch
func (h *payrollHandlerImpl) AssignBatch(w http.ResponseWriter, r *http.Request) {
	officeID, err := middleware.OfficeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.AssignBatchRequest
	if !decode(w, r, &req) {
		return
	}
	req.OfficeID = officeID

	result, err := h.payrollService.AssignBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Vouchers assigned to batch", result)
}
