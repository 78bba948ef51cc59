package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/response"
)

// TriggerHandler receives document-write events from the dispatcher. A 2xx
// answer acknowledges the event; any other status asks for redelivery.
type TriggerHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	Regularization(w http.ResponseWriter, r *http.Request)
	Leave(w http.ResponseWriter, r *http.Request)
	BranchHoliday(w http.ResponseWriter, r *http.Request)
	WeeklyOff(w http.ResponseWriter, r *http.Request)
	Reimbursement(w http.ResponseWriter, r *http.Request)
	SyncOffice(w http.ResponseWriter, r *http.Request)
}

// TriggerResult is the acknowledgement body of a trigger.
type TriggerResult struct {
	Trigger string `json:"trigger"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

type triggerHandlerImpl struct {
	aggregator     attendance.AggregatorService
	payrollService payroll.PayrollService
	officeService  office.OfficeService
}

func NewTriggerHandler(aggregator attendance.AggregatorService, payrollService payroll.PayrollService, officeService office.OfficeService) TriggerHandler {
	return &triggerHandlerImpl{
		aggregator:     aggregator,
		payrollService: payrollService,
		officeService:  officeService,
	}
}

// decode reads a JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func acknowledge(w http.ResponseWriter, trigger string, err error) {
	if err == nil {
		response.SuccessWithMessage(w, "Trigger applied", TriggerResult{Trigger: trigger})
		return
	}
	if response.IsSkippable(err) {
		slog.Warn("Trigger skipped", "trigger", trigger, "reason", err)
		response.Accepted(w, "Trigger skipped", TriggerResult{Trigger: trigger, Skipped: true, Reason: err.Error()})
		return
	}
	slog.Error("Trigger failed", "trigger", trigger, "error", err)
	response.HandleError(w, err)
}

// CheckIn handles POST /triggers/check-ins
func (h *triggerHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if !decode(w, r, &req) {
		return
	}
	acknowledge(w, "check_in", h.aggregator.HandleCheckIn(r.Context(), req))
}

// Regularization handles POST /triggers/attendance-regularizations
func (h *triggerHandlerImpl) Regularization(w http.ResponseWriter, r *http.Request) {
	var req attendance.RegularizationRequest
	if !decode(w, r, &req) {
		return
	}
	acknowledge(w, "regularization", h.aggregator.HandleRegularization(r.Context(), req))
}

// Leave handles POST /triggers/leaves
func (h *triggerHandlerImpl) Leave(w http.ResponseWriter, r *http.Request) {
	var req attendance.LeaveRequest
	if !decode(w, r, &req) {
		return
	}
	acknowledge(w, "leave", h.aggregator.HandleLeave(r.Context(), req))
}

// BranchHoliday handles POST /triggers/branch-holidays
func (h *triggerHandlerImpl) BranchHoliday(w http.ResponseWriter, r *http.Request) {
	var req attendance.BranchHolidayRequest
	if !decode(w, r, &req) {
		return
	}
	acknowledge(w, "branch_holiday", h.aggregator.HandleBranchHoliday(r.Context(), req))
}

// WeeklyOff handles POST /triggers/weekly-offs
func (h *triggerHandlerImpl) WeeklyOff(w http.ResponseWriter, r *http.Request) {
	var req attendance.WeeklyOffRequest
	if !decode(w, r, &req) {
		return
	}
	acknowledge(w, "weekly_off", h.aggregator.HandleWeeklyOff(r.Context(), req))
}

// Reimbursement handles POST /triggers/reimbursements
func (h *triggerHandlerImpl) Reimbursement(w http.ResponseWriter, r *http.Request) {
	var req payroll.ReimbursementRequest
	if !decode(w, r, &req) {
		return
	}
	_, err := h.payrollService.HandleReimbursement(r.Context(), req)
	acknowledge(w, "reimbursement", err)
}

// SyncOffice handles PUT /triggers/offices
func (h *triggerHandlerImpl) SyncOffice(w http.ResponseWriter, r *http.Request) {
	var req office.SyncOfficeRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.officeService.SyncOffice(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Office synced", TriggerResult{Trigger: "office_sync"})
}
