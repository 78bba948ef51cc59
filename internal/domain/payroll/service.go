package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
)

// PayrollService turns attendance maps into vouchers and payroll sheets.
type PayrollService interface {
	// ComputeVoucher recomputes and merges the ATTENDANCE voucher of one
	// employee for the cycle starting in req.Month/req.Year.
	ComputeVoucher(ctx context.Context, req ComputeVoucherRequest) (voucher.Voucher, error)

	// RecomputeVoucherForDay refreshes the ATTENDANCE voucher of the cycle
	// containing day.
	RecomputeVoucherForDay(ctx context.Context, officeID, phoneNumber string, day time.Time) error

	// RecomputeOfficeVouchers refreshes the current-cycle voucher of every
	// employee of every office and returns how many were written.
	RecomputeOfficeVouchers(ctx context.Context, now time.Time) (int, error)

	// ComputePayrollSummary builds the payroll sheet of an office cycle.
	ComputePayrollSummary(ctx context.Context, req PayrollSummaryRequest) (PayrollSheet, error)

	// HandleReimbursement stores a claim and refreshes the REIMBURSEMENT
	// voucher of its cycle.
	HandleReimbursement(ctx context.Context, req ReimbursementRequest) (voucher.Voucher, error)

	// AssignBatch freezes open vouchers into a payment batch.
	AssignBatch(ctx context.Context, req AssignBatchRequest) (AssignBatchResponse, error)
}
