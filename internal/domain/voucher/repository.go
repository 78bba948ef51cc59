package voucher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type VoucherRepository interface {
	// FindOpen returns the open voucher for key, or nil.
	FindOpen(ctx context.Context, key OpenKey) (*Voucher, error)

	// Create inserts a new open voucher. A second open voucher for the same
	// key returns ErrOpenVoucherExists.
	Create(ctx context.Context, v Voucher) error

	// Update rewrites an open voucher's count, amount and updatedAt.
	// Batched vouchers return ErrVoucherAlreadyBatched.
	Update(ctx context.Context, v Voucher) error

	// ListByCycle returns every voucher of the office for the cycle.
	ListByCycle(ctx context.Context, officeID, cycleStart, cycleEnd string) ([]Voucher, error)

	// AssignBatch freezes the given open vouchers under batchID and returns
	// how many were claimed.
	AssignBatch(ctx context.Context, officeID string, ids []string, batchID string) (int, error)
}

type ClaimRepository interface {
	Upsert(ctx context.Context, c ReimbursementClaim) error

	// SumConfirmed adds up confirmed claim amounts with timestamps in
	// [from, to).
	SumConfirmed(ctx context.Context, officeID, phoneNumber string, from, to time.Time) (decimal.Decimal, error)
}
