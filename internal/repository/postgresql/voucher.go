package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type voucherRepository struct {
	db *database.DB
}

func NewVoucherRepository(db *database.DB) voucher.VoucherRepository {
	return &voucherRepository{db: db}
}

const voucherColumns = `id, office_id, beneficiary_id, cycle_start, cycle_end, type,
	attendance_count, amount, batch_id, created_at, updated_at`

func scanVoucher(row pgx.Row) (voucher.Voucher, error) {
	var v voucher.Voucher
	err := row.Scan(
		&v.ID, &v.OfficeID, &v.BeneficiaryID, &v.CycleStart, &v.CycleEnd, &v.Type,
		&v.AttendanceCount, &v.Amount, &v.BatchID, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// FindOpen implements voucher.VoucherRepository.
func (r *voucherRepository) FindOpen(ctx context.Context, key voucher.OpenKey) (*voucher.Voucher, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE office_id = $1 AND beneficiary_id = $2 AND cycle_start = $3 AND cycle_end = $4
		  AND type = $5 AND batch_id IS NULL
		FOR UPDATE`

	v, err := scanVoucher(q.QueryRow(ctx, query, key.OfficeID, key.BeneficiaryID, key.CycleStart, key.CycleEnd, key.Type))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open voucher: %w", err)
	}
	return &v, nil
}

// Create implements voucher.VoucherRepository.
func (r *voucherRepository) Create(ctx context.Context, v voucher.Voucher) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO vouchers (id, office_id, beneficiary_id, cycle_start, cycle_end, type,
			attendance_count, amount, batch_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $10)
	`
	_, err := q.Exec(ctx, query, v.ID, v.OfficeID, v.BeneficiaryID, v.CycleStart, v.CycleEnd, v.Type,
		v.AttendanceCount, v.Amount, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return voucher.ErrOpenVoucherExists
		}
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	return nil
}

// Update implements voucher.VoucherRepository.
func (r *voucherRepository) Update(ctx context.Context, v voucher.Voucher) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE vouchers
		SET attendance_count = $1, amount = $2, updated_at = $3
		WHERE id = $4 AND office_id = $5 AND batch_id IS NULL
	`
	tag, err := q.Exec(ctx, query, v.AttendanceCount, v.Amount, v.UpdatedAt, v.ID, v.OfficeID)
	if err != nil {
		return fmt.Errorf("failed to update voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrVoucherAlreadyBatched
	}
	return nil
}

// ListByCycle implements voucher.VoucherRepository.
func (r *voucherRepository) ListByCycle(ctx context.Context, officeID, cycleStart, cycleEnd string) ([]voucher.Voucher, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE office_id = $1 AND cycle_start = $2 AND cycle_end = $3
		ORDER BY beneficiary_id, type, created_at`

	rows, err := q.Query(ctx, query, officeID, cycleStart, cycleEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []voucher.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vouchers: %w", err)
	}
	return vouchers, nil
}

// AssignBatch implements voucher.VoucherRepository.
func (r *voucherRepository) AssignBatch(ctx context.Context, officeID string, ids []string, batchID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE vouchers
		SET batch_id = $1, updated_at = NOW()
		WHERE office_id = $2 AND id = ANY($3::uuid[]) AND batch_id IS NULL
	`
	tag, err := q.Exec(ctx, query, batchID, officeID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to assign voucher batch: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

type claimRepository struct {
	db *database.DB
}

func NewClaimRepository(db *database.DB) voucher.ClaimRepository {
	return &claimRepository{db: db}
}

// Upsert implements voucher.ClaimRepository.
func (r *claimRepository) Upsert(ctx context.Context, c voucher.ReimbursementClaim) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO reimbursement_claims (id, office_id, phone_number, claim_type, amount, claimed_at, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			claim_type = EXCLUDED.claim_type,
			amount = EXCLUDED.amount,
			claimed_at = EXCLUDED.claimed_at,
			status = EXCLUDED.status,
			updated_at = NOW()
	`
	_, err := q.Exec(ctx, query, c.ID, c.OfficeID, c.PhoneNumber, c.ClaimType, c.Amount,
		time.UnixMilli(c.Timestamp), c.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert reimbursement claim: %w", err)
	}
	return nil
}

// SumConfirmed implements voucher.ClaimRepository.
func (r *claimRepository) SumConfirmed(ctx context.Context, officeID, phoneNumber string, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM reimbursement_claims
		WHERE office_id = $1 AND phone_number = $2 AND status = $3
		  AND claimed_at >= $4 AND claimed_at < $5
	`
	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, officeID, phoneNumber, voucher.ClaimConfirmed, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum reimbursement claims: %w", err)
	}
	return total, nil
}
