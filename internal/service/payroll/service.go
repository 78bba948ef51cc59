package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/cycle"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	tx          database.Transactor
	officeRepo  office.OfficeRepository
	mapRepo     attendance.MapRepository
	voucherRepo voucher.VoucherRepository
	claimRepo   voucher.ClaimRepository
	now         func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	officeRepo office.OfficeRepository,
	mapRepo attendance.MapRepository,
	voucherRepo voucher.VoucherRepository,
	claimRepo voucher.ClaimRepository,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:          tx,
		officeRepo:  officeRepo,
		mapRepo:     mapRepo,
		voucherRepo: voucherRepo,
		claimRepo:   claimRepo,
		now:         time.Now,
	}
}

func (s *PayrollServiceImpl) getOffice(ctx context.Context, officeID string) (office.Office, error) {
	o, err := s.officeRepo.FindOne(ctx, officeID)
	if err != nil {
		return office.Office{}, fmt.Errorf("failed to get office: %w", err)
	}
	if o == nil {
		return office.Office{}, office.ErrOfficeNotFound
	}
	return *o, nil
}

// ========== VOUCHERS ==========

// ComputeVoucher implements payroll.PayrollService.
func (s *PayrollServiceImpl) ComputeVoucher(ctx context.Context, req payroll.ComputeVoucherRequest) (voucher.Voucher, error) {
	if err := req.Validate(); err != nil {
		return voucher.Voucher{}, err
	}

	o, err := s.getOffice(ctx, req.OfficeID)
	if err != nil {
		return voucher.Voucher{}, err
	}
	policy, ok := o.Employee(req.PhoneNumber)
	if !ok {
		return voucher.Voucher{}, office.ErrEmployeeNotFound
	}

	c := cycle.New(o.FirstDay(), time.Month(req.Month), req.Year, o.Location())
	return s.computeAttendanceVoucher(ctx, o, policy, c)
}

// RecomputeVoucherForDay implements payroll.PayrollService.
func (s *PayrollServiceImpl) RecomputeVoucherForDay(ctx context.Context, officeID, phoneNumber string, day time.Time) error {
	o, err := s.getOffice(ctx, officeID)
	if err != nil {
		return err
	}
	policy, ok := o.Employee(phoneNumber)
	if !ok {
		return office.ErrEmployeeNotFound
	}

	c := cycle.For(o.FirstDay(), day.In(o.Location()))
	_, err = s.computeAttendanceVoucher(ctx, o, policy, c)
	return err
}

// RecomputeOfficeVouchers implements payroll.PayrollService.
func (s *PayrollServiceImpl) RecomputeOfficeVouchers(ctx context.Context, now time.Time) (int, error) {
	offices, err := s.officeRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list offices: %w", err)
	}

	written := 0
	var errs []error
	for _, o := range offices {
		c := cycle.For(o.FirstDay(), now.In(o.Location()))
		for _, policy := range o.SortedEmployees() {
			if _, err := s.computeAttendanceVoucher(ctx, o, policy, c); err != nil {
				slog.Error("Failed to recompute voucher",
					"office_id", o.ID, "phone_number", policy.PhoneNumber, "error", err)
				errs = append(errs, fmt.Errorf("office %s employee %s: %w", o.ID, policy.PhoneNumber, err))
				continue
			}
			written++
		}
	}
	return written, errors.Join(errs...)
}

// computeAttendanceVoucher sums the cycle's attendance across the previous
// and current calendar month maps. A missing map contributes zero.
func (s *PayrollServiceImpl) computeAttendanceVoucher(ctx context.Context, o office.Office, policy office.EmployeePolicy, c cycle.Cycle) (voucher.Voucher, error) {
	split := cycle.SplitCycle(c)
	count := decimal.Zero

	if len(split.FirstRange) > 0 {
		prev, err := s.mapRepo.FindOne(ctx, attendance.Key{
			OfficeID:    o.ID,
			PhoneNumber: policy.PhoneNumber,
			Month:       split.FirstMonth,
			Year:        split.FirstYear,
		})
		if err != nil {
			return voucher.Voucher{}, fmt.Errorf("failed to get previous month attendance: %w", err)
		}
		count = count.Add(prev.Sum(split.FirstRange))
	}

	curr, err := s.mapRepo.FindOne(ctx, attendance.Key{
		OfficeID:    o.ID,
		PhoneNumber: policy.PhoneNumber,
		Month:       split.SecondMonth,
		Year:        split.SecondYear,
	})
	if err != nil {
		return voucher.Voucher{}, fmt.Errorf("failed to get current month attendance: %w", err)
	}
	count = count.Add(curr.Sum(split.SecondRange))

	amount := decimal.Zero
	if policy.DailyRate != nil {
		amount = count.Mul(*policy.DailyRate).Round(2)
	}

	return s.mergeVoucher(ctx, o.ID, policy.PhoneNumber, c, voucher.TypeAttendance, count, amount)
}

// mergeVoucher updates the open voucher of the key or creates one, keeping
// createdAt of an existing voucher. A batched voucher is never touched; a new
// open one is created next to it.
func (s *PayrollServiceImpl) mergeVoucher(ctx context.Context, officeID, beneficiaryID string, c cycle.Cycle, typ voucher.Type, count, amount decimal.Decimal) (voucher.Voucher, error) {
	cycleStart, cycleEnd := c.Formatted()
	key := voucher.OpenKey{
		OfficeID:      officeID,
		BeneficiaryID: beneficiaryID,
		CycleStart:    cycleStart,
		CycleEnd:      cycleEnd,
		Type:          typ,
	}

	var result voucher.Voucher
	merge := func(ctx context.Context) error {
		now := s.now()
		existing, err := s.voucherRepo.FindOpen(ctx, key)
		if err != nil {
			return err
		}

		if existing != nil {
			v := *existing
			v.AttendanceCount = count
			v.Amount = amount
			v.UpdatedAt = now
			if err := s.voucherRepo.Update(ctx, v); err != nil {
				return err
			}
			result = v
			return nil
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate voucher id: %w", err)
		}
		v := voucher.Voucher{
			ID:              id.String(),
			OfficeID:        officeID,
			BeneficiaryID:   beneficiaryID,
			CycleStart:      cycleStart,
			CycleEnd:        cycleEnd,
			Type:            typ,
			AttendanceCount: count,
			Amount:          amount,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.voucherRepo.Create(ctx, v); err != nil {
			return err
		}
		result = v
		return nil
	}

	// A concurrent writer may create the open voucher between FindOpen and
	// Create, or batch it between FindOpen and Update; one more pass sees it.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.tx.WithinTransaction(ctx, merge)
		if !errors.Is(err, voucher.ErrOpenVoucherExists) && !errors.Is(err, voucher.ErrVoucherAlreadyBatched) {
			break
		}
	}
	if err != nil {
		return voucher.Voucher{}, fmt.Errorf("failed to merge voucher: %w", err)
	}
	return result, nil
}

// ========== REIMBURSEMENTS ==========

// HandleReimbursement implements payroll.PayrollService.
func (s *PayrollServiceImpl) HandleReimbursement(ctx context.Context, req payroll.ReimbursementRequest) (voucher.Voucher, error) {
	if err := req.Validate(); err != nil {
		return voucher.Voucher{}, err
	}

	o, err := s.getOffice(ctx, req.OfficeID)
	if err != nil {
		return voucher.Voucher{}, err
	}
	if _, ok := o.Employee(req.PhoneNumber); !ok {
		return voucher.Voucher{}, payroll.ErrClaimOutsideOffice
	}

	claim := voucher.ReimbursementClaim{
		ID:          req.ClaimID,
		OfficeID:    req.OfficeID,
		PhoneNumber: req.PhoneNumber,
		ClaimType:   req.ClaimType,
		Amount:      req.Amount,
		Timestamp:   req.Timestamp,
		Status:      req.Status,
	}

	c := cycle.For(o.FirstDay(), cycle.FromMillis(req.Timestamp, o.Location()))

	var total decimal.Decimal
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.claimRepo.Upsert(ctx, claim); err != nil {
			return err
		}
		total, err = s.claimRepo.SumConfirmed(ctx, o.ID, req.PhoneNumber, c.Start, c.End.AddDate(0, 0, 1))
		return err
	})
	if err != nil {
		return voucher.Voucher{}, err
	}

	// The merge runs after the claim commits: each merge attempt needs its own
	// transaction, since a failed insert aborts the transaction it ran in.
	return s.mergeVoucher(ctx, o.ID, req.PhoneNumber, c, voucher.TypeReimbursement, decimal.Zero, total)
}

// AssignBatch implements payroll.PayrollService.
func (s *PayrollServiceImpl) AssignBatch(ctx context.Context, req payroll.AssignBatchRequest) (payroll.AssignBatchResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AssignBatchResponse{}, err
	}

	n, err := s.voucherRepo.AssignBatch(ctx, req.OfficeID, req.VoucherIDs, req.BatchID)
	if err != nil {
		return payroll.AssignBatchResponse{}, err
	}
	return payroll.AssignBatchResponse{BatchID: req.BatchID, Assigned: n}, nil
}

// ========== SUMMARY ==========

// ComputePayrollSummary implements payroll.PayrollService.
func (s *PayrollServiceImpl) ComputePayrollSummary(ctx context.Context, req payroll.PayrollSummaryRequest) (payroll.PayrollSheet, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSheet{}, err
	}

	o, err := s.getOffice(ctx, req.OfficeID)
	if err != nil {
		return payroll.PayrollSheet{}, err
	}

	c := cycle.New(o.FirstDay(), time.Month(req.Month), req.Year, o.Location())
	split := cycle.SplitCycle(c)

	var prevMaps, currMaps []attendance.AttendanceMap
	g, gCtx := errgroup.WithContext(ctx)

	if len(split.FirstRange) > 0 {
		g.Go(func() error {
			maps, err := s.mapRepo.ListByMonth(gCtx, o.ID, split.FirstMonth, split.FirstYear)
			if err != nil {
				return err
			}
			prevMaps = maps
			return nil
		})
	}

	g.Go(func() error {
		maps, err := s.mapRepo.ListByMonth(gCtx, o.ID, split.SecondMonth, split.SecondYear)
		if err != nil {
			return err
		}
		currMaps = maps
		return nil
	})

	if err := g.Wait(); err != nil {
		return payroll.PayrollSheet{}, fmt.Errorf("failed to load attendance maps: %w", err)
	}

	employees := payrollInputs(o, append(prevMaps, currMaps...))
	if len(employees) == 0 {
		return payroll.PayrollSheet{}, payroll.ErrNoEmployees
	}

	sheet := payroll.BuildPayrollSheet(employees, c.Days())
	sheet.OfficeID = o.ID
	sheet.OfficeName = o.Name
	sheet.CycleStart, sheet.CycleEnd = c.Formatted()
	sheet.GeneratedAt = s.now().UTC().Format(time.RFC3339)

	for _, sum := range sheet.Summaries {
		if sum.PolicyMissing {
			slog.Warn("Employee has attendance but no policy", "office_id", o.ID, "phone_number", sum.PhoneNumber)
		}
	}
	return sheet, nil
}

// payrollInputs pairs every configured employee and every phone number with
// stored attendance. Phone numbers the office no longer configures keep their
// rows with a nil policy.
func payrollInputs(o office.Office, maps []attendance.AttendanceMap) []payroll.EmployeeInput {
	byPhone := make(map[string]*payroll.EmployeeInput)

	for _, p := range o.SortedEmployees() {
		policy := p
		byPhone[p.PhoneNumber] = &payroll.EmployeeInput{PhoneNumber: p.PhoneNumber, Policy: &policy}
	}
	for _, m := range maps {
		in, ok := byPhone[m.PhoneNumber]
		if !ok {
			in = &payroll.EmployeeInput{PhoneNumber: m.PhoneNumber}
			byPhone[m.PhoneNumber] = in
		}
		in.Maps = append(in.Maps, m)
	}

	out := make([]payroll.EmployeeInput, 0, len(byPhone))
	for _, in := range byPhone {
		out = append(out, *in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)
