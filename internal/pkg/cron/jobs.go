package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
)

// AggregationJobs are the timer-driven halves of the attendance and payroll
// pipelines.
type AggregationJobs struct {
	aggregator attendance.AggregatorService
	payroll    payroll.PayrollService
	staleAfter time.Duration
	now        func() time.Time
}

func NewAggregationJobs(aggregator attendance.AggregatorService, payrollService payroll.PayrollService, staleAfter time.Duration) *AggregationJobs {
	return &AggregationJobs{
		aggregator: aggregator,
		payroll:    payrollService,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (j *AggregationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_weekly_offs", 1*time.Hour, j.MarkWeeklyOffs)
	scheduler.AddJob("mark_branch_holidays", 1*time.Hour, j.MarkBranchHolidays)
	scheduler.AddJob("reconcile_stale_addendum", 1*time.Hour, j.ReconcileStaleAddendum)
	scheduler.AddJob("recompute_vouchers", 24*time.Hour, j.RecomputeVouchers)
}

// MarkWeeklyOffs runs hourly; applying the same weekly off twice is a no-op,
// so each office-local day is marked once whatever the office time zone.
func (j *AggregationJobs) MarkWeeklyOffs(ctx context.Context) error {
	slog.Info("Cron: Starting mark weekly offs job")
	if err := j.aggregator.MarkWeeklyOffs(ctx, j.now()); err != nil {
		return fmt.Errorf("failed to mark weekly offs: %w", err)
	}
	return nil
}

// MarkBranchHolidays runs hourly for the same reason as MarkWeeklyOffs.
func (j *AggregationJobs) MarkBranchHolidays(ctx context.Context) error {
	slog.Info("Cron: Starting mark branch holidays job")
	if err := j.aggregator.MarkBranchHolidays(ctx, j.now()); err != nil {
		return fmt.Errorf("failed to mark branch holidays: %w", err)
	}
	return nil
}

func (j *AggregationJobs) ReconcileStaleAddendum(ctx context.Context) error {
	slog.Info("Cron: Starting reconcile stale addendum job")
	n, err := j.aggregator.ReconcileStaleAddendum(ctx, j.staleAfter)
	if err != nil {
		return fmt.Errorf("failed to reconcile stale addendum: %w", err)
	}
	slog.Info("Cron: Reconciled stale addendum", "corrected", n)
	return nil
}

func (j *AggregationJobs) RecomputeVouchers(ctx context.Context) error {
	slog.Info("Cron: Starting recompute vouchers job")
	n, err := j.payroll.RecomputeOfficeVouchers(ctx, j.now())
	slog.Info("Cron: Recomputed vouchers", "written", n)
	if err != nil {
		return fmt.Errorf("failed to recompute vouchers: %w", err)
	}
	return nil
}
