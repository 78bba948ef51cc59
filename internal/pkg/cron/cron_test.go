package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAggregator struct {
	attendance.AggregatorService
	weeklyOffsAt []time.Time
	holidaysAt   []time.Time
	staleAfter   time.Duration
	err          error
}

func (f *fakeAggregator) MarkWeeklyOffs(ctx context.Context, now time.Time) error {
	f.weeklyOffsAt = append(f.weeklyOffsAt, now)
	return f.err
}

func (f *fakeAggregator) MarkBranchHolidays(ctx context.Context, now time.Time) error {
	f.holidaysAt = append(f.holidaysAt, now)
	return f.err
}

func (f *fakeAggregator) ReconcileStaleAddendum(ctx context.Context, olderThan time.Duration) (int, error) {
	f.staleAfter = olderThan
	return 2, f.err
}

type fakePayroll struct {
	payroll.PayrollService
	calls int
}

func (f *fakePayroll) RecomputeOfficeVouchers(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	return 5, nil
}

// ===== JOB TESTS =====

func TestAggregationJobs_RunOnce(t *testing.T) {
	// Arrange
	agg := &fakeAggregator{}
	pay := &fakePayroll{}
	fixed := time.Date(2025, time.March, 2, 1, 0, 0, 0, time.UTC)
	jobs := NewAggregationJobs(agg, pay, 30*time.Minute)
	jobs.now = func() time.Time { return fixed }

	scheduler := NewScheduler(time.Minute)
	jobs.RegisterJobs(scheduler)

	// Act
	scheduler.RunOnce(context.Background())

	// Assert
	assert.Equal(t, []time.Time{fixed}, agg.weeklyOffsAt)
	assert.Equal(t, []time.Time{fixed}, agg.holidaysAt)
	assert.Equal(t, 30*time.Minute, agg.staleAfter)
	assert.Equal(t, 1, pay.calls)
}

func TestAggregationJobs_WrapsErrors(t *testing.T) {
	boom := errors.New("store unavailable")
	jobs := NewAggregationJobs(&fakeAggregator{err: boom}, &fakePayroll{}, time.Minute)

	err := jobs.MarkWeeklyOffs(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

// ===== SCHEDULER TESTS =====

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	scheduler := NewScheduler(0)
	var runs atomic.Int32
	started := make(chan struct{}, 1)
	scheduler.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()

	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_JobTimeout(t *testing.T) {
	scheduler := NewScheduler(10 * time.Millisecond)
	var deadlineSet bool
	scheduler.AddJob("slow", time.Hour, func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})

	done := make(chan struct{})
	go func() {
		scheduler.RunOnce(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled by its timeout")
	}
	assert.True(t, deadlineSet)
}
