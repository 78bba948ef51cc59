package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/addendum"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/feed"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/batch"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/cycle"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/utils"
)

// Config holds aggregator configuration
type Config struct {
	ConflictRetries int // default: 3
	ChunkSize       int // default: batch.DefaultChunkSize
	StaleScanLimit  int // default: 5000
}

type AggregatorServiceImpl struct {
	tx        database.Transactor
	offices   office.OfficeRepository
	maps      attendance.MapRepository
	addendum  addendum.AddendumRepository
	feed      feed.FeedRepository
	publisher feed.Publisher
	vouchers  attendance.VoucherRecomputer
	config    Config
	now       func() time.Time
}

// NewAggregatorService wires the aggregator. publisher and vouchers may be
// nil, in which case committed changes are neither streamed nor propagated to
// vouchers.
func NewAggregatorService(
	tx database.Transactor,
	officeRepository office.OfficeRepository,
	mapRepository attendance.MapRepository,
	addendumRepository addendum.AddendumRepository,
	feedRepository feed.FeedRepository,
	publisher feed.Publisher,
	vouchers attendance.VoucherRecomputer,
	cfg Config,
) *AggregatorServiceImpl {
	if cfg.ConflictRetries <= 0 {
		cfg.ConflictRetries = 3
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = batch.DefaultChunkSize
	}
	if cfg.StaleScanLimit <= 0 {
		cfg.StaleScanLimit = 5000
	}
	return &AggregatorServiceImpl{
		tx:        tx,
		offices:   officeRepository,
		maps:      mapRepository,
		addendum:  addendumRepository,
		feed:      feedRepository,
		publisher: publisher,
		vouchers:  vouchers,
		config:    cfg,
		now:       time.Now,
	}
}

// ========================================
// EVENT APPLICATION
// ========================================

// dayEvent is one event targeted at one office-local calendar day.
type dayEvent struct {
	day   time.Time
	event attendance.Event
}

// change is every day event of one employee produced by a trigger.
type change struct {
	policy office.EmployeePolicy
	events []dayEvent
}

// outcome is what a change left behind once committed.
type outcome struct {
	policy  office.EmployeePolicy
	days    []time.Time
	records []feed.Record
}

// applyChanges commits all changes in one transaction, retrying the whole
// unit when an attendance map was modified concurrently.
func (s *AggregatorServiceImpl) applyChanges(ctx context.Context, o office.Office, changes []change, src feed.Source) error {
	var outcomes []outcome

	err := s.commit(ctx, func(ctx context.Context) error {
		outcomes = outcomes[:0]
		for _, c := range changes {
			out, err := s.applyEmployee(ctx, o, c, src)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, out)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, o, outcomes)
	return nil
}

func (s *AggregatorServiceImpl) commit(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.config.ConflictRetries; attempt++ {
		err = s.tx.WithinTransaction(ctx, fn)
		if !errors.Is(err, attendance.ErrVersionConflict) {
			return err
		}
		slog.Warn("Attendance map modified concurrently, retrying", "attempt", attempt)
	}
	return err
}

// monthGroup collects the events of one employee-month in arrival order.
type monthGroup struct {
	key    attendance.Key
	events []dayEvent
}

func groupByMonth(officeID, phoneNumber string, events []dayEvent) []monthGroup {
	var groups []monthGroup
	index := make(map[attendance.Key]int)
	for _, e := range events {
		key := attendance.KeyFor(officeID, phoneNumber, e.day)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, monthGroup{key: key})
		}
		groups[i].events = append(groups[i].events, e)
	}
	return groups
}

// applyEmployee folds one employee's events into the affected maps, writes
// each changed map once and appends one feed record per changed day.
func (s *AggregatorServiceImpl) applyEmployee(ctx context.Context, o office.Office, c change, src feed.Source) (outcome, error) {
	out := outcome{policy: c.policy}

	for _, g := range groupByMonth(o.ID, c.policy.PhoneNumber, c.events) {
		m, err := s.maps.FetchOrDefault(ctx, g.key)
		if err != nil {
			return outcome{}, fmt.Errorf("failed to fetch attendance map: %w", err)
		}

		var changed []time.Time
		seen := make(map[int]bool)
		for _, e := range g.events {
			rec, applied := attendance.ApplyEvent(m.Day(e.day.Day()), e.event, c.policy, e.day)
			if !applied {
				continue
			}
			m.SetDay(e.day.Day(), rec)
			if !seen[e.day.Day()] {
				seen[e.day.Day()] = true
				changed = append(changed, e.day)
			}
		}
		if len(changed) == 0 {
			continue
		}

		if err := s.maps.MergeWrite(ctx, &m); err != nil {
			return outcome{}, err
		}

		for _, day := range changed {
			rec := feed.NewRecord(c.policy.UID, o.ID, o.Name, day, m.Day(day.Day()), src)
			if err := s.feed.Append(ctx, rec); err != nil {
				return outcome{}, fmt.Errorf("failed to append feed record: %w", err)
			}
			out.records = append(out.records, rec)
		}
		out.days = append(out.days, changed...)
	}

	return out, nil
}

// afterCommit streams the committed feed records and refreshes the voucher of
// every touched cycle. Failures here are logged; the next event or the
// voucher job recomputes the same state.
func (s *AggregatorServiceImpl) afterCommit(ctx context.Context, o office.Office, outcomes []outcome) {
	for _, out := range outcomes {
		if s.publisher != nil {
			for _, rec := range out.records {
				s.publisher.Publish(rec)
			}
		}

		if s.vouchers == nil {
			continue
		}
		cycles := make(map[time.Time]bool)
		for _, day := range out.days {
			c := cycle.For(o.FirstDay(), day)
			if cycles[c.Start] {
				continue
			}
			cycles[c.Start] = true
			if err := s.vouchers.RecomputeVoucherForDay(ctx, o.ID, out.policy.PhoneNumber, day); err != nil {
				slog.Error("Failed to recompute voucher",
					"office_id", o.ID, "phone_number", out.policy.PhoneNumber,
					"cycle_start", c.Start.Format(cycle.DateFormat), "error", err)
			}
		}
	}
}

// applyFanOut commits per-employee changes in chunks. A failed chunk does not
// undo the chunks committed before it.
func (s *AggregatorServiceImpl) applyFanOut(ctx context.Context, o office.Office, name string, changes []change, src feed.Source) error {
	if len(changes) == 0 {
		return nil
	}
	w := batch.NewChunkedWriter(name, s.config.ChunkSize, func(ctx context.Context, chunk []change) error {
		return s.applyChanges(ctx, o, chunk, src)
	})
	w.Add(changes...)

	res := w.CommitAll(ctx)
	if err := res.Err(); err != nil {
		slog.Error("Fan-out partially failed",
			"office_id", o.ID, "job", name,
			"committed", res.Committed, "failed", res.Failed, "error", err)
		return err
	}
	return nil
}

// ========================================
// CONTEXT RESOLUTION
// ========================================

func (s *AggregatorServiceImpl) resolveOffice(ctx context.Context, officeID string) (office.Office, error) {
	if officeID == "" {
		return office.Office{}, office.ErrMissingOfficeID
	}
	o, err := s.offices.FindOne(ctx, officeID)
	if err != nil {
		return office.Office{}, fmt.Errorf("failed to get office: %w", err)
	}
	if o == nil {
		slog.Warn("Skipping event for unknown office", "office_id", officeID)
		return office.Office{}, office.ErrOfficeNotFound
	}
	return *o, nil
}

// resolveEmployee returns the office and the employee's policy. Employees
// without a uid cannot receive feed records and are skipped entirely.
func (s *AggregatorServiceImpl) resolveEmployee(ctx context.Context, officeID, phoneNumber string) (office.Office, office.EmployeePolicy, error) {
	o, err := s.resolveOffice(ctx, officeID)
	if err != nil {
		return office.Office{}, office.EmployeePolicy{}, err
	}
	policy, ok := o.Employee(phoneNumber)
	if !ok {
		slog.Warn("Skipping event for unknown employee", "office_id", officeID, "phone_number", phoneNumber)
		return office.Office{}, office.EmployeePolicy{}, office.ErrEmployeeNotFound
	}
	if policy.UID == "" {
		slog.Warn("Skipping event for employee without uid", "office_id", officeID, "phone_number", phoneNumber)
		return office.Office{}, office.EmployeePolicy{}, attendance.ErrNoResolvableIdentity
	}
	return o, policy, nil
}

// withUID drops employees that have no uid, logging each one.
func withUID(o office.Office, policies []office.EmployeePolicy) []office.EmployeePolicy {
	out := policies[:0:0]
	for _, p := range policies {
		if p.UID == "" {
			slog.Warn("Skipping employee without uid", "office_id", o.ID, "phone_number", p.PhoneNumber)
			continue
		}
		out = append(out, p)
	}
	return out
}

func activityEventID(activityID, action string, status attendance.ActivityStatus, ts int64) string {
	return fmt.Sprintf("%s:%s:%s:%d", activityID, action, status, ts)
}

// statusStamp records who moved an activity to its status and when. The
// source timestamp is used so a redelivered event stamps the same time.
func statusStamp(actor, fallback string, ts int64) attendance.StatusStamp {
	if actor == "" {
		actor = fallback
	}
	return attendance.StatusStamp{PhoneNumber: actor, Timestamp: ts}
}

// ========================================
// CHECK-IN
// ========================================

// HandleCheckIn implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) HandleCheckIn(ctx context.Context, req attendance.CheckInRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	o, policy, err := s.resolveEmployee(ctx, req.OfficeID, req.PhoneNumber)
	if err != nil {
		return err
	}

	created, err := s.addendum.Create(ctx, addendum.Addendum{
		ID:          req.EventID,
		OfficeID:    req.OfficeID,
		PhoneNumber: req.PhoneNumber,
		Timestamp:   req.Timestamp,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return fmt.Errorf("failed to store raw check-in: %w", err)
	}
	if !created {
		slog.Debug("Check-in redelivered", "event_id", req.EventID, "office_id", req.OfficeID)
	}

	if err := s.aggregateCheckIn(ctx, o, policy, req); err != nil {
		return err
	}

	if err := s.addendum.MarkAggregated(ctx, req.EventID, s.now()); err != nil {
		slog.Warn("Failed to mark check-in aggregated", "event_id", req.EventID, "error", err)
	}
	return nil
}

func (s *AggregatorServiceImpl) aggregateCheckIn(ctx context.Context, o office.Office, policy office.EmployeePolicy, req attendance.CheckInRequest) error {
	loc := o.Location()
	day := cycle.StartOfDay(cycle.FromMillis(req.Timestamp, loc))

	checkIn := attendance.CheckIn{
		EventID:   req.EventID,
		Timestamp: req.Timestamp,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if b, ok := o.BranchOf(policy); ok && b.HasCoordinates() {
		d := utils.HaversineMeters(req.Latitude, req.Longitude, *b.Latitude, *b.Longitude)
		checkIn.DistanceFromBase = &d
	}

	return s.applyChanges(ctx, o, []change{{
		policy: policy,
		events: []dayEvent{{day: day, event: attendance.CheckInEvent{CheckIn: checkIn}}},
	}}, feed.Source{EventID: req.EventID, ActivityID: req.EventID, Timestamp: req.Timestamp})
}

// ========================================
// ACTIVITIES
// ========================================

// HandleRegularization implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) HandleRegularization(ctx context.Context, req attendance.RegularizationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	o, policy, err := s.resolveEmployee(ctx, req.OfficeID, req.PhoneNumber)
	if err != nil {
		return err
	}

	day, err := time.ParseInLocation(office.DateLayout, req.Date, o.Location())
	if err != nil {
		return attendance.ErrInvalidDateRange
	}

	actor := statusStamp(req.ActorPhoneNumber, req.PhoneNumber, req.Timestamp)
	ev := attendance.RegularizationEvent{Status: req.Status, Reason: req.Reason, Actor: actor}

	return s.applyChanges(ctx, o, []change{{
		policy: policy,
		events: []dayEvent{{day: day, event: ev}},
	}}, feed.Source{
		EventID:    activityEventID(req.ActivityID, req.Action, req.Status, actor.Timestamp),
		ActivityID: req.ActivityID,
		Timestamp:  actor.Timestamp,
	})
}

// HandleLeave implements attendance.AggregatorService. Every day of the leave
// is written in the same commit, across months when the leave spans them.
func (s *AggregatorServiceImpl) HandleLeave(ctx context.Context, req attendance.LeaveRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	o, policy, err := s.resolveEmployee(ctx, req.OfficeID, req.PhoneNumber)
	if err != nil {
		return err
	}

	loc := o.Location()
	days := cycle.DatesInRange(cycle.FromMillis(req.StartTime, loc), cycle.FromMillis(req.EndTime, loc))
	if len(days) == 0 {
		return attendance.ErrInvalidDateRange
	}

	actor := statusStamp(req.ActorPhoneNumber, req.PhoneNumber, req.Timestamp)
	ev := attendance.LeaveEvent{Status: req.Status, Reason: req.Reason, LeaveType: req.LeaveType, Actor: actor}

	events := make([]dayEvent, 0, len(days))
	for _, d := range days {
		events = append(events, dayEvent{day: d, event: ev})
	}

	return s.applyChanges(ctx, o, []change{{policy: policy, events: events}}, feed.Source{
		EventID:    activityEventID(req.ActivityID, req.Action, req.Status, actor.Timestamp),
		ActivityID: req.ActivityID,
		Timestamp:  actor.Timestamp,
	})
}

// HandleBranchHoliday implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) HandleBranchHoliday(ctx context.Context, req attendance.BranchHolidayRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	o, err := s.resolveOffice(ctx, req.OfficeID)
	if err != nil {
		return err
	}

	loc := o.Location()
	days := make([]time.Time, 0, len(req.Dates))
	for _, d := range req.Dates {
		day, err := time.ParseInLocation(office.DateLayout, d, loc)
		if err != nil {
			return attendance.ErrInvalidDateRange
		}
		days = append(days, day)
	}

	activityID := req.ActivityID
	if activityID == "" {
		activityID = "holiday:" + req.Branch
	}
	return s.markHoliday(ctx, o, req.Branch, req.Name, days, activityID)
}

func (s *AggregatorServiceImpl) markHoliday(ctx context.Context, o office.Office, branch, name string, days []time.Time, activityID string) error {
	employees := withUID(o, o.EmployeesAt(branch))
	if len(employees) == 0 {
		slog.Info("No employees based at branch", "office_id", o.ID, "branch", branch)
		return nil
	}

	events := make([]dayEvent, 0, len(days))
	for _, d := range days {
		events = append(events, dayEvent{day: d, event: attendance.HolidayEvent{Name: name}})
	}
	changes := make([]change, 0, len(employees))
	for _, p := range employees {
		changes = append(changes, change{policy: p, events: events})
	}

	ts := s.now().UnixMilli()
	return s.applyFanOut(ctx, o, "branch_holiday", changes, feed.Source{
		EventID:    fmt.Sprintf("%s:%s", activityID, days[0].Format(office.DateLayout)),
		ActivityID: activityID,
		Timestamp:  ts,
	})
}

// HandleWeeklyOff implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) HandleWeeklyOff(ctx context.Context, req attendance.WeeklyOffRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	o, err := s.resolveOffice(ctx, req.OfficeID)
	if err != nil {
		return err
	}

	day, err := time.ParseInLocation(office.DateLayout, req.Date, o.Location())
	if err != nil {
		return attendance.ErrInvalidDateRange
	}

	if req.PhoneNumber != "" {
		policy, ok := o.Employee(req.PhoneNumber)
		if !ok {
			slog.Warn("Skipping weekly off for unknown employee", "office_id", o.ID, "phone_number", req.PhoneNumber)
			return office.ErrEmployeeNotFound
		}
		if policy.UID == "" {
			return attendance.ErrNoResolvableIdentity
		}
		if !policy.IsWeeklyOff(day) {
			slog.Info("Date is not the employee's weekly off", "office_id", o.ID, "phone_number", req.PhoneNumber, "date", req.Date)
			return nil
		}
		return s.markWeeklyOff(ctx, o, day, []office.EmployeePolicy{policy})
	}

	return s.markWeeklyOff(ctx, o, day, o.SortedEmployees())
}

func (s *AggregatorServiceImpl) markWeeklyOff(ctx context.Context, o office.Office, day time.Time, candidates []office.EmployeePolicy) error {
	var changes []change
	for _, p := range withUID(o, candidates) {
		if !p.IsWeeklyOff(day) {
			continue
		}
		changes = append(changes, change{
			policy: p,
			events: []dayEvent{{day: day, event: attendance.WeeklyOffEvent{}}},
		})
	}

	activityID := "weekly-off:" + day.Format(office.DateLayout)
	return s.applyFanOut(ctx, o, "weekly_off", changes, feed.Source{
		EventID:    activityID,
		ActivityID: activityID,
		Timestamp:  s.now().UnixMilli(),
	})
}

// ========================================
// QUERIES
// ========================================

// GetAttendanceMap implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) GetAttendanceMap(ctx context.Context, key attendance.Key) (attendance.AttendanceMap, error) {
	m, err := s.maps.FetchOrDefault(ctx, key)
	if err != nil {
		return attendance.AttendanceMap{}, fmt.Errorf("failed to get attendance map: %w", err)
	}
	return m, nil
}

// ========================================
// SCHEDULED JOBS
// ========================================

// MarkWeeklyOffs implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) MarkWeeklyOffs(ctx context.Context, now time.Time) error {
	offices, err := s.offices.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list offices: %w", err)
	}

	var errs []error
	for _, o := range offices {
		day := cycle.StartOfDay(now.In(o.Location()))
		if err := s.markWeeklyOff(ctx, o, day, o.SortedEmployees()); err != nil {
			errs = append(errs, fmt.Errorf("office %s: %w", o.ID, err))
		}
	}
	return errors.Join(errs...)
}

// MarkBranchHolidays implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) MarkBranchHolidays(ctx context.Context, now time.Time) error {
	offices, err := s.offices.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list offices: %w", err)
	}

	var errs []error
	for _, o := range offices {
		day := cycle.StartOfDay(now.In(o.Location()))
		for name, b := range o.Branches {
			h, ok := b.HolidayOn(day)
			if !ok {
				continue
			}
			activityID := "holiday:" + name
			if err := s.markHoliday(ctx, o, name, h.Name, []time.Time{day}, activityID); err != nil {
				errs = append(errs, fmt.Errorf("office %s branch %s: %w", o.ID, name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ReconcileStaleAddendum implements attendance.AggregatorService.
func (s *AggregatorServiceImpl) ReconcileStaleAddendum(ctx context.Context, olderThan time.Duration) (int, error) {
	now := s.now()
	stale, err := s.addendum.ListStale(ctx, now.Add(-olderThan), s.config.StaleScanLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale check-ins: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	offices := make(map[string]*office.Office)
	corrected := batch.NewChunkedWriter("addendum_corrected", s.config.ChunkSize, func(ctx context.Context, ids []string) error {
		return s.addendum.MarkCorrected(ctx, ids, now)
	})

	for _, a := range stale {
		o, ok := offices[a.OfficeID]
		if !ok {
			o, err = s.offices.FindOne(ctx, a.OfficeID)
			if err != nil {
				return 0, fmt.Errorf("failed to get office: %w", err)
			}
			offices[a.OfficeID] = o
		}

		var policy office.EmployeePolicy
		if o != nil {
			policy, ok = o.Employee(a.PhoneNumber)
		}
		if o == nil || !ok || policy.UID == "" {
			slog.Warn("Dropping unresolvable check-in", "event_id", a.ID, "office_id", a.OfficeID, "phone_number", a.PhoneNumber)
			corrected.Add(a.ID)
			continue
		}

		req := attendance.CheckInRequest{
			EventID:     a.ID,
			OfficeID:    a.OfficeID,
			PhoneNumber: a.PhoneNumber,
			Timestamp:   a.Timestamp,
			Latitude:    a.Latitude,
			Longitude:   a.Longitude,
		}
		if err := s.aggregateCheckIn(ctx, *o, policy, req); err != nil {
			slog.Error("Failed to reconcile check-in", "event_id", a.ID, "office_id", a.OfficeID, "error", err)
			continue
		}
		corrected.Add(a.ID)
	}

	res := corrected.CommitAll(ctx)
	slog.Info("Reconciled stale check-ins",
		"stale", len(stale), "corrected", res.Committed, "failed", res.Failed)
	return res.Committed, res.Err()
}

var _ attendance.AggregatorService = (*AggregatorServiceImpl)(nil)
