package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/addendum"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/feed"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// OFFICES
// =============================================================================

type officeRepository struct{ s *Store }

func (s *Store) Offices() office.OfficeRepository { return &officeRepository{s: s} }

func (r *officeRepository) FindOne(ctx context.Context, officeID string) (*office.Office, error) {
	defer r.s.lock(ctx)()
	o, ok := r.s.offices[officeID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *officeRepository) List(ctx context.Context) ([]office.Office, error) {
	defer r.s.lock(ctx)()
	out := make([]office.Office, 0, len(r.s.offices))
	for _, o := range r.s.offices {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *officeRepository) Upsert(ctx context.Context, o office.Office) error {
	defer r.s.lock(ctx)()
	now := r.s.Now()
	if existing, ok := r.s.offices[o.ID]; ok {
		o.CreatedAt = existing.CreatedAt
	} else {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	r.s.offices[o.ID] = o
	return nil
}

// =============================================================================
// ATTENDANCE MAPS
// =============================================================================

type mapRepository struct{ s *Store }

func (s *Store) AttendanceMaps() attendance.MapRepository { return &mapRepository{s: s} }

func (r *mapRepository) FindOne(ctx context.Context, key attendance.Key) (*attendance.AttendanceMap, error) {
	defer r.s.lock(ctx)()
	m, ok := r.s.maps[key]
	if !ok {
		return nil, nil
	}
	m = cloneMap(m)
	return &m, nil
}

func (r *mapRepository) FetchOrDefault(ctx context.Context, key attendance.Key) (attendance.AttendanceMap, error) {
	m, err := r.FindOne(ctx, key)
	if err != nil {
		return attendance.AttendanceMap{}, err
	}
	if m == nil {
		return attendance.NewAttendanceMap(key), nil
	}
	return *m, nil
}

func (r *mapRepository) MergeWrite(ctx context.Context, m *attendance.AttendanceMap) error {
	defer r.s.lock(ctx)()

	key := m.Key()
	stored, exists := r.s.maps[key]
	now := r.s.Now()

	if m.IsNew() {
		if exists {
			return attendance.ErrVersionConflict
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.Version = 1
		m.CreatedAt = now
		m.UpdatedAt = now
		r.s.maps[key] = cloneMap(*m)
		return nil
	}

	if !exists || stored.Version != m.Version {
		return attendance.ErrVersionConflict
	}
	m.Version++
	m.CreatedAt = stored.CreatedAt
	m.UpdatedAt = now
	r.s.maps[key] = cloneMap(*m)
	return nil
}

func (r *mapRepository) ListByMonth(ctx context.Context, officeID string, month time.Month, year int) ([]attendance.AttendanceMap, error) {
	defer r.s.lock(ctx)()
	var out []attendance.AttendanceMap
	for k, m := range r.s.maps {
		if k.OfficeID == officeID && k.Month == month && k.Year == year {
			out = append(out, cloneMap(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out, nil
}

// =============================================================================
// VOUCHERS
// =============================================================================

type voucherRepository struct{ s *Store }

func (s *Store) Vouchers() voucher.VoucherRepository { return &voucherRepository{s: s} }

func (r *voucherRepository) findOpenLocked(key voucher.OpenKey) (voucher.Voucher, bool) {
	for _, v := range r.s.vouchers {
		if v.IsOpen() && v.OpenKey() == key {
			return v, true
		}
	}
	return voucher.Voucher{}, false
}

func (r *voucherRepository) FindOpen(ctx context.Context, key voucher.OpenKey) (*voucher.Voucher, error) {
	defer r.s.lock(ctx)()
	v, ok := r.findOpenLocked(key)
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *voucherRepository) Create(ctx context.Context, v voucher.Voucher) error {
	defer r.s.lock(ctx)()
	if _, ok := r.findOpenLocked(v.OpenKey()); ok {
		return voucher.ErrOpenVoucherExists
	}
	v.BatchID = nil
	r.s.vouchers[v.ID] = v
	return nil
}

func (r *voucherRepository) Update(ctx context.Context, v voucher.Voucher) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.vouchers[v.ID]
	if !ok || stored.OfficeID != v.OfficeID {
		return voucher.ErrVoucherNotFound
	}
	if !stored.IsOpen() {
		return voucher.ErrVoucherAlreadyBatched
	}
	stored.AttendanceCount = v.AttendanceCount
	stored.Amount = v.Amount
	stored.UpdatedAt = v.UpdatedAt
	r.s.vouchers[v.ID] = stored
	return nil
}

func (r *voucherRepository) ListByCycle(ctx context.Context, officeID, cycleStart, cycleEnd string) ([]voucher.Voucher, error) {
	defer r.s.lock(ctx)()
	var out []voucher.Voucher
	for _, v := range r.s.vouchers {
		if v.OfficeID == officeID && v.CycleStart == cycleStart && v.CycleEnd == cycleEnd {
			out = append(out, v)
		}
	}
	sortVouchers(out)
	return out, nil
}

func (r *voucherRepository) AssignBatch(ctx context.Context, officeID string, ids []string, batchID string) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	now := r.s.Now()
	for _, id := range ids {
		v, ok := r.s.vouchers[id]
		if !ok || v.OfficeID != officeID || !v.IsOpen() {
			continue
		}
		b := batchID
		v.BatchID = &b
		v.UpdatedAt = now
		r.s.vouchers[id] = v
		n++
	}
	return n, nil
}

type claimRepository struct{ s *Store }

func (s *Store) Claims() voucher.ClaimRepository { return &claimRepository{s: s} }

func (r *claimRepository) Upsert(ctx context.Context, c voucher.ReimbursementClaim) error {
	defer r.s.lock(ctx)()
	c.UpdatedAt = r.s.Now()
	r.s.claims[c.ID] = c
	return nil
}

func (r *claimRepository) SumConfirmed(ctx context.Context, officeID, phoneNumber string, from, to time.Time) (decimal.Decimal, error) {
	defer r.s.lock(ctx)()
	total := decimal.Zero
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	for _, c := range r.s.claims {
		if c.OfficeID != officeID || c.PhoneNumber != phoneNumber || c.Status != voucher.ClaimConfirmed {
			continue
		}
		if c.Timestamp >= fromMs && c.Timestamp < toMs {
			total = total.Add(c.Amount)
		}
	}
	return total, nil
}

// =============================================================================
// ADDENDUM
// =============================================================================

type addendumRepository struct{ s *Store }

func (s *Store) Addendum() addendum.AddendumRepository { return &addendumRepository{s: s} }

func (r *addendumRepository) Create(ctx context.Context, a addendum.Addendum) (bool, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.addenda[a.ID]; ok {
		return false, nil
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.s.Now()
	}
	r.s.addenda[a.ID] = a
	return true, nil
}

func (r *addendumRepository) MarkAggregated(ctx context.Context, id string, at time.Time) error {
	defer r.s.lock(ctx)()
	if a, ok := r.s.addenda[id]; ok {
		a.AggregatedAt = &at
		r.s.addenda[id] = a
	}
	return nil
}

func (r *addendumRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]addendum.Addendum, error) {
	defer r.s.lock(ctx)()
	var out []addendum.Addendum
	for _, a := range r.s.addenda {
		if !a.IsAggregated() && a.CreatedAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *addendumRepository) MarkCorrected(ctx context.Context, ids []string, at time.Time) error {
	defer r.s.lock(ctx)()
	for _, id := range ids {
		if a, ok := r.s.addenda[id]; ok {
			a.CorrectedAt = &at
			r.s.addenda[id] = a
		}
	}
	return nil
}

// =============================================================================
// UPDATE FEED
// =============================================================================

type feedRepository struct{ s *Store }

func (s *Store) Feed() feed.FeedRepository { return &feedRepository{s: s} }

func (r *feedRepository) Append(ctx context.Context, rec feed.Record) error {
	defer r.s.lock(ctx)()
	k := feedKey{UID: rec.UID, EventID: rec.EventID, RecordID: rec.ID}
	if r.s.feedSeen[k] {
		return nil
	}
	r.s.feedSeen[k] = true
	r.s.feed = append(r.s.feed, rec)
	return nil
}

func (r *feedRepository) ListSince(ctx context.Context, uid string, since int64, limit int) ([]feed.Record, error) {
	defer r.s.lock(ctx)()
	var out []feed.Record
	for _, rec := range r.s.feed {
		if rec.UID == uid && rec.Timestamp >= since {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
