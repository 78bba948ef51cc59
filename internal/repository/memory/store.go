// Package memory provides in-process implementations of the repositories for
// tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/addendum"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/feed"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Store holds every collection behind one mutex. A transaction holds the
// mutex for its whole duration; repository calls made with the transaction's
// context do not lock again.
type Store struct {
	mu sync.Mutex

	offices  map[string]office.Office
	maps     map[attendance.Key]attendance.AttendanceMap
	vouchers map[string]voucher.Voucher
	claims   map[string]voucher.ReimbursementClaim
	addenda  map[string]addendum.Addendum
	feed     []feed.Record
	feedSeen map[feedKey]bool

	// Now is the clock used for createdAt/updatedAt stamps.
	Now func() time.Time
}

type feedKey struct {
	UID      string
	EventID  string
	RecordID string
}

func NewStore() *Store {
	return &Store{
		offices:  make(map[string]office.Office),
		maps:     make(map[attendance.Key]attendance.AttendanceMap),
		vouchers: make(map[string]voucher.Voucher),
		claims:   make(map[string]voucher.ReimbursementClaim),
		addenda:  make(map[string]addendum.Addendum),
		feedSeen: make(map[feedKey]bool),
		Now:      time.Now,
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock acquires the store mutex unless ctx already belongs to a transaction
// of this store. The returned func releases it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// Transactor returns a database.Transactor that snapshots the store and
// restores it when fn fails.
func (s *Store) Transactor() database.Transactor {
	return &transactor{store: s}
}

type transactor struct {
	store *Store
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := t.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	offices  map[string]office.Office
	maps     map[attendance.Key]attendance.AttendanceMap
	vouchers map[string]voucher.Voucher
	claims   map[string]voucher.ReimbursementClaim
	addenda  map[string]addendum.Addendum
	feed     []feed.Record
	feedSeen map[feedKey]bool
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		offices:  make(map[string]office.Office, len(s.offices)),
		maps:     make(map[attendance.Key]attendance.AttendanceMap, len(s.maps)),
		vouchers: make(map[string]voucher.Voucher, len(s.vouchers)),
		claims:   make(map[string]voucher.ReimbursementClaim, len(s.claims)),
		addenda:  make(map[string]addendum.Addendum, len(s.addenda)),
		feed:     append([]feed.Record(nil), s.feed...),
		feedSeen: make(map[feedKey]bool, len(s.feedSeen)),
	}
	for k, v := range s.offices {
		snap.offices[k] = v
	}
	for k, v := range s.maps {
		snap.maps[k] = cloneMap(v)
	}
	for k, v := range s.vouchers {
		snap.vouchers[k] = v
	}
	for k, v := range s.claims {
		snap.claims[k] = v
	}
	for k, v := range s.addenda {
		snap.addenda[k] = v
	}
	for k, v := range s.feedSeen {
		snap.feedSeen[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.offices = snap.offices
	s.maps = snap.maps
	s.vouchers = snap.vouchers
	s.claims = snap.claims
	s.addenda = snap.addenda
	s.feed = snap.feed
	s.feedSeen = snap.feedSeen
}

// cloneMap copies the day map so callers cannot mutate stored state. Day
// records are copied on write by the reducer, so a shallow copy of each
// record is enough.
func cloneMap(m attendance.AttendanceMap) attendance.AttendanceMap {
	days := make(map[int]attendance.DayRecord, len(m.Attendance))
	for d, rec := range m.Attendance {
		days[d] = rec
	}
	m.Attendance = days
	return m
}

// =============================================================================
// INSPECTION HELPERS
// =============================================================================

// FeedRecords returns every appended feed record in insertion order.
func (s *Store) FeedRecords() []feed.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]feed.Record(nil), s.feed...)
}

// StoredVouchers returns every voucher ordered by beneficiary and creation.
func (s *Store) StoredVouchers() []voucher.Voucher {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]voucher.Voucher, 0, len(s.vouchers))
	for _, v := range s.vouchers {
		out = append(out, v)
	}
	sortVouchers(out)
	return out
}

// StoredAddendum returns every raw check-in keyed by id.
func (s *Store) StoredAddendum() map[string]addendum.Addendum {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]addendum.Addendum, len(s.addenda))
	for k, v := range s.addenda {
		out[k] = v
	}
	return out
}

func sortVouchers(v []voucher.Voucher) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].BeneficiaryID != v[j].BeneficiaryID {
			return v[i].BeneficiaryID < v[j].BeneficiaryID
		}
		if v[i].Type != v[j].Type {
			return v[i].Type < v[j].Type
		}
		return v[i].CreatedAt.Before(v[j].CreatedAt)
	})
}
