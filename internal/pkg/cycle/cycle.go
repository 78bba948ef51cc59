// Package cycle holds the calendar math behind monthly pay cycles: cycle
// bounds for a configured start day, day-of-month ranges and the split of a
// cycle into its previous-month and current-month parts.
package cycle

import (
	"iter"
	"time"
)

// DateFormat is the layout used for cycleStart / cycleEnd strings.
const DateFormat = "02 Jan 2006"

const (
	MinFirstDay = 1
	MaxFirstDay = 28
)

// Cycle is an inclusive range of calendar days. Start and End are midnight
// in the location they were built with.
type Cycle struct {
	Start time.Time
	End   time.Time
}

// Formatted returns the cycle bounds rendered with DateFormat.
func (c Cycle) Formatted() (cycleStart, cycleEnd string) {
	return c.Start.Format(DateFormat), c.End.Format(DateFormat)
}

// Contains reports whether t falls on a day inside the cycle.
func (c Cycle) Contains(t time.Time) bool {
	d := StartOfDay(t.In(c.Start.Location()))
	return !d.Before(c.Start) && !d.After(c.End)
}

// Days returns every day of the cycle in order.
func (c Cycle) Days() []time.Time {
	return DatesInRange(c.Start, c.End)
}

// NormalizeFirstDay clamps a configured first day of monthly cycle into the
// supported 1..28 window. Zero or negative values mean "not configured".
func NormalizeFirstDay(firstDay int) int {
	switch {
	case firstDay < MinFirstDay:
		return MinFirstDay
	case firstDay > MaxFirstDay:
		return MaxFirstDay
	default:
		return firstDay
	}
}

// GetCycle returns the formatted bounds of the cycle that starts in the given
// month. Month is 1-based.
func GetCycle(firstDay int, month time.Month, year int) (cycleStart, cycleEnd string) {
	return New(firstDay, month, year, time.UTC).Formatted()
}

// New builds the cycle that starts in month/year. With firstDay 1 the cycle is
// the calendar month; otherwise it runs from firstDay of the month to
// firstDay-1 of the following month.
func New(firstDay int, month time.Month, year int, loc *time.Location) Cycle {
	firstDay = NormalizeFirstDay(firstDay)
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, firstDay, 0, 0, 0, 0, loc)
	if firstDay == 1 {
		return Cycle{Start: start, End: time.Date(year, month, DaysInMonth(month, year), 0, 0, 0, 0, loc)}
	}
	return Cycle{Start: start, End: time.Date(year, month+1, firstDay-1, 0, 0, 0, 0, loc)}
}

// For returns the cycle containing day t (evaluated in t's location).
func For(firstDay int, t time.Time) Cycle {
	firstDay = NormalizeFirstDay(firstDay)
	if t.Day() >= firstDay {
		return New(firstDay, t.Month(), t.Year(), t.Location())
	}
	prev := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, -1, 0)
	return New(firstDay, prev.Month(), prev.Year(), t.Location())
}

// NumbersBetween yields a, a+1, ..., b-1. Callers wanting an inclusive end
// pass end+1.
func NumbersBetween(a, b int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := a; i < b; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Collect drains a day sequence into a slice.
func Collect(seq iter.Seq[int]) []int {
	var out []int
	for n := range seq {
		out = append(out, n)
	}
	return out
}

// Split is a cycle broken at the calendar-month boundary. First holds the
// days that belong to the month the cycle starts in when that month differs
// from the month it ends in; it is empty for calendar-month cycles.
type Split struct {
	FirstMonth  time.Month
	FirstYear   int
	FirstRange  []int
	SecondMonth time.Month
	SecondYear  int
	SecondRange []int
}

// SplitCycle partitions c into days of the previous calendar month and days
// of the current (ending) calendar month.
func SplitCycle(c Cycle) Split {
	s := Split{
		SecondMonth: c.End.Month(),
		SecondYear:  c.End.Year(),
	}
	if c.Start.Month() == c.End.Month() && c.Start.Year() == c.End.Year() {
		s.SecondRange = Collect(NumbersBetween(c.Start.Day(), c.End.Day()+1))
		return s
	}
	s.FirstMonth = c.Start.Month()
	s.FirstYear = c.Start.Year()
	s.FirstRange = Collect(NumbersBetween(c.Start.Day(), DaysInMonth(c.Start.Month(), c.Start.Year())+1))
	s.SecondRange = Collect(NumbersBetween(1, c.End.Day()+1))
	return s
}

// DaysInMonth returns the number of days in month/year.
func DaysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfDayMillis returns the unix milliseconds of midnight for the given
// calendar day in loc.
func StartOfDayMillis(year int, month time.Month, day int, loc *time.Location) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, loc).UnixMilli()
}

// DatesInRange returns every calendar day from start to end inclusive, both
// truncated to midnight in start's location. It returns nil when end is
// before start.
func DatesInRange(start, end time.Time) []time.Time {
	loc := start.Location()
	from := StartOfDay(start)
	to := StartOfDay(end.In(loc))
	if to.Before(from) {
		return nil
	}
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// FromMillis converts unix milliseconds into a time in loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}

// LoadLocation resolves an IANA zone name, falling back to UTC when the name
// is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
