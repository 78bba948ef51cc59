package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCycle(t *testing.T) {
	tests := []struct {
		name      string
		firstDay  int
		month     time.Month
		year      int
		wantStart string
		wantEnd   string
	}{
		{"calendar month", 1, time.February, 2024, "01 Feb 2024", "29 Feb 2024"},
		{"calendar month non leap", 1, time.February, 2023, "01 Feb 2023", "28 Feb 2023"},
		{"mid month", 15, time.March, 2024, "15 Mar 2024", "14 Apr 2024"},
		{"year rollover", 10, time.December, 2023, "10 Dec 2023", "09 Jan 2024"},
		{"second day", 2, time.January, 2024, "02 Jan 2024", "01 Feb 2024"},
		{"clamped high", 31, time.January, 2024, "28 Jan 2024", "27 Feb 2024"},
		{"unset treated as one", 0, time.April, 2024, "01 Apr 2024", "30 Apr 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := GetCycle(tt.firstDay, tt.month, tt.year)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestNew_StartNeverAfterEnd(t *testing.T) {
	for firstDay := 1; firstDay <= 28; firstDay++ {
		for m := time.January; m <= time.December; m++ {
			c := New(firstDay, m, 2024, time.UTC)
			assert.False(t, c.Start.After(c.End), "firstDay=%d month=%s", firstDay, m)
			if firstDay == 1 {
				assert.Equal(t, DaysInMonth(m, 2024), c.End.Day())
				assert.Equal(t, m, c.End.Month())
			} else {
				assert.Equal(t, firstDay-1, c.End.Day())
				assert.NotEqual(t, c.Start.Month(), c.End.Month())
			}
		}
	}
}

func TestFor(t *testing.T) {
	loc := time.UTC

	c := For(10, time.Date(2024, time.February, 9, 18, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, loc), c.Start)
	assert.Equal(t, time.Date(2024, time.February, 9, 0, 0, 0, 0, loc), c.End)

	c = For(10, time.Date(2024, time.February, 10, 0, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2024, time.February, 10, 0, 0, 0, 0, loc), c.Start)

	c = For(1, time.Date(2024, time.March, 31, 23, 59, 0, 0, loc))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, loc), c.Start)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, loc), c.End)
	assert.True(t, c.Contains(time.Date(2024, time.March, 31, 23, 59, 0, 0, loc)))
}

func TestNumbersBetween(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5}, Collect(NumbersBetween(3, 6)))
	assert.Empty(t, Collect(NumbersBetween(5, 5)))
	assert.Empty(t, Collect(NumbersBetween(6, 5)))

	var seen []int
	for n := range NumbersBetween(1, 100) {
		if n > 2 {
			break
		}
		seen = append(seen, n)
	}
	assert.Equal(t, []int{1, 2}, seen)
}

func TestSplitCycle(t *testing.T) {
	t.Run("calendar month has no first range", func(t *testing.T) {
		s := SplitCycle(New(1, time.February, 2024, time.UTC))
		assert.Empty(t, s.FirstRange)
		assert.Len(t, s.SecondRange, 29)
		assert.Equal(t, time.February, s.SecondMonth)
	})

	t.Run("cross month", func(t *testing.T) {
		s := SplitCycle(New(10, time.January, 2024, time.UTC))
		require.Len(t, s.FirstRange, 22)
		assert.Equal(t, 10, s.FirstRange[0])
		assert.Equal(t, 31, s.FirstRange[len(s.FirstRange)-1])
		assert.Equal(t, time.January, s.FirstMonth)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, s.SecondRange)
		assert.Equal(t, time.February, s.SecondMonth)
		assert.Equal(t, 2024, s.SecondYear)
	})

	t.Run("december into january", func(t *testing.T) {
		s := SplitCycle(New(20, time.December, 2023, time.UTC))
		assert.Equal(t, 2023, s.FirstYear)
		assert.Equal(t, 2024, s.SecondYear)
		assert.Len(t, s.FirstRange, 12)
		assert.Len(t, s.SecondRange, 19)
	})
}

func TestDatesInRange(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	start := time.Date(2024, time.January, 30, 15, 0, 0, 0, loc)
	end := time.Date(2024, time.February, 2, 9, 0, 0, 0, loc)
	days := DatesInRange(start, end)
	require.Len(t, days, 4)
	assert.Equal(t, 30, days[0].Day())
	assert.Equal(t, 2, days[3].Day())
	assert.Equal(t, time.February, days[3].Month())

	assert.Nil(t, DatesInRange(end, start))
}

func TestStartOfDayMillis(t *testing.T) {
	loc := LoadLocation("Asia/Kolkata")
	ms := StartOfDayMillis(2024, time.January, 5, loc)
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, loc).UnixMilli(), ms)
	assert.Equal(t, time.UTC, LoadLocation("Not/AZone"))
}
