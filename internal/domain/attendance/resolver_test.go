package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestResolveDayStatus(t *testing.T) {
	tests := []struct {
		name  string
		input ResolverInput
		want  float64
	}{
		{
			name:  "no check-ins scores zero",
			input: ResolverInput{NumberOfCheckIns: 0, HoursWorked: 10, MinimumDailyActivityCount: intPtr(1)},
			want:  0,
		},
		{
			name:  "single activity requirement gives full credit",
			input: ResolverInput{NumberOfCheckIns: 1, MinimumDailyActivityCount: intPtr(1), MinimumWorkingHours: floatPtr(8)},
			want:  1,
		},
		{
			name:  "activity ratio snapped to quarter",
			input: ResolverInput{NumberOfCheckIns: 2, MinimumDailyActivityCount: intPtr(4), HoursWorked: 100, MinimumWorkingHours: floatPtr(1)},
			want:  0.5,
		},
		{
			name:  "time ratio limits credit",
			input: ResolverInput{NumberOfCheckIns: 2, MinimumDailyActivityCount: intPtr(2), HoursWorked: 2, MinimumWorkingHours: floatPtr(4)},
			want:  0.5,
		},
		{
			name:  "time ratio floored to quantum",
			input: ResolverInput{NumberOfCheckIns: 4, MinimumDailyActivityCount: intPtr(4), HoursWorked: 5, MinimumWorkingHours: floatPtr(8)},
			want:  0.5,
		},
		{
			name:  "tenths survive float division",
			input: ResolverInput{NumberOfCheckIns: 10, MinimumDailyActivityCount: intPtr(10), HoursWorked: 7, MinimumWorkingHours: floatPtr(10)},
			want:  0.7,
		},
		{
			name:  "no thresholds means any check-in is a full day",
			input: ResolverInput{NumberOfCheckIns: 1},
			want:  1,
		},
		{
			name:  "without activity threshold the quantum is one",
			input: ResolverInput{NumberOfCheckIns: 3, HoursWorked: 3, MinimumWorkingHours: floatPtr(8)},
			want:  0,
		},
		{
			name:  "zero activity threshold is not configured",
			input: ResolverInput{NumberOfCheckIns: 1, MinimumDailyActivityCount: intPtr(0)},
			want:  1,
		},
		{
			name:  "ratios above one cap at one",
			input: ResolverInput{NumberOfCheckIns: 9, MinimumDailyActivityCount: intPtr(3), HoursWorked: 12, MinimumWorkingHours: floatPtr(8)},
			want:  1,
		},
		{
			name:  "thirds",
			input: ResolverInput{NumberOfCheckIns: 2, MinimumDailyActivityCount: intPtr(3)},
			want:  2.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDayStatus(tt.input)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
