package attendance

import "math"

// ResolverInput is one employee-day's raw worked signal plus the policy
// thresholds it is scored against. Nil thresholds are "not configured".
type ResolverInput struct {
	NumberOfCheckIns          int
	HoursWorked               float64
	MinimumWorkingHours       *float64
	MinimumDailyActivityCount *int
}

// quantumEpsilon absorbs float error when dividing a ratio by its quantum,
// e.g. 0.7/0.1 evaluating to 6.999999999999999.
const quantumEpsilon = 1e-9

// ResolveDayStatus scores a worked day in [0,1]. The lower of the activity
// and time ratios is snapped down to a multiple of 1/minimumDailyActivityCount.
func ResolveDayStatus(in ResolverInput) float64 {
	if in.NumberOfCheckIns <= 0 {
		return 0
	}

	activityCount := 0
	if in.MinimumDailyActivityCount != nil && *in.MinimumDailyActivityCount > 0 {
		activityCount = *in.MinimumDailyActivityCount
	}
	if activityCount == 1 {
		return 1
	}

	activityRatio := 1.0
	quanta := 1.0
	if activityCount > 0 {
		activityRatio = float64(in.NumberOfCheckIns) / float64(activityCount)
		quanta = float64(activityCount)
	}

	timeRatio := 1.0
	if in.MinimumWorkingHours != nil && *in.MinimumWorkingHours > 0 {
		timeRatio = in.HoursWorked / *in.MinimumWorkingHours
	}

	m := math.Min(activityRatio, timeRatio)
	if m >= 1 {
		return 1
	}
	if m <= 0 {
		return 0
	}

	// floor(m / (1/quanta)) * (1/quanta), kept as steps/quanta so results
	// like 3/10 come out as the nearest float to 0.3.
	steps := math.Floor(m*quanta + quantumEpsilon)
	return steps / quanta
}
