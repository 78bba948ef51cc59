package addendum

import "time"

// Addendum is a raw check-in exactly as it arrived. It is immutable apart
// from the bookkeeping timestamps set by the aggregator.
type Addendum struct {
	ID           string     `json:"id"`
	OfficeID     string     `json:"office_id"`
	PhoneNumber  string     `json:"phone_number"`
	Timestamp    int64      `json:"timestamp"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	CreatedAt    time.Time  `json:"created_at"`
	AggregatedAt *time.Time `json:"aggregated_at,omitempty"`
	CorrectedAt  *time.Time `json:"corrected_at,omitempty"`
}

// IsAggregated reports whether the check-in has been folded into an
// attendance map, either directly or by reconciliation.
func (a Addendum) IsAggregated() bool {
	return a.AggregatedAt != nil || a.CorrectedAt != nil
}
