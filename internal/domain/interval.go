package domain

import "time"

// Interval is a closed date-time range [Start, End].
type Interval struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.After(iv.End) {
		return &InvalidRangeError{Start: iv.Start, End: iv.End}
	}
	return nil
}

// Overlaps uses inclusive boundaries: intervals that only touch at an endpoint still overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !iv.End.Before(other.Start)
}

func (iv Interval) Contains(t time.Time) bool {
	return !iv.Start.After(t) && !iv.End.Before(t)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}
