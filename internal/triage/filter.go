package triage

import "time"

// DateFilter bounds a load to a year, optionally narrowed to a month and
// then a day. Nil month/day mean "the whole year"/"the whole month".
type DateFilter struct {
	Year  int
	Month *int
	Day   *int
}

// Range returns the inclusive creation-time bounds for the filter. The upper
// bound is always end-of-day (23:59:59) in local time.
func (f DateFilter) Range() (after, before time.Time) {
	switch {
	case f.Month == nil:
		after = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.Local)
		before = time.Date(f.Year, time.December, 31, 23, 59, 59, 0, time.Local)
	case f.Day == nil:
		m := time.Month(*f.Month)
		after = time.Date(f.Year, m, 1, 0, 0, 0, 0, time.Local)
		// day 0 of the next month is the last day of this one
		before = time.Date(f.Year, m+1, 0, 23, 59, 59, 0, time.Local)
	default:
		m := time.Month(*f.Month)
		after = time.Date(f.Year, m, *f.Day, 0, 0, 0, 0, time.Local)
		before = time.Date(f.Year, m, *f.Day, 23, 59, 59, 0, time.Local)
	}
	return after, before
}
