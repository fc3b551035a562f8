package triage

import (
	"testing"
	"time"
)

func intp(v int) *int { return &v }

func TestDateFilterRange(t *testing.T) {
	cases := []struct {
		name   string
		filter DateFilter
		after  time.Time
		before time.Time
	}{
		{
			name:   "whole year",
			filter: DateFilter{Year: 2024},
			after:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
			before: time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local),
		},
		{
			name:   "single month",
			filter: DateFilter{Year: 2024, Month: intp(6)},
			after:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
			before: time.Date(2024, 6, 30, 23, 59, 59, 0, time.Local),
		},
		{
			name:   "single day",
			filter: DateFilter{Year: 2024, Month: intp(2), Day: intp(15)},
			after:  time.Date(2024, 2, 15, 0, 0, 0, 0, time.Local),
			before: time.Date(2024, 2, 15, 23, 59, 59, 0, time.Local),
		},
		{
			name:   "leap february",
			filter: DateFilter{Year: 2024, Month: intp(2)},
			after:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
			before: time.Date(2024, 2, 29, 23, 59, 59, 0, time.Local),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			after, before := c.filter.Range()
			if !after.Equal(c.after) {
				t.Fatalf("after = %v; want %v", after, c.after)
			}
			if !before.Equal(c.before) {
				t.Fatalf("before = %v; want %v", before, c.before)
			}
		})
	}
}
