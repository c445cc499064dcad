package core

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"wednesday", time.Date(2025, 7, 16, 15, 30, 0, 0, time.Local), "2025-07-14"},
		{"monday stays", time.Date(2025, 7, 14, 0, 0, 1, 0, time.Local), "2025-07-14"},
		{"sunday rolls back", time.Date(2025, 7, 20, 23, 59, 0, 0, time.Local), "2025-07-14"},
		{"year boundary", time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local), "2025-12-29"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.in)
			if ISODate(got) != tc.want {
				t.Errorf("WeekStart(%v) = %s, want %s", tc.in, ISODate(got), tc.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
				t.Errorf("WeekStart(%v) not zeroed to start of day: %v", tc.in, got)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("WeekStart(%v) = %v, want a Monday", tc.in, got.Weekday())
			}
		})
	}
}

func TestOfficialProfilesEmpty(t *testing.T) {
	var p OfficialProfiles
	if !p.Empty() {
		t.Error("zero value should be empty")
	}
	p.TikTok = "somebody"
	if p.Empty() {
		t.Error("profiles with a handle should not be empty")
	}
}
