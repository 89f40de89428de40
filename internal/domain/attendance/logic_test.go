package attendance

import (
	"testing"
	"time"
)

func TestIsWeekend(t *testing.T) {
	cases := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), false}, // Friday
		{time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), true},  // Saturday
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), true},  // Sunday
		{time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), false}, // Monday
	}
	for _, tc := range cases {
		if got := IsWeekend(tc.date); got != tc.want {
			t.Errorf("IsWeekend(%s) = %v, want %v", tc.date.Format(time.DateOnly), got, tc.want)
		}
	}
}

func TestDayTruncates(t *testing.T) {
	ts := time.Date(2026, 3, 9, 18, 45, 12, 999, time.UTC)
	got := Day(ts)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day(%v) = %v, want %v", ts, got, want)
	}
}
