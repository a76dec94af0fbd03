package utils

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 3, 15, 14, 30, 45, 123, time.FixedZone("X", 3600))
	got := DateOnly(in)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly: got %v, want %v", got, want)
	}
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)}, // leap year
		{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := MonthEnd(tt.in); !got.Equal(tt.want) {
			t.Errorf("MonthEnd(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate: got %v", got)
	}

	for _, bad := range []string{"", "15-03-2026", "2026/03/15", "not-a-date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	d := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	s := FormatDate(d)
	if s != "2026-03-05" {
		t.Fatalf("FormatDate: got %q", s)
	}
	back, err := ParseDate(s)
	if err != nil || !back.Equal(d) {
		t.Errorf("round trip: got %v, %v", back, err)
	}
}
