package calendar

import (
	"testing"
	"time"
)

func TestCalculateEaster_KnownDates(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
	}{
		{2016, time.March, 27},
		{2020, time.April, 12},
		{2021, time.April, 4},
		{2022, time.April, 17},
		{2023, time.April, 9},
		{2024, time.March, 31},
		{2025, time.April, 20},
		{2026, time.April, 5},
		{2027, time.March, 28},
		{2030, time.April, 21},
		{2038, time.April, 25}, // latest possible Easter
	}

	for _, tt := range tests {
		got := CalculateEaster(tt.year)
		if got.Month() != tt.month || got.Day() != tt.day {
			t.Errorf("CalculateEaster(%d) = %s, want %s %d",
				tt.year, got.Format("2006-01-02"), tt.month, tt.day)
		}
	}
}

func TestCalculateEaster_AlwaysSunday(t *testing.T) {
	for year := 1990; year <= 2100; year++ {
		got := CalculateEaster(year)
		if got.Weekday() != time.Sunday {
			t.Errorf("CalculateEaster(%d) = %s, a %s", year, got.Format("2006-01-02"), got.Weekday())
		}
	}
}

func TestCalculateEaster_WithinBounds(t *testing.T) {
	// Gregorian Easter always falls between March 22 and April 25.
	earliest := func(year int) time.Time {
		return time.Date(year, time.March, 22, 0, 0, 0, 0, time.UTC)
	}
	latest := func(year int) time.Time {
		return time.Date(year, time.April, 25, 0, 0, 0, 0, time.UTC)
	}

	for year := 1990; year <= 2100; year++ {
		got := CalculateEaster(year)
		if got.Before(earliest(year)) || got.After(latest(year)) {
			t.Errorf("CalculateEaster(%d) = %s, outside Mar 22..Apr 25", year, got.Format("2006-01-02"))
		}
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		weekday time.Weekday
		nth     int
		wantDay int
		wantOK  bool
	}{
		{"thanksgiving 2025", 2025, time.November, time.Thursday, 4, 27, true},
		{"thanksgiving 2024", 2024, time.November, time.Thursday, 4, 28, true},
		{"mothers day 2025", 2025, time.May, time.Sunday, 2, 11, true},
		{"fathers day 2025", 2025, time.June, time.Sunday, 3, 15, true},
		{"mlk day 2025", 2025, time.January, time.Monday, 3, 20, true},
		{"labor day 2025", 2025, time.September, time.Monday, 1, 1, true},
		{"first day is the weekday", 2025, time.June, time.Sunday, 1, 1, true},
		{"fifth friday exists", 2025, time.May, time.Friday, 5, 30, true},
		{"fifth thursday exists", 2025, time.May, time.Thursday, 5, 29, true},
		{"fifth sunday missing", 2025, time.February, time.Sunday, 5, 0, false},
		{"nth zero", 2025, time.May, time.Friday, 0, 0, false},
		{"nth six", 2025, time.May, time.Friday, 6, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NthWeekdayOfMonth(tt.year, tt.month, tt.weekday, tt.nth)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Day() != tt.wantDay || got.Month() != tt.month || got.Year() != tt.year {
				t.Errorf("got %s, want day %d", got.Format("2006-01-02"), tt.wantDay)
			}
			if got.Weekday() != tt.weekday {
				t.Errorf("got weekday %s, want %s", got.Weekday(), tt.weekday)
			}
		})
	}
}
