package core

import (
	"testing"
	"time"
)

// Wednesday in the middle of January 2024.
var wednesday = time.Date(2024, 1, 17, 14, 30, 0, 0, time.UTC)

func TestResolveDateRange(t *testing.T) {
	tests := []struct {
		name     string
		period   Period
		custom   CustomBounds
		now      time.Time
		wantFrom string
		wantTo   string
	}{
		{
			name:   "this week from wednesday",
			period: PeriodThisWeek,
			now:    wednesday,
			// Monday through Sunday, both inclusive.
			wantFrom: "2024-01-15",
			wantTo:   "2024-01-21",
		},
		{
			name:     "this week from monday",
			period:   PeriodThisWeek,
			now:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			wantFrom: "2024-01-15",
			wantTo:   "2024-01-21",
		},
		{
			name:     "this week from sunday",
			period:   PeriodThisWeek,
			now:      time.Date(2024, 1, 21, 23, 0, 0, 0, time.UTC),
			wantFrom: "2024-01-15",
			wantTo:   "2024-01-21",
		},
		{
			name:     "last week",
			period:   PeriodLastWeek,
			now:      wednesday,
			wantFrom: "2024-01-08",
			wantTo:   "2024-01-14",
		},
		{
			name:     "this month",
			period:   PeriodThisMonth,
			now:      wednesday,
			wantFrom: "2024-01-01",
			wantTo:   "2024-01-31",
		},
		{
			name:     "last month crosses year",
			period:   PeriodLastMonth,
			now:      wednesday,
			wantFrom: "2023-12-01",
			wantTo:   "2023-12-31",
		},
		{
			name:     "last month from march 31",
			period:   PeriodLastMonth,
			now:      time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC),
			wantFrom: "2024-02-01",
			wantTo:   "2024-02-29",
		},
		{
			name:     "past 3 months not calendar aligned",
			period:   PeriodPast3Months,
			now:      wednesday,
			wantFrom: "2023-10-17",
			wantTo:   "2024-01-17",
		},
		{
			name:     "past 6 months",
			period:   PeriodPast6Months,
			now:      wednesday,
			wantFrom: "2023-07-17",
			wantTo:   "2024-01-17",
		},
		{
			name:     "past year",
			period:   PeriodPastYear,
			now:      wednesday,
			wantFrom: "2023-01-17",
			wantTo:   "2024-01-17",
		},
		{
			name:     "this year",
			period:   PeriodThisYear,
			now:      wednesday,
			wantFrom: "2024-01-01",
			wantTo:   "2024-12-31",
		},
		{
			name:     "last year",
			period:   PeriodLastYear,
			now:      wednesday,
			wantFrom: "2023-01-01",
			wantTo:   "2023-12-31",
		},
		{
			name:     "custom with both bounds",
			period:   PeriodCustom,
			custom:   CustomBounds{From: NewDate(2024, 2, 1), To: NewDate(2024, 2, 10)},
			now:      wednesday,
			wantFrom: "2024-02-01",
			wantTo:   "2024-02-10",
		},
		{
			name:     "custom missing from falls back to this week",
			period:   PeriodCustom,
			custom:   CustomBounds{To: NewDate(2024, 2, 1)},
			now:      wednesday,
			wantFrom: "2024-01-15",
			wantTo:   "2024-01-21",
		},
		{
			name:     "custom missing to falls back to this week",
			period:   PeriodCustom,
			custom:   CustomBounds{From: NewDate(2024, 2, 1)},
			now:      wednesday,
			wantFrom: "2024-01-15",
			wantTo:   "2024-01-21",
		},
		{
			name:     "unknown token falls back to this week",
			period:   Period("fortnight"),
			now:      wednesday,
			wantFrom: "2024-01-15",
			wantTo:   "2024-01-21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDateRange(tt.period, tt.custom, tt.now)
			if got.From.String() != tt.wantFrom {
				t.Errorf("From = %s, want %s", got.From, tt.wantFrom)
			}
			if got.To.String() != tt.wantTo {
				t.Errorf("To = %s, want %s", got.To, tt.wantTo)
			}
		})
	}
}

func TestResolveDateRangeFallbackKeepsLabel(t *testing.T) {
	got := ResolveDateRange(PeriodCustom, CustomBounds{}, wednesday)
	if got.Period != PeriodThisWeek {
		t.Errorf("Period = %s, want %s after fallback", got.Period, PeriodThisWeek)
	}
}

func TestDateRangeContains(t *testing.T) {
	r := ResolveDateRange(PeriodThisWeek, CustomBounds{}, wednesday)

	tests := []struct {
		name string
		date Date
		want bool
	}{
		{name: "monday boundary", date: NewDate(2024, 1, 15), want: true},
		{name: "sunday boundary", date: NewDate(2024, 1, 21), want: true},
		{name: "midweek", date: NewDate(2024, 1, 17), want: true},
		{name: "day before", date: NewDate(2024, 1, 14), want: false},
		{name: "day after", date: NewDate(2024, 1, 22), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
