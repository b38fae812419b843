package core

import "time"

const (
	PeriodThisWeek    Period = "this-week"
	PeriodLastWeek    Period = "last-week"
	PeriodThisMonth   Period = "this-month"
	PeriodLastMonth   Period = "last-month"
	PeriodPast3Months Period = "past-3-months"
	PeriodPast6Months Period = "past-6-months"
	PeriodPastYear    Period = "past-year"
	PeriodThisYear    Period = "this-year"
	PeriodLastYear    Period = "last-year"
	PeriodCustom      Period = "custom"
)

type (
	// Period is a named shorthand for a date interval.
	Period string

	// DateRange is a resolved inclusive date interval. Period records the
	// originating token for display only.
	DateRange struct {
		From   Date   `json:"from"`
		To     Date   `json:"to"`
		Period Period `json:"period"`
	}

	// CustomBounds carries explicit bounds for the custom period. A zero
	// Date means the bound was not provided.
	CustomBounds struct {
		From Date
		To   Date
	}
)

// ResolveDateRange maps a period token to concrete inclusive bounds,
// evaluated against now. Weeks run Monday through Sunday. Unknown tokens
// and custom ranges with a missing bound fall back to this-week; there are
// no error conditions.
func ResolveDateRange(p Period, custom CustomBounds, now time.Time) DateRange {
	today := DateOf(now)

	switch p {
	case PeriodThisWeek:
		mon := startOfWeek(today)
		return DateRange{From: mon, To: addDays(mon, 6), Period: p}
	case PeriodLastWeek:
		mon := addDays(startOfWeek(today), -7)
		return DateRange{From: mon, To: addDays(mon, 6), Period: p}
	case PeriodThisMonth:
		return monthRange(today.Year(), today.Month(), p)
	case PeriodLastMonth:
		prev := NewDate(today.Year(), int(today.Month()), 1).AddDate(0, -1, 0)
		return monthRange(prev.Year(), prev.Month(), p)
	case PeriodPast3Months:
		return DateRange{From: DateOf(now.AddDate(0, -3, 0)), To: today, Period: p}
	case PeriodPast6Months:
		return DateRange{From: DateOf(now.AddDate(0, -6, 0)), To: today, Period: p}
	case PeriodPastYear:
		return DateRange{From: DateOf(now.AddDate(-1, 0, 0)), To: today, Period: p}
	case PeriodThisYear:
		return yearRange(today.Year(), p)
	case PeriodLastYear:
		return yearRange(today.Year()-1, p)
	case PeriodCustom:
		if !custom.From.IsZero() && !custom.To.IsZero() {
			return DateRange{From: custom.From, To: custom.To, Period: p}
		}
		// Documented fallback when either bound is missing.
		return ResolveDateRange(PeriodThisWeek, CustomBounds{}, now)
	default:
		return ResolveDateRange(PeriodThisWeek, CustomBounds{}, now)
	}
}

// Contains reports whether d falls within the inclusive range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From.Time) && !d.After(r.To.Time)
}

// startOfWeek returns the Monday of the ISO week containing d.
func startOfWeek(d Date) Date {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	return addDays(d, -(wd - 1))
}

func addDays(d Date, n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func monthRange(year int, month time.Month, p Period) DateRange {
	first := NewDate(year, int(month), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return DateRange{From: first, To: last, Period: p}
}

func yearRange(year int, p Period) DateRange {
	return DateRange{From: NewDate(year, 1, 1), To: NewDate(year, 12, 31), Period: p}
}
