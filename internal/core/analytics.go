package core

import (
	"math"
	"sort"
	"time"
)

type (
	// SubcategoryAggregate is the hour sum and member entries for one
	// subcategory within a category.
	SubcategoryAggregate struct {
		Subcategory string      `json:"subcategory"`
		Hours       float64     `json:"hours"`
		Entries     []TimeEntry `json:"entries"`
	}

	// CategoryAggregate groups entries under one category. Subcategories
	// keep first-seen order so repeated identical inputs render identically.
	// Percent is nil when the report total is zero; a share that rounds to
	// 0.0 still serializes, so the two cases stay distinguishable.
	CategoryAggregate struct {
		Category      string                  `json:"category"`
		TotalHours    float64                 `json:"totalHours"`
		Percent       *float64                `json:"percent,omitempty"`
		Entries       []TimeEntry             `json:"entries"`
		Subcategories []*SubcategoryAggregate `json:"subcategories"`
	}

	// ChartPoint is one labeled value of a pie or bar series.
	ChartPoint struct {
		Label   string   `json:"label"`
		Hours   float64  `json:"hours"`
		Percent *float64 `json:"percent,omitempty"`
	}

	// MonthBucket is the hour sum for one calendar month.
	MonthBucket struct {
		Year  int     `json:"year"`
		Month int     `json:"month"`
		Hours float64 `json:"hours"`
	}

	// Report is the full aggregation result over a filtered entry set.
	Report struct {
		Categories     []*CategoryAggregate `json:"categories"`
		TotalHours     float64              `json:"totalHours"`
		WorkingDays    int                  `json:"workingDays"`
		AvgHoursPerDay float64              `json:"avgHoursPerDay"`
		Pie            []ChartPoint         `json:"pieData"`
		Bar            []ChartPoint         `json:"barData"`
		MonthlyTrend   []MonthBucket        `json:"monthlyTrend"`
	}
)

// FilterEntries selects entries whose date falls within the range and, for
// non-privileged viewers, whose owner is the viewer. Input order is kept.
func FilterEntries(entries []TimeEntry, r DateRange, v Viewer) []TimeEntry {
	out := make([]TimeEntry, 0, len(entries))
	for _, e := range entries {
		if !r.Contains(e.Date) {
			continue
		}
		if !v.Privileged && e.UserID != v.UserID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Aggregate groups entries into the category/subcategory hierarchy and
// computes the derived statistics. It never fails: empty input yields a
// zero-valued report.
func Aggregate(entries []TimeEntry) Report {
	var (
		report   Report
		catIndex = make(map[string]*CategoryAggregate)
		total    float64
		days     = make(map[Date]struct{})
		months   = make(map[monthKey]float64)
	)

	for _, e := range entries {
		cat, ok := catIndex[e.Category]
		if !ok {
			cat = &CategoryAggregate{Category: e.Category}
			catIndex[e.Category] = cat
			report.Categories = append(report.Categories, cat)
		}
		cat.TotalHours += e.Hours
		cat.Entries = append(cat.Entries, e)

		sub := findSubcategory(cat, e.Subcategory)
		if sub == nil {
			sub = &SubcategoryAggregate{Subcategory: e.Subcategory}
			cat.Subcategories = append(cat.Subcategories, sub)
		}
		sub.Hours += e.Hours
		sub.Entries = append(sub.Entries, e)

		total += e.Hours
		days[e.Date] = struct{}{}
		months[monthKey{e.Date.Year(), e.Date.Month()}] += e.Hours
	}

	report.TotalHours = total
	report.WorkingDays = len(days)
	if report.WorkingDays > 0 {
		report.AvgHoursPerDay = total / float64(report.WorkingDays)
	}

	for _, cat := range report.Categories {
		if total > 0 {
			p := Round1(cat.TotalHours / total * 100)
			cat.Percent = &p
		}
		report.Pie = append(report.Pie, ChartPoint{
			Label:   cat.Category,
			Hours:   cat.TotalHours,
			Percent: cat.Percent,
		})
		report.Bar = append(report.Bar, ChartPoint{
			Label: cat.Category,
			Hours: cat.TotalHours,
		})
	}

	report.MonthlyTrend = trendBuckets(months)
	return report
}

// Category returns the aggregate for a category label, if present.
func (r Report) Category(name string) (*CategoryAggregate, bool) {
	for _, cat := range r.Categories {
		if cat.Category == name {
			return cat, true
		}
	}
	return nil, false
}

// HasTrend reports whether the monthly trend spans enough months to be
// worth displaying.
func (r Report) HasTrend() bool {
	return len(r.MonthlyTrend) >= 2
}

// Round1 rounds to one decimal place, the display precision for hours and
// percentages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type monthKey struct {
	year  int
	month time.Month
}

func findSubcategory(cat *CategoryAggregate, name string) *SubcategoryAggregate {
	for _, sub := range cat.Subcategories {
		if sub.Subcategory == name {
			return sub
		}
	}
	return nil
}

func trendBuckets(months map[monthKey]float64) []MonthBucket {
	if len(months) == 0 {
		return nil
	}
	buckets := make([]MonthBucket, 0, len(months))
	for k, hours := range months {
		buckets = append(buckets, MonthBucket{Year: k.year, Month: int(k.month), Hours: Round1(hours)})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}
