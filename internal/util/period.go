package util

import (
	"fmt"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
)

// Period is a resolved calendar window at date precision. Start and End are
// both inclusive, at midnight UTC.
type Period struct {
	Granularity domain.Granularity
	Start       time.Time
	End         time.Time
}

// ResolvePeriod returns the canonical period of the given granularity
// containing date. Weeks start on Monday.
func ResolvePeriod(g domain.Granularity, date time.Time) (Period, error) {
	d := TruncateToDay(date)
	switch g {
	case domain.GranularityYear:
		start := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return Period{Granularity: g, Start: start, End: end}, nil
	case domain.GranularityMonth:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(d.Year(), d.Month(), LastDayOfMonth(d.Year(), d.Month()), 0, 0, 0, 0, time.UTC)
		return Period{Granularity: g, Start: start, End: end}, nil
	case domain.GranularityWeek:
		offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
		start := d.AddDate(0, 0, -offset)
		return Period{Granularity: g, Start: start, End: start.AddDate(0, 0, 6)}, nil
	default:
		return Period{}, domain.ErrInvalidGranularity
	}
}

// Prev returns the period one unit earlier.
func (p Period) Prev() Period {
	return p.shift(-1)
}

// Next returns the period one unit later.
func (p Period) Next() Period {
	return p.shift(1)
}

func (p Period) shift(units int) Period {
	var anchor time.Time
	switch p.Granularity {
	case domain.GranularityYear:
		anchor = p.Start.AddDate(units, 0, 0)
	case domain.GranularityMonth:
		// Start is always the first of the month, so AddDate cannot overflow
		// into the wrong month.
		anchor = p.Start.AddDate(0, units, 0)
	default:
		anchor = p.Start.AddDate(0, 0, 7*units)
	}
	shifted, _ := ResolvePeriod(p.Granularity, anchor)
	return shifted
}

// Key returns the stable identifier used for period navigation: "2025" for
// years, "2025-01" for months, the Monday date "2025-01-06" for weeks.
func (p Period) Key() string {
	switch p.Granularity {
	case domain.GranularityYear:
		return p.Start.Format("2006")
	case domain.GranularityMonth:
		return p.Start.Format("2006-01")
	default:
		return p.Start.Format("2006-01-02")
	}
}

// Label returns a human-readable rendering of the window.
func (p Period) Label() string {
	switch p.Granularity {
	case domain.GranularityYear:
		return p.Start.Format("2006")
	case domain.GranularityMonth:
		return p.Start.Format("January 2006")
	default:
		if p.Start.Year() != p.End.Year() {
			return fmt.Sprintf("%s - %s", p.Start.Format("Jan 2, 2006"), p.End.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s - %s, %d", p.Start.Format("Jan 2"), p.End.Format("Jan 2"), p.Start.Year())
	}
}

// Contains reports whether the date falls inside the window.
func (p Period) Contains(t time.Time) bool {
	d := TruncateToDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of days in the window.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// BucketCount returns the number of time-series sub-buckets for the window:
// a year buckets by month, a month or week by day.
func (p Period) BucketCount() int {
	if p.Granularity == domain.GranularityYear {
		return 12
	}
	return p.Days()
}

// BucketIndex returns the zero-based sub-bucket for a date inside the
// window, or -1 when the date falls outside it.
func (p Period) BucketIndex(t time.Time) int {
	if !p.Contains(t) {
		return -1
	}
	d := TruncateToDay(t)
	if p.Granularity == domain.GranularityYear {
		return int(d.Month()) - 1
	}
	return int(d.Sub(p.Start).Hours() / 24)
}

// BucketLabel returns the label for the i-th sub-bucket: month abbreviations
// for a year, day-of-month for a month, weekday abbreviations for a week.
func (p Period) BucketLabel(i int) string {
	switch p.Granularity {
	case domain.GranularityYear:
		return time.Month(i + 1).String()[:3]
	case domain.GranularityWeek:
		return p.Start.AddDate(0, 0, i).Format("Mon")
	default:
		return fmt.Sprintf("%d", i+1)
	}
}

// LastDayOfMonth returns the last calendar day of the month, handling 28-31
// day months and leap years.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TruncateToDay drops the time-of-day component and normalizes to UTC.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClampDayToMonth returns the actual date for a target day in a month,
// pulling day 31 back to Feb 28/29 and similar.
func ClampDayToMonth(year int, month time.Month, targetDay int) time.Time {
	lastDay := LastDayOfMonth(year, month)
	if targetDay > lastDay {
		targetDay = lastDay
	}
	return time.Date(year, month, targetDay, 0, 0, 0, 0, time.UTC)
}
