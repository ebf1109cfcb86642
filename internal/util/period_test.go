package util

import (
	"testing"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod_Year(t *testing.T) {
	p, err := ResolvePeriod(domain.GranularityYear, time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.January, 1), p.Start)
	assert.Equal(t, day(2025, time.December, 31), p.End)
	assert.Equal(t, "2025", p.Key())
	assert.Equal(t, "2025", p.Label())
}

func TestResolvePeriod_Month(t *testing.T) {
	p, err := ResolvePeriod(domain.GranularityMonth, day(2024, time.February, 10))
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.February, 1), p.Start)
	assert.Equal(t, day(2024, time.February, 29), p.End, "leap February ends on the 29th")
	assert.Equal(t, "2024-02", p.Key())
	assert.Equal(t, "February 2024", p.Label())
	assert.Equal(t, 29, p.Days())
}

func TestResolvePeriod_WeekStartsMonday(t *testing.T) {
	// 2025-03-12 is a Wednesday
	p, err := ResolvePeriod(domain.GranularityWeek, day(2025, time.March, 12))
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.March, 10), p.Start)
	assert.Equal(t, day(2025, time.March, 16), p.End)
	assert.Equal(t, "2025-03-10", p.Key())

	// A Monday resolves to itself
	p, err = ResolvePeriod(domain.GranularityWeek, day(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.March, 10), p.Start)

	// A Sunday belongs to the week that started the previous Monday
	p, err = ResolvePeriod(domain.GranularityWeek, day(2025, time.March, 16))
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.March, 10), p.Start)
}

func TestResolvePeriod_InvalidGranularity(t *testing.T) {
	_, err := ResolvePeriod(domain.Granularity("quarter"), day(2025, time.March, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidGranularity)
}

func TestPeriod_PrevNext(t *testing.T) {
	p, err := ResolvePeriod(domain.GranularityMonth, day(2025, time.January, 15))
	require.NoError(t, err)

	prev := p.Prev()
	assert.Equal(t, "2024-12", prev.Key(), "month navigation crosses the year boundary")
	assert.Equal(t, p.Key(), prev.Next().Key())

	year, err := ResolvePeriod(domain.GranularityYear, day(2025, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024", year.Prev().Key())
	assert.Equal(t, "2026", year.Next().Key())

	week, err := ResolvePeriod(domain.GranularityWeek, day(2024, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, "2024-12-30", week.Key())
	assert.Equal(t, "2025-01-06", week.Next().Key())
	assert.Equal(t, week.Key(), week.Next().Prev().Key())
}

func TestPeriod_Contains(t *testing.T) {
	p, err := ResolvePeriod(domain.GranularityMonth, day(2025, time.April, 1))
	require.NoError(t, err)

	assert.True(t, p.Contains(day(2025, time.April, 1)))
	assert.True(t, p.Contains(day(2025, time.April, 30)))
	assert.True(t, p.Contains(time.Date(2025, time.April, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(day(2025, time.March, 31)))
	assert.False(t, p.Contains(day(2025, time.May, 1)))
}

func TestPeriod_Buckets(t *testing.T) {
	year, err := ResolvePeriod(domain.GranularityYear, day(2025, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 12, year.BucketCount())
	assert.Equal(t, 0, year.BucketIndex(day(2025, time.January, 20)))
	assert.Equal(t, 11, year.BucketIndex(day(2025, time.December, 1)))
	assert.Equal(t, -1, year.BucketIndex(day(2026, time.January, 1)))
	assert.Equal(t, "Jan", year.BucketLabel(0))
	assert.Equal(t, "Dec", year.BucketLabel(11))

	month, err := ResolvePeriod(domain.GranularityMonth, day(2025, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, 30, month.BucketCount())
	assert.Equal(t, 14, month.BucketIndex(day(2025, time.April, 15)))
	assert.Equal(t, "15", month.BucketLabel(14))

	week, err := ResolvePeriod(domain.GranularityWeek, day(2025, time.March, 12))
	require.NoError(t, err)
	assert.Equal(t, 7, week.BucketCount())
	assert.Equal(t, "Mon", week.BucketLabel(0))
	assert.Equal(t, "Sun", week.BucketLabel(6))
	assert.Equal(t, 2, week.BucketIndex(day(2025, time.March, 12)))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 31, LastDayOfMonth(2025, time.January))
	assert.Equal(t, 28, LastDayOfMonth(2025, time.February))
	assert.Equal(t, 29, LastDayOfMonth(2024, time.February))
	assert.Equal(t, 30, LastDayOfMonth(2025, time.April))
	assert.Equal(t, 31, LastDayOfMonth(2025, time.December))
}

func TestClampDayToMonth(t *testing.T) {
	assert.Equal(t, day(2025, time.February, 28), ClampDayToMonth(2025, time.February, 31))
	assert.Equal(t, day(2024, time.February, 29), ClampDayToMonth(2024, time.February, 31))
	assert.Equal(t, day(2025, time.April, 15), ClampDayToMonth(2025, time.April, 15))
	assert.Equal(t, day(2025, time.April, 30), ClampDayToMonth(2025, time.April, 31))
}

func TestTruncateToDay(t *testing.T) {
	got := TruncateToDay(time.Date(2025, time.June, 3, 18, 22, 7, 999, time.FixedZone("CET", 3600)))
	assert.Equal(t, day(2025, time.June, 3), got)
}

func TestWeekLabelAcrossYears(t *testing.T) {
	p, err := ResolvePeriod(domain.GranularityWeek, day(2024, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, "Dec 30, 2024 - Jan 5, 2025", p.Label())
}
