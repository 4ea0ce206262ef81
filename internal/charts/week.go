// Package charts implements chart ranking, week snapshots and
// week-over-week comparison. Everything here is pure and synchronous.
package charts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// ISOWeek formats t as an ISO-8601 week string (YYYY-Www). The year is the
// ISO week-year, so early January can belong to the previous year.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseWeek splits a week string into ISO year and week number
func ParseWeek(week string) (year, num int, err error) {
	parts := strings.SplitN(strings.TrimSpace(week), "-W", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid week %q", week)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week %q: %w", week, err)
	}
	num, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week %q: %w", week, err)
	}
	if num < 1 || num > 53 {
		return 0, 0, fmt.Errorf("invalid week %q: week out of range", week)
	}
	return year, num, nil
}

// CanonicalWeek rewrites a week as zero-padded YYYY-Www, so "2026-W9" and
// "2026-W09" name the same chart week. Weeks the year does not have are
// rejected.
func CanonicalWeek(week string) (string, error) {
	start, err := WeekStart(week)
	if err != nil {
		return "", err
	}
	return ISOWeek(start), nil
}

// WeekStart returns the Monday (UTC midnight) that opens the ISO week
func WeekStart(week string) (time.Time, error) {
	year, num, err := ParseWeek(week)
	if err != nil {
		return time.Time{}, err
	}
	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	start := monday.AddDate(0, 0, (num-1)*7)
	if y, _ := start.ISOWeek(); y != year {
		return time.Time{}, fmt.Errorf("invalid week %q: year has no week %d", week, num)
	}
	return start, nil
}

// RangeForWeek returns the Monday..Sunday display range of week
func RangeForWeek(week string) (*models.WeekRange, error) {
	start, err := WeekStart(week)
	if err != nil {
		return nil, err
	}
	return &models.WeekRange{
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(0, 0, 6).Format("2006-01-02"),
	}, nil
}

// WeeksBetween returns how many whole weeks later is than earlier
func WeeksBetween(earlier, later string) (int, error) {
	a, err := WeekStart(earlier)
	if err != nil {
		return 0, err
	}
	b, err := WeekStart(later)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / (24 * 7)), nil
}

// Slug builds the canonical chart slug
func Slug(key models.ChartKey, week string) string {
	return fmt.Sprintf("%s-%s", key, week)
}

// SortByWeekDesc orders charts newest week first. Charts whose week
// cannot be parsed sort last, keeping their relative order.
func SortByWeekDesc(charts []models.Chart) {
	sort.SliceStable(charts, func(i, j int) bool {
		return weekLess(charts[j].Week, charts[i].Week)
	})
}

// weekLess orders week strings chronologically; unparseable weeks come
// before every valid one so they land last in a descending sort.
func weekLess(a, b string) bool {
	ay, aw, aerr := ParseWeek(a)
	by, bw, berr := ParseWeek(b)
	switch {
	case aerr != nil && berr != nil:
		return false
	case aerr != nil:
		return true
	case berr != nil:
		return false
	}
	if ay != by {
		return ay < by
	}
	return aw < bw
}
