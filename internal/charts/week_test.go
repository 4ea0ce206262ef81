package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenation/wavenation/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestISOWeek(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"mid year", date(2026, time.October, 17), "2026-W42"},
		{"new year belongs to previous week-year", date(2027, time.January, 1), "2026-W53"},
		{"sunday before first monday", date(2021, time.January, 3), "2020-W53"},
		{"late december in next week-year", date(2025, time.December, 29), "2026-W01"},
		{"single digit week is padded", date(2026, time.January, 7), "2026-W02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ISOWeek(tt.t))
		})
	}
}

func TestWeekStart(t *testing.T) {
	start, err := WeekStart("2026-W42")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Monday, start.Weekday())

	start, err = WeekStart("2026-W01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), start)

	start, err = WeekStart("2020-W53")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.December, 28, 0, 0, 0, 0, time.UTC), start)
}

func TestWeekStart_Invalid(t *testing.T) {
	for _, week := range []string{"", "2026", "2026-42", "2026-W00", "2026-W54", "abcd-W10", "2021-W53"} {
		t.Run(week, func(t *testing.T) {
			_, err := WeekStart(week)
			assert.Error(t, err)
		})
	}
}

func TestWeekStart_RoundTripsISOWeek(t *testing.T) {
	day := date(2024, time.January, 1)
	for i := 0; i < 800; i++ {
		week := ISOWeek(day)
		start, err := WeekStart(week)
		require.NoError(t, err, week)
		assert.Equal(t, week, ISOWeek(start), day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
}

func TestRangeForWeek(t *testing.T) {
	r, err := RangeForWeek("2026-W42")
	require.NoError(t, err)
	assert.Equal(t, &models.WeekRange{StartDate: "2026-10-12", EndDate: "2026-10-18"}, r)
}

func TestWeeksBetween(t *testing.T) {
	diff, err := WeeksBetween("2025-W52", "2026-W02")
	require.NoError(t, err)
	assert.Equal(t, 2, diff)

	diff, err = WeeksBetween("2026-W10", "2026-W09")
	require.NoError(t, err)
	assert.Equal(t, -1, diff)

	_, err = WeeksBetween("bad", "2026-W09")
	assert.Error(t, err)
}

func TestCanonicalWeek(t *testing.T) {
	tests := map[string]string{
		"2026-W09":   "2026-W09",
		"2026-W9":    "2026-W09",
		" 2026-W009": "2026-W09",
		"2026-W53":   "2026-W53",
	}
	for in, want := range tests {
		got, err := CanonicalWeek(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "2026-W0", "2021-W53", "W9"} {
		_, err := CanonicalWeek(bad)
		assert.Error(t, err, bad)
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "hip-hop-2026-W42", Slug(models.ChartKeyHipHop, "2026-W42"))
}

func TestSortByWeekDesc(t *testing.T) {
	charts := []models.Chart{
		{ID: 1, Week: "2025-W50"},
		{ID: 2, Week: ""},
		{ID: 3, Week: "2026-W02"},
		{ID: 4, Week: "2026-W10"},
		{ID: 5, Week: "garbage"},
		{ID: 6, Week: "2025-W52"},
	}

	SortByWeekDesc(charts)

	ids := make([]int, len(charts))
	for i, c := range charts {
		ids[i] = c.ID
	}
	assert.Equal(t, []int{4, 3, 6, 1, 2, 5}, ids)
}
