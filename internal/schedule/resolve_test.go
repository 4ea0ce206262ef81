package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenation/wavenation/internal/models"
)

func item(id int, days []string, start, end string) models.RadioScheduleItem {
	return models.RadioScheduleItem{
		ID:         id,
		DaysOfWeek: days,
		StartTime:  start,
		EndTime:    end,
		RadioShow:  &models.RadioShow{Title: "Show"},
	}
}

// Monday 19 October 2026 in the authoritative zone.
func monday(t *testing.T, hour, minute int) time.Time {
	return time.Date(2026, time.October, 19, hour, minute, 0, 0, chicago(t))
}

func TestNormalize_FallsBackToShowDefaults(t *testing.T) {
	show := &models.RadioShow{
		Title:    "Morning Flow",
		Schedule: models.ShowSchedule{Days: []string{"monday", "Friday"}, StartTime: "06:00", EndTime: "1000"},
	}
	items := []models.RadioScheduleItem{
		{ID: 1, RadioShow: show},
		{ID: 2, RadioShow: show, StartTime: "0700", DaysOfWeek: []string{"Tuesday"}},
	}

	slots := Normalize(items)

	require.Len(t, slots, 2)
	assert.Equal(t, 1, slots[0].ID)
	assert.Equal(t, []string{"Monday", "Friday"}, slots[0].Days)
	assert.Equal(t, "0600", slots[0].Start)
	assert.Equal(t, "1000", slots[0].End)
	assert.Equal(t, []string{"Tuesday"}, slots[1].Days)
	assert.Equal(t, "0700", slots[1].Start)
	assert.Equal(t, "1000", slots[1].End)
}

func TestNormalize_DropsUnusableItems(t *testing.T) {
	items := []models.RadioScheduleItem{
		{ID: 1},
		item(2, nil, "0900", "1000"),
		item(3, []string{"Monday"}, "", "1000"),
		item(4, []string{"Monday"}, "0900", ""),
		item(5, []string{"Monday"}, "2500", "2600"),
		item(6, []string{" "}, "0900", "1000"),
		item(7, []string{"Monday"}, "0900", "1000"),
	}

	slots := Normalize(items)

	require.Len(t, slots, 1)
	assert.Equal(t, 7, slots[0].ID)
}

func TestNormalize_SortsByStartStable(t *testing.T) {
	items := []models.RadioScheduleItem{
		item(1, []string{"Monday"}, "1400", "1500"),
		item(2, []string{"Monday"}, "0900", "1000"),
		item(3, []string{"Monday"}, "09:00", "1100"),
	}

	slots := Normalize(items)

	ids := []int{slots[0].ID, slots[1].ID, slots[2].ID}
	assert.Equal(t, []int{2, 3, 1}, ids)
}

func TestResolve_LiveSingleEntry(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{item(1, []string{"Monday"}, "0900", "1000")})

	res := Resolve(slots, monday(t, 9, 30), loc)

	require.NotNil(t, res.Live)
	assert.Equal(t, 1, res.Live.ID)
	assert.Nil(t, res.UpNext)
	assert.Equal(t, StateLive, res.State())
	assert.True(t, res.Live.StartsAt.Equal(monday(t, 9, 0)))
	assert.True(t, res.Live.EndsAt.Equal(monday(t, 10, 0)))
}

func TestResolve_LiveWithLaterEntry(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{
		item(1, []string{"Monday"}, "0900", "1000"),
		item(2, []string{"Thursday"}, "1200", "1300"),
	})

	res := Resolve(slots, monday(t, 9, 30), loc)

	require.NotNil(t, res.Live)
	assert.Equal(t, 1, res.Live.ID)
	require.NotNil(t, res.UpNext)
	assert.Equal(t, 2, res.UpNext.ID)
	assert.True(t, res.UpNext.StartsAt.Equal(time.Date(2026, time.October, 22, 12, 0, 0, 0, loc)))
}

func TestResolve_UpNextLaterInWeek(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{item(1, []string{"Wednesday"}, "1400", "1600")})

	res := Resolve(slots, monday(t, 10, 0), loc)

	assert.Nil(t, res.Live)
	require.NotNil(t, res.UpNext)
	assert.Equal(t, 1, res.UpNext.ID)
	assert.True(t, res.UpNext.StartsAt.Equal(time.Date(2026, time.October, 21, 14, 0, 0, 0, loc)))
	assert.Equal(t, StateUpNext, res.State())
}

func TestResolve_BoundariesAreInclusive(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{item(1, []string{"Monday"}, "0900", "1000")})

	assert.NotNil(t, Resolve(slots, monday(t, 9, 0), loc).Live)
	assert.NotNil(t, Resolve(slots, monday(t, 10, 0), loc).Live)
	assert.Nil(t, Resolve(slots, monday(t, 10, 1), loc).Live)
}

func TestResolve_OverlapFirstInScanOrderWins(t *testing.T) {
	loc := chicago(t)
	items := []models.RadioScheduleItem{
		item(1, []string{"Monday"}, "0900", "1100"),
		item(2, []string{"Monday"}, "0900", "1000"),
	}
	items[1].Priority = 10

	res := Resolve(Normalize(items), monday(t, 9, 30), loc)

	require.NotNil(t, res.Live)
	assert.Equal(t, 1, res.Live.ID)
}

func TestResolve_SameDayLaterShowIsNextEvenWhenEarlierEnded(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{
		item(1, []string{"Monday"}, "0600", "0800"),
		item(2, []string{"Monday"}, "1800", "2000"),
	})

	res := Resolve(slots, monday(t, 12, 0), loc)

	assert.Nil(t, res.Live)
	require.NotNil(t, res.UpNext)
	assert.Equal(t, 2, res.UpNext.ID)
}

func TestResolve_ScansAtMostSevenDays(t *testing.T) {
	loc := chicago(t)
	// Only airs Monday mornings; at Monday noon the next airing is 7 days out.
	slots := Normalize([]models.RadioScheduleItem{item(1, []string{"Monday"}, "0600", "0800")})

	res := Resolve(slots, monday(t, 12, 0), loc)

	assert.Nil(t, res.Live)
	assert.Nil(t, res.UpNext)
	assert.Equal(t, StateIdle, res.State())
	assert.Len(t, res.Schedule, 1)
}

func TestResolve_UsesAuthoritativeZoneNotCallerZone(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{item(1, []string{"Monday"}, "0900", "1000")})

	// 09:30 Chicago expressed as a Tokyo instant (already Monday night there).
	now := monday(t, 9, 30).In(time.FixedZone("JST", 9*3600))

	res := Resolve(slots, now, loc)

	require.NotNil(t, res.Live)
}

func TestResolve_AcrossDSTChange(t *testing.T) {
	loc := chicago(t)
	slots := Normalize([]models.RadioScheduleItem{item(1, []string{"Monday"}, "0900", "1000")})

	// Friday 6 March 2026 (CST); the next Monday is after clocks go forward.
	now := time.Date(2026, time.March, 6, 12, 0, 0, 0, loc)

	res := Resolve(slots, now, loc)

	require.NotNil(t, res.UpNext)
	assert.Equal(t, time.Date(2026, time.March, 9, 14, 0, 0, 0, time.UTC), res.UpNext.StartsAt.UTC())
}

func TestResolve_Empty(t *testing.T) {
	res := Resolve(nil, time.Now(), chicago(t))

	assert.Nil(t, res.Live)
	assert.Nil(t, res.UpNext)
	assert.NotNil(t, res.Schedule)
}

func TestResolutionState_Loading(t *testing.T) {
	var res *Resolution
	assert.Equal(t, StateLoading, res.State())
}
