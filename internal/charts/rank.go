package charts

import (
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// NormalizeAndRank prepares a chart for saving. A blank week is derived
// from the publish date and a set one is rewritten as YYYY-Www. The slug
// follows chart key and week, and every entry is ranked by position with
// its display fields copied from the nested track. Running it twice
// yields the same chart.
func NormalizeAndRank(c *models.Chart) {
	if c.Week == "" {
		if t, ok := c.PublishTime(); ok {
			c.Week = ISOWeek(t)
		}
	} else if w, err := CanonicalWeek(c.Week); err == nil {
		c.Week = w
	}
	if c.ChartKey != "" && c.Week != "" {
		c.Slug = Slug(c.ChartKey, c.Week)
	}
	if c.ChartMode == "" {
		c.ChartMode = models.ChartModeManual
	}
	if c.WeekRange == nil && c.Week != "" {
		if r, err := RangeForWeek(c.Week); err == nil {
			c.WeekRange = r
		}
	}
	for i := range c.Entries {
		e := &c.Entries[i]
		e.Rank = i + 1
		e.TrackTitle = e.Track.Title
		e.Artist = e.Track.Artist
	}
}

// SnapshotOnWeekChange returns a snapshot of previous when the chart has
// moved to a new week. It reports false for a first save, a previous
// document without a week, or an unchanged week.
func SnapshotOnWeekChange(previous, current *models.Chart, now time.Time) (*models.Snapshot, bool) {
	if previous == nil || current == nil {
		return nil, false
	}
	if previous.Week == "" || previous.Week == current.Week {
		return nil, false
	}
	snap := &models.Snapshot{
		ChartID:   previous.ID,
		Week:      previous.Week,
		Entries:   CopyEntries(previous.Entries),
		CreatedAt: now,
	}
	if previous.WeekRange != nil {
		r := *previous.WeekRange
		snap.WeekRange = &r
	}
	return snap, true
}

// CopyEntries deep-copies entries so later edits cannot leak into a snapshot
func CopyEntries(entries []models.ChartEntry) []models.ChartEntry {
	out := make([]models.ChartEntry, len(entries))
	for i, e := range entries {
		if e.Score != nil {
			s := *e.Score
			e.Score = &s
		}
		out[i] = e
	}
	return out
}
