package charts

import (
	"sort"
	"strings"

	"github.com/wavenation/wavenation/internal/models"
)

// MaxCompareWeeks bounds how far back a chart may be compared
const MaxCompareWeeks = 5

// Row is a current-week entry annotated against a compare week
type Row struct {
	Rank         int             `json:"rank"`
	TrackTitle   string          `json:"track_title"`
	Artist       string          `json:"artist"`
	Track        models.Track    `json:"track"`
	Movement     models.Movement `json:"movement,omitempty"`
	PreviousRank *int            `json:"previous_rank"`
	Delta        *int            `json:"delta"`
	IsDebut      bool            `json:"is_debut"`
}

// Comparison is the week-over-week view of one chart
type Comparison struct {
	Week          string              `json:"week,omitempty"`
	CompareWeek   string              `json:"compare_week,omitempty"`
	WeekDiff      int                 `json:"week_diff,omitempty"`
	Entries       []Row               `json:"entries"`
	Dropped       []models.ChartEntry `json:"dropped"`
	BiggestGainer *Row                `json:"biggest_gainer"`
	TopDebut      *Row                `json:"top_debut"`
	TopFive       []Row               `json:"top_five"`
}

// TrackKey is the identity used to match entries across weeks. An ISRC
// wins when present; otherwise the exact title and artist strings are
// used, so a retitled or re-cased track reads as a drop plus a debut.
func TrackKey(e models.ChartEntry) string {
	if isrc := normalizeISRC(e.Track.ISRC); isrc != "" {
		return "isrc:" + isrc
	}
	return entryTitle(e) + "__" + entryArtist(e)
}

// SameTrack reports whether a and b are the same recording. ISRCs decide
// only when both entries carry one.
func SameTrack(a, b models.ChartEntry) bool {
	ia, ib := normalizeISRC(a.Track.ISRC), normalizeISRC(b.Track.ISRC)
	if ia != "" && ib != "" {
		return ia == ib
	}
	return entryTitle(a) == entryTitle(b) && entryArtist(a) == entryArtist(b)
}

func normalizeISRC(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func entryTitle(e models.ChartEntry) string {
	if e.TrackTitle != "" {
		return e.TrackTitle
	}
	return e.Track.Title
}

func entryArtist(e models.ChartEntry) string {
	if e.Artist != "" {
		return e.Artist
	}
	return e.Track.Artist
}

func indexOf(entries []models.ChartEntry, target models.ChartEntry) int {
	for i, e := range entries {
		if SameTrack(e, target) {
			return i
		}
	}
	return -1
}

// Compare annotates current against previous. A nil previous means no
// compare week was chosen: every row is a debut with no delta.
func Compare(current, previous []models.ChartEntry) Comparison {
	cmp := Comparison{
		Entries: make([]Row, 0, len(current)),
		Dropped: []models.ChartEntry{},
		TopFive: []Row{},
	}

	for _, e := range current {
		row := Row{
			Rank:       e.Rank,
			TrackTitle: entryTitle(e),
			Artist:     entryArtist(e),
			Track:      e.Track,
			Movement:   e.Movement,
			IsDebut:    true,
		}
		if previous != nil {
			if idx := indexOf(previous, e); idx >= 0 {
				prevRank := previous[idx].Rank
				delta := prevRank - e.Rank
				row.PreviousRank = &prevRank
				row.Delta = &delta
				row.IsDebut = false
			}
		}
		cmp.Entries = append(cmp.Entries, row)
	}

	if previous != nil {
		for _, p := range previous {
			if indexOf(current, p) < 0 {
				cmp.Dropped = append(cmp.Dropped, p)
			}
		}
	}

	for i := range cmp.Entries {
		row := &cmp.Entries[i]
		if row.Delta != nil && *row.Delta > 0 {
			if cmp.BiggestGainer == nil || *row.Delta > *cmp.BiggestGainer.Delta {
				cmp.BiggestGainer = row
			}
		}
		if row.IsDebut && cmp.TopDebut == nil {
			cmp.TopDebut = row
		}
	}

	cmp.TopFive = topFiveRows(cmp.Entries)
	return cmp
}

// CompareCharts compares two chart documents and records their weeks.
// A nil previous behaves as in Compare.
func CompareCharts(current *models.Chart, previous *models.Chart) Comparison {
	if previous == nil {
		cmp := Compare(current.Entries, nil)
		cmp.Week = current.Week
		return cmp
	}
	cmp := Compare(current.Entries, previous.Entries)
	cmp.Week = current.Week
	cmp.CompareWeek = previous.Week
	if diff, err := WeeksBetween(previous.Week, current.Week); err == nil {
		cmp.WeekDiff = diff
	}
	return cmp
}

func topFiveRows(rows []Row) []Row {
	out := make([]Row, 0, 5)
	for _, r := range rows {
		if r.Rank >= 1 && r.Rank <= 5 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// ComparableWeeks returns the charts of the same key whose week lies one
// to five weeks before current, newest first. The first element is the
// default compare week.
func ComparableWeeks(current models.Chart, candidates []models.Chart) []models.Chart {
	out := []models.Chart{}
	for _, c := range candidates {
		if c.ChartKey != current.ChartKey || (c.ID != 0 && c.ID == current.ID) {
			continue
		}
		diff, err := WeeksBetween(c.Week, current.Week)
		if err != nil || diff < 1 || diff > MaxCompareWeeks {
			continue
		}
		out = append(out, c)
	}
	SortByWeekDesc(out)
	return out
}
