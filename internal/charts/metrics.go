package charts

import (
	"math"
	"sort"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

const (
	unknownTitle  = "Unknown Title"
	unknownArtist = "Unknown Artist"
	maxDropped    = 3
)

// Signal is a single highlighted entry on an insight card
type Signal struct {
	Rank       int             `json:"rank"`
	TrackTitle string          `json:"track_title"`
	Artist     string          `json:"artist"`
	Movement   models.Movement `json:"movement,omitempty"`
}

// ChartMetrics feeds the homepage insight cards
type ChartMetrics struct {
	Week          string  `json:"week,omitempty"`
	BiggestGainer *Signal `json:"biggest_gainer"`
	HighestDebut  *Signal `json:"highest_debut"`
	LeaderCount   int     `json:"leader_count"`
	ChartCount    int     `json:"chart_count"`
	Sparklines    []int   `json:"sparklines"`
}

// OverviewItem summarises the latest week of one chart family
type OverviewItem struct {
	ChartKey       models.ChartKey `json:"chart_key"`
	Label          string          `json:"label"`
	Week           string          `json:"week"`
	Slug           string          `json:"slug"`
	Href           string          `json:"href"`
	UpdatedDaysAgo int             `json:"updated_days_ago"`
	TopFive        []Signal        `json:"top_five"`
	BiggestGainer  *Signal         `json:"biggest_gainer"`
	HighestDebut   *Signal         `json:"highest_debut"`
	Dropped        []Signal        `json:"dropped"`
}

func toSignal(e models.ChartEntry) Signal {
	s := Signal{
		Rank:       e.Rank,
		TrackTitle: entryTitle(e),
		Artist:     entryArtist(e),
		Movement:   e.Movement,
	}
	if s.TrackTitle == "" {
		s.TrackTitle = unknownTitle
	}
	if s.Artist == "" {
		s.Artist = unknownArtist
	}
	return s
}

// EmptyMetrics is the zero state shown when no chart has entries
func EmptyMetrics() ChartMetrics {
	return ChartMetrics{Sparklines: []int{}}
}

// Metrics builds insight cards from the charts of the latest week only.
// The gainer is the first entry marked up (else the first entry) and the
// debut is the first entry marked new (else the best-ranked entry).
func Metrics(charts []models.Chart) ChartMetrics {
	latest := ""
	for _, c := range charts {
		if c.Week > latest {
			latest = c.Week
		}
	}
	if latest == "" {
		return EmptyMetrics()
	}

	var thisWeek []models.Chart
	var all []models.ChartEntry
	for _, c := range charts {
		if c.Week == latest {
			thisWeek = append(thisWeek, c)
			all = append(all, c.Entries...)
		}
	}
	if len(all) == 0 {
		return EmptyMetrics()
	}

	m := ChartMetrics{
		Week:       latest,
		ChartCount: len(thisWeek),
		Sparklines: make([]int, 0, len(thisWeek)),
	}

	gainer := firstWithMovement(all, models.MovementUp)
	if gainer == nil {
		gainer = &all[0]
	}
	g := toSignal(*gainer)
	m.BiggestGainer = &g

	debut := firstWithMovement(all, models.MovementNew)
	if debut == nil {
		debut = bestRanked(all)
	}
	d := toSignal(*debut)
	m.HighestDebut = &d

	for _, c := range thisWeek {
		for _, e := range c.Entries {
			if e.Rank == 1 {
				m.LeaderCount++
				break
			}
		}
		m.Sparklines = append(m.Sparklines, len(c.Entries))
	}
	return m
}

func firstWithMovement(entries []models.ChartEntry, mv models.Movement) *models.ChartEntry {
	for i := range entries {
		if entries[i].Movement == mv {
			return &entries[i]
		}
	}
	return nil
}

func bestRanked(entries []models.ChartEntry) *models.ChartEntry {
	best := &entries[0]
	for i := range entries {
		if entries[i].Rank < best.Rank {
			best = &entries[i]
		}
	}
	return best
}

// Overview builds one card per chart key, in display order, from the
// latest published week of each family. Keys without charts are skipped.
func Overview(charts []models.Chart, now time.Time) []OverviewItem {
	grouped := make(map[models.ChartKey][]models.Chart)
	for _, c := range charts {
		grouped[c.ChartKey] = append(grouped[c.ChartKey], c)
	}

	items := []OverviewItem{}
	for _, key := range models.ChartKeys {
		family := grouped[key]
		if len(family) == 0 {
			continue
		}
		SortByWeekDesc(family)
		latest := family[0]
		var previous *models.Chart
		if len(family) > 1 {
			previous = &family[1]
		}
		items = append(items, overviewItem(latest, previous, now))
	}
	return items
}

func overviewItem(latest models.Chart, previous *models.Chart, now time.Time) OverviewItem {
	item := OverviewItem{
		ChartKey:       latest.ChartKey,
		Label:          latest.ChartKey.Label(),
		Week:           latest.Week,
		Slug:           latest.Slug,
		Href:           "/charts/" + latest.Slug,
		UpdatedDaysAgo: daysSince(latest, now),
		TopFive:        []Signal{},
		Dropped:        []Signal{},
	}
	if latest.ChartKey == models.ChartKeyHitList {
		item.Href = "/charts/hitlist"
	}

	ranked := make([]models.ChartEntry, 0, len(latest.Entries))
	for _, e := range latest.Entries {
		if e.Rank >= 1 && e.Rank <= 5 {
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
	for _, e := range ranked {
		item.TopFive = append(item.TopFive, toSignal(e))
	}

	if len(latest.Entries) > 0 {
		if g := firstWithMovement(latest.Entries, models.MovementUp); g != nil {
			s := toSignal(*g)
			item.BiggestGainer = &s
		} else {
			s := toSignal(latest.Entries[0])
			item.BiggestGainer = &s
		}
		if d := firstWithMovement(latest.Entries, models.MovementNew); d != nil {
			s := toSignal(*d)
			item.HighestDebut = &s
		}
	}

	if previous != nil {
		for _, p := range previous.Entries {
			if len(item.Dropped) == maxDropped {
				break
			}
			if indexOf(latest.Entries, p) < 0 {
				item.Dropped = append(item.Dropped, toSignal(p))
			}
		}
	}
	return item
}

// daysSince counts whole days from the chart's publish date (or, failing
// that, the Monday of its week) until now. Never negative.
func daysSince(c models.Chart, now time.Time) int {
	ref, ok := c.PublishTime()
	if !ok {
		start, err := WeekStart(c.Week)
		if err != nil {
			return 0
		}
		ref = start
	}
	days := math.Floor(now.Sub(ref).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}
