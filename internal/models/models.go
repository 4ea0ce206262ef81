package models

import (
	"strings"
	"time"
)

// Track is the musical work a chart entry refers to
type Track struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ISRC        string `json:"isrc,omitempty"`
	Label       string `json:"label,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// Movement is the editorial week-over-week indicator stored on an entry
type Movement string

const (
	MovementUp   Movement = "up"
	MovementDown Movement = "down"
	MovementSame Movement = "same"
	MovementNew  Movement = "new"
)

// Valid reports whether m is empty or one of the known movements
func (m Movement) Valid() bool {
	switch m {
	case "", MovementUp, MovementDown, MovementSame, MovementNew:
		return true
	}
	return false
}

// ChartEntry is one ranked row of a chart. TrackTitle and Artist are
// denormalized copies of Track, kept in sync on every save.
type ChartEntry struct {
	Rank       int      `json:"rank"`
	Movement   Movement `json:"movement,omitempty"`
	Track      Track    `json:"track"`
	TrackTitle string   `json:"track_title"`
	Artist     string   `json:"artist"`
	Score      *float64 `json:"score,omitempty"`
}

// WeekRange holds display dates (YYYY-MM-DD) for a chart week
type WeekRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ChartStatus string

const (
	ChartStatusDraft     ChartStatus = "draft"
	ChartStatusReview    ChartStatus = "review"
	ChartStatusPublished ChartStatus = "published"
	ChartStatusArchived  ChartStatus = "archived"
)

// Valid reports whether s is a known chart status
func (s ChartStatus) Valid() bool {
	switch s {
	case ChartStatusDraft, ChartStatusReview, ChartStatusPublished, ChartStatusArchived:
		return true
	}
	return false
}

type ChartMode string

const (
	ChartModeManual    ChartMode = "manual"
	ChartModeHybrid    ChartMode = "hybrid"
	ChartModeAutomated ChartMode = "automated"
)

// ChartKey identifies a chart family
type ChartKey string

const (
	ChartKeyHitList      ChartKey = "hitlist"
	ChartKeyRnBSoul      ChartKey = "rnb-soul"
	ChartKeyHipHop       ChartKey = "hip-hop"
	ChartKeySouthernSoul ChartKey = "southern-soul"
	ChartKeyGospel       ChartKey = "gospel"
)

// ChartKeys lists every chart key in editorial display order
var ChartKeys = []ChartKey{
	ChartKeyHitList,
	ChartKeyRnBSoul,
	ChartKeyHipHop,
	ChartKeyGospel,
	ChartKeySouthernSoul,
}

var chartLabels = map[ChartKey]string{
	ChartKeyHitList:      "The HitList",
	ChartKeyRnBSoul:      "R&B & Soul",
	ChartKeyHipHop:       "Hip-Hop",
	ChartKeySouthernSoul: "Southern Soul",
	ChartKeyGospel:       "Gospel",
}

// Label returns the display name, or the raw key when unknown
func (k ChartKey) Label() string {
	if l, ok := chartLabels[k]; ok {
		return l
	}
	return string(k)
}

// Valid reports whether k is a known chart key
func (k ChartKey) Valid() bool {
	_, ok := chartLabels[k]
	return ok
}

// Chart is one published week of a chart family
type Chart struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	ChartKey    ChartKey     `json:"chart_key"`
	ChartMode   ChartMode    `json:"chart_mode"`
	Slug        string       `json:"slug"`
	Status      ChartStatus  `json:"status"`
	PublishDate string       `json:"publish_date,omitempty"`
	Week        string       `json:"week"`
	WeekRange   *WeekRange   `json:"week_range,omitempty"`
	Entries     []ChartEntry `json:"entries"`
	Snapshots   []Snapshot   `json:"snapshots,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PublishTime parses PublishDate, accepting YYYY-MM-DD or RFC 3339
func (c *Chart) PublishTime() (time.Time, bool) {
	if c.PublishDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", c.PublishDate); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, c.PublishDate); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Snapshot is an immutable copy of a chart's entries for a past week
type Snapshot struct {
	ID        int          `json:"id"`
	ChartID   int          `json:"chart_id"`
	Week      string       `json:"week"`
	WeekRange *WeekRange   `json:"week_range,omitempty"`
	Entries   []ChartEntry `json:"entries"`
	CreatedAt time.Time    `json:"created_at"`
}

// ShowSchedule is a show's default airing slot
type ShowSchedule struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// RadioShow is a named programme with default schedule
type RadioShow struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	ShowType    string       `json:"show_type"`
	Hosts       []string     `json:"hosts"`
	Schedule    ShowSchedule `json:"schedule"`
	Description string       `json:"description,omitempty"`
	Genres      []string     `json:"genres,omitempty"`
	IsFeatured  bool         `json:"is_featured"`
}

type ScheduleType string

const (
	ScheduleRecurring ScheduleType = "recurring"
	ScheduleOneTime   ScheduleType = "oneTime"
	ScheduleSpecial   ScheduleType = "special"
)

// Valid reports whether t is a known schedule type
func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleRecurring, ScheduleOneTime, ScheduleSpecial:
		return true
	}
	return false
}

// RadioScheduleItem places a show in the weekly grid. Blank days, start
// or end fall back to the show's default schedule.
type RadioScheduleItem struct {
	ID           int          `json:"id"`
	Label        string       `json:"label"`
	ScheduleType ScheduleType `json:"schedule_type"`
	RadioShowID  int          `json:"radio_show_id"`
	RadioShow    *RadioShow   `json:"radio_show,omitempty"`
	StartTime    string       `json:"start_time"`
	EndTime      string       `json:"end_time"`
	DaysOfWeek   []string     `json:"days_of_week"`
	StartDate    string       `json:"start_date,omitempty"`
	EndDate      string       `json:"end_date,omitempty"`
	Priority     int          `json:"priority"`
	IsLive       bool         `json:"is_live"`
	IsReplay     bool         `json:"is_replay"`
	IsAutomation bool         `json:"is_automation"`
}

type PollStatus string

const (
	PollStatusDraft  PollStatus = "draft"
	PollStatusLive   PollStatus = "live"
	PollStatusClosed PollStatus = "closed"
)

// Valid reports whether s is a known poll status
func (s PollStatus) Valid() bool {
	switch s {
	case PollStatusDraft, PollStatusLive, PollStatusClosed:
		return true
	}
	return false
}

// PollOption is one selectable answer; Slug is what votes reference
type PollOption struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// Poll is an audience question
type Poll struct {
	ID                int          `json:"id"`
	Question          string       `json:"question"`
	Description       string       `json:"description,omitempty"`
	Options           []PollOption `json:"options"`
	Status            PollStatus   `json:"status"`
	FeatureOnHomepage bool         `json:"feature_on_homepage"`
	StartDate         *time.Time   `json:"start_date,omitempty"`
	EndDate           *time.Time   `json:"end_date,omitempty"`
	Context           string       `json:"context,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// HasOption reports whether slug names one of the poll's options
func (p *Poll) HasOption(slug string) bool {
	for _, o := range p.Options {
		if o.Slug == slug {
			return true
		}
	}
	return false
}

// AcceptsVotes reports whether the poll is live and inside its window at now
func (p *Poll) AcceptsVotes(now time.Time) bool {
	if p.Status != PollStatusLive {
		return false
	}
	if p.StartDate != nil && now.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return false
	}
	return true
}

// PollVote is a single recorded vote. IPHash is the salted client
// fingerprint; the raw address is never stored.
type PollVote struct {
	PollID    int       `json:"poll_id"`
	Option    string    `json:"option"`
	IPHash    string    `json:"ip_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// PollResults maps option slug to vote count
type PollResults map[string]int

// NowPlaying is the normalized stream metadata
type NowPlaying struct {
	Track   string  `json:"track"`
	Artist  string  `json:"artist"`
	Artwork *string `json:"artwork"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NormalizeDay title-cases a weekday name ("monday" -> "Monday")
func NormalizeDay(day string) string {
	day = strings.TrimSpace(day)
	if day == "" {
		return ""
	}
	return strings.ToUpper(day[:1]) + strings.ToLower(day[1:])
}
