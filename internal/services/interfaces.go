package services

import (
	"context"
	"io"
	"time"

	"github.com/wavenation/wavenation/internal/charts"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
	"github.com/wavenation/wavenation/internal/schedule"
)

// ChartServicer defines the interface for chart operations
type ChartServicer interface {
	SaveChart(ctx context.Context, chart *models.Chart) (*models.Chart, error)
	GetChart(ctx context.Context, id int) (*models.Chart, error)
	GetChartBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Chart, error)
	ListCharts(ctx context.Context, filter repository.ChartFilter) ([]models.Chart, error)
	ListPublished(ctx context.Context, key models.ChartKey, limit int) ([]models.Chart, error)
	ListByKey(ctx context.Context, key models.ChartKey) ([]models.Chart, error)
	CompareChart(ctx context.Context, slug, with string) (*ChartComparison, error)
	Metrics(ctx context.Context) (charts.ChartMetrics, error)
	Overview(ctx context.Context) ([]charts.OverviewItem, error)
	ImportCSV(ctx context.Context, id int, r io.Reader) (*models.Chart, error)
	DeleteChart(ctx context.Context, id int) error
	ListSnapshots(ctx context.Context, id int) ([]models.Snapshot, error)
}

// ScheduleServicer defines the interface for radio schedule operations
type ScheduleServicer interface {
	ListShows(ctx context.Context) ([]models.RadioShow, error)
	GetShow(ctx context.Context, id int) (*models.RadioShow, error)
	CreateShow(ctx context.Context, show *models.RadioShow) (*models.RadioShow, error)
	UpdateShow(ctx context.Context, show *models.RadioShow) (*models.RadioShow, error)
	DeleteShow(ctx context.Context, id int) error
	ListScheduleItems(ctx context.Context) ([]models.RadioScheduleItem, error)
	GetScheduleItem(ctx context.Context, id int) (*models.RadioScheduleItem, error)
	CreateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) (*models.RadioScheduleItem, error)
	UpdateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) (*models.RadioScheduleItem, error)
	DeleteScheduleItem(ctx context.Context, id int) error
	Location(ctx context.Context) *time.Location
	Schedule(ctx context.Context) []schedule.Slot
	Resolve(ctx context.Context, now time.Time) schedule.Resolution
	OnAir(ctx context.Context, now time.Time, viewer *time.Location) schedule.OnAirView
	ImportYAML(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// PollServicer defines the interface for poll operations
type PollServicer interface {
	ListPolls(ctx context.Context) ([]models.Poll, error)
	GetPoll(ctx context.Context, id int) (*models.Poll, error)
	CreatePoll(ctx context.Context, poll *models.Poll) (*models.Poll, error)
	UpdatePoll(ctx context.Context, poll *models.Poll) (*models.Poll, error)
	DeletePoll(ctx context.Context, id int) error
	FeaturedPoll(ctx context.Context) (*models.Poll, error)
	Vote(ctx context.Context, pollID int, option, clientIP string) error
	Results(ctx context.Context, pollID int) (models.PollResults, error)
	ShareQR(ctx context.Context, pollID int) ([]byte, error)
	SetBroadcaster(b PollBroadcaster)
}

// NowPlayingServicer defines the interface for now playing lookups
type NowPlayingServicer interface {
	Current(ctx context.Context) *models.NowPlaying
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	ScheduleTimezone(ctx context.Context) (string, error)
	SetScheduleTimezone(ctx context.Context, name string) error
	ScheduleLocation(ctx context.Context) *time.Location
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
}

// Ensure concrete types implement interfaces
var (
	_ ChartServicer      = (*ChartService)(nil)
	_ ScheduleServicer   = (*ScheduleService)(nil)
	_ PollServicer       = (*PollService)(nil)
	_ NowPlayingServicer = (*NowPlayingService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
)
