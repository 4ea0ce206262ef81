package repository

import (
	"context"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// ChartFilter narrows ListCharts. Zero values mean "any".
type ChartFilter struct {
	Status   models.ChartStatus
	ChartKey models.ChartKey
	Limit    int
}

// ChartRepository defines chart and snapshot data operations
type ChartRepository interface {
	GetChart(ctx context.Context, id int) (*models.Chart, error)
	GetChartBySlug(ctx context.Context, slug string) (*models.Chart, error)
	CreateChart(ctx context.Context, chart *models.Chart) (int, error)
	UpdateChart(ctx context.Context, chart *models.Chart) error
	UpdateChartWithSnapshot(ctx context.Context, chart *models.Chart, snapshot *models.Snapshot) error
	DeleteChart(ctx context.Context, id int) error
	ListCharts(ctx context.Context, filter ChartFilter) ([]models.Chart, error)
	AppendSnapshot(ctx context.Context, snapshot *models.Snapshot) (int, error)
	ListSnapshots(ctx context.Context, chartID int) ([]models.Snapshot, error)
}

// ScheduleRepository defines radio show and schedule data operations
type ScheduleRepository interface {
	ListShows(ctx context.Context) ([]models.RadioShow, error)
	GetShow(ctx context.Context, id int) (*models.RadioShow, error)
	GetShowBySlug(ctx context.Context, slug string) (*models.RadioShow, error)
	CreateShow(ctx context.Context, show *models.RadioShow) (int, error)
	UpdateShow(ctx context.Context, show *models.RadioShow) error
	DeleteShow(ctx context.Context, id int) error
	ListSchedule(ctx context.Context) ([]models.RadioScheduleItem, error)
	GetScheduleItem(ctx context.Context, id int) (*models.RadioScheduleItem, error)
	CreateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) (int, error)
	UpdateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) error
	DeleteScheduleItem(ctx context.Context, id int) error
}

// PollRepository defines poll and vote data operations
type PollRepository interface {
	ListPolls(ctx context.Context) ([]models.Poll, error)
	GetPoll(ctx context.Context, id int) (*models.Poll, error)
	CreatePoll(ctx context.Context, poll *models.Poll) (int, error)
	UpdatePoll(ctx context.Context, poll *models.Poll) error
	DeletePoll(ctx context.Context, id int) error
	FeaturedPoll(ctx context.Context, now time.Time) (*models.Poll, error)
	SaveVote(ctx context.Context, vote *models.PollVote) error
	CountVotes(ctx context.Context, pollID, limit int) (models.PollResults, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	ChartRepository
	ScheduleRepository
	PollRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
