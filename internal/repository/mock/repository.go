package mock

import (
	"context"
	"time"

	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ListChartsError = errors.New("database error")
//	svc := services.NewChartService(log, mockRepo, cache.Noop(), metrics.Noop())
//	charts, _ := svc.ListPublished(ctx, "", 0)
//	// charts is empty because the read path degrades on failure
type Repository struct {
	repository.FullRepository

	// ===== Chart Errors =====
	GetChartError       error
	GetChartBySlugError error
	CreateChartError    error
	UpdateChartError    error
	DeleteChartError    error
	ListChartsError     error
	AppendSnapshotError error
	ListSnapshotsError  error

	// ===== Schedule Errors =====
	ListShowsError          error
	GetShowError            error
	GetShowBySlugError      error
	CreateShowError         error
	UpdateShowError         error
	ListScheduleError       error
	CreateScheduleItemError error
	UpdateScheduleItemError error

	// ===== Poll Errors =====
	GetPollError      error
	CreatePollError   error
	UpdatePollError   error
	FeaturedPollError error
	SaveVoteError     error
	CountVotesError   error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Chart Methods =====

func (m *Repository) GetChart(ctx context.Context, id int) (*models.Chart, error) {
	if m.GetChartError != nil {
		return nil, m.GetChartError
	}
	return m.FullRepository.GetChart(ctx, id)
}

func (m *Repository) GetChartBySlug(ctx context.Context, slug string) (*models.Chart, error) {
	if m.GetChartBySlugError != nil {
		return nil, m.GetChartBySlugError
	}
	return m.FullRepository.GetChartBySlug(ctx, slug)
}

func (m *Repository) CreateChart(ctx context.Context, chart *models.Chart) (int, error) {
	if m.CreateChartError != nil {
		return 0, m.CreateChartError
	}
	return m.FullRepository.CreateChart(ctx, chart)
}

func (m *Repository) UpdateChart(ctx context.Context, chart *models.Chart) error {
	if m.UpdateChartError != nil {
		return m.UpdateChartError
	}
	return m.FullRepository.UpdateChart(ctx, chart)
}

// UpdateChartWithSnapshot fails as a whole when either write is set to
// fail, leaving the stored chart untouched like a rolled back transaction.
func (m *Repository) UpdateChartWithSnapshot(ctx context.Context, chart *models.Chart, snapshot *models.Snapshot) error {
	if m.UpdateChartError != nil {
		return m.UpdateChartError
	}
	if snapshot != nil && m.AppendSnapshotError != nil {
		return m.AppendSnapshotError
	}
	return m.FullRepository.UpdateChartWithSnapshot(ctx, chart, snapshot)
}

func (m *Repository) DeleteChart(ctx context.Context, id int) error {
	if m.DeleteChartError != nil {
		return m.DeleteChartError
	}
	return m.FullRepository.DeleteChart(ctx, id)
}

func (m *Repository) ListCharts(ctx context.Context, filter repository.ChartFilter) ([]models.Chart, error) {
	if m.ListChartsError != nil {
		return nil, m.ListChartsError
	}
	return m.FullRepository.ListCharts(ctx, filter)
}

func (m *Repository) AppendSnapshot(ctx context.Context, snapshot *models.Snapshot) (int, error) {
	if m.AppendSnapshotError != nil {
		return 0, m.AppendSnapshotError
	}
	return m.FullRepository.AppendSnapshot(ctx, snapshot)
}

func (m *Repository) ListSnapshots(ctx context.Context, chartID int) ([]models.Snapshot, error) {
	if m.ListSnapshotsError != nil {
		return nil, m.ListSnapshotsError
	}
	return m.FullRepository.ListSnapshots(ctx, chartID)
}

// ===== Schedule Methods =====

func (m *Repository) ListShows(ctx context.Context) ([]models.RadioShow, error) {
	if m.ListShowsError != nil {
		return nil, m.ListShowsError
	}
	return m.FullRepository.ListShows(ctx)
}

func (m *Repository) GetShow(ctx context.Context, id int) (*models.RadioShow, error) {
	if m.GetShowError != nil {
		return nil, m.GetShowError
	}
	return m.FullRepository.GetShow(ctx, id)
}

func (m *Repository) GetShowBySlug(ctx context.Context, slug string) (*models.RadioShow, error) {
	if m.GetShowBySlugError != nil {
		return nil, m.GetShowBySlugError
	}
	return m.FullRepository.GetShowBySlug(ctx, slug)
}

func (m *Repository) CreateShow(ctx context.Context, show *models.RadioShow) (int, error) {
	if m.CreateShowError != nil {
		return 0, m.CreateShowError
	}
	return m.FullRepository.CreateShow(ctx, show)
}

func (m *Repository) UpdateShow(ctx context.Context, show *models.RadioShow) error {
	if m.UpdateShowError != nil {
		return m.UpdateShowError
	}
	return m.FullRepository.UpdateShow(ctx, show)
}

func (m *Repository) ListSchedule(ctx context.Context) ([]models.RadioScheduleItem, error) {
	if m.ListScheduleError != nil {
		return nil, m.ListScheduleError
	}
	return m.FullRepository.ListSchedule(ctx)
}

func (m *Repository) CreateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) (int, error) {
	if m.CreateScheduleItemError != nil {
		return 0, m.CreateScheduleItemError
	}
	return m.FullRepository.CreateScheduleItem(ctx, item)
}

func (m *Repository) UpdateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) error {
	if m.UpdateScheduleItemError != nil {
		return m.UpdateScheduleItemError
	}
	return m.FullRepository.UpdateScheduleItem(ctx, item)
}

// ===== Poll Methods =====

func (m *Repository) GetPoll(ctx context.Context, id int) (*models.Poll, error) {
	if m.GetPollError != nil {
		return nil, m.GetPollError
	}
	return m.FullRepository.GetPoll(ctx, id)
}

func (m *Repository) CreatePoll(ctx context.Context, poll *models.Poll) (int, error) {
	if m.CreatePollError != nil {
		return 0, m.CreatePollError
	}
	return m.FullRepository.CreatePoll(ctx, poll)
}

func (m *Repository) UpdatePoll(ctx context.Context, poll *models.Poll) error {
	if m.UpdatePollError != nil {
		return m.UpdatePollError
	}
	return m.FullRepository.UpdatePoll(ctx, poll)
}

func (m *Repository) FeaturedPoll(ctx context.Context, now time.Time) (*models.Poll, error) {
	if m.FeaturedPollError != nil {
		return nil, m.FeaturedPollError
	}
	return m.FullRepository.FeaturedPoll(ctx, now)
}

func (m *Repository) SaveVote(ctx context.Context, vote *models.PollVote) error {
	if m.SaveVoteError != nil {
		return m.SaveVoteError
	}
	return m.FullRepository.SaveVote(ctx, vote)
}

func (m *Repository) CountVotes(ctx context.Context, pollID, limit int) (models.PollResults, error) {
	if m.CountVotesError != nil {
		return nil, m.CountVotesError
	}
	return m.FullRepository.CountVotes(ctx, pollID, limit)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}

var _ repository.FullRepository = (*Repository)(nil)
