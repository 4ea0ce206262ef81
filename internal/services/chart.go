package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wavenation/wavenation/internal/cache"
	"github.com/wavenation/wavenation/internal/charts"
	"github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
)

// ChartService handles chart editing, snapshots and the public chart reads
type ChartService struct {
	log     logger.Logger
	repo    repository.ChartRepository
	cache   cache.Cache
	metrics metrics.Recorder
	now     func() time.Time
}

// NewChartService creates a new ChartService. A nil cache or recorder is
// replaced by a no-op.
func NewChartService(log logger.Logger, repo repository.ChartRepository, c cache.Cache, m metrics.Recorder) *ChartService {
	if c == nil {
		c = cache.Noop()
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &ChartService{log: log, repo: repo, cache: c, metrics: m, now: time.Now}
}

// SetClock overrides the time source used for snapshots and overview ages
func (s *ChartService) SetClock(now func() time.Time) {
	s.now = now
}

// CompareOption is one selectable compare week for a chart
type CompareOption struct {
	Week     string `json:"week"`
	Slug     string `json:"slug"`
	WeekDiff int    `json:"week_diff"`
}

// ChartComparison is a published chart with its week-over-week view
type ChartComparison struct {
	Chart      *models.Chart     `json:"chart"`
	Options    []CompareOption   `json:"compare_options"`
	Comparison charts.Comparison `json:"comparison"`
}

func validateChart(c *models.Chart) error {
	if !c.ChartKey.Valid() {
		return ErrInvalidChartKey
	}
	if c.Status == "" {
		c.Status = models.ChartStatusDraft
	}
	if !c.Status.Valid() {
		return errors.Validationf("invalid chart status %q", c.Status)
	}
	switch c.ChartMode {
	case "", models.ChartModeManual, models.ChartModeHybrid, models.ChartModeAutomated:
	default:
		return errors.Validationf("invalid chart mode %q", c.ChartMode)
	}
	if c.Week != "" {
		if _, err := charts.CanonicalWeek(c.Week); err != nil {
			return errors.Validationf("invalid week %q", c.Week)
		}
	}
	if c.PublishDate != "" {
		if _, ok := c.PublishTime(); !ok {
			return errors.Validationf("invalid publish date %q", c.PublishDate)
		}
	}
	for i, e := range c.Entries {
		if e.Track.Title == "" && e.TrackTitle == "" {
			return errors.Validationf("entry %d: track title is required", i+1)
		}
		if !e.Movement.Valid() {
			return errors.Validationf("entry %d: invalid movement %q", i+1, e.Movement)
		}
	}
	return nil
}

// SaveChart validates, ranks and persists a chart. Updating a chart whose
// week changed stores a snapshot of the previous week in the same
// transaction as the update.
func (s *ChartService) SaveChart(ctx context.Context, c *models.Chart) (*models.Chart, error) {
	for i := range c.Entries {
		// Entries posted with only the denormalized fields still carry a track.
		if c.Entries[i].Track.Title == "" {
			c.Entries[i].Track.Title = c.Entries[i].TrackTitle
		}
		if c.Entries[i].Track.Artist == "" {
			c.Entries[i].Track.Artist = c.Entries[i].Artist
		}
	}
	if err := validateChart(c); err != nil {
		return nil, err
	}

	var previous *models.Chart
	if c.ID != 0 {
		prev, err := s.repo.GetChart(ctx, c.ID)
		if err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return nil, ErrChartNotFound
			}
			return nil, fmt.Errorf("load chart %d: %w", c.ID, err)
		}
		previous = prev
	}

	charts.NormalizeAndRank(c)
	if previous != nil && c.Week != "" && c.Week != previous.Week && sameRange(c.WeekRange, previous.WeekRange) {
		// The range was carried over from the old week.
		c.WeekRange, _ = charts.RangeForWeek(c.Week)
	}

	snap, snapped := charts.SnapshotOnWeekChange(previous, c, s.now())
	if previous == nil {
		if _, err := s.repo.CreateChart(ctx, c); err != nil {
			return nil, s.mapWriteError(err)
		}
	} else {
		if snapped {
			snap.ChartID = c.ID
		} else {
			snap = nil
		}
		if err := s.repo.UpdateChartWithSnapshot(ctx, c, snap); err != nil {
			return nil, s.mapWriteError(err)
		}
	}

	if snapped {
		s.metrics.IncSnapshots()
		s.log.Info("Chart snapshot taken", "chart_id", c.ID, "week", snap.Week, "new_week", c.Week)
	}

	s.cache.Clear()
	s.metrics.IncChartsSaved(string(c.ChartKey))
	s.log.Info("Chart saved", "chart_id", c.ID, "chart_key", c.ChartKey, "week", c.Week, "entries", len(c.Entries))
	return c, nil
}

func sameRange(a, b *models.WeekRange) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *ChartService) mapWriteError(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateChartWeek
	case stderrors.Is(err, repository.ErrNotFound):
		return ErrChartNotFound
	}
	return err
}

// GetChart returns a chart in any status together with its snapshots
func (s *ChartService) GetChart(ctx context.Context, id int) (*models.Chart, error) {
	c, err := s.repo.GetChart(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrChartNotFound
		}
		return nil, err
	}
	snaps, err := s.repo.ListSnapshots(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Snapshots = snaps
	return c, nil
}

// GetChartBySlug returns a chart by slug. Public callers pass
// publishedOnly, which hides drafts and archived charts.
func (s *ChartService) GetChartBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Chart, error) {
	load := func() (*models.Chart, error) {
		c, err := s.repo.GetChartBySlug(ctx, slug)
		if err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return nil, ErrChartNotFound
			}
			return nil, err
		}
		return c, nil
	}

	var (
		c   *models.Chart
		err error
	)
	if publishedOnly {
		c, err = readThrough(s.cache, s.metrics, s.log, cacheKeySlug+slug, load)
	} else {
		c, err = load()
	}
	if err != nil {
		return nil, err
	}
	if publishedOnly && c.Status != models.ChartStatusPublished {
		return nil, ErrChartNotFound
	}
	return c, nil
}

// ListCharts is the editorial listing: any status, errors propagate
func (s *ChartService) ListCharts(ctx context.Context, filter repository.ChartFilter) ([]models.Chart, error) {
	return s.repo.ListCharts(ctx, filter)
}

// ListPublished returns published charts newest week first, optionally
// narrowed to one chart key. Storage failures degrade to an empty list.
func (s *ChartService) ListPublished(ctx context.Context, key models.ChartKey, limit int) ([]models.Chart, error) {
	if key != "" && !key.Valid() {
		return nil, ErrInvalidChartKey
	}
	cacheKey := cacheKeyPublished + string(key) + ":" + strconv.Itoa(limit)
	list, err := readThrough(s.cache, s.metrics, s.log, cacheKey, func() ([]models.Chart, error) {
		list, err := s.repo.ListCharts(ctx, repository.ChartFilter{
			Status:   models.ChartStatusPublished,
			ChartKey: key,
			Limit:    limit,
		})
		if err != nil {
			return nil, err
		}
		charts.SortByWeekDesc(list)
		return list, nil
	})
	if err != nil {
		s.log.Warn("Published charts unavailable, serving empty list", "chart_key", key, "error", err)
		return []models.Chart{}, nil
	}
	return list, nil
}

// ListByKey returns every published week of one chart family
func (s *ChartService) ListByKey(ctx context.Context, key models.ChartKey) ([]models.Chart, error) {
	if !key.Valid() {
		return nil, ErrInvalidChartKey
	}
	return s.ListPublished(ctx, key, 0)
}

// CompareChart compares a published chart against an earlier week of the
// same family. with may name the other chart by slug or by week; when
// empty the most recent eligible week is used. A chart with no eligible
// week compares against nothing, so every entry is a debut.
func (s *ChartService) CompareChart(ctx context.Context, slug, with string) (*ChartComparison, error) {
	current, err := s.GetChartBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	family, err := s.ListPublished(ctx, current.ChartKey, 0)
	if err != nil {
		return nil, err
	}

	eligible := charts.ComparableWeeks(*current, family)
	options := make([]CompareOption, 0, len(eligible))
	for _, c := range eligible {
		diff, _ := charts.WeeksBetween(c.Week, current.Week)
		options = append(options, CompareOption{Week: c.Week, Slug: c.Slug, WeekDiff: diff})
	}

	var previous *models.Chart
	if with != "" {
		for i := range eligible {
			if eligible[i].Slug == with || eligible[i].Week == with {
				previous = &eligible[i]
				break
			}
		}
		if previous == nil {
			return nil, errors.Validationf("%s is not within %d weeks before %s", with, charts.MaxCompareWeeks, current.Week)
		}
	} else if len(eligible) > 0 {
		previous = &eligible[0]
	}

	return &ChartComparison{
		Chart:      current,
		Options:    options,
		Comparison: charts.CompareCharts(current, previous),
	}, nil
}

// Metrics returns the homepage insight cards for the latest published week
func (s *ChartService) Metrics(ctx context.Context) (charts.ChartMetrics, error) {
	m, err := readThrough(s.cache, s.metrics, s.log, cacheKeyMetrics, func() (charts.ChartMetrics, error) {
		list, err := s.repo.ListCharts(ctx, repository.ChartFilter{Status: models.ChartStatusPublished})
		if err != nil {
			return charts.ChartMetrics{}, err
		}
		return charts.Metrics(list), nil
	})
	if err != nil {
		s.log.Warn("Chart metrics unavailable, serving empty metrics", "error", err)
		return charts.EmptyMetrics(), nil
	}
	return m, nil
}

// Overview returns the editorial overview, one item per chart family
func (s *ChartService) Overview(ctx context.Context) ([]charts.OverviewItem, error) {
	items, err := readThrough(s.cache, s.metrics, s.log, cacheKeyOverview, func() ([]charts.OverviewItem, error) {
		list, err := s.repo.ListCharts(ctx, repository.ChartFilter{Status: models.ChartStatusPublished})
		if err != nil {
			return nil, err
		}
		return charts.Overview(list, s.now()), nil
	})
	if err != nil {
		s.log.Warn("Chart overview unavailable, serving empty overview", "error", err)
		return []charts.OverviewItem{}, nil
	}
	return items, nil
}

// ImportCSV replaces a chart's entries with the rows of a CSV file, in
// file order, and saves it.
func (s *ChartService) ImportCSV(ctx context.Context, id int, r io.Reader) (*models.Chart, error) {
	entries, err := charts.ParseEntriesCSV(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid chart CSV")
	}
	c, err := s.repo.GetChart(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrChartNotFound
		}
		return nil, err
	}
	c.Entries = entries
	s.log.Info("Importing chart entries", "chart_id", id, "rows", len(entries))
	return s.SaveChart(ctx, c)
}

// DeleteChart removes a chart and its snapshots
func (s *ChartService) DeleteChart(ctx context.Context, id int) error {
	if err := s.repo.DeleteChart(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return ErrChartNotFound
		}
		return err
	}
	s.cache.Clear()
	s.log.Info("Chart deleted", "chart_id", id)
	return nil
}

// ListSnapshots returns a chart's snapshots oldest first
func (s *ChartService) ListSnapshots(ctx context.Context, id int) ([]models.Snapshot, error) {
	if _, err := s.repo.GetChart(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrChartNotFound
		}
		return nil, err
	}
	return s.repo.ListSnapshots(ctx, id)
}
