package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenation/wavenation/internal/cache"
	"github.com/wavenation/wavenation/internal/config"
	apperrors "github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
	"github.com/wavenation/wavenation/internal/repository/mock"
	"github.com/wavenation/wavenation/internal/services"
	"github.com/wavenation/wavenation/internal/testutil"
)

var chartNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

// setupChartService creates a ChartService over a mock-wrapped in-memory
// repository with a real read cache.
func setupChartService(t *testing.T) (*services.ChartService, *mock.Repository) {
	t.Helper()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	c := cache.New(config.CacheConfig{Enabled: true, SizeMB: 1, TTL: time.Minute}, logger.Nop())
	svc := services.NewChartService(logger.Nop(), repo, c, metrics.Noop())
	svc.SetClock(func() time.Time { return chartNow })
	return svc, repo
}

func entry(title, artist string, mv models.Movement) models.ChartEntry {
	return models.ChartEntry{Track: models.Track{Title: title, Artist: artist}, Movement: mv}
}

func publishedChart(key models.ChartKey, week string, entries ...models.ChartEntry) *models.Chart {
	return &models.Chart{
		Title:    string(key) + " " + week,
		ChartKey: key,
		Status:   models.ChartStatusPublished,
		Week:     week,
		Entries:  entries,
	}
}

func mustSave(t *testing.T, svc *services.ChartService, c *models.Chart) *models.Chart {
	t.Helper()
	saved, err := svc.SaveChart(context.Background(), c)
	require.NoError(t, err)
	return saved
}

func TestSaveChart_NewChartRanksAndDerivesWeek(t *testing.T) {
	svc, _ := setupChartService(t)

	saved := mustSave(t, svc, &models.Chart{
		ChartKey:    models.ChartKeyHitList,
		PublishDate: "2026-10-17",
		Entries: []models.ChartEntry{
			entry("Golden", "Jill Scott", models.MovementNew),
			entry("Crown", "Ana", ""),
		},
	})

	assert.NotZero(t, saved.ID)
	assert.Equal(t, "2026-W42", saved.Week)
	assert.Equal(t, "hitlist-2026-W42", saved.Slug)
	assert.Equal(t, models.ChartStatusDraft, saved.Status)
	assert.Equal(t, models.ChartModeManual, saved.ChartMode)
	require.NotNil(t, saved.WeekRange)
	assert.Equal(t, "2026-10-12", saved.WeekRange.StartDate)
	for i, e := range saved.Entries {
		assert.Equal(t, i+1, e.Rank)
		assert.Equal(t, e.Track.Title, e.TrackTitle)
		assert.Equal(t, e.Track.Artist, e.Artist)
	}
}

func TestSaveChart_DenormalizedFieldsOnly(t *testing.T) {
	svc, _ := setupChartService(t)

	saved := mustSave(t, svc, &models.Chart{
		ChartKey: models.ChartKeyGospel,
		Week:     "2026-W42",
		Entries:  []models.ChartEntry{{TrackTitle: "Grace", Artist: "Choir"}},
	})

	assert.Equal(t, "Grace", saved.Entries[0].Track.Title)
	assert.Equal(t, "Choir", saved.Entries[0].Track.Artist)
}

func TestSaveChart_DuplicateKeyWeek(t *testing.T) {
	svc, _ := setupChartService(t)
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42", entry("A", "X", "")))

	_, err := svc.SaveChart(context.Background(), publishedChart(models.ChartKeyHitList, "2026-W42"))
	assert.ErrorIs(t, err, services.ErrDuplicateChartWeek)
	assert.Equal(t, apperrors.ErrConflict, apperrors.KindOf(err))
}

func TestSaveChart_WeekChangeAppendsSnapshot(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()

	c := mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W41",
		entry("A", "X", ""), entry("B", "Y", "")))
	previousRange := *c.WeekRange

	c.Week = "2026-W42"
	c.Entries = []models.ChartEntry{entry("B", "Y", models.MovementUp), entry("A", "X", models.MovementDown)}
	mustSave(t, svc, c)

	got, err := svc.GetChart(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Snapshots, 1)
	snap := got.Snapshots[0]
	assert.Equal(t, "2026-W41", snap.Week)
	assert.Equal(t, previousRange, *snap.WeekRange)
	assert.Equal(t, "A", snap.Entries[0].TrackTitle)
	assert.Equal(t, 1, snap.Entries[0].Rank)
	assert.True(t, chartNow.Equal(snap.CreatedAt))

	// The carried-over range follows the new week.
	assert.Equal(t, "2026-10-12", got.WeekRange.StartDate)
	assert.Equal(t, "hitlist-2026-W42", got.Slug)
}

func TestSaveChart_UnchangedWeekNoSnapshot(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()

	c := mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W41", entry("A", "X", "")))
	c.Entries = append(c.Entries, entry("B", "Y", models.MovementNew))
	mustSave(t, svc, c)
	mustSave(t, svc, c)

	snaps, err := svc.ListSnapshots(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSaveChart_Validation(t *testing.T) {
	svc, _ := setupChartService(t)

	tests := []struct {
		name  string
		chart *models.Chart
	}{
		{"unknown key", &models.Chart{ChartKey: "jazz"}},
		{"bad status", &models.Chart{ChartKey: models.ChartKeyHitList, Status: "live"}},
		{"bad mode", &models.Chart{ChartKey: models.ChartKeyHitList, ChartMode: "magic"}},
		{"bad week", &models.Chart{ChartKey: models.ChartKeyHitList, Week: "2026-W60"}},
		{"bad publish date", &models.Chart{ChartKey: models.ChartKeyHitList, PublishDate: "someday"}},
		{"missing title", &models.Chart{ChartKey: models.ChartKeyHitList, Entries: []models.ChartEntry{{}}}},
		{"bad movement", &models.Chart{ChartKey: models.ChartKeyHitList, Entries: []models.ChartEntry{entry("A", "X", "sideways")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveChart(context.Background(), tt.chart)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))
		})
	}
}

func TestSaveChart_UnknownID(t *testing.T) {
	svc, _ := setupChartService(t)
	c := publishedChart(models.ChartKeyHitList, "2026-W42")
	c.ID = 404

	_, err := svc.SaveChart(context.Background(), c)
	assert.ErrorIs(t, err, services.ErrChartNotFound)
}

func TestSaveChart_SnapshotFailureKeepsPreviousWeek(t *testing.T) {
	svc, repo := setupChartService(t)
	ctx := context.Background()
	c := mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W41", entry("A", "X", "")))
	_, err := svc.GetChartBySlug(ctx, "hitlist-2026-W41", true)
	require.NoError(t, err)

	repo.AppendSnapshotError = errors.New("disk full")
	c.Week = "2026-W42"
	_, err = svc.SaveChart(ctx, c)
	require.Error(t, err)

	stored, err := svc.GetChart(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-W41", stored.Week)
	assert.Empty(t, stored.Snapshots)
	_, err = svc.GetChartBySlug(ctx, "hitlist-2026-W41", true)
	assert.NoError(t, err)

	// Retrying once the store recovers still snapshots the old week.
	repo.AppendSnapshotError = nil
	mustSave(t, svc, c)
	stored, err = svc.GetChart(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-W42", stored.Week)
	require.Len(t, stored.Snapshots, 1)
	assert.Equal(t, "2026-W41", stored.Snapshots[0].Week)
}

func TestSaveChart_UnpaddedWeekIsSameWeek(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()

	saved := mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W9", entry("A", "X", "")))
	assert.Equal(t, "2026-W09", saved.Week)
	assert.Equal(t, "hitlist-2026-W09", saved.Slug)

	_, err := svc.SaveChart(ctx, publishedChart(models.ChartKeyHitList, "2026-W09"))
	assert.ErrorIs(t, err, services.ErrDuplicateChartWeek)

	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W10", entry("B", "Y", "")))
	latest, err := svc.ListPublished(ctx, models.ChartKeyHitList, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "2026-W10", latest[0].Week)

	_, err = svc.SaveChart(ctx, publishedChart(models.ChartKeyHitList, "2021-W53"))
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))
}

func TestGetChartBySlug_PublishedOnly(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()

	draft := publishedChart(models.ChartKeyGospel, "2026-W42", entry("A", "X", ""))
	draft.Status = models.ChartStatusDraft
	mustSave(t, svc, draft)

	_, err := svc.GetChartBySlug(ctx, "gospel-2026-W42", true)
	assert.ErrorIs(t, err, services.ErrChartNotFound)

	got, err := svc.GetChartBySlug(ctx, "gospel-2026-W42", false)
	require.NoError(t, err)
	assert.Equal(t, models.ChartStatusDraft, got.Status)

	_, err = svc.GetChartBySlug(ctx, "nope", true)
	assert.ErrorIs(t, err, services.ErrChartNotFound)
}

func TestListPublished_CachedUntilWrite(t *testing.T) {
	svc, repo := setupChartService(t)
	ctx := context.Background()
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W41", entry("A", "X", "")))
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42", entry("A", "X", "")))

	list, err := svc.ListPublished(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-W42", list[0].Week)

	// Served from cache while storage is failing.
	repo.ListChartsError = errors.New("database is locked")
	list, err = svc.ListPublished(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// A write clears the cache; the failing read then degrades to empty.
	mustSave(t, svc, publishedChart(models.ChartKeyGospel, "2026-W42", entry("G", "H", "")))
	list, err = svc.ListPublished(ctx, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListPublished_FiltersDraftsAndKeys(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42", entry("A", "X", "")))
	mustSave(t, svc, publishedChart(models.ChartKeyGospel, "2026-W42", entry("A", "X", "")))
	draft := publishedChart(models.ChartKeyHitList, "2026-W43")
	draft.Status = models.ChartStatusDraft
	mustSave(t, svc, draft)

	list, err := svc.ListByKey(ctx, models.ChartKeyHitList)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-W42", list[0].Week)

	_, err = svc.ListByKey(ctx, "")
	assert.ErrorIs(t, err, services.ErrInvalidChartKey)
	_, err = svc.ListPublished(ctx, "jazz", 0)
	assert.ErrorIs(t, err, services.ErrInvalidChartKey)
}

func TestCompareChart_DefaultsToMostRecentEligibleWeek(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()

	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W40", entry("A", "X", ""), entry("C", "Z", "")))
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W41", entry("B", "Y", ""), entry("A", "X", "")))
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42", entry("A", "X", ""), entry("B", "Y", ""), entry("D", "W", "")))
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W30", entry("A", "X", "")))

	cmp, err := svc.CompareChart(ctx, "hitlist-2026-W42", "")
	require.NoError(t, err)

	require.Len(t, cmp.Options, 2)
	assert.Equal(t, "2026-W41", cmp.Options[0].Week)
	assert.Equal(t, 1, cmp.Options[0].WeekDiff)
	assert.Equal(t, "2026-W40", cmp.Options[1].Week)

	assert.Equal(t, "2026-W41", cmp.Comparison.CompareWeek)
	rows := cmp.Comparison.Entries
	require.Len(t, rows, 3)
	require.NotNil(t, rows[0].Delta)
	assert.Equal(t, 1, *rows[0].Delta) // A: 2 -> 1
	require.NotNil(t, rows[1].Delta)
	assert.Equal(t, -1, *rows[1].Delta) // B: 1 -> 2
	assert.True(t, rows[2].IsDebut)
}

func TestCompareChart_ExplicitWeek(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W40", entry("A", "X", ""), entry("C", "Z", "")))
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42", entry("A", "X", "")))

	cmp, err := svc.CompareChart(ctx, "hitlist-2026-W42", "hitlist-2026-W40")
	require.NoError(t, err)
	assert.Equal(t, "2026-W40", cmp.Comparison.CompareWeek)
	assert.Equal(t, 2, cmp.Comparison.WeekDiff)
	require.Len(t, cmp.Comparison.Dropped, 1)
	assert.Equal(t, "C", cmp.Comparison.Dropped[0].TrackTitle)

	cmp, err = svc.CompareChart(ctx, "hitlist-2026-W42", "2026-W40")
	require.NoError(t, err)
	assert.Equal(t, "2026-W40", cmp.Comparison.CompareWeek)

	_, err = svc.CompareChart(ctx, "hitlist-2026-W42", "2026-W30")
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))
}

func TestCompareChart_NoEligibleWeekMakesEverythingADebut(t *testing.T) {
	svc, _ := setupChartService(t)
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42", entry("A", "X", ""), entry("B", "Y", "")))

	cmp, err := svc.CompareChart(context.Background(), "hitlist-2026-W42", "")
	require.NoError(t, err)
	assert.Empty(t, cmp.Options)
	assert.Empty(t, cmp.Comparison.CompareWeek)
	for _, row := range cmp.Comparison.Entries {
		assert.True(t, row.IsDebut)
		assert.Nil(t, row.Delta)
	}
	assert.Empty(t, cmp.Comparison.Dropped)
}

func TestMetricsAndOverview(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()
	mustSave(t, svc, publishedChart(models.ChartKeyHitList, "2026-W42",
		entry("A", "X", models.MovementSame), entry("B", "Y", models.MovementUp), entry("C", "Z", models.MovementNew)))
	mustSave(t, svc, publishedChart(models.ChartKeyGospel, "2026-W42", entry("G", "H", "")))

	m, err := svc.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-W42", m.Week)
	assert.Equal(t, 2, m.ChartCount)
	assert.Equal(t, 2, m.LeaderCount)
	require.NotNil(t, m.BiggestGainer)
	assert.Equal(t, "B", m.BiggestGainer.TrackTitle)
	require.NotNil(t, m.HighestDebut)
	assert.Equal(t, "C", m.HighestDebut.TrackTitle)

	items, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ChartKeyHitList, items[0].ChartKey)
	assert.Equal(t, "/charts/hitlist", items[0].Href)
	assert.Equal(t, models.ChartKeyGospel, items[1].ChartKey)
	assert.Equal(t, "/charts/gospel-2026-W42", items[1].Href)
}

func TestMetricsAndOverview_DegradeOnFailure(t *testing.T) {
	svc, repo := setupChartService(t)
	repo.ListChartsError = errors.New("database is locked")

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, m.ChartCount)
	assert.NotNil(t, m.Sparklines)

	items, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestImportCSV(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()
	c := mustSave(t, svc, publishedChart(models.ChartKeySouthernSoul, "2026-W42", entry("Old", "Entry", "")))

	csv := "title,artist,isrc,movement\nFirst,One,USAAA,new\nSecond,Two,,up\n"
	saved, err := svc.ImportCSV(ctx, c.ID, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, saved.Entries, 2)
	assert.Equal(t, "First", saved.Entries[0].TrackTitle)
	assert.Equal(t, 1, saved.Entries[0].Rank)
	assert.Equal(t, "USAAA", saved.Entries[0].Track.ISRC)
	assert.Equal(t, 2, saved.Entries[1].Rank)

	_, err = svc.ImportCSV(ctx, c.ID, strings.NewReader("artist\nOnly\n"))
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))

	_, err = svc.ImportCSV(ctx, 999, strings.NewReader(csv))
	assert.ErrorIs(t, err, services.ErrChartNotFound)
}

func TestDeleteChart(t *testing.T) {
	svc, _ := setupChartService(t)
	ctx := context.Background()
	c := mustSave(t, svc, publishedChart(models.ChartKeyHipHop, "2026-W42", entry("A", "X", "")))

	require.NoError(t, svc.DeleteChart(ctx, c.ID))
	assert.ErrorIs(t, svc.DeleteChart(ctx, c.ID), services.ErrChartNotFound)
	_, err := svc.ListSnapshots(ctx, c.ID)
	assert.ErrorIs(t, err, services.ErrChartNotFound)
	_, err = svc.GetChart(ctx, c.ID)
	assert.ErrorIs(t, err, services.ErrChartNotFound)
}

func TestListCharts_PropagatesErrors(t *testing.T) {
	svc, repo := setupChartService(t)
	boom := errors.New("boom")
	repo.ListChartsError = boom

	_, err := svc.ListCharts(context.Background(), repository.ChartFilter{})
	assert.ErrorIs(t, err, boom)
}

func TestWrappedNotFoundMapsToServiceErrors(t *testing.T) {
	ctx := context.Background()
	wrapped := fmt.Errorf("lookup: %w", repository.ErrNotFound)

	chartSvc, chartRepo := setupChartService(t)
	chartRepo.GetChartError = wrapped
	_, err := chartSvc.GetChart(ctx, 1)
	assert.ErrorIs(t, err, services.ErrChartNotFound)

	polls := setupPollService(t)
	polls.repo.GetPollError = wrapped
	_, err = polls.svc.GetPoll(ctx, 1)
	assert.ErrorIs(t, err, services.ErrPollNotFound)

	schedSvc, schedRepo := setupScheduleService(t)
	schedRepo.GetShowError = wrapped
	_, err = schedSvc.GetShow(ctx, 1)
	assert.ErrorIs(t, err, services.ErrShowNotFound)
}
