package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/repository/mock"
	"github.com/wavenation/wavenation/internal/services"
	"github.com/wavenation/wavenation/internal/testutil"
)

func setupSettingsService(t *testing.T) (*services.SettingsService, *mock.Repository) {
	t.Helper()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	return services.NewSettingsService(logger.Nop(), repo), repo
}

func TestBaseURL(t *testing.T) {
	svc, _ := setupSettingsService(t)
	ctx := context.Background()

	url, err := svc.GetBaseURL(ctx)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, svc.SetBaseURL(ctx, "https://wavenation.example"))
	url, err = svc.GetBaseURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://wavenation.example", url)
}

func TestScheduleTimezone(t *testing.T) {
	svc, repo := setupSettingsService(t)
	ctx := context.Background()

	tz, err := svc.ScheduleTimezone(ctx)
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", tz)

	err = svc.SetScheduleTimezone(ctx, "Mars/Olympus_Mons")
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(svc.SetScheduleTimezone(ctx, "")))

	require.NoError(t, svc.SetScheduleTimezone(ctx, "America/New_York"))
	assert.Equal(t, "America/New_York", svc.ScheduleLocation(ctx).String())

	repo.GetSettingError = errors.New("locked")
	assert.Equal(t, "America/Chicago", svc.ScheduleLocation(ctx).String())
}

func TestUpdateAndAllSettings(t *testing.T) {
	svc, _ := setupSettingsService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateSettings(ctx, services.Settings{
		BaseURL:          "https://radio.example",
		ScheduleTimezone: "America/Los_Angeles",
	}))

	all, err := svc.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://radio.example", all[services.SettingBaseURL])
	assert.Equal(t, "America/Los_Angeles", all[services.SettingScheduleTimezone])

	err = svc.UpdateSettings(ctx, services.Settings{ScheduleTimezone: "Nowhere"})
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))
}

func TestResetTables(t *testing.T) {
	svc, repo := setupSettingsService(t)
	ctx := context.Background()

	result, err := svc.ResetTables(ctx, []string{"charts", "polls", "poll_votes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chart_snapshots", "charts", "poll_votes", "polls"}, result.Tables)

	_, err = svc.ResetTables(ctx, nil)
	assert.Equal(t, services.ErrNoTablesSpecified, err)

	_, err = svc.ResetTables(ctx, []string{"charts", "users"})
	var invalid *services.InvalidTableError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "users", invalid.Table)

	repo.ClearTableError = errors.New("locked")
	_, err = svc.ResetTables(ctx, []string{"settings"})
	assert.EqualError(t, err, "locked")
}
