package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/repository"
	"github.com/wavenation/wavenation/internal/schedule"
)

// Setting keys
const (
	SettingBaseURL          = "base_url"
	SettingScheduleTimezone = "schedule_timezone"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, SettingBaseURL)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return "", nil // No default - setting not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, SettingBaseURL, url)
}

// ScheduleTimezone returns the IANA zone the radio schedule is authored in
func (s *SettingsService) ScheduleTimezone(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, SettingScheduleTimezone)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return schedule.DefaultTimezone, nil
		}
		return "", err
	}
	if value == "" {
		return schedule.DefaultTimezone, nil
	}
	return value, nil
}

// SetScheduleTimezone saves the schedule zone after checking it loads
func (s *SettingsService) SetScheduleTimezone(ctx context.Context, name string) error {
	if _, err := time.LoadLocation(name); err != nil || name == "" {
		return errors.Validationf("unknown timezone %q", name)
	}
	return s.repo.SetSetting(ctx, SettingScheduleTimezone, name)
}

// ScheduleLocation resolves the schedule zone, falling back to the default
// zone when the setting cannot be read.
func (s *SettingsService) ScheduleLocation(ctx context.Context) *time.Location {
	name, err := s.ScheduleTimezone(ctx)
	if err != nil {
		s.log.Warn("Schedule timezone unavailable, using default", "error", err)
		name = schedule.DefaultTimezone
	}
	return schedule.LoadLocation(name)
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	baseURL, _ := s.GetBaseURL(ctx)
	settings[SettingBaseURL] = baseURL

	tz, _ := s.ScheduleTimezone(ctx)
	settings[SettingScheduleTimezone] = tz

	return settings, nil
}

// Settings represents application settings for update operations
type Settings struct {
	BaseURL          string
	ScheduleTimezone string
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.BaseURL != "" {
		if err := s.SetBaseURL(ctx, settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.ScheduleTimezone != "" {
		if err := s.SetScheduleTimezone(ctx, settings.ScheduleTimezone); err != nil {
			return err
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"charts": true, "chart_snapshots": true, "radio_shows": true, "radio_schedule": true,
	"polls": true, "poll_votes": true, "settings": true,
}

// dependentTables lists the child table cleared along with each parent
var dependentTables = map[string]string{
	"charts":      "chart_snapshots",
	"radio_shows": "radio_schedule",
	"polls":       "poll_votes",
}

// ResetTables validates and resets the specified database tables. Child
// tables are cleared before their parents.
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
	}

	var tablesToReset []string
	for _, table := range tables {
		if child, ok := dependentTables[table]; ok && !containsTable(tablesToReset, child) {
			tablesToReset = append(tablesToReset, child)
		}
		if !containsTable(tablesToReset, table) {
			tablesToReset = append(tablesToReset, table)
		}
	}

	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}
	s.log.Warn("Tables reset", "tables", tablesToReset)

	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
