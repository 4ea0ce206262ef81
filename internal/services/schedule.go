package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/wavenation/wavenation/internal/cache"
	"github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
	"github.com/wavenation/wavenation/internal/schedule"
)

// LocationProvider resolves the zone the schedule is authored in
type LocationProvider interface {
	ScheduleLocation(ctx context.Context) *time.Location
}

// ScheduleService handles radio shows, schedule items and on-air resolution
type ScheduleService struct {
	log      logger.Logger
	repo     repository.ScheduleRepository
	location LocationProvider
	cache    cache.Cache
	metrics  metrics.Recorder
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(log logger.Logger, repo repository.ScheduleRepository, location LocationProvider, c cache.Cache, m metrics.Recorder) *ScheduleService {
	if c == nil {
		c = cache.Noop()
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &ScheduleService{log: log, repo: repo, location: location, cache: c, metrics: m}
}

// Location returns the authoritative schedule zone
func (s *ScheduleService) Location(ctx context.Context) *time.Location {
	return s.location.ScheduleLocation(ctx)
}

// ==================== Shows ====================

// Slugify lowercases s and joins its letter and digit runs with hyphens
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func normalizeDays(days []string) ([]string, error) {
	if days == nil {
		return nil, nil
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		day := models.NormalizeDay(d)
		if !isWeekday(day) {
			return nil, errors.Validationf("unknown day %q", d)
		}
		out = append(out, day)
	}
	return out, nil
}

func isWeekday(day string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == day {
			return true
		}
	}
	return false
}

func canonicalTime(field, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	hhmm, err := schedule.Canonical(value)
	if err != nil {
		return "", errors.Validationf("invalid %s %q", field, value)
	}
	return hhmm, nil
}

func prepareShow(show *models.RadioShow) error {
	show.Title = strings.TrimSpace(show.Title)
	if show.Title == "" {
		return errors.Validation("show title is required")
	}
	if show.Slug == "" {
		show.Slug = Slugify(show.Title)
	}
	days, err := normalizeDays(show.Schedule.Days)
	if err != nil {
		return err
	}
	show.Schedule.Days = days
	if show.Schedule.StartTime, err = canonicalTime("start time", show.Schedule.StartTime); err != nil {
		return err
	}
	if show.Schedule.EndTime, err = canonicalTime("end time", show.Schedule.EndTime); err != nil {
		return err
	}
	return nil
}

func showWriteError(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateShow
	case stderrors.Is(err, repository.ErrNotFound):
		return ErrShowNotFound
	}
	return err
}

// ListShows returns every radio show
func (s *ScheduleService) ListShows(ctx context.Context) ([]models.RadioShow, error) {
	return s.repo.ListShows(ctx)
}

// GetShow returns one radio show
func (s *ScheduleService) GetShow(ctx context.Context, id int) (*models.RadioShow, error) {
	show, err := s.repo.GetShow(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, ErrShowNotFound
	}
	return show, err
}

// CreateShow validates and stores a radio show
func (s *ScheduleService) CreateShow(ctx context.Context, show *models.RadioShow) (*models.RadioShow, error) {
	if err := prepareShow(show); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreateShow(ctx, show); err != nil {
		return nil, showWriteError(err)
	}
	s.invalidate()
	s.log.Info("Radio show created", "show_id", show.ID, "slug", show.Slug)
	return show, nil
}

// UpdateShow validates and replaces a radio show
func (s *ScheduleService) UpdateShow(ctx context.Context, show *models.RadioShow) (*models.RadioShow, error) {
	if err := prepareShow(show); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateShow(ctx, show); err != nil {
		return nil, showWriteError(err)
	}
	s.invalidate()
	return show, nil
}

// DeleteShow removes a show and its schedule items
func (s *ScheduleService) DeleteShow(ctx context.Context, id int) error {
	if err := s.repo.DeleteShow(ctx, id); err != nil {
		return showWriteError(err)
	}
	s.invalidate()
	s.log.Info("Radio show deleted", "show_id", id)
	return nil
}

// ==================== Schedule items ====================

func (s *ScheduleService) prepareItem(ctx context.Context, item *models.RadioScheduleItem) error {
	if item.RadioShowID == 0 {
		return errors.Validation("radio_show_id is required")
	}
	if _, err := s.GetShow(ctx, item.RadioShowID); err != nil {
		return err
	}
	if item.ScheduleType == "" {
		item.ScheduleType = models.ScheduleRecurring
	}
	if !item.ScheduleType.Valid() {
		return errors.Validationf("invalid schedule type %q", item.ScheduleType)
	}
	if item.Priority < 0 {
		return errors.Validation("priority must not be negative")
	}
	days, err := normalizeDays(item.DaysOfWeek)
	if err != nil {
		return err
	}
	item.DaysOfWeek = days
	if item.StartTime, err = canonicalTime("start time", item.StartTime); err != nil {
		return err
	}
	if item.EndTime, err = canonicalTime("end time", item.EndTime); err != nil {
		return err
	}
	return nil
}

// ListScheduleItems returns the stored items without normalization
func (s *ScheduleService) ListScheduleItems(ctx context.Context) ([]models.RadioScheduleItem, error) {
	return s.repo.ListSchedule(ctx)
}

// GetScheduleItem returns one schedule item with its show
func (s *ScheduleService) GetScheduleItem(ctx context.Context, id int) (*models.RadioScheduleItem, error) {
	item, err := s.repo.GetScheduleItem(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, ErrScheduleItemNotFound
	}
	return item, err
}

// CreateScheduleItem validates and stores a schedule item
func (s *ScheduleService) CreateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) (*models.RadioScheduleItem, error) {
	if err := s.prepareItem(ctx, item); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreateScheduleItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.GetScheduleItem(ctx, item.ID)
}

// UpdateScheduleItem validates and replaces a schedule item
func (s *ScheduleService) UpdateScheduleItem(ctx context.Context, item *models.RadioScheduleItem) (*models.RadioScheduleItem, error) {
	if err := s.prepareItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateScheduleItem(ctx, item); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleItemNotFound
		}
		return nil, err
	}
	s.invalidate()
	return s.GetScheduleItem(ctx, item.ID)
}

// DeleteScheduleItem removes a schedule item
func (s *ScheduleService) DeleteScheduleItem(ctx context.Context, id int) error {
	if err := s.repo.DeleteScheduleItem(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return ErrScheduleItemNotFound
		}
		return err
	}
	s.invalidate()
	return nil
}

func (s *ScheduleService) invalidate() {
	s.cache.Delete(cacheKeySchedule)
}

// ==================== Resolution ====================

// Schedule returns the normalized schedule. Storage failures degrade to
// an empty schedule.
func (s *ScheduleService) Schedule(ctx context.Context) []schedule.Slot {
	slots, err := readThrough(s.cache, s.metrics, s.log, cacheKeySchedule, func() ([]schedule.Slot, error) {
		items, err := s.repo.ListSchedule(ctx)
		if err != nil {
			return nil, err
		}
		return schedule.Normalize(items), nil
	})
	if err != nil {
		s.log.Warn("Radio schedule unavailable, serving empty schedule", "error", err)
		return []schedule.Slot{}
	}
	return slots
}

// Resolve returns what is live and what airs next at now
func (s *ScheduleService) Resolve(ctx context.Context, now time.Time) schedule.Resolution {
	return schedule.Resolve(s.Schedule(ctx), now, s.Location(ctx))
}

// OnAir resolves now and renders the labels for a viewer in viewer's zone.
// A nil viewer means the schedule zone.
func (s *ScheduleService) OnAir(ctx context.Context, now time.Time, viewer *time.Location) schedule.OnAirView {
	loc := s.Location(ctx)
	if viewer == nil {
		viewer = loc
	}
	res := schedule.Resolve(s.Schedule(ctx), now, loc)
	view := schedule.View(res, now, loc, viewer)
	s.metrics.SetOnAirState(string(view.State))
	return view
}

// ==================== Import ====================

type scheduleFile struct {
	Shows []showEntry `yaml:"shows"`
}

type showEntry struct {
	Title       string      `yaml:"title"`
	Slug        string      `yaml:"slug"`
	Type        string      `yaml:"type"`
	Hosts       []string    `yaml:"hosts"`
	Days        []string    `yaml:"days"`
	Start       string      `yaml:"start"`
	End         string      `yaml:"end"`
	Description string      `yaml:"description"`
	Genres      []string    `yaml:"genres"`
	Featured    bool        `yaml:"featured"`
	Slots       []slotEntry `yaml:"slots"`
}

type slotEntry struct {
	Label      string   `yaml:"label"`
	Type       string   `yaml:"type"`
	Days       []string `yaml:"days"`
	Start      string   `yaml:"start"`
	End        string   `yaml:"end"`
	StartDate  string   `yaml:"start_date"`
	EndDate    string   `yaml:"end_date"`
	Priority   int      `yaml:"priority"`
	Live       bool     `yaml:"live"`
	Replay     bool     `yaml:"replay"`
	Automation bool     `yaml:"automation"`
}

// ImportResult summarizes a schedule import
type ImportResult struct {
	ShowsCreated int `json:"shows_created"`
	ShowsUpdated int `json:"shows_updated"`
	Slots        int `json:"slots"`
}

// ImportYAML upserts shows by slug from a schedule file. A show listed
// with slots has its existing schedule items replaced by them.
func (s *ScheduleService) ImportYAML(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var file scheduleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid schedule file")
	}

	existing, err := s.repo.ListSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}

	result := &ImportResult{}
	for i, entry := range file.Shows {
		show := &models.RadioShow{
			Title:       entry.Title,
			Slug:        entry.Slug,
			ShowType:    entry.Type,
			Hosts:       entry.Hosts,
			Schedule:    models.ShowSchedule{Days: entry.Days, StartTime: entry.Start, EndTime: entry.End},
			Description: entry.Description,
			Genres:      entry.Genres,
			IsFeatured:  entry.Featured,
		}
		if err := prepareShow(show); err != nil {
			return result, fmt.Errorf("show %d: %w", i+1, err)
		}

		current, err := s.repo.GetShowBySlug(ctx, show.Slug)
		switch {
		case err == nil:
			show.ID = current.ID
			if err := s.repo.UpdateShow(ctx, show); err != nil {
				return result, fmt.Errorf("show %q: %w", show.Slug, showWriteError(err))
			}
			result.ShowsUpdated++
		case stderrors.Is(err, repository.ErrNotFound):
			if _, err := s.repo.CreateShow(ctx, show); err != nil {
				return result, fmt.Errorf("show %q: %w", show.Slug, showWriteError(err))
			}
			result.ShowsCreated++
		default:
			return result, err
		}

		if len(entry.Slots) == 0 {
			continue
		}
		for _, it := range existing {
			if it.RadioShowID == show.ID {
				if err := s.repo.DeleteScheduleItem(ctx, it.ID); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
					return result, err
				}
			}
		}
		for j, slot := range entry.Slots {
			item := &models.RadioScheduleItem{
				Label:        slot.Label,
				ScheduleType: models.ScheduleType(slot.Type),
				RadioShowID:  show.ID,
				StartTime:    slot.Start,
				EndTime:      slot.End,
				DaysOfWeek:   slot.Days,
				StartDate:    slot.StartDate,
				EndDate:      slot.EndDate,
				Priority:     slot.Priority,
				IsLive:       slot.Live,
				IsReplay:     slot.Replay,
				IsAutomation: slot.Automation,
			}
			if err := s.prepareItem(ctx, item); err != nil {
				return result, fmt.Errorf("show %q slot %d: %w", show.Slug, j+1, err)
			}
			if _, err := s.repo.CreateScheduleItem(ctx, item); err != nil {
				return result, err
			}
			result.Slots++
		}
	}

	s.invalidate()
	s.log.Info("Schedule imported", "created", result.ShowsCreated, "updated", result.ShowsUpdated, "slots", result.Slots)
	return result, nil
}
