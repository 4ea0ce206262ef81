package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wavenation/wavenation/internal/models"
)

// ==================== Radio Show Methods ====================

const showColumns = `id, title, slug, show_type, hosts, days, start_time, end_time, description, genres, is_featured`

func scanShow(row rowScanner) (*models.RadioShow, error) {
	var (
		s                   models.RadioShow
		slug                sql.NullString
		hosts, days, genres string
	)
	if err := row.Scan(&s.ID, &s.Title, &slug, &s.ShowType, &hosts, &days,
		&s.Schedule.StartTime, &s.Schedule.EndTime, &s.Description, &genres, &s.IsFeatured); err != nil {
		return nil, err
	}
	s.Slug = slug.String
	s.Hosts, s.Schedule.Days, s.Genres = []string{}, []string{}, []string{}
	for _, f := range []struct {
		raw string
		dst *[]string
	}{{hosts, &s.Hosts}, {days, &s.Schedule.Days}, {genres, &s.Genres}} {
		if err := decodeJSON(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode show %d: %w", s.ID, err)
		}
	}
	return &s, nil
}

func showArgs(s *models.RadioShow) ([]any, error) {
	hosts, err := encodeJSON(s.Hosts)
	if err != nil {
		return nil, err
	}
	days, err := encodeJSON(s.Schedule.Days)
	if err != nil {
		return nil, err
	}
	genres, err := encodeJSON(s.Genres)
	if err != nil {
		return nil, err
	}
	return []any{s.Title, nullString(s.Slug), s.ShowType, hosts, days,
		s.Schedule.StartTime, s.Schedule.EndTime, s.Description, genres, s.IsFeatured}, nil
}

// ListShows returns every radio show ordered by title
func (r *Repository) ListShows(ctx context.Context) ([]models.RadioShow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+showColumns+` FROM radio_shows ORDER BY title, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := []models.RadioShow{}
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, *s)
	}
	return shows, rows.Err()
}

// GetShow retrieves a radio show by ID
func (r *Repository) GetShow(ctx context.Context, id int) (*models.RadioShow, error) {
	s, err := scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM radio_shows WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// GetShowBySlug retrieves a radio show by slug
func (r *Repository) GetShowBySlug(ctx context.Context, slug string) (*models.RadioShow, error) {
	s, err := scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM radio_shows WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// CreateShow inserts a radio show and returns its ID
func (r *Repository) CreateShow(ctx context.Context, s *models.RadioShow) (int, error) {
	args, err := showArgs(s)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO radio_shows (title, slug, show_type, hosts, days, start_time, end_time, description, genres, is_featured)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return 0, mapWriteError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.ID = int(id)
	return s.ID, nil
}

// UpdateShow replaces every field of an existing radio show
func (r *Repository) UpdateShow(ctx context.Context, s *models.RadioShow) error {
	args, err := showArgs(s)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE radio_shows SET title = ?, slug = ?, show_type = ?, hosts = ?, days = ?,
			start_time = ?, end_time = ?, description = ?, genres = ?, is_featured = ?
		WHERE id = ?
	`, append(args, s.ID)...)
	if err != nil {
		return mapWriteError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteShow removes a radio show and its schedule items
func (r *Repository) DeleteShow(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM radio_shows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Schedule Methods ====================

const scheduleSelect = `
	SELECT rs.id, rs.label, rs.schedule_type, rs.radio_show_id, rs.start_time, rs.end_time,
		rs.days_of_week, rs.start_date, rs.end_date, rs.priority, rs.is_live, rs.is_replay, rs.is_automation,
		s.id, s.title, s.slug, s.show_type, s.hosts, s.days, s.start_time, s.end_time, s.description, s.genres, s.is_featured
	FROM radio_schedule rs
	JOIN radio_shows s ON s.id = rs.radio_show_id`

func scanScheduleItem(row rowScanner) (*models.RadioScheduleItem, error) {
	var (
		it                       models.RadioScheduleItem
		scheduleType             string
		days, startDate, endDate sql.NullString
		show                     models.RadioShow
		showSlug                 sql.NullString
		hosts, showDays, genres  string
	)
	if err := row.Scan(&it.ID, &it.Label, &scheduleType, &it.RadioShowID, &it.StartTime, &it.EndTime,
		&days, &startDate, &endDate, &it.Priority, &it.IsLive, &it.IsReplay, &it.IsAutomation,
		&show.ID, &show.Title, &showSlug, &show.ShowType, &hosts, &showDays,
		&show.Schedule.StartTime, &show.Schedule.EndTime, &show.Description, &genres, &show.IsFeatured); err != nil {
		return nil, err
	}
	it.ScheduleType = models.ScheduleType(scheduleType)
	it.StartDate = startDate.String
	it.EndDate = endDate.String
	if days.Valid {
		if err := decodeJSON(days.String, &it.DaysOfWeek); err != nil {
			return nil, fmt.Errorf("decode schedule item %d: %w", it.ID, err)
		}
	}
	show.Slug = showSlug.String
	show.Hosts, show.Schedule.Days, show.Genres = []string{}, []string{}, []string{}
	if err := decodeJSON(hosts, &show.Hosts); err != nil {
		return nil, fmt.Errorf("decode show %d: %w", show.ID, err)
	}
	if err := decodeJSON(showDays, &show.Schedule.Days); err != nil {
		return nil, fmt.Errorf("decode show %d: %w", show.ID, err)
	}
	if err := decodeJSON(genres, &show.Genres); err != nil {
		return nil, fmt.Errorf("decode show %d: %w", show.ID, err)
	}
	it.RadioShow = &show
	return &it, nil
}

func scheduleArgs(it *models.RadioScheduleItem) ([]any, error) {
	var days sql.NullString
	if len(it.DaysOfWeek) > 0 {
		raw, err := encodeJSON(it.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		days = nullString(raw)
	}
	scheduleType := it.ScheduleType
	if scheduleType == "" {
		scheduleType = models.ScheduleRecurring
	}
	priority := it.Priority
	if priority == 0 {
		priority = 1
	}
	return []any{it.Label, string(scheduleType), it.RadioShowID, it.StartTime, it.EndTime, days,
		nullString(it.StartDate), nullString(it.EndDate), priority, it.IsLive, it.IsReplay, it.IsAutomation}, nil
}

// ListSchedule returns every schedule item joined with its show
func (r *Repository) ListSchedule(ctx context.Context) ([]models.RadioScheduleItem, error) {
	rows, err := r.db.QueryContext(ctx, scheduleSelect+` ORDER BY rs.start_time, rs.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.RadioScheduleItem{}
	for rows.Next() {
		it, err := scanScheduleItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// GetScheduleItem retrieves a schedule item (with its show) by ID
func (r *Repository) GetScheduleItem(ctx context.Context, id int) (*models.RadioScheduleItem, error) {
	it, err := scanScheduleItem(r.db.QueryRowContext(ctx, scheduleSelect+` WHERE rs.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return it, err
}

// CreateScheduleItem inserts a schedule item and returns its ID
func (r *Repository) CreateScheduleItem(ctx context.Context, it *models.RadioScheduleItem) (int, error) {
	args, err := scheduleArgs(it)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO radio_schedule (label, schedule_type, radio_show_id, start_time, end_time, days_of_week,
			start_date, end_date, priority, is_live, is_replay, is_automation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return 0, mapWriteError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	it.ID = int(id)
	return it.ID, nil
}

// UpdateScheduleItem replaces every field of an existing schedule item
func (r *Repository) UpdateScheduleItem(ctx context.Context, it *models.RadioScheduleItem) error {
	args, err := scheduleArgs(it)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE radio_schedule SET label = ?, schedule_type = ?, radio_show_id = ?, start_time = ?, end_time = ?,
			days_of_week = ?, start_date = ?, end_date = ?, priority = ?, is_live = ?, is_replay = ?, is_automation = ?
		WHERE id = ?
	`, append(args, it.ID)...)
	if err != nil {
		return mapWriteError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteScheduleItem removes a schedule item
func (r *Repository) DeleteScheduleItem(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM radio_schedule WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
