package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// ==================== Chart Methods ====================

const chartColumns = `id, title, chart_key, chart_mode, slug, status, publish_date, week,
	week_start, week_end, entries, created_at, updated_at`

func scanChart(row rowScanner) (*models.Chart, error) {
	var (
		c                           models.Chart
		slug, publishDate, week     sql.NullString
		weekStart, weekEnd          sql.NullString
		entries                     string
		chartKey, chartMode, status string
	)
	if err := row.Scan(&c.ID, &c.Title, &chartKey, &chartMode, &slug, &status, &publishDate, &week,
		&weekStart, &weekEnd, &entries, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ChartKey = models.ChartKey(chartKey)
	c.ChartMode = models.ChartMode(chartMode)
	c.Status = models.ChartStatus(status)
	c.Slug = slug.String
	c.PublishDate = publishDate.String
	c.Week = week.String
	if weekStart.Valid || weekEnd.Valid {
		c.WeekRange = &models.WeekRange{StartDate: weekStart.String, EndDate: weekEnd.String}
	}
	c.Entries = []models.ChartEntry{}
	if err := decodeJSON(entries, &c.Entries); err != nil {
		return nil, fmt.Errorf("decode entries for chart %d: %w", c.ID, err)
	}
	return &c, nil
}

func weekRangeColumns(r *models.WeekRange) (sql.NullString, sql.NullString) {
	if r == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return nullString(r.StartDate), nullString(r.EndDate)
}

// GetChart retrieves a chart by ID
func (r *Repository) GetChart(ctx context.Context, id int) (*models.Chart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chartColumns+` FROM charts WHERE id = ?`, id)
	c, err := scanChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// GetChartBySlug retrieves a chart by its slug
func (r *Repository) GetChartBySlug(ctx context.Context, slug string) (*models.Chart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chartColumns+` FROM charts WHERE slug = ?`, slug)
	c, err := scanChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// CreateChart inserts a chart and returns its ID. A second chart for the
// same key and week returns ErrDuplicate.
func (r *Repository) CreateChart(ctx context.Context, c *models.Chart) (int, error) {
	entries, err := encodeJSON(c.Entries)
	if err != nil {
		return 0, err
	}
	weekStart, weekEnd := weekRangeColumns(c.WeekRange)
	now := r.timestamp()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO charts (title, chart_key, chart_mode, slug, status, publish_date, week,
			week_start, week_end, entries, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Title, string(c.ChartKey), string(c.ChartMode), nullString(c.Slug), string(c.Status),
		nullString(c.PublishDate), nullString(c.Week), weekStart, weekEnd, entries, now, now)
	if err != nil {
		return 0, mapWriteError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = int(id)
	c.CreatedAt = now
	c.UpdatedAt = now
	return c.ID, nil
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpdateChart replaces every editable field of an existing chart
func (r *Repository) UpdateChart(ctx context.Context, c *models.Chart) error {
	now := r.timestamp()
	if err := updateChart(ctx, r.db, c, now); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// UpdateChartWithSnapshot updates a chart and, when snap is not nil,
// appends the snapshot in the same transaction. Either both are stored or
// neither is.
func (r *Repository) UpdateChartWithSnapshot(ctx context.Context, c *models.Chart, snap *models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chart update: %w", err)
	}
	defer tx.Rollback()

	now := r.timestamp()
	if err := updateChart(ctx, tx, c, now); err != nil {
		return err
	}
	var snapID int
	if snap != nil {
		if snapID, err = appendSnapshot(ctx, tx, snap, now); err != nil {
			return fmt.Errorf("snapshot week %s: %w", snap.Week, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chart update: %w", err)
	}

	c.UpdatedAt = now
	if snap != nil {
		snap.ID = snapID
	}
	return nil
}

func updateChart(ctx context.Context, ex execer, c *models.Chart, now time.Time) error {
	entries, err := encodeJSON(c.Entries)
	if err != nil {
		return err
	}
	weekStart, weekEnd := weekRangeColumns(c.WeekRange)

	result, err := ex.ExecContext(ctx, `
		UPDATE charts SET title = ?, chart_key = ?, chart_mode = ?, slug = ?, status = ?,
			publish_date = ?, week = ?, week_start = ?, week_end = ?, entries = ?, updated_at = ?
		WHERE id = ?
	`, c.Title, string(c.ChartKey), string(c.ChartMode), nullString(c.Slug), string(c.Status),
		nullString(c.PublishDate), nullString(c.Week), weekStart, weekEnd, entries, now, c.ID)
	if err != nil {
		return mapWriteError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChart removes a chart and, by cascade, its snapshots
func (r *Repository) DeleteChart(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCharts returns charts matching filter, newest week first
func (r *Repository) ListCharts(ctx context.Context, filter ChartFilter) ([]models.Chart, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ChartKey != "" {
		where = append(where, "chart_key = ?")
		args = append(args, string(filter.ChartKey))
	}

	query := `SELECT ` + chartColumns + ` FROM charts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	// ISO week strings sort chronologically as text.
	query += ` ORDER BY week IS NULL, week DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	charts := []models.Chart{}
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, err
		}
		charts = append(charts, *c)
	}
	return charts, rows.Err()
}

// ==================== Snapshot Methods ====================

// AppendSnapshot stores an immutable snapshot. There is no update path.
func (r *Repository) AppendSnapshot(ctx context.Context, s *models.Snapshot) (int, error) {
	id, err := appendSnapshot(ctx, r.db, s, r.timestamp())
	if err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

func appendSnapshot(ctx context.Context, ex execer, s *models.Snapshot, now time.Time) (int, error) {
	entries, err := encodeJSON(s.Entries)
	if err != nil {
		return 0, err
	}
	weekStart, weekEnd := weekRangeColumns(s.WeekRange)
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	result, err := ex.ExecContext(ctx, `
		INSERT INTO chart_snapshots (chart_id, week, week_start, week_end, entries, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ChartID, s.Week, weekStart, weekEnd, entries, createdAt.UTC())
	if err != nil {
		return 0, mapWriteError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// ListSnapshots returns a chart's snapshots in the order they were taken
func (r *Repository) ListSnapshots(ctx context.Context, chartID int) ([]models.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chart_id, week, week_start, week_end, entries, created_at
		FROM chart_snapshots WHERE chart_id = ? ORDER BY id
	`, chartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []models.Snapshot{}
	for rows.Next() {
		var (
			s                  models.Snapshot
			weekStart, weekEnd sql.NullString
			entries            string
		)
		if err := rows.Scan(&s.ID, &s.ChartID, &s.Week, &weekStart, &weekEnd, &entries, &s.CreatedAt); err != nil {
			return nil, err
		}
		if weekStart.Valid || weekEnd.Valid {
			s.WeekRange = &models.WeekRange{StartDate: weekStart.String, EndDate: weekEnd.String}
		}
		s.Entries = []models.ChartEntry{}
		if err := decodeJSON(entries, &s.Entries); err != nil {
			return nil, fmt.Errorf("decode entries for snapshot %d: %w", s.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
