package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// DefaultResultsLimit caps how many votes CountVotes scans
const DefaultResultsLimit = 2000

// ==================== Poll Methods ====================

const pollColumns = `id, question, description, options, status, feature_on_homepage,
	start_date, end_date, context, created_at, updated_at`

func scanPoll(row rowScanner) (*models.Poll, error) {
	var (
		p                  models.Poll
		options, status    string
		startDate, endDate sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Question, &p.Description, &options, &status, &p.FeatureOnHomepage,
		&startDate, &endDate, &p.Context, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = models.PollStatus(status)
	p.StartDate = timePtr(startDate)
	p.EndDate = timePtr(endDate)
	p.Options = []models.PollOption{}
	if err := decodeJSON(options, &p.Options); err != nil {
		return nil, fmt.Errorf("decode options for poll %d: %w", p.ID, err)
	}
	return &p, nil
}

// ListPolls returns every poll, most recently updated first
func (r *Repository) ListPolls(ctx context.Context) ([]models.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+pollColumns+` FROM polls ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, *p)
	}
	return polls, rows.Err()
}

// GetPoll retrieves a poll by ID
func (r *Repository) GetPoll(ctx context.Context, id int) (*models.Poll, error) {
	p, err := scanPoll(r.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// CreatePoll inserts a poll and returns its ID
func (r *Repository) CreatePoll(ctx context.Context, p *models.Poll) (int, error) {
	options, err := encodeJSON(p.Options)
	if err != nil {
		return 0, err
	}
	now := r.timestamp()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO polls (question, description, options, status, feature_on_homepage,
			start_date, end_date, context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Question, p.Description, options, string(p.Status), p.FeatureOnHomepage,
		nullTime(p.StartDate), nullTime(p.EndDate), p.Context, now, now)
	if err != nil {
		return 0, mapWriteError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = int(id)
	p.CreatedAt = now
	p.UpdatedAt = now
	return p.ID, nil
}

// UpdatePoll replaces every editable field of an existing poll
func (r *Repository) UpdatePoll(ctx context.Context, p *models.Poll) error {
	options, err := encodeJSON(p.Options)
	if err != nil {
		return err
	}
	now := r.timestamp()
	result, err := r.db.ExecContext(ctx, `
		UPDATE polls SET question = ?, description = ?, options = ?, status = ?, feature_on_homepage = ?,
			start_date = ?, end_date = ?, context = ?, updated_at = ?
		WHERE id = ?
	`, p.Question, p.Description, options, string(p.Status), p.FeatureOnHomepage,
		nullTime(p.StartDate), nullTime(p.EndDate), p.Context, now, p.ID)
	if err != nil {
		return mapWriteError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

// DeletePoll removes a poll and its votes
func (r *Repository) DeletePoll(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FeaturedPoll returns the most recently updated live poll flagged for the
// homepage whose start date is absent or not after now. Returns
// ErrNotFound when there is none.
func (r *Repository) FeaturedPoll(ctx context.Context, now time.Time) (*models.Poll, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM polls
		WHERE status = ? AND feature_on_homepage = 1 AND (start_date IS NULL OR start_date <= ?)
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`, string(models.PollStatusLive), now.UTC())
	p, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ==================== Vote Methods ====================

// SaveVote records a vote. A second vote from the same fingerprint on the
// same poll returns ErrDuplicate.
func (r *Repository) SaveVote(ctx context.Context, v *models.PollVote) error {
	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.timestamp()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO poll_votes (poll_id, option_slug, ip_hash, created_at) VALUES (?, ?, ?, ?)
	`, v.PollID, v.Option, v.IPHash, createdAt.UTC())
	if err != nil {
		return mapWriteError(err)
	}
	v.CreatedAt = createdAt
	return nil
}

// CountVotes tallies votes per option slug, scanning at most limit votes
func (r *Repository) CountVotes(ctx context.Context, pollID, limit int) (models.PollResults, error) {
	if limit <= 0 {
		limit = DefaultResultsLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT option_slug FROM poll_votes WHERE poll_id = ? ORDER BY id LIMIT ?
	`, pollID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := models.PollResults{}
	for rows.Next() {
		var option string
		if err := rows.Scan(&option); err != nil {
			return nil, err
		}
		results[option]++
	}
	return results, rows.Err()
}
