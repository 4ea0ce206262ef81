package services

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/blake2b"

	"github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
)

// PollBroadcaster pushes updated poll results to connected clients
type PollBroadcaster interface {
	BroadcastPollResults(pollID int, results models.PollResults)
}

// BaseURLProvider returns the public base URL used in share links
type BaseURLProvider interface {
	GetBaseURL(ctx context.Context) (string, error)
}

// PollService handles polls and voting
type PollService struct {
	log          logger.Logger
	repo         repository.PollRepository
	settings     BaseURLProvider
	metrics      metrics.Recorder
	broadcaster  PollBroadcaster
	key          []byte
	resultsLimit int
	now          func() time.Time
}

// NewPollService creates a new PollService. salt keys the IP fingerprint
// hash; resultsLimit caps how many votes are tallied (0 means the
// repository default).
func NewPollService(log logger.Logger, repo repository.PollRepository, settings BaseURLProvider, m metrics.Recorder, salt string, resultsLimit int) *PollService {
	if m == nil {
		m = metrics.Noop()
	}
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &PollService{
		log:          log,
		repo:         repo,
		settings:     settings,
		metrics:      m,
		key:          key,
		resultsLimit: resultsLimit,
		now:          time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *PollService) SetBroadcaster(b PollBroadcaster) {
	s.broadcaster = b
}

// SetClock overrides the time source used for vote windows
func (s *PollService) SetClock(now func() time.Time) {
	s.now = now
}

// HashIP returns the salted fingerprint stored with a vote. The raw
// address is never persisted.
func (s *PollService) HashIP(ip string) string {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// Only possible for keys over 64 bytes, which NewPollService folds.
		panic(err)
	}
	h.Write([]byte(strings.TrimSpace(ip)))
	return hex.EncodeToString(h.Sum(nil))
}

func preparePoll(p *models.Poll) error {
	p.Question = strings.TrimSpace(p.Question)
	if p.Question == "" {
		return errors.Validation("poll question is required")
	}
	if p.Status == "" {
		p.Status = models.PollStatusDraft
	}
	if !p.Status.Valid() {
		return errors.Validationf("invalid poll status %q", p.Status)
	}
	if len(p.Options) < 2 {
		return errors.Validation("a poll needs at least two options")
	}
	seen := make(map[string]bool, len(p.Options))
	for i := range p.Options {
		opt := &p.Options[i]
		opt.Label = strings.TrimSpace(opt.Label)
		if opt.Label == "" {
			return errors.Validationf("option %d: label is required", i+1)
		}
		if opt.Slug == "" {
			opt.Slug = Slugify(opt.Label)
		}
		if seen[opt.Slug] {
			return errors.Validationf("option %d: duplicate slug %q", i+1, opt.Slug)
		}
		seen[opt.Slug] = true
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return errors.Validation("end date is before start date")
	}
	return nil
}

// ListPolls returns every poll
func (s *PollService) ListPolls(ctx context.Context) ([]models.Poll, error) {
	return s.repo.ListPolls(ctx)
}

// GetPoll returns one poll
func (s *PollService) GetPoll(ctx context.Context, id int) (*models.Poll, error) {
	p, err := s.repo.GetPoll(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, ErrPollNotFound
	}
	return p, err
}

// CreatePoll validates and stores a poll
func (s *PollService) CreatePoll(ctx context.Context, p *models.Poll) (*models.Poll, error) {
	if err := preparePoll(p); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreatePoll(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("Poll created", "poll_id", p.ID, "status", p.Status)
	return p, nil
}

// UpdatePoll validates and replaces a poll
func (s *PollService) UpdatePoll(ctx context.Context, p *models.Poll) (*models.Poll, error) {
	if err := preparePoll(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePoll(ctx, p); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	return p, nil
}

// DeletePoll removes a poll and its votes
func (s *PollService) DeletePoll(ctx context.Context, id int) error {
	if err := s.repo.DeletePoll(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return ErrPollNotFound
		}
		return err
	}
	return nil
}

// FeaturedPoll returns the homepage poll, or nil when there is none
func (s *PollService) FeaturedPoll(ctx context.Context) (*models.Poll, error) {
	p, err := s.repo.FeaturedPoll(ctx, s.now())
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Vote records one vote per client fingerprint per poll
func (s *PollService) Vote(ctx context.Context, pollID int, option, clientIP string) error {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		s.metrics.IncVotes(metrics.VoteRejected)
		return err
	}
	if !poll.AcceptsVotes(s.now()) {
		s.metrics.IncVotes(metrics.VoteRejected)
		return ErrPollClosed
	}
	if !poll.HasOption(option) {
		s.metrics.IncVotes(metrics.VoteRejected)
		return ErrInvalidOption
	}

	vote := &models.PollVote{
		PollID:    pollID,
		Option:    option,
		IPHash:    s.HashIP(clientIP),
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveVote(ctx, vote); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			s.metrics.IncVotes(metrics.VoteDuplicate)
			return ErrAlreadyVoted
		}
		return fmt.Errorf("save vote: %w", err)
	}
	s.metrics.IncVotes(metrics.VoteAccepted)
	s.log.Debug("Vote recorded", "poll_id", pollID, "option", option)

	if s.broadcaster != nil {
		results, err := s.Results(ctx, pollID)
		if err != nil {
			s.log.Warn("Could not tally results for broadcast", "poll_id", pollID, "error", err)
			return nil
		}
		s.broadcaster.BroadcastPollResults(pollID, results)
	}
	return nil
}

// Results returns vote counts keyed by option slug. Every option of the
// poll is present, with zero when nobody picked it.
func (s *PollService) Results(ctx context.Context, pollID int) (models.PollResults, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountVotes(ctx, pollID, s.resultsLimit)
	if err != nil {
		return nil, err
	}
	results := make(models.PollResults, len(poll.Options))
	for _, opt := range poll.Options {
		results[opt.Slug] = counts[opt.Slug]
	}
	return results, nil
}

// PollURL returns the public link to a poll
func (s *PollService) PollURL(ctx context.Context, pollID int) (string, error) {
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil || baseURL == "" {
		return "", errors.Validation("base_url not configured")
	}
	return fmt.Sprintf("%s/polls/%d", strings.TrimSuffix(baseURL, "/"), pollID), nil
}

// ShareQR renders a PNG QR code linking to the poll
func (s *PollService) ShareQR(ctx context.Context, pollID int) ([]byte, error) {
	if _, err := s.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}
	link, err := s.PollURL(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(link, qrcode.Medium, 256)
}
