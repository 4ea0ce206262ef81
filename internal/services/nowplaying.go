package services

import (
	"context"

	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/pkg/nowplaying"
)

// Placeholders for fields the provider leaves out
const (
	UnknownTrack  = "Unknown Track"
	UnknownArtist = "Unknown Artist"
)

// NowPlayingService reports the track currently on air
type NowPlayingService struct {
	log    logger.Logger
	client nowplaying.Client
}

// NewNowPlayingService creates a new NowPlayingService. A nil client
// means no provider is configured.
func NewNowPlayingService(log logger.Logger, client nowplaying.Client) *NowPlayingService {
	return &NowPlayingService{log: log, client: client}
}

// Current returns the normalized now playing record, or nil when the
// provider is unavailable or reports nothing.
func (s *NowPlayingService) Current(ctx context.Context) *models.NowPlaying {
	if s.client == nil {
		return nil
	}
	track, err := s.client.Fetch(ctx)
	if err != nil {
		s.log.Warn("Now playing unavailable", "error", err)
		return nil
	}
	if track == nil {
		return nil
	}

	np := &models.NowPlaying{Track: track.Title, Artist: track.Artist}
	if np.Track == "" {
		np.Track = UnknownTrack
	}
	if np.Artist == "" {
		np.Artist = UnknownArtist
	}
	if track.Cover != "" {
		cover := track.Cover
		np.Artwork = &cover
	}
	return np
}
