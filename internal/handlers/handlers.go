package handlers

import (
	"context"
	"net/http"

	"github.com/wavenation/wavenation/internal/auth"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/services"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer needs. Hub, MetricsHandler
// and DB may be nil; the matching routes then answer 404 or report ok.
type Deps struct {
	Charts         services.ChartServicer
	Schedule       services.ScheduleServicer
	Polls          services.PollServicer
	NowPlaying     services.NowPlayingServicer
	Settings       services.SettingsServicer
	Auth           *auth.Auth
	Hub            http.Handler
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	DB             Pinger
	Log            logger.Logger
	VotesPerMinute int
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Charts         services.ChartServicer
	Schedule       services.ScheduleServicer
	Polls          services.PollServicer
	NowPlaying     services.NowPlayingServicer
	Settings       services.SettingsServicer
	Auth           *auth.Auth
	Hub            http.Handler
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	DB             Pinger
	Log            logger.Logger
	voteLimiter    *ipLimiter
}

// New creates a new Handlers instance with all dependencies
func New(d Deps) *Handlers {
	if d.Metrics == nil {
		d.Metrics = metrics.Noop()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &Handlers{
		Charts:         d.Charts,
		Schedule:       d.Schedule,
		Polls:          d.Polls,
		NowPlaying:     d.NowPlaying,
		Settings:       d.Settings,
		Auth:           d.Auth,
		Hub:            d.Hub,
		Metrics:        d.Metrics,
		MetricsHandler: d.MetricsHandler,
		DB:             d.DB,
		Log:            d.Log,
		voteLimiter:    newIPLimiter(d.VotesPerMinute),
	}
}

// handleHealth reports liveness and database reachability
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			h.Log.Warn("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"})
}
