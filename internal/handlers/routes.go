package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/wavenation/wavenation/internal/metrics"
)

// requestTimeout bounds every API request
const requestTimeout = 30 * time.Second

func gzipped(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)

	// Long-lived and infrastructure endpoints stay outside the API stack
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeHTTP)
	}
	if h.MetricsHandler != nil {
		r.Handle("/metrics", h.MetricsHandler)
	}
	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(metrics.Middleware(h.Metrics))
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(gzipped)

		// Charts
		r.Get("/charts", h.handleListCharts)
		r.Get("/charts/by-key", h.handleChartsByKey)
		r.Get("/charts/by-slug", h.handleChartBySlug)
		r.Get("/charts/metrics", h.handleChartMetrics)
		r.Get("/charts/overview", h.handleChartOverview)
		r.Get("/charts/{slug}/compare", h.handleCompareChart)

		// Radio
		r.Get("/radio-schedule", h.handleRadioSchedule)
		r.Get("/radio-schedule/on-air", h.handleOnAir)
		r.Get("/now-playing", h.handleNowPlaying)

		// Polls
		r.Get("/polls/featured", h.handleFeaturedPoll)
		r.Post("/polls/vote", h.handleVote)
		r.Get("/polls/results", h.handlePollResults)
		r.Get("/polls/{id}/qr", h.handlePollQR)

		// Auth
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)

		// Editorial API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)

			// Charts
			r.Get("/admin/charts", h.handleAdminListCharts)
			r.Post("/admin/charts", h.handleCreateChart)
			r.Get("/admin/charts/{id}", h.handleGetChart)
			r.Put("/admin/charts/{id}", h.handleUpdateChart)
			r.Delete("/admin/charts/{id}", h.handleDeleteChart)
			r.Post("/admin/charts/{id}/import-csv", h.handleImportChartCSV)
			r.Get("/admin/charts/{id}/snapshots", h.handleListSnapshots)

			// Radio shows
			r.Get("/admin/radio-shows", h.handleListShows)
			r.Post("/admin/radio-shows", h.handleCreateShow)
			r.Get("/admin/radio-shows/{id}", h.handleGetShow)
			r.Put("/admin/radio-shows/{id}", h.handleUpdateShow)
			r.Delete("/admin/radio-shows/{id}", h.handleDeleteShow)

			// Radio schedule
			r.Get("/admin/radio-schedule", h.handleListScheduleItems)
			r.Post("/admin/radio-schedule", h.handleCreateScheduleItem)
			r.Post("/admin/radio-schedule/import", h.handleImportSchedule)
			r.Get("/admin/radio-schedule/{id}", h.handleGetScheduleItem)
			r.Put("/admin/radio-schedule/{id}", h.handleUpdateScheduleItem)
			r.Delete("/admin/radio-schedule/{id}", h.handleDeleteScheduleItem)

			// Polls
			r.Get("/admin/polls", h.handleListPolls)
			r.Post("/admin/polls", h.handleCreatePoll)
			r.Get("/admin/polls/{id}", h.handleGetPoll)
			r.Put("/admin/polls/{id}", h.handleUpdatePoll)
			r.Delete("/admin/polls/{id}", h.handleDeletePoll)

			// Settings
			r.Get("/admin/settings", h.handleGetSettings)
			r.Put("/admin/settings", h.handleUpdateSettings)
			r.Post("/admin/reset-database", h.handleResetDatabase)
		})
	})

	return r
}
