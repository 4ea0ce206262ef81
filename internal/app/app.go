// Package app wires configuration, storage, services and the HTTP layer
// into a runnable server.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wavenation/wavenation/internal/auth"
	"github.com/wavenation/wavenation/internal/cache"
	"github.com/wavenation/wavenation/internal/config"
	"github.com/wavenation/wavenation/internal/handlers"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
	"github.com/wavenation/wavenation/internal/services"
	"github.com/wavenation/wavenation/internal/websocket"
	"github.com/wavenation/wavenation/pkg/nowplaying"
)

// SettingIPHashSalt persists a generated vote salt when none is configured
const SettingIPHashSalt = "ip_hash_salt"

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	cfg      *config.Config
	log      logger.Logger
	repo     *repository.Repository
	hub      *websocket.Hub
	handlers *handlers.Handlers
	settings *services.SettingsService
	charts   *services.ChartService
	schedule *services.ScheduleService
	polls    *services.PollService
	password string
	network  networkProvider
}

// Option customizes New
type Option func(*options)

type options struct {
	nowPlaying nowplaying.Client
	network    networkProvider
}

// WithNowPlayingClient replaces the provider client built from config
func WithNowPlayingClient(c nowplaying.Client) Option {
	return func(o *options) { o.nowPlaying = c }
}

// New creates and initializes a new application instance
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	o := options{network: realNetworkProvider{}}
	for _, opt := range opts {
		opt(&o)
	}

	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	a := &App{cfg: cfg, log: log, repo: repo, network: o.network}
	if err := a.build(ctx, o); err != nil {
		repo.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, o options) error {
	cfg, log := a.cfg, a.log

	reg := prometheus.NewRegistry()
	recorder := metrics.New(cfg.Metrics.Enabled, reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}
	readCache := cache.New(cfg.Cache, log)

	a.settings = services.NewSettingsService(log, a.repo)
	if err := a.seedSettings(ctx); err != nil {
		return err
	}
	salt, err := a.voteSalt(ctx)
	if err != nil {
		return err
	}

	a.charts = services.NewChartService(log, a.repo, readCache, recorder)
	a.schedule = services.NewScheduleService(log, a.repo, a.settings, readCache, recorder)
	a.polls = services.NewPollService(log, a.repo, a.settings, recorder, salt, cfg.Polls.ResultsLimit)

	client := o.nowPlaying
	if client == nil && cfg.NowPlaying.URL != "" {
		client = nowplaying.NewHTTPClient(cfg.NowPlaying.URL, log)
	}
	nowPlaying := services.NewNowPlayingService(log, client)

	a.hub = websocket.New(log, a.schedule)
	a.polls.SetBroadcaster(a.hub)

	a.password = cfg.Auth.Password
	if a.password == "" {
		a.password = auth.GeneratePassword()
		log.Warn("No editorial password configured, generated one for this run", "password", a.password)
	}
	editorAuth := auth.New(a.password, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	if cfg.Log.HTTP {
		log.EnableHTTPLogging()
	}

	a.handlers = handlers.New(handlers.Deps{
		Charts:         a.charts,
		Schedule:       a.schedule,
		Polls:          a.polls,
		NowPlaying:     nowPlaying,
		Settings:       a.settings,
		Auth:           editorAuth,
		Hub:            http.HandlerFunc(a.hub.ServeWs),
		Metrics:        recorder,
		MetricsHandler: metricsHandler,
		DB:             a.repo,
		Log:            log,
		VotesPerMinute: cfg.Polls.VotesPerMinute,
	})
	return nil
}

// seedSettings copies configured values into the settings table. The
// schedule zone is only written when unset so editor changes survive
// restarts. Without a configured base URL the LAN address is used.
func (a *App) seedSettings(ctx context.Context) error {
	if a.cfg.Server.BaseURL != "" {
		if err := a.settings.SetBaseURL(ctx, strings.TrimRight(a.cfg.Server.BaseURL, "/")); err != nil {
			return fmt.Errorf("seed base_url: %w", err)
		}
	} else {
		ip := getPreferredIP(a.network)
		a.setDefaultBaseURL(ctx, fmt.Sprintf("http://%s%s", ip, a.cfg.Addr()))
	}

	if _, err := a.repo.GetSetting(ctx, services.SettingScheduleTimezone); errors.Is(err, repository.ErrNotFound) {
		if err := a.settings.SetScheduleTimezone(ctx, a.cfg.Schedule.Timezone); err != nil {
			return fmt.Errorf("seed schedule timezone: %w", err)
		}
	}
	return nil
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(ctx context.Context, baseURL string) {
	existing, _ := a.settings.GetBaseURL(ctx)
	if existing != "" && !strings.Contains(existing, "localhost") {
		return
	}
	if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
		a.log.Warn("Failed to set default base_url", "error", err)
		return
	}
	a.log.Info("Default base URL set", "url", baseURL)
}

// voteSalt returns the configured salt, or a generated one persisted in
// settings so vote fingerprints stay stable across restarts
func (a *App) voteSalt(ctx context.Context) (string, error) {
	if a.cfg.Polls.Salt != "" {
		return a.cfg.Polls.Salt, nil
	}
	salt, err := a.settings.GetSetting(ctx, SettingIPHashSalt)
	if err == nil && salt != "" {
		return salt, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("read vote salt: %w", err)
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate vote salt: %w", err)
	}
	salt = hex.EncodeToString(b)
	if err := a.settings.SetSetting(ctx, SettingIPHashSalt, salt); err != nil {
		return "", fmt.Errorf("store vote salt: %w", err)
	}
	return salt, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Hub returns the websocket hub
func (a *App) Hub() *websocket.Hub {
	return a.hub
}

// EditorPassword is the password accepted by the editorial login
func (a *App) EditorPassword() string {
	return a.password
}

// ImportChartCSV replaces a chart's entries from a CSV file
func (a *App) ImportChartCSV(ctx context.Context, chartID int, r io.Reader) (*models.Chart, error) {
	return a.charts.ImportCSV(ctx, chartID, r)
}

// ImportSchedule upserts shows and slots from a YAML schedule file
func (a *App) ImportSchedule(ctx context.Context, r io.Reader) (*services.ImportResult, error) {
	return a.schedule.ImportYAML(ctx, r)
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// Run listens on the configured address and serves until ctx is done
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server, the websocket hub and the on-air watcher
// until ctx is cancelled or one of them fails, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.hub.WatchOnAir(gctx, a.cfg.Schedule.PollInterval)
		return nil
	})
	g.Go(func() error {
		a.log.Info("Server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
