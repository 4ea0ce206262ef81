// Package metrics exposes Prometheus counters for the HTTP API and the
// editorial domain.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics surface used by handlers and services
type Recorder interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncVotes(result string)
	IncChartsSaved(chartKey string)
	IncSnapshots()
	SetOnAirState(state string)
}

// Vote results used as label values for IncVotes
const (
	VoteAccepted  = "accepted"
	VoteDuplicate = "duplicate"
	VoteRejected  = "rejected"
	VoteThrottled = "throttled"
)

var onAirStates = []string{"loading", "live", "up-next", "idle"}

// Provider records metrics into a Prometheus registry
type Provider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	votesTotal      *prometheus.CounterVec
	chartsSaved     *prometheus.CounterVec
	snapshotsTotal  prometheus.Counter
	onAirState      *prometheus.GaugeVec
}

// New registers the collectors on reg. Returns a no-op Recorder when
// disabled.
func New(enabled bool, reg prometheus.Registerer) Recorder {
	if !enabled {
		return Noop()
	}
	factory := promauto.With(reg)

	return &Provider{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavenation_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wavenation_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavenation_cache_hits_total",
			Help: "Total number of read cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavenation_cache_misses_total",
			Help: "Total number of read cache misses",
		}),

		votesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavenation_poll_votes_total",
			Help: "Poll vote attempts by result",
		}, []string{"result"}),

		chartsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavenation_charts_saved_total",
			Help: "Chart saves by chart key",
		}, []string{"chart_key"}),

		snapshotsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavenation_chart_snapshots_total",
			Help: "Chart snapshots taken on week change",
		}),

		onAirState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wavenation_on_air_state",
			Help: "1 for the current on-air resolution state",
		}, []string{"state"}),
	}
}

func (m *Provider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *Provider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Provider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *Provider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *Provider) IncVotes(result string) {
	m.votesTotal.WithLabelValues(result).Inc()
}

func (m *Provider) IncChartsSaved(chartKey string) {
	m.chartsSaved.WithLabelValues(chartKey).Inc()
}

func (m *Provider) IncSnapshots() {
	m.snapshotsTotal.Inc()
}

// SetOnAirState sets state to 1 and every other known state to 0
func (m *Provider) SetOnAirState(state string) {
	for _, s := range onAirStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.onAirState.WithLabelValues(s).Set(v)
	}
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// noopMetrics is used when metrics are disabled
type noopMetrics struct{}

// Noop returns a Recorder that discards everything
func Noop() Recorder { return noopMetrics{} }

func (noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (noopMetrics) IncCacheHits()                                    {}
func (noopMetrics) IncCacheMisses()                                  {}
func (noopMetrics) IncVotes(_ string)                                {}
func (noopMetrics) IncChartsSaved(_ string)                          {}
func (noopMetrics) IncSnapshots()                                    {}
func (noopMetrics) SetOnAirState(_ string)                           {}
