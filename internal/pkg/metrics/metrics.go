// Package metrics holds the prometheus collectors of the console.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caradmin",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight console requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of console requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caradmin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of console requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the upstream backend.",
		},
		[]string{"method", "route", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caradmin",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream backend requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method", "route"},
	)

	signins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "auth",
			Name:      "signins_total",
			Help:      "Console sign-in attempts by result.",
		},
		[]string{"result"},
	)

	sessionsRevoked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "auth",
			Name:      "sessions_revoked_total",
			Help:      "Console sessions revoked by reason.",
		},
		[]string{"reason"},
	)

	feedExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "feed",
			Name:      "exports_total",
			Help:      "Generated YML catalogs by trigger.",
		},
		[]string{"trigger"},
	)

	feedOffers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caradmin",
			Subsystem: "feed",
			Name:      "offers",
			Help:      "Offers in the last generated YML catalog.",
		},
	)

	chatDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "chat",
			Name:      "messages_delivered_total",
			Help:      "Chat messages delivered to viewers by update path.",
		},
		[]string{"path"},
	)

	chatDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "chat",
			Name:      "messages_deduplicated_total",
			Help:      "Chat messages dropped because another path already delivered them.",
		},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caradmin",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		upstreamRequests,
		upstreamDuration,
		signins,
		sessionsRevoked,
		feedExports,
		feedOffers,
		chatDelivered,
		chatDuplicates,
		jobRuns,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// HTTPStarted marks a console request in flight and returns the func that
// records its outcome.
func HTTPStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Upstream implements the backend client's metrics hook.
type Upstream struct{}

func (Upstream) ObserveUpstream(method, route string, status int, d time.Duration) {
	upstreamRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	upstreamDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordSignin(result string) { signins.WithLabelValues(result).Inc() }

func RecordSessionRevoked(reason string) { sessionsRevoked.WithLabelValues(reason).Inc() }

func RecordFeedExport(trigger string, offers int) {
	feedExports.WithLabelValues(trigger).Inc()
	feedOffers.Set(float64(offers))
}

// RecordChatDelivery counts a message by the path that delivered it first,
// or as a duplicate.
func RecordChatDelivery(path string, duplicate bool) {
	if duplicate {
		chatDuplicates.Inc()
		return
	}
	chatDelivered.WithLabelValues(path).Inc()
}

func RecordJobRun(job string, success bool) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}
