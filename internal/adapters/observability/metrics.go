package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "playreviews", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "playreviews", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "playreviews", Name: "pages_fetched_total", Help: "Review pages decoded."},
		[]string{"language"},
	)
	RecordEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "playreviews", Name: "record_events_total", Help: "Reviews kept or filtered by the cursor."},
		[]string{"language", "event"}, // event: kept|filtered
	)
	StateOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "playreviews", Name: "state_ops_total", Help: "State store operations."},
		[]string{"backend", "op"}, // op: hit|miss|save
	)
)

// Serve exposes /metrics on addr in the background. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ExternalRequests, ExternalLatency, PagesFetched, RecordEvents, StateOps)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObservePage(language string, kept, filtered int) {
	PagesFetched.WithLabelValues(language).Inc()
	RecordEvents.WithLabelValues(language, "kept").Add(float64(kept))
	RecordEvents.WithLabelValues(language, "filtered").Add(float64(filtered))
}

func ObserveState(backend, op string) {
	StateOps.WithLabelValues(backend, op).Inc()
}
