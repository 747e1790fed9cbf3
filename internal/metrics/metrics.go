package metrics

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_api_requests_total",
		Help: "Mastodon API requests by endpoint and status code",
	}, []string{"endpoint", "code"})
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tweepydon_api_request_duration_seconds",
		Help:    "Mastodon API request duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	Translations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_translations_total",
		Help: "Records translated into Twitter shape",
	}, []string{"kind"})
	NotFound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_not_found_total",
		Help: "Lookups that resolved to not found",
	}, []string{"resource"})
	UnimplementedParams = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_unimplemented_params_total",
		Help: "Accepted parameters with no Mastodon counterpart",
	}, []string{"method", "param"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweepydon_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
	SyncRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweepydon_sync_runs_total",
		Help: "Total home timeline sync runs",
	})
	SyncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweepydon_sync_errors_total",
		Help: "Total home timeline sync errors",
	})
	SyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tweepydon_sync_duration_seconds",
		Help:    "Home timeline sync duration seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		APIRequests, APIRequestDuration, APIRetries,
		Translations, NotFound, UnimplementedParams,
		CommandRuns, CommandErrors,
		SyncRuns, SyncErrors, SyncDuration,
	)
}

// Router exposes /metrics and /health.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
// An empty addr falls back to METRICS_ADDR; if both are empty nothing is started.
func StartServer(addr string) *http.Server {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return nil
	}
	srv := &http.Server{Addr: addr, Handler: Router(), ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

// ObserveAPIRequest records one completed request against endpoint.
func ObserveAPIRequest(endpoint string, code int, start time.Time) {
	APIRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

func IncTranslation(kind string) { Translations.WithLabelValues(kind).Inc() }

func IncNotFound(resource string) { NotFound.WithLabelValues(resource).Inc() }

func IncUnimplementedParam(method, param string) {
	UnimplementedParams.WithLabelValues(method, param).Inc()
}

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

// ObserveSyncDuration records a run duration
func ObserveSyncDuration(start time.Time) {
	SyncDuration.Observe(time.Since(start).Seconds())
}
