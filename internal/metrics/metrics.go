package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/carematch/carematch/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Matching metrics

	CandidatesEligible = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "carematch",
		Name:      "candidates_eligible",
		Help:      "Eligible candidates per fan-out, after filtering and capping.",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 15, 20, 30},
	})

	NotificationsFannedOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carematch",
		Name:      "notifications_fanned_out_total",
		Help:      "Total candidate notifications created.",
	})

	ConfirmationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carematch",
		Name:      "confirmations_total",
		Help:      "Confirmation ledger writes, by path.",
	}, []string{"path"})

	JobsLockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carematch",
		Name:      "jobs_locked_total",
		Help:      "Jobs locked to a freelancer.",
	})

	RestartsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carematch",
		Name:      "job_restarts_total",
		Help:      "Client-initiated matching restarts.",
	})

	// Sweeper metrics

	SweptRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carematch",
		Name:      "swept_rows_total",
		Help:      "Rows purged by the retention sweeper, by table.",
	}, []string{"table"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carematch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carematch",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		CandidatesEligible,
		NotificationsFannedOut,
		ConfirmationsTotal,
		JobsLockedTotal,
		RestartsTotal,
		SweptRowsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus liveness and readiness probes on a
// dedicated port.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
