package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/aidarbek/todochat/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "todochat",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todochat",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Realtime metrics

	ChatClientsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "todochat",
		Name:      "chat_clients_connected",
		Help:      "Number of websocket clients currently connected.",
	})

	ChatBroadcastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todochat",
		Name:      "chat_broadcasts_total",
		Help:      "Total messages broadcast to clients, by event.",
	}, []string{"event"})

	ChatClientsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "todochat",
		Name:      "chat_clients_dropped_total",
		Help:      "Clients disconnected because their send buffer was full.",
	})

	// Housekeeping metrics

	TokensPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "todochat",
		Name:      "tokens_pruned_total",
		Help:      "Expired session tokens removed by the sweeper.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		ChatClientsConnected,
		ChatBroadcastsTotal,
		ChatClientsDroppedTotal,
		TokensPrunedTotal,
	)
}

// NewServer exposes /metrics plus liveness and readiness probes on a
// separate listener, away from the public API. A nil checker means the
// process has no dependencies to probe and is always ready.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeHealth(w, http.StatusOK, health.HealthResult{Status: "up"})
			return
		}
		writeHealth(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeHealth(w, http.StatusOK, health.HealthResult{Status: "up"})
			return
		}
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, status int, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
