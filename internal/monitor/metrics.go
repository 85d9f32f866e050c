package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/turtacn/inventa/pkg/logger"
)

var (
	// StartupDuration tracks the time from start() to Ready in seconds.
	StartupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "inventa_startup_duration_seconds",
		Help: "Time from supervisor start to backend readiness",
	})
	// StartFailures counts Failed outcomes, partitioned by category.
	StartFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventa_start_failures_total",
		Help: "Total number of failed backend startups",
	}, []string{"category"})
	// BackendUp is 1 while the supervised backend is Ready.
	BackendUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventa_backend_up",
		Help: "Whether the supervised backend is ready",
	})
)

// InitMetrics registers Prometheus metrics and starts an HTTP server to
// expose them. It takes an address string (e.g., ":9090") on which to
// listen for requests.
func InitMetrics(addr string) {
	prometheus.MustRegister(StartupDuration)
	prometheus.MustRegister(StartFailures)
	prometheus.MustRegister(BackendUp)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logger.Log.Info("Metrics server starting", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Error("Metrics server failed", "err", err)
		}
	}()
}

// Personal.AI order the ending
