// Package metrics provides Prometheus metrics for the bridge.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	// Dispatch metrics
	CallsTotal  *prometheus.CounterVec
	CallLatency *prometheus.HistogramVec
	MakesTotal  prometheus.Counter
	ErrorsTotal *prometheus.CounterVec

	// Registry metrics
	ProxiesLive        prometheus.Gauge
	RegistrationsTotal prometheus.Counter

	// Connector metrics
	ConnectionsActive prometheus.Gauge
	FramesRejected    prometheus.Counter
}

// Default holds the metrics registered in the global registry. It is
// registered once at package initialization.
var Default = NewMetrics("arrowmex", prometheus.DefaultRegisterer)

// NewMetrics creates a new Metrics instance with the given namespace,
// registered into reg. Callers that need isolation (tests, embedding) pass
// their own prometheus.NewRegistry().
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of proxy method calls by method and outcome",
		}, []string{"method", "outcome"}),
		CallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_latency_seconds",
			Help:      "Proxy method call latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"method"}),
		MakesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_makes_total",
			Help:      "Total number of schema proxies constructed",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_errors_total",
			Help:      "Total number of tagged call errors by error identifier",
		}, []string{"error_id"}),
		ProxiesLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proxies_live",
			Help:      "Number of live entries in the proxy registry",
		}),
		RegistrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_registrations_total",
			Help:      "Total number of proxies registered",
		}),
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of active host connections",
		}),
		FramesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rejected_total",
			Help:      "Total number of malformed or oversized wire frames rejected",
		}),
	}
}

// RecordCall records one dispatched method call.
func (m *Metrics) RecordCall(method, outcome string, duration time.Duration) {
	m.CallsTotal.WithLabelValues(method, outcome).Inc()
	m.CallLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records a tagged call error by its stable identifier.
func (m *Metrics) RecordError(errorID string) {
	m.ErrorsTotal.WithLabelValues(errorID).Inc()
}

// UpdateRegistry updates the live-proxy gauge and counts new registrations.
func (m *Metrics) UpdateRegistry(live, newlyRegistered int) {
	m.ProxiesLive.Set(float64(live))
	if newlyRegistered > 0 {
		m.RegistrationsTotal.Add(float64(newlyRegistered))
	}
}

// Server runs an HTTP server exposing the /metrics endpoint.
type Server struct {
	server *http.Server
}

// NewServer creates a new metrics server on the given address.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start starts the metrics server (blocking).
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// StartAsync starts the metrics server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		_ = s.server.ListenAndServe()
	}()
}

// Stop stops the metrics server.
func (s *Server) Stop() error {
	return s.server.Close()
}
