package metrics

import (
	"net/http"
	"strconv"

	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pullhook"

// Recorder holds the service's Prometheus collectors on its own registry
type Recorder struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	decisions    *prometheus.CounterVec
	syncs        *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Number of webhook requests by response code.",
		}, []string{"code"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "decisions_total",
			Help:      "Number of dispatch decisions by action.",
		}, []string{"action"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Number of sync runs by status.",
		}, []string{"status"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of sync runs in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"status"}),
	}

	r.registry.MustRegister(
		r.requests,
		r.decisions,
		r.syncs,
		r.syncDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest counts a webhook response by status code
func (r *Recorder) ObserveRequest(code int) {
	r.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveDecision counts a dispatch decision
func (r *Recorder) ObserveDecision(action model.DispatchAction) {
	r.decisions.WithLabelValues(action.String()).Inc()
}

// ObserveSync counts a sync run and records its duration
func (r *Recorder) ObserveSync(result *model.SyncResult) {
	if result == nil {
		return
	}
	status := string(result.Status)
	r.syncs.WithLabelValues(status).Inc()
	r.syncDuration.WithLabelValues(status).Observe(result.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
