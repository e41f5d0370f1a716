// Package metrics records reclamation sessions as Prometheus metrics.
//
// A reclaim run is a short-lived batch job, so nothing is served over HTTP:
// the collectors are written once to a node_exporter textfile at the end of a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

const namespace = "reclaim"

// Recorder implements domain.Recorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	OutcomesTotal          *prometheus.CounterVec
	AttemptsTotal          *prometheus.CounterVec
	AttemptDuration        *prometheus.HistogramVec
	ProcessesTerminated    *prometheus.CounterVec
	TerminationErrors      prometheus.Counter
	StaleTombstonesRemoved prometheus.Counter
	SessionDuration        prometheus.Gauge
	SessionTargets         *prometheus.GaugeVec
	LastSessionTimestamp   prometheus.Gauge
}

// NewRecorder creates and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Targets by final outcome status.",
		}, []string{"status"}),
		AttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Removal attempts by strategy and result.",
		}, []string{"strategy", "result"}),
		AttemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_duration_seconds",
			Help:      "Duration of removal attempts by strategy.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"strategy"}),
		ProcessesTerminated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processes_terminated_total",
			Help:      "Processes killed before reclamation, by signature.",
		}, []string{"signature"}),
		TerminationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "termination_errors_total",
			Help:      "Signatures whose termination reported an error.",
		}),
		StaleTombstonesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_tombstones_removed_total",
			Help:      "Renamed leftovers of earlier runs removed by the sweep.",
		}),
		SessionDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall time of the last session.",
		}),
		SessionTargets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_targets",
			Help:      "Targets of the last session by status.",
		}, []string{"status"}),
		LastSessionTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_session_timestamp_seconds",
			Help:      "Unix time the last session finished.",
		}),
	}

	r.registry = prometheus.NewRegistry()
	r.registry.MustRegister(
		r.OutcomesTotal,
		r.AttemptsTotal,
		r.AttemptDuration,
		r.ProcessesTerminated,
		r.TerminationErrors,
		r.StaleTombstonesRemoved,
		r.SessionDuration,
		r.SessionTargets,
		r.LastSessionTimestamp,
	)
	return r
}

// Registry returns the registry holding every collector.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveAttempt(a domain.RemovalAttempt) {
	result := "success"
	if !a.Success {
		result = "failure"
	}
	r.AttemptsTotal.WithLabelValues(a.Strategy.String(), result).Inc()
	r.AttemptDuration.WithLabelValues(a.Strategy.String()).Observe(a.Duration.Seconds())
}

func (r *Recorder) ObserveOutcome(o domain.ReclamationOutcome) {
	r.OutcomesTotal.WithLabelValues(string(o.Status)).Inc()
	r.StaleTombstonesRemoved.Add(float64(len(o.StaleRemoved)))
}

func (r *Recorder) ObserveTermination(t domain.TerminationResult) {
	if len(t.PIDs) > 0 {
		r.ProcessesTerminated.WithLabelValues(t.Signature.Name).Add(float64(len(t.PIDs)))
	}
	if t.Err != nil {
		r.TerminationErrors.Inc()
	}
}

func (r *Recorder) ObserveSession(s domain.SessionReport) {
	r.SessionDuration.Set(s.Duration.Seconds())
	for _, status := range []domain.OutcomeStatus{domain.StatusRemoved, domain.StatusDeferredRemoved, domain.StatusFailed} {
		r.SessionTargets.WithLabelValues(string(status)).Set(float64(s.Count(status)))
	}
	r.LastSessionTimestamp.Set(float64(s.StartedAt.Add(s.Duration).Unix()))
}

// WriteTextfile writes every collector to path in the text exposition format.
// The write goes through a temp file and rename, so readers never see a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Ensure Recorder implements domain.Recorder.
var _ domain.Recorder = (*Recorder)(nil)
