package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeLocalFailure = "local_failure"
	OutcomeInvalid      = "invalid"
)

// PipelineMetrics counts crop, submit and delete operations by entity kind and outcome.
type PipelineMetrics struct {
	submissions *prometheus.CounterVec
	deletes     *prometheus.CounterVec
	crops       *prometheus.CounterVec
	remote      *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jewelry_submissions_total",
		Help: "Draft submissions by entity kind and outcome.",
	}, []string{"kind", "outcome"})
	deletes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jewelry_deletes_total",
		Help: "Entity deletions by entity kind and remote outcome.",
	}, []string{"kind", "outcome"})
	crops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jewelry_crops_total",
		Help: "Crop saves by entity kind and outcome.",
	}, []string{"kind", "outcome"})
	remote := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jewelry_remote_call_duration_seconds",
		Help:    "Latency of calls to the shop backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(submissions, deletes, crops, remote)
	return &PipelineMetrics{
		submissions: submissions,
		deletes:     deletes,
		crops:       crops,
		remote:      remote,
	}
}

func (m *PipelineMetrics) IncSubmission(kind, outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func (m *PipelineMetrics) IncDelete(kind, outcome string) {
	if m == nil || m.deletes == nil {
		return
	}
	m.deletes.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func (m *PipelineMetrics) IncCrop(kind, outcome string) {
	if m == nil || m.crops == nil {
		return
	}
	m.crops.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveRemote records how long a remote operation took.
func (m *PipelineMetrics) ObserveRemote(operation string, duration time.Duration) {
	if m == nil || m.remote == nil {
		return
	}
	m.remote.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}
