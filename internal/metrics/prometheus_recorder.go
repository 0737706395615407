package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	runDuration   *prom.HistogramVec
	stageResults  *prom.CounterVec
	runOutcomes   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on
// reg (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "relkit",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.runDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "relkit",
		Name:      "run_duration_seconds",
		Help:      "Total pipeline run duration by target",
		Buckets:   prom.DefBuckets,
	}, []string{"target"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "relkit",
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.runOutcomes = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "relkit",
		Name:      "run_outcomes_total",
		Help:      "Pipeline run outcomes by target and final status",
	}, []string{"target", "outcome"})

	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcomes)
	return pr
}

// Registry exposes the backing registry for HTTP handlers.
func (pr *PrometheusRecorder) Registry() *prom.Registry { return pr.registry }

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveRunDuration(target string, d time.Duration) {
	pr.runDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	pr.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncRunOutcome(target, outcome string) {
	pr.runOutcomes.WithLabelValues(target, outcome).Inc()
}
