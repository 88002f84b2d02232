package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type PrometheusAdapter struct {
	PipelineRuns        *prometheus.CounterVec
	BranchFailures      *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ out.MetricsPort = (*PrometheusAdapter)(nil)

func NewPrometheusAdapter(reg prometheus.Registerer) *PrometheusAdapter {
	factory := promauto.With(reg)

	return &PrometheusAdapter{
		PipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rooms_pipeline_runs_total",
				Help: "Total room aggregation runs",
			},
			[]string{"result"},
		),
		BranchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rooms_pipeline_branch_failures_total",
				Help: "Directory calls that failed without failing the run",
			},
			[]string{"stage"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rooms_pipeline_stage_duration_seconds",
				Help:    "Duration of each aggregation stage",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rooms_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rooms_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"method", "path"},
		),
	}
}

func (a *PrometheusAdapter) ObserveStage(stage out.PipelineStage, duration time.Duration) {
	a.StageDuration.WithLabelValues(string(stage)).Observe(duration.Seconds())
}

func (a *PrometheusAdapter) IncBranchFailure(stage out.PipelineStage) {
	a.BranchFailures.WithLabelValues(string(stage)).Inc()
}

func (a *PrometheusAdapter) IncPipelineRun(result string) {
	a.PipelineRuns.WithLabelValues(result).Inc()
}

func (a *PrometheusAdapter) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	a.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	a.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
