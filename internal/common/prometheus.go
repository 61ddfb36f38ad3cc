package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal            = "http_requests_total"
	HTTPRequestDurationSeconds  = "http_request_duration_seconds"
	QuestSubmissionTotal        = "quest_submissions_total"
	SubmissionSideEffectFailure = "submission_side_effect_failure_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		QuestSubmissionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QuestSubmissionTotal,
			Help: "Count of quest submissions by result",
		}, []string{"result"}),
		SubmissionSideEffectFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SubmissionSideEffectFailure,
			Help: "Count of post-commit steps of a submission which failed",
		}, []string{"step"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)

// RegisterMetrics registers every collector to the given registerer.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range PromCounters {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	for _, h := range PromHistograms {
		if err := reg.Register(h); err != nil {
			return err
		}
	}

	return nil
}
