package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stxtrader_runs_total",
			Help: "Analysis runs by final status",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stxtrader_run_duration_seconds",
			Help:    "Wall time of one analysis run",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stxtrader_upstream_requests_total",
			Help: "Requests to market-data and indexer APIs by outcome",
		},
		[]string{"upstream", "outcome"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stxtrader_llm_tokens_total",
			Help: "Tokens consumed by agent runs",
		},
		[]string{"type"},
	)
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func RecordUpstream(upstream string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
}

func RecordTokens(prompt, completion int) {
	LLMTokens.WithLabelValues("prompt").Add(float64(prompt))
	LLMTokens.WithLabelValues("completion").Add(float64(completion))
}
