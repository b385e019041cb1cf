package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quizdeck/backend/internal/quiz"
)

// Metrics groups the quizdeck collectors.
type Metrics struct {
	QuestionsParsed prometheus.Counter
	BlocksDropped   *prometheus.CounterVec
	Submissions     *prometheus.CounterVec
	Generations     *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuestionsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizdeck",
			Name:      "questions_parsed_total",
			Help:      "Questions kept by the parser.",
		}),
		BlocksDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizdeck",
			Name:      "blocks_dropped_total",
			Help:      "Question blocks discarded by the parser, by reason.",
		}, []string{"reason"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizdeck",
			Name:      "submissions_total",
			Help:      "Graded submissions, by outcome status.",
		}, []string{"status"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizdeck",
			Name:      "generations_total",
			Help:      "Quiz generation requests, by result.",
		}, []string{"result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizdeck",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quizdeck",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.QuestionsParsed, m.BlocksDropped, m.Submissions, m.Generations, m.Requests, m.RequestDuration)
	return m
}

// ObserveParse records the outcome of one parse pass.
func (m *Metrics) ObserveParse(stats quiz.ParseStats) {
	m.QuestionsParsed.Add(float64(stats.Kept))
	m.BlocksDropped.WithLabelValues("short").Add(float64(stats.DroppedShort))
	m.BlocksDropped.WithLabelValues("no_choices").Add(float64(stats.DroppedNoChoices))
	m.BlocksDropped.WithLabelValues("duplicate").Add(float64(stats.DroppedDuplicate))
}
