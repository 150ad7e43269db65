package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records request, stock mutation and suggestion proxy outcomes.
type APIMetrics struct {
	requestDuration *prometheus.HistogramVec
	stockMutations  *prometheus.CounterVec
	suggestionCalls *prometheus.CounterVec
}

// NewAPIMetrics registers the API metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
	stockMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_total",
		Help: "Stock mutation attempts by change type and outcome.",
	}, []string{"change_type", "outcome"})
	suggestionCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drinking_window_suggestions_total",
		Help: "Drinking window provider calls by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(requestDuration, stockMutations, suggestionCalls)
	return &APIMetrics{
		requestDuration: requestDuration,
		stockMutations:  stockMutations,
		suggestionCalls: suggestionCalls,
	}
}

// ObserveRequest records the duration of one handled request.
func (m *APIMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(method), strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncStockMutation counts one mutation attempt.
func (m *APIMetrics) IncStockMutation(changeType, outcome string) {
	if m == nil || m.stockMutations == nil {
		return
	}
	m.stockMutations.WithLabelValues(normalizeLabel(changeType), normalizeLabel(outcome)).Inc()
}

// IncSuggestionCall counts one provider call.
func (m *APIMetrics) IncSuggestionCall(outcome string) {
	if m == nil || m.suggestionCalls == nil {
		return
	}
	m.suggestionCalls.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
