package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records operation and handler level counters for the engine.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordHandlerAttempt(handlerName string)
	RecordHandlerSuccess(handlerName string)
	RecordHandlerFailure(handlerName string)
	RecordHandlerDuration(handlerName string, seconds float64)
}

type promMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec

	handlerAttempts  *prometheus.CounterVec
	handlerSuccesses *prometheus.CounterVec
	handlerFailures  *prometheus.CounterVec
	handlerDuration  *prometheus.HistogramVec
}

// NewMetrics registers engine metrics on the given registry.
func NewMetrics(registry *prometheus.Registry, namespace string) Metrics {
	m := &promMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Number of service operation attempts.",
		}, []string{"operation", "service"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_successes_total",
			Help:      "Number of service operations that succeeded.",
		}, []string{"operation", "service"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Number of service operations that failed.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_attempts_total",
			Help:      "Number of message handler invocations.",
		}, []string{"handler"}),
		handlerSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_successes_total",
			Help:      "Number of message handler invocations that succeeded.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Number of message handler invocations that failed.",
		}, []string{"handler"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Duration of message handler invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	registry.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.handlerAttempts,
		m.handlerSuccesses,
		m.handlerFailures,
		m.handlerDuration,
	)

	return m
}

func (m *promMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *promMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccesses.WithLabelValues(operation, service).Inc()
}

func (m *promMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(operation, service).Inc()
}

func (m *promMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *promMetrics) RecordHandlerAttempt(handlerName string) {
	m.handlerAttempts.WithLabelValues(handlerName).Inc()
}

func (m *promMetrics) RecordHandlerSuccess(handlerName string) {
	m.handlerSuccesses.WithLabelValues(handlerName).Inc()
}

func (m *promMetrics) RecordHandlerFailure(handlerName string) {
	m.handlerFailures.WithLabelValues(handlerName).Inc()
}

func (m *promMetrics) RecordHandlerDuration(handlerName string, seconds float64) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(seconds)
}

// NoopMetrics is used in tests where metric output is irrelevant.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string) {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string) {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string) {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordHandlerAttempt(string)           {}
func (NoopMetrics) RecordHandlerSuccess(string)           {}
func (NoopMetrics) RecordHandlerFailure(string)           {}
func (NoopMetrics) RecordHandlerDuration(string, float64) {}
