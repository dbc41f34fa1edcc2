package metrics

import (
	"github.com/aalemi-dev/kafka-rest/observability"
)

// PipelineObserver implements observability.Observer on top of the
// application metrics registry. Every operation reported by the pipeline
// packages (schema registry calls, schema resolution, broker dispatch,
// request orchestration) becomes three metrics: an operation counter, a
// duration histogram, and a byte counter for operations that carry a size.
//
// Attach it wherever a package accepts an observer, or let the FX module
// wire it automatically:
//
//	observer := metrics.NewPipelineObserver(m)
//	registryClient.WithObserver(observer)
//	pool.WithObserver(observer)
type PipelineObserver struct {
	operations Counter
	duration   Histogram
	bytes      Counter
}

// NewPipelineObserver creates an observer backed by the given collector.
// Metric names are stable across components; the component and operation are
// carried as labels so one set of metrics covers the whole pipeline.
func NewPipelineObserver(m MetricsCollector) *PipelineObserver {
	return &PipelineObserver{
		operations: m.CreateCounter(
			"pipeline_operations_total",
			"Total pipeline operations by component, operation, resource, and status",
			[]string{"component", "operation", "resource", "status"},
		),
		duration: m.CreateHistogram(
			"pipeline_operation_duration_seconds",
			"Pipeline operation duration in seconds",
			[]string{"component", "operation"},
			[]float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		),
		bytes: m.CreateCounter(
			"pipeline_operation_bytes_total",
			"Total bytes handled by pipeline operations",
			[]string{"component", "operation"},
		),
	}
}

// ObserveOperation records one completed operation.
func (o *PipelineObserver) ObserveOperation(ctx observability.OperationContext) {
	status := "success"
	if ctx.Error != nil {
		status = "error"
	}

	o.operations.WithLabelValues(ctx.Component, ctx.Operation, ctx.Resource, status).Inc()
	o.duration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
	if ctx.Size > 0 {
		o.bytes.WithLabelValues(ctx.Component, ctx.Operation).Add(float64(ctx.Size))
	}
}
