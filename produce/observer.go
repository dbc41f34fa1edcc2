package produce

import (
	"time"

	"github.com/aalemi-dev/kafka-rest/observability"
)

// observeOperation safely calls the resolver's observer if it's not nil.
func (r *SchemaResolver) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if r.observer != nil {
		r.observer.ObserveOperation(observability.OperationContext{
			Component:   "schema_resolver",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
		})
	}
}

// observeOperation safely calls the pool's observer if it's not nil.
func (p *ProducerPool) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if p.observer != nil {
		p.observer.ObserveOperation(observability.OperationContext{
			Component:   "producer_pool",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
		})
	}
}

// observeOperation safely calls the orchestrator's observer if it's not nil.
func (o *Orchestrator) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	if o.observer != nil {
		o.observer.ObserveOperation(observability.OperationContext{
			Component: "produce",
			Operation: operation,
			Resource:  resource,
			Duration:  duration,
			Error:     err,
			Size:      size,
		})
	}
}
