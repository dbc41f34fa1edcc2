// Package observability provides a unified interface for observing operations
// across the gateway's infrastructure packages.
//
// # Overview
//
// The observability package defines a single Observer interface that every
// pipeline package can use to emit operation events. This allows applications
// to implement metrics, tracing, and logging in a consistent way across all
// infrastructure layers: schema registry calls, broker dispatch, and request
// orchestration.
//
// # Design Philosophy
//
// 1. **Optional**: pipeline packages work perfectly without an observer
// 2. **Unified**: Same interface for the registry client, the producer pool, and the orchestrator
// 3. **Flexible**: Observer can implement metrics, tracing, logging, or all three
// 4. **Generic**: OperationContext works across different operation types
// 5. **Non-intrusive**: Minimal code in pipeline packages
//
// # Usage in Pipeline Packages
//
// Packages hold an optional Observer and notify it when operations complete:
//
//	func (c *Client) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
//	    start := time.Now()
//	    id, err := c.register(ctx, subject, schema, schemaType)
//
//	    c.observeOperation("register_schema", subject, strconv.Itoa(id),
//	        time.Since(start), err, map[string]interface{}{
//	            "schema_type": schemaType,
//	        })
//	    return id, err
//	}
//
// # Usage in Applications
//
// Applications implement the Observer interface to handle operations:
//
//	type MetricsObserver struct {
//	    metrics *metrics.Metrics
//	}
//
//	func (o *MetricsObserver) ObserveOperation(ctx observability.OperationContext) {
//	    switch ctx.Component {
//	    case "schema_registry":
//	        o.metrics.RecordRegistryCall(ctx.Operation, ctx.Resource, ctx.Duration, ctx.Error)
//
//	    case "producer_pool":
//	        o.metrics.RecordDispatch(ctx.Resource, ctx.SubResource, ctx.Size, ctx.Duration, ctx.Error)
//
//	    case "produce":
//	        o.metrics.RecordSubmission(ctx.Resource, ctx.Size, ctx.Duration, ctx.Error)
//	    }
//	}
//
// # FX Integration
//
// Wire the observer through dependency injection:
//
//	fx.Provide(
//	    fx.Annotate(
//	        NewMetricsObserver,
//	        fx.As(new(observability.Observer)),
//	    ),
//	)
//
// Every pipeline package declares its observer dependency as optional, so the
// same application wiring works with or without one.
//
// # OperationContext Fields
//
// The OperationContext struct provides a flexible way to describe any operation:
//
//   - Component: Which package (schema_registry, schema_resolver, producer_pool, produce)
//   - Operation: What was done (register_schema, resolve_schema, produce, submit)
//   - Resource:  Primary resource (subject, topic)
//   - SubResource: Secondary resource (schema id, side, format)
//   - Duration:  How long it took
//   - Error:     Any error that occurred
//   - Size:      Size of data (bytes, records)
//   - Metadata:  Additional context
//
// # Examples
//
// Registry call:
//
//	OperationContext{
//	    Component:   "schema_registry",
//	    Operation:   "register_schema",
//	    Resource:    "orders-value",
//	    SubResource: "42",
//	    Duration:    18 * time.Millisecond,
//	    Metadata:    map[string]interface{}{"cache_hit": false, "schema_type": "AVRO"},
//	}
//
// Batch dispatch:
//
//	OperationContext{
//	    Component:   "producer_pool",
//	    Operation:   "produce",
//	    Resource:    "orders",
//	    SubResource: "avro",
//	    Duration:    2 * time.Millisecond,
//	    Size:        4096, // batch bytes
//	}
//
// # Performance
//
// The observer pattern adds minimal overhead:
//   - One nil check per operation
//   - One function call if observer is present
//   - No allocations if observer is nil
//
// # Thread Safety
//
// Observer implementations must be thread-safe. They will be called concurrently
// from multiple goroutines.
package observability
