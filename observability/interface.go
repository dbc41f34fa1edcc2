package observability

import "time"

// Observer is a unified interface for observability across the gateway's
// infrastructure packages. It allows external code to observe operations
// happening in the pipeline (schema registry calls, broker dispatch, request
// orchestration) without coupling those packages to specific observability
// implementations (metrics, tracing, logging).
//
// This interface is optional - packages work perfectly fine without an observer.
type Observer interface {
	// ObserveOperation is called when an infrastructure operation completes.
	// It provides all context about the operation in a structured format.
	ObserveOperation(ctx OperationContext)
}

// OperationContext contains all information about an infrastructure operation.
// This struct is designed to be generic enough to work across all gateway
// packages while providing enough detail for comprehensive observability.
type OperationContext struct {
	// Component identifies which package performed the operation.
	// Examples: "schema_registry", "schema_resolver", "producer_pool", "produce"
	Component string

	// Operation describes what operation was performed.
	// Examples:
	//   Registry:  "register_schema", "schema_exists", "get_schema_by_id"
	//   Resolver:  "resolve_schema"
	//   Pool:      "produce"
	//   Pipeline:  "submit"
	Operation string

	// Resource identifies the primary resource being operated on.
	// Examples:
	//   Registry: subject name ("orders-value") or "registry" for id lookups
	//   Pool:     topic name ("orders", "user-events")
	Resource string

	// SubResource provides additional resource context (optional).
	// Examples:
	//   Registry: schema id ("42")
	//   Resolver: schema side ("key", "value")
	//   Pool:     embedded format ("avro", "json", "binary")
	SubResource string

	// Duration is how long the operation took from start to completion.
	Duration time.Duration

	// Error is the error returned by the operation, if any.
	// nil indicates successful operation.
	Error error

	// Size represents the size of data involved in the operation (optional).
	// Examples:
	//   Pool:     batch bytes dispatched
	//   Pipeline: records in the batch
	Size int64

	// Metadata provides additional operation-specific information (optional).
	// This map can contain any extra context that doesn't fit in the standard fields.
	// Examples:
	//   Registry: {"cache_hit": true, "schema_type": "AVRO"}
	//   Pool:     {"compression": "snappy"}
	Metadata map[string]interface{}
}
