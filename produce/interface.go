package produce

import (
	"context"
)

// Registry is the subset of the schema registry client consumed by the
// Schema Resolver. It is implemented by *schema_registry.Client.
type Registry interface {
	// RegisterSchema registers schema text under a subject and returns its id.
	// Registration is idempotent: identical text for the same subject yields
	// the existing id.
	RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error)

	// SchemaExists reports whether a schema id is known to the registry.
	SchemaExists(ctx context.Context, id int) (bool, error)
}

// Producer is the dispatch substrate consumed by the Orchestrator. It is
// implemented by *ProducerPool.
type Producer interface {
	// Produce submits an ordered batch asynchronously. done is invoked exactly
	// once, from a pool-internal goroutine, after every record has settled.
	Produce(topic string, partitionOverride *int32, format Format, records []ProduceRecord, done BatchDone) error
}

// Logger is an interface that matches the logger.Logger context-aware subset.
// Components in this package hold an optional Logger and stay silent when
// none is configured.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
