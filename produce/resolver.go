package produce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/aalemi-dev/kafka-rest/observability"
)

// SchemaResolver turns a request's key/value schema specification into a
// confirmed registry id, or fails with a typed error before any broker
// dispatch happens.
//
// Resolution for the key and value sides is independent; the Orchestrator
// runs both concurrently and waits for both before dispatch.
type SchemaResolver struct {
	registry Registry
	observer observability.Observer
	logger   Logger
}

// NewSchemaResolver creates a resolver backed by the given registry client.
func NewSchemaResolver(registry Registry) *SchemaResolver {
	return &SchemaResolver{registry: registry}
}

// WithObserver attaches an observer for tracking resolution operations.
// Returns the resolver for method chaining.
func (r *SchemaResolver) WithObserver(observer observability.Observer) *SchemaResolver {
	r.observer = observer
	return r
}

// WithLogger attaches a logger. Returns the resolver for method chaining.
func (r *SchemaResolver) WithLogger(logger Logger) *SchemaResolver {
	r.logger = logger
	return r
}

// Resolve resolves the schema specification for one side of the request.
//
// A nil return id means the side legitimately has no schema: schemaless
// formats, or a key side where no record in the batch carries a key. The
// missing-key-schema check is a pure validation against the batch already in
// hand and performs no network calls.
func (r *SchemaResolver) Resolve(ctx context.Context, req *ProduceRequest, side Side) (*int, error) {
	if req.Format.Schemaless() {
		return nil, nil
	}

	start := time.Now()
	id, err := r.resolve(ctx, req, side)
	r.observeOperation("resolve_schema", req.Topic, string(side), time.Since(start), err, 0)
	if err != nil {
		r.logError(ctx, "Schema resolution failed", err, map[string]interface{}{
			"topic": req.Topic,
			"side":  string(side),
		})
	}
	return id, err
}

func (r *SchemaResolver) resolve(ctx context.Context, req *ProduceRequest, side Side) (*int, error) {
	spec := req.ValueSchema
	if side == SideKey {
		spec = req.KeySchema
	}

	if spec == nil {
		if side == SideValue {
			return nil, ErrValueSchemaMissing
		}
		if batchHasKeys(req.Records) {
			return nil, ErrKeySchemaMissing
		}
		return nil, nil
	}

	if spec.ByID() {
		ok, err := r.registry.SchemaExists(ctx, spec.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to verify %s schema %d: %w", side, spec.ID(), err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s schema id %d", ErrSchemaNotFound, side, spec.ID())
		}
		id := spec.ID()
		return &id, nil
	}

	if err := validateSchemaText(req.Format, spec.Literal()); err != nil {
		return nil, &SchemaParseError{Side: side, Err: err}
	}

	id, err := r.registry.RegisterSchema(ctx, subjectName(req.Topic, side), spec.Literal(), req.Format.SchemaType())
	if err != nil {
		return nil, fmt.Errorf("failed to register %s schema: %w", side, err)
	}
	return &id, nil
}

// batchHasKeys reports whether any record in the batch carries a key.
func batchHasKeys(records []ProduceRecord) bool {
	for _, rec := range records {
		if rec.Key != nil {
			return true
		}
	}
	return false
}

// subjectName derives the registry subject for a topic side, following the
// Confluent topic-name strategy: "<topic>-key" / "<topic>-value".
func subjectName(topic string, side Side) string {
	return fmt.Sprintf("%s-%s", topic, side)
}

// validateSchemaText checks that literal schema text is well-formed for the
// request's format before it is sent to the registry.
func validateSchemaText(format Format, text string) error {
	switch format {
	case FormatAvro:
		_, err := goavro.NewCodec(text)
		return err
	case FormatJSON:
		if !json.Valid([]byte(text)) {
			return errors.New("schema text is not valid JSON")
		}
		return nil
	default:
		return nil
	}
}

func (r *SchemaResolver) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
