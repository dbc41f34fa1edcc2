package produce

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aalemi-dev/kafka-rest/observability"
	"github.com/aalemi-dev/kafka-rest/schema_registry"
	"github.com/aalemi-dev/kafka-rest/tracer"
)

// Orchestrator runs the produce pipeline for one request: validate the batch,
// resolve key and value schemas concurrently, frame payloads with the wire
// format, dispatch to the Producer Pool, and aggregate per-record outcomes
// into a response.
//
// The orchestrator holds no per-request state; a single instance serves all
// concurrent requests.
type Orchestrator struct {
	resolver *SchemaResolver
	pool     Producer
	observer observability.Observer
	logger   Logger
	tracer   tracer.Tracer
}

// NewOrchestrator creates an orchestrator over the given resolver and pool.
func NewOrchestrator(resolver *SchemaResolver, pool Producer) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		pool:     pool,
	}
}

// WithObserver attaches an observer for tracking produce calls.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithObserver(observer observability.Observer) *Orchestrator {
	o.observer = observer
	return o
}

// WithLogger attaches a logger. Returns the orchestrator for method chaining.
func (o *Orchestrator) WithLogger(logger Logger) *Orchestrator {
	o.logger = logger
	return o
}

// WithTracer attaches a tracer so each produce call runs under its own span.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithTracer(t tracer.Tracer) *Orchestrator {
	o.tracer = t
	return o
}

// Submit runs one produce request through the pipeline and blocks until every
// record has settled or ctx is done.
//
// A non-nil error means the call failed as a whole and nothing was dispatched
// (validation, schema resolution, or pool rejection), except for context
// cancellation, which abandons a batch already in flight. Broker failures of
// individual records are not call errors: they are reported in-band in the
// response entry for that record, and the call itself succeeds even when
// every record failed.
func (o *Orchestrator) Submit(ctx context.Context, req *ProduceRequest) (*ProduceResponse, error) {
	start := time.Now()

	var span tracer.Span
	if o.tracer != nil {
		ctx, span = o.tracer.StartSpan(ctx, "produce.submit")
		defer span.End()
		span.SetAttributes(map[string]interface{}{
			"messaging.destination": req.Topic,
			"messaging.format":      string(req.Format),
			"messaging.batch_size":  len(req.Records),
		})
	}

	resp, err := o.submit(ctx, req)
	if span != nil && err != nil {
		span.RecordError(err)
	}
	o.observeOperation("submit", req.Topic, time.Since(start), err, int64(len(req.Records)))
	if err != nil {
		o.logError(ctx, "Produce request failed", err, map[string]interface{}{
			"topic":   req.Topic,
			"format":  string(req.Format),
			"records": len(req.Records),
		})
	}
	return resp, err
}

func (o *Orchestrator) submit(ctx context.Context, req *ProduceRequest) (*ProduceResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	keyID, valueID, err := o.resolveSchemas(ctx, req)
	if err != nil {
		return nil, err
	}

	records := frameRecords(req.Records, keyID, valueID)

	// buffered so the pool's callback never blocks if the call was abandoned
	done := make(chan []RecordOutcome, 1)
	err = o.pool.Produce(req.Topic, req.PartitionOverride, req.Format, records, func(outcomes []RecordOutcome) {
		done <- outcomes
	})
	if err != nil {
		return nil, err
	}

	select {
	case outcomes := <-done:
		return buildResponse(outcomes, keyID, valueID), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolveSchemas resolves the key and value sides concurrently and waits for
// both. Either side's failure fails the call before any dispatch.
func (o *Orchestrator) resolveSchemas(ctx context.Context, req *ProduceRequest) (keyID, valueID *int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rerr error
		keyID, rerr = o.resolver.Resolve(gctx, req, SideKey)
		return rerr
	})
	g.Go(func() error {
		var rerr error
		valueID, rerr = o.resolver.Resolve(gctx, req, SideValue)
		return rerr
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return keyID, valueID, nil
}

// frameRecords prefixes each payload with the Confluent wire-format header
// for its resolved schema id. Sides without a schema id pass through
// untouched, so binary batches come back unchanged.
func frameRecords(records []ProduceRecord, keyID, valueID *int) []ProduceRecord {
	if keyID == nil && valueID == nil {
		return records
	}

	framed := make([]ProduceRecord, len(records))
	for i, rec := range records {
		framed[i] = rec
		if keyID != nil && rec.Key != nil {
			framed[i].Key = frame(*keyID, rec.Key)
		}
		if valueID != nil {
			framed[i].Value = frame(*valueID, rec.Value)
		}
	}
	return framed
}

func frame(schemaID int, payload []byte) []byte {
	header := schema_registry.EncodeSchemaID(schemaID)
	return append(header, payload...)
}

// validateRequest checks the batch shape before any network work happens.
func validateRequest(req *ProduceRequest) error {
	if req.Topic == "" {
		return fmt.Errorf("produce request is missing its topic")
	}
	if len(req.Records) == 0 {
		return ErrEmptyBatch
	}
	for i, rec := range req.Records {
		if rec.Value == nil {
			return fmt.Errorf("%w: record %d", ErrMissingValue, i)
		}
	}
	return nil
}

func (o *Orchestrator) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
