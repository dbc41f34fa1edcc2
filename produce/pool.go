package produce

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/aalemi-dev/kafka-rest/observability"
)

// BatchDone receives the per-record outcomes of one batch, positionally
// aligned with the submitted records. It is invoked exactly once per batch,
// from a pool-internal goroutine, after every record has settled.
type BatchDone func(outcomes []RecordOutcome)

// ProducerPool owns one long-lived broker producer per embedded format and
// multiplexes concurrent produce batches onto them. Producer handles are
// expensive to create (connection and metadata setup), so they are built
// lazily on first use and reused for the process lifetime.
//
// The pool is the only long-lived shared mutable state in the produce
// pipeline. Handles are never exposed to callers; all access goes through
// Produce, and synchronization is internal.
type ProducerPool struct {
	cfg      PoolConfig
	observer observability.Observer
	logger   Logger

	// mu protects producers and closed
	mu        sync.Mutex
	producers map[Format]*producerHandle
	closed    bool

	// dispatchMu is held for reading while a batch is being enqueued and for
	// writing by Shutdown, so producers are never closed mid-dispatch.
	dispatchMu sync.RWMutex

	// collectors tracks the acknowledgement collector goroutines
	collectors sync.WaitGroup

	// newProducer creates the broker producer for a format. Tests override
	// this to inject a fake producer.
	newProducer func(format Format) (sarama.AsyncProducer, error)
}

// NewProducerPool creates a pool for the given broker configuration. No
// broker connection is opened until the first batch for a format arrives.
func NewProducerPool(cfg PoolConfig) (*ProducerPool, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	saramaCfg, err := cfg.saramaConfig()
	if err != nil {
		return nil, err
	}

	p := &ProducerPool{
		cfg:       cfg,
		producers: make(map[Format]*producerHandle),
	}
	p.newProducer = func(Format) (sarama.AsyncProducer, error) {
		return sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	}
	return p, nil
}

// WithObserver attaches an observer to the pool for tracking operations.
// Returns the pool for method chaining.
func (p *ProducerPool) WithObserver(observer observability.Observer) *ProducerPool {
	p.observer = observer
	return p
}

// WithLogger attaches a logger to the pool for lifecycle and background
// operation logging. Returns the pool for method chaining.
func (p *ProducerPool) WithLogger(logger Logger) *ProducerPool {
	p.logger = logger
	return p
}

// producerHandle is the per-format producer plus its collector bookkeeping.
type producerHandle struct {
	format   Format
	producer sarama.AsyncProducer
}

// recordTag travels on each ProducerMessage's metadata and routes the
// acknowledgement back to its batch slot.
type recordTag struct {
	batch *batchState
	index int

	// partition is the pinned partition, or -1 for broker-side assignment
	partition int32
}

// batchState buffers outcomes for one batch until every record has settled.
// Broker acknowledgements complete out of order and on different goroutines;
// outcomes land in submission-order slots and done fires only once the last
// slot is filled.
type batchState struct {
	mu        sync.Mutex
	outcomes  []RecordOutcome
	remaining int
	done      BatchDone
}

func (b *batchState) settle(index int, outcome RecordOutcome) {
	b.mu.Lock()
	b.outcomes[index] = outcome
	b.remaining--
	fire := b.remaining == 0
	b.mu.Unlock()

	if fire {
		b.done(b.outcomes)
	}
}

// Produce submits an ordered batch of records for the given topic and format.
//
// Submission is asynchronous: Produce returns once every record is enqueued
// on the producer's outbound buffer, and done is invoked exactly once, from a
// pool-internal goroutine, after all records have either succeeded or failed.
// A single record's broker failure does not abort its siblings.
//
// When the outbound buffer is full, enqueueing blocks rather than dropping
// records; this is the pool's admission control. Produce fails only with
// ErrPoolShutdown once Shutdown has begun.
func (p *ProducerPool) Produce(topic string, partitionOverride *int32, format Format, records []ProduceRecord, done BatchDone) error {
	start := time.Now()

	p.dispatchMu.RLock()
	defer p.dispatchMu.RUnlock()

	handle, err := p.handle(format)
	if err != nil {
		p.observeOperation("produce", topic, string(format), time.Since(start), err, 0)
		return err
	}

	batch := &batchState{
		outcomes:  make([]RecordOutcome, len(records)),
		remaining: len(records),
		done:      done,
	}

	var batchBytes int64
	for i, rec := range records {
		msg := &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(rec.Value),
			Metadata: &recordTag{
				batch:     batch,
				index:     i,
				partition: pinnedPartition(rec.Partition, partitionOverride),
			},
		}
		if rec.Key != nil {
			msg.Key = sarama.ByteEncoder(rec.Key)
		}
		batchBytes += int64(len(rec.Key) + len(rec.Value))

		handle.producer.Input() <- msg
	}

	p.observeOperation("produce", topic, string(format), time.Since(start), nil, batchBytes)
	return nil
}

// pinnedPartition resolves the partition precedence for one record:
// record-level partition, then request-level override, then -1 for
// broker-side assignment.
func pinnedPartition(record, override *int32) int32 {
	if record != nil {
		return *record
	}
	if override != nil {
		return *override
	}
	return -1
}

// handle returns the producer for a format, creating it on first use.
func (p *ProducerPool) handle(format Format) (*producerHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolShutdown
	}
	if h, ok := p.producers[format]; ok {
		return h, nil
	}

	producer, err := p.newProducer(format)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s producer: %w", format, err)
	}

	h := &producerHandle{format: format, producer: producer}
	p.producers[format] = h
	p.collect(h)

	p.logInfo(context.Background(), "Created producer for format", map[string]interface{}{
		"format": string(format),
	})
	return h, nil
}

// collect starts the acknowledgement collectors for a handle. Successes and
// errors arrive on separate channels; both route outcomes back through the
// record's batch slot. The collectors exit when the producer's channels close
// during shutdown.
func (p *ProducerPool) collect(h *producerHandle) {
	p.collectors.Add(2)

	go func() {
		defer p.collectors.Done()
		for msg := range h.producer.Successes() {
			tag, ok := msg.Metadata.(*recordTag)
			if !ok {
				continue
			}
			tag.batch.settle(tag.index, RecordOutcome{
				Partition: msg.Partition,
				Offset:    msg.Offset,
				Timestamp: msg.Timestamp,
			})
		}
	}()

	go func() {
		defer p.collectors.Done()
		for perr := range h.producer.Errors() {
			tag, ok := perr.Msg.Metadata.(*recordTag)
			if !ok {
				continue
			}
			p.logError(context.Background(), "Record delivery failed", map[string]interface{}{
				"topic": perr.Msg.Topic,
				"error": perr.Err.Error(),
			})
			tag.batch.settle(tag.index, RecordOutcome{
				Partition: -1,
				Offset:    -1,
				Err:       perr.Err,
			})
		}
	}()
}

// Shutdown flushes and closes every producer handle, then waits for the
// collectors to drain. Batches already submitted settle normally; new
// Produce calls fail with ErrPoolShutdown. Safe to call more than once.
func (p *ProducerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	handles := make([]*producerHandle, 0, len(p.producers))
	for _, h := range p.producers {
		handles = append(handles, h)
	}
	p.mu.Unlock()

	// wait for in-flight dispatches before closing producer inputs
	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()

	p.logInfo(context.Background(), "Shutting down producer pool", map[string]interface{}{
		"producers": len(handles),
	})

	for _, h := range handles {
		if err := h.producer.Close(); err != nil {
			p.logWarn(context.Background(), "Failed to close producer", map[string]interface{}{
				"format": string(h.format),
				"error":  err.Error(),
			})
		}
	}

	p.collectors.Wait()
}

// logInfo logs an informational message using the configured logger if available.
func (p *ProducerPool) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logWarn logs a warning message using the configured logger if available.
func (p *ProducerPool) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.WarnWithContext(ctx, msg, nil, fields)
	}
}

// logError logs an error message using the configured logger if available.
func (p *ProducerPool) logError(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.ErrorWithContext(ctx, msg, nil, fields)
	}
}
