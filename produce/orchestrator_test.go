package produce

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/kafka-rest/schema_registry"
)

// ── test helpers ──────────────────────────────────────────────────────────────

// fakeDispatcher captures what the orchestrator hands to the pool and settles
// batches with a scripted outcome per record.
type fakeDispatcher struct {
	topic    string
	override *int32
	format   Format
	records  []ProduceRecord
	calls    int

	// script produces the outcome for record i. Defaults to sequential
	// offsets on partition 0.
	script func(i int) RecordOutcome

	// hold suppresses the done callback entirely
	hold bool

	err error
}

func (f *fakeDispatcher) Produce(topic string, override *int32, format Format, records []ProduceRecord, done BatchDone) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.override = override
	f.format = format
	f.records = records

	if f.hold {
		return nil
	}

	outcomes := make([]RecordOutcome, len(records))
	for i := range records {
		if f.script != nil {
			outcomes[i] = f.script(i)
			continue
		}
		outcomes[i] = RecordOutcome{Partition: 0, Offset: int64(i), Timestamp: time.Now()}
	}
	go done(outcomes)
	return nil
}

func newTestOrchestrator(registry Registry, pool Producer) *Orchestrator {
	return NewOrchestrator(NewSchemaResolver(registry), pool)
}

// ── end-to-end submission ─────────────────────────────────────────────────────

func TestSubmit_AvroBatchWithKeyAndValueSchemas(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	registry.fixedIDs = map[string]int{"orders-key": 1, "orders-value": 2}
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(registry, dispatcher)

	resp, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		KeySchema:   LiteralSchema(avroStringSchema),
		ValueSchema: LiteralSchema(`{"type":"record","name":"Order","fields":[{"name":"id","type":"string"}]}`),
		Records: []ProduceRecord{
			{Key: []byte(`"k1"`), Value: []byte(`{"id":"1"}`)},
			{Key: []byte(`"k2"`), Value: []byte(`{"id":"2"}`)},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.KeySchemaID)
	require.NotNil(t, resp.ValueSchemaID)
	assert.Equal(t, 1, *resp.KeySchemaID)
	assert.Equal(t, 2, *resp.ValueSchemaID)

	require.Len(t, resp.Offsets, 2)
	assert.Equal(t, PartitionOffset{Partition: 0, Offset: 0}, resp.Offsets[0])
	assert.Equal(t, PartitionOffset{Partition: 0, Offset: 1}, resp.Offsets[1])

	assert.Equal(t, "orders", dispatcher.topic)
	assert.Equal(t, FormatAvro, dispatcher.format)
}

func TestSubmit_FramesPayloadsWithWireFormat(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	registry.fixedIDs = map[string]int{"orders-key": 1, "orders-value": 2}
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(registry, dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		KeySchema:   LiteralSchema(avroStringSchema),
		ValueSchema: LiteralSchema(`"bytes"`),
		Records: []ProduceRecord{
			{Key: []byte("key-payload"), Value: []byte("value-payload")},
			{Value: []byte("unkeyed-payload")},
		},
	})
	require.NoError(t, err)
	require.Len(t, dispatcher.records, 2)

	keyID, _, err := schema_registry.DecodeSchemaID(dispatcher.records[0].Key)
	require.NoError(t, err)
	assert.Equal(t, 1, keyID)

	valueID, payload, err := schema_registry.DecodeSchemaID(dispatcher.records[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 2, valueID)
	assert.Equal(t, []byte("value-payload"), payload)

	assert.Nil(t, dispatcher.records[1].Key, "unkeyed records stay unkeyed")
	_, payload, err = schema_registry.DecodeSchemaID(dispatcher.records[1].Value)
	require.NoError(t, err)
	assert.Equal(t, []byte("unkeyed-payload"), payload)
}

func TestSubmit_BinaryPassesPayloadsThrough(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(registry, dispatcher)

	resp, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:  "orders",
		Format: FormatBinary,
		Records: []ProduceRecord{
			{Key: []byte("raw-key"), Value: []byte("raw-value")},
		},
	})
	require.NoError(t, err)

	assert.Nil(t, resp.KeySchemaID)
	assert.Nil(t, resp.ValueSchemaID)
	assert.Zero(t, registry.calls)
	require.Len(t, dispatcher.records, 1)
	assert.Equal(t, []byte("raw-key"), dispatcher.records[0].Key)
	assert.Equal(t, []byte("raw-value"), dispatcher.records[0].Value)
}

func TestSubmit_ValueSchemaByID(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	registry.known[7] = true
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(registry, dispatcher)

	resp, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		ValueSchema: SchemaByID(7),
		Records:     []ProduceRecord{{Value: []byte("v")}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ValueSchemaID)
	assert.Equal(t, 7, *resp.ValueSchemaID)
}

func TestSubmit_PartitionOverrideReachesPool(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	override := int32(3)
	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:             "orders",
		Format:            FormatBinary,
		PartitionOverride: &override,
		Records:           []ProduceRecord{{Value: []byte("v")}},
	})
	require.NoError(t, err)
	require.NotNil(t, dispatcher.override)
	assert.Equal(t, int32(3), *dispatcher.override)
}

// ── validation rejects before dispatch ────────────────────────────────────────

func TestSubmit_EmptyBatch(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:  "orders",
		Format: FormatBinary,
	})
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Zero(t, dispatcher.calls)
}

func TestSubmit_RecordMissingValue(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:  "orders",
		Format: FormatBinary,
		Records: []ProduceRecord{
			{Value: []byte("ok")},
			{Key: []byte("k")},
		},
	})
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.ErrorContains(t, err, "record 1")
	assert.Zero(t, dispatcher.calls)
}

func TestSubmit_MissingTopic(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Format:  FormatBinary,
		Records: []ProduceRecord{{Value: []byte("v")}},
	})
	assert.Error(t, err)
	assert.Zero(t, dispatcher.calls)
}

func TestSubmit_KeyedBatchWithoutKeySchema(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		ValueSchema: LiteralSchema(avroStringSchema),
		Records:     []ProduceRecord{{Key: []byte("k"), Value: []byte("v")}},
	})
	assert.ErrorIs(t, err, ErrKeySchemaMissing)
	assert.Zero(t, dispatcher.calls, "schema failures must reject before dispatch")
}

func TestSubmit_UnknownSchemaID(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		ValueSchema: SchemaByID(404),
		Records:     []ProduceRecord{{Value: []byte("v")}},
	})
	assert.ErrorIs(t, err, ErrSchemaNotFound)
	assert.Zero(t, dispatcher.calls)
}

// ── in-band per-record failures ───────────────────────────────────────────────

func TestSubmit_BrokerFailuresReportedInBand(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{
		script: func(i int) RecordOutcome {
			if i == 1 {
				return RecordOutcome{Partition: -1, Offset: -1, Err: sarama.ErrNotEnoughReplicas}
			}
			return RecordOutcome{Partition: 0, Offset: int64(i)}
		},
	}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	resp, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:  "orders",
		Format: FormatBinary,
		Records: []ProduceRecord{
			{Value: []byte("a")},
			{Value: []byte("b")},
			{Value: []byte("c")},
		},
	})
	require.NoError(t, err, "per-record broker failures are not call failures")
	require.Len(t, resp.Offsets, 3)

	failed := resp.Offsets[1]
	assert.Equal(t, int32(-1), failed.Partition)
	assert.Equal(t, int64(-1), failed.Offset)
	require.NotNil(t, failed.ErrorCode)
	assert.Equal(t, CodeBrokerRetriableError, *failed.ErrorCode)
	require.NotNil(t, failed.ErrorMessage)

	assert.Nil(t, resp.Offsets[0].ErrorCode)
	assert.Nil(t, resp.Offsets[2].ErrorCode)
}

func TestSubmit_AllRecordsFailedStillSucceeds(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{
		script: func(int) RecordOutcome {
			return RecordOutcome{Partition: -1, Offset: -1, Err: sarama.ErrInvalidPartitions}
		},
	}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	resp, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:   "orders",
		Format:  FormatBinary,
		Records: []ProduceRecord{{Value: []byte("a")}, {Value: []byte("b")}},
	})
	require.NoError(t, err)
	for _, entry := range resp.Offsets {
		require.NotNil(t, entry.ErrorCode)
		assert.Equal(t, CodeBrokerError, *entry.ErrorCode)
	}
}

// ── pool rejection and cancellation ───────────────────────────────────────────

func TestSubmit_PoolShutdown(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{err: ErrPoolShutdown}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	_, err := orch.Submit(context.Background(), &ProduceRequest{
		Topic:   "orders",
		Format:  FormatBinary,
		Records: []ProduceRecord{{Value: []byte("v")}},
	})
	assert.ErrorIs(t, err, ErrPoolShutdown)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestSubmit_ContextCancelledWhileInFlight(t *testing.T) {
	t.Parallel()
	dispatcher := &fakeDispatcher{hold: true}
	orch := newTestOrchestrator(newFakeRegistry(), dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := orch.Submit(ctx, &ProduceRequest{
		Topic:   "orders",
		Format:  FormatBinary,
		Records: []ProduceRecord{{Value: []byte("v")}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, http.StatusRequestTimeout, HTTPStatus(err))
}
