package produce

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── test helpers ──────────────────────────────────────────────────────────────

// fakeRegistry hands out ids per subject and remembers what was registered.
// Identical schema text for a subject yields the same id, mirroring the real
// registry's idempotent registration.
type fakeRegistry struct {
	mu         sync.Mutex
	nextID     int
	registered map[string]int // "subject|schema" -> id
	known      map[int]bool
	types      map[string]string // subject -> schemaType

	// fixedIDs pins the id handed out per subject, so tests stay
	// deterministic when key and value sides register concurrently
	fixedIDs map[string]int

	registerErr error
	existsErr   error
	calls       int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		nextID:     1,
		registered: make(map[string]int),
		known:      make(map[int]bool),
		types:      make(map[string]string),
	}
}

func (f *fakeRegistry) RegisterSchema(_ context.Context, subject, schema, schemaType string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.registerErr != nil {
		return 0, f.registerErr
	}
	key := subject + "|" + schema
	if id, ok := f.registered[key]; ok {
		return id, nil
	}
	id, ok := f.fixedIDs[subject]
	if !ok {
		id = f.nextID
		f.nextID++
	}
	f.registered[key] = id
	f.known[id] = true
	f.types[subject] = schemaType
	return id, nil
}

func (f *fakeRegistry) SchemaExists(_ context.Context, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.known[id], nil
}

const avroStringSchema = `"string"`

func avroRequest(records []ProduceRecord) *ProduceRequest {
	return &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		Records:     records,
		ValueSchema: LiteralSchema(avroStringSchema),
	}
}

// ── schemaless formats ────────────────────────────────────────────────────────

func TestResolve_BinarySkipsRegistry(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	resolver := NewSchemaResolver(registry)

	req := &ProduceRequest{
		Topic:   "orders",
		Format:  FormatBinary,
		Records: []ProduceRecord{{Key: []byte("k"), Value: []byte("v")}},
	}

	for _, side := range []Side{SideKey, SideValue} {
		id, err := resolver.Resolve(context.Background(), req, side)
		require.NoError(t, err)
		assert.Nil(t, id)
	}
	assert.Zero(t, registry.calls, "schemaless resolution must not touch the registry")
}

// ── missing schema specifications ─────────────────────────────────────────────

func TestResolve_MissingValueSchema(t *testing.T) {
	t.Parallel()
	resolver := NewSchemaResolver(newFakeRegistry())

	req := &ProduceRequest{
		Topic:   "orders",
		Format:  FormatAvro,
		Records: []ProduceRecord{{Value: []byte("v")}},
	}

	_, err := resolver.Resolve(context.Background(), req, SideValue)
	assert.ErrorIs(t, err, ErrValueSchemaMissing)
}

func TestResolve_MissingKeySchema_KeyedBatch(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	resolver := NewSchemaResolver(registry)

	req := avroRequest([]ProduceRecord{
		{Value: []byte("v1")},
		{Key: []byte("k"), Value: []byte("v2")},
	})

	_, err := resolver.Resolve(context.Background(), req, SideKey)
	assert.ErrorIs(t, err, ErrKeySchemaMissing)
	assert.Zero(t, registry.calls, "the keyed-batch check is pure")
}

func TestResolve_MissingKeySchema_UnkeyedBatch(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	resolver := NewSchemaResolver(registry)

	req := avroRequest([]ProduceRecord{
		{Value: []byte("v1")},
		{Value: []byte("v2")},
	})

	id, err := resolver.Resolve(context.Background(), req, SideKey)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Zero(t, registry.calls)
}

// ── literal schema registration ───────────────────────────────────────────────

func TestResolve_RegistersLiteralUnderTopicSubject(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	resolver := NewSchemaResolver(registry)

	req := avroRequest([]ProduceRecord{{Value: []byte("v")}})
	req.KeySchema = LiteralSchema(avroStringSchema)
	req.Records[0].Key = []byte("k")

	valueID, err := resolver.Resolve(context.Background(), req, SideValue)
	require.NoError(t, err)
	require.NotNil(t, valueID)

	keyID, err := resolver.Resolve(context.Background(), req, SideKey)
	require.NoError(t, err)
	require.NotNil(t, keyID)

	assert.Contains(t, registry.registered, "orders-value|"+avroStringSchema)
	assert.Contains(t, registry.registered, "orders-key|"+avroStringSchema)
	assert.Equal(t, "AVRO", registry.types["orders-value"])
}

func TestResolve_RepeatedLiteralYieldsSameID(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	resolver := NewSchemaResolver(registry)

	req := avroRequest([]ProduceRecord{{Value: []byte("v")}})

	first, err := resolver.Resolve(context.Background(), req, SideValue)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), req, SideValue)
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
}

func TestResolve_InvalidAvroSchema(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	resolver := NewSchemaResolver(registry)

	req := &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		Records:     []ProduceRecord{{Value: []byte("v")}},
		ValueSchema: LiteralSchema(`{"type": "nonsense"}`),
	}

	_, err := resolver.Resolve(context.Background(), req, SideValue)
	var parseErr *SchemaParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, SideValue, parseErr.Side)
	assert.Zero(t, registry.calls, "malformed schema text must not reach the registry")
}

func TestResolve_InvalidJSONSchema(t *testing.T) {
	t.Parallel()
	resolver := NewSchemaResolver(newFakeRegistry())

	req := &ProduceRequest{
		Topic:       "orders",
		Format:      FormatJSON,
		Records:     []ProduceRecord{{Value: []byte("{}")}},
		ValueSchema: LiteralSchema(`{not json`),
	}

	_, err := resolver.Resolve(context.Background(), req, SideValue)
	var parseErr *SchemaParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestResolve_RegistryFailureIsWrapped(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	registry.registerErr = errors.New("registry unavailable")
	resolver := NewSchemaResolver(registry)

	req := avroRequest([]ProduceRecord{{Value: []byte("v")}})

	_, err := resolver.Resolve(context.Background(), req, SideValue)
	assert.ErrorContains(t, err, "registry unavailable")
}

// ── schema referenced by id ───────────────────────────────────────────────────

func TestResolve_ByID_Exists(t *testing.T) {
	t.Parallel()
	registry := newFakeRegistry()
	registry.known[42] = true
	resolver := NewSchemaResolver(registry)

	req := &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		Records:     []ProduceRecord{{Value: []byte("v")}},
		ValueSchema: SchemaByID(42),
	}

	id, err := resolver.Resolve(context.Background(), req, SideValue)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, 42, *id)
}

func TestResolve_ByID_NotFound(t *testing.T) {
	t.Parallel()
	resolver := NewSchemaResolver(newFakeRegistry())

	req := &ProduceRequest{
		Topic:       "orders",
		Format:      FormatAvro,
		Records:     []ProduceRecord{{Value: []byte("v")}},
		ValueSchema: SchemaByID(99),
	}

	_, err := resolver.Resolve(context.Background(), req, SideValue)
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}

// ── builder chaining ──────────────────────────────────────────────────────────

type resolverCaptureLogger struct {
	errorCalled bool
}

func (c *resolverCaptureLogger) InfoWithContext(_ context.Context, _ string, _ error, _ ...map[string]interface{}) {
}
func (c *resolverCaptureLogger) WarnWithContext(_ context.Context, _ string, _ error, _ ...map[string]interface{}) {
}
func (c *resolverCaptureLogger) ErrorWithContext(_ context.Context, _ string, _ error, _ ...map[string]interface{}) {
	c.errorCalled = true
}

func TestResolver_WithLogger(t *testing.T) {
	t.Parallel()
	logger := &resolverCaptureLogger{}
	resolver := NewSchemaResolver(newFakeRegistry()).WithLogger(logger)

	req := &ProduceRequest{
		Topic:   "orders",
		Format:  FormatAvro,
		Records: []ProduceRecord{{Value: []byte("v")}},
	}
	_, err := resolver.Resolve(context.Background(), req, SideValue)
	require.Error(t, err)
	assert.True(t, logger.errorCalled)
}

func TestSubjectName(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		side Side
		want string
	}{
		{SideKey, "orders-key"},
		{SideValue, "orders-value"},
	} {
		tc := tc
		t.Run(string(tc.side), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, subjectName("orders", tc.side))
		})
	}
}
