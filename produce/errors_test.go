package produce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()
	for name, tc := range map[string]struct {
		err  error
		want int
	}{
		"nil":                  {nil, http.StatusOK},
		"pool shutdown":        {ErrPoolShutdown, http.StatusServiceUnavailable},
		"cancelled":            {context.Canceled, http.StatusRequestTimeout},
		"deadline":             {context.DeadlineExceeded, http.StatusRequestTimeout},
		"empty batch":          {ErrEmptyBatch, http.StatusUnprocessableEntity},
		"missing value":        {fmt.Errorf("%w: record 3", ErrMissingValue), http.StatusUnprocessableEntity},
		"missing key schema":   {ErrKeySchemaMissing, http.StatusUnprocessableEntity},
		"missing value schema": {ErrValueSchemaMissing, http.StatusUnprocessableEntity},
		"schema not found":     {fmt.Errorf("%w: value schema id 9", ErrSchemaNotFound), http.StatusUnprocessableEntity},
		"parse error":          {&SchemaParseError{Side: SideValue, Err: errors.New("bad")}, http.StatusUnprocessableEntity},
		"unknown":              {errors.New("boom"), http.StatusInternalServerError},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, CodeKeySchemaMissing, ErrorCode(ErrKeySchemaMissing))
	assert.Equal(t, CodeValueSchemaMissing, ErrorCode(ErrValueSchemaMissing))
	assert.Equal(t, CodeSchemaNotFound, ErrorCode(fmt.Errorf("%w: id 8", ErrSchemaNotFound)))
	assert.Equal(t, CodeInvalidSchema, ErrorCode(&SchemaParseError{Side: SideKey, Err: errors.New("bad")}))
	assert.Equal(t, CodeBrokerError, ErrorCode(errors.New("boom")))
}

func TestSchemaParseError(t *testing.T) {
	t.Parallel()
	cause := errors.New("unexpected token")
	err := &SchemaParseError{Side: SideKey, Err: cause}
	assert.Contains(t, err.Error(), "key")
	assert.ErrorIs(t, err, cause)
}

func TestRecordErrorCode(t *testing.T) {
	t.Parallel()
	retriable := []sarama.KError{
		sarama.ErrLeaderNotAvailable,
		sarama.ErrNotLeaderForPartition,
		sarama.ErrRequestTimedOut,
		sarama.ErrNetworkException,
		sarama.ErrNotEnoughReplicas,
		sarama.ErrNotEnoughReplicasAfterAppend,
		sarama.ErrUnknownTopicOrPartition,
		sarama.ErrKafkaStorageError,
	}
	for _, kerr := range retriable {
		assert.Equal(t, CodeBrokerRetriableError, recordErrorCode(kerr), kerr.Error())
	}

	assert.Equal(t, CodeBrokerError, recordErrorCode(sarama.ErrMessageTooLarge))
	assert.Equal(t, CodeBrokerError, recordErrorCode(errors.New("not a kafka error")))

	wrapped := fmt.Errorf("delivery failed: %w", sarama.ErrRequestTimedOut)
	assert.Equal(t, CodeBrokerRetriableError, recordErrorCode(wrapped))
}

// ── response aggregation ──────────────────────────────────────────────────────

func TestBuildResponse_MixedOutcomes(t *testing.T) {
	t.Parallel()
	keyID, valueID := 1, 2
	resp := buildResponse([]RecordOutcome{
		{Partition: 0, Offset: 41},
		{Partition: -1, Offset: -1, Err: sarama.ErrNotEnoughReplicas},
		{Partition: 2, Offset: 7},
	}, &keyID, &valueID)

	require.Len(t, resp.Offsets, 3)

	assert.Equal(t, PartitionOffset{Partition: 0, Offset: 41}, resp.Offsets[0])
	assert.Equal(t, PartitionOffset{Partition: 2, Offset: 7}, resp.Offsets[2])

	failed := resp.Offsets[1]
	assert.Equal(t, int32(-1), failed.Partition)
	assert.Equal(t, int64(-1), failed.Offset)
	require.NotNil(t, failed.ErrorCode)
	assert.Equal(t, CodeBrokerRetriableError, *failed.ErrorCode)
	require.NotNil(t, failed.ErrorMessage)
	assert.NotEmpty(t, *failed.ErrorMessage)

	require.NotNil(t, resp.KeySchemaID)
	assert.Equal(t, 1, *resp.KeySchemaID)
	require.NotNil(t, resp.ValueSchemaID)
	assert.Equal(t, 2, *resp.ValueSchemaID)
}

func TestBuildResponse_NoSchemas(t *testing.T) {
	t.Parallel()
	resp := buildResponse([]RecordOutcome{{Partition: 0, Offset: 0}}, nil, nil)
	assert.Nil(t, resp.KeySchemaID)
	assert.Nil(t, resp.ValueSchemaID)
	require.Len(t, resp.Offsets, 1)
	assert.Nil(t, resp.Offsets[0].ErrorCode)
}
