package produce

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/IBM/sarama"
)

// Pre-dispatch errors returned by Submit. None of these are retried by the
// pipeline itself; retry is a client decision.
var (
	// ErrEmptyBatch is returned when a request carries no records.
	ErrEmptyBatch = errors.New("produce request contains no records")

	// ErrMissingValue is returned when a record in the batch has no value.
	ErrMissingValue = errors.New("produce record is missing its value")

	// ErrKeySchemaMissing is returned when at least one record carries a key
	// but the request supplies no key schema.
	ErrKeySchemaMissing = errors.New("request includes keyed records but no key schema")

	// ErrValueSchemaMissing is returned when a schema'd format request
	// supplies no value schema.
	ErrValueSchemaMissing = errors.New("request includes no value schema")

	// ErrSchemaNotFound is returned when a schema referenced by id does not
	// exist in the registry.
	ErrSchemaNotFound = errors.New("schema not found in registry")

	// ErrPoolShutdown is returned when a batch is submitted to a pool that is
	// shutting down. Safe for the client to retry against another instance.
	ErrPoolShutdown = errors.New("producer pool is shutting down")
)

// SchemaParseError reports malformed literal schema text. The wrapped error
// carries the parser's diagnostic.
type SchemaParseError struct {
	Side Side
	Err  error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("invalid %s schema: %v", e.Side, e.Err)
}

func (e *SchemaParseError) Unwrap() error {
	return e.Err
}

// Numeric error codes carried in-band for per-record failures and surfaced
// alongside HTTP statuses for call-level failures.
const (
	CodeKeySchemaMissing   = 42201
	CodeValueSchemaMissing = 42202
	CodeInvalidSchema      = 42205
	CodeSchemaNotFound     = 40403

	// CodeBrokerError marks a non-retriable broker-side record failure.
	CodeBrokerError = 50002

	// CodeBrokerRetriableError marks a broker-side record failure that the
	// client may retry.
	CodeBrokerRetriableError = 50003
)

// HTTPStatus maps a Submit failure to the HTTP status the boundary should
// respond with. Pre-dispatch validation and schema errors are client errors;
// pool rejection is a retriable server condition.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPoolShutdown):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrEmptyBatch),
		errors.Is(err, ErrMissingValue),
		errors.Is(err, ErrKeySchemaMissing),
		errors.Is(err, ErrValueSchemaMissing),
		errors.Is(err, ErrSchemaNotFound),
		isSchemaParseError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode maps a Submit failure to its numeric error code.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrKeySchemaMissing):
		return CodeKeySchemaMissing
	case errors.Is(err, ErrValueSchemaMissing):
		return CodeValueSchemaMissing
	case errors.Is(err, ErrSchemaNotFound):
		return CodeSchemaNotFound
	case isSchemaParseError(err):
		return CodeInvalidSchema
	default:
		return CodeBrokerError
	}
}

func isSchemaParseError(err error) bool {
	var parseErr *SchemaParseError
	return errors.As(err, &parseErr)
}

// recordErrorCode maps a per-record broker cause to the code carried in the
// response entry. Retriable broker errors get their own code so clients can
// resubmit just the failed records.
func recordErrorCode(err error) int {
	var kerr sarama.KError
	if errors.As(err, &kerr) && isRetriableKError(kerr) {
		return CodeBrokerRetriableError
	}
	return CodeBrokerError
}

// isRetriableKError reports whether a Kafka protocol error is worth retrying.
// The set mirrors the broker conditions that resolve on their own: leadership
// moves, metadata staleness, transient replication shortfalls and timeouts.
func isRetriableKError(kerr sarama.KError) bool {
	switch kerr {
	case sarama.ErrLeaderNotAvailable,
		sarama.ErrNotLeaderForPartition,
		sarama.ErrRequestTimedOut,
		sarama.ErrNetworkException,
		sarama.ErrNotEnoughReplicas,
		sarama.ErrNotEnoughReplicasAfterAppend,
		sarama.ErrUnknownTopicOrPartition,
		sarama.ErrKafkaStorageError:
		return true
	default:
		return false
	}
}
