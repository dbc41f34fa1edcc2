package produce

import (
	"time"
)

// Format identifies the embedded serialization format of a produce request.
// The Producer Pool keeps one long-lived broker producer per format, and the
// Schema Resolver uses the format to decide how schema text is validated and
// which schema type is registered with the schema registry.
type Format string

const (
	// FormatBinary carries opaque byte payloads with no registry schema.
	FormatBinary Format = "binary"

	// FormatJSON carries JSON payloads validated against a registered JSON schema.
	FormatJSON Format = "json"

	// FormatAvro carries Avro payloads validated against a registered Avro schema.
	FormatAvro Format = "avro"
)

// SchemaType returns the schema registry type string for the format.
// Returns the empty string for schemaless formats.
func (f Format) SchemaType() string {
	switch f {
	case FormatAvro:
		return "AVRO"
	case FormatJSON:
		return "JSON"
	default:
		return ""
	}
}

// Schemaless reports whether the format carries no registry schema.
// Schemaless requests skip schema resolution and wire-format framing entirely.
func (f Format) Schemaless() bool {
	return f == FormatBinary
}

// Side identifies which half of a record a schema specification applies to.
type Side string

const (
	// SideKey is the record key side.
	SideKey Side = "key"

	// SideValue is the record value side.
	SideValue Side = "value"
)

// SchemaSpec identifies the schema for one side of a produce request: either
// literal schema text to be registered, or the id of an already registered
// schema. The two variants are mutually exclusive by construction; build a
// spec with LiteralSchema or SchemaByID.
type SchemaSpec struct {
	literal string
	id      int
	byID    bool
}

// LiteralSchema builds a SchemaSpec from raw schema text. The resolver
// validates the text for the request's format and registers it, yielding a
// new or existing id.
func LiteralSchema(text string) *SchemaSpec {
	return &SchemaSpec{literal: text}
}

// SchemaByID builds a SchemaSpec referencing an already registered schema.
// The resolver verifies the id exists before any dispatch.
func SchemaByID(id int) *SchemaSpec {
	return &SchemaSpec{id: id, byID: true}
}

// ByID reports whether the spec references a registered schema id.
func (s *SchemaSpec) ByID() bool {
	return s.byID
}

// ID returns the registered schema id. Only meaningful when ByID is true.
func (s *SchemaSpec) ID() int {
	return s.id
}

// Literal returns the raw schema text. Only meaningful when ByID is false.
func (s *SchemaSpec) Literal() string {
	return s.literal
}

// ProduceRecord is a single record within a produce batch.
type ProduceRecord struct {
	// Key is the record key. A nil key produces a record with no key; the
	// broker falls back to round-robin partitioning for such records.
	Key []byte

	// Value is the record payload. Required for every record.
	Value []byte

	// Partition, when non-nil, pins the record to that partition, overriding
	// both the request-level partition override and broker-side assignment.
	Partition *int32
}

// ProduceRequest is one decoded REST produce call: an ordered batch of
// records destined for a topic, plus the schema specifications needed to
// frame them. Record ordering is significant and preserved end-to-end.
type ProduceRequest struct {
	// Topic is the destination Kafka topic.
	Topic string

	// Format is the embedded serialization format of the batch.
	Format Format

	// PartitionOverride, when non-nil, routes records without a record-level
	// partition to this partition.
	PartitionOverride *int32

	// Records is the ordered batch. Must be non-empty.
	Records []ProduceRecord

	// KeySchema specifies the key schema. May be nil when no record in the
	// batch carries a key.
	KeySchema *SchemaSpec

	// ValueSchema specifies the value schema. Required for schema'd formats.
	ValueSchema *SchemaSpec
}

// RecordOutcome is the broker acknowledgement for a single record. Outcomes
// are reported once per record, in submission order, even though individual
// broker acknowledgements arrive out of order internally.
type RecordOutcome struct {
	// Partition is the partition the record landed on. -1 when Err is set.
	Partition int32

	// Offset is the record's offset within the partition. -1 when Err is set.
	Offset int64

	// Timestamp is the broker-assigned timestamp, when known.
	Timestamp time.Time

	// Err is the broker-reported failure for this record, or nil on success.
	// A single record's failure does not abort its siblings.
	Err error
}

// Failed reports whether the record's broker round trip failed.
func (o RecordOutcome) Failed() bool {
	return o.Err != nil
}

// PartitionOffset is the response entry for one record. On success it carries
// the record's placement; on failure the sentinel partition/offset -1 together
// with the error code and message.
type PartitionOffset struct {
	Partition    int32   `json:"partition"`
	Offset       int64   `json:"offset"`
	ErrorCode    *int    `json:"error_code,omitempty"`
	ErrorMessage *string `json:"message,omitempty"`
}

// ProduceResponse is the aggregated result of one produce call. Offsets is
// positionally aligned with the request's records and always has the same
// length.
type ProduceResponse struct {
	Offsets       []PartitionOffset `json:"offsets"`
	KeySchemaID   *int              `json:"key_schema_id,omitempty"`
	ValueSchemaID *int              `json:"value_schema_id,omitempty"`
}
