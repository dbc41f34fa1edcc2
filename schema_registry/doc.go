// Package schema_registry provides integration with Confluent Schema Registry.
//
// This package gives the produce pipeline its schema management: registering
// schema text supplied in produce requests, confirming schema ids supplied by
// clients, and encoding the Confluent wire-format header that prefixes every
// schema'd payload written to Kafka.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Registry interface: Defines the contract for schema registry operations
//   - Client struct: Concrete implementation of the Registry interface
//   - NewClient constructor: Returns *Client (concrete type)
//   - FX module: Provides both *Client and Registry interface for dependency injection
//
// Core Features:
//   - HTTP client for Confluent Schema Registry with basic auth
//   - Schema registration and id confirmation with caching
//   - Latest-version retrieval and compatibility checking
//   - Confluent wire format encoding/decoding
//   - Typed registry errors carrying the registry's own error codes
//
// # Caching
//
// Registration results and confirmed schema ids are cached for the client's
// lifetime. A gateway that receives the same literal schema or the same
// schema id on every request pays one registry round trip total. Lookups of
// "latest" subject versions are never cached, since latest moves when a new
// version is registered.
//
// # Direct Usage (Without FX)
//
// For simple applications or tests, create a client directly:
//
//	import "github.com/aalemi-dev/kafka-rest/schema_registry"
//
//	// Create schema registry client (returns concrete *Client)
//	client, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:      "http://localhost:8081",
//	    Username: "user",     // Optional
//	    Password: "password", // Optional
//	    Timeout:  10 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register a schema
//	avroSchema := `{
//	    "type": "record",
//	    "name": "Order",
//	    "fields": [
//	        {"name": "id", "type": "string"},
//	        {"name": "amount", "type": "double"}
//	    ]
//	}`
//
//	schemaID, err := client.RegisterSchema(ctx, "orders-value", avroSchema, "AVRO")
//
//	// Confirm a client-supplied id
//	ok, err := client.SchemaExists(ctx, 42)
//
// # FX Module Integration
//
// For production applications using Uber's fx, use the FXModule which provides
// both the concrete type and interface:
//
//	import (
//	    "go.uber.org/fx"
//	    "github.com/aalemi-dev/kafka-rest/schema_registry"
//	)
//
//	app := fx.New(
//	    schema_registry.FXModule, // Provides *Client and Registry interface
//	    fx.Provide(
//	        func() schema_registry.Config {
//	            return schema_registry.Config{
//	                URL:      os.Getenv("SCHEMA_REGISTRY_URL"),
//	                Username: os.Getenv("SCHEMA_REGISTRY_USER"),
//	                Password: os.Getenv("SCHEMA_REGISTRY_PASSWORD"),
//	                Timeout:  30 * time.Second,
//	            }
//	        },
//	    ),
//	)
//
// # Observability (Observer Hook)
//
// Attach an observer to track every registry operation's duration, outcome,
// and cache behavior:
//
//	client.WithObserver(myObserver).WithLogger(myLogger)
//
// The observer receives an OperationContext per call with the component set
// to "schema_registry", the operation name (register_schema, schema_exists,
// get_schema_by_id, get_latest_schema, check_compatibility), and metadata
// including cache hits and registry-assigned ids.
//
// # Wire Format
//
// EncodeSchemaID and DecodeSchemaID implement the 5-byte Confluent framing
// (magic byte 0x0 followed by the big-endian schema id) that precedes every
// schema'd payload on the wire.
package schema_registry
