package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aalemi-dev/kafka-rest/observability"
)

// Registry provides an interface for interacting with a Confluent Schema
// Registry. It covers the operations the produce pipeline needs: registering
// schema text, confirming ids supplied by clients, and schema retrieval.
type Registry interface {
	// RegisterSchema registers a schema for a subject and returns its id.
	// Registration is idempotent: identical text yields the existing id.
	RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error)

	// SchemaExists reports whether a schema id is known to the registry.
	SchemaExists(ctx context.Context, id int) (bool, error)

	// GetSchemaByID retrieves a schema by its id
	GetSchemaByID(ctx context.Context, id int) (string, error)

	// GetLatestSchema retrieves the latest version of a schema for a subject
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)

	// CheckCompatibility checks if a schema is compatible with the latest version
	CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error)
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
type Client struct {
	url        string
	httpClient *http.Client

	// Cache for schemas by ID
	schemaCache      map[int]string
	schemaCacheMutex sync.RWMutex

	// Cache for schema IDs by subject and schema
	idCache      map[string]int
	idCacheMutex sync.RWMutex

	// Authentication
	username string
	password string

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger
}

// Config holds configuration for schema registry client
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081")
	URL string

	// Username for basic auth (optional)
	Username string

	// Password for basic auth (optional)
	Password string `json:"-"` //nolint:gosec

	// Timeout for HTTP requests
	Timeout time.Duration
}

// Logger is an interface that matches the logger.Logger context-aware subset.
// It provides context-aware structured logging with optional error and field parameters.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		url: config.URL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		schemaCache: make(map[int]string),
		idCache:     make(map[string]int),
		username:    config.Username,
		password:    config.Password,
	}, nil
}

// RegisterSchema registers a schema with the registry and returns its id.
// Results are cached per subject, type, and schema text, so the hot path of a
// gateway that keeps receiving the same literal schema costs no HTTP round
// trip after the first call.
func (c *Client) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
	start := time.Now()

	cacheKey := fmt.Sprintf("%s:%s:%s", subject, schemaType, schema)
	c.idCacheMutex.RLock()
	if id, ok := c.idCache[cacheKey]; ok {
		c.idCacheMutex.RUnlock()
		c.observeOperation("register_schema", subject, strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
			"cache_hit":   true,
			"schema_type": schemaType,
		})
		return id, nil
	}
	c.idCacheMutex.RUnlock()

	payload := map[string]interface{}{"schema": schema}
	// AVRO is the registry default and must be omitted for compatibility
	// with older registries
	if schemaType != "" && schemaType != "AVRO" {
		payload["schemaType"] = schemaType
	}

	var result struct {
		ID int `json:"id"`
	}
	err := c.postJSON(ctx, fmt.Sprintf("%s/subjects/%s/versions", c.url, subject), payload, &result)
	if err != nil {
		c.observeOperation("register_schema", subject, "", time.Since(start), err, map[string]interface{}{
			"cache_hit":   false,
			"schema_type": schemaType,
		})
		c.logError(ctx, "Failed to register schema", err, map[string]interface{}{
			"subject":     subject,
			"schema_type": schemaType,
		})
		return 0, err
	}

	c.idCacheMutex.Lock()
	c.idCache[cacheKey] = result.ID
	c.idCacheMutex.Unlock()

	c.observeOperation("register_schema", subject, strconv.Itoa(result.ID), time.Since(start), nil, map[string]interface{}{
		"cache_hit":   false,
		"schema_type": schemaType,
		"schema_id":   result.ID,
	})
	return result.ID, nil
}

// SchemaExists reports whether the registry knows the given schema id. A 404
// from the registry means the id does not exist and is not an error here;
// anything else (auth failure, registry down) is.
//
// Confirmed ids are cached: a REST client that produces with the same schema
// id on every request costs one registry round trip total.
func (c *Client) SchemaExists(ctx context.Context, id int) (bool, error) {
	start := time.Now()

	c.schemaCacheMutex.RLock()
	_, cached := c.schemaCache[id]
	c.schemaCacheMutex.RUnlock()
	if cached {
		c.observeOperation("schema_exists", "registry", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
			"cache_hit": true,
		})
		return true, nil
	}

	var result struct {
		Schema string `json:"schema"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("%s/schemas/ids/%d", c.url, id), &result)
	if err != nil {
		if isNotFound(err) {
			c.observeOperation("schema_exists", "registry", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
				"cache_hit": false,
				"exists":    false,
			})
			return false, nil
		}
		c.observeOperation("schema_exists", "registry", strconv.Itoa(id), time.Since(start), err, map[string]interface{}{
			"cache_hit": false,
		})
		return false, err
	}

	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = result.Schema
	c.schemaCacheMutex.Unlock()

	c.observeOperation("schema_exists", "registry", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
		"cache_hit": false,
		"exists":    true,
	})
	return true, nil
}

// GetSchemaByID retrieves a schema from the registry by its id
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	start := time.Now()

	c.schemaCacheMutex.RLock()
	if schema, ok := c.schemaCache[id]; ok {
		c.schemaCacheMutex.RUnlock()
		c.observeOperation("get_schema_by_id", "registry", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
			"cache_hit": true,
		})
		return schema, nil
	}
	c.schemaCacheMutex.RUnlock()

	var result struct {
		Schema string `json:"schema"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("%s/schemas/ids/%d", c.url, id), &result)
	if err != nil {
		c.observeOperation("get_schema_by_id", "registry", strconv.Itoa(id), time.Since(start), err, map[string]interface{}{
			"cache_hit": false,
		})
		return "", err
	}

	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = result.Schema
	c.schemaCacheMutex.Unlock()

	c.observeOperation("get_schema_by_id", "registry", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
		"cache_hit": false,
	})
	return result.Schema, nil
}

// GetLatestSchema retrieves the latest version of a schema for a subject.
// Latest-version lookups are never cached: "latest" moves when a new version
// is registered.
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	start := time.Now()

	var metadata Metadata
	err := c.getJSON(ctx, fmt.Sprintf("%s/subjects/%s/versions/latest", c.url, subject), &metadata)
	if err != nil {
		c.observeOperation("get_latest_schema", subject, "latest", time.Since(start), err, nil)
		return nil, err
	}

	metadata.Subject = subject

	c.schemaCacheMutex.Lock()
	c.schemaCache[metadata.ID] = metadata.Schema
	c.schemaCacheMutex.Unlock()

	c.observeOperation("get_latest_schema", subject, "latest", time.Since(start), nil, map[string]interface{}{
		"schema_id":   metadata.ID,
		"version":     metadata.Version,
		"schema_type": metadata.Type,
	})
	return &metadata, nil
}

// CheckCompatibility checks if a schema is compatible with the existing schema for a subject
func (c *Client) CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error) {
	start := time.Now()

	payload := map[string]interface{}{"schema": schema}
	if schemaType != "" && schemaType != "AVRO" {
		payload["schemaType"] = schemaType
	}

	var result struct {
		IsCompatible bool `json:"is_compatible"`
	}
	err := c.postJSON(ctx, fmt.Sprintf("%s/compatibility/subjects/%s/versions/latest", c.url, subject), payload, &result)
	if err != nil {
		c.observeOperation("check_compatibility", subject, "latest", time.Since(start), err, map[string]interface{}{
			"schema_type": schemaType,
		})
		return false, err
	}

	c.observeOperation("check_compatibility", subject, "latest", time.Since(start), nil, map[string]interface{}{
		"schema_type":   schemaType,
		"is_compatible": result.IsCompatible,
	})
	return result.IsCompatible, nil
}

// getJSON performs an authenticated GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentType)
	return c.do(req, out)
}

// postJSON performs an authenticated POST with a JSON body and decodes the
// JSON response into out.
func (c *Client) postJSON(ctx context.Context, url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

const contentType = "application/vnd.schemaregistry.v1+json"

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec
	if err != nil {
		return fmt.Errorf("schema registry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// WithObserver sets the observer for this client and returns the client for method chaining.
// The observer receives events about schema registry operations (e.g., register, get, check compatibility).
//
// Example:
//
//	client := client.WithObserver(myObserver).WithLogger(myLogger)
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithLogger sets the logger for this client and returns the client for method chaining.
// The logger is used for structured logging of client operations and errors.
//
// Example:
//
//	client := client.WithObserver(myObserver).WithLogger(myLogger)
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// logInfo logs an informational message if a logger is configured
func (c *Client) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logWarn logs a warning message if a logger is configured
func (c *Client) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.WarnWithContext(ctx, msg, nil, fields)
	}
}

// logError logs an error message if a logger is configured
func (c *Client) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
