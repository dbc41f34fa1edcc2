package produce

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/IBM/sarama"
)

// Defaults applied by NewProducerPool when the corresponding PoolConfig field
// is left at its zero value.
const (
	// DefaultClientID identifies the gateway to the brokers.
	DefaultClientID = "kafka-rest"

	// DefaultMaxRetries is the per-record broker delivery attempt limit.
	DefaultMaxRetries = 10

	// DefaultDeliveryTimeout bounds how long the producer waits for broker
	// acknowledgement of a record.
	DefaultDeliveryTimeout = 10 * time.Second

	// DefaultChannelBufferSize is the depth of the producer's outbound buffer.
	// When the buffer is full, batch submission blocks, providing admission
	// control proportional to broker throughput.
	DefaultChannelBufferSize = 256
)

// PoolConfig defines the configuration for the Producer Pool. One pool is
// created at process startup and shared by all concurrent submissions.
type PoolConfig struct {
	// Brokers is a list of Kafka broker addresses.
	Brokers []string

	// ClientID identifies this client to the brokers.
	// Default: "kafka-rest"
	ClientID string

	// MaxRetries is the maximum number of delivery attempts per record
	// before the broker round trip is reported as failed.
	// Default: 10
	MaxRetries int

	// DeliveryTimeout bounds how long the producer waits for broker
	// acknowledgement of a record.
	// Default: 10s
	DeliveryTimeout time.Duration

	// ChannelBufferSize is the depth of each producer's outbound buffer.
	// Submissions block when the buffer is full rather than dropping records.
	// Default: 256
	ChannelBufferSize int

	// CompressionCodec specifies the compression algorithm to use.
	// Options: "" (no compression), gzip, snappy, lz4, zstd
	// Default: ""
	CompressionCodec string

	// TLS contains TLS/SSL configuration.
	TLS TLSConfig

	// SASL contains SASL authentication configuration.
	SASL SASLConfig
}

// TLSConfig defines TLS settings for broker connections.
type TLSConfig struct {
	// Enabled turns on TLS for all broker connections.
	Enabled bool

	// CACertPath is the path to the CA certificate used to verify brokers.
	CACertPath string

	// ClientCertPath and ClientKeyPath enable mutual TLS when both are set.
	ClientCertPath string
	ClientKeyPath  string

	// InsecureSkipVerify disables broker certificate verification.
	InsecureSkipVerify bool
}

// SASLConfig defines SASL authentication settings for broker connections.
type SASLConfig struct {
	// Enabled turns on SASL authentication.
	Enabled bool

	// Mechanism selects the SASL mechanism.
	// Options: PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Mechanism string

	// Username and Password are the SASL credentials.
	Username string
	Password string
}

// withDefaults returns a copy of the config with zero values replaced by
// package defaults.
func (c PoolConfig) withDefaults() PoolConfig {
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.DeliveryTimeout == 0 {
		c.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if c.ChannelBufferSize == 0 {
		c.ChannelBufferSize = DefaultChannelBufferSize
	}
	return c
}

// saramaConfig translates the pool configuration into a sarama producer
// configuration. Success and error returns are both enabled: the pool's
// collector goroutines require an acknowledgement per record.
func (c PoolConfig) saramaConfig() (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = c.ClientID
	cfg.ChannelBufferSize = c.ChannelBufferSize

	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = c.MaxRetries
	cfg.Producer.Timeout = c.DeliveryTimeout
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = newPinningPartitioner

	switch c.CompressionCodec {
	case "":
	case "gzip":
		cfg.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		cfg.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		cfg.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		cfg.Producer.Compression = sarama.CompressionZSTD
	default:
		return nil, fmt.Errorf("unsupported compression codec: %s", c.CompressionCodec)
	}

	if c.TLS.Enabled {
		tlsConfig, err := createTLSConfig(c.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = tlsConfig
	}

	if c.SASL.Enabled {
		if err := applySASLConfig(cfg, c.SASL); err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	return cfg, nil
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	// Load CA certificate
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// applySASLConfig configures the selected SASL mechanism on the sarama config
func applySASLConfig(cfg *sarama.Config, sc SASLConfig) error {
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.User = sc.Username
	cfg.Net.SASL.Password = sc.Password

	switch sc.Mechanism {
	case "PLAIN":
		cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	case "SCRAM-SHA-256":
		cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &xdgSCRAMClient{HashGeneratorFcn: scramSHA256}
		}
	case "SCRAM-SHA-512":
		cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &xdgSCRAMClient{HashGeneratorFcn: scramSHA512}
		}
	default:
		return fmt.Errorf("unsupported SASL mechanism: %s", sc.Mechanism)
	}

	return nil
}
