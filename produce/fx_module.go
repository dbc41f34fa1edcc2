package produce

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-rest/observability"
	"github.com/aalemi-dev/kafka-rest/tracer"
)

// FXModule is an fx.Module that provides and configures the produce pipeline.
// This module registers the Schema Resolver, Producer Pool, and Orchestrator
// with the Fx dependency injection framework, making them available to other
// components in the application.
//
// The module provides:
// 1. *SchemaResolver, *ProducerPool, *Orchestrator (concrete types)
// 2. Producer interface backed by the pool
// 3. Lifecycle management for graceful pool shutdown
//
// Usage:
//
//	app := fx.New(
//	    produce.FXModule,
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() produce.PoolConfig {
//	            return produce.PoolConfig{Brokers: []string{"localhost:9092"}}
//	        },
//	        // Bridge the registry client into this package's Registry interface.
//	        func(c *schema_registry.Client) produce.Registry { return c },
//	    ),
//	)
var FXModule = fx.Module("produce",
	fx.Provide(
		NewSchemaResolverWithDI, // Provides *SchemaResolver
		NewProducerPoolWithDI,   // Provides *ProducerPool
		// Also provide the Producer interface
		fx.Annotate(
			func(p *ProducerPool) Producer { return p },
			fx.As(new(Producer)),
		),
		NewOrchestratorWithDI, // Provides *Orchestrator
	),
	fx.Invoke(RegisterProducerPoolLifecycle),
)

// SchemaResolverParams groups the dependencies needed to create a Schema Resolver
type SchemaResolverParams struct {
	fx.In

	Registry Registry
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewSchemaResolverWithDI creates a Schema Resolver using dependency injection.
// The registry client is required; logger and observer are injected when the
// application provides them.
func NewSchemaResolverWithDI(params SchemaResolverParams) *SchemaResolver {
	resolver := NewSchemaResolver(params.Registry)
	if params.Logger != nil {
		resolver.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		resolver.WithObserver(params.Observer)
	}
	return resolver
}

// ProducerPoolParams groups the dependencies needed to create a Producer Pool
type ProducerPoolParams struct {
	fx.In

	Config   PoolConfig
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewProducerPoolWithDI creates a Producer Pool using dependency injection.
//
// Parameters:
//   - params: A ProducerPoolParams struct that contains the PoolConfig
//     instance and optionally a Logger and Observer.
//     This struct embeds fx.In to enable automatic injection of these dependencies.
//
// Returns:
//   - *ProducerPool: A pool ready to accept batches. Broker producers are
//     created lazily on the first batch per format.
func NewProducerPoolWithDI(params ProducerPoolParams) (*ProducerPool, error) {
	pool, err := NewProducerPool(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		pool.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		pool.WithObserver(params.Observer)
	}
	return pool, nil
}

// OrchestratorParams groups the dependencies needed to create an Orchestrator
type OrchestratorParams struct {
	fx.In

	Resolver *SchemaResolver
	Pool     Producer
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewOrchestratorWithDI creates an Orchestrator using dependency injection.
func NewOrchestratorWithDI(params OrchestratorParams) *Orchestrator {
	orch := NewOrchestrator(params.Resolver, params.Pool)
	if params.Logger != nil {
		orch.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		orch.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		orch.WithTracer(params.Tracer)
	}
	return orch
}

// ProducerPoolLifecycleParams groups the dependencies needed for pool lifecycle management
type ProducerPoolLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Pool      *ProducerPool
}

// RegisterProducerPoolLifecycle registers the Producer Pool with the fx
// lifecycle system.
//
// The function:
//  1. On application start: Logs that the pool is ready
//  2. On application stop: Flushes and closes every broker producer, letting
//     in-flight batches settle before the process exits.
func RegisterProducerPoolLifecycle(params ProducerPoolLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Pool.logInfo(ctx, "Producer pool started", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Pool.logInfo(ctx, "Shutting down producer pool", nil)
			params.Pool.Shutdown()
			return nil
		},
	})
}
