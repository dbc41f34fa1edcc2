// Package produce implements the REST gateway's produce pipeline: the path a
// decoded produce request takes from schema resolution through broker
// dispatch to the aggregated response.
//
// The pipeline has four parts:
//   - SchemaResolver: turns key/value schema specifications into confirmed
//     registry ids, failing typed before anything is dispatched
//   - ProducerPool: one long-lived broker producer per embedded format,
//     shared by all concurrent requests, with per-record acknowledgements
//   - Orchestrator: validates, resolves, frames, dispatches, and waits
//   - response aggregation: folds per-record outcomes into a positionally
//     aligned offsets list with in-band per-record errors
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" Go idiom:
//   - Registry interface: the schema registry subset the resolver consumes
//   - Producer interface: the dispatch substrate the orchestrator consumes
//   - Constructors return concrete types (*SchemaResolver, *ProducerPool,
//     *Orchestrator)
//   - FX module provides the concrete types plus the Producer interface
//
// Record ordering is preserved end-to-end: the response's offsets list is
// positionally aligned with the request's records even though broker
// acknowledgements arrive out of order internally. A single record's broker
// failure never aborts its siblings; it is reported in-band in that record's
// response entry.
//
// # Basic Usage (Direct)
//
//	registry, _ := schema_registry.NewClient(schema_registry.Config{
//		URL: "http://localhost:8081",
//	})
//	pool, err := produce.NewProducerPool(produce.PoolConfig{
//		Brokers: []string{"localhost:9092"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	orch := produce.NewOrchestrator(produce.NewSchemaResolver(registry), pool)
//	resp, err := orch.Submit(ctx, &produce.ProduceRequest{
//		Topic:       "events",
//		Format:      produce.FormatAvro,
//		ValueSchema: produce.LiteralSchema(`"string"`),
//		Records: []produce.ProduceRecord{
//			{Value: []byte(`"hello"`)},
//		},
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//	    produce.FXModule,
//	    schema_registry.FXModule,
//	    logger.FXModule,
//	    fx.Provide(
//	        func() produce.PoolConfig {
//	            return produce.PoolConfig{Brokers: []string{"localhost:9092"}}
//	        },
//	        func(c *schema_registry.Client) produce.Registry { return c },
//	    ),
//	)
//
// The FX module wires the resolver to the registry client, the orchestrator
// to the pool, and registers a lifecycle hook that flushes and closes every
// broker producer on application stop.
package produce
