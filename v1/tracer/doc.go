// Package tracer configures OpenTelemetry tracing.
//
// The pipeline opens one span per operation (pipeline.create,
// pipeline.search, ...). The Kafka ingestion worker uses GetCarrier and
// SetCarrierOnContext to carry the trace context through message headers.
package tracer
