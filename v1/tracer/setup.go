package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yang0369/rag/v1/logger"
)

// Tracer wraps an OpenTelemetry TracerProvider with helpers for spans,
// attributes and context propagation. It is safe for concurrent use.
type Tracer struct {
	provider *sdktrace.TracerProvider
	logger   logger.Logger
}

// NewClient builds the tracer provider and installs it as the global
// provider together with the W3C trace-context and baggage propagators.
//
// When cfg.EnableExport is set spans are batched to an OTLP HTTP exporter.
//
// Example:
//
//	tr, err := tracer.NewClient(tracer.Config{ServiceName: "rag", EnableExport: true}, log)
//	if err != nil {
//	    return err
//	}
//	ctx, span := tr.StartSpan(ctx, "pipeline.search")
//	defer span.End()
func NewClient(cfg Config, log logger.Logger) (*Tracer, error) {
	var options []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
		if err != nil {
			return nil, fmt.Errorf("tracer: create otlp exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	options = append(options, sdktrace.WithResource(resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Info("tracer initialized", nil, map[string]interface{}{
		"service": cfg.ServiceName,
		"export":  cfg.EnableExport,
	})

	return &Tracer{provider: tp, logger: log}, nil
}

// Shutdown flushes pending spans and releases the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// NewNop returns a tracer that records nothing and leaves the global
// provider untouched.
func NewNop() *Tracer {
	return &Tracer{provider: sdktrace.NewTracerProvider(), logger: logger.NewNop()}
}
