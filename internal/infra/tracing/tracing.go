// Package tracing sets up the OpenTelemetry tracer provider used around model calls.
package tracing

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"workflow-analyst/internal/config"
)

// Setup returns the provider to hand to traced adapters and a shutdown func.
// When tracing is disabled it returns a no-op provider.
func Setup(cfg config.TracingConfig, logger *zerolog.Logger) (trace.TracerProvider, func(context.Context) error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(sdkresource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
		sdktrace.WithBatcher(NewLogExporter(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp, tp.Shutdown
}

// LogExporter writes finished spans as debug log lines.
type LogExporter struct {
	log *zerolog.Logger
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

func NewLogExporter(logger *zerolog.Logger) *LogExporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "tracing").Logger()
	return &LogExporter{log: &l}
}

func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		ev := e.log.Debug().
			Str("span", s.Name()).
			Str("trace_id", s.SpanContext().TraceID().String()).
			Str("span_id", s.SpanContext().SpanID().String()).
			Dur("duration", s.EndTime().Sub(s.StartTime())).
			Str("status", s.Status().Code.String())
		if d := s.Status().Description; d != "" {
			ev = ev.Str("status_description", d)
		}
		for _, kv := range s.Attributes() {
			ev = ev.Str(string(kv.Key), kv.Value.Emit())
		}
		ev.Msg("span")
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error { return nil }
