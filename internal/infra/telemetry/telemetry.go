// Package telemetry configures OpenTelemetry tracing for the dashboard.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/yanqian/fleet-risk-dashboard/internal/infra/config"
)

// Provider owns the process tracer provider.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewProvider installs the global tracer provider and propagator. When tracing
// is disabled the global no-op provider is left in place.
func NewProvider(cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	tc := cfg.Telemetry
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !tc.Enabled {
		return &Provider{tracer: otel.Tracer(tc.ServiceName)}, nil
	}

	exporter, err := createExporter(context.Background(), tc, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(tc)),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(tc.SampleRate))),
	)
	otel.SetTracerProvider(tp)

	logger.With("component", "telemetry").Info("tracing enabled",
		"exporter", tc.Exporter,
		"endpoint", tc.Endpoint,
		"sample_rate", tc.SampleRate,
	)
	return &Provider{provider: tp, tracer: tp.Tracer(tc.ServiceName)}, nil
}

func newResource(tc config.TelemetryConfig) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", tc.ServiceName),
		attribute.String("deployment.environment", tc.Environment),
	)
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func createExporter(ctx context.Context, tc config.TelemetryConfig, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch tc.Exporter {
	case config.ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(tc.Endpoint)}
		if tc.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case config.ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(tc.Endpoint)}
		if tc.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return stdouttrace.New(stdouttrace.WithWriter(stdout))
	}
}

// Tracer returns the tracer named after the service.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
