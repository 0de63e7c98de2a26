package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"loan-ledger/internal/pkg/config"
	"loan-ledger/internal/pkg/logger"
)

const exporterDialTimeout = 5 * time.Second

var (
	mu     sync.RWMutex
	tracer trace.Tracer
)

func noopShutdown(context.Context) error { return nil }

// Setup exports ledger spans to the OTLP collector in cfg and installs the
// global provider used by otelgin. Without a collector, or when the exporter
// cannot be built, spans stay no-op and startup carries on.
func Setup(ctx context.Context, serviceName string, cfg config.OtelConfig) (func(context.Context) error, error) {
	if cfg.CollectorURL == "" {
		return noopShutdown, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()
	exporter, err := otlptracehttp.New(dialCtx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(cfg.CollectorURL),
	)
	if err != nil {
		logger.Error("Tracing disabled, OTLP exporter unavailable", err)
		return noopShutdown, nil
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler(cfg.SamplePercent)),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	UseTracerProvider(provider, serviceName)
	return provider.Shutdown, nil
}

// sampler keeps upstream decisions and samples root spans by percent.
func sampler(percent int) sdktrace.Sampler {
	if percent >= 100 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(float64(percent) / 100))
}

// UseTracerProvider points GetTracer at tp without touching the global provider.
func UseTracerProvider(tp trace.TracerProvider, serviceName string) {
	mu.Lock()
	defer mu.Unlock()
	tracer = tp.Tracer(serviceName)
}

// GetTracer returns the tracer for loan operation spans, no-op until Setup
// or UseTracerProvider ran.
func GetTracer() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	if tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return tracer
}
