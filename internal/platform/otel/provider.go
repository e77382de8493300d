// Package otel configures opt-in OpenTelemetry tracing for traitorops commands.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/traitorops/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName scopes spans emitted by traitorops packages.
const InstrumentationName = "github.com/louisbranch/traitorops"

// Settings is the tracing configuration read from the environment.
type Settings struct {
	Endpoint    string  `env:"OTEL_ENDPOINT"`
	Enabled     string  `env:"OTEL_ENABLED"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether a provider should be registered.
func (s Settings) Active() bool {
	return s.Endpoint != "" && !strings.EqualFold(s.Enabled, "false")
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when TRAITOROPS_OTEL_ENDPOINT is empty or
// TRAITOROPS_OTEL_ENABLED is "false", Setup returns a no-op shutdown
// function and no global provider is registered.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return noop, err
	}
	if !settings.Active() {
		return noop, nil
	}
	if settings.SampleRatio <= 0 || settings.SampleRatio > 1 {
		return noop, fmt.Errorf("otel sample ratio must be in (0, 1], got %v", settings.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// Tracer returns the global tracer for traitorops instrumentation.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
