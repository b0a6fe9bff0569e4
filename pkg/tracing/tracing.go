// pkg/tracing/tracing.go
package tracing

import (
	"context"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const ServiceName = "spupload"

// Endpoint returns the configured OTLP traces endpoint, if any.
func Endpoint() string {
	if e := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); e != "" {
		return e
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Init installs an OTLP/HTTP tracer provider when an endpoint is configured.
// The returned shutdown flushes pending spans and is always safe to call.
// enabled is false when tracing stays a no-op.
func Init(ctx context.Context, log *zap.SugaredLogger) (shutdown func(context.Context) error, enabled bool) {
	noop := func(context.Context) error { return nil }
	endpoint := Endpoint()
	if endpoint == "" {
		return noop, false
	}
	opts := []otlptracehttp.Option{}
	if strings.HasPrefix(strings.ToLower(endpoint), "http://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		log.Warnw("tracing: exporter init failed, tracing disabled", "err", err)
		return noop, false
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(ServiceName)))
	if err != nil {
		log.Warnw("tracing: resource init failed, tracing disabled", "err", err)
		return noop, false
	}
	tp := trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res))
	otel.SetTracerProvider(tp)
	log.Infow("tracing enabled", "endpoint", endpoint)
	return tp.Shutdown, true
}

// Transport instruments outbound HTTP calls when tracing is enabled.
func Transport(base http.RoundTripper, enabled bool) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !enabled {
		return base
	}
	return otelhttp.NewTransport(base)
}

// Tracer is the tracer used for run and per-file spans. It is a no-op until
// Init installs a provider.
func Tracer() oteltrace.Tracer { return otel.Tracer(ServiceName) }
