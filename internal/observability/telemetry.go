// Package observability настраивает трассировку OpenTelemetry для движка.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/automata/internal/logging"
)

// ShutdownFunc сбрасывает накопленные спаны и останавливает провайдер
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// При enabled=false глобальный провайдер не трогается (otel по умолчанию no-op),
// а возвращаемый shutdown ничего не делает.
func InitTelemetry(ctx context.Context, serviceName string, enabled bool) (ShutdownFunc, error) {
	if !enabled {
		logging.Debug("OpenTelemetry выключен")
		return noopShutdown, nil
	}

	// OTLP HTTP экспортер (по умолчанию localhost:4318, настраивается OTEL_EXPORTER_OTLP_*)
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	return install(ctx, serviceName, sdktrace.WithBatcher(exp))
}

func install(ctx context.Context, serviceName string, opts ...sdktrace.TracerProviderOption) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(append(opts, sdktrace.WithResource(res))...)
	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (service=%s)", serviceName)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
