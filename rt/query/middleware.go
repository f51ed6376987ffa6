package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/result"
)

const (
	instrumentationName    = "github.com/x-research-team/unirt/rt/query"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "unirt.query."
)

// Middleware определяет интерфейс для middleware диспетчера запросов.
type Middleware interface {
	Wrap(next Provider) Provider
}

// MiddlewareFunc является адаптером, позволяющим использовать обычные функции как middleware.
type MiddlewareFunc func(next Provider) Provider

// Wrap реализует интерфейс Middleware.
func (f MiddlewareFunc) Wrap(next Provider) Provider {
	return f(next)
}

// loggingMiddleware реализует Middleware для логирования запросов.
type loggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware создает новое middleware для логирования.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		return &noopMiddleware{}
	}
	return &loggingMiddleware{
		logger: logger,
	}
}

// Wrap оборачивает провайдер для добавления логирования.
func (m *loggingMiddleware) Wrap(next Provider) Provider {
	return &loggingProvider{
		next:   next,
		logger: m.logger,
	}
}

// loggingProvider - это обертка над провайдером, которая добавляет логирование.
type loggingProvider struct {
	next   Provider
	logger *slog.Logger
}

// Query логирует и выполняет запрос. Успешные вызовы логируются на уровне Debug,
// поскольку запросы свойств выполняются часто.
func (p *loggingProvider) Query(ctx context.Context, req Request) (err error) {
	attrs := requestAttrs(req)
	p.logger.LogAttrs(ctx, slog.LevelDebug, "запрос свойства", attrs...)

	startTime := time.Now()
	defer func() {
		if err != nil {
			p.logger.LogAttrs(ctx, slog.LevelWarn, "ошибка запроса свойства",
				append(attrs,
					slog.String("code", result.CodeOf(err).String()),
					slog.Any("error", err),
					slog.Duration("duration", time.Since(startTime)),
				)...,
			)
		}
	}()

	return p.next.Query(ctx, req)
}

// Shutdown делегирует вызов следующему провайдеру в цепочке.
func (p *loggingProvider) Shutdown(ctx context.Context) error {
	p.logger.Info("завершение работы диспетчера запросов")
	return p.next.Shutdown(ctx)
}

// metricsMiddleware реализует Middleware для сбора метрик OpenTelemetry.
type metricsMiddleware struct {
	queryCounter metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetricsMiddleware создает новое middleware для сбора метрик.
func NewMetricsMiddleware(provider metric.MeterProvider) Middleware {
	if provider == nil {
		return &noopMiddleware{}
	}

	meter := provider.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))

	queryCounter, err := meter.Int64Counter(
		metricKeyPrefix+"count",
		metric.WithDescription("Количество запросов свойств"),
		metric.WithUnit("{queries}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать счетчик query.count: %v", err))
	}

	durationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"duration",
		metric.WithDescription("Длительность запроса свойства"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму query.duration: %v", err))
	}

	return &metricsMiddleware{
		queryCounter: queryCounter,
		durationHist: durationHist,
	}
}

// Wrap оборачивает провайдер для добавления сбора метрик.
func (m *metricsMiddleware) Wrap(next Provider) Provider {
	return &metricsProvider{
		next:         next,
		queryCounter: m.queryCounter,
		durationHist: m.durationHist,
	}
}

// metricsProvider - это обертка над провайдером, которая собирает метрики.
type metricsProvider struct {
	next         Provider
	queryCounter metric.Int64Counter
	durationHist metric.Float64Histogram
}

// Query собирает метрики и выполняет запрос.
func (p *metricsProvider) Query(ctx context.Context, req Request) error {
	startTime := time.Now()
	err := p.next.Query(ctx, req)
	duration := float64(time.Since(startTime).Microseconds()) / 1000

	attrs := metric.WithAttributes(
		attribute.String("object.kind", req.Kind.String()),
		attribute.String("property", propertyName(req.Kind, req.Property)),
		attribute.String("status", result.CodeOf(err).String()),
	)
	p.queryCounter.Add(ctx, 1, attrs)
	p.durationHist.Record(ctx, duration, attrs)

	return err
}

// Shutdown делегирует вызов.
func (p *metricsProvider) Shutdown(ctx context.Context) error {
	return p.next.Shutdown(ctx)
}

// tracingMiddleware реализует Middleware для распределенной трассировки OpenTelemetry.
type tracingMiddleware struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracingMiddleware создает новое middleware для трассировки.
func NewTracingMiddleware(tp trace.TracerProvider, p propagation.TextMapPropagator) Middleware {
	if tp == nil {
		return &noopMiddleware{}
	}

	if p == nil {
		p = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}

	return &tracingMiddleware{
		tracer: tp.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(instrumentationVersion),
		),
		propagator: p,
	}
}

// Wrap оборачивает провайдер для добавления логики трассировки.
func (m *tracingMiddleware) Wrap(next Provider) Provider {
	return &tracingProvider{
		next:       next,
		tracer:     m.tracer,
		propagator: m.propagator,
	}
}

// tracingProvider - это обертка над провайдером, которая управляет спанами трассировки.
type tracingProvider struct {
	next       Provider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Query создает спан для запроса, извлекая родительский контекст из метаданных запроса.
func (p *tracingProvider) Query(ctx context.Context, req Request) (err error) {
	if req.Metadata != nil {
		ctx = p.propagator.Extract(ctx, propagation.MapCarrier(req.Metadata))
	}

	ctx, span := p.tracer.Start(ctx, req.Op(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("object.kind", req.Kind.String()),
			attribute.String("property", propertyName(req.Kind, req.Property)),
			attribute.Int("capacity", req.Size),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result.CodeOf(err).String())
		}
		span.End()
	}()

	return p.next.Query(ctx, req)
}

// Shutdown делегирует вызов.
func (p *tracingProvider) Shutdown(ctx context.Context) error {
	return p.next.Shutdown(ctx)
}

// applyMiddlewares применяет цепочку middleware к базовому провайдеру.
func applyMiddlewares(provider Provider, middlewares ...Middleware) Provider {
	p := provider
	for i := len(middlewares) - 1; i >= 0; i-- {
		p = middlewares[i].Wrap(p)
	}
	return p
}

// noopMiddleware представляет собой пустое middleware.
type noopMiddleware struct{}

// Wrap просто возвращает следующий провайдер без изменений.
func (m *noopMiddleware) Wrap(next Provider) Provider {
	return next
}

// requestAttrs собирает атрибуты запроса для логирования.
func requestAttrs(req Request) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("op", req.Op()),
		slog.String("property", propertyName(req.Kind, req.Property)),
		slog.Int("capacity", req.Size),
	}
	if !handle.IsNull(req.Object) {
		obj := req.Object.Object()
		attrs = append(attrs,
			slog.String("backend", string(obj.Backend)),
			slog.String("object_id", obj.ID.String()),
		)
	}
	return attrs
}
