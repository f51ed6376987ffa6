package query

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// config собирает параметры цепочки провайдеров диспетчера запросов свойств.
type config struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagator     propagation.TextMapPropagator
	middlewares    []Middleware
}

// Option настраивает диспетчер при создании через NewDispatcher.
type Option func(*config)

// WithLogger включает middleware логирования: каждый запрос свойства
// пишется на уровне Debug, отказ с кодом результата - на уровне Warn.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracerProvider включает middleware трассировки: один спан на вызов
// точки входа (DeviceGetInfo, KernelGetSubGroupInfo и т.д.).
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = provider
	}
}

// WithMeterProvider включает middleware метрик: счетчик unirt.query.count и
// гистограмма unirt.query.duration с разбивкой по типу объекта, свойству и коду результата.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = provider
	}
}

// WithPropagator задает формат, в котором Request.Metadata несет родительский
// контекст трассировки. По умолчанию W3C TraceContext и Baggage.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagator = propagator
	}
}

// WithMiddleware добавляет собственные звенья цепочки. Они выполняются после
// логирования, метрик и трассировки, в порядке добавления, и до проверки запроса.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) {
		c.middlewares = append(c.middlewares, mw...)
	}
}
