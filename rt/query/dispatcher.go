package query

import (
	"context"

	"github.com/x-research-team/unirt/rt/adapter"
)

// IDispatcher определяет основной интерфейс протокола запроса свойств.
type IDispatcher interface {
	// Query выполняет один вызов протокола. Метод синхронный, реентерабельный
	// и безопасен для одновременного вызова из нескольких горутин.
	Query(ctx context.Context, req Request) error

	// Shutdown корректно завершает работу диспетчера и адаптеров.
	Shutdown(ctx context.Context) error
}

// Dispatcher - реализация IDispatcher поверх цепочки провайдеров.
// После создания диспетчер не изменяется, поэтому вызовы Query не требуют блокировок.
type Dispatcher struct {
	provider Provider
}

// NewDispatcher создает диспетчер, направляющий запросы в адаптеры реестра.
// Стандартные middleware (логирование, метрики, трассировка) подключаются,
// только если соответствующий провайдер передан в опциях.
func NewDispatcher(adapters *adapter.Registry, opts ...Option) (*Dispatcher, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	provider, err := NewLocalProvider(adapters)
	if err != nil {
		return nil, err
	}

	all := []Middleware{
		NewLoggingMiddleware(cfg.logger),
		NewMetricsMiddleware(cfg.meterProvider),
		NewTracingMiddleware(cfg.tracerProvider, cfg.propagator),
	}
	all = append(all, cfg.middlewares...)

	return &Dispatcher{
		provider: applyMiddlewares(provider, all...),
	}, nil
}

// Query выполняет запрос свойства.
func (d *Dispatcher) Query(ctx context.Context, req Request) error {
	return d.provider.Query(ctx, req)
}

// Fetch выполняет двухфазный вызов: узнает размер значения, выделяет буфер
// ровно этого размера и заполняет его. Поля Size, Value и SizeRet запроса
// игнорируются. Пустой массив возвращается без второго вызова.
func (d *Dispatcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	var size int
	req.Size, req.Value, req.SizeRet = 0, nil, &size
	if err := d.Query(ctx, req); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}

	value := make([]byte, size)
	req.Size, req.Value, req.SizeRet = size, value, &size
	if err := d.Query(ctx, req); err != nil {
		return nil, err
	}
	return value[:size], nil
}

// Shutdown завершает работу цепочки провайдеров.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	return d.provider.Shutdown(ctx)
}
