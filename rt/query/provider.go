package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/result"
)

// Provider определяет контракт звена цепочки обработки запроса.
type Provider interface {
	// Query выполняет запрос свойства.
	Query(ctx context.Context, req Request) error

	// Shutdown корректно завершает работу провайдера.
	Shutdown(ctx context.Context) error
}

// localProvider - внутрипроцессная реализация протокола поверх реестра адаптеров.
// Провайдер не хранит изменяемого состояния и безопасен для одновременных вызовов.
type localProvider struct {
	adapters *adapter.Registry
}

// NewLocalProvider создает провайдер, диспетчеризующий запросы в адаптеры реестра.
func NewLocalProvider(adapters *adapter.Registry) (*localProvider, error) {
	if adapters == nil {
		return nil, errors.New("реестр адаптеров не может быть nil")
	}
	return &localProvider{adapters: adapters}, nil
}

// Query проверяет запрос, получает значение у бэкенда объекта, согласует
// размер и копирует результат в буфер вызывающей стороны.
// При любой ошибке буфер не изменяется.
func (p *localProvider) Query(ctx context.Context, req Request) error {
	d, err := Validate(req)
	if err != nil {
		return err
	}

	data, err := p.fetch(ctx, req, d)
	if err != nil {
		return err
	}

	return negotiate(req, d, data)
}

// fetch находит адаптер по привязке объекта и переводит нативное значение
// в форму, объявленную реестром.
func (p *localProvider) fetch(ctx context.Context, req Request, d property.Descriptor) ([]byte, error) {
	op := req.Op()
	obj := req.Object.Object()

	a, ok := p.adapters.Lookup(obj.Backend)
	if !ok {
		return nil, result.New(op, result.BackendFailure, fmt.Sprintf("адаптер для бэкенда '%s' не зарегистрирован", obj.Backend))
	}

	target := adapter.Target{Object: obj}
	if dev := req.Device.Object(); dev != nil {
		target.Device = dev
		if dev.Backend != obj.Backend {
			return nil, result.New(op, result.InvalidNullHandle,
				fmt.Sprintf("устройство бэкенда '%s' передано вместе с объектом бэкенда '%s'", dev.Backend, obj.Backend))
		}
	}

	if !adapter.Supports(a, d) {
		return nil, result.New(op, result.InvalidEnumeration,
			fmt.Sprintf("свойство %s не поддерживается бэкендом '%s'", d.Name, obj.Backend))
	}

	native, err := adapter.Fetch(ctx, a, target, d)
	if errors.Is(err, adapter.ErrUnsupported) {
		return nil, result.New(op, result.InvalidEnumeration,
			fmt.Sprintf("свойство %s не поддерживается бэкендом '%s'", d.Name, obj.Backend))
	}
	if err != nil {
		return nil, result.Backend(op, err)
	}

	data, err := encode(native, d)
	if err != nil {
		return nil, &result.Error{Code: result.BackendFailure, Op: op, Reason: "некорректное нативное значение", Err: err}
	}
	return data, nil
}

// negotiate реализует двухфазное соглашение о размере.
func negotiate(req Request, d property.Descriptor, data []byte) error {
	if req.Value != nil {
		if req.Size < len(data) {
			return result.New(req.Op(), result.InvalidSize,
				fmt.Sprintf("емкость %d меньше размера значения %s (%d)", req.Size, d.Name, len(data)))
		}
		copy(req.Value, data)
	}
	if req.SizeRet != nil {
		*req.SizeRet = len(data)
	}
	return nil
}

// Shutdown завершает работу всех адаптеров реестра.
func (p *localProvider) Shutdown(ctx context.Context) error {
	return p.adapters.Shutdown(ctx)
}
