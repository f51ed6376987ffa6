// Package adapter определяет контракт бэкенда для протокола запроса свойств.
//
// Бэкенд реализует только те возможности, которые поддерживает: ScalarSource
// для свойств фиксированного размера и ArraySource для массивов и строк.
// Значения возвращаются в нативном для бэкенда представлении, перевод в
// объявленную реестром форму выполняет слой маршалинга.
package adapter

import (
	"context"
	"errors"

	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

// ErrUnsupported возвращается бэкендом, если свойство известно реестру,
// но не поддерживается для объектов этого бэкенда.
var ErrUnsupported = errors.New("свойство не поддерживается бэкендом")

// Target - заимствованные ссылки на объекты запроса. Device заполнен только
// для запросов, которым нужно второе устройство (подгруппы ядра).
type Target struct {
	Object *handle.Object
	Device *handle.Object
}

// Adapter - минимальный контракт бэкенда.
type Adapter interface {
	// Backend возвращает ключ привязки, по которому объекты находят свой бэкенд.
	Backend() handle.Backend
}

// ScalarSource отдает значения свойств фиксированного размера.
type ScalarSource interface {
	Scalar(ctx context.Context, t Target, d property.Descriptor) (any, error)
}

// ArraySource отдает значения свойств переменной длины.
type ArraySource interface {
	Array(ctx context.Context, t Target, d property.Descriptor) (any, error)
}

// Capabilities - необязательная статическая проверка поддержки свойства.
type Capabilities interface {
	Supports(kind property.Kind, id property.ID) bool
}

// Enumerator - необязательная возможность перечисления нативных
// платформ и устройств бэкенда.
type Enumerator interface {
	Platforms(ctx context.Context) ([]any, error)
	Devices(ctx context.Context, platform any) ([]any, error)
}

// Closer освобождает ресурсы бэкенда.
type Closer interface {
	Close(ctx context.Context) error
}

// Supports сообщает, заявляет ли адаптер поддержку свойства. Адаптеры без
// статической таблицы возможностей считаются поддерживающими все свойства,
// для которых у них есть источник нужной формы.
func Supports(a Adapter, d property.Descriptor) bool {
	if caps, ok := a.(Capabilities); ok && !caps.Supports(d.Kind, d.ID) {
		return false
	}
	if d.Shape.Fixed() {
		_, ok := a.(ScalarSource)
		return ok
	}
	_, ok := a.(ArraySource)
	return ok
}

// Fetch запрашивает нативное значение у источника, соответствующего форме
// свойства.
func Fetch(ctx context.Context, a Adapter, t Target, d property.Descriptor) (any, error) {
	if d.Shape.Fixed() {
		src, ok := a.(ScalarSource)
		if !ok {
			return nil, ErrUnsupported
		}
		return src.Scalar(ctx, t, d)
	}
	src, ok := a.(ArraySource)
	if !ok {
		return nil, ErrUnsupported
	}
	return src.Array(ctx, t, d)
}

// KernelFactory - необязательная возможность создания нативного ядра по
// имени функции для заданного нативного устройства.
type KernelFactory interface {
	NewKernel(ctx context.Context, device any, name string) (any, error)
}
