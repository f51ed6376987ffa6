// Package handle определяет непрозрачные дескрипторы объектов среды выполнения.
//
// Дескриптор - это невладеющая ссылка на состояние, принадлежащее бэкенду.
// Слой диспетчеризации никогда не разыменовывает нативный объект: он лишь
// проверяет дескриптор на nil, читает закэшированную привязку к бэкенду и
// передает нативный объект владельцу.
package handle

import (
	"fmt"

	"github.com/google/uuid"
)

// Backend - это ключ привязки объекта к бэкенду.
type Backend string

// Kind - это тип объекта, на который ссылается дескриптор.
type Kind uint8

const (
	KindPlatform Kind = iota + 1
	KindDevice
	KindKernel
)

// String возвращает имя типа объекта.
func (k Kind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindDevice:
		return "device"
	case KindKernel:
		return "kernel"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Object - это запись таблицы дескрипторов. Привязка к бэкенду
// вычисляется один раз при создании и далее не меняется.
type Object struct {
	ID      uuid.UUID
	Kind    Kind
	Backend Backend
	Native  any
}

// Handle реализуется всеми типизированными дескрипторами.
// Object возвращает nil для нулевого дескриптора.
type Handle interface {
	Object() *Object
}

// Platform - дескриптор платформы.
type Platform struct{ obj *Object }

// Device - дескриптор устройства.
type Device struct{ obj *Object }

// Kernel - дескриптор ядра.
type Kernel struct{ obj *Object }

func (h *Platform) Object() *Object {
	if h == nil {
		return nil
	}
	return h.obj
}

func (h *Device) Object() *Object {
	if h == nil {
		return nil
	}
	return h.obj
}

func (h *Kernel) Object() *Object {
	if h == nil {
		return nil
	}
	return h.obj
}

// IsNull сообщает, является ли дескриптор нулевым, включая
// типизированный nil, упакованный в интерфейс.
func IsNull(h Handle) bool {
	return h == nil || h.Object() == nil
}

// Native извлекает нативный объект бэкенда с приведением к типу T.
func Native[T any](obj *Object) (T, error) {
	var zero T
	if obj == nil {
		return zero, fmt.Errorf("нулевой объект")
	}
	native, ok := obj.Native.(T)
	if !ok {
		return zero, fmt.Errorf("объект %s бэкенда '%s' имеет нативный тип %T, ожидался %T", obj.ID, obj.Backend, obj.Native, zero)
	}
	return native, nil
}
