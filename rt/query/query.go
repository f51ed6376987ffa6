// Package query реализует обобщенный протокол запроса свойств объектов
// среды выполнения: проверку входных данных, согласование размера,
// диспетчеризацию в бэкенд и маршалинг результата в буфер вызывающей стороны.
//
// Протокол использует двухфазное соглашение. Сначала вызывающая сторона
// узнает размер значения (Size == 0, Value == nil, SizeRet != nil), затем
// выделяет буфер и получает само значение (Size > 0, Value != nil).
package query

import (
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

// Request - это один вызов протокола.
type Request struct {
	// Kind определяет пространство имен идентификатора свойства.
	Kind property.Kind
	// Object - запрашиваемый объект. Для KindKernelSubGroup это ядро.
	Object handle.Handle
	// Device требуется только для KindKernelSubGroup.
	Device *handle.Device
	// Property - идентификатор запрашиваемого свойства.
	Property property.ID
	// Size - емкость буфера Value в байтах.
	Size int
	// Value - буфер для значения; nil означает, что буфер не передан.
	Value []byte
	// SizeRet получает фактический размер значения; nil означает, что размер не запрошен.
	SizeRet *int
	// Metadata несет контекст трассировки вызывающей стороны.
	Metadata map[string]string
}

// Op возвращает имя точки входа API, соответствующей типу объекта запроса.
func (r Request) Op() string {
	return opName(r.Kind)
}

func opName(kind property.Kind) string {
	switch kind {
	case property.KindPlatform:
		return "PlatformGetInfo"
	case property.KindDevice:
		return "DeviceGetInfo"
	case property.KindKernel:
		return "KernelGetInfo"
	case property.KindKernelSubGroup:
		return "KernelGetSubGroupInfo"
	default:
		return "GetInfo"
	}
}

// handleKind возвращает тип дескриптора, ожидаемый для типа объекта запроса.
func handleKind(kind property.Kind) handle.Kind {
	switch kind {
	case property.KindPlatform:
		return handle.KindPlatform
	case property.KindDevice:
		return handle.KindDevice
	default:
		return handle.KindKernel
	}
}

// propertyName возвращает каноническое имя свойства или его числовое значение.
func propertyName(kind property.Kind, id property.ID) string {
	if d, ok := property.Lookup(kind, id); ok {
		return d.Name
	}
	return "unknown"
}
