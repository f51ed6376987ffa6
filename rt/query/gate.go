package query

import (
	"fmt"

	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/result"
)

// Validate проверяет запрос до обращения к любому бэкенду и возвращает
// дескриптор свойства. Функция не имеет побочных эффектов.
//
// Порядок проверок: идентификатор свойства, дескрипторы, указатели, размер.
// Принадлежность идентификатора реестру проверяется первой, поэтому
// неизвестное свойство распознается даже при нулевом дескрипторе.
func Validate(req Request) (property.Descriptor, error) {
	op := req.Op()

	d, ok := property.Lookup(req.Kind, req.Property)
	if !ok {
		return property.Descriptor{}, result.New(op, result.InvalidEnumeration,
			fmt.Sprintf("свойство %d не зарегистрировано для объектов типа '%s'", uint32(req.Property), req.Kind))
	}

	if handle.IsNull(req.Object) {
		return d, result.New(op, result.InvalidNullHandle, "не передан дескриптор объекта")
	}
	if want := handleKind(req.Kind); req.Object.Object().Kind != want {
		return d, result.New(op, result.InvalidNullHandle,
			fmt.Sprintf("передан дескриптор типа '%s', ожидался '%s'", req.Object.Object().Kind, want))
	}
	if req.Kind == property.KindKernelSubGroup {
		if handle.IsNull(req.Device) {
			return d, result.New(op, result.InvalidNullHandle, "не передан дескриптор устройства")
		}
		if req.Device.Object().Kind != handle.KindDevice {
			return d, result.New(op, result.InvalidNullHandle, "дескриптор устройства имеет другой тип")
		}
	}

	if req.Value == nil && req.SizeRet == nil {
		return d, result.New(op, result.InvalidNullPointer, "не передан ни буфер, ни указатель на размер")
	}
	if req.Size > 0 && req.Value == nil {
		return d, result.New(op, result.InvalidNullPointer, "ненулевая емкость без буфера")
	}

	switch {
	case req.Size < 0:
		return d, result.New(op, result.InvalidSize, "отрицательная емкость")
	case req.Value != nil && req.Size == 0:
		return d, result.New(op, result.InvalidSize, "буфер передан с нулевой емкостью")
	case req.Size > len(req.Value):
		return d, result.New(op, result.InvalidSize,
			fmt.Sprintf("емкость %d превышает длину буфера %d", req.Size, len(req.Value)))
	case d.Shape.Fixed() && req.Size > 0 && req.Size < d.Size:
		return d, result.New(op, result.InvalidSize,
			fmt.Sprintf("емкость %d меньше размера свойства %s (%d)", req.Size, d.Name, d.Size))
	}

	return d, nil
}
