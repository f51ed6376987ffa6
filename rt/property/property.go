// Package property содержит реестр свойств: статическую таблицу, которая
// сопоставляет пару (тип объекта, идентификатор свойства) с ожидаемой
// формой значения. Таблица строится один раз и далее только читается,
// поэтому обращения к ней не требуют блокировок.
package property

import "fmt"

// Kind - это тип объекта, свойства которого запрашиваются.
type Kind uint8

const (
	KindPlatform Kind = iota + 1
	KindDevice
	KindKernel
	// KindKernelSubGroup - конфигурация подгрупп ядра на конкретном устройстве.
	KindKernelSubGroup
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
	case KindKernelSubGroup:
		return "kernel_sub_group"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ID - идентификатор свойства в пространстве имен своего типа объекта.
type ID uint32

// ForceUint32 - зарезервированное значение, которое никогда не регистрируется
// и всегда классифицируется как неизвестное.
const ForceUint32 ID = 0x7fffffff

// Shape - форма значения свойства.
type Shape uint8

const (
	// ShapeScalar - целое число или перечисление фиксированной ширины.
	ShapeScalar Shape = iota + 1
	// ShapeStruct - структура фиксированного размера, например UUID.
	ShapeStruct
	// ShapeArray - массив переменной длины из элементов фиксированной ширины.
	ShapeArray
	// ShapeString - строка переменной длины с завершающим нулем.
	ShapeString
)

// String возвращает имя формы.
func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeStruct:
		return "struct"
	case ShapeArray:
		return "array"
	case ShapeString:
		return "string"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// Fixed сообщает, известен ли размер значения заранее.
func (s Shape) Fixed() bool {
	return s == ShapeScalar || s == ShapeStruct
}

// Descriptor описывает ожидаемую форму значения свойства.
type Descriptor struct {
	Kind  Kind
	ID    ID
	Name  string
	Shape Shape
	// Size - точный размер в байтах для фиксированных форм, 0 для переменных.
	Size int
	// ElemSize - ширина элемента массива, для строк равна 1.
	ElemSize int
}

// String возвращает имя свойства.
func (d Descriptor) String() string {
	return d.Name
}
