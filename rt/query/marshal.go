package query

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-reflect"

	"github.com/x-research-team/unirt/rt/property"
)

// byteOrder - порядок байт значений в буфере вызывающей стороны.
var byteOrder = binary.NativeEndian

// encode переводит нативное значение бэкенда в байтовое представление,
// объявленное дескриптором. Сужение с потерей данных является ошибкой.
func encode(native any, d property.Descriptor) ([]byte, error) {
	if native == nil {
		return nil, fmt.Errorf("бэкенд вернул пустое значение для %s", d.Name)
	}

	switch d.Shape {
	case property.ShapeScalar:
		n, err := integer(native)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		buf := make([]byte, d.Size)
		if err := putUint(buf, n); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		return buf, nil

	case property.ShapeStruct:
		raw, err := rawBytes(native)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		if len(raw) != d.Size {
			return nil, fmt.Errorf("%s: размер структуры %d, ожидался %d", d.Name, len(raw), d.Size)
		}
		return raw, nil

	case property.ShapeString:
		s, err := text(native)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		buf := make([]byte, len(s)+1)
		copy(buf, s)
		return buf, nil

	case property.ShapeArray:
		elems, err := integers(native)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		buf := make([]byte, len(elems)*d.ElemSize)
		for i, n := range elems {
			if err := putUint(buf[i*d.ElemSize:(i+1)*d.ElemSize], n); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", d.Name, i, err)
			}
		}
		return buf, nil
	}

	return nil, fmt.Errorf("%s: неизвестная форма %s", d.Name, d.Shape)
}

// putUint записывает n в буфер шириной 4 или 8 байт.
func putUint(buf []byte, n uint64) error {
	switch len(buf) {
	case 4:
		if n > math.MaxUint32 {
			return fmt.Errorf("значение %d не помещается в 32 бита", n)
		}
		byteOrder.PutUint32(buf, uint32(n))
	case 8:
		byteOrder.PutUint64(buf, n)
	default:
		return fmt.Errorf("неподдерживаемая ширина %d", len(buf))
	}
	return nil
}

// integer нормализует нативное целое, логическое значение или перечисление.
func integer(native any) (uint64, error) {
	if e, ok := native.(property.PublicEnum); ok {
		return uint64(e.Public()), nil
	}

	v := reflect.ValueOf(native)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < 0 {
			return 0, fmt.Errorf("отрицательное значение %d", n)
		}
		return uint64(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("нативный тип %T не является целым числом", native)
}

// integers нормализует срез или массив целых чисел.
func integers(native any) ([]uint64, error) {
	v := reflect.ValueOf(native)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("нативный тип %T не является массивом", native)
	}
	out := make([]uint64, v.Len())
	for i := range out {
		n, err := integer(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// rawBytes возвращает байтовое представление структуры фиксированного размера.
func rawBytes(native any) ([]byte, error) {
	if m, ok := native.(encoding.BinaryMarshaler); ok {
		return m.MarshalBinary()
	}
	if b, ok := native.([]byte); ok {
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}

	v := reflect.ValueOf(native)
	if v.Kind() == reflect.Array && v.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, v.Len())
		for i := range out {
			out[i] = byte(v.Index(i).Uint())
		}
		return out, nil
	}
	return nil, fmt.Errorf("нативный тип %T не является структурой байт", native)
}

// text нормализует нативную строку. Списки строк объединяются через пробел,
// как принято для списков расширений.
func text(native any) (string, error) {
	var s string
	switch t := native.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	case []string:
		s = strings.Join(t, " ")
	case fmt.Stringer:
		s = t.String()
	default:
		return "", fmt.Errorf("нативный тип %T не является строкой", native)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return "", fmt.Errorf("строка содержит нулевой байт")
	}
	return s, nil
}
