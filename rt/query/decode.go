package query

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// Uint32 читает скалярное 32-битное значение из заполненного буфера.
func Uint32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("буфер длиной %d короче 4 байт", len(b))
	}
	return byteOrder.Uint32(b), nil
}

// Uint64 читает скалярное 64-битное значение из заполненного буфера.
func Uint64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("буфер длиной %d короче 8 байт", len(b))
	}
	return byteOrder.Uint64(b), nil
}

// String читает строку до первого нулевого байта.
func String(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// Uint32s читает массив 32-битных элементов.
func Uint32s(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("длина буфера %d не кратна 4", len(b))
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = byteOrder.Uint32(b[i*4:])
	}
	return out, nil
}

// Uint64s читает массив 64-битных элементов.
func Uint64s(b []byte) ([]uint64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("длина буфера %d не кратна 8", len(b))
	}
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = byteOrder.Uint64(b[i*8:])
	}
	return out, nil
}

// UUID читает 16-байтовый идентификатор.
func UUID(b []byte) (uuid.UUID, error) {
	return uuid.FromBytes(b)
}
