// Package result определяет таксономию ошибок протокола запроса свойств.
// Каждая ошибка несет код, по которому вызывающая сторона может
// классифицировать сбой через errors.Is, не разбирая текст сообщения.
package result

import (
	"errors"
	"fmt"
)

// Code - это код результата вызова, совместимый по смыслу с кодами
// кросс-платформенного API среды выполнения.
type Code uint32

const (
	// Success означает успешное выполнение вызова.
	Success Code = iota
	// InvalidNullHandle означает, что обязательный дескриптор объекта отсутствует.
	InvalidNullHandle
	// InvalidEnumeration означает, что идентификатор свойства неизвестен
	// или не поддерживается бэкендом объекта.
	InvalidEnumeration
	// InvalidNullPointer означает, что не передан ни буфер, ни указатель на размер,
	// либо передана ненулевая емкость без буфера.
	InvalidNullPointer
	// InvalidSize означает, что емкость буфера не соответствует размеру свойства.
	InvalidSize
	// BackendFailure означает, что бэкенд не смог обслужить провалидированный запрос.
	BackendFailure
)

var codeNames = map[Code]string{
	Success:            "SUCCESS",
	InvalidNullHandle:  "ERROR_INVALID_NULL_HANDLE",
	InvalidEnumeration: "ERROR_INVALID_ENUMERATION",
	InvalidNullPointer: "ERROR_INVALID_NULL_POINTER",
	InvalidSize:        "ERROR_INVALID_SIZE",
	BackendFailure:     "ERROR_BACKEND_FAILURE",
}

// String возвращает каноническое имя кода.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Error - это типизированный сбой вызова.
type Error struct {
	Code   Code
	Op     string // операция, например "KernelGetSubGroupInfo"
	Reason string // уточнение, например "device lost"
	Err    error  // исходная ошибка бэкенда
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap возвращает исходную ошибку бэкенда.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, что позволяет использовать
// errors.Is(err, result.ErrInvalidSize) для любых экземпляров с тем же кодом.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Эталонные ошибки для сравнения через errors.Is.
var (
	ErrNullHandle         = &Error{Code: InvalidNullHandle}
	ErrInvalidEnumeration = &Error{Code: InvalidEnumeration}
	ErrInvalidNullPointer = &Error{Code: InvalidNullPointer}
	ErrInvalidSize        = &Error{Code: InvalidSize}
	ErrBackendFailure     = &Error{Code: BackendFailure}
)

// New создает ошибку с заданным кодом и пояснением.
func New(op string, code Code, reason string) *Error {
	return &Error{Code: code, Op: op, Reason: reason}
}

// Backend оборачивает ошибку бэкенда в BackendFailure.
// Если err уже является *Error, он возвращается без изменений.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Code: BackendFailure, Op: op, Err: err}
}

// CodeOf извлекает код результата из ошибки.
// Для nil возвращается Success, для посторонних ошибок - BackendFailure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return BackendFailure
}
