package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode байты не являются изображением
	ErrDecode = errors.New("image decode failed")
	// ErrValidation неверные входные данные
	ErrValidation = errors.New("validation failed")
	// ErrEmptyFingerprintSet ни один кадр не удалось обработать
	ErrEmptyFingerprintSet = errors.New("no usable frames")
	// ErrStore хранилище отказало в чтении или записи
	ErrStore = errors.New("store failure")
	// ErrItemNotFound образец с таким ID не зарегистрирован
	ErrItemNotFound = errors.New("catalog item not found")
)

// DecodeError ошибка декодирования конкретного кадра
type DecodeError struct {
	Index int // номер кадра, -1 для одиночного запроса
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
	}
	return fmt.Sprintf("frame %d: %v: %v", e.Index, ErrDecode, e.Err)
}

// WithIndex возвращает копию ошибки с номером кадра
func (e *DecodeError) WithIndex(index int) *DecodeError {
	return &DecodeError{Index: index, Err: e.Err}
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ValidationError ошибка входных данных, до любой обработки
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StoreError ошибка хранилища
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrStore, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// IsRetryable сообщает, имеет ли смысл повторить операцию позже.
// Ошибки ввода повторять бесполезно.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStore)
}
