package errors

import (
	"errors"
	"fmt"
)

const (
	OrderNotFoundError = "Order not found"
	StayNotFoundError  = "Stay not found"
	NotYourOrderError  = "Not your order"
	OrderSettledError  = "Can't update order"
	DatabaseError      = "Database error"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrStore     = errors.New("store failure")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.cause)
	}
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

func (e *kindError) Cause() error {
	return e.cause
}

func NewNotFoundError(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

func NewForbiddenError(msg string) error {
	return &kindError{kind: ErrForbidden, msg: msg}
}

func NewConflictError(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

func NewStoreError(msg string, cause error) error {
	return &kindError{kind: ErrStore, msg: msg, cause: cause}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}
