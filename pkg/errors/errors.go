package errors

import (
	"errors"
	"fmt"
)

// ModelError is the interface implemented by all object-model errors.
type ModelError interface {
	error          // Embed the standard error interface
	Kind() string  // e.g., "Cycle", "NotConfigurable", "ReadOnly"
	// Message returns the specific error message without the kind prefix.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// CycleError is reported when relinking a prototype would make the
// prototype chain circular. The offending link is never applied.
type CycleError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("Cycle Error: %s", e.Msg)
}
func (e *CycleError) Kind() string    { return "Cycle" }
func (e *CycleError) Message() string { return e.Msg }
func (e *CycleError) Unwrap() error   { return e.Cause }
func (e *CycleError) CausedBy(cause error) *CycleError {
	e.Cause = cause
	return e
}

// NotConfigurableError is reported when a property definition would
// overwrite a non-configurable descriptor with an incompatible one.
// No partial mutation occurs.
type NotConfigurableError struct {
	Prop  string
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *NotConfigurableError) Error() string {
	return fmt.Sprintf("NotConfigurable Error: property '%s': %s", e.Prop, e.Msg)
}
func (e *NotConfigurableError) Kind() string    { return "NotConfigurable" }
func (e *NotConfigurableError) Message() string { return e.Msg }
func (e *NotConfigurableError) Unwrap() error   { return e.Cause }
func (e *NotConfigurableError) CausedBy(cause error) *NotConfigurableError {
	e.Cause = cause
	return e
}

// ReadOnlyError is reported by strict-mode writes that hit a
// setter-less accessor or a non-writable data property. In sloppy mode
// the same writes are silently dropped instead.
type ReadOnlyError struct {
	Prop  string
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("ReadOnly Error: property '%s': %s", e.Prop, e.Msg)
}
func (e *ReadOnlyError) Kind() string    { return "ReadOnly" }
func (e *ReadOnlyError) Message() string { return e.Msg }
func (e *ReadOnlyError) Unwrap() error   { return e.Cause }
func (e *ReadOnlyError) CausedBy(cause error) *ReadOnlyError {
	e.Cause = cause
	return e
}

// NotCallableError is reported when a value used as a getter, setter
// or initializer is not callable.
type NotCallableError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("NotCallable Error: %s", e.Msg)
}
func (e *NotCallableError) Kind() string    { return "NotCallable" }
func (e *NotCallableError) Message() string { return e.Msg }
func (e *NotCallableError) Unwrap() error   { return e.Cause }

// --- Helpers for creating errors ---

func NewCycleError(format string, args ...interface{}) *CycleError {
	return &CycleError{Msg: fmt.Sprintf(format, args...)}
}

func NewNotConfigurableError(prop, format string, args ...interface{}) *NotConfigurableError {
	return &NotConfigurableError{Prop: prop, Msg: fmt.Sprintf(format, args...)}
}

func NewReadOnlyError(prop, format string, args ...interface{}) *ReadOnlyError {
	return &ReadOnlyError{Prop: prop, Msg: fmt.Sprintf(format, args...)}
}

func NewNotCallableError(format string, args ...interface{}) *NotCallableError {
	return &NotCallableError{Msg: fmt.Sprintf(format, args...)}
}

// --- Predicates ---

func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

func IsNotConfigurableError(err error) bool {
	var nce *NotConfigurableError
	return errors.As(err, &nce)
}

func IsReadOnlyError(err error) bool {
	var roe *ReadOnlyError
	return errors.As(err, &roe)
}

func IsNotCallableError(err error) bool {
	var nce *NotCallableError
	return errors.As(err, &nce)
}
