package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrLookupFailed      = errors.New("lookup failed")
	ErrTransportFailed   = errors.New("transport failed")
)

// ObjectNotFoundError reports a missing entity identified by ParamName and ID.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError reports that no object with id exists.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %v (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that is present but malformed.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError reports a malformed paramName.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside the closed interval [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError reports value outside [minValue, maxValue].
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %v, max value is %v",
		ErrValueIsOutOfRange, e.ParamName, sanitize(fmt.Sprint(e.Value)), e.Min, e.Max)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError reports a missing paramName.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// LookupError reports that an external collaborator (geocoder, router) had no
// answer for Key.
type LookupError struct {
	Resource string
	Key      string
	Cause    error
}

// NewLookupError reports that resource has nothing for key.
func NewLookupError(resource, key string) *LookupError {
	return &LookupError{Resource: resource, Key: key}
}

func NewLookupErrorWithCause(resource, key string, cause error) *LookupError {
	return &LookupError{Resource: resource, Key: key, Cause: cause}
}

func (e *LookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %q (cause: %v)", ErrLookupFailed, e.Resource, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s: %s %q", ErrLookupFailed, e.Resource, e.Key)
}

func (e *LookupError) Unwrap() error {
	return ErrLookupFailed
}

// TransportError reports a non-success acknowledgment from the event bus.
// StatusCode follows HTTP semantics even for non-HTTP transports.
type TransportError struct {
	Transport  string
	StatusCode int
	Body       string
	Cause      error
}

// NewTransportError reports a rejected send with the peer status and body.
func NewTransportError(transport string, statusCode int, body string) *TransportError {
	return &TransportError{Transport: transport, StatusCode: statusCode, Body: body}
}

func NewTransportErrorWithCause(transport string, statusCode int, cause error) *TransportError {
	body := ""
	if cause != nil {
		body = cause.Error()
	}
	return &TransportError{Transport: transport, StatusCode: statusCode, Body: body, Cause: cause}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s returned %d: %s", ErrTransportFailed, e.Transport, e.StatusCode, sanitize(e.Body))
}

// Unwrap exposes both ErrTransportFailed and the cause.
func (e *TransportError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrTransportFailed, e.Cause}
	}
	return []error{ErrTransportFailed}
}

func sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
