// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-fwrest/framework"
)

// ErrorStatus is implemented by errors that carry their own HTTP
// status code.
type ErrorStatus interface {
	// HTTPStatus returns the response status for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode when the
// Content-Type names no known representation, or one of the wrong
// kind.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("unsupported media type %q", e.Type)
}

// HTTPStatus always returns 415 Unsupported Media Type.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound wraps an error that means the requested resource does
// not exist.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus always returns 404 Not Found.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest wraps an error found in the request headers or
// query.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus always returns 400 Bad Request.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// DecodeError is returned when a representation cannot be decoded.
// Path names the offending field, as in "bundle.registeredServices[2]",
// and is empty if the document itself is malformed.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decoding: %v", e.Err)
	}
	return fmt.Sprintf("decoding %v: %v", e.Path, e.Err)
}

// HTTPStatus always returns 400 Bad Request.
func (e *DecodeError) HTTPStatus() int {
	return http.StatusBadRequest
}

// StatusOf picks the HTTP status for an error returned by a handler.
func StatusOf(err error) int {
	if errS, hasStatus := err.(ErrorStatus); hasStatus {
		return errS.HTTPStatus()
	}
	switch err.(type) {
	case framework.ErrNoSuchBundle, framework.ErrNoSuchService:
		return http.StatusNotFound
	case framework.ErrInvalidFilter, framework.ErrInvalidBundle:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is a short description of the failure.  This may be
	// the name of a framework package error, the string "panic",
	// or the string "error" for some other kind of error.
	Error string

	// Message is a human-readable description of the failure.
	Message string

	// Value carries the id named by ErrNoSuchBundle,
	// ErrNoSuchService and ErrInvalidState.
	Value int64

	// Subject is the location of ErrInvalidBundle or the filter
	// string of ErrInvalidFilter.
	Subject string

	// Reason is the underlying cause of ErrInvalidBundle and
	// ErrInvalidFilter.
	Reason string

	// State is the requested state of ErrInvalidState.
	State int64

	// Stack is a Go stack trace, for panics only.
	Stack string
}

// FromError fills in e from an error value, naming the well-known
// framework errors in e.Error so that clients can rebuild them.
func (e *ErrorResponse) FromError(err error) {
	if e.Error == "" {
		e.Error = "error"
	}
	if e.Message == "" {
		e.Message = err.Error()
	}
	switch err {
	case framework.ErrSystemBundle:
		e.Error = "ErrSystemBundle"
	case framework.ErrBadStartLevel:
		e.Error = "ErrBadStartLevel"
	case framework.ErrNoObjectClass:
		e.Error = "ErrNoObjectClass"
	}
	switch et := err.(type) {
	case framework.ErrNoSuchBundle:
		e.Error = "ErrNoSuchBundle"
		e.Value = et.ID
	case framework.ErrNoSuchService:
		e.Error = "ErrNoSuchService"
		e.Value = et.ID
	case framework.ErrInvalidFilter:
		e.Error = "ErrInvalidFilter"
		e.Subject = et.Filter
		e.Reason = et.Reason
	case framework.ErrInvalidBundle:
		e.Error = "ErrInvalidBundle"
		e.Subject = et.Location
		e.Reason = et.Reason
	case framework.ErrInvalidState:
		e.Error = "ErrInvalidState"
		e.Value = et.ID
		e.State = int64(et.State)
	case *DecodeError:
		e.Error = "DecodeError"
	case ErrNotFound:
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	}
}

// IsFrameworkError reports whether e names one of the framework
// package errors, so that ToError rebuilds it exactly.
func (e *ErrorResponse) IsFrameworkError() bool {
	switch e.Error {
	case "ErrSystemBundle", "ErrBadStartLevel", "ErrNoObjectClass",
		"ErrNoSuchBundle", "ErrNoSuchService", "ErrInvalidBundle",
		"ErrInvalidFilter", "ErrInvalidState":
		return true
	}
	return false
}

// ToError rebuilds the framework error e describes, or a plain error
// carrying e.Message.
func (e *ErrorResponse) ToError() error {
	switch e.Error {
	case "ErrSystemBundle":
		return framework.ErrSystemBundle
	case "ErrBadStartLevel":
		return framework.ErrBadStartLevel
	case "ErrNoObjectClass":
		return framework.ErrNoObjectClass
	case "ErrNoSuchBundle":
		return framework.ErrNoSuchBundle{ID: e.Value}
	case "ErrNoSuchService":
		return framework.ErrNoSuchService{ID: e.Value}
	case "ErrInvalidBundle":
		return framework.ErrInvalidBundle{Location: e.Subject, Reason: e.Reason}
	case "ErrInvalidFilter":
		return framework.ErrInvalidFilter{Filter: e.Subject, Reason: e.Reason}
	case "ErrInvalidState":
		return framework.ErrInvalidState{ID: e.Value, State: framework.BundleState(e.State)}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic fills in e from a value passed to panic, including the
// current goroutine's stack.  Call it from the deferred function that
// recovered.
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if err, isError := obj.(error); isError {
		e.Message = err.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	e.Stack = string(buf[:n])
}
