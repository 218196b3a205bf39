// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// Error represents a JSON-RPC error.
type Error struct {
	// Code a number indicating the error type that occurred.
	Code Code `json:"code"`

	// Message a string providing a short description of the error.
	Message string `json:"message"`

	// Data a Primitive or Structured value that contains additional
	// information about the error. Can be omitted.
	Data *RawMessage `json:"data,omitempty"`

	frame xerrors.Frame
	err   error
}

// compile time check whether the Error implements error interface.
var _ error = (*Error)(nil)

// Error implements error.Error.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Format implements fmt.Formatter.
func (e *Error) Format(s fmt.State, c rune) {
	xerrors.FormatError(e, s, c)
}

// FormatError implements xerrors.Formatter.
func (e *Error) FormatError(p xerrors.Printer) (next error) {
	if e.Message == "" {
		p.Printf("code=%v", e.Code)
	} else {
		p.Printf("%s (code=%v)", e.Message, e.Code)
	}
	e.frame.Format(p)

	return e.err
}

// Unwrap implements errors.Unwrap.
//
// Returns the error underlying the receiver, which may be nil.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target carries the same error code as e, so that
// errors.Is matches any Error of a given code against the predeclared
// wire errors below.
func (e *Error) Is(target error) bool {
	var werr *Error
	if !errors.As(target, &werr) {
		return false
	}
	return e.Code == werr.Code
}

// NewError builds a Error struct for the suppied code and message.
func NewError(c Code, message string) *Error {
	e := &Error{
		Code:    c,
		Message: message,
		frame:   xerrors.Caller(1),
	}
	e.err = xerrors.New(e.Message)

	return e
}

// Errorf builds a Error struct for the suppied code, format and args.
func Errorf(c Code, format string, args ...interface{}) *Error {
	e := &Error{
		Code:    c,
		Message: fmt.Sprintf(format, args...),
		frame:   xerrors.Caller(1),
	}
	e.err = xerrors.New(e.Message)

	return e
}

// toError converts an arbitrary handler error into the wire Error form.
func toError(err error) *Error {
	if err == nil {
		// no error, the response is complete
		return nil
	}

	var wrapped *Error
	if errors.As(err, &wrapped) {
		// already a wire error, forward it verbatim
		return wrapped
	}

	return &Error{
		Code:    InternalError,
		Message: err.Error(),
	}
}

// constErr represents a error constant.
type constErr string

// compile time check whether the constErr implements error interface.
var _ error = (*constErr)(nil)

// Error implements error.Error.
func (e constErr) Error() string { return string(e) }

// This file contains the Go forms of the wire specification.
//
// See http://www.jsonrpc.org/specification for details.
//
// list of JSON-RPC errors.
var (
	// ErrUnknown should be used for all non coded errors.
	ErrUnknown = NewError(UnknownError, "JSON-RPC unknown error")

	// ErrParse is used when invalid JSON was received by the server.
	ErrParse = NewError(ParseError, "JSON-RPC parse error")

	// ErrInvalidRequest is used when the JSON sent is not a valid Request object.
	ErrInvalidRequest = NewError(InvalidRequest, "JSON-RPC invalid request")

	// ErrMethodNotFound should be returned by the handler when the method does
	// not exist / is not available.
	ErrMethodNotFound = NewError(MethodNotFound, "Method not found")

	// ErrInvalidParams should be returned by the handler when method
	// parameter(s) were invalid.
	ErrInvalidParams = NewError(InvalidParams, "JSON-RPC invalid params")

	// ErrInternal is used for all unclassified handler failures.
	ErrInternal = NewError(InternalError, "JSON-RPC internal error")

	// ErrDuplicateMethod is returned by Registry.Bind when the method name
	// already has a handler.
	ErrDuplicateMethod = constErr("method already bound")

	// ErrCallCancelled is the failure delivered to a pending call that was
	// cancelled before a response arrived.
	ErrCallCancelled = constErr("call cancelled")

	// ErrNotResponse is returned by Client.Receive when the payload is a
	// well formed message but not a response.
	ErrNotResponse = constErr("payload is not a response")
)
