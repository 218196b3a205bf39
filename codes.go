// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

// Code is an int64 error code as defined in the JSON-RPC spec.
type Code int64

// list of JSON-RPC error codes.
const (
	// ParseError is the invalid JSON was received by the server.
	// An error occurred on the server while parsing the JSON text.
	ParseError Code = -32700

	// InvalidRequest is the JSON sent is not a valid Request object.
	InvalidRequest Code = -32600

	// MethodNotFound is the method does not exist / is not available.
	MethodNotFound Code = -32601

	// InvalidParams is the invalid method parameter(s).
	InvalidParams Code = -32602

	// InternalError is the internal JSON-RPC error.
	InternalError Code = -32603

	// UnknownError should be used for all non coded errors.
	UnknownError Code = -32001

	codeServerErrorStart Code = -32099
	codeServerErrorEnd   Code = -32000
)

// Reserved reports whether c falls inside the range the JSON-RPC
// specification reserves for protocol and implementation defined errors.
//
// Application errors must use codes outside this range.
func (c Code) Reserved() bool {
	return c >= -32768 && c <= codeServerErrorEnd
}
