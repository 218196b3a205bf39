// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package jrpc2 implements the JSON-RPC 2.0 message protocol as a
// transport-agnostic library.
//
// https://www.jsonrpc.org/specification
//
// The package does not move bytes itself. A Dispatcher turns one inbound
// payload into at most one response payload using the methods bound in a
// Registry, and a Client correlates outbound requests with the responses
// that eventually come back, however the host application carries the text
// between peers. Conn ties both halves to a Stream for the common duplex
// case.
//
// It is intended to be compatible with other implementations at the wire
// level.
package jrpc2 // import "github.com/duplexrpc/jrpc2"
