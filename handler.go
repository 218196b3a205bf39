// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"context"
)

// Handler is the unit of behavior bound to a method name.
//
// The dispatcher decodes the request params into the value returned by
// NewParams before invoking Handle, so a handler never parses protocol
// envelopes itself. Handle returns the result to encode into a success
// response, or an error; returning a *Error forwards that exact code and
// message to the caller, any other error is reported as an internal error.
//
// For notification-style methods the result is discarded.
type Handler interface {
	// NewParams returns a fresh destination value the params payload is
	// decoded into. A *RawMessage destination receives the params still
	// serialized.
	NewParams() interface{}

	// Handle invokes the method with the decoded params.
	Handle(ctx context.Context, params interface{}) (result interface{}, err error)
}

// HandlerFunc adapts a typed function into a Handler without code
// generation: the params payload is decoded into a fresh *P for each call.
func HandlerFunc[P, R any](fn func(ctx context.Context, params *P) (R, error)) Handler {
	return funcHandler[P, R]{fn: fn}
}

type funcHandler[P, R any] struct {
	fn func(ctx context.Context, params *P) (R, error)
}

func (h funcHandler[P, R]) NewParams() interface{} { return new(P) }

func (h funcHandler[P, R]) Handle(ctx context.Context, params interface{}) (interface{}, error) {
	p, _ := params.(*P)
	return h.fn(ctx, p)
}

// NotifyFunc adapts a typed void function into a Handler for
// notification-style methods, which complete with no result.
func NotifyFunc[P any](fn func(ctx context.Context, params *P) error) Handler {
	return notifyHandler[P]{fn: fn}
}

type notifyHandler[P any] struct {
	fn func(ctx context.Context, params *P) error
}

func (h notifyHandler[P]) NewParams() interface{} { return new(P) }

func (h notifyHandler[P]) Handle(ctx context.Context, params interface{}) (interface{}, error) {
	p, _ := params.(*P)
	return nil, h.fn(ctx, p)
}

// RawHandler adapts a function that wants the params payload still
// serialized, for methods that do their own decoding.
type RawHandler func(ctx context.Context, params RawMessage) (interface{}, error)

func (h RawHandler) NewParams() interface{} { return new(RawMessage) }

func (h RawHandler) Handle(ctx context.Context, params interface{}) (interface{}, error) {
	raw, _ := params.(*RawMessage)
	if raw == nil {
		return h(ctx, nil)
	}
	return h(ctx, *raw)
}
