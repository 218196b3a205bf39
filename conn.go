// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// Conn ties a Dispatcher and a Client to one duplex Stream.
//
// Conn is bidirectional; it does not have a designated server or client
// end. Inbound requests and notifications are dispatched against the
// supplied registry, inbound responses are matched to this peer's own
// outgoing calls.
type Conn struct {
	stream     Stream
	codec      Codec
	logger     *zap.Logger
	dispatcher *Dispatcher
	client     *Client
}

// NewConn creates a connection serving registry over stream.
//
// Run must be called for calls and dispatching to make progress.
func NewConn(stream Stream, registry *Registry, opts ...Option) *Conn {
	o := newOptions(opts)

	c := &Conn{
		stream: stream,
		codec:  o.codec,
		logger: o.logger,
	}
	c.dispatcher = NewDispatcher(registry, opts...)
	// the sender only writes, responses come back through the read loop
	c.client = NewClient(SenderFunc(func(ctx context.Context, data []byte) ([]byte, error) {
		return nil, stream.Write(ctx, data)
	}), opts...)

	return c
}

// Call issues a call over the connection and waits for the response.
func (c *Conn) Call(ctx context.Context, method string, params, result interface{}) error {
	return c.client.Call(ctx, method, params, result)
}

// Send issues a call over the connection and returns the pending outcome.
func (c *Conn) Send(ctx context.Context, method string, params interface{}) *PendingCall {
	return c.client.Send(ctx, method, params)
}

// Notify sends a notification over the connection.
func (c *Conn) Notify(ctx context.Context, method string, params interface{}) error {
	return c.client.Notify(ctx, method, params)
}

// Cancel cancels one of this peer's own pending calls.
func (c *Conn) Cancel(id ID) {
	c.client.Cancel(id)
}

// Run blocks reading the stream and routing every inbound payload, until
// the stream fails or is closed. Cancelling ctx is observed between
// payloads, not inside a blocked read; close the stream to end the loop
// promptly.
//
// It must be called exactly once for each Conn. When it returns, every
// call still pending has been rejected so no caller is left awaiting a
// response that can never arrive.
func (c *Conn) Run(ctx context.Context) error {
	for {
		data, err := c.stream.Read(ctx)
		if err != nil {
			c.client.failPending(err)
			return err
		}

		// distinct payloads are independent, handle them in parallel
		go c.handle(ctx, data)
	}
}

// handle routes one inbound payload to the correlator or the dispatcher.
func (c *Conn) handle(ctx context.Context, data []byte) {
	if msg, err := DecodeMessage(c.codec, data); err == nil {
		if resp, ok := msg.(*Response); ok {
			c.client.resolve(resp)
			return
		}
	}

	// everything else, malformed payloads included, is the dispatcher's to
	// answer
	out, err := c.dispatcher.Receive(ctx, data)
	if err != nil {
		c.logger.Error("dispatching request", zap.Error(err))
		return
	}
	if out == nil {
		return
	}

	if err := c.stream.Write(ctx, out); err != nil {
		c.logger.Error("writing response", zap.Error(err))
	}
}

// IsClosingError reports if the error occurs normally during the process
// of closing a network connection.
//
// It uses imperfect heuristics that err on the side of false negatives,
// and should not be used for anything critical.
func IsClosingError(err error) bool {
	if err == nil {
		return false
	}

	// fully unwrap the error, so the following tests work.
	for wrapped := err; wrapped != nil; wrapped = errors.Unwrap(err) {
		err = wrapped
	}

	switch err {
	case io.EOF, io.ErrClosedPipe:
		return true

	default:
		// per https://github.com/golang/go/issues/4373, this error string
		// should not change, and the worst that could happen here is some
		// superfluous logging.
		return err.Error() == "use of closed network connection"
	}
}
