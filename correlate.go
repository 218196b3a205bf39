// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Sender is the externally supplied capability that carries one outgoing
// payload to the remote peer.
//
// An inline sender returns the response payload from Send and the Client
// completes the pending call itself. An out-of-band sender returns nil
// bytes, and the host application routes response payloads to
// Client.Receive separately. Both flows share the same correlation logic.
type Sender interface {
	Send(ctx context.Context, data []byte) ([]byte, error)
}

// SenderFunc type adapts a send function to implement the Sender interface.
type SenderFunc func(ctx context.Context, data []byte) ([]byte, error)

// Send implements Sender.Send.
func (f SenderFunc) Send(ctx context.Context, data []byte) ([]byte, error) {
	return f(ctx, data)
}

// PendingCall is the outcome of one request sent with Client.Send.
//
// It is resolved, rejected or cancelled exactly once, and is removed from
// the client's tracking table the instant it reaches a terminal state.
type PendingCall struct {
	id     ID
	client *Client
	done   chan struct{}
	result RawMessage
	err    error
}

// ID used for this call.
func (pc *PendingCall) ID() ID { return pc.id }

// IsReady reports whether the outcome is already available.
//
// It is guaranteed to return true for a call on which Await has already
// returned, or a call that failed to send in the first place.
func (pc *PendingCall) IsReady() bool {
	select {
	case <-pc.done:
		return true
	default:
		return false
	}
}

// Await blocks until the call completes and decodes the response value
// into result, which may be nil when the caller does not need it.
//
// A rejected call returns the remote *Error. When ctx expires first the
// call is cancelled, so a late arriving response for its id is dropped
// instead of resolving a stale caller.
func (pc *PendingCall) Await(ctx context.Context, result interface{}) error {
	select {
	case <-pc.done:

	case <-ctx.Done():
		pc.client.Cancel(pc.id)
		<-pc.done
		if errors.Is(pc.err, ErrCallCancelled) {
			return ctx.Err()
		}
	}

	if pc.err != nil {
		return pc.err
	}
	if result == nil || len(pc.result) == 0 {
		return nil
	}
	if err := pc.client.codec.Unmarshal(pc.result, result); err != nil {
		return fmt.Errorf("unmarshaling result: %w", err)
	}

	return nil
}

// Client correlates outgoing requests with the responses that come back.
//
// It allocates request identifiers from a monotonic counter, keeps one
// PendingCall per in-flight identifier, and resolves each exactly once.
// It is safe for concurrent use; responses may arrive and be matched in
// any order relative to send order.
type Client struct {
	seq    *atomic.Int64
	sender Sender
	codec  Codec
	logger *zap.Logger

	mu      sync.Mutex // protects the pending map
	pending map[ID]*PendingCall
}

// NewClient returns a Client sending through sender.
func NewClient(sender Sender, opts ...Option) *Client {
	o := newOptions(opts)

	return &Client{
		seq:     atomic.NewInt64(0),
		sender:  sender,
		codec:   o.codec,
		logger:  o.logger,
		pending: make(map[ID]*PendingCall),
	}
}

// Send issues a call for method and returns the pending outcome without
// waiting for it.
//
// The params are marshaled through the codec before sending; a marshaling
// or send failure rejects the returned call without producing wire traffic
// beyond what was already written.
func (c *Client) Send(ctx context.Context, method string, params interface{}) *PendingCall {
	pc := &PendingCall{
		client: c,
		done:   make(chan struct{}),
	}

	raw, err := c.marshalParams(params)
	if err != nil {
		pc.err = fmt.Errorf("marshaling call parameters: %w", err)
		close(pc.done)
		return pc
	}

	pc.id = Int64ID(c.seq.Add(1))

	data, err := EncodeMessage(c.codec, NewRequest(pc.id, method, raw))
	if err != nil {
		pc.err = err
		close(pc.done)
		return pc
	}

	// register before sending, otherwise racing the response
	c.mu.Lock()
	c.pending[pc.id] = pc
	c.mu.Unlock()

	c.logger.Debug(dirSend,
		zap.String("req.id", fmt.Sprintf("%q", pc.id)),
		zap.String("req.method", method),
	)

	go func() {
		resp, err := c.sender.Send(ctx, data)
		if err != nil {
			c.complete(pc.id, nil, fmt.Errorf("sending call: %w", err))
			return
		}
		if resp == nil {
			// out-of-band flow, the response reaches Receive separately
			return
		}
		if err := c.Receive(resp); err != nil {
			c.complete(pc.id, nil, err)
		}
	}()

	return pc
}

// Call issues a call for method and waits for the response, decoding its
// value into result.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	return c.Send(ctx, method, params).Await(ctx, result)
}

// Notify sends a notification for method. There is no id, no tracked state
// and no outcome to await.
func (c *Client) Notify(ctx context.Context, method string, params interface{}) error {
	raw, err := c.marshalParams(params)
	if err != nil {
		return fmt.Errorf("marshaling notify parameters: %w", err)
	}

	data, err := EncodeMessage(c.codec, NewNotification(method, raw))
	if err != nil {
		return err
	}

	c.logger.Debug(dirSend, zap.String("req.method", method))

	// a notification can produce no response, whatever an inline sender
	// returns is dropped
	if _, err := c.sender.Send(ctx, data); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	return nil
}

// Receive feeds one response payload into the correlation logic, for
// transports that deliver responses outside the sender's return path.
//
// A response whose id matches no pending call is dropped silently, that is
// not a fault. Payloads that are not responses fail with ErrNotResponse.
func (c *Client) Receive(data []byte) error {
	msg, err := DecodeMessage(c.codec, data)
	if err != nil {
		return err
	}

	resp, ok := msg.(*Response)
	if !ok {
		return ErrNotResponse
	}
	c.resolve(resp)

	return nil
}

// Cancel cancels the pending call for id, so that a late arriving response
// is dropped rather than delivered. Unknown ids are ignored.
func (c *Client) Cancel(id ID) {
	c.complete(id, nil, ErrCallCancelled)
}

// Pending reports the number of calls still awaiting a response.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// resolve completes the pending call matching resp, if any.
func (c *Client) resolve(resp *Response) {
	id := resp.ID()
	if c.complete(id, resp.Result(), resp.Err()) {
		c.logger.Debug(dirReceive, zap.String("resp.id", fmt.Sprintf("%q", id)))
		return
	}

	// late, duplicate or unrecognized response
	c.logger.Debug("dropping unmatched response", zap.String("resp.id", fmt.Sprintf("%q", id)))
}

// complete removes the pending call for id and delivers its outcome.
//
// The removal under the lock is what makes the resolution single shot: a
// response racing a cancellation can only win the entry once.
func (c *Client) complete(id ID, result RawMessage, err error) bool {
	c.mu.Lock()
	pc := c.pending[id]
	if pc != nil {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if pc == nil {
		return false
	}

	pc.result = result
	pc.err = err
	close(pc.done)

	return true
}

// failPending rejects every in-flight call, used when the underlying
// transport is gone and no response can ever arrive.
func (c *Client) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[ID]*PendingCall)
	c.mu.Unlock()

	for _, pc := range pending {
		pc.err = err
		close(pc.done)
	}
}

// marshalParams encodes params through the codec, passing RawMessage
// values through untouched. Nil params omit the params member entirely.
func (c *Client) marshalParams(params interface{}) (RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case RawMessage:
		return p, nil
	}

	data, err := c.codec.Marshal(params)
	if err != nil {
		return nil, err
	}

	return RawMessage(data), nil
}
