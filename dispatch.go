// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// dirSend marks an outgoing message in the logs.
	dirSend = "send"
	// dirReceive marks an incoming message in the logs.
	dirReceive = "receive"
)

// Dispatcher routes one incoming payload to the handler bound for its
// method and produces the response payload, if any.
//
// Receive calls for distinct payloads are independent and may run fully in
// parallel; the read-mostly Registry is the only shared state.
type Dispatcher struct {
	registry *Registry
	codec    Codec
	logger   *zap.Logger
}

// NewDispatcher returns a Dispatcher serving the methods bound in registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	o := newOptions(opts)

	return &Dispatcher{
		registry: registry,
		codec:    o.codec,
		logger:   o.logger,
	}
}

// Receive handles one incoming payload.
//
// The returned bytes are the response payload for a request, or nil when
// the payload was a notification and no response must be produced. Every
// protocol level failure, malformed JSON, bad envelope shape, unbound
// method, undecodable params or a failing handler, is reported inside an
// error response, never as a Go error. The error return is non-nil only
// when the response itself cannot be encoded.
func (d *Dispatcher) Receive(ctx context.Context, data []byte) ([]byte, error) {
	msg, err := DecodeMessage(d.codec, data)
	if err != nil {
		d.logger.Debug(dirReceive, zap.Error(err))
		if errors.Is(err, ErrParse) {
			// no id can be trusted out of unparseable text
			return d.errorResponse(nil, Errorf(ParseError, "%v", err))
		}
		return d.errorResponse(probeID(d.codec, data), Errorf(InvalidRequest, "%v", err))
	}

	switch msg := msg.(type) {
	case *Request:
		return d.call(ctx, msg)

	case *Notification:
		d.notify(ctx, msg)
		return nil, nil

	case *Response:
		// a response fed to the serving side is not a valid request
		id := msg.ID()
		return d.errorResponse(&id, Errorf(InvalidRequest, "unexpected response for id %q", id))
	}

	return nil, fmt.Errorf("%w: unknown message type %T", ErrInternal, msg)
}

// call invokes the handler for a request and produces exactly one response.
func (d *Dispatcher) call(ctx context.Context, req *Request) ([]byte, error) {
	id := req.ID()
	d.logger.Debug(dirReceive,
		zap.String("req.id", fmt.Sprintf("%q", id)),
		zap.String("req.method", req.Method()),
	)

	handler, ok := d.registry.Resolve(req.Method())
	if !ok {
		return d.errorResponse(&id, ErrMethodNotFound)
	}

	params, err := d.decodeParams(handler, req.Params())
	if err != nil {
		return d.errorResponse(&id, Errorf(InvalidParams, "invalid params for %q: %v", req.Method(), err))
	}

	result, err := d.invoke(ctx, handler, params)
	if err != nil {
		return d.errorResponse(&id, toError(err))
	}

	raw, err := d.codec.Marshal(result)
	if err != nil {
		return d.errorResponse(&id, Errorf(InternalError, "marshaling %q result: %v", req.Method(), err))
	}

	data, err := EncodeMessage(d.codec, NewResponse(id, RawMessage(raw), nil))
	if err != nil {
		return nil, err
	}

	d.logger.Debug(dirSend,
		zap.String("resp.id", fmt.Sprintf("%q", id)),
		zap.String("req.method", req.Method()),
	)

	return data, nil
}

// notify invokes the handler for a notification.
//
// Notifications never produce output: an unbound method, undecodable
// params or a failing handler are absorbed here and only logged, matching
// the protocol's no-response contract for notifications.
func (d *Dispatcher) notify(ctx context.Context, n *Notification) {
	logger := d.logger.With(zap.String("req.method", n.Method()))
	logger.Debug(dirReceive)

	handler, ok := d.registry.Resolve(n.Method())
	if !ok {
		logger.Debug("dropping notification", zap.Error(ErrMethodNotFound))
		return
	}

	params, err := d.decodeParams(handler, n.Params())
	if err != nil {
		logger.Debug("dropping notification", zap.Error(err))
		return
	}

	if _, err := d.invoke(ctx, handler, params); err != nil {
		logger.Debug("notification handler failed", zap.Error(err))
	}
}

// decodeParams produces the decoded params destination for handler.
func (d *Dispatcher) decodeParams(handler Handler, params RawMessage) (interface{}, error) {
	dest := handler.NewParams()
	if dest == nil {
		return nil, nil
	}

	// raw destinations receive the params still serialized
	if raw, ok := dest.(*RawMessage); ok {
		*raw = params
		return dest, nil
	}

	if len(params) == 0 {
		return dest, nil
	}
	if err := d.codec.Unmarshal(params, dest); err != nil {
		return nil, err
	}

	return dest, nil
}

// invoke runs the handler, converting a panic into an internal error so a
// failing method body can never take down the dispatch loop.
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, params interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic", zap.Any("recovered", r))
			err = Errorf(InternalError, "handler panic: %v", r)
		}
	}()

	return handler.Handle(ctx, params)
}

// errorResponse encodes a failure as an error response payload.
//
// A nil id produces a response with no id member, used when the failure
// occurred before an id could be determined.
func (d *Dispatcher) errorResponse(id *ID, werr *Error) ([]byte, error) {
	resp := wireResponse{
		Version: Version,
		Error:   werr,
		ID:      id,
	}

	data, err := d.codec.Marshal(&resp)
	if err != nil {
		return nil, fmt.Errorf("marshaling error response: %w", err)
	}

	d.logger.Debug(dirSend, zap.Int64("error.code", int64(werr.Code)), zap.String("error.message", werr.Message))

	return data, nil
}

// probeID makes a best effort attempt to pull an id out of a payload that
// failed shape validation.
func probeID(codec Codec, data []byte) *ID {
	var probe struct {
		ID *ID `json:"id,omitempty"`
	}
	if err := codec.Unmarshal(data, &probe); err != nil {
		return nil
	}

	return probe.ID
}
