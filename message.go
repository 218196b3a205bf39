// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"fmt"
)

// Message is the interface to all JSON-RPC message types.
//
// They share no common functionality, but are a closed set of concrete types
// that are allowed to implement this interface.
//
// The message types are *Request, *Notification and *Response.
type Message interface {
	// isJSONRPC2Message is used to make the set of message implementations a
	// closed set.
	isJSONRPC2Message()
}

// Requester is the shared interface to messages that request a method be
// invoked.
//
// The request types are a closed set of *Request and *Notification.
type Requester interface {
	Message

	// Method is a string containing the method name to invoke.
	Method() string
	// Params is either a struct or an array with the parameters of the method.
	Params() RawMessage

	// isJSONRPC2Request is used to make the set of request implementations closed.
	isJSONRPC2Request()
}

// Request is a call that expects a response.
//
// The response will have a matching ID.
type Request struct {
	method string
	params RawMessage
	id     ID
}

// NewRequest constructs a new Request for the supplied ID, method and
// still-serialized parameters.
func NewRequest(id ID, method string, params RawMessage) *Request {
	return &Request{
		id:     id,
		method: method,
		params: params,
	}
}

func (r *Request) Method() string     { return r.method }
func (r *Request) Params() RawMessage { return r.params }
func (r *Request) ID() ID             { return r.id }
func (r *Request) isJSONRPC2Message() {}
func (r *Request) isJSONRPC2Request() {}

// Notification is a request for which a response cannot occur, and as such
// it has no ID.
type Notification struct {
	method string
	params RawMessage
}

// NewNotification constructs a new Notification message for the supplied
// method and still-serialized parameters.
func NewNotification(method string, params RawMessage) *Notification {
	return &Notification{
		method: method,
		params: params,
	}
}

func (n *Notification) Method() string     { return n.method }
func (n *Notification) Params() RawMessage { return n.params }
func (n *Notification) isJSONRPC2Message() {}
func (n *Notification) isJSONRPC2Request() {}

// Response is a reply to a Request.
//
// It will have the same ID as the call it is a response to.
type Response struct {
	// result is the content of the response.
	result RawMessage
	// err is set only if the call failed.
	err error
	// id of the request this is a response to.
	id ID
}

// NewResponse constructs a new Response message that is a reply to the
// supplied ID. If err is set result is ignored.
func NewResponse(id ID, result RawMessage, err error) *Response {
	return &Response{
		id:     id,
		result: result,
		err:    err,
	}
}

func (r *Response) Result() RawMessage { return r.result }
func (r *Response) Err() error         { return r.err }
func (r *Response) ID() ID             { return r.id }
func (r *Response) isJSONRPC2Message() {}

// EncodeMessage encodes msg into its wire form using codec.
func EncodeMessage(codec Codec, msg Message) ([]byte, error) {
	switch msg := msg.(type) {
	case *Request:
		req := wireRequest{
			Version: Version,
			Method:  msg.method,
			Params:  rawPtr(msg.params),
			ID:      &msg.id,
		}
		data, err := codec.Marshal(&req)
		if err != nil {
			return nil, fmt.Errorf("marshaling call: %w", err)
		}
		return data, nil

	case *Notification:
		req := wireRequest{
			Version: Version,
			Method:  msg.method,
			Params:  rawPtr(msg.params),
		}
		data, err := codec.Marshal(&req)
		if err != nil {
			return nil, fmt.Errorf("marshaling notification: %w", err)
		}
		return data, nil

	case *Response:
		resp := wireResponse{
			Version: Version,
			Error:   toError(msg.err),
			ID:      &msg.id,
		}
		if resp.Error == nil {
			// result must not exist on a failure, and null is a valid
			// success value
			result := msg.result
			if len(result) == 0 {
				result = RawMessage("null")
			}
			resp.Result = &result
		}
		data, err := codec.Marshal(&resp)
		if err != nil {
			return nil, fmt.Errorf("marshaling response: %w", err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("%w: unknown message type %T", ErrInternal, msg)
	}
}

// DecodeMessage decodes one payload into its concrete message type.
//
// The classification is structural: a method member with a non-null id is
// a *Request, a method without an id member is a *Notification, and
// anything else carrying an error or an id is a *Response. An explicit
// null is not an id: a method payload carrying one is invalid, an error
// response carrying one decodes with the zero ID. Malformed JSON text
// fails with ErrParse, a well formed value of the wrong shape or protocol
// version fails with ErrInvalidRequest.
func DecodeMessage(codec Codec, data []byte) (Message, error) {
	// split parse failures from shape failures: any valid JSON value can
	// be captured as a RawMessage
	var raw RawMessage
	if err := codec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	msg := wireCombined{}
	if err := codec.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if msg.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidRequest, msg.Version)
	}

	idPresent := len(msg.ID) > 0
	idNull := idPresent && string(msg.ID) == "null"

	switch {
	case msg.Method != "" && idNull:
		return nil, fmt.Errorf("%w: a call id must not be null", ErrInvalidRequest)

	case msg.Method != "" && idPresent:
		id, err := decodeID(codec, msg.ID)
		if err != nil {
			return nil, err
		}
		req := &Request{
			method: msg.Method,
			id:     id,
		}
		if msg.Params != nil {
			req.params = *msg.Params
		}
		return req, nil

	case msg.Method != "":
		notify := &Notification{
			method: msg.Method,
		}
		if msg.Params != nil {
			notify.params = *msg.Params
		}
		return notify, nil

	case msg.Error != nil:
		resp := &Response{
			err: msg.Error,
		}
		// some peers report failures that precede an id with "id":null
		// rather than omitting the member
		if idPresent && !idNull {
			id, err := decodeID(codec, msg.ID)
			if err != nil {
				return nil, err
			}
			resp.id = id
		}
		return resp, nil

	case idPresent && !idNull:
		id, err := decodeID(codec, msg.ID)
		if err != nil {
			return nil, err
		}
		resp := &Response{
			id: id,
		}
		if msg.Result != nil {
			resp.result = *msg.Result
		}
		return resp, nil

	default:
		return nil, fmt.Errorf("%w: not a call, notify or response", ErrInvalidRequest)
	}
}

// decodeID parses a serialized, non-null id member.
func decodeID(codec Codec, raw RawMessage) (ID, error) {
	var id ID
	if err := codec.Unmarshal(raw, &id); err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return id, nil
}

func rawPtr(raw RawMessage) *RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return &raw
}
