// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	stdjson "encoding/json"
	"fmt"

	"github.com/segmentio/encoding/json"
)

// Version is the JSON-RPC protocol version tag, sent on every message.
const Version = "2.0"

// RawMessage is a raw encoded JSON value, kept serialized until a handler
// or caller decodes it into its concrete shape.
//
// It aliases the standard library type so every supported Codec treats it
// as an opaque passthrough value.
type RawMessage = stdjson.RawMessage

// ID is a Request identifier.
//
// Only one of either the name or number members will be set, using the
// number form if the name is the empty string. The zero value is a valid
// number ID and the type is comparable, so an ID can key the pending table.
type ID struct {
	name   string
	number int64
}

// compile time check whether the ID implements a fmt.Formatter, json.Marshaler and json.Unmarshaler interfaces.
var (
	_ fmt.Formatter       = (*ID)(nil)
	_ stdjson.Marshaler   = (*ID)(nil)
	_ stdjson.Unmarshaler = (*ID)(nil)
)

// Int64ID returns a new number request ID.
func Int64ID(v int64) ID { return ID{number: v} }

// StringID returns a new string request ID.
func StringID(v string) ID { return ID{name: v} }

// Format writes the ID to the formatter.
//
// If the rune is q the representation is non ambiguous,
// string forms are quoted, number forms are preceded by a #.
func (id ID) Format(f fmt.State, r rune) {
	numF, strF := `%d`, `%s`
	if r == 'q' {
		numF, strF = `#%d`, `%q`
	}

	switch {
	case id.name != "":
		fmt.Fprintf(f, strF, id.name)
	default:
		fmt.Fprintf(f, numF, id.number)
	}
}

// MarshalJSON implements json.Marshaler.
func (id *ID) MarshalJSON() ([]byte, error) {
	if id.name != "" {
		return json.Marshal(id.name)
	}
	return json.Marshal(id.number)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID{}
	if err := json.Unmarshal(data, &id.number); err == nil {
		return nil
	}
	if err := json.Unmarshal(data, &id.name); err != nil {
		return fmt.Errorf("an ID must be a string or a number: %w", err)
	}
	return nil
}

// wireRequest carries a Call or Notify operation on the wire.
//
// The absence of the ID member is what makes a payload a notification,
// there is no separate message type tag.
type wireRequest struct {
	// Version is always encoded as the string "2.0"
	Version string `json:"jsonrpc"`
	// Method is a string containing the method name to invoke.
	Method string `json:"method"`
	// Params is either a struct or an array with the parameters of the method.
	Params *RawMessage `json:"params,omitempty"`
	// The id of this request, used to tie the Response back to the request.
	// Will be either a string or a number. If not set, the Request is a notify,
	// and no response is possible.
	ID *ID `json:"id,omitempty"`
}

// wireResponse is a reply to a Request.
//
// It will have either the Result or Error member set depending on whether
// it is a success or failure. The ID is absent only when the failure
// occurred before an id could be determined.
type wireResponse struct {
	// Version is always encoded as the string "2.0"
	Version string `json:"jsonrpc"`
	// Result is the response value, and is required on success.
	Result *RawMessage `json:"result,omitempty"`
	// Error is a structured error response if the call fails.
	Error *Error `json:"error,omitempty"`
	// ID is the identifier of the Request this is a response to.
	ID *ID `json:"id,omitempty"`
}

// wireCombined has all the fields of both request and response shapes.
//
// One payload is decoded into it and then classified. The ID member is
// kept serialized, so an explicit null can be told apart from an absent
// member during classification.
type wireCombined struct {
	Version string      `json:"jsonrpc"`
	ID      RawMessage  `json:"id,omitempty"`
	Method  string      `json:"method,omitempty"`
	Params  *RawMessage `json:"params,omitempty"`
	Result  *RawMessage `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}
