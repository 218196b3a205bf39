// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	goccy "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	segmentio "github.com/segmentio/encoding/json"
)

// Codec is the boundary to the concrete JSON text encoder used for
// user-defined parameter and result types.
//
// The core only ever calls a Codec, it never implements JSON encoding
// itself. Any implementation must round-trip RawMessage values untouched
// and honor the standard json.Marshaler and json.Unmarshaler interfaces.
type Codec interface {
	// Marshal encodes v into JSON text.
	Marshal(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON text into v.
	Unmarshal(data []byte, v interface{}) error
}

// DefaultCodec is used by every component that was not given an explicit
// codec through its options.
var DefaultCodec Codec = SegmentioCodec()

// SegmentioCodec returns a Codec backed by github.com/segmentio/encoding.
func SegmentioCodec() Codec { return segmentioCodec{} }

type segmentioCodec struct{}

func (segmentioCodec) Marshal(v interface{}) ([]byte, error) {
	return segmentio.Marshal(v)
}

func (segmentioCodec) Unmarshal(data []byte, v interface{}) error {
	return segmentio.Unmarshal(data, v)
}

// GoccyCodec returns a Codec backed by github.com/goccy/go-json.
func GoccyCodec() Codec { return goccyCodec{} }

type goccyCodec struct{}

func (goccyCodec) Marshal(v interface{}) ([]byte, error) {
	return goccy.Marshal(v)
}

func (goccyCodec) Unmarshal(data []byte, v interface{}) error {
	return goccy.Unmarshal(data, v)
}

// JSONIteratorCodec returns a Codec backed by github.com/json-iterator/go
// in its standard library compatible configuration.
func JSONIteratorCodec() Codec {
	return jsoniterCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

type jsoniterCodec struct {
	api jsoniter.API
}

func (c jsoniterCodec) Marshal(v interface{}) ([]byte, error) {
	return c.api.Marshal(v)
}

func (c jsoniterCodec) Unmarshal(data []byte, v interface{}) error {
	return c.api.Unmarshal(data, v)
}
