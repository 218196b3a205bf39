// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"go.uber.org/zap"
)

// Option represents a functional option, shared by NewDispatcher, NewClient
// and NewConn.
type Option func(*options)

type options struct {
	codec  Codec
	logger *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{
		codec:  DefaultCodec,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithCodec applies a custom Codec.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithLogger applies a custom Logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
