// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duplexrpc/jrpc2"
)

func TestRawStream(t *testing.T) {
	t.Parallel()

	payloads := []string{
		`{"jsonrpc":"2.0","id":1,"method":"add","params":[2,3]}`,
		`{"jsonrpc":"2.0","id":1,"result":5}`,
		`{"jsonrpc":"2.0","method":"log","params":["hi"]}`,
	}

	buf := &bytes.Buffer{}
	out := jrpc2.NewRawStream(strings.NewReader(""), buf)
	for _, p := range payloads {
		require.NoError(t, out.Write(context.Background(), []byte(p)))
	}

	// consecutive values with no framing, boundaries come from the decoder
	in := jrpc2.NewRawStream(bytes.NewReader(buf.Bytes()), nil)
	for _, want := range payloads {
		got, err := in.Read(context.Background())
		require.NoError(t, err)
		require.JSONEq(t, want, string(got))
	}

	_, err := in.Read(context.Background())
	require.Error(t, err, "an exhausted stream must not return a payload")
}

func TestHeaderStream(t *testing.T) {
	t.Parallel()

	payloads := []string{
		`{"jsonrpc":"2.0","id":1,"method":"add","params":[2,3]}`,
		`{"jsonrpc":"2.0","id":1,"result":5}`,
	}

	buf := &bytes.Buffer{}
	out := jrpc2.NewHeaderStream(strings.NewReader(""), buf)
	for _, p := range payloads {
		require.NoError(t, out.Write(context.Background(), []byte(p)))
	}
	require.Contains(t, buf.String(), "Content-Length: ")

	in := jrpc2.NewHeaderStream(bytes.NewReader(buf.Bytes()), nil)
	for _, want := range payloads {
		got, err := in.Read(context.Background())
		require.NoError(t, err)
		require.JSONEq(t, want, string(got))
	}
}

func TestHeaderStreamUnknownHeadersIgnored(t *testing.T) {
	t.Parallel()

	framed := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"Content-Length: 2\r\n\r\n{}"
	in := jrpc2.NewHeaderStream(strings.NewReader(framed), nil)

	got, err := in.Read(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(got))
}

func TestHeaderStreamInvalidFraming(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing content length": "Content-Type: text/plain\r\n\r\n{}",
		"malformed header line":  "no colon here\r\n\r\n{}",
		"bad length value":       "Content-Length: many\r\n\r\n{}",
		"negative length":        "Content-Length: -4\r\n\r\n{}",
		"truncated content":      "Content-Length: 99\r\n\r\n{}",
	}
	for name, framed := range tests {
		framed := framed
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			in := jrpc2.NewHeaderStream(strings.NewReader(framed), nil)
			_, err := in.Read(context.Background())
			require.Error(t, err)
		})
	}
}

func TestStreamContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, stream := range map[string]jrpc2.Stream{
		"raw":    jrpc2.NewRawStream(strings.NewReader("{}"), &bytes.Buffer{}),
		"header": jrpc2.NewHeaderStream(strings.NewReader("Content-Length: 2\r\n\r\n{}"), &bytes.Buffer{}),
	} {
		stream := stream
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := stream.Read(ctx)
			require.ErrorIs(t, err, context.Canceled)
			require.ErrorIs(t, stream.Write(ctx, []byte(`{}`)), context.Canceled)
		})
	}
}
