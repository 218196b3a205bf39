// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"

	"github.com/duplexrpc/jrpc2"
)

// testRegistry binds the fixture methods used across the dispatcher and
// correlator tests.
func testRegistry(t testing.TB) (*jrpc2.Registry, chan string) {
	t.Helper()

	logged := make(chan string, 8)

	reg := jrpc2.NewRegistry()
	require.NoError(t, reg.Bind("add", jrpc2.HandlerFunc(func(ctx context.Context, params *[]int) (int, error) {
		sum := 0
		for _, v := range *params {
			sum += v
		}
		return sum, nil
	})))
	require.NoError(t, reg.Bind("log", jrpc2.NotifyFunc(func(ctx context.Context, params *[]string) error {
		for _, line := range *params {
			logged <- line
		}
		return nil
	})))
	require.NoError(t, reg.Bind("fail", jrpc2.HandlerFunc(func(ctx context.Context, params *struct{}) (interface{}, error) {
		return nil, fmt.Errorf("the disk is on fire")
	})))
	require.NoError(t, reg.Bind("teapot", jrpc2.HandlerFunc(func(ctx context.Context, params *struct{}) (interface{}, error) {
		return nil, jrpc2.NewError(-31999, "I'm a teapot")
	})))
	require.NoError(t, reg.Bind("panic", jrpc2.HandlerFunc(func(ctx context.Context, params *struct{}) (interface{}, error) {
		panic("unreachable disk")
	})))

	return reg, logged
}

// wireResult is the decoded shape of one response payload.
type wireResult struct {
	Version string            `json:"jsonrpc"`
	Result  *jrpc2.RawMessage `json:"result"`
	Error   *jrpc2.Error      `json:"error"`
	ID      *jrpc2.RawMessage `json:"id"`
}

func receive(t testing.TB, d *jrpc2.Dispatcher, payload string) *wireResult {
	t.Helper()

	data, err := d.Receive(context.Background(), []byte(payload))
	require.NoError(t, err)
	if data == nil {
		return nil
	}

	out := new(wireResult)
	require.NoError(t, json.Unmarshal(data, out))
	require.Equal(t, "2.0", out.Version)

	return out
}

func TestDispatcherCall(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out, err := d.Receive(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"add","params":[2,3]}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":5}`, string(out))
}

func TestDispatcherParseError(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out := receive(t, d, `{"jsonrpc":"2.0","id":`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.ParseError, out.Error.Code)
	require.Nil(t, out.ID, "a parse error response carries no id")
}

func TestDispatcherInvalidRequest(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	tests := map[string]struct {
		payload string
		id      string // expected id member, empty when absent
	}{
		"wrong version":  {payload: `{"jsonrpc":"1.0","id":4,"method":"add"}`, id: `4`},
		"missing method": {payload: `{"jsonrpc":"2.0","id":4}`, id: `4`},
		"scalar payload": {payload: `42`},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := receive(t, d, tt.payload)
			require.NotNil(t, out.Error)
			require.Equal(t, jrpc2.InvalidRequest, out.Error.Code)
			if tt.id == "" {
				require.Nil(t, out.ID)
			} else {
				// the payload's id is echoed so the peer can correlate the
				// rejection
				require.JSONEq(t, tt.id, string(*out.ID))
			}
		})
	}
}

// A method payload with an explicit null id is neither a call nor a
// notification. It is rejected with an id-less invalid request response
// and the bound handler must not run.
func TestDispatcherNullID(t *testing.T) {
	t.Parallel()

	reg, logged := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out := receive(t, d, `{"jsonrpc":"2.0","id":null,"method":"log","params":["hi"]}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.InvalidRequest, out.Error.Code)
	require.Nil(t, out.ID)

	select {
	case line := <-logged:
		t.Fatalf("handler ran with %q", line)
	default:
	}
}

func TestDispatcherMethodNotFound(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out := receive(t, d, `{"jsonrpc":"2.0","id":6,"method":"missing","params":[]}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.MethodNotFound, out.Error.Code)
	require.Equal(t, "Method not found", out.Error.Message)
	require.JSONEq(t, `6`, string(*out.ID))
}

func TestDispatcherInvalidParams(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out := receive(t, d, `{"jsonrpc":"2.0","id":7,"method":"add","params":["x","y"]}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.InvalidParams, out.Error.Code)
	require.JSONEq(t, `7`, string(*out.ID))
}

func TestDispatcherHandlerErrors(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	// a plain error is wrapped as an internal error
	out := receive(t, d, `{"jsonrpc":"2.0","id":8,"method":"fail"}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.InternalError, out.Error.Code)
	require.Equal(t, "the disk is on fire", out.Error.Message)

	// a structured error is forwarded verbatim, application code included
	out = receive(t, d, `{"jsonrpc":"2.0","id":9,"method":"teapot"}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.Code(-31999), out.Error.Code)
	require.Equal(t, "I'm a teapot", out.Error.Message)

	// a panicking handler is contained and reported as internal
	out = receive(t, d, `{"jsonrpc":"2.0","id":10,"method":"panic"}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.InternalError, out.Error.Code)
}

func TestDispatcherNotification(t *testing.T) {
	t.Parallel()

	reg, logged := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out, err := d.Receive(context.Background(), []byte(`{"jsonrpc":"2.0","method":"log","params":["hi"]}`))
	require.NoError(t, err)
	require.Nil(t, out, "a notification never produces output")

	select {
	case line := <-logged:
		require.Equal(t, "hi", line)
	case <-time.After(time.Second):
		t.Fatal("notification handler did not run")
	}
}

func TestDispatcherNotificationFailuresAbsorbed(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	tests := map[string]string{
		"unbound method": `{"jsonrpc":"2.0","method":"missing","params":["hi"]}`,
		"invalid params": `{"jsonrpc":"2.0","method":"log","params":42}`,
		"handler error":  `{"jsonrpc":"2.0","method":"fail"}`,
	}
	for name, payload := range tests {
		payload := payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := d.Receive(context.Background(), []byte(payload))
			require.NoError(t, err)
			require.Nil(t, out)
		})
	}
}

func TestDispatcherUnexpectedResponse(t *testing.T) {
	t.Parallel()

	reg, _ := testRegistry(t)
	d := jrpc2.NewDispatcher(reg)

	out := receive(t, d, `{"jsonrpc":"2.0","id":11,"result":"pong"}`)
	require.NotNil(t, out.Error)
	require.Equal(t, jrpc2.InvalidRequest, out.Error.Code)
}
