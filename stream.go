// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/francoispqt/gojay"
)

const (
	// hdrContentLength is the HTTP header name of the length of the content
	// part in bytes. This header is required.
	hdrContentLength = "Content-Length"

	// hdrContentSeparator is the header and content part separator.
	hdrContentSeparator = "\r\n\r\n"
)

// Stream abstracts the mechanism for exchanging opaque payloads between
// two peers from the JSON-RPC protocol.
type Stream interface {
	// Read gets the next payload from the stream.
	Read(ctx context.Context) ([]byte, error)
	// Write sends a payload to the stream.
	Write(ctx context.Context, data []byte) error
}

// NewRawStream returns a Stream on top of an in/out pair.
//
// The payloads are sent with no wrapping as consecutive JSON values, and
// rely on json decode consistency to determine message boundaries.
func NewRawStream(in io.Reader, out io.Writer) Stream {
	return &rawStream{
		in:  gojay.NewDecoder(in),
		out: out,
	}
}

type rawStream struct {
	in *gojay.Decoder

	mu  sync.Mutex // protects out
	out io.Writer
}

// Read implements Stream.Read.
func (s *rawStream) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var raw gojay.EmbeddedJSON
	if err := s.in.Decode(&raw); err != nil {
		return nil, err
	}

	return []byte(raw), nil
}

// Write implements Stream.Write.
func (s *rawStream) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	_, err := s.out.Write(data)
	s.mu.Unlock()

	return err
}

// NewHeaderStream returns a Stream on top of an in/out pair.
//
// The payloads are sent with HTTP Content-Length headers, the framing used
// by LSP and others.
func NewHeaderStream(in io.Reader, out io.Writer) Stream {
	return &headerStream{
		in:  bufio.NewReader(in),
		out: out,
	}
}

type headerStream struct {
	in *bufio.Reader

	mu  sync.Mutex // protects out
	out io.Writer
}

// Read implements Stream.Read.
func (s *headerStream) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var length int64
	// read the header, stop on the first empty line
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed reading header line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		colon := strings.IndexRune(line, ':')
		if colon < 0 {
			return nil, fmt.Errorf("invalid header line %q", line)
		}

		name, value := line[:colon], strings.TrimSpace(line[colon+1:])
		switch name {
		case hdrContentLength:
			if length, err = strconv.ParseInt(value, 10, 32); err != nil {
				return nil, fmt.Errorf("failed parsing Content-Length: %v", value)
			}
			if length <= 0 {
				return nil, fmt.Errorf("invalid Content-Length: %v", length)
			}

		default:
			// ignoring unknown headers
		}
	}

	if length == 0 {
		return nil, fmt.Errorf("missing %v header", hdrContentLength)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(s.in, data); err != nil {
		return nil, fmt.Errorf("failed reading content: %w", err)
	}

	return data, nil
}

// Write implements Stream.Write.
func (s *headerStream) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.out, "%s: %d%s", hdrContentLength, len(data), hdrContentSeparator); err != nil {
		return fmt.Errorf("failed to write %v header: %w", hdrContentLength, err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}
