// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcdevice

import "github.com/kiksotik/hdc/pkg/hdc/transport"

// tapDirection marks which side of the link a tapped chunk crossed.
type tapDirection int

const (
	tapRX tapDirection = iota
	tapTX
)

type tappedChunk struct {
	dir  tapDirection
	data []byte
}

// tapTransport wraps a Transport and forwards a copy of every chunk it
// sees, in either direction, to a channel — used by the monitor subcommand
// to watch what the engine sends and receives without touching engine
// internals.
type tapTransport struct {
	inner transport.Transport
	taps  chan tappedChunk
}

func newTapTransport(inner transport.Transport) *tapTransport {
	return &tapTransport{inner: inner, taps: make(chan tappedChunk, 256)}
}

func (t *tapTransport) Write(p []byte) (int, error) {
	n, err := t.inner.Write(p)
	t.emit(tapTX, p[:n])
	return n, err
}

func (t *tapTransport) Listen(onData func([]byte)) error {
	return t.inner.Listen(func(chunk []byte) {
		t.emit(tapRX, chunk)
		onData(chunk)
	})
}

func (t *tapTransport) Close() error { return t.inner.Close() }

func (t *tapTransport) emit(dir tapDirection, data []byte) {
	cp := append([]byte(nil), data...)
	select {
	case t.taps <- tappedChunk{dir: dir, data: cp}:
	default:
		// Monitor UI is behind; drop rather than block the protocol path.
	}
}
