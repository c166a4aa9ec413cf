// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import "io"

// PipeTransport is an in-memory Transport, analogous to net.Pipe, for
// wiring an engine directly to a host-side probe in tests and the bundled
// demo without a real serial port or socket.
type PipeTransport struct {
	r *io.PipeReader
	w *io.PipeWriter
}

// NewPipeTransportPair returns two connected PipeTransports: bytes written
// to one arrive at the other's listener.
func NewPipeTransportPair() (a, b *PipeTransport) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a = &PipeTransport{r: r1, w: w2}
	b = &PipeTransport{r: r2, w: w1}
	return a, b
}

func (p *PipeTransport) Write(data []byte) (int, error) { return p.w.Write(data) }

func (p *PipeTransport) Listen(onData func([]byte)) error {
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := p.r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onData(chunk)
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

func (p *PipeTransport) Close() error {
	werr := p.w.Close()
	rerr := p.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
