// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"sync"
	"sync/atomic"
	"time"
)

// defaultFlushTimeout bounds how long Flush busy-waits for a transmission
// in flight to finish before giving up and returning whatever error is on
// hand.
const defaultFlushTimeout = 100 * time.Millisecond

// Writer is the minimal blocking byte sink a Composer drains its buffers
// into.
type Writer interface {
	Write(p []byte) (int, error)
}

// Composer implements wire.Sink over two equal-sized buffers. At any time
// exactly one buffer is the "composition buffer" being filled by RequestCapacity
// and the other is either idle or draining to w on a background goroutine
// standing in for a DMA engine. Only RequestCapacity/Flush ever touch the
// composition buffer's contents; the background goroutine only reports
// completion through txBusy, mirroring the single-producer discipline of a
// TX-complete interrupt flipping one flag.
type Composer struct {
	size int
	bufs [2][]byte
	comp int // index of the current composition buffer

	w Writer

	txBusy    atomic.Bool
	errMu     sync.Mutex
	txErr     error
	flushWait time.Duration
}

// NewComposer creates a Composer with two buffers of size bytes each,
// draining completed buffers to w.
func NewComposer(w Writer, size int) *Composer {
	return &Composer{
		size:      size,
		bufs:      [2][]byte{make([]byte, 0, size), make([]byte, 0, size)},
		w:         w,
		flushWait: defaultFlushTimeout,
	}
}

// RequestCapacity returns a tail slice of n writable bytes in the
// composition buffer, swapping buffers first if there is not enough room
// left. It implements wire.Sink.
func (c *Composer) RequestCapacity(n int) []byte {
	if n > c.size {
		panic("hdc/transport: requested capacity exceeds buffer size")
	}
	if c.size-len(c.bufs[c.comp]) < n {
		c.swap()
	}
	buf := c.bufs[c.comp]
	start := len(buf)
	c.bufs[c.comp] = buf[:start+n]
	return c.bufs[c.comp][start : start+n]
}

// Reserve implements wire.Sink.
func (c *Composer) Reserve(n int) []byte { return c.RequestCapacity(n) }

// swap waits, without a timeout, for any transmission in flight to finish,
// hands the current composition buffer to the writer, and starts composing
// into the other buffer.
func (c *Composer) swap() {
	c.waitTxDone(0)
	txIdx := c.comp
	c.comp = 1 - c.comp
	c.bufs[c.comp] = c.bufs[c.comp][:0]
	c.startTransmit(txIdx)
}

// startTransmit hands bufs[idx] to w on a background goroutine if it holds
// any bytes. An empty buffer needs no transmission and leaves txBusy false.
func (c *Composer) startTransmit(idx int) {
	buf := c.bufs[idx]
	if len(buf) == 0 {
		return
	}
	c.txBusy.Store(true)
	go func() {
		_, err := c.w.Write(buf)
		c.errMu.Lock()
		c.txErr = err
		c.errMu.Unlock()
		c.txBusy.Store(false)
	}()
}

// waitTxDone polls txBusy until it clears or, if timeout is positive, until
// timeout elapses.
func (c *Composer) waitTxDone(timeout time.Duration) {
	if !c.txBusy.Load() {
		return
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for c.txBusy.Load() {
		if timeout > 0 && time.Now().After(deadline) {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// Flush forces whatever is composed so far onto the wire and busy-waits up
// to ~100ms for the transmission to complete, returning the last write
// error observed, if any.
func (c *Composer) Flush() error {
	c.swap()
	c.waitTxDone(c.flushWait)
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.txErr
}
