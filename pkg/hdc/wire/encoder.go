// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package wire

// Sink is the write side of the double-buffered TX composer (see the
// transport package). Reserve must return a slice of exactly n writable
// bytes; the Encoder always fills every byte it reserves before reserving
// again, so Reserve doubles as both "request capacity" and "commit" in one
// call — there is no separate commit step.
type Sink interface {
	Reserve(n int) []byte
}

// Encoder streams one logical message into a Sink as a sequence of
// packets, splitting at MaxPacketPayload bytes. It holds its composition
// state as an explicit value owned by the caller for the duration of one
// message, rather than as hidden static storage.
type Encoder struct {
	sink      Sink
	composing bool
	scratch   []byte
}

// NewEncoder creates an Encoder writing into sink.
func NewEncoder(sink Sink) *Encoder {
	return &Encoder{sink: sink, scratch: make([]byte, 0, MaxPacketPayload)}
}

// Begin starts composing a new message. Calling Begin while already
// composing is a programming error and panics rather than silently
// discarding the in-progress message.
func (e *Encoder) Begin() {
	if e.composing {
		panic("hdc/wire: Encoder.Begin called while already composing")
	}
	e.composing = true
	e.scratch = e.scratch[:0]
}

// Feed appends bytes to the message being composed, flushing a full
// MaxPacketPayload-byte packet to the sink whenever enough bytes have
// accumulated.
func (e *Encoder) Feed(p []byte) {
	if !e.composing {
		panic("hdc/wire: Encoder.Feed called without Begin")
	}
	for len(p) > 0 {
		free := MaxPacketPayload - len(e.scratch)
		n := len(p)
		if n > free {
			n = free
		}
		e.scratch = append(e.scratch, p[:n]...)
		p = p[n:]
		if len(e.scratch) == MaxPacketPayload {
			e.flush()
		}
	}
}

// End finalizes the current packet with whatever payload it has
// accumulated (possibly empty). If the last packet flushed by Feed carried
// exactly MaxPacketPayload bytes, an additional empty packet is appended
// so the host can tell the message is complete.
func (e *Encoder) End() {
	if !e.composing {
		panic("hdc/wire: Encoder.End called without Begin")
	}
	// Whatever is left in scratch (possibly nothing) becomes the final
	// packet. If scratch is empty because the last Feed-triggered flush
	// carried exactly MaxPacketPayload bytes, this final empty packet IS
	// the required terminating marker for an exact-multiple-of-255
	// message; if the message was empty from the start, it is the single
	// empty packet a zero-length message still requires.
	e.flush()
	e.composing = false
}

// flush writes e.scratch as one packet and resets it.
func (e *Encoder) flush() {
	e.writePacket(e.scratch)
	e.scratch = e.scratch[:0]
}

// writePacket reserves space for and writes one complete packet: length
// prefix, payload, checksum, terminator, in that order.
func (e *Encoder) writePacket(payload []byte) {
	ps := len(payload)
	buf := e.sink.Reserve(ps + PacketOverhead)
	buf[0] = byte(ps)
	copy(buf[1:1+ps], payload)
	buf[1+ps] = Checksum(buf[:1+ps])
	buf[2+ps] = Terminator
}

// EncodeSingle is a convenience for composing a short message (a command
// reply, an event) that is known to fit in well under MaxPacketPayload
// bytes, without the caller managing Begin/Feed/End itself.
func EncodeSingle(sink Sink, payload []byte) {
	e := NewEncoder(sink)
	e.Begin()
	e.Feed(payload)
	e.End()
}
