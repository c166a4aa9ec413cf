// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package wire

import (
	"bytes"
	"testing"
)

// fakeSink is an unbounded in-memory Sink for exercising the Encoder
// without the transport package's double-buffering.
type fakeSink struct {
	buf []byte
}

func (s *fakeSink) Reserve(n int) []byte {
	start := len(s.buf)
	s.buf = append(s.buf, make([]byte, n)...)
	return s.buf[start : start+n]
}

func buildPacket(payload []byte) []byte {
	ps := byte(len(payload))
	pkt := append([]byte{ps}, payload...)
	pkt = append(pkt, Checksum(pkt), Terminator)
	return pkt
}

func TestChecksumFoldsToZero(t *testing.T) {
	payload := []byte("ping")
	pkt := buildPacket(payload)
	if !ChecksumFolds(pkt[:len(pkt)-1]) {
		t.Fatalf("checksum does not fold to zero for %x", pkt)
	}
}

func TestDecodeMessageSinglePacket(t *testing.T) {
	want := []byte{0xF1, 'p', 'i', 'n', 'g'}
	pkt := buildPacket(want)

	got, ferrs := DecodeMessage(pkt, 254)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected frame errors: %v", ferrs)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDecodeMessageResyncsPastGarbage(t *testing.T) {
	want := []byte{0xF0, 0xF1}
	pkt := buildPacket(want)
	buf := append([]byte{0xAA, 0xBB, 0xCC}, pkt...)

	// With a 128-byte request limit each garbage byte (0xAA, 0xBB, 0xCC) is
	// an oversized length prefix, so the decoder skips it one byte at a time.
	got, ferrs := DecodeMessage(buf, 128)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if len(ferrs) != 3 {
		t.Fatalf("expected 3 resync errors, got %d: %v", len(ferrs), ferrs)
	}
}

func TestDecodeMessageOversized(t *testing.T) {
	buf := []byte{255, 0, 0, 0}
	_, ferrs := DecodeMessage(buf, 128)
	if len(ferrs) == 0 || ferrs[0].Kind != Oversized {
		t.Fatalf("expected an Oversized error, got %v", ferrs)
	}
}

func TestDecodeMessageBadChecksum(t *testing.T) {
	pkt := buildPacket([]byte{1, 2, 3})
	pkt[len(pkt)-2] ^= 0xFF // corrupt checksum
	_, ferrs := DecodeMessage(pkt, 254)
	if len(ferrs) == 0 || ferrs[0].Kind != BadChecksum {
		t.Fatalf("expected a BadChecksum error, got %v", ferrs)
	}
}

func TestDecodeMessageMissingTerminator(t *testing.T) {
	pkt := buildPacket([]byte{1, 2, 3})
	pkt[len(pkt)-1] = 0x00
	_, ferrs := DecodeMessage(pkt, 254)
	if len(ferrs) == 0 || ferrs[0].Kind != MissingTerminator {
		t.Fatalf("expected a MissingTerminator error, got %v", ferrs)
	}
}

func TestDecodeMessageTrailingBytesAreFrameErrors(t *testing.T) {
	pkt := buildPacket([]byte{1, 2, 3})
	buf := append(pkt, 0x99)
	_, ferrs := DecodeMessage(buf, 254)
	if len(ferrs) != 1 || ferrs[0].Kind != TrailingBytes {
		t.Fatalf("expected one TrailingBytes error, got %v", ferrs)
	}
}

func TestDecodeMessageIncompleteReturnsNothing(t *testing.T) {
	buf := []byte{10, 1, 2, 3} // says 10 bytes of payload, only 3 present
	msg, ferrs := DecodeMessage(buf, 254)
	if msg != nil {
		t.Fatalf("expected no message, got %v", msg)
	}
	if len(ferrs) != 0 {
		t.Fatalf("incomplete packets are not frame errors, got %v", ferrs)
	}
}

func TestDecodeReplyMessageSinglePacket(t *testing.T) {
	want := []byte{0xF1, 'p', 'o', 'n', 'g'}
	pkt := buildPacket(want)

	got, ferrs := DecodeReplyMessage(pkt, 0)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected frame errors: %v", ferrs)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDecodeReplyMessageEmptyMessageIsNotMistakenForIncomplete(t *testing.T) {
	sink := &fakeSink{}
	EncodeSingle(sink, []byte{})

	message, ferrs := DecodeReplyMessage(sink.buf, 0)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected frame errors: %v", ferrs)
	}
	if message == nil {
		t.Fatal("expected a non-nil empty message, got nil (mistaken for incomplete)")
	}
	if len(message) != 0 {
		t.Fatalf("expected an empty message, got %v", message)
	}
}

func TestDecodeReplyMessageReassemblesContinuationPackets(t *testing.T) {
	want := bytes.Repeat([]byte{0x11}, 255*2+10)

	sink := &fakeSink{}
	enc := NewEncoder(sink)
	enc.Begin()
	enc.Feed(want)
	enc.End()

	got, ferrs := DecodeReplyMessage(sink.buf, 0)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected frame errors: %v", ferrs)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("reassembled message mismatch: got %d bytes, want %d", len(got), len(want))
	}
}

func TestDecodeReplyMessageExactMultipleOf255(t *testing.T) {
	want := bytes.Repeat([]byte{0x7A}, 255)

	sink := &fakeSink{}
	EncodeSingle(sink, want)

	got, ferrs := DecodeReplyMessage(sink.buf, 0)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected frame errors: %v", ferrs)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("reassembled message mismatch: got %d bytes, want %d", len(got), len(want))
	}
}

func TestDecodeReplyMessageIncompleteContinuationReturnsNothing(t *testing.T) {
	sink := &fakeSink{}
	enc := NewEncoder(sink)
	enc.Begin()
	enc.Feed(bytes.Repeat([]byte{0x01}, 255*2))
	enc.End()

	// Hold back the terminating packet: only the first 255-byte packet of
	// the message is in the buffer.
	firstPacketLen := 255 + PacketOverhead
	msg, ferrs := DecodeReplyMessage(sink.buf[:firstPacketLen], 0)
	if msg != nil {
		t.Fatalf("expected no message while continuation is incomplete, got %d bytes", len(msg))
	}
	if len(ferrs) != 0 {
		t.Fatalf("incomplete continuation is not a frame error, got %v", ferrs)
	}
}

func TestDecodeReplyMessageOversizedAssembly(t *testing.T) {
	sink := &fakeSink{}
	enc := NewEncoder(sink)
	enc.Begin()
	enc.Feed(bytes.Repeat([]byte{0x01}, 255*2))
	enc.End()

	_, ferrs := DecodeReplyMessage(sink.buf, 255)
	if len(ferrs) == 0 || ferrs[len(ferrs)-1].Kind != Oversized {
		t.Fatalf("expected an Oversized error, got %v", ferrs)
	}
}

func TestDecodeReplyMessageTrailingBytesAreFrameErrors(t *testing.T) {
	sink := &fakeSink{}
	EncodeSingle(sink, []byte{1, 2, 3})
	buf := append(sink.buf, 0x99)

	_, ferrs := DecodeReplyMessage(buf, 0)
	if len(ferrs) != 1 || ferrs[0].Kind != TrailingBytes {
		t.Fatalf("expected one TrailingBytes error, got %v", ferrs)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x01},
		bytes.Repeat([]byte{0x42}, 254),
		bytes.Repeat([]byte{0x7A}, 255),
		bytes.Repeat([]byte{0x11}, 255*2),
		bytes.Repeat([]byte{0x11}, 255+10),
	}

	for _, payload := range cases {
		sink := &fakeSink{}
		EncodeSingle(sink, payload)

		var reassembled []byte
		offset := 0
		for offset < len(sink.buf) {
			ps := int(sink.buf[offset])
			pktEnd := offset + ps + PacketOverhead
			if pktEnd > len(sink.buf) {
				t.Fatalf("truncated packet stream for payload len %d", len(payload))
			}
			if !ChecksumFolds(sink.buf[offset : pktEnd-1]) {
				t.Fatalf("bad checksum in encoded stream for payload len %d", len(payload))
			}
			if sink.buf[pktEnd-1] != Terminator {
				t.Fatalf("missing terminator in encoded stream for payload len %d", len(payload))
			}
			reassembled = append(reassembled, sink.buf[offset+1:offset+1+ps]...)
			offset = pktEnd
		}

		if !bytes.Equal(reassembled, payload) {
			t.Fatalf("round trip mismatch for payload len %d", len(payload))
		}
	}
}

func TestEncodeExactMultipleOf255GetsTerminatingEmptyPacket(t *testing.T) {
	sink := &fakeSink{}
	EncodeSingle(sink, bytes.Repeat([]byte{0x01}, 255))

	// One full 255-byte packet (258 bytes on the wire) plus one empty
	// packet (3 bytes on the wire).
	if len(sink.buf) != 258+3 {
		t.Fatalf("expected 261 wire bytes, got %d", len(sink.buf))
	}
	lastPacketPS := sink.buf[258]
	if lastPacketPS != 0 {
		t.Fatalf("expected trailing empty packet, got PS=%d", lastPacketPS)
	}
}

func TestEncoderBeginTwiceFails(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double Begin")
		}
	}()
	e := NewEncoder(&fakeSink{})
	e.Begin()
	e.Begin()
}

func TestEncoderFeedWithoutBeginFails(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on Feed without Begin")
		}
	}()
	e := NewEncoder(&fakeSink{})
	e.Feed([]byte{1})
}
