// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package wire implements the HDC packet framing: a length-prefixed payload,
// an additive 8-bit checksum, and a trailing terminator byte. It knows
// nothing about message semantics — that is the engine package's job — only
// how to turn a byte slice into packets and back.
package wire

// Terminator is the literal byte that closes every packet.
const Terminator byte = 0x1E

// PacketOverhead is the number of non-payload bytes in every packet: the
// one-byte length prefix, the one-byte checksum, and the terminator.
const PacketOverhead = 3

// MaxPacketPayload is the largest payload a single packet can carry. A
// payload of exactly this size signals "more packets follow" for the
// logical message it belongs to.
const MaxPacketPayload = 255

// MaxSingleRequestSize is the hard upper bound on HDC_MAX_REQ_MESSAGE_SIZE
// imposed by the requirement that requests fit in one packet.
const MaxSingleRequestSize = 254
