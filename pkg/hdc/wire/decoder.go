// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package wire

// decodeOne attempts to parse exactly one packet starting at buf[0].
//
// Three outcomes:
//   - ok packet:  payload != nil, consumed == len(payload)+PacketOverhead, ferr == nil
//   - recoverable frame error: payload == nil, consumed == 1, ferr != nil
//   - incomplete (need more bytes): payload == nil, consumed == 0, ferr == nil
func decodeOne(buf []byte, maxReqSize int) (payload []byte, consumed int, ferr *FrameError) {
	if len(buf) == 0 {
		return nil, 0, nil
	}

	ps := int(buf[0])
	if ps > maxReqSize {
		return nil, 1, &FrameError{Kind: Oversized}
	}

	need := ps + PacketOverhead
	if need > len(buf) {
		return nil, 0, nil
	}

	if buf[ps+2] != Terminator {
		return nil, 1, &FrameError{Kind: MissingTerminator}
	}
	if !ChecksumFolds(buf[:ps+2]) {
		return nil, 1, &FrameError{Kind: BadChecksum}
	}

	return buf[1 : 1+ps], need, nil
}

// DecodeMessage scans buf (the current RX buffer contents) for the single
// packet that makes up one incoming request message. It resynchronizes
// past malformed bytes one at a time and treats any bytes left over after
// a successfully parsed packet as a reading-frame error — the host is
// never allowed to pipeline a second request ahead of a reply.
//
// Returns the message payload (nil if no valid packet was found in buf)
// and the reading-frame errors encountered along the way, each tagged with
// the buffer offset it occurred at.
func DecodeMessage(buf []byte, maxReqSize int) (message []byte, frameErrors []FrameError) {
	offset := 0
	for offset < len(buf) {
		payload, consumed, ferr := decodeOne(buf[offset:], maxReqSize)
		if ferr != nil {
			ferr.Offset = offset
			frameErrors = append(frameErrors, *ferr)
			offset++
			continue
		}
		if payload == nil {
			// Incomplete: no full packet fits in what remains of buf.
			return message, frameErrors
		}

		message = payload
		offset += consumed
		if offset < len(buf) {
			frameErrors = append(frameErrors, FrameError{Kind: TrailingBytes, Offset: offset})
		}
		return message, frameErrors
	}
	return message, frameErrors
}

// DecodeReplyMessage scans buf for one logical reply message, reassembling
// it across as many packets as it takes: a packet whose length prefix is
// exactly MaxPacketPayload signals "more packets follow" and its payload is
// appended to the message under construction; the first packet with a
// smaller length prefix (0..254) terminates it. Used on the host side,
// where a single reply (e.g. the IDL-JSON document) routinely outgrows one
// packet — unlike DecodeMessage, which the device RX path uses and which
// never has to reassemble anything, since requests are always single-packet.
//
// It resynchronizes past malformed bytes one at a time exactly like
// DecodeMessage, and flags bytes left over after the terminal packet as a
// TrailingBytes error, since a second reply cannot begin before the first
// one ends. maxMessageSize bounds the reassembled message's total length;
// zero means unbounded.
func DecodeReplyMessage(buf []byte, maxMessageSize int) (message []byte, frameErrors []FrameError) {
	offset := 0
	// Non-nil so a genuinely empty reply message (a single empty terminal
	// packet) is still distinguishable from "no message found yet" below —
	// append(nil, nothing...) would otherwise leave this nil.
	assembled := []byte{}
	for offset < len(buf) {
		payload, consumed, ferr := decodeOne(buf[offset:], MaxPacketPayload)
		if ferr != nil {
			ferr.Offset = offset
			frameErrors = append(frameErrors, *ferr)
			offset++
			continue
		}
		if payload == nil {
			// Incomplete: no full packet fits in what remains of buf.
			return nil, frameErrors
		}

		assembled = append(assembled, payload...)
		offset += consumed

		if len(payload) == MaxPacketPayload {
			if maxMessageSize > 0 && len(assembled) > maxMessageSize {
				frameErrors = append(frameErrors, FrameError{Kind: Oversized, Offset: offset})
				return nil, frameErrors
			}
			continue // more packets follow
		}

		message = assembled
		if offset < len(buf) {
			frameErrors = append(frameErrors, FrameError{Kind: TrailingBytes, Offset: offset})
		}
		return message, frameErrors
	}
	return nil, frameErrors
}
