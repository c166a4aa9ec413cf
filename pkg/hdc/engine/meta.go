// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/kiksotik/hdc/pkg/hdc/idl"
	"github.com/kiksotik/hdc/pkg/hdc/wire"
)

// Meta sub-message IDs.
const (
	MetaIDHdcVersion byte = 0xF0
	MetaIDMaxReq     byte = 0xF1
	MetaIDIdlJson    byte = 0xF2
)

// handleMeta answers a self-description query.
func (e *Engine) handleMeta(msg []byte) {
	if len(msg) < 2 {
		e.EmitLog(nil, LevelError, "malformed meta request: missing meta id")
		return
	}
	if len(msg) > 2 {
		e.EmitLog(nil, LevelError, "meta request carried unexpected trailing bytes")
		e.reply(msg)
		return
	}

	switch msg[1] {
	case MetaIDHdcVersion:
		reply := append([]byte{MsgTypeMeta, MetaIDHdcVersion}, []byte(VersionString)...)
		e.reply(reply)
	case MetaIDMaxReq:
		reply := make([]byte, 2+4)
		reply[0] = MsgTypeMeta
		reply[1] = MetaIDMaxReq
		binary.LittleEndian.PutUint32(reply[2:], uint32(e.dev.MaxReqMessageSize))
		e.reply(reply)
	case MetaIDIdlJson:
		e.replyIdlJSON()
	default:
		e.EmitLog(nil, LevelError, fmt.Sprintf("unknown meta id 0x%02X", msg[1]))
		e.reply(msg)
	}
}

// replyIdlJSON streams the device's IDL-JSON document into the TX
// composer behind the [Meta][IdlJson] prefix, never materializing the
// whole document in memory.
func (e *Engine) replyIdlJSON() {
	enc := wire.NewEncoder(e.composer)
	enc.Begin()
	enc.Feed([]byte{MsgTypeMeta, MetaIDIdlJson})
	if err := idl.Generate(messageWriter{enc}, e.dev); err != nil {
		e.EmitLog(nil, LevelError, fmt.Sprintf("idl generation failed: %v", err))
	}
	enc.End()
}

// messageWriter adapts a wire.Encoder mid-composition to io.Writer so the
// idl package can stream into it with ordinary Write calls.
type messageWriter struct{ enc *wire.Encoder }

func (m messageWriter) Write(p []byte) (int, error) {
	m.enc.Feed(p)
	return len(p), nil
}
