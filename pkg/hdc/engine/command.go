// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "github.com/kiksotik/hdc/pkg/hdc/model"

// handleCommand dispatches a Command message: [0xF2][feature_id][command_id][args...].
func (e *Engine) handleCommand(msg []byte) {
	if len(msg) < 3 {
		e.EmitLog(nil, LevelError, "malformed command request: shorter than 3 bytes")
		return
	}
	featureID, commandID := msg[1], msg[2]

	feature := e.dev.Feature(featureID)
	if feature == nil {
		e.replyCommandResult(featureID, commandID, model.Fail(model.ExcUnknownFeature, ""))
		return
	}

	cmd := feature.Command(commandID)
	if cmd == nil {
		e.replyCommandResult(featureID, commandID, model.Fail(model.ExcUnknownCommand, ""))
		return
	}

	ctx := &model.CommandContext{Feature: feature, Request: msg, Emit: e}
	ctx.Reply = func(result model.CommandResult) {
		e.replyCommandResult(featureID, commandID, result)
	}
	cmd.Handler(ctx)
}

// replyCommandResult composes the [0xF2][feature_id][command_id][exception_id][payload...]
// reply.
func (e *Engine) replyCommandResult(featureID, commandID byte, result model.CommandResult) {
	buf := make([]byte, 0, 4+len(result.Payload))
	buf = append(buf, MsgTypeCommand, featureID, commandID, byte(result.Exception))
	buf = append(buf, result.Payload...)
	e.reply(buf)
}
