// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "github.com/kiksotik/hdc/pkg/hdc/model"

// EmitEvent implements model.EventEmitter. It composes
// [0xF3][feature_id][event_id][payload...] through the TX composer.
// f == nil defaults to the Core feature.
func (e *Engine) EmitEvent(f *model.Feature, eventID byte, payload []byte) {
	if f == nil {
		f = e.dev.CoreFeature()
	}
	msg := make([]byte, 0, 3+len(payload))
	msg = append(msg, MsgTypeEvent, f.ID, eventID)
	msg = append(msg, payload...)
	e.reply(msg)
}

// EmitLog implements model.EventEmitter. The event is dropped when level
// is below f's LogEventThreshold.
func (e *Engine) EmitLog(f *model.Feature, level byte, text string) {
	target := f
	if target == nil {
		target = e.dev.CoreFeature()
	}
	if level < target.LogEventThreshold {
		return
	}
	payload := make([]byte, 0, 1+len(text))
	payload = append(payload, level)
	payload = append(payload, text...)
	e.EmitEvent(target, model.EventIDLog, payload)
}

// SetFeatureState implements model.EventEmitter. A no-op transition does
// not emit an event.
func (e *Engine) SetFeatureState(f *model.Feature, newState byte) {
	if f == nil {
		f = e.dev.CoreFeature()
	}
	if newState == f.FeatureState {
		return
	}
	previous := f.FeatureState
	f.FeatureState = newState
	e.EmitEvent(f, model.EventIDFeatureStateTransition, []byte{previous, newState})
}

// Flush implements model.EventEmitter.
func (e *Engine) Flush() {
	_ = e.composer.Flush()
}
