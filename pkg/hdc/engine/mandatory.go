// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "github.com/kiksotik/hdc/pkg/hdc/model"

// injectMandatoryDescriptors adds the two mandatory commands, two
// mandatory properties and two mandatory events to every feature already
// registered on dev. Called once from New, after Device.Validate has
// confirmed no application descriptor collides with the reserved 0xF0+
// range these use.
func injectMandatoryDescriptors(dev *model.Device) {
	for _, f := range dev.Features {
		f.AddProperty(newLogEventThresholdProperty())
		f.AddProperty(newFeatureStateProperty())
		f.AddCommand(newGetPropertyValueCommand())
		f.AddCommand(newSetPropertyValueCommand())
		f.AddEvent(&model.Event{
			ID:   model.EventIDLog,
			Name: "Log",
			Doc:  "A human-readable log line emitted by this feature, subject to LogEventThreshold filtering",
			Args: []model.Argument{
				{DType: model.DTypeUint8, Name: "log_level"},
				{DType: model.DTypeUTF8, Name: "log_text"},
			},
		})
		f.AddEvent(&model.Event{
			ID:   model.EventIDFeatureStateTransition,
			Name: "FeatureStateTransition",
			Doc:  "Emitted whenever this feature's FeatureState changes",
			Args: []model.Argument{
				{DType: model.DTypeUint8, Name: "previous_state"},
				{DType: model.DTypeUint8, Name: "current_state"},
			},
		})
	}
}

func newLogEventThresholdProperty() *model.Property {
	return &model.Property{
		ID:       model.PropIDLogEventThreshold,
		Name:     "LogEventThreshold",
		DType:    model.DTypeUint8,
		ReadOnly: false,
		Doc:      "Minimum severity (10,20,30,40,50) a Log event on this feature must reach to be transmitted",
		Getter: func(f *model.Feature) ([]byte, model.ExceptionID) {
			return []byte{f.LogEventThreshold}, model.ExcNone
		},
		Setter: func(f *model.Feature, newValue []byte) ([]byte, model.ExceptionID) {
			f.LogEventThreshold = clampLogThreshold(newValue[0])
			return []byte{f.LogEventThreshold}, model.ExcNone
		},
	}
}

func newFeatureStateProperty() *model.Property {
	return &model.Property{
		ID:       model.PropIDFeatureState,
		Name:     "FeatureState",
		DType:    model.DTypeUint8,
		ReadOnly: true,
		Doc:      "Current value of this feature's state machine",
		Getter: func(f *model.Feature) ([]byte, model.ExceptionID) {
			return []byte{f.FeatureState}, model.ExcNone
		},
	}
}

// clampLogThreshold coerces v into {10,20,30,40,50}: clamp to [10,50],
// then round to the nearest multiple of ten.
func clampLogThreshold(v byte) byte {
	level := int(v)
	if level < 10 {
		level = 10
	}
	if level > 50 {
		level = 50
	}
	return byte(((level + 5) / 10) * 10)
}

func newGetPropertyValueCommand() *model.Command {
	return &model.Command{
		ID:      model.CmdIDGetPropertyValue,
		Name:    "GetPropertyValue",
		Doc:     "Reads the current value of one of this feature's properties",
		Args:    []model.Argument{{DType: model.DTypeUint8, Name: "property_id"}},
		Returns: []model.Argument{{DType: model.DTypeBlob, Name: "value"}},
		Raises:  []*model.Exception{model.ReservedException(model.ExcUnknownProperty)},
		Handler: func(ctx *model.CommandContext) {
			args := ctx.Args()
			if len(args) != 1 {
				ctx.Fail(model.ExcInvalidArgs, "")
				return
			}
			ctx.Reply(getPropertyValue(ctx.Feature, args[0]))
		},
	}
}

func newSetPropertyValueCommand() *model.Command {
	return &model.Command{
		ID:   model.CmdIDSetPropertyValue,
		Name: "SetPropertyValue",
		Doc:  "Writes a new value to one of this feature's properties and returns the value actually stored",
		Args: []model.Argument{
			{DType: model.DTypeUint8, Name: "property_id"},
			{DType: model.DTypeBlob, Name: "new_value"},
		},
		Returns: []model.Argument{{DType: model.DTypeBlob, Name: "actual_value"}},
		Raises: []*model.Exception{
			model.ReservedException(model.ExcUnknownProperty),
			model.ReservedException(model.ExcReadOnlyProperty),
		},
		Handler: func(ctx *model.CommandContext) {
			args := ctx.Args()
			if len(args) < 1 {
				ctx.Fail(model.ExcInvalidArgs, "")
				return
			}
			ctx.Reply(setPropertyValue(ctx.Feature, args[0], args[1:]))
		},
	}
}

// getPropertyValue implements the generic GetPropertyValue behaviour
// shared by every feature.
func getPropertyValue(f *model.Feature, propertyID byte) model.CommandResult {
	prop := f.Property(propertyID)
	if prop == nil {
		return model.Fail(model.ExcUnknownProperty, "")
	}
	payload, exc := readProperty(f, prop)
	if exc != model.ExcNone {
		return model.Fail(exc, "")
	}
	return model.Ok(payload)
}

func readProperty(f *model.Feature, p *model.Property) ([]byte, model.ExceptionID) {
	if p.Getter != nil {
		return p.Getter(f)
	}
	switch {
	case p.DType == model.DTypeUTF8:
		n := indexByte(p.Storage, 0)
		if n < 0 {
			n = len(p.Storage)
		}
		return append([]byte(nil), p.Storage[:n]...), model.ExcNone
	case p.DType == model.DTypeBlob:
		return append([]byte(nil), p.Storage[:p.ValueSize]...), model.ExcNone
	default:
		return append([]byte(nil), p.Storage[:p.DType.Width()]...), model.ExcNone
	}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// setPropertyValue implements the generic SetPropertyValue behaviour
// shared by every feature.
func setPropertyValue(f *model.Feature, propertyID byte, newValue []byte) model.CommandResult {
	prop := f.Property(propertyID)
	if prop == nil {
		return model.Fail(model.ExcUnknownProperty, "")
	}
	if prop.ReadOnly {
		return model.Fail(model.ExcReadOnlyProperty, "")
	}

	if prop.DType.IsVariableWidth() {
		if prop.ValueSize > 0 && len(newValue) >= prop.ValueSize {
			return model.Fail(model.ExcInvalidArgs, "")
		}
	} else if len(newValue) != prop.DType.Width() {
		return model.Fail(model.ExcInvalidArgs, "")
	}

	var payload []byte
	var exc model.ExceptionID
	if prop.Setter != nil {
		payload, exc = prop.Setter(f, newValue)
	} else {
		payload, exc = writeStorage(prop, newValue)
	}
	if exc != model.ExcNone {
		return model.Fail(exc, "")
	}
	return model.Ok(payload)
}

func writeStorage(p *model.Property, newValue []byte) ([]byte, model.ExceptionID) {
	switch p.DType {
	case model.DTypeUTF8:
		copy(p.Storage, newValue)
		p.Storage[len(newValue)] = 0
	case model.DTypeBlob:
		copy(p.Storage[:p.ValueSize], newValue)
	default:
		copy(p.Storage[:p.DType.Width()], newValue)
	}
	return readProperty(nil, p)
}
