// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package demo

import "github.com/kiksotik/hdc/pkg/hdc/model"

// LEDFeatureID is the feature ID the Led feature registers under.
const LEDFeatureID byte = 0x01

// LED feature states.
const (
	LEDStateOff byte = 0x00
	LEDStateOn  byte = 0x01
)

// newLEDFeature builds a small application feature: an on/off state, a
// blink-rate property with a clamping setter, and a SetOn command.
func newLEDFeature() *model.Feature {
	f := model.NewFeature(LEDFeatureID, "Led", "Led", "1.0", "Single status LED")
	f.FeatureState = LEDStateOff

	f.AddState(model.State{ID: LEDStateOff, Name: "off"})
	f.AddState(model.State{ID: LEDStateOn, Name: "on"})

	blinkRate := []byte{0}
	f.AddProperty(&model.Property{
		ID:       0x10,
		Name:     "blink_rate_hz",
		DType:    model.DTypeUint8,
		ReadOnly: false,
		Doc:      "Blink frequency in Hz; 0 means steady-on/off, no blinking",
		Storage:  blinkRate,
	})

	f.AddCommand(&model.Command{
		ID:      0x01,
		Name:    "SetOn",
		Doc:     "Turns the LED on or off",
		Args:    []model.Argument{{DType: model.DTypeBool, Name: "on"}},
		Returns: nil,
		Handler: func(ctx *model.CommandContext) {
			args := ctx.Args()
			if len(args) != 1 || (args[0] != 0x00 && args[0] != 0x01) {
				ctx.Fail(model.ExcInvalidArgs, "")
				return
			}
			ctx.Ok(nil)
			if args[0] == 0x01 {
				ctx.Emit.SetFeatureState(ctx.Feature, LEDStateOn)
			} else {
				ctx.Emit.SetFeatureState(ctx.Feature, LEDStateOff)
			}
		},
	})

	return f
}
