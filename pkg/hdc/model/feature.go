// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package model

import "fmt"

// CoreFeatureID is the mandatory feature every Device must register.
const CoreFeatureID byte = 0x00

// Feature groups a set of Commands, Properties, Events and States under
// one ID. Features are looked up by ID via linear scan over Device.Features;
// descriptor counts are bounded to at most 256 per kind, so this stays
// cheap and allocation-free.
type Feature struct {
	ID           byte
	Name         string
	ClassName    string
	ClassVersion string
	Doc          string

	// APIHandle is an opaque application-owned value (e.g. a driver
	// handle) threaded through to command handlers via ctx.Feature.
	APIHandle any

	// FeatureState is the mutable current-state slot. Read through the
	// mandatory FeatureState property and changed via EventEmitter.SetFeatureState.
	FeatureState byte

	// LogEventThreshold is the mutable per-feature Log event filter.
	// Must stay in {10,20,30,40,50}; see Engine's SetPropertyValue
	// coercion for LogEventThreshold.
	LogEventThreshold byte

	States     []State
	Commands   []*Command
	Properties []*Property
	Events     []*Event
}

// NewFeature creates a Feature with the default log threshold (30 =
// Python's logging.WARNING, the mid-point of the five allowed levels).
func NewFeature(id byte, name, className, classVersion, doc string) *Feature {
	return &Feature{
		ID:                id,
		Name:              name,
		ClassName:         className,
		ClassVersion:      classVersion,
		Doc:               doc,
		LogEventThreshold: 30,
	}
}

// AddState registers a State descriptor.
func (f *Feature) AddState(s State) { f.States = append(f.States, s) }

// AddCommand registers a Command descriptor.
func (f *Feature) AddCommand(c *Command) { f.Commands = append(f.Commands, c) }

// AddProperty registers a Property descriptor.
func (f *Feature) AddProperty(p *Property) { f.Properties = append(f.Properties, p) }

// AddEvent registers an Event descriptor.
func (f *Feature) AddEvent(e *Event) { f.Events = append(f.Events, e) }

// Command looks up a command by ID.
func (f *Feature) Command(id byte) *Command {
	for _, c := range f.Commands {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Property looks up a property by ID.
func (f *Feature) Property(id byte) *Property {
	for _, p := range f.Properties {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Event looks up an event by ID.
func (f *Feature) Event(id byte) *Event {
	for _, e := range f.Events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// validate checks id uniqueness and that application descriptors do not
// collide with the reserved 0xF0+ engine range, plus every property's own
// well-formedness. Mandatory descriptors are injected after validate runs,
// so they are intentionally not checked here.
func (f *Feature) validate() error {
	seenCmd := map[byte]bool{}
	for _, c := range f.Commands {
		if IsReservedCommandID(c.ID) {
			return fmt.Errorf("feature %q: command %q uses reserved id 0x%02X", f.Name, c.Name, c.ID)
		}
		if seenCmd[c.ID] {
			return fmt.Errorf("feature %q: duplicate command id 0x%02X", f.Name, c.ID)
		}
		seenCmd[c.ID] = true
		if len(c.Args) > MaxCommandArgs {
			return fmt.Errorf("feature %q: command %q declares more than %d args", f.Name, c.Name, MaxCommandArgs)
		}
		if len(c.Returns) > MaxCommandArgs {
			return fmt.Errorf("feature %q: command %q declares more than %d returns", f.Name, c.Name, MaxCommandArgs)
		}
		if c.Handler == nil {
			return fmt.Errorf("feature %q: command %q has no handler", f.Name, c.Name)
		}
	}

	seenProp := map[byte]bool{}
	for _, p := range f.Properties {
		if IsReservedPropertyID(p.ID) {
			return fmt.Errorf("feature %q: property %q uses reserved id 0x%02X", f.Name, p.Name, p.ID)
		}
		if seenProp[p.ID] {
			return fmt.Errorf("feature %q: duplicate property id 0x%02X", f.Name, p.ID)
		}
		seenProp[p.ID] = true
		if err := p.Validate(); err != nil {
			return fmt.Errorf("feature %q: %w", f.Name, err)
		}
	}

	seenEvt := map[byte]bool{}
	for _, e := range f.Events {
		if IsReservedEventID(e.ID) {
			return fmt.Errorf("feature %q: event %q uses reserved id 0x%02X", f.Name, e.Name, e.ID)
		}
		if seenEvt[e.ID] {
			return fmt.Errorf("feature %q: duplicate event id 0x%02X", f.Name, e.ID)
		}
		seenEvt[e.ID] = true
		if len(e.Args) > MaxCommandArgs {
			return fmt.Errorf("feature %q: event %q declares more than %d args", f.Name, e.Name, MaxCommandArgs)
		}
	}

	seenState := map[byte]bool{}
	for _, s := range f.States {
		if seenState[s.ID] {
			return fmt.Errorf("feature %q: duplicate state id 0x%02X", f.Name, s.ID)
		}
		seenState[s.ID] = true
	}

	return nil
}

// Validate exposes the per-feature descriptor checks for callers outside
// this package (Device.Validate uses it, and engine.New runs that before
// injecting mandatory descriptors).
func (f *Feature) Validate() error { return f.validate() }
