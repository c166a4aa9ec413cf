// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package idl streams a device's self-description as JSON, fragment by
// fragment, so the whole document is never materialized in memory — the
// host reads it back through the same packetized transport the rest of
// the protocol uses.
package idl

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kiksotik/hdc/pkg/hdc/model"
)

// Generate writes dev's IDL-JSON document to w.
func Generate(w io.Writer, dev *model.Device) error {
	g := &generator{w: w}
	g.raw("{")
	g.field("version", true)
	g.str(dev.VersionString)
	g.field("max_req", false)
	g.raw(fmt.Sprintf("%d", dev.MaxReqMessageSize))
	g.field("features", false)
	g.raw("[")
	for i, f := range dev.Features {
		if i > 0 {
			g.raw(",")
		}
		g.feature(f)
	}
	g.raw("]}")
	return g.err
}

// generator writes JSON fragments to w, short-circuiting on the first
// write error it observes.
type generator struct {
	w   io.Writer
	err error
}

func (g *generator) raw(s string) {
	if g.err != nil {
		return
	}
	_, g.err = io.WriteString(g.w, s)
}

// field writes `"name":`, preceded by a comma unless first is true.
func (g *generator) field(name string, first bool) {
	if !first {
		g.raw(",")
	}
	g.str(name)
	g.raw(":")
}

// str writes s as a quoted, escaped JSON string, using the same escaping
// encoding/json applies to any string it marshals.
func (g *generator) str(s string) {
	if g.err != nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		g.err = err
		return
	}
	_, g.err = g.w.Write(b)
}

func (g *generator) strOpt(name, value string, first bool) {
	if value == "" {
		return
	}
	g.field(name, first)
	g.str(value)
}

func (g *generator) feature(f *model.Feature) {
	g.raw("{")
	g.field("id", true)
	g.raw(fmt.Sprintf("%d", f.ID))
	g.field("name", false)
	g.str(f.Name)
	g.field("cls", false)
	g.str(f.ClassName)
	g.field("version", false)
	g.str(f.ClassVersion)
	g.strOpt("doc", f.Doc, false)

	g.field("states", false)
	g.raw("[")
	for i, s := range f.States {
		if i > 0 {
			g.raw(",")
		}
		g.state(s)
	}
	g.raw("]")

	g.field("commands", false)
	g.raw("[")
	for i, c := range f.Commands {
		if i > 0 {
			g.raw(",")
		}
		g.command(c)
	}
	g.raw("]")

	g.field("events", false)
	g.raw("[")
	for i, e := range f.Events {
		if i > 0 {
			g.raw(",")
		}
		g.event(e)
	}
	g.raw("]")

	g.field("properties", false)
	g.raw("[")
	for i, p := range f.Properties {
		if i > 0 {
			g.raw(",")
		}
		g.property(p)
	}
	g.raw("]")

	g.raw("}")
}

func (g *generator) state(s model.State) {
	g.raw("{")
	g.field("id", true)
	g.raw(fmt.Sprintf("%d", s.ID))
	g.field("name", false)
	g.str(s.Name)
	g.strOpt("doc", s.Doc, false)
	g.raw("}")
}

func (g *generator) command(c *model.Command) {
	g.raw("{")
	g.field("id", true)
	g.raw(fmt.Sprintf("%d", c.ID))
	g.field("name", false)
	g.str(c.Name)
	g.strOpt("doc", c.Doc, false)

	g.field("args", false)
	g.raw("[")
	for i, a := range c.Args {
		if i > 0 {
			g.raw(",")
		}
		g.argument(a)
	}
	g.raw("]")

	g.field("returns", false)
	g.raw("[")
	for i, r := range c.Returns {
		if i > 0 {
			g.raw(",")
		}
		g.argument(r)
	}
	g.raw("]")

	g.field("raises", false)
	g.raw("[")
	for i, exc := range c.Raises {
		if i > 0 {
			g.raw(",")
		}
		g.exception(exc)
	}
	g.raw("]")

	g.raw("}")
}

func (g *generator) event(e *model.Event) {
	g.raw("{")
	g.field("id", true)
	g.raw(fmt.Sprintf("%d", e.ID))
	g.field("name", false)
	g.str(e.Name)
	g.strOpt("doc", e.Doc, false)

	g.field("args", false)
	g.raw("[")
	for i, a := range e.Args {
		if i > 0 {
			g.raw(",")
		}
		g.argument(a)
	}
	g.raw("]")

	g.raw("}")
}

func (g *generator) property(p *model.Property) {
	g.raw("{")
	g.field("id", true)
	g.raw(fmt.Sprintf("%d", p.ID))
	g.field("name", false)
	g.str(p.Name)
	g.field("dtype", false)
	g.str(p.DType.Name())
	if p.DType.IsVariableWidth() && p.ValueSize > 0 {
		g.field("size", false)
		g.raw(fmt.Sprintf("%d", p.ValueSize))
	}
	g.field("ro", false)
	if p.ReadOnly {
		g.raw("true")
	} else {
		g.raw("false")
	}
	g.strOpt("doc", p.Doc, false)
	g.raw("}")
}

func (g *generator) argument(a model.Argument) {
	g.raw("{")
	g.field("dtype", true)
	g.str(a.DType.Name())
	g.strOpt("name", a.Name, false)
	g.strOpt("doc", a.Doc, false)
	g.raw("}")
}

func (g *generator) exception(e *model.Exception) {
	g.raw("{")
	g.field("id", true)
	g.raw(fmt.Sprintf("%d", e.ID))
	g.field("name", false)
	g.str(e.Name)
	g.strOpt("doc", e.Doc, false)
	g.raw("}")
}
