// SPDX-License-Identifier: GPL-2.0-or-later

// Package cookie resolves light cookie names to projection sources.
package cookie

import (
	"sync"

	"deflight/render"
)

// Table is the shared cookie string table. Index 0 means "no cookie".
type Table struct {
	mu    sync.RWMutex
	names []string
	index map[string]int
}

func NewTable() *Table {
	return &Table{names: []string{""}, index: make(map[string]int)}
}

// Add returns the index of name, adding it if needed.
func (t *Table) Add(name string) int {
	if name == "" {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[name]; ok {
		return i
	}
	t.names = append(t.names, name)
	t.index[name] = len(t.names) - 1
	return len(t.names) - 1
}

// Set stores name at index. Used when the table is filled from outside,
// e.g. by a server sending its strings.
func (t *Table) Set(index int, name string) {
	if index <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.names) <= index {
		t.names = append(t.names, "")
	}
	if old := t.names[index]; old != "" && t.index[old] == index {
		delete(t.index, old)
	}
	t.names[index] = name
	if name != "" {
		t.index[name] = index
	}
}

func (t *Table) Name(index int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index <= 0 || index >= len(t.names) || t.names[index] == "" {
		return "", false
	}
	return t.names[index], true
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Projection is a light cookie source, exclusively owned by one light.
type Projection interface {
	Ready() bool
	// PreRender updates the content for the cookie target slot.
	PreRender(ctx *render.Context, slot int)
	Target(slot int) *render.Texture
	Release()
}

// TextureCookie projects a static texture.
type TextureCookie struct {
	tex *render.Texture
}

func (c *TextureCookie) Ready() bool                        { return c.tex != nil }
func (c *TextureCookie) PreRender(_ *render.Context, _ int) {}
func (c *TextureCookie) Target(_ int) *render.Texture       { return c.tex }
func (c *TextureCookie) Release()                           { c.tex = nil }

// PanelFunc draws a projectable panel into the active target.
type PanelFunc func(dev render.Device, vp render.Viewport)

// PanelCookie renders a panel into one of the projectable target slots
// every time it is used.
type PanelCookie struct {
	name     string
	draw     PanelFunc
	targets  func(slot int) *render.Texture
	released bool
}

func (c *PanelCookie) Ready() bool {
	return !c.released && c.draw != nil
}

func (c *PanelCookie) PreRender(ctx *render.Context, slot int) {
	t := c.Target(slot)
	if t == nil || !c.Ready() {
		return
	}
	target := render.NewTarget(t, nil)
	defer ctx.Push(target).Pop()
	ctx.Device().Clear(render.ClearColor, [4]float32{0, 0, 0, 0})
	c.draw(ctx.Device(), target.Viewport)
}

func (c *PanelCookie) Target(slot int) *render.Texture {
	if c.targets == nil {
		return nil
	}
	return c.targets(slot)
}

func (c *PanelCookie) Release() {
	c.released = true
}

// Factory creates projections by name.
type Factory struct {
	Textures render.Allocator
	Targets  *render.Targets

	mu     sync.RWMutex
	panels map[string]PanelFunc
}

func NewFactory(textures render.Allocator, targets *render.Targets) *Factory {
	return &Factory{Textures: textures, Targets: targets, panels: make(map[string]PanelFunc)}
}

// RegisterPanel makes name resolve to a projectable panel.
func (f *Factory) RegisterPanel(name string, draw PanelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panels[name] = draw
}

// Create returns the projection for name: a registered panel first, then
// a texture. Returns nil if neither exists.
func (f *Factory) Create(name string) Projection {
	if name == "" {
		return nil
	}
	f.mu.RLock()
	draw, ok := f.panels[name]
	f.mu.RUnlock()
	if ok {
		c := &PanelCookie{name: name, draw: draw}
		if f.Targets != nil {
			c.targets = f.Targets.ProjectableTarget
		}
		return c
	}
	if f.Textures == nil {
		return nil
	}
	if t, ok := f.Textures.FindTexture(name); ok && t != nil {
		return &TextureCookie{tex: t}
	}
	return nil
}

// Valid reports whether Create would succeed for name.
func (f *Factory) Valid(name string) bool {
	p := f.Create(name)
	if p == nil {
		return false
	}
	p.Release()
	return true
}
