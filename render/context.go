// SPDX-License-Identifier: GPL-2.0-or-later

package render

import (
	"log/slog"
)

// Context owns the render target stack of a frame. Every Push returns a
// Scope whose Pop restores the previous target:
//
//	defer ctx.Push(t).Pop()
type Context struct {
	dev   Device
	base  Target
	stack []Target
}

func NewContext(dev Device, base Target) *Context {
	return &Context{dev: dev, base: base}
}

func (c *Context) Device() Device {
	return c.dev
}

// Current returns the active target.
func (c *Context) Current() Target {
	if len(c.stack) == 0 {
		return c.base
	}
	return c.stack[len(c.stack)-1]
}

// Depth returns the number of pushed targets.
func (c *Context) Depth() int {
	return len(c.stack)
}

type Scope struct {
	ctx    *Context
	depth  int
	popped bool
}

// Push makes t the active target.
func (c *Context) Push(t Target) *Scope {
	c.stack = append(c.stack, t)
	c.dev.SetRenderTarget(t)
	return &Scope{ctx: c, depth: len(c.stack)}
}

// Pop restores the target active before the matching Push. Calling it more
// than once is a no-op.
func (s *Scope) Pop() {
	if s.popped {
		return
	}
	s.popped = true
	c := s.ctx
	if len(c.stack) != s.depth {
		slog.Error("render target stack out of order", slog.Int("want", s.depth), slog.Int("have", len(c.stack)))
		if len(c.stack) < s.depth {
			return
		}
	}
	c.stack = c.stack[:s.depth-1]
	c.dev.SetRenderTarget(c.Current())
}

// EndFrame checks that every push was popped. A leftover stack is reported
// and dropped. Returns false in that case.
func (c *Context) EndFrame() bool {
	if len(c.stack) == 0 {
		return true
	}
	slog.Error("render target stack not empty at end of frame", slog.Int("depth", len(c.stack)))
	c.stack = c.stack[:0]
	c.dev.SetRenderTarget(c.base)
	return false
}
