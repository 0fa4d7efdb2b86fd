// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"deflight/cbuf"
	"deflight/cmd"
	"deflight/conlog"
	"deflight/cookie"
	"deflight/cvar"
	"deflight/deferred"
	"deflight/light"
	"deflight/lightfile"
)

// newConsole returns a command buffer knowing the cvars and the light
// commands of r.
func newConsole(r *deferred.Renderer, names *cookie.Table) *cbuf.CommandBuffer {
	c := cmd.New()
	cmd.Must(c.Add("cvarlist", func(cmd.Arguments) error {
		cvar.List()
		return nil
	}))
	cmd.Must(c.Add("lights_list", func(a cmd.Arguments) error {
		n := 0
		for i, l := range r.Lights.Lights() {
			if a.Argv(1).String() != "" && a.Argv(1).String() != l.Type().String() {
				continue
			}
			o := l.Origin()
			conlog.SafePrintf("%3d %-5s %4.0f %4.0f %4.0f r %4.0f world %v rendered %v\n",
				i, l.Type(), o[0], o[1], o[2], l.Radius(), l.IsWorld(), r.Lights.IsLightRendered(l))
			n++
		}
		conlog.SafePrintf("%d lights\n", n)
		return nil
	}))
	cmd.Must(c.Add("lights_save", func(a cmd.Arguments) error {
		path := a.ArgumentString()
		if path == "" {
			return fmt.Errorf("usage: lights_save <file>")
		}
		var ls []*light.Light
		for _, l := range r.Lights.Lights() {
			if !l.IsWorld() {
				ls = append(ls, l)
			}
		}
		if err := lightfile.Save(path, ls, names); err != nil {
			return err
		}
		conlog.Printf("saved %d lights to %s\n", len(ls), path)
		return nil
	}))
	cmd.Must(c.Add("globallight", func(cmd.Arguments) error {
		g, ok := r.GlobalLight()
		if !ok {
			conlog.SafePrintf("no global light\n")
			return nil
		}
		conlog.SafePrintf("enabled %v shadow %v\n", g.Enabled, g.Shadow)
		conlog.SafePrintf("diffuse %v\ndirection %v\n", g.Diffuse.Vec3(), g.Direction.Vec3())
		conlog.SafePrintf("ambient %v %v\n", g.AmbientHigh.Vec3(), g.AmbientLow.Vec3())
		return nil
	}))

	b := &cbuf.CommandBuffer{}
	b.SetCommandExecutors([]cbuf.Efunc{
		func(_ *cbuf.CommandBuffer, a cmd.Arguments) (bool, error) {
			return c.Execute(a)
		},
		func(_ *cbuf.CommandBuffer, a cmd.Arguments) (bool, error) {
			return cvar.Execute(a.Strings()), nil
		},
	})
	return b
}
