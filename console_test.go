// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deflight/conlog"
	"deflight/cookie"
	"deflight/cvars"
	"deflight/deferred"
	"deflight/light"
	"deflight/lightfile"
	"deflight/lighting"
	"deflight/math/vec"
	"deflight/render"
	"deflight/render/record"
	"deflight/shading"
	"deflight/view"
)

func TestConsole(t *testing.T) {
	var out strings.Builder
	conlog.SetSavePrintf(func(f string, v ...interface{}) { fmt.Fprintf(&out, f, v...) })
	t.Cleanup(func() { conlog.SetSavePrintf(conlog.Printf) })
	old := cvars.DeferredLightsDebug.String()
	t.Cleanup(func() { cvars.DeferredLightsDebug.SetByString(old) })

	a := record.NewAllocator()
	targets, _ := render.InitTargets(a, 64, 64, 64, 64)
	dev := record.NewDevice()
	st := shading.NewState()
	names := cookie.NewTable()
	env := light.Env{
		Meshes:    &record.MeshFactory{},
		Materials: dev,
		Names:     names,
		Cookies:   cookie.NewFactory(a, targets),
	}
	r := deferred.New(lighting.New(env, st, targets), &view.Runner{Targets: targets, Stage: st}, view.NewScheduler(view.DefaultCascades()))
	spot := light.New(light.Spot)
	spot.SetOrigin(vec.Vec3{10, 20, 30})
	r.Lights.AddLight(spot)
	r.Lights.AddLight(light.New(light.Point))

	path := filepath.Join(t.TempDir(), "start.lights")
	c := newConsole(r, names)
	c.AddText("lights_list spot; deferred_lights_debug 1; wait; lights_save " + path)
	c.Execute()
	assert.Contains(t, out.String(), "1 lights")
	assert.True(t, cvars.DeferredLightsDebug.Bool())
	assert.NoFileExists(t, path)

	c.Execute()
	ls, err := lightfile.Load(path, names, env.Cookies)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.Equal(t, vec.Vec3{10, 20, 30}, ls[0].Origin())

	out.Reset()
	c.AddText("globallight\nno_such_command")
	c.Execute()
	assert.Contains(t, out.String(), "no global light")
	assert.True(t, c.Empty())
}
