// SPDX-License-Identifier: GPL-2.0-or-later

package deferred

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"deflight/bsp"
	"deflight/cvars"
	"deflight/light"
	"deflight/math/vec"
	"deflight/shading"
)

const (
	KeyAmbientHigh = "ambient_high"
	KeyAmbientLow  = "ambient_low"
)

// spawnflags of the global light entity
const (
	GlobalEnabled = 1 << iota
	GlobalShadow
)

func parseColor(s string) (mgl32.Vec4, error) {
	var c mgl32.Vec4
	for i, f := range strings.Fields(s) {
		if i >= 3 {
			break
		}
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return c, err
		}
		c[i] = float32(x)
	}
	return c, nil
}

// GlobalFromEntity reads the directional light of a light_deferred_global
// entity. The angles give the direction the light shines in.
func GlobalFromEntity(e *bsp.Entity) (shading.GlobalLight, error) {
	g := shading.DefaultGlobalLight()
	for _, k := range e.PropertyNames() {
		v, _ := e.Property(k)
		var err error
		switch k {
		case light.KeyDiffuse:
			g.Diffuse, err = parseColor(v)
		case KeyAmbientHigh:
			g.AmbientHigh, err = parseColor(v)
		case KeyAmbientLow:
			g.AmbientLow, err = parseColor(v)
		case light.KeyAngles:
			var a mgl32.Vec4
			a, err = parseColor(v)
			f, _, _ := vec.AngleVectors(vec.Vec3{a[0], a[1], a[2]})
			g.Direction = vec.Scale(-1, f).Vec4(0)
		case light.KeyFlags:
			var f int
			f, err = strconv.Atoi(strings.TrimSpace(v))
			g.Enabled = f&GlobalEnabled != 0
			g.Shadow = f&GlobalShadow != 0
		}
		if err != nil {
			return g, errors.Wrapf(err, "global light: bad %s %q", k, v)
		}
	}
	return g, nil
}

func lengthSqr3(v mgl32.Vec4) float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func cvarColor(s []float32) mgl32.Vec4 {
	return mgl32.Vec4{s[0], s[1], s[2], 0}
}

// applyOverride replaces the colors and shadow switch of g by the
// deferred_override_globallight_* cvars when they are enabled. The light is
// on if any color is not black.
func applyOverride(g shading.GlobalLight) shading.GlobalLight {
	if !cvars.DeferredOverrideGlobalLight.Bool() {
		return g
	}
	g.Shadow = cvars.DeferredOverrideGlobalShadow.Bool()
	g.Diffuse = cvarColor(cvars.DeferredOverrideGlobalDiffuse.Floats(3))
	g.AmbientHigh = cvarColor(cvars.DeferredOverrideGlobalAmbientH.Floats(3))
	g.AmbientLow = cvarColor(cvars.DeferredOverrideGlobalAmbientL.Floats(3))
	g.Enabled = lengthSqr3(g.Diffuse) > 0.01 ||
		lengthSqr3(g.AmbientHigh) > 0.01 ||
		lengthSqr3(g.AmbientLow) > 0.01
	return g
}
