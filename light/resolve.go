// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"deflight/cookie"
	"deflight/frustum"
	"deflight/math/vec"
	"deflight/render"
)

// Env holds the collaborators needed to resolve lights.
type Env struct {
	World     World
	Meshes    render.MeshFactory
	Materials Materials
	Names     *cookie.Table
	Cookies   CookieSource
}

// Resolved is the per frame view of a light used by culling and drawing.
// It is only valid until the light is changed again.
type Resolved struct {
	Light *Light
	ID    uuid.UUID
	Type  Type
	World bool
	Flags Flags

	Origin  vec.Vec3
	Angles  vec.Vec3
	Forward vec.Vec3
	Right   vec.Vec3
	Up      vec.Vec3
	Radius  float32
	Power   float32
	// half angles in radians
	ConeInner float32
	ConeOuter float32
	FOV       float32

	// Diffuse and Ambient include the style value.
	Diffuse vec.Vec3
	Ambient vec.Vec3
	Style   float32

	VisDist     float32
	VisRange    float32
	ShadowDist  float32
	ShadowRange float32
	MaxDistSqr  float32

	Mins, Maxs           vec.Vec3
	NaiveMins, NaiveMaxs vec.Vec3
	Center               vec.Vec3
	Leaves               []int

	WorldTransform mgl32.Mat4
	ViewProj       mgl32.Mat4
	WorldToTexture mgl32.Mat4
	Frustum        frustum.Frustum

	Cookie      cookie.Projection
	WorldMesh   render.Mesh
	VolumeMesh  render.Mesh
	PrepassMesh render.Mesh
}

// Resolve runs every pending recompute and returns the snapshot at time now.
func (l *Light) Resolve(env *Env, now float64) Resolved {
	if env == nil {
		env = &Env{}
	}
	if l.dirty&DirtyTransforms != 0 {
		l.UpdateTransforms()
	}
	if l.dirty&DirtyBounds != 0 {
		l.UpdateBounds(env.World)
	}
	if l.dirty&DirtyLeaves != 0 {
		l.EnumerateLeaves(env.World)
	}
	if l.dirty&DirtyRenderMesh != 0 {
		l.UpdateRenderMesh(env.Meshes, env.Materials)
	}
	if l.dirty&DirtyVolumetrics != 0 {
		l.UpdateVolumetrics(env.Meshes, env.Materials)
	}
	if l.dirty&DirtyCookie != 0 {
		l.UpdateCookie(env.Names, env.Cookies)
	}

	s := l.ComputeStyleValue(now)
	return Resolved{
		Light:          l,
		ID:             l.id,
		Type:           l.typ,
		World:          l.world,
		Flags:          l.flags,
		Origin:         l.origin,
		Angles:         l.angles,
		Forward:        l.forward,
		Right:          l.right,
		Up:             l.up,
		Radius:         l.radius,
		Power:          l.power,
		ConeInner:      l.coneInner,
		ConeOuter:      l.coneOuter,
		FOV:            l.fov,
		Diffuse:        vec.Scale(s, l.diffuse),
		Ambient:        vec.Scale(s, l.ambient),
		Style:          s,
		VisDist:        float32(l.visDist),
		VisRange:       float32(l.visRange),
		ShadowDist:     float32(l.shadowDist),
		ShadowRange:    float32(l.shadowRange),
		MaxDistSqr:     l.maxDistSqr,
		Mins:           l.mins,
		Maxs:           l.maxs,
		NaiveMins:      l.naiveMins,
		NaiveMaxs:      l.naiveMaxs,
		Center:         l.center,
		Leaves:         l.leaves,
		WorldTransform: l.worldXf,
		ViewProj:       l.viewProj,
		WorldToTexture: l.worldToTex,
		Frustum:        l.frustum,
		Cookie:         l.cookieProj,
		WorldMesh:      l.meshWorld,
		VolumeMesh:     l.meshVolume,
		PrepassMesh:    l.meshPrepass,
	}
}

func (r *Resolved) Enabled() bool        { return r.Flags&FlagEnabled != 0 }
func (r *Resolved) HasVolumetrics() bool { return r.Flags&FlagVolumetrics != 0 }
func (r *Resolved) HasCookie() bool      { return r.Cookie != nil && r.Cookie.Ready() }

// HasShadow reports whether the light casts a shadow seen from eye.
func (r *Resolved) HasShadow(eye vec.Vec3) bool {
	if r.Flags&FlagShadow == 0 {
		return false
	}
	d := r.ShadowDist + r.ShadowRange
	return vec.Sub(eye, r.Origin).LengthSqr() <= d*d
}

// ShadowFade returns 1 when the eye is within the shadow distance and fades
// to 0 over the shadow range.
func (r *Resolved) ShadowFade(eye vec.Vec3) float32 {
	return fade(vec.Sub(eye, r.Origin).Length(), r.ShadowDist, r.ShadowRange)
}

// VisibleFade is ShadowFade for the visible distance.
func (r *Resolved) VisibleFade(eye vec.Vec3) float32 {
	return fade(vec.Sub(eye, r.Origin).Length(), r.VisDist, r.VisRange)
}

func fade(dist, start, rng float32) float32 {
	if dist <= start {
		return 1
	}
	if rng <= 0 || dist >= start+rng {
		return 0
	}
	return 1 - (dist-start)/rng
}

// Inside reports whether eye is inside the proxy volume grown by margin.
// Lights seen from inside are drawn fullscreen.
func (r *Resolved) Inside(eye vec.Vec3, margin float32) bool {
	switch r.Type {
	case Spot:
		f := r.Frustum.Expanded(margin)
		return f.Contains(eye)
	default:
		d := r.Radius*proxyScale + margin
		return vec.Sub(eye, r.Origin).LengthSqr() <= d*d
	}
}
