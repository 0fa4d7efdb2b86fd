// SPDX-License-Identifier: GPL-2.0-or-later

// Package view describes the camera passes of a frame and runs them.
package view

import (
	"github.com/go-gl/mathgl/mgl32"

	"deflight/frustum"
	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
)

type Kind int

const (
	KindSkyboxGBuffer Kind = iota
	KindGBuffer
	KindSkyboxComposite
	KindComposite
	KindCascade
	KindDPSM
	KindProjected
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindSkyboxGBuffer:
		return "skybox gbuffer"
	case KindGBuffer:
		return "gbuffer"
	case KindSkyboxComposite:
		return "skybox composite"
	case KindComposite:
		return "composite"
	case KindCascade:
		return "cascade"
	case KindDPSM:
		return "dpsm"
	case KindProjected:
		return "projected"
	}
	return "unknown"
}

// DrawFlags select what the scene drawer submits for a view.
type DrawFlags uint32

const (
	DrawWorld DrawFlags = 1 << iota
	DrawEntities
	DrawSkybox
	DrawTranslucent
	DrawShadowCasters
	DrawViewModel
)

// Descriptor is one camera pass. It is built per pass and thrown away.
type Descriptor struct {
	Kind Kind
	// shadow slot, cascade index or 0
	Index int
	// second half of a dual paraboloid pair
	Secondary bool

	Origin  vec.Vec3
	Angles  vec.Vec3
	Forward vec.Vec3
	Right   vec.Vec3
	Up      vec.Vec3

	// FOV is the horizontal field of view in degrees of perspective views.
	FOV        float32
	Ortho      bool
	HalfWidth  float32
	HalfHeight float32
	Near       float32
	Far        float32

	Viewport   render.Viewport
	Clear      render.ClearFlags
	ClearColor [4]float32
	Draw       DrawFlags
}

// ShadowMode returns the sampling mode of a shadow view. ok is false for
// views that do not render shadows.
func (d *Descriptor) ShadowMode() (m shading.ShadowMode, ok bool) {
	switch d.Kind {
	case KindCascade:
		return shading.ShadowOrtho, true
	case KindProjected:
		return shading.ShadowProjected, true
	case KindDPSM:
		return shading.ShadowDPSM, true
	}
	return 0, false
}

func (d *Descriptor) aspect() float32 {
	if d.Viewport.Height == 0 {
		return 1
	}
	return float32(d.Viewport.Width) / float32(d.Viewport.Height)
}

func (d *Descriptor) View() mgl32.Mat4 {
	return mat.View(d.Origin, d.Forward, d.Right, d.Up)
}

func (d *Descriptor) Projection() mgl32.Mat4 {
	if d.Ortho {
		return mat.Ortho(d.HalfWidth, d.HalfHeight, d.Near, d.Far)
	}
	return mat.PerspectiveX(d.FOV, d.aspect(), d.Near, d.Far)
}

func (d *Descriptor) ViewProjection() mgl32.Mat4 {
	return d.Projection().Mul4(d.View())
}

// Frustum returns the culling volume of the view.
func (d *Descriptor) Frustum() frustum.Frustum {
	if d.Ortho {
		return frustum.NewOrtho(d.Origin, d.Forward, d.Right, d.Up, d.HalfWidth, d.HalfHeight, d.Near, d.Far)
	}
	return frustum.NewPerspective(d.Origin, d.Forward, d.Right, d.Up, d.FOV, mat.FovY(d.FOV, d.aspect()), d.Near, d.Far)
}

// Main returns the G-buffer view of the player camera.
func Main(origin, angles vec.Vec3, fovX float32, vp render.Viewport, near, far float32) Descriptor {
	f, r, u := vec.AngleVectors(angles)
	return Descriptor{
		Kind:     KindGBuffer,
		Origin:   origin,
		Angles:   angles,
		Forward:  f,
		Right:    r,
		Up:       u,
		FOV:      fovX,
		Near:     near,
		Far:      far,
		Viewport: vp,
		Clear:    render.ClearColor | render.ClearDepth,
		Draw:     DrawWorld | DrawEntities | DrawViewModel,
	}
}

// As returns a copy of d for another pass kind with that kind's clear and
// draw policy.
func (d Descriptor) As(k Kind) Descriptor {
	d.Kind = k
	switch k {
	case KindSkyboxGBuffer:
		d.Clear = render.ClearColor | render.ClearDepth
		d.Draw = DrawSkybox | DrawWorld | DrawEntities
	case KindGBuffer:
		d.Draw = DrawWorld | DrawEntities | DrawViewModel
	case KindSkyboxComposite:
		d.Clear = render.ClearColor | render.ClearDepth
		d.Draw = DrawSkybox | DrawWorld | DrawEntities
	case KindComposite:
		d.Clear = render.ClearDepth
		d.Draw = DrawWorld | DrawEntities | DrawTranslucent | DrawViewModel
	}
	return d
}
