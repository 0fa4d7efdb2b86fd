// SPDX-License-Identifier: GPL-2.0-or-later

package view

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deflight/light"
	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
)

// Cascade is the static configuration of one ortho shadow slice of the
// global light.
type Cascade struct {
	// Size is the full width of the covered area in world units.
	Size float32
	// Offset pulls the camera back towards the light.
	Offset float32
	FarZ   float32

	SlopeMin  float32
	SlopeMax  float32
	NormalMax float32

	Res int
	// UpdateDelay is the minimum time in seconds between two renders.
	UpdateDelay float32
	AtlasX      int
	AtlasY      int
}

func DefaultCascades() []Cascade {
	return []Cascade{
		{
			Size: 1024, Offset: 2048, FarZ: 4096,
			SlopeMin: 0.002, SlopeMax: 0.01, NormalMax: 3,
			Res: 2048, UpdateDelay: 0,
		},
		{
			Size: 4096, Offset: 4096, FarZ: 8192,
			SlopeMin: 0.002, SlopeMax: 0.01, NormalMax: 3,
			Res: 2048, UpdateDelay: 0.5, AtlasX: 2048,
		},
	}
}

// DepthResolution is the smallest depth step of a 24 bit depth buffer
// spanning zDelta.
func DepthResolution(zDelta float32) float32 {
	return zDelta / 16777215
}

func snap(v, step float32) float32 {
	if step <= 0 {
		return v
	}
	return math32.Floor(v/step) * step
}

// CascadeView places the camera of cascade c. The covered area starts at
// eye and extends along the main view forward. Its center is snapped to
// whole texels in the light plane and to the depth resolution along the
// light direction so the shadow does not swim while the eye moves.
// lightDir points towards the light.
func CascadeView(index int, c Cascade, eye, mainFwd, lightDir vec.Vec3) Descriptor {
	angles := vec.VectorAngles(lightDir.Negate().Normalize())
	f, r, u := vec.AngleVectors(angles)

	center := vec.MA(eye, c.Size/2, mainFwd)
	texel := c.Size / float32(c.Res)
	depth := DepthResolution(c.FarZ)
	center = vec.Add(
		vec.Add(
			vec.Scale(snap(vec.Dot(center, r), texel), r),
			vec.Scale(snap(vec.Dot(center, u), texel), u)),
		vec.Scale(snap(vec.Dot(center, f), depth), f))

	return Descriptor{
		Kind:       KindCascade,
		Index:      index,
		Origin:     vec.MA(center, -c.Offset, f),
		Angles:     angles,
		Forward:    f,
		Right:      r,
		Up:         u,
		Ortho:      true,
		HalfWidth:  c.Size / 2,
		HalfHeight: c.Size / 2,
		Near:       0,
		Far:        c.FarZ,
		Viewport:   render.Viewport{X: c.AtlasX, Y: c.AtlasY, Width: c.Res, Height: c.Res},
		Clear:      render.ClearDepth,
		ClearColor: [4]float32{1, 1, 1, 1},
		Draw:       DrawWorld | DrawEntities | DrawShadowCasters,
	}
}

// OrthoData is the shading data of a rendered cascade.
func OrthoData(d *Descriptor, c Cascade) shading.ShadowDataOrtho {
	const w, h = render.CascadeAtlasWidth, render.CascadeAtlasHeight
	vp := d.Viewport
	return shading.ShadowDataOrtho{
		WorldToTexture: mat.ScreenToTexture().Mul4(d.ViewProjection()),
		UVTransform: mgl32.Vec4{
			float32(vp.X) / w, float32(vp.Y) / h,
			float32(vp.Width) / w, float32(vp.Height) / h,
		},
		SlopeSettings: mgl32.Vec4{c.SlopeMin, c.SlopeMax, c.NormalMax, c.FarZ},
		Origin:        d.Origin.Vec4(1),
		ResX:          c.Res,
		ResY:          c.Res,
	}
}

// DPSMViews returns the two hemisphere views of a point light sharing one
// res x 2res target. The second view looks the other way.
func DPSMViews(l *light.Resolved, slot, res int) [2]Descriptor {
	base := Descriptor{
		Kind:       KindDPSM,
		Index:      slot,
		Origin:     l.Origin,
		Ortho:      true,
		HalfWidth:  l.Radius,
		HalfHeight: l.Radius,
		Near:       0,
		Far:        l.Radius,
		Clear:      render.ClearDepth,
		ClearColor: [4]float32{1, 1, 1, 1},
		Draw:       DrawWorld | DrawEntities | DrawShadowCasters,
	}
	front := base
	front.Angles = l.Angles
	front.Forward, front.Right, front.Up = vec.AngleVectors(l.Angles)
	front.Viewport = render.Viewport{Width: res, Height: res}

	back := base
	back.Secondary = true
	back.Angles = vec.VectorAnglesUp(front.Forward.Negate(), front.Up)
	back.Forward, back.Right, back.Up = vec.AngleVectors(back.Angles)
	back.Viewport = render.Viewport{Y: res, Width: res, Height: res}
	return [2]Descriptor{front, back}
}

// ProjectedView returns the shadow view of a spot light.
func ProjectedView(l *light.Resolved, slot, res int) Descriptor {
	far := l.Radius
	if far <= light.SpotZNear {
		far = light.SpotZNear + 1
	}
	return Descriptor{
		Kind:       KindProjected,
		Index:      slot,
		Origin:     l.Origin,
		Angles:     l.Angles,
		Forward:    l.Forward,
		Right:      l.Right,
		Up:         l.Up,
		FOV:        l.FOV,
		Near:       light.SpotZNear,
		Far:        far,
		Viewport:   render.Viewport{Width: res, Height: res},
		Clear:      render.ClearDepth,
		ClearColor: [4]float32{1, 1, 1, 1},
		Draw:       DrawWorld | DrawEntities | DrawShadowCasters,
	}
}

// ProjData is the shading data of a rendered spot shadow.
func ProjData(d *Descriptor) shading.ShadowProj {
	return shading.ShadowProj{
		Forward:       d.Forward.Vec4(0),
		SlopeSettings: mgl32.Vec4{0.001, 0.005, 3, d.Far},
		Origin:        d.Origin.Vec4(1),
	}
}

// RenderProjected renders and commits the shadow of spot light l into slot.
func (r *Runner) RenderProjected(ctx *render.Context, l *light.Resolved, slot int) bool {
	res := 0
	if r.Targets != nil {
		res = r.Targets.SpotRes
	}
	d := ProjectedView(l, slot, res)
	if !r.Run(ctx, &d) {
		return false
	}
	depth, _ := r.Targets.ShadowProj(slot)
	r.Stage.CommitShadowDataProj(slot, ProjData(&d))
	r.Stage.CommitTextureProjectedDepth(slot, depth)
	return true
}

// RenderDPSM renders both halves of the shadow of point light l into slot.
func (r *Runner) RenderDPSM(ctx *render.Context, l *light.Resolved, slot int) bool {
	res := 0
	if r.Targets != nil {
		res = r.Targets.PointRes
	}
	for _, d := range DPSMViews(l, slot, res) {
		if !r.Run(ctx, &d) {
			return false
		}
	}
	depth, _ := r.Targets.ShadowDP(slot)
	r.Stage.CommitTextureDualParaboloidDepth(slot, depth)
	return true
}
