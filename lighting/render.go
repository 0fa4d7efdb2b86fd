// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"deflight/conlog"
	"deflight/cvars"
	"deflight/light"
	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
	"deflight/view"
)

// SetRenderConstants commits the per view constants of the main view v.
func (m *Manager) SetRenderConstants(v *view.Descriptor) {
	m.eye, m.zNear = v.Origin, v.Near
	s := m.Stage
	s.CommitOrigin(v.Origin)
	s.CommitViewForward(v.Forward)
	s.CommitZDists(v.Near, v.Far)
	s.CommitZScale(v.Far)
	s.CommitFrustumDeltas(FrustumDeltas(v))
	g := shading.DefaultShadowGeneral()
	if m.Targets != nil {
		g = shading.ShadowGeneral{
			DPSMResX: m.Targets.PointRes,
			DPSMResY: m.Targets.PointRes,
			ProjRes:  m.Targets.SpotRes,
		}
	}
	s.CommitShadowDataGeneral(g)
}

// FrustumDeltas returns the vectors from the eye to the far plane center,
// from there to the right edge and to the top edge, divided by the far
// distance. They are the first three rows.
func FrustumDeltas(v *view.Descriptor) mgl32.Mat4 {
	if v.Far <= 0 {
		return mgl32.Ident4()
	}
	inv := v.ViewProjection().Inv()
	cc := vec.Sub(mat.TransformPoint(inv, vec.Vec3{0, 0, 1}), v.Origin)
	c0 := vec.Sub(mat.TransformPoint(inv, vec.Vec3{0, 1, 1}), v.Origin)
	c1 := vec.Sub(mat.TransformPoint(inv, vec.Vec3{1, 0, 1}), v.Origin)
	s := 1 / v.Far
	up := vec.Scale(s, vec.Sub(c0, cc))
	right := vec.Scale(s, vec.Sub(c1, cc))
	cc = vec.Scale(s, cc)
	return mgl32.Mat4FromRows(cc.Vec4(0), right.Vec4(0), up.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
}

// RenderShadows renders the shadow maps of the culled lights within their
// shadow distance, most significant first, while slots are left. It
// returns the number of shadowed lights.
func (m *Manager) RenderShadows(ctx *render.Context, r *view.Runner) int {
	m.projSlots.Reset()
	m.dpSlots.Reset()
	clear(m.shadows)
	if !cvars.DeferredShadowsEnable.Bool() || r == nil {
		return 0
	}
	var cands []*light.Resolved
	for _, l := range m.rendered {
		if l.HasShadow(m.eye) {
			cands = append(cands, l)
		}
	}
	slices.SortStableFunc(cands, m.significance)

	n := 0
	for _, l := range cands {
		pool := m.dpSlots
		if l.Type == light.Spot {
			pool = m.projSlots
		}
		slot, ok := pool.Acquire()
		if !ok {
			conlog.WarnOnce("lighting.shadowslots."+l.Type.String(), "out of %v shadow maps, light drawn unshadowed\n", l.Type)
			continue
		}
		if l.Type == light.Spot {
			ok = r.RenderProjected(ctx, l, slot)
		} else {
			ok = r.RenderDPSM(ctx, l, slot)
		}
		if !ok {
			pool.Release(slot)
			continue
		}
		m.shadows[l.Light] = slot
		n++
	}
	return n
}

// ShadowSlot returns the shadow map slot l was given this frame.
func (m *Manager) ShadowSlot(l *light.Light) (int, bool) {
	s, ok := m.shadows[l]
	return s, ok
}

// RenderLights draws the sorted lights additively into the current target,
// which is the light accumulation buffer. It returns the number of lights
// drawn.
func (m *Manager) RenderLights(ctx *render.Context) int {
	dev := ctx.Device()
	dev.SetBlend(render.BlendAdditive)
	defer dev.SetBlend(render.BlendNone)

	n := m.renderWorld(ctx, m.buckets[PointWorld])
	n += m.renderFullscreen(ctx, light.Point, m.buckets[PointFullscreen])
	n += m.renderWorld(ctx, m.buckets[SpotWorld])
	n += m.renderFullscreen(ctx, light.Spot, m.buckets[SpotFullscreen])
	return n
}

func (m *Manager) renderWorld(ctx *render.Context, ls []*light.Resolved) int {
	dev := ctx.Device()
	n := 0
	for _, l := range ls {
		if l.WorldMesh == nil {
			conlog.WarnOnce("lighting.mesh."+l.Type.String(), "no mesh for %v light, skipping\n", l.Type)
			continue
		}
		ps, _ := m.admit([]*light.Resolved{l})
		if len(ps) == 0 {
			continue
		}
		m.commit(ctx, ps)
		dev.SetIntParameter(render.ParamLightType, int(l.Type))
		dev.DrawMesh(l.WorldMesh, l.WorldTransform)
		n++
	}
	return n
}

func (m *Manager) renderFullscreen(ctx *render.Context, t light.Type, ls []*light.Resolved) int {
	if len(ls) == 0 {
		return 0
	}
	material := render.MatLightPointFullscreen
	if t == light.Spot {
		material = render.MatLightSpotFullscreen
	}
	dev := ctx.Device()
	if !dev.HasMaterial(material) {
		conlog.WarnOnce("lighting.material."+material.String(), "material %v missing, skipping\n", material)
		return 0
	}
	ps, _ := m.admit(ls)
	if len(ps) == 0 {
		return 0
	}
	m.commit(ctx, ps)
	dev.SetIntParameter(render.ParamLightType, int(t))
	dev.DrawFullscreen(material, len(ps))
	return len(ps)
}

// RenderVolumetrics accumulates the volumes of the rendered volumetric
// lights into a quarter size buffer and blends it onto the current target.
func (m *Manager) RenderVolumetrics(ctx *render.Context) int {
	if !cvars.DeferredVolumetricsEnable.Bool() || m.Targets == nil {
		return 0
	}
	var ls []*light.Resolved
	for _, l := range m.rendered {
		if l.HasVolumetrics() && l.VolumeMesh != nil {
			ls = append(ls, l)
		}
	}
	if len(ls) == 0 {
		return 0
	}
	buf := m.Targets.VolumetricsBuffer(0)
	if buf == nil {
		conlog.WarnOnce("lighting.volumetrics", "volumetrics buffer missing, skipping\n")
		return 0
	}
	n := m.accumulateVolumes(ctx, buf, ls)
	if n == 0 {
		return 0
	}
	dev := ctx.Device()
	dev.SetBlend(render.BlendAdditive)
	dev.DrawFullscreen(render.MatLightVolumeBlend, 1)
	dev.SetBlend(render.BlendNone)
	return n
}

func (m *Manager) accumulateVolumes(ctx *render.Context, buf *render.Texture, ls []*light.Resolved) int {
	defer ctx.Push(render.NewTarget(buf, nil)).Pop()
	dev := ctx.Device()
	dev.Clear(render.ClearColor, [4]float32{})
	defer dev.SetBlend(render.BlendNone)

	n := 0
	for _, l := range ls {
		if l.Type == light.Spot && !m.volumePrepass(ctx, l) {
			continue
		}
		ps, _ := m.admit([]*light.Resolved{l})
		if len(ps) == 0 {
			continue
		}
		m.commit(ctx, ps)
		m.Stage.CommitVolumeData(shading.VolumeData{
			NumRows:   len(m.rows),
			HasCookie: ps[0].cookie >= 0,
		})
		shading.Flush(m.Stage)
		dev.SetBlend(render.BlendAdditive)
		dev.DrawMesh(l.VolumeMesh, l.WorldTransform)
		n++
	}
	return n
}

// volumePrepass renders the inside of the spot cone so the volume pass
// knows where the cone ends behind the scene.
func (m *Manager) volumePrepass(ctx *render.Context, l *light.Resolved) bool {
	t := m.Targets.VolumePrepass
	if t == nil || l.PrepassMesh == nil {
		conlog.WarnOnce("lighting.prepass", "volume prepass unavailable, skipping spot volumes\n")
		return false
	}
	defer ctx.Push(render.NewTarget(t, nil)).Pop()
	dev := ctx.Device()
	dev.SetBlend(render.BlendNone)
	dev.SetIntParameter(render.ParamRenderStage, render.StageVolumePrepass)
	defer dev.SetIntParameter(render.ParamRenderStage, render.StageInvalid)
	dev.Clear(render.ClearColor, [4]float32{})
	dev.DrawMesh(l.PrepassMesh, l.WorldTransform)
	m.Stage.CommitTextureVolumePrepass(t)
	return true
}

var debugColors = [NumBuckets][4]float32{
	PointWorld:      {1, 1, 0, 1},
	PointFullscreen: {1, 0.5, 0, 1},
	SpotWorld:       {0, 1, 1, 1},
	SpotFullscreen:  {0, 0.5, 1, 1},
}

// DrawDebug draws the bounds of the sorted lights when
// deferred_lights_debug is set.
func (m *Manager) DrawDebug(ctx *render.Context) int {
	if !cvars.DeferredLightsDebug.Bool() {
		return 0
	}
	dev := ctx.Device()
	n := 0
	for b, ls := range m.buckets {
		for _, l := range ls {
			dev.DrawBox(l.Mins, l.Maxs, debugColors[b])
			n++
		}
	}
	return n
}
