// SPDX-License-Identifier: GPL-2.0-or-later

package view

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deflight/light"
	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/render"
	"deflight/render/record"
	"deflight/shading"
)

type countingScene struct {
	views []Kind
}

func (s *countingScene) DrawScene(ctx *render.Context, d *Descriptor) {
	s.views = append(s.views, d.Kind)
}

func newRunner(t *testing.T, fail ...string) (*Runner, *record.Device, *shading.State, *countingScene) {
	t.Helper()
	a := record.NewAllocator()
	for _, f := range fail {
		a.Fail[f] = true
	}
	targets, _ := render.InitTargets(a, 640, 480, 256, 256)
	st := shading.NewState()
	sc := &countingScene{}
	return &Runner{Targets: targets, Stage: st, Scene: sc}, record.NewDevice(), st, sc
}

func TestShadowModes(t *testing.T) {
	tests := []struct {
		kind Kind
		mode shading.ShadowMode
		ok   bool
	}{
		{KindCascade, shading.ShadowOrtho, true},
		{KindProjected, shading.ShadowProjected, true},
		{KindDPSM, shading.ShadowDPSM, true},
		{KindGBuffer, 0, false},
		{KindComposite, 0, false},
	}
	for _, tc := range tests {
		d := Descriptor{Kind: tc.kind}
		m, ok := d.ShadowMode()
		assert.Equal(t, tc.ok, ok, tc.kind.String())
		if ok {
			assert.Equal(t, tc.mode, m, tc.kind.String())
		}
	}
}

func TestGBufferPass(t *testing.T) {
	r, dev, _, sc := newRunner(t)
	ctx := render.NewContext(dev, render.Target{})
	d := Main(vec.Vec3{}, vec.Vec3{}, 90, render.Viewport{Width: 640, Height: 480}, 4, 4096)
	require.True(t, r.Run(ctx, &d))
	assert.Equal(t, 0, ctx.Depth())
	assert.Equal(t, []Kind{KindGBuffer}, sc.views)

	targets := dev.Filter(record.SetTarget)
	require.Len(t, targets, 2)
	assert.Equal(t, render.NameNormals, targets[0].Target)
	assert.Equal(t, "backbuffer", targets[1].Target)

	params := dev.Filter(record.SetParam)
	require.Len(t, params, 2)
	assert.Equal(t, render.StageGBuffer, params[0].Value)
	assert.Equal(t, render.StageInvalid, params[1].Value)
}

func TestGBufferMissingTarget(t *testing.T) {
	r, dev, _, sc := newRunner(t, render.NameNormals)
	ctx := render.NewContext(dev, render.Target{})
	d := Main(vec.Vec3{}, vec.Vec3{}, 90, render.Viewport{Width: 640, Height: 480}, 4, 4096)
	assert.False(t, r.Run(ctx, &d))
	assert.Empty(t, sc.views)
	assert.Equal(t, 0, ctx.Depth())
}

func TestAsPolicies(t *testing.T) {
	d := Main(vec.Vec3{}, vec.Vec3{}, 90, render.Viewport{Width: 4, Height: 4}, 4, 100)
	c := d.As(KindComposite)
	assert.Equal(t, KindComposite, c.Kind)
	assert.Equal(t, render.ClearDepth, c.Clear)
	assert.NotZero(t, c.Draw&DrawTranslucent)
	s := d.As(KindSkyboxGBuffer)
	assert.NotZero(t, s.Draw&DrawSkybox)
	assert.Equal(t, KindGBuffer, d.Kind, "As changed the source descriptor")
}

func TestCascadeSnapping(t *testing.T) {
	c := DefaultCascades()[0]
	dir := vec.Vec3{0.3, 0.2, 1}.Normalize()
	fwd := vec.Vec3{1, 0, 0}
	a := CascadeView(0, c, vec.Vec3{10, 20, 30}, fwd, dir)
	b := CascadeView(0, c, vec.Vec3{10.1, 20.05, 30}, fwd, dir)
	texel := c.Size / float32(c.Res)
	for _, axis := range []vec.Vec3{a.Right, a.Up} {
		diff := (vec.Dot(a.Origin, axis) - vec.Dot(b.Origin, axis)) / texel
		assert.InDelta(t, math32.Round(diff), diff, 0.01, "origin moved by a fraction of a texel")
	}
	assert.InDelta(t, 1, vec.Dot(a.Forward, dir.Negate()), 1e-4)
	assert.Equal(t, render.Viewport{Width: 2048, Height: 2048}, a.Viewport)
	assert.True(t, a.Ortho)

	// the eye area is inside the cascade
	f := a.Frustum()
	assert.True(t, f.Contains(vec.MA(vec.Vec3{10, 20, 30}, 100, fwd)))
}

func TestCascadeStraightDown(t *testing.T) {
	c := DefaultCascades()[1]
	d := CascadeView(1, c, vec.Vec3{}, vec.Vec3{0, 1, 0}, vec.Vec3{0, 0, 1})
	assert.InDelta(t, -1, d.Forward[2], 1e-5)
	assert.InDelta(t, c.Offset, d.Origin[2], 1)
	assert.Equal(t, 2048, d.Viewport.X)
}

func TestOrthoData(t *testing.T) {
	c := DefaultCascades()[1]
	d := CascadeView(1, c, vec.Vec3{}, vec.Vec3{1, 0, 0}, vec.Vec3{0, 0, 1})
	o := OrthoData(&d, c)
	assert.InDelta(t, 0.5, o.UVTransform[0], 1e-6)
	assert.InDelta(t, 0, o.UVTransform[1], 1e-6)
	assert.InDelta(t, 0.5, o.UVTransform[2], 1e-6)
	assert.InDelta(t, 1, o.UVTransform[3], 1e-6)
	assert.Equal(t, c.FarZ, o.SlopeSettings[3])
	assert.Equal(t, 2048, o.ResX)

	// the center of the covered area maps to the middle of the texture
	center := vec.MA(d.Origin, c.Offset, d.Forward)
	p := mat.TransformPoint(o.WorldToTexture, center)
	assert.InDelta(t, 0.5, p[0], 1e-3)
	assert.InDelta(t, 0.5, p[1], 1e-3)
}

func TestDPSMViews(t *testing.T) {
	l := light.New(light.Point)
	l.SetOrigin(vec.Vec3{1, 2, 3})
	l.SetAngles(vec.Vec3{10, 20, 0})
	r := l.Resolve(nil, 0)
	vs := DPSMViews(&r, 2, 256)
	front, back := vs[0], vs[1]
	assert.Equal(t, front.Origin, back.Origin)
	assert.InDelta(t, -1, vec.Dot(front.Forward, back.Forward), 1e-4)
	assert.Equal(t, render.Viewport{Width: 256, Height: 256}, front.Viewport)
	assert.Equal(t, render.Viewport{Y: 256, Width: 256, Height: 256}, back.Viewport)
	assert.Equal(t, float32(0), front.Near)
	assert.Equal(t, r.Radius, back.Far)
	assert.True(t, back.Secondary)
	assert.Equal(t, 2, back.Index)
}

func TestRenderDPSM(t *testing.T) {
	run, dev, st, sc := newRunner(t)
	ctx := render.NewContext(dev, render.Target{})
	l := light.New(light.Point).Resolve(nil, 0)
	require.True(t, run.RenderDPSM(ctx, &l, 1))
	assert.Equal(t, []Kind{KindDPSM, KindDPSM}, sc.views)
	assert.Equal(t, run.Targets.ShadowDepthDP[1], st.TextureDualParaboloidDepth(1))

	modes := 0
	for _, c := range dev.Filter(record.SetParam) {
		if c.Param == render.ParamShadowMode {
			assert.Equal(t, int(shading.ShadowDPSM), c.Value)
			modes++
		}
	}
	assert.Equal(t, 2, modes)
	for _, c := range dev.Filter(record.Clear) {
		assert.Equal(t, render.ClearDepth, c.Clear)
	}
}

func TestRenderProjected(t *testing.T) {
	run, dev, st, _ := newRunner(t)
	ctx := render.NewContext(dev, render.Target{})
	sl := light.New(light.Spot)
	sl.SetRadius(400)
	l := sl.Resolve(nil, 0)
	require.True(t, run.RenderProjected(ctx, &l, 3))

	p := st.ShadowDataProj(3)
	assert.Equal(t, l.Forward.Vec4(0), p.Forward)
	assert.Equal(t, l.Origin.Vec4(1), p.Origin)
	assert.InDelta(t, 0.001, p.SlopeSettings[0], 1e-9)
	assert.InDelta(t, 0.005, p.SlopeSettings[1], 1e-9)
	assert.InDelta(t, 3, p.SlopeSettings[2], 1e-9)
	assert.InDelta(t, 400, p.SlopeSettings[3], 1e-9)

	idx := dev.Filter(record.SetParam)
	found := false
	for _, c := range idx {
		if c.Param == render.ParamShadowIndex {
			assert.Equal(t, 3, c.Value)
			found = true
		}
	}
	assert.True(t, found)

	d := ProjectedView(&l, 3, 256)
	assert.InDelta(t, l.FOV, d.FOV, 1e-6)
	assert.Equal(t, float32(light.SpotZNear), d.Near)
}

func TestProjectedMissingTarget(t *testing.T) {
	run, dev, st, sc := newRunner(t, "_rt_ShadowDepth_proj_01")
	ctx := render.NewContext(dev, render.Target{})
	l := light.New(light.Spot).Resolve(nil, 0)
	assert.False(t, run.RenderProjected(ctx, &l, 1))
	assert.Empty(t, sc.views)
	assert.Equal(t, 0, ctx.Depth())
	assert.Equal(t, shading.ShadowProj{}, st.ShadowDataProj(1))
	assert.True(t, run.RenderProjected(ctx, &l, 2))
}

func TestSchedulerRateLimit(t *testing.T) {
	c := DefaultCascades()[1]
	c.UpdateDelay = 0.5
	s := NewScheduler([]Cascade{c})
	run, dev, _, _ := newRunner(t)
	ctx := render.NewContext(dev, render.Target{})
	g := shading.DefaultGlobalLight()

	assert.Equal(t, Idle, s.State(0))
	for i := 0; i < 10; i++ {
		s.Render(ctx, run, g, vec.Vec3{}, vec.Vec3{1, 0, 0}, 10+float64(i)*0.04)
	}
	assert.Equal(t, 1, s.Renders(0))
	assert.Equal(t, Committed, s.State(0))

	s.Render(ctx, run, g, vec.Vec3{}, vec.Vec3{1, 0, 0}, 10.6)
	assert.Equal(t, 2, s.Renders(0))

	// the clock went back far
	s.Render(ctx, run, g, vec.Vec3{}, vec.Vec3{1, 0, 0}, 2)
	assert.Equal(t, 3, s.Renders(0))
}

func TestSchedulerCommitsEveryFrame(t *testing.T) {
	cs := DefaultCascades()
	cs[1].UpdateDelay = 100
	s := NewScheduler(cs)
	run, dev, st, _ := newRunner(t)
	ctx := render.NewContext(dev, render.Target{})
	g := shading.DefaultGlobalLight()

	assert.Equal(t, 2, s.Render(ctx, run, g, vec.Vec3{}, vec.Vec3{1, 0, 0}, 1))
	near, far := st.ShadowDataOrtho(0), st.ShadowDataOrtho(1)
	assert.Equal(t, 1, s.Render(ctx, run, g, vec.Vec3{500, 0, 0}, vec.Vec3{1, 0, 0}, 1.1))
	assert.Equal(t, far, st.ShadowDataOrtho(1), "rate limited cascade changed")
	assert.NotEqual(t, near.Origin, st.ShadowDataOrtho(0).Origin)
	assert.Equal(t, run.Targets.ShadowDepthOrtho, st.TextureCascadedDepth(0))
}

func TestSchedulerMissingAtlas(t *testing.T) {
	s := NewScheduler(DefaultCascades())
	run, dev, _, _ := newRunner(t, render.NameShadowDepthOrtho)
	ctx := render.NewContext(dev, render.Target{})
	assert.Equal(t, 0, s.Render(ctx, run, shading.DefaultGlobalLight(), vec.Vec3{}, vec.Vec3{1, 0, 0}, 1))
	assert.Equal(t, Idle, s.State(0))
	assert.Equal(t, 0, ctx.Depth())
}

func TestSchedulerTableSize(t *testing.T) {
	cs := append(DefaultCascades(), DefaultCascades()...)
	s := NewScheduler(cs)
	assert.Equal(t, render.NumCascades, s.Len())
	s.Render(render.NewContext(record.NewDevice(), render.Target{}), &Runner{Stage: shading.NewState()}, shading.DefaultGlobalLight(), vec.Vec3{}, vec.Vec3{1, 0, 0}, 0)
	s.Reset()
	assert.Equal(t, Idle, s.State(1))
}
