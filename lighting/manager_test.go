// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deflight/bsp"
	"deflight/conlog"
	"deflight/cookie"
	"deflight/cvar"
	"deflight/cvars"
	"deflight/light"
	"deflight/math/vec"
	"deflight/render"
	"deflight/render/record"
	"deflight/shading"
	"deflight/view"
)

// rowStage keeps every light data commit instead of only the last one.
type rowStage struct {
	*shading.State
	counts []shading.LightCounts
	rows   [][]mgl32.Vec4
}

func (s *rowStage) CommitLightDataCommon(rows []mgl32.Vec4, c shading.LightCounts) {
	s.rows = append(s.rows, append([]mgl32.Vec4(nil), rows...))
	s.counts = append(s.counts, c)
	s.State.CommitLightDataCommon(rows, c)
}

type fixture struct {
	m       *Manager
	dev     *record.Device
	ctx     *render.Context
	stage   *rowStage
	meshes  *record.MeshFactory
	alloc   *record.Allocator
	targets *render.Targets
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conlog.ResetWarnings()
	a := record.NewAllocator()
	targets, missing := render.InitTargets(a, 640, 480, 256, 256)
	require.Zero(t, missing)
	dev := record.NewDevice()
	meshes := &record.MeshFactory{}
	st := &rowStage{State: shading.NewState()}
	env := light.Env{
		Meshes:    meshes,
		Materials: dev,
		Names:     cookie.NewTable(),
		Cookies:   cookie.NewFactory(a, targets),
	}
	return &fixture{
		m:       New(env, st, targets),
		dev:     dev,
		ctx:     render.NewContext(dev, render.Target{}),
		stage:   st,
		meshes:  meshes,
		alloc:   a,
		targets: targets,
	}
}

func mainView(origin vec.Vec3) view.Descriptor {
	return view.Main(origin, vec.Vec3{}, 90, render.Viewport{Width: 640, Height: 480}, 4, 16384)
}

func (f *fixture) frame(origin vec.Vec3, vis bsp.VisSet) view.Descriptor {
	v := mainView(origin)
	f.m.SetRenderConstants(&v)
	f.m.PrepareLights(1)
	f.m.CullLights(&v, vis)
	f.m.SortLights()
	return v
}

func (f *fixture) add(t light.Type, origin vec.Vec3) *light.Light {
	l := light.New(t)
	l.SetOrigin(origin)
	f.m.AddLight(l)
	return l
}

func setCvar(t *testing.T, cv *cvar.Cvar, v string) {
	t.Helper()
	old := cv.String()
	cv.SetByString(v)
	t.Cleanup(func() { cv.SetByString(old) })
}

func TestAddRemove(t *testing.T) {
	f := newFixture(t)
	l := f.add(light.Point, vec.Vec3{100, 0, 0})
	f.m.AddLight(l)
	assert.Len(t, f.m.Lights(), 1)

	f.frame(vec.Vec3{}, nil)
	assert.True(t, f.m.IsLightRendered(l))
	assert.Equal(t, 1, f.meshes.Live())

	assert.True(t, f.m.RemoveLight(l))
	assert.False(t, f.m.RemoveLight(l))
	assert.False(t, f.m.RemoveLight(light.New(light.Spot)))
	assert.Empty(t, f.m.Lights())
	assert.Zero(t, f.meshes.Live(), "removed light kept its mesh")
}

func TestCullVisibleDistance(t *testing.T) {
	f := newFixture(t)
	d := float32(light.DefaultVisDist + light.DefaultVisRange)
	in := f.add(light.Point, vec.Vec3{d - 1, 0, 0})
	out := f.add(light.Point, vec.Vec3{d + 1, 0, 0})

	f.frame(vec.Vec3{}, nil)
	assert.True(t, f.m.IsLightRendered(in))
	assert.False(t, f.m.IsLightRendered(out))
}

func TestCullFlags(t *testing.T) {
	f := newFixture(t)
	off := f.add(light.Point, vec.Vec3{100, 0, 0})
	off.SetFlags(0)
	behind := f.add(light.Point, vec.Vec3{-1000, 0, 0})
	world := f.add(light.Point, vec.Vec3{200, 0, 0})
	world.SetWorld(true)

	f.frame(vec.Vec3{}, nil)
	assert.False(t, f.m.IsLightRendered(off))
	assert.False(t, f.m.IsLightRendered(behind), "light behind the view")
	assert.True(t, f.m.IsLightRendered(world))

	f.m.SetRenderWorldLights(false)
	f.frame(vec.Vec3{}, nil)
	assert.False(t, f.m.IsLightRendered(world))

	f.m.SetRenderWorldLights(true)
	setCvar(t, cvars.DeferredLightsEnable, "0")
	f.frame(vec.Vec3{}, nil)
	assert.Empty(t, f.m.Rendered())
}

func TestCullLeaves(t *testing.T) {
	f := newFixture(t)
	room := bsp.NewRoom(vec.Vec3{-2048, -512, -256}, vec.Vec3{2048, 512, 256}, 4)
	f.m.Env.World = room

	seen := f.add(light.Point, vec.Vec3{500, 0, 0})
	seen.SetRadius(100)
	hidden := f.add(light.Point, vec.Vec3{1500, 0, 0})
	hidden.SetRadius(100)

	vis := room.NewVisSet()
	vis.Add(3)
	f.frame(vec.Vec3{-500, 0, 0}, vis)
	assert.True(t, f.m.IsLightRendered(seen))
	assert.False(t, f.m.IsLightRendered(hidden))

	f.frame(vec.Vec3{-500, 0, 0}, room.AllVisible())
	assert.True(t, f.m.IsLightRendered(hidden))
}

func TestSortBuckets(t *testing.T) {
	f := newFixture(t)
	ls := map[Bucket][]*light.Light{
		PointWorld: {
			f.add(light.Point, vec.Vec3{1000, 0, 0}),
			f.add(light.Point, vec.Vec3{800, 200, 0}),
		},
		PointFullscreen: {
			f.add(light.Point, vec.Vec3{50, 0, 0}),
			f.add(light.Point, vec.Vec3{0, 0, 0}),
		},
		SpotWorld: {
			f.add(light.Spot, vec.Vec3{1000, 0, 0}),
		},
		SpotFullscreen: {
			f.add(light.Spot, vec.Vec3{-100, 0, 0}),
		},
	}
	f.frame(vec.Vec3{}, nil)

	seen := map[*light.Light]int{}
	total := 0
	for b := Bucket(0); b < NumBuckets; b++ {
		for _, r := range f.m.Bucket(b) {
			seen[r.Light]++
			total++
		}
		for _, l := range ls[b] {
			assert.True(t, contains(f.m.Bucket(b), l), "light at %v not in %v", l.Origin(), b)
		}
	}
	assert.Equal(t, len(f.m.Rendered()), total)
	for _, r := range f.m.Rendered() {
		assert.Equal(t, 1, seen[r.Light], "light at %v", r.Origin)
	}

	pw := f.m.Bucket(PointWorld)
	require.Len(t, pw, 2)
	assert.Equal(t, ls[PointWorld][1], pw[0].Light, "nearest first")
}

func contains(rs []*light.Resolved, l *light.Light) bool {
	for _, r := range rs {
		if r.Light == l {
			return true
		}
	}
	return false
}

func TestRenderLightsOrder(t *testing.T) {
	f := newFixture(t)
	f.add(light.Spot, vec.Vec3{-100, 0, 0})
	f.add(light.Spot, vec.Vec3{1000, 0, 0})
	f.add(light.Point, vec.Vec3{10, 0, 0})
	f.add(light.Point, vec.Vec3{1000, 0, 0})
	f.frame(vec.Vec3{}, nil)

	f.dev.Reset()
	assert.Equal(t, 4, f.m.RenderLights(f.ctx))
	assert.Equal(t, []render.Material{
		render.MatLightPointWorld,
		render.MatLightPointFullscreen,
		render.MatLightSpotWorld,
		render.MatLightSpotFullscreen,
	}, f.dev.Draws())

	blends := f.dev.Filter(record.SetBlend)
	require.Len(t, blends, 2)
	assert.Equal(t, render.BlendAdditive, blends[0].Blend)
	assert.Equal(t, render.BlendNone, blends[1].Blend)

	meshes := f.dev.Filter(record.DrawMesh)
	require.Len(t, meshes, 2)
	assert.Equal(t, mgl32.Translate3D(1000, 0, 0), meshes[0].Transform)
	assert.Len(t, f.stage.counts, 4)
	assert.Zero(t, f.ctx.Depth())
}

func TestAdmissionDropsFurthest(t *testing.T) {
	f := newFixture(t)
	for i := 12; i >= 1; i-- {
		f.add(light.Point, vec.Vec3{float32(i * 10), 0, 0})
	}
	f.frame(vec.Vec3{}, nil)
	require.Len(t, f.m.Bucket(PointFullscreen), 12)

	f.dev.Reset()
	assert.Equal(t, 10, f.m.RenderLights(f.ctx))
	fs := f.dev.Filter(record.DrawFullscreen)
	require.Len(t, fs, 1)
	assert.Equal(t, 10, fs[0].Instances)

	rows, counts := f.stage.LightData()
	assert.Equal(t, shading.LightCounts{Simple: 10}, counts)
	require.Len(t, rows, 10*rowsPointSimple)
	assert.Equal(t, float32(10), rows[0][0], "nearest light first")
	assert.Equal(t, float32(100), rows[9*rowsPointSimple][0], "lights past the budget dropped")
}

func TestAdmissionRowBudget(t *testing.T) {
	f := newFixture(t)
	f.m.Budgets.Simple = 100
	for i := 0; i < 70; i++ {
		f.add(light.Point, vec.Vec3{float32(i), 0, 0})
	}
	f.frame(vec.Vec3{}, nil)
	assert.Equal(t, 64, f.m.RenderLights(f.ctx))
	rows, _ := f.stage.LightData()
	assert.Len(t, rows, 64*rowsPointSimple)
	assert.LessOrEqual(t, len(rows), shading.MaxLightDataRows)
}

func TestShadowSlotsAndBudget(t *testing.T) {
	f := newFixture(t)
	var ls []*light.Light
	for i := 1; i <= 7; i++ {
		l := f.add(light.Point, vec.Vec3{float32(i * 10), 0, 0})
		l.SetFlags(light.FlagEnabled | light.FlagShadow)
		ls = append(ls, l)
	}
	f.frame(vec.Vec3{}, nil)

	run := &view.Runner{Targets: f.targets, Stage: f.stage}
	assert.Equal(t, render.MaxShadowDP, f.m.RenderShadows(f.ctx, run))
	for i, l := range ls {
		slot, ok := f.m.ShadowSlot(l)
		if i < render.MaxShadowDP {
			assert.True(t, ok)
			assert.Equal(t, i, slot)
			assert.Same(t, f.targets.ShadowDepthDP[i], f.stage.TextureDualParaboloidDepth(i))
		} else {
			assert.False(t, ok, "light %d got a shadow", i)
		}
	}

	f.dev.Reset()
	assert.Equal(t, 5, f.m.RenderLights(f.ctx))
	rows, counts := f.stage.LightData()
	assert.Equal(t, shading.LightCounts{Shadowed: 3, Simple: 2}, counts)
	assert.Len(t, rows, 3*rowsPointAdvanced+2*rowsPointSimple)
	// right row carries the shadow slot
	assert.Equal(t, float32(0), rows[4][3])
	assert.Equal(t, float32(2), rows[2*rowsPointAdvanced+4][3])
}

func TestShadowTargetMissing(t *testing.T) {
	f := newFixture(t)
	f.targets.ShadowDepthProj[0] = nil
	l := f.add(light.Spot, vec.Vec3{-100, 0, 0})
	l.SetFlags(light.FlagEnabled | light.FlagShadow)
	f.frame(vec.Vec3{}, nil)

	run := &view.Runner{Targets: f.targets, Stage: f.stage}
	assert.Zero(t, f.m.RenderShadows(f.ctx, run))
	_, ok := f.m.ShadowSlot(l)
	assert.False(t, ok)
	assert.Equal(t, 1, f.m.RenderLights(f.ctx), "light still drawn unshadowed")
	_, counts := f.stage.LightData()
	assert.Equal(t, 1, counts.Simple)
}

func TestCookiePacking(t *testing.T) {
	f := newFixture(t)
	tex := f.alloc.AddTexture("cookies/grid", 64, 64)
	l := f.add(light.Spot, vec.Vec3{-100, 0, 0})
	l.SetCookieIndex(f.m.Env.Names.Add("cookies/grid"))
	f.frame(vec.Vec3{}, nil)

	assert.Equal(t, 1, f.m.RenderLights(f.ctx))
	rows, counts := f.stage.LightData()
	assert.Equal(t, shading.LightCounts{Cookied: 1}, counts)
	require.Len(t, rows, rowsSpotAdvanced)
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 0}, rows[8])
	assert.Same(t, tex, f.stage.TextureCookie(0))
}

func TestCookieSlotsExhausted(t *testing.T) {
	f := newFixture(t)
	f.m.Budgets.Cookied = 10
	f.alloc.AddTexture("cookies/grid", 64, 64)
	idx := f.m.Env.Names.Add("cookies/grid")
	n := render.NumCookieSlots + 2
	for i := 1; i <= n; i++ {
		l := f.add(light.Spot, vec.Vec3{float32(-i * 10), 0, 0})
		l.SetCookieIndex(idx)
	}
	f.frame(vec.Vec3{}, nil)

	assert.Equal(t, n, f.m.RenderLights(f.ctx))
	rows, counts := f.stage.LightData()
	assert.Equal(t, shading.LightCounts{Cookied: render.NumCookieSlots, Simple: 2}, counts)
	require.Len(t, rows, render.NumCookieSlots*rowsSpotAdvanced+2*rowsSpotSimple)
	for i := 0; i < render.NumCookieSlots; i++ {
		slot := rows[i*rowsSpotAdvanced+8][2]
		assert.Equal(t, float32(i), slot, "cookie slot of light %d", i)
	}
}

func TestCookieStringReceived(t *testing.T) {
	f := newFixture(t)
	f.alloc.AddTexture("cookies/late", 64, 64)
	l := f.add(light.Point, vec.Vec3{100, 0, 0})
	l.SetCookieIndex(7)
	f.frame(vec.Vec3{}, nil)
	assert.Nil(t, l.Cookie())

	f.m.OnCookieStringReceived(7, "cookies/late")
	assert.True(t, l.IsDirty(light.DirtyCookie))
	f.frame(vec.Vec3{}, nil)
	assert.True(t, l.CookieReady())
}

func TestMaterialReload(t *testing.T) {
	f := newFixture(t)
	f.add(light.Point, vec.Vec3{100, 0, 0})
	f.frame(vec.Vec3{}, nil)
	require.Len(t, f.meshes.Created, 1)

	f.m.OnMaterialReload()
	f.frame(vec.Vec3{}, nil)
	assert.Len(t, f.meshes.Created, 2)
	assert.Equal(t, 1, f.meshes.Live())
}

func TestLevelInit(t *testing.T) {
	f := newFixture(t)
	es := []*bsp.Entity{
		bsp.NewEntityFromPairs("classname", "worldspawn"),
		bsp.NewEntityFromPairs("classname", light.ClassName, "origin", "100 0 0"),
		bsp.NewEntityFromPairs("classname", light.ClassName, "origin", "200 0 0", "light_type", "1"),
		bsp.NewEntityFromPairs("classname", light.ClassName, "light_type", "7"),
	}
	assert.Equal(t, 2, f.m.LevelInit(es))
	require.Len(t, f.m.Lights(), 2)
	for _, l := range f.m.Lights() {
		assert.True(t, l.IsWorld())
	}
	assert.Equal(t, light.Spot, f.m.Lights()[1].Type())

	f.frame(vec.Vec3{}, nil)
	f.m.LevelShutdown()
	assert.Empty(t, f.m.Lights())
	assert.Empty(t, f.m.Rendered())
	assert.Zero(t, f.meshes.Live())
}

func TestVolumetrics(t *testing.T) {
	f := newFixture(t)
	l := f.add(light.Spot, vec.Vec3{300, 0, 0})
	l.SetFlags(light.FlagEnabled | light.FlagVolumetrics)
	p := f.add(light.Point, vec.Vec3{500, 0, 0})
	p.SetFlags(light.FlagEnabled | light.FlagVolumetrics)
	f.frame(vec.Vec3{}, nil)

	f.dev.Reset()
	assert.Equal(t, 2, f.m.RenderVolumetrics(f.ctx))
	assert.Equal(t, []render.Material{
		render.MatLightVolumePrepass,
		render.MatLightVolumeSpotWorld,
		render.MatLightVolumePointWorld,
		render.MatLightVolumeBlend,
	}, f.dev.Draws())
	assert.Same(t, f.targets.VolumePrepass, f.stage.TextureVolumePrepass())
	assert.Zero(t, f.ctx.Depth())

	setCvar(t, cvars.DeferredVolumetricsEnable, "0")
	assert.Zero(t, f.m.RenderVolumetrics(f.ctx))
}

func TestDebugBoxes(t *testing.T) {
	f := newFixture(t)
	f.add(light.Point, vec.Vec3{100, 0, 0})
	f.add(light.Spot, vec.Vec3{500, 0, 0})
	f.frame(vec.Vec3{}, nil)
	assert.Zero(t, f.m.DrawDebug(f.ctx))

	setCvar(t, cvars.DeferredLightsDebug, "1")
	assert.Equal(t, 2, f.m.DrawDebug(f.ctx))
	assert.Len(t, f.dev.Filter(record.DrawBox), 2)
}

func TestRenderConstants(t *testing.T) {
	f := newFixture(t)
	v := view.Main(vec.Vec3{10, 20, 30}, vec.Vec3{}, 90, render.Viewport{Width: 640, Height: 480}, 4, 4096)
	f.m.SetRenderConstants(&v)

	assert.Equal(t, v.Origin, f.stage.Origin())
	n, far := f.stage.ZDists()
	assert.Equal(t, v.Near, n)
	assert.Equal(t, v.Far, far)
	assert.Equal(t, 256, f.stage.ShadowDataGeneral().ProjRes)

	d := f.stage.FrustumDeltas()
	center := d.Row(0)
	assert.InDelta(t, 1, center[0], 0.01)
	assert.InDelta(t, 0, center[1], 0.01)
	assert.InDelta(t, 0, center[2], 0.01)
	// 90 degrees horizontal: the right edge is one unit to the side
	right := d.Row(1)
	assert.InDelta(t, -1, right[1], 0.01)
	assert.Greater(t, d.Row(2)[2], float32(0))
}
