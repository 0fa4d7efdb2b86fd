// SPDX-License-Identifier: GPL-2.0-or-later

// Package deferred runs the passes of a deferred lit frame in order.
package deferred

import (
	"log/slog"

	"deflight/bsp"
	"deflight/conlog"
	"deflight/cvars"
	"deflight/light"
	"deflight/lighting"
	"deflight/render"
	"deflight/shading"
	"deflight/view"
)

// Stats tells what a frame did.
type Stats struct {
	Skybox    bool
	GBuffer   bool
	Cascades  int
	Shadows   int
	Lights    int
	Radiosity int
	Volumes   int
	Debug     int
	// Balanced is false if passes left targets pushed
	Balanced bool
}

// Renderer renders the main view of a level with deferred lights.
type Renderer struct {
	Lights   *lighting.Manager
	Runner   *view.Runner
	Cascades *view.Scheduler

	global    shading.GlobalLight
	hasGlobal bool
	// radiosity buffer holding the result of the last frame, -1 if none
	radiosity int
}

func New(lights *lighting.Manager, runner *view.Runner, cascades *view.Scheduler) *Renderer {
	return &Renderer{
		Lights:    lights,
		Runner:    runner,
		Cascades:  cascades,
		global:    shading.DefaultGlobalLight(),
		radiosity: -1,
	}
}

// LevelInit loads the world lights and the global light of a level.
func (r *Renderer) LevelInit(es []*bsp.Entity) int {
	r.ClearGlobalLight()
	for _, e := range es {
		if c, _ := e.Name(); c != light.GlobalClassName {
			continue
		}
		g, err := GlobalFromEntity(e)
		if err != nil {
			slog.Warn("skipping global light", slog.Any("err", err))
			continue
		}
		if r.hasGlobal {
			conlog.Printf("more than one global light, using the first\n")
			continue
		}
		r.SetGlobalLight(g)
	}
	if r.Cascades != nil {
		r.Cascades.Reset()
	}
	return r.Lights.LevelInit(es)
}

func (r *Renderer) LevelShutdown() {
	r.Lights.LevelShutdown()
	r.ClearGlobalLight()
	r.radiosity = -1
}

func (r *Renderer) SetGlobalLight(g shading.GlobalLight) {
	r.global = g
	r.hasGlobal = true
}

func (r *Renderer) ClearGlobalLight() {
	r.global = shading.DefaultGlobalLight()
	r.hasGlobal = false
}

// GlobalLight returns the global light of this frame with the override
// cvars applied. ok is false if the level has none.
func (r *Renderer) GlobalLight() (g shading.GlobalLight, ok bool) {
	if !r.hasGlobal {
		return shading.DefaultGlobalLight(), false
	}
	return applyOverride(r.global), true
}

// RadiosityResult returns the radiosity buffer composite reads from, or
// nil if radiosity did not run.
func (r *Renderer) RadiosityResult() *render.Texture {
	if r.radiosity < 0 || r.Runner.Targets == nil {
		return nil
	}
	return r.Runner.Targets.RadiosityBuffer(r.radiosity)
}

// RenderView renders the frame of the main view v. vis is the set of leaves
// visible from the eye, nil disables leaf culling.
func (r *Renderer) RenderView(ctx *render.Context, v *view.Descriptor, vis bsp.VisSet, now float64) Stats {
	var st Stats
	stage := r.Runner.Stage
	targets := r.Runner.Targets

	if cvars.DeferredSkyboxEnable.Bool() {
		sky := v.As(view.KindSkyboxGBuffer)
		st.Skybox = r.Runner.Run(ctx, &sky)
	}
	gb := v.As(view.KindGBuffer)
	if st.Skybox {
		gb.Clear = render.ClearDepth
	}
	st.GBuffer = r.Runner.Run(ctx, &gb)

	r.Lights.SetRenderConstants(v)
	if targets != nil {
		stage.CommitTextureGeneral(targets.Normals, targets.Depth, targets.LightAccum)
	}
	r.Lights.PrepareLights(now)
	r.Lights.CullLights(v, vis)
	r.Lights.SortLights()

	g, _ := r.GlobalLight()
	stage.CommitLightDataGlobal(g)
	if g.Enabled && g.Shadow && cvars.DeferredCascadeEnable.Bool() && r.Cascades != nil {
		st.Cascades = r.Cascades.Render(ctx, r.Runner, g, v.Origin, v.Forward, now)
	}
	st.Shadows = r.Lights.RenderShadows(ctx, r.Runner)
	st.Lights = r.accumulate(ctx, g)
	st.Radiosity = r.renderRadiosity(ctx, g)

	if st.Skybox {
		sky := v.As(view.KindSkyboxComposite)
		r.Runner.Run(ctx, &sky)
	}
	comp := v.As(view.KindComposite)
	if !st.Skybox {
		comp.Clear = render.ClearColor | render.ClearDepth
	}
	r.Runner.Run(ctx, &comp)

	st.Volumes = r.Lights.RenderVolumetrics(ctx)
	st.Debug = r.Lights.DrawDebug(ctx)
	st.Balanced = ctx.EndFrame()
	return st
}

// accumulate fills the light accumulation buffer with the global light
// and then the local lights.
func (r *Renderer) accumulate(ctx *render.Context, g shading.GlobalLight) int {
	targets := r.Runner.Targets
	if targets == nil || targets.LightAccum == nil {
		conlog.WarnOnce("deferred.lightaccum", "light accumulation target missing, skipping lights\n")
		return 0
	}
	defer ctx.Push(render.NewTarget(targets.LightAccum, nil)).Pop()

	dev := ctx.Device()
	if g.Enabled && dev.HasMaterial(render.MatLightGlobal) {
		shading.Flush(r.Runner.Stage)
		dev.DrawFullscreen(render.MatLightGlobal, 1)
	} else {
		dev.Clear(render.ClearColor, [4]float32{})
	}
	return r.Lights.RenderLights(ctx)
}

var (
	radiosityPropagate = [render.NumRadiosityBuffers]render.Material{render.MatRadiosityPropagate0, render.MatRadiosityPropagate1}
	radiosityBlur      = [render.NumRadiosityBuffers]render.Material{render.MatRadiosityBlur0, render.MatRadiosityBlur1}
)

// renderRadiosity seeds the first radiosity buffer from the global light
// and bounces it between the two buffers, a propagate and a blur step per
// pass. It returns the number of steps drawn after the seed.
func (r *Renderer) renderRadiosity(ctx *render.Context, g shading.GlobalLight) int {
	r.radiosity = -1
	if !cvars.DeferredRadiosityEnable.Bool() {
		return 0
	}
	targets := r.Runner.Targets
	if targets == nil || targets.RadiosityBuffer(0) == nil || targets.RadiosityBuffer(1) == nil {
		conlog.WarnOnce("deferred.radiosity", "radiosity targets missing, skipping radiosity\n")
		return 0
	}
	dev := ctx.Device()
	step := func(dst int, m render.Material) {
		defer ctx.Push(render.NewTarget(targets.RadiosityBuffer(dst), nil)).Pop()
		dev.DrawFullscreen(m, 1)
	}

	func() {
		defer ctx.Push(render.NewTarget(targets.RadiosityBuffer(0), nil)).Pop()
		dev.Clear(render.ClearColor, [4]float32{})
		if g.Enabled {
			dev.DrawFullscreen(render.MatRadiosityGlobal, 1)
		}
	}()
	src, n := 0, 0
	passes := int(cvars.DeferredRadiosityPasses.Value())
	for i := 0; i < passes; i++ {
		dst := 1 - src
		step(dst, radiosityPropagate[dst])
		src = dst
		dst = 1 - src
		step(dst, radiosityBlur[dst])
		src = dst
		n += 2
	}
	r.radiosity = src
	return n
}
