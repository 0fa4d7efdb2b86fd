// SPDX-License-Identifier: GPL-2.0-or-later

package view

import (
	"deflight/conlog"
	"deflight/render"
	"deflight/shading"
)

// SceneDrawer submits the scene geometry of a view. The stage and target are
// set up before it is called.
type SceneDrawer interface {
	DrawScene(ctx *render.Context, d *Descriptor)
}

// Runner executes view passes.
type Runner struct {
	Targets *render.Targets
	Stage   shading.Stage
	Scene   SceneDrawer
}

type passFunc func(r *Runner, ctx *render.Context, d *Descriptor) bool

var passes = [numKinds]passFunc{
	KindSkyboxGBuffer:   gbufferPass,
	KindGBuffer:         gbufferPass,
	KindSkyboxComposite: compositePass,
	KindComposite:       compositePass,
	KindCascade:         shadowPass,
	KindDPSM:            shadowPass,
	KindProjected:       shadowPass,
}

// Run executes the pass for d. It returns false if the pass was skipped.
func (r *Runner) Run(ctx *render.Context, d *Descriptor) bool {
	if d.Kind < 0 || d.Kind >= numKinds {
		return false
	}
	return passes[d.Kind](r, ctx, d)
}

func (r *Runner) drawScene(ctx *render.Context, d *Descriptor) {
	if r.Scene != nil {
		r.Scene.DrawScene(ctx, d)
	}
}

func gbufferPass(r *Runner, ctx *render.Context, d *Descriptor) bool {
	if r.Targets == nil || r.Targets.Normals == nil || r.Targets.Depth == nil {
		conlog.WarnOnce("view.gbuffer", "gbuffer targets missing, skipping %v\n", d.Kind)
		return false
	}
	t := render.NewTarget(r.Targets.Normals, r.Targets.Depth)
	t.Viewport = d.Viewport
	defer ctx.Push(t).Pop()

	dev := ctx.Device()
	dev.SetIntParameter(render.ParamRenderStage, render.StageGBuffer)
	defer dev.SetIntParameter(render.ParamRenderStage, render.StageInvalid)
	if d.Clear != 0 {
		dev.Clear(d.Clear, d.ClearColor)
	}
	r.drawScene(ctx, d)
	return true
}

func compositePass(r *Runner, ctx *render.Context, d *Descriptor) bool {
	t := ctx.Current()
	t.Viewport = d.Viewport
	defer ctx.Push(t).Pop()

	dev := ctx.Device()
	dev.SetIntParameter(render.ParamRenderStage, render.StageComposition)
	defer dev.SetIntParameter(render.ParamRenderStage, render.StageInvalid)
	if d.Clear != 0 {
		dev.Clear(d.Clear, d.ClearColor)
	}
	r.drawScene(ctx, d)
	return true
}

func (r *Runner) shadowTarget(d *Descriptor) (render.Target, bool) {
	if r.Targets == nil {
		return render.Target{}, false
	}
	var depth, color *render.Texture
	switch d.Kind {
	case KindCascade:
		depth, color = r.Targets.ShadowDepthOrtho, r.Targets.ShadowColorOrtho
	case KindDPSM:
		depth, color = r.Targets.ShadowDP(d.Index)
	case KindProjected:
		depth, color = r.Targets.ShadowProj(d.Index)
	}
	if depth == nil || color == nil {
		return render.Target{}, false
	}
	t := render.NewTarget(color, depth)
	t.Viewport = d.Viewport
	return t, true
}

func shadowPass(r *Runner, ctx *render.Context, d *Descriptor) bool {
	mode, _ := d.ShadowMode()
	t, ok := r.shadowTarget(d)
	if !ok {
		conlog.WarnOnce("view.shadow."+d.Kind.String(), "shadow target %v %d missing, light stays unshadowed\n", d.Kind, d.Index)
		return false
	}
	defer ctx.Push(t).Pop()

	dev := ctx.Device()
	dev.SetIntParameter(render.ParamRenderStage, render.StageShadowPass)
	dev.SetIntParameter(render.ParamShadowMode, int(mode))
	dev.SetIntParameter(render.ParamShadowIndex, d.Index)
	defer dev.SetIntParameter(render.ParamRenderStage, render.StageInvalid)
	dev.Clear(render.ClearDepth, d.ClearColor)
	r.drawScene(ctx, d)
	return true
}
