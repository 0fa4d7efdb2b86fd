// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/gopxl/mainthread/v2"

	"deflight/bsp"
	"deflight/config"
	"deflight/conlog"
	"deflight/cookie"
	"deflight/cvars"
	"deflight/deferred"
	"deflight/gametime"
	"deflight/glh"
	"deflight/light"
	"deflight/lightfile"
	"deflight/lighting"
	"deflight/math/vec"
	"deflight/pack"
	"deflight/render"
	"deflight/render/record"
	"deflight/shading"
	"deflight/view"
	"deflight/window"
)

var (
	configPath = flag.String("config", "", "TOML config file")
	mapPath    = flag.String("map", "", "BSP file, a test room if empty")
	lightsPath = flag.String("lights", "", "light file, reloaded when it changes")
	useGL      = flag.Bool("gl", false, "draw into a window with OpenGL")
	frames     = flag.Int("frames", 60, "frames to render without a window")
	execText   = flag.String("exec", "", "console commands, separated by ';'")
)

// backend is what the pipeline draws with.
type backend struct {
	dev    render.Device
	alloc  render.Allocator
	meshes render.MeshFactory
	stage  *shading.Queue
	// called before a frame with its view, returns false to stop
	begin func(v *view.Descriptor) bool
	end   func()
}

// compositor draws the lit scene onto the back buffer.
type compositor struct{}

func (compositor) DrawScene(ctx *render.Context, d *view.Descriptor) {
	if d.Kind == view.KindComposite {
		ctx.Device().DrawFullscreen(render.MatComposite, 1)
	}
}

func loadWorld(path string, paks []string) (*bsp.Model, error) {
	if path == "" {
		return bsp.NewRoom(vec.Vec3{-1024, -1024, -256}, vec.Vec3{1024, 1024, 512}, 4), nil
	}
	for i := len(paks) - 1; i >= 0; i-- {
		p, err := pack.Open(paks[i])
		if err != nil {
			slog.Warn("skipping pak", slog.String("pak", paks[i]), slog.Any("err", err))
			continue
		}
		if !p.Has(path) {
			p.Close()
			continue
		}
		b, err := p.ReadFile(path)
		p.Close()
		if err != nil {
			return nil, err
		}
		return bsp.Load(path, b)
	}
	return bsp.LoadFile(path)
}

func run(cfg *config.Config, b *backend) error {
	world, err := loadWorld(cfg.Map, cfg.Paks)
	if err != nil {
		return err
	}
	targets, missing := render.InitTargets(b.alloc, cfg.Width, cfg.Height,
		int(cvars.DeferredShadowResSpot.Value()), int(cvars.DeferredShadowResPoint.Value()))
	if missing > 0 {
		conlog.Printf("%d render targets missing, some passes are skipped\n", missing)
	}
	names := cookie.NewTable()
	cookies := cookie.NewFactory(b.alloc, targets)
	env := light.Env{
		World:     world,
		Meshes:    b.meshes,
		Materials: b.dev,
		Names:     names,
		Cookies:   cookies,
	}
	runner := &view.Runner{Targets: targets, Stage: b.stage, Scene: compositor{}}
	r := deferred.New(lighting.New(env, b.stage, targets), runner, view.NewScheduler(cfg.CascadeTable()))
	n := r.LevelInit(world.Entities)
	conlog.Printf("%d world lights\n", n)
	defer r.LevelShutdown()
	console := newConsole(r, names)
	console.AddText(cfg.Exec)

	var editor []*light.Light
	replace := func(ls []*light.Light) {
		for _, l := range editor {
			r.Lights.RemoveLight(l)
		}
		editor = ls
		for _, l := range ls {
			r.Lights.AddLight(l)
		}
	}
	if cfg.Lights != "" {
		ls, err := lightfile.Load(cfg.Lights, names, cookies)
		if err != nil {
			return err
		}
		replace(ls)
		w, err := lightfile.Watch(cfg.Lights, names, cookies)
		if err != nil {
			slog.Warn("not watching light file", slog.Any("err", err))
		} else {
			defer w.Close()
			prev := b.begin
			b.begin = func(v *view.Descriptor) bool {
				if ls, ok := w.Poll(); ok {
					conlog.Printf("reloaded %d lights\n", len(ls))
					replace(ls)
				}
				return prev(v)
			}
		}
	}

	ctx := render.NewContext(b.dev, render.Target{})
	clock := gametime.New()
	center := vec.Scale(0.5, vec.Add(world.Mins(), world.Maxs()))
	vp := render.Viewport{Width: cfg.Width, Height: cfg.Height}
	for {
		clock.Advance(1.0 / 60)
		clock.FrameIncrease()
		console.Execute()
		angles := vec.Vec3{0, float32(clock.Time() * 20), 0}
		v := view.Main(center, angles, cvars.Fov.Value(), vp, 4, cvars.GlFarClip.Value())
		if !b.begin(&v) {
			break
		}
		st := r.RenderView(ctx, &v, world.FatPVS(center), clock.Time())
		b.stage.Flush()
		conlog.DPrintf("frame %d: %d lights, %d shadows, %d cascades\n", clock.FrameCount(), st.Lights, st.Shadows, st.Cascades)
		b.end()
	}
	return nil
}

func headless(cfg *config.Config) error {
	dev := record.NewDevice()
	n := 0
	b := &backend{
		dev:    dev,
		alloc:  record.NewAllocator(),
		meshes: &record.MeshFactory{},
		stage:  shading.NewQueue(shading.NewState()),
		begin: func(*view.Descriptor) bool {
			n++
			return n <= *frames
		},
		end: func() {},
	}
	if err := run(cfg, b); err != nil {
		return err
	}
	slog.Info("rendered", slog.Int("frames", *frames), slog.Int("draws", len(dev.Draws())))
	return nil
}

func interactive(cfg *config.Config) error {
	var err error
	mainthread.Run(func() {
		mainthread.Call(func() {
			err = window.Open("deflight", int32(cfg.Width), int32(cfg.Height))
		})
		if err != nil {
			return
		}
		defer mainthread.Call(window.Shutdown)

		state := shading.NewState()
		var dev *glh.Device
		dev, err = glh.NewDevice(state, cfg.Width, cfg.Height)
		if err != nil {
			return
		}
		b := &backend{
			dev:    dev,
			alloc:  dev,
			meshes: dev,
			stage:  shading.NewRenderThreadQueue(state),
			begin: func(v *view.Descriptor) bool {
				dev.SetViewProjection(v.ViewProjection())
				quit := false
				mainthread.Call(func() { quit = window.PollQuit() })
				return !quit
			},
			end: func() { mainthread.Call(window.EndRendering) },
		}
		err = run(cfg, b)
	})
	return err
}

func main() {
	flag.Parse()
	light.SeedStyles(uint32(time.Now().UnixNano()))
	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			slog.Error("loading config", slog.Any("err", err))
			os.Exit(1)
		}
		cfg = c
	}
	cfg.ApplyCvars()
	if *mapPath != "" {
		cfg.Map = *mapPath
	}
	if *lightsPath != "" {
		cfg.Lights = *lightsPath
	}
	if *execText != "" {
		cfg.Exec += "\n" + *execText
	}

	var err error
	if *useGL {
		err = interactive(cfg)
	} else {
		err = headless(cfg)
	}
	if err != nil {
		slog.Error("deflight", slog.Any("err", err))
		os.Exit(1)
	}
}
