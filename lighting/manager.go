// SPDX-License-Identifier: GPL-2.0-or-later

// Package lighting owns the deferred lights of a level. Every frame it
// resolves, culls and sorts them and draws them into the light
// accumulation buffer.
package lighting

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"deflight/bsp"
	"deflight/cvars"
	"deflight/frustum"
	"deflight/light"
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
	"deflight/view"
)

type Bucket int

const (
	PointWorld Bucket = iota
	PointFullscreen
	SpotWorld
	SpotFullscreen
	NumBuckets
)

func (b Bucket) String() string {
	switch b {
	case PointWorld:
		return "point world"
	case PointFullscreen:
		return "point fullscreen"
	case SpotWorld:
		return "spot world"
	case SpotFullscreen:
		return "spot fullscreen"
	}
	return "unknown"
}

// Manager owns the lights of a level.
//
// The frame runs PrepareLights, CullLights, SortLights, RenderShadows and
// RenderLights in this order. AddLight and RemoveLight must not be called
// between PrepareLights and the end of the frame.
type Manager struct {
	Env     light.Env
	Stage   shading.Stage
	Targets *render.Targets
	Budgets Budgets

	lights      []*light.Light
	worldLights bool

	resolved []light.Resolved
	rendered []*light.Resolved
	buckets  [NumBuckets][]*light.Resolved

	eye   vec.Vec3
	zNear float32

	projSlots   *render.SlotPool
	dpSlots     *render.SlotPool
	cookieSlots *render.SlotPool
	shadows     map[*light.Light]int
	rows        []mgl32.Vec4
}

func New(env light.Env, stage shading.Stage, targets *render.Targets) *Manager {
	return &Manager{
		Env:         env,
		Stage:       stage,
		Targets:     targets,
		Budgets:     DefaultBudgets(),
		worldLights: true,
		projSlots:   render.NewSlotPool(render.MaxShadowProj),
		dpSlots:     render.NewSlotPool(render.MaxShadowDP),
		cookieSlots: render.NewSlotPool(render.NumCookieSlots),
		shadows:     make(map[*light.Light]int),
	}
}

// AddLight adds l. Adding a light twice is a no-op.
func (m *Manager) AddLight(l *light.Light) {
	if l == nil || slices.Contains(m.lights, l) {
		return
	}
	m.lights = append(m.lights, l)
}

// RemoveLight removes l and frees its meshes and cookie. It returns false
// if l is not managed.
func (m *Manager) RemoveLight(l *light.Light) bool {
	i := slices.Index(m.lights, l)
	if i < 0 {
		return false
	}
	m.lights = slices.Delete(m.lights, i, i+1)
	l.Release()
	return true
}

// IsLightRendered reports whether l passed culling this frame.
func (m *Manager) IsLightRendered(l *light.Light) bool {
	for _, r := range m.rendered {
		if r.Light == l {
			return true
		}
	}
	return false
}

func (m *Manager) Lights() []*light.Light { return m.lights }

// SetRenderWorldLights toggles the lights placed in the level.
func (m *Manager) SetRenderWorldLights(b bool) { m.worldLights = b }

// LevelInit adds a world light for every light entity of the level and
// returns their number. Broken records are skipped.
func (m *Manager) LevelInit(es []*bsp.Entity) int {
	n := 0
	for _, e := range es {
		if c, _ := e.Name(); c != light.ClassName {
			continue
		}
		l, err := light.FromEntity(e, m.Env.Names, m.Env.Cookies)
		if err != nil {
			slog.Warn("skipping light entity", slog.Any("err", err))
			continue
		}
		l.SetWorld(true)
		m.AddLight(l)
		n++
	}
	return n
}

// LevelShutdown removes and releases every light.
func (m *Manager) LevelShutdown() {
	for _, l := range m.lights {
		l.Release()
	}
	m.lights = nil
	m.clearFrame()
}

func (m *Manager) clearFrame() {
	m.resolved = m.resolved[:0]
	m.rendered = m.rendered[:0]
	for b := range m.buckets {
		m.buckets[b] = m.buckets[b][:0]
	}
	clear(m.shadows)
}

// OnCookieStringReceived stores a cookie name sent by the server and makes
// the lights using it pick it up.
func (m *Manager) OnCookieStringReceived(index int, name string) {
	if m.Env.Names == nil {
		return
	}
	m.Env.Names.Set(index, name)
	for _, l := range m.lights {
		if l.CookieIndex() == index {
			l.MarkDirty(light.DirtyCookie)
		}
	}
}

// OnMaterialReload rebuilds every mesh on the next frame.
func (m *Manager) OnMaterialReload() {
	for _, l := range m.lights {
		l.MarkDirty(light.DirtyRenderMesh | light.DirtyVolumetrics)
	}
}

// PrepareLights resolves every light at time now. Culling and drawing only
// see the resolved state.
func (m *Manager) PrepareLights(now float64) {
	m.clearFrame()
	styles := cvars.DeferredLightsStyleEnable.Bool()
	for _, l := range m.lights {
		r := l.Resolve(&m.Env, now)
		if !styles {
			r.Diffuse, r.Ambient, r.Style = l.Diffuse(), l.Ambient(), 1
		}
		m.resolved = append(m.resolved, r)
	}
}

func anyVisible(leaves []int, vis bsp.VisSet) bool {
	for _, l := range leaves {
		if vis.Contains(l) {
			return true
		}
	}
	return false
}

// CullLights collects the resolved lights seen from v. A nil vis skips the
// leaf test. Views without a far plane are not frustum culled.
func (m *Manager) CullLights(v *view.Descriptor, vis bsp.VisSet) {
	m.eye, m.zNear = v.Origin, v.Near
	m.rendered = m.rendered[:0]
	if !cvars.DeferredLightsEnable.Bool() {
		return
	}
	var fr frustum.Frustum
	if v.Far > 0 {
		fr = v.Frustum()
	}
	worlds := m.worldLights && cvars.DeferredLightsWorldEnable.Bool()
	for i := range m.resolved {
		r := &m.resolved[i]
		switch {
		case !r.Enabled():
			continue
		case r.World && !worlds:
			continue
		case vec.Sub(r.Origin, m.eye).LengthSqr() > r.MaxDistSqr:
			continue
		case vis != nil && !anyVisible(r.Leaves, vis):
			continue
		case fr.CullBox(r.Mins, r.Maxs):
			continue
		}
		m.rendered = append(m.rendered, r)
	}
}

// significance orders lights nearest first, larger radius first on ties.
func (m *Manager) significance(a, b *light.Resolved) int {
	da := vec.Sub(a.Origin, m.eye).LengthSqr()
	db := vec.Sub(b.Origin, m.eye).LengthSqr()
	if c := cmp.Compare(da, db); c != 0 {
		return c
	}
	return cmp.Compare(b.Radius, a.Radius)
}

// SortLights splits the culled lights into the buckets. A light is drawn
// fullscreen when the eye is inside its proxy mesh, grown by the near
// plane distance.
func (m *Manager) SortLights() {
	for b := range m.buckets {
		m.buckets[b] = m.buckets[b][:0]
	}
	for _, r := range m.rendered {
		b := PointWorld
		if r.Type == light.Spot {
			b = SpotWorld
		}
		if r.Inside(m.eye, m.zNear) {
			b++
		}
		m.buckets[b] = append(m.buckets[b], r)
	}
	for b := range m.buckets {
		slices.SortStableFunc(m.buckets[b], m.significance)
	}
}

// Rendered returns the lights that passed culling.
func (m *Manager) Rendered() []*light.Resolved { return m.rendered }

func (m *Manager) Bucket(b Bucket) []*light.Resolved { return m.buckets[b] }
