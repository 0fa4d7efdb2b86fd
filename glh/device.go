// SPDX-License-Identifier: GPL-2.0-or-later

package glh

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/mainthread/v2"

	"deflight/conlog"
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
)

// Device draws with OpenGL. Every method hands its work to the main thread
// and waits, so it may be used from the goroutine mainthread.Run started.
// Constants are read from State, which the shading queue feeds.
type Device struct {
	State *shading.State

	width, height int
	viewProj      mgl32.Mat4

	programs map[render.Material]*Program
	textures map[uint32]*Texture2D
	named    map[string]*render.Texture
	fbos     map[[2]uint32]*Framebuffer

	empty    *VertexArray
	boxArray *VertexArray
	boxBuf   *Buffer

	current render.Target
	params  [4]int
}

// NewDevice compiles the material programs. width and height are the size
// of the default framebuffer.
func NewDevice(state *shading.State, width, height int) (*Device, error) {
	d := &Device{
		State:    state,
		width:    width,
		height:   height,
		viewProj: mgl32.Ident4(),
		programs: make(map[render.Material]*Program),
		textures: make(map[uint32]*Texture2D),
		named:    make(map[string]*render.Texture),
		fbos:     make(map[[2]uint32]*Framebuffer),
	}
	var err error
	mainthread.Call(func() {
		for m, src := range materialSources {
			p, perr := NewProgram(src.vertex, src.fragment)
			if perr != nil {
				err = fmt.Errorf("material %v: %w", m, perr)
				return
			}
			d.programs[m] = p
		}
		d.empty = NewVertexArray()
		d.boxArray = NewVertexArray()
		d.boxBuf = NewBuffer(ArrayBuffer)
		d.boxArray.Bind()
		d.boxBuf.Bind()
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 0, 0)
		gl.BindVertexArray(0)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SetViewProjection sets the camera used by mesh and box draws.
func (d *Device) SetViewProjection(m mgl32.Mat4) {
	d.viewProj = m
}

func (d *Device) CreateRenderTarget(name string, w, h int, f render.Format) (*render.Texture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("bad size %dx%d", w, h)
	}
	var t *Texture2D
	mainthread.Call(func() {
		t = NewTexture2D(w, h, f)
	})
	rt := &render.Texture{Name: name, Width: w, Height: h, Format: f, ID: uint32(t.ID())}
	d.textures[rt.ID] = t
	d.named[name] = rt
	return rt, nil
}

// AddTexture uploads an rgba image FindTexture can return.
func (d *Device) AddTexture(name string, w, h int, rgba []byte) *render.Texture {
	var t *Texture2D
	mainthread.Call(func() {
		t = NewTexture2D(w, h, render.FormatRGBA8)
		t.Upload(rgba)
	})
	rt := &render.Texture{Name: name, Width: w, Height: h, ID: uint32(t.ID())}
	d.textures[rt.ID] = t
	d.named[name] = rt
	return rt
}

func (d *Device) FindTexture(name string) (*render.Texture, bool) {
	t, ok := d.named[name]
	return t, ok
}

func (d *Device) glTexture(t *render.Texture) *Texture2D {
	if t == nil {
		return nil
	}
	return d.textures[t.ID]
}

func (d *Device) framebuffer(t render.Target) *Framebuffer {
	var key [2]uint32
	if t.Color != nil {
		key[0] = t.Color.ID
	}
	if t.Depth != nil {
		key[1] = t.Depth.ID
	}
	if f, ok := d.fbos[key]; ok {
		return f
	}
	f := NewFramebuffer(d.glTexture(t.Color), d.glTexture(t.Depth))
	if !f.Complete() {
		slog.Error("incomplete framebuffer", slog.String("target", t.Name()))
	}
	d.fbos[key] = f
	return f
}

func (d *Device) SetRenderTarget(t render.Target) {
	d.current = t
	mainthread.Call(func() {
		vp := t.Viewport
		if t.Color == nil && t.Depth == nil {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			if vp.Width == 0 {
				vp = render.Viewport{Width: d.width, Height: d.height}
			}
		} else {
			d.framebuffer(t).Bind()
		}
		gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
	})
}

func (d *Device) Clear(flags render.ClearFlags, color [4]float32) {
	mainthread.Call(func() {
		var mask uint32
		if flags&render.ClearColor != 0 {
			gl.ClearColor(color[0], color[1], color[2], color[3])
			mask |= gl.COLOR_BUFFER_BIT
		}
		if flags&render.ClearDepth != 0 {
			gl.DepthMask(true)
			mask |= gl.DEPTH_BUFFER_BIT
		}
		gl.Clear(mask)
	})
}

func (d *Device) SetIntParameter(p render.IntParameter, v int) {
	if int(p) < len(d.params) {
		d.params[p] = v
	}
}

func (d *Device) SetBlend(b render.BlendMode) {
	mainthread.Call(func() {
		switch b {
		case render.BlendAdditive:
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.ONE, gl.ONE)
		case render.BlendAlpha:
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		default:
			gl.Disable(gl.BLEND)
		}
	})
}

func (d *Device) HasMaterial(m render.Material) bool {
	return d.programs[m] != nil
}

// bind sets the program of m and its constants.
func (d *Device) bind(m render.Material) (*Program, bool) {
	p := d.programs[m]
	if p == nil {
		conlog.WarnOnce("glh.material."+m.String(), "no program for %v\n", m)
		return nil, false
	}
	p.Use()
	vp := d.current.Viewport
	if vp.Width == 0 {
		vp = render.Viewport{Width: d.width, Height: d.height}
	}
	p.SetVec4("u_viewport", mgl32.Vec4{float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height)})
	p.SetMat4("u_viewProj", d.viewProj)
	if d.State == nil {
		return p, true
	}
	s := d.State
	p.SetVec3("u_origin", s.Origin())
	deltas := s.FrustumDeltas()
	for i := 0; i < 3; i++ {
		p.SetVec4(fmt.Sprintf("u_deltas[%d]", i), deltas.Row(i))
	}
	rows, counts := s.LightData()
	p.SetVec4Array("u_rows", rows)
	p.SetIVec4("u_counts", [4]int32{int32(counts.ShadowedCookied), int32(counts.Shadowed), int32(counts.Cookied), int32(counts.Simple)})
	p.SetInt("u_lightType", int32(d.params[render.ParamLightType]))
	g := s.LightDataGlobal()
	p.SetVec4("u_diffuse", g.Diffuse)
	p.SetVec4("u_ambientHigh", g.AmbientHigh)
	p.SetVec4("u_ambientLow", g.AmbientLow)
	p.SetVec4("u_direction", g.Direction)

	normals, depth, accum := s.TextureGeneral()
	for unit, t := range []*render.Texture{normals, depth, accum} {
		if gt := d.glTexture(t); gt != nil {
			gt.BindUnit(uint32(unit))
		}
	}
	return p, true
}

func (d *Device) DrawMesh(m render.Mesh, xf mgl32.Mat4) {
	gm, ok := m.(*Mesh)
	if !ok || gm.count == 0 {
		return
	}
	mainthread.Call(func() {
		p, ok := d.bind(gm.Material())
		if !ok {
			return
		}
		p.SetMat4("u_world", xf)
		gm.vao.Bind()
		gl.DrawArrays(gl.TRIANGLES, 0, gm.count)
		gl.BindVertexArray(0)
	})
}

func (d *Device) DrawFullscreen(m render.Material, instances int) {
	mainthread.Call(func() {
		if _, ok := d.bind(m); !ok {
			return
		}
		d.empty.Bind()
		gl.Disable(gl.DEPTH_TEST)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
		gl.Enable(gl.DEPTH_TEST)
		gl.BindVertexArray(0)
	})
}

// boxEdges lists the corners of the 12 edges, bit 0 selects x, bit 1 y and
// bit 2 z of maxs.
var boxEdges = [24]int{0, 1, 1, 3, 3, 2, 2, 0, 4, 5, 5, 7, 7, 6, 6, 4, 0, 4, 1, 5, 3, 7, 2, 6}

func (d *Device) DrawBox(mins, maxs vec.Vec3, color [4]float32) {
	var lines [24]vec.Vec3
	for i, c := range boxEdges {
		for a := 0; a < 3; a++ {
			if c&(1<<a) != 0 {
				lines[i][a] = maxs[a]
			} else {
				lines[i][a] = mins[a]
			}
		}
	}
	mainthread.Call(func() {
		p, ok := d.bind(render.MatWireframeDebug)
		if !ok {
			return
		}
		p.SetMat4("u_world", mgl32.Ident4())
		p.SetVec4("u_color", mgl32.Vec4(color))
		d.boxBuf.Bind()
		d.boxBuf.SetDynamicData(len(lines)*3*4, Ptr(&lines[0][0]))
		d.boxArray.Bind()
		gl.DrawArrays(gl.LINES, 0, int32(len(lines)))
		gl.BindVertexArray(0)
	})
}

// Mesh is a static triangle list on the GPU.
type Mesh struct {
	mat   render.Material
	vao   *VertexArray
	vbo   *Buffer
	count int32
}

func (m *Mesh) Material() render.Material { return m.mat }
func (m *Mesh) Triangles() int            { return int(m.count / 3) }

func (m *Mesh) Release() {
	m.count = 0
	m.vao, m.vbo = nil, nil
}

func (d *Device) CreateStaticMesh(mat render.Material, tris []vec.Vec3) render.Mesh {
	m := &Mesh{mat: mat, count: int32(len(tris))}
	if len(tris) == 0 {
		return m
	}
	mainthread.Call(func() {
		m.vao = NewVertexArray()
		m.vbo = NewBuffer(ArrayBuffer)
		m.vao.Bind()
		m.vbo.Bind()
		m.vbo.SetData(len(tris)*3*4, Ptr(&tris[0][0]))
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 0, 0)
		gl.BindVertexArray(0)
	})
	return m
}
