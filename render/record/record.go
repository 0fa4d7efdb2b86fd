// SPDX-License-Identifier: GPL-2.0-or-later

// Package record implements the render interfaces by recording every call.
// It backs headless runs and the pipeline tests.
package record

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/vec"
	"deflight/render"
)

type Kind int

const (
	SetTarget Kind = iota
	Clear
	SetParam
	SetBlend
	DrawMesh
	DrawFullscreen
	DrawBox
)

func (k Kind) String() string {
	switch k {
	case SetTarget:
		return "target"
	case Clear:
		return "clear"
	case SetParam:
		return "param"
	case SetBlend:
		return "blend"
	case DrawMesh:
		return "mesh"
	case DrawFullscreen:
		return "fullscreen"
	case DrawBox:
		return "box"
	}
	return "unknown"
}

// Call is one recorded device call.
type Call struct {
	Kind      Kind
	Target    string
	Viewport  render.Viewport
	Material  render.Material
	Instances int
	Param     render.IntParameter
	Value     int
	Clear     render.ClearFlags
	Blend     render.BlendMode
	Transform mgl32.Mat4
	Mins      vec.Vec3
	Maxs      vec.Vec3
}

func (c Call) String() string {
	switch c.Kind {
	case SetTarget:
		return fmt.Sprintf("target %s %v", c.Target, c.Viewport)
	case DrawMesh, DrawFullscreen:
		return fmt.Sprintf("%v %v on %s", c.Kind, c.Material, c.Target)
	}
	return fmt.Sprintf("%v on %s", c.Kind, c.Target)
}

// Device records calls. Materials listed in Missing report as unavailable.
type Device struct {
	mu      sync.Mutex
	Calls   []Call
	Missing map[render.Material]bool
	current render.Target
}

func NewDevice() *Device {
	return &Device{Missing: make(map[render.Material]bool)}
}

func (d *Device) add(c Call) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.Target = d.current.Name()
	d.Calls = append(d.Calls, c)
}

func (d *Device) SetRenderTarget(t render.Target) {
	d.mu.Lock()
	d.current = t
	d.mu.Unlock()
	d.add(Call{Kind: SetTarget, Viewport: t.Viewport})
}

func (d *Device) Clear(flags render.ClearFlags, color [4]float32) {
	d.add(Call{Kind: Clear, Clear: flags})
}

func (d *Device) SetIntParameter(p render.IntParameter, v int) {
	d.add(Call{Kind: SetParam, Param: p, Value: v})
}

func (d *Device) SetBlend(b render.BlendMode) {
	d.add(Call{Kind: SetBlend, Blend: b})
}

func (d *Device) HasMaterial(m render.Material) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.Missing[m]
}

func (d *Device) DrawMesh(m render.Mesh, xf mgl32.Mat4) {
	d.add(Call{Kind: DrawMesh, Material: m.Material(), Transform: xf})
}

func (d *Device) DrawFullscreen(mat render.Material, instances int) {
	d.add(Call{Kind: DrawFullscreen, Material: mat, Instances: instances})
}

func (d *Device) DrawBox(mins, maxs vec.Vec3, color [4]float32) {
	d.add(Call{Kind: DrawBox, Mins: mins, Maxs: maxs})
}

// Reset forgets all recorded calls.
func (d *Device) Reset() {
	d.mu.Lock()
	d.Calls = d.Calls[:0]
	d.mu.Unlock()
}

// Filter returns the recorded calls of kind k.
func (d *Device) Filter(k Kind) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var r []Call
	for _, c := range d.Calls {
		if c.Kind == k {
			r = append(r, c)
		}
	}
	return r
}

// Draws returns the materials of all draw calls in order.
func (d *Device) Draws() []render.Material {
	d.mu.Lock()
	defer d.mu.Unlock()
	var r []render.Material
	for _, c := range d.Calls {
		if c.Kind == DrawMesh || c.Kind == DrawFullscreen {
			r = append(r, c.Material)
		}
	}
	return r
}

type Mesh struct {
	mat      render.Material
	tris     int
	released bool
}

func (m *Mesh) Material() render.Material { return m.mat }
func (m *Mesh) Triangles() int            { return m.tris }
func (m *Mesh) Release()                  { m.released = true }
func (m *Mesh) Released() bool            { return m.released }

// MeshFactory creates recording meshes and keeps track of them.
type MeshFactory struct {
	Created []*Mesh
}

func (f *MeshFactory) CreateStaticMesh(mat render.Material, tris []vec.Vec3) render.Mesh {
	m := &Mesh{mat: mat, tris: len(tris) / 3}
	f.Created = append(f.Created, m)
	return m
}

// Live returns the number of created meshes not yet released.
func (f *MeshFactory) Live() int {
	n := 0
	for _, m := range f.Created {
		if !m.released {
			n++
		}
	}
	return n
}

// Allocator hands out textures. Names listed in Fail cannot be created.
type Allocator struct {
	Fail     map[string]bool
	textures map[string]*render.Texture
	next     uint32
}

func NewAllocator() *Allocator {
	return &Allocator{Fail: make(map[string]bool), textures: make(map[string]*render.Texture)}
}

func (a *Allocator) CreateRenderTarget(name string, w, h int, f render.Format) (*render.Texture, error) {
	if a.Fail[name] {
		return nil, fmt.Errorf("render target %s unavailable", name)
	}
	a.next++
	t := &render.Texture{Name: name, Width: w, Height: h, Format: f, ID: a.next}
	a.textures[name] = t
	return t, nil
}

// AddTexture registers a static texture for FindTexture.
func (a *Allocator) AddTexture(name string, w, h int) *render.Texture {
	a.next++
	t := &render.Texture{Name: name, Width: w, Height: h, ID: a.next}
	a.textures[name] = t
	return t
}

func (a *Allocator) FindTexture(name string) (*render.Texture, bool) {
	t, ok := a.textures[name]
	return t, ok
}
