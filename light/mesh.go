// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/render"
)

// Materials reports which materials can be drawn with.
type Materials interface {
	HasMaterial(m render.Material) bool
}

func hasMaterial(ms Materials, m render.Material) bool {
	return ms == nil || ms.HasMaterial(m)
}

const (
	sphereRings    = 4
	sphereSegments = 8
	sphereStep     = 45
)

// SphereTriangles returns a closed sphere proxy around the origin. The
// vertices are pushed out so the flat faces never cut into radius.
func SphereTriangles(radius float32) []vec.Vec3 {
	const half = sphereStep / 2
	c := math32.Abs(math32.Cos(mgl32.DegToRad(half)))
	inner := radius / (c * c)
	outer := radius / c

	var ring [sphereRings][sphereSegments]vec.Vec3
	for lv := 0; lv < sphereRings; lv++ {
		pitch := float32(90 - half - sphereStep*lv)
		yaw := float32(half)
		scale := inner
		if lv == 0 || lv == sphereRings-1 {
			scale = outer
		}
		for i := 0; i < sphereSegments; i++ {
			f, _, _ := vec.AngleVectors(vec.Vec3{pitch, yaw, 0})
			ring[lv][i] = vec.Scale(scale, f)
			yaw -= sphereStep
		}
	}

	tris := make([]vec.Vec3, 0, 3*(2*(sphereRings-1)*sphereSegments+2*sphereSegments))
	for lv := 0; lv < sphereRings-1; lv++ {
		for i := 0; i < sphereSegments; i++ {
			n := (i + 1) % sphereSegments
			a, b := ring[lv][i], ring[lv][n]
			cc, d := ring[lv+1][n], ring[lv+1][i]
			tris = append(tris, a, cc, b, a, d, cc)
		}
	}
	bottom := vec.Vec3{0, 0, -radius}
	top := vec.Vec3{0, 0, radius}
	for i := 0; i < sphereSegments; i++ {
		n := (i + 1) % sphereSegments
		tris = append(tris, bottom, ring[0][i], ring[0][n])
		tris = append(tris, top, ring[sphereRings-1][n], ring[sphereRings-1][i])
	}
	return tris
}

// ConeTriangles returns the pyramid spanned by the light origin and the far
// plane of the inverse projection projInv, in light local space.
func ConeTriangles(projInv mgl32.Mat4) []vec.Vec3 {
	var w [4]vec.Vec3
	for i, c := range farCorners {
		p := mat.TransformPoint(projInv, c)
		// view space to x forward, y left, z up
		w[i] = vec.Vec3{-p[2], -p[0], p[1]}
	}
	var o vec.Vec3
	return []vec.Vec3{
		w[0], w[1], w[2],
		w[0], w[2], w[3],
		o, w[1], w[0],
		o, w[3], w[2],
		o, w[2], w[1],
		o, w[0], w[3],
	}
}

// Flip reverses the winding of every triangle.
func Flip(tris []vec.Vec3) []vec.Vec3 {
	r := make([]vec.Vec3, len(tris))
	for i := 0; i+2 < len(tris); i += 3 {
		r[i], r[i+1], r[i+2] = tris[i+2], tris[i+1], tris[i]
	}
	return r
}

func (l *Light) proxyTriangles() []vec.Vec3 {
	if l.typ == Spot {
		return ConeTriangles(l.projInv)
	}
	return SphereTriangles(l.radius)
}

func release(m *render.Mesh) {
	if *m != nil {
		(*m).Release()
		*m = nil
	}
}

// UpdateRenderMesh rebuilds the world space proxy mesh.
func (l *Light) UpdateRenderMesh(f render.MeshFactory, ms Materials) {
	if l.dirty&DirtyTransforms != 0 {
		l.UpdateTransforms()
	}
	release(&l.meshWorld)
	l.dirty &^= DirtyRenderMesh

	m := render.MatLightPointWorld
	if l.typ == Spot {
		m = render.MatLightSpotWorld
	}
	if f == nil || !hasMaterial(ms, m) {
		return
	}
	l.meshWorld = f.CreateStaticMesh(m, l.proxyTriangles())
}

// UpdateVolumetrics rebuilds the volume meshes. Spot lights also get an
// inside out cone for the prepass.
func (l *Light) UpdateVolumetrics(f render.MeshFactory, ms Materials) {
	if l.dirty&DirtyTransforms != 0 {
		l.UpdateTransforms()
	}
	release(&l.meshVolume)
	release(&l.meshPrepass)
	l.dirty &^= DirtyVolumetrics

	if f == nil || !l.HasVolumetrics() {
		return
	}
	switch l.typ {
	case Point:
		if hasMaterial(ms, render.MatLightVolumePointWorld) {
			l.meshVolume = f.CreateStaticMesh(render.MatLightVolumePointWorld, SphereTriangles(l.radius))
		}
	case Spot:
		if hasMaterial(ms, render.MatLightVolumeSpotWorld) && hasMaterial(ms, render.MatLightVolumePrepass) {
			cone := ConeTriangles(l.projInv)
			l.meshVolume = f.CreateStaticMesh(render.MatLightVolumeSpotWorld, cone)
			l.meshPrepass = f.CreateStaticMesh(render.MatLightVolumePrepass, Flip(cone))
		}
	}
}

func (l *Light) WorldMesh() render.Mesh   { return l.meshWorld }
func (l *Light) VolumeMesh() render.Mesh  { return l.meshVolume }
func (l *Light) PrepassMesh() render.Mesh { return l.meshPrepass }

// Release frees the meshes and the cookie of the light.
func (l *Light) Release() {
	release(&l.meshWorld)
	release(&l.meshVolume)
	release(&l.meshPrepass)
	l.ClearCookie()
	l.dirty |= DirtyRenderMesh | DirtyVolumetrics | DirtyCookie
}

// proxyScale is how far the sphere proxy reaches beyond the radius.
var proxyScale = func() float32 {
	c := math32.Cos(mgl32.DegToRad(sphereStep / 2))
	return 1 / (c * c)
}()
