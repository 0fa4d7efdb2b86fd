// SPDX-License-Identifier: GPL-2.0-or-later

// Package mat holds the 4x4 transforms used for light and shadow views.
// Matrices are mgl32 column major, world space is Quake style (x forward,
// y left, z up) and view space is OpenGL style (-z forward).
package mat

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/vec"
)

// World returns the object to world transform of an entity at origin
// oriented by angles.
func World(origin, angles vec.Vec3) mgl32.Mat4 {
	f, r, u := vec.AngleVectors(angles)
	l := r.Negate()
	return mgl32.Mat4FromCols(f.Vec4(0), l.Vec4(0), u.Vec4(0), origin.Vec4(1))
}

// Translation returns a pure translation to origin.
func Translation(origin vec.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(origin[0], origin[1], origin[2])
}

// View returns the world to view transform of a camera at origin looking
// along forward.
func View(origin, forward, right, up vec.Vec3) mgl32.Mat4 {
	return mgl32.Mat4FromRows(
		right.Vec4(-vec.Dot(right, origin)),
		up.Vec4(-vec.Dot(up, origin)),
		forward.Negate().Vec4(vec.Dot(forward, origin)),
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// ViewFromAngles is View with the axes derived from Quake angles.
func ViewFromAngles(origin, angles vec.Vec3) mgl32.Mat4 {
	f, r, u := vec.AngleVectors(angles)
	return View(origin, f, r, u)
}

// FovY returns the vertical field of view in degrees for a horizontal fov
// in degrees and the aspect ratio width/height.
func FovY(fovX, aspect float32) float32 {
	x := math32.Tan(mgl32.DegToRad(fovX) / 2)
	return mgl32.RadToDeg(2 * math32.Atan(x/aspect))
}

// PerspectiveX is mgl32.Perspective with a horizontal fov in degrees.
func PerspectiveX(fovX, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(FovY(fovX, aspect)), aspect, near, far)
}

// Ortho returns a symmetric orthographic projection.
func Ortho(halfWidth, halfHeight, near, far float32) mgl32.Mat4 {
	return mgl32.Ortho(-halfWidth, halfWidth, -halfHeight, halfHeight, near, far)
}

// ScreenToTexture maps device coordinates to [0,1] texture coordinates
// with a flipped y axis. z is kept.
func ScreenToTexture() mgl32.Mat4 {
	return mgl32.Translate3D(0.5, 0.5, 0).Mul4(mgl32.Scale3D(0.5, -0.5, 1))
}

// TransformPoint applies m to p including the perspective divide.
func TransformPoint(m mgl32.Mat4, p vec.Vec3) vec.Vec3 {
	r := m.Mul4x1(p.Vec4(1))
	if r[3] == 0 {
		return vec.Vec3{r[0], r[1], r[2]}
	}
	return vec.Vec3{r[0] / r[3], r[1] / r[3], r[2] / r[3]}
}

// Rows returns the four rows of m, the layout the shading constants use.
func Rows(m mgl32.Mat4) [4]mgl32.Vec4 {
	return [4]mgl32.Vec4{m.Row(0), m.Row(1), m.Row(2), m.Row(3)}
}

// Equal reports whether a and b differ by at most eps per element.
func Equal(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
