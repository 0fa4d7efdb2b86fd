// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Vec3 [3]float32

// Length returns the length of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(Dot(v, v))
}

// LengthSqr returns the squared length of the vector
func (v Vec3) LengthSqr() float32 {
	return Dot(v, v)
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns the vector v multiplied by the skalar s
func Scale(s float32, v Vec3) Vec3 {
	return Vec3{s * v[0], s * v[1], s * v[2]}
}

// MA returns a + s*b
func MA(a Vec3, s float32, b Vec3) Vec3 {
	return Vec3{a[0] + s*b[0], a[1] + s*b[1], a[2] + s*b[2]}
}

// Negate returns -v
func (v Vec3) Negate() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Normalize returns the normalized vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Scale(1/l, v)
}

// Dot returns a dot b
func Dot(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// DoublePrecDot return a dot b calculated in double precision
func DoublePrecDot(a, b Vec3) float64 {
	p := func(x, y float32) float64 {
		return float64(x) * float64(y)
	}
	return p(a[0], b[0]) + p(a[1], b[1]) + p(a[2], b[2])
}

// Cross returns a cross b
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec3, frac float32) Vec3 {
	fi := 1 - frac
	return Vec3{
		fi*a[0] + frac*b[0],
		fi*a[1] + frac*b[1],
		fi*a[2] + frac*b[2],
	}
}

func minmax(a, b float32) (float32, float32) {
	if a < b {
		return a, b
	}
	return b, a
}

func MinMax(a, b Vec3) (Vec3, Vec3) {
	var r, s Vec3
	r[0], s[0] = minmax(a[0], b[0])
	r[1], s[1] = minmax(a[1], b[1])
	r[2], s[2] = minmax(a[2], b[2])
	return r, s
}

// Bounds returns the axis aligned box around all points.
func Bounds(points ...Vec3) (mins, maxs Vec3) {
	if len(points) == 0 {
		return
	}
	mins, maxs = points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			mins[i] = min(mins[i], p[i])
			maxs[i] = max(maxs[i], p[i])
		}
	}
	return mins, maxs
}

// BoxContains reports whether p lies inside the closed box.
func BoxContains(mins, maxs, p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < mins[i] || p[i] > maxs[i] {
			return false
		}
	}
	return true
}

// Mgl converts v to the mathgl representation.
func (v Vec3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3(v)
}

// Vec4 returns v extended by w.
func (v Vec3) Vec4(w float32) mgl32.Vec4 {
	return mgl32.Vec4{v[0], v[1], v[2], w}
}

func FromMgl(v mgl32.Vec3) Vec3 {
	return Vec3(v)
}

func AngleVectors(angles Vec3) (forward, right, up Vec3) {
	deg := math32.Pi * 2 / 360
	sp, cp := math32.Sincos(angles[0] * deg) // PITCH
	sy, cy := math32.Sincos(angles[1] * deg) // YAW
	sr, cr := math32.Sincos(angles[2] * deg) // ROLL

	forward = Vec3{cp * cy, cp * sy, -sp}
	right = Vec3{
		(-1*sr*sp*cy + -1*cr*-sy),
		(-1*sr*sp*sy + -1*cr*cy),
		-1 * sr * cp,
	}
	up = Vec3{
		(cr*sp*cy + -sr*-sy),
		(cr*sp*sy + -sr*cy),
		cr * cp,
	}
	return
}

// VectorAngles returns the pitch and yaw looking along forward. Roll is 0.
func VectorAngles(forward Vec3) Vec3 {
	if forward[1] == 0 && forward[0] == 0 {
		if forward[2] > 0 {
			return Vec3{270, 0, 0}
		}
		return Vec3{90, 0, 0}
	}
	rad2deg := 180 / math32.Pi
	yaw := math32.Atan2(forward[1], forward[0]) * rad2deg
	if yaw < 0 {
		yaw += 360
	}
	tmp := math32.Sqrt(forward[0]*forward[0] + forward[1]*forward[1])
	pitch := math32.Atan2(-forward[2], tmp) * rad2deg
	if pitch < 0 {
		pitch += 360
	}
	return Vec3{pitch, yaw, 0}
}

// VectorAnglesUp returns the angles looking along forward with the given up
// vector deciding the roll.
func VectorAnglesUp(forward, up Vec3) Vec3 {
	rad2deg := 180 / math32.Pi
	left := Cross(up, forward).Normalize()
	xyDist := math32.Sqrt(forward[0]*forward[0] + forward[1]*forward[1])
	if xyDist > 0.001 {
		yaw := math32.Atan2(forward[1], forward[0])
		pitch := math32.Atan2(-forward[2], xyDist)
		upZ := left[1]*forward[0] - left[0]*forward[1]
		roll := math32.Atan2(left[2], upZ)
		return Vec3{pitch * rad2deg, yaw * rad2deg, roll * rad2deg}
	}
	yaw := math32.Atan2(-left[0], left[1])
	pitch := math32.Atan2(-forward[2], xyDist)
	return Vec3{pitch * rad2deg, yaw * rad2deg, 0}
}
