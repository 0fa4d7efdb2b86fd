// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deflight/conlog"
	"deflight/frustum"
	"deflight/math"
	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/rand"
)

// World is the static level geometry lights are placed in.
type World interface {
	// TraceWorld returns the end of a line from start towards end clipped
	// against solid world geometry.
	TraceWorld(start, end vec.Vec3) vec.Vec3
	LeavesInBox(mins, maxs vec.Vec3, fn func(leaf int) bool) bool
}

const unitBox = 0.57735

var (
	pointDirs = [14]vec.Vec3{
		{1, 1, 1},
		{-1, 1, 1},
		{1, -1, 1},
		{1, 1, -1},
		{-1, -1, 1},
		{1, -1, -1},
		{-1, 1, -1},
		{-1, -1, -1},
		{1, 0, 0},
		{-1, 0, 0},
		{0, 1, 0},
		{0, -1, 0},
		{0, 0, 1},
		{0, 0, -1},
	}
	// far plane corners in device coordinates
	farCorners = [4]vec.Vec3{
		{1, 1, 1},
		{-1, 1, 1},
		{-1, -1, 1},
		{1, -1, 1},
	}
)

// UpdateTransforms recomputes the matrices, the spot frustum and the squared
// visible distance.
func (l *Light) UpdateTransforms() {
	for i := range l.angles {
		l.angles[i] = math.AngleMod32(l.angles[i])
	}
	l.forward, l.right, l.up = vec.AngleVectors(l.angles)

	d := float32(l.visDist + l.visRange)
	l.maxDistSqr = d * d

	if l.typ == Point {
		l.worldXf = mat.Translation(l.origin)
		l.frustum = frustum.Frustum{}
		l.dirty &^= DirtyTransforms
		return
	}

	l.worldXf = mat.World(l.origin, l.angles)
	l.fov = math.Clamp(minFOV, math.Rad2Deg(l.coneOuter)*2, maxFOV)
	far := l.radius
	if far <= SpotZNear {
		far = SpotZNear + 1
	}
	l.view = mat.View(l.origin, l.forward, l.right, l.up)
	l.proj = mat.PerspectiveX(l.fov, 1, SpotZNear, far)
	l.projInv = l.proj.Inv()
	l.viewProj = l.proj.Mul4(l.view)
	l.viewProjInv = l.viewProj.Inv()
	l.worldToTex = mat.ScreenToTexture().Mul4(l.viewProj)
	l.frustum = frustum.NewPerspective(l.origin, l.forward, l.right, l.up, l.fov, l.fov, SpotZNear, far)
	l.dirty &^= DirtyTransforms
}

func trace(w World, start, end vec.Vec3) vec.Vec3 {
	if w == nil {
		return end
	}
	return w.TraceWorld(start, end)
}

// UpdateBounds recomputes the traced and the naive bounding box.
func (l *Light) UpdateBounds(w World) {
	if l.dirty&DirtyTransforms != 0 {
		l.UpdateTransforms()
	}
	switch l.typ {
	case Point:
		var ends [len(pointDirs)]vec.Vec3
		for i, d := range pointDirs {
			ends[i] = trace(w, l.origin, vec.MA(l.origin, l.radius, d))
		}
		l.mins, l.maxs = vec.Bounds(ends[:]...)
		r := vec.Vec3{l.radius, l.radius, l.radius}
		l.naiveMins = vec.Sub(l.origin, r)
		l.naiveMaxs = vec.Add(l.origin, r)
		l.center = l.origin
	case Spot:
		var corners [len(farCorners)]vec.Vec3
		for i, c := range farCorners {
			corners[i] = mat.TransformPoint(l.viewProjInv, c)
		}
		ends := make([]vec.Vec3, 0, 6)
		for _, c := range corners {
			ends = append(ends, trace(w, l.origin, c))
		}
		ends = append(ends, trace(w, l.origin, vec.MA(l.origin, l.radius, l.forward)), l.origin)
		l.mins, l.maxs = vec.Bounds(ends...)
		l.naiveMins, l.naiveMaxs = vec.Bounds(append(corners[:], l.origin)...)
		l.center = vec.Lerp(l.naiveMins, l.naiveMaxs, 0.5)
	}
	if vec.Sub(l.maxs, l.mins).LengthSqr() < 1 {
		u := vec.Vec3{unitBox, unitBox, unitBox}
		l.mins, l.maxs = vec.Bounds(l.mins, l.maxs, vec.Sub(l.origin, u), vec.Add(l.origin, u))
	}
	l.dirty &^= DirtyBounds
}

// EnumerateLeaves collects the world leaves touching the bounds. The list is
// cut at MaxLeaves.
func (l *Light) EnumerateLeaves(w World) {
	if l.dirty&(DirtyTransforms|DirtyBounds) != 0 {
		l.UpdateBounds(w)
	}
	l.leaves = l.leaves[:0]
	if w != nil {
		truncated := false
		w.LeavesInBox(l.mins, l.maxs, func(leaf int) bool {
			if len(l.leaves) >= MaxLeaves {
				truncated = true
				return false
			}
			l.leaves = append(l.leaves, leaf)
			return true
		})
		if truncated {
			conlog.WarnOnce("light.leaves", "light %v touches more than %d leaves\n", l.id, MaxLeaves)
		}
	}
	l.dirty &^= DirtyLeaves
}

// ComputeStyleValue returns the intensity multiplier at time t. The result
// only depends on the style and t.
func (l *Light) ComputeStyleValue(t float64) float32 {
	return l.style.Value(t)
}

// Value returns the style intensity in [1-Amount, 1] at time t.
func (s Style) Value(t float64) float32 {
	amount := math.Clamp(0, s.Amount, 1)
	if amount == 0 {
		return 1
	}
	phase := t*float64(s.Speed) + float64(s.Seed)/SeedMax
	step := int64(phase)
	if phase < 0 && float64(step) != phase {
		step--
	}
	frac := float32(phase - float64(step))

	pulse := 0.5 + 0.5*math32.Sin(frac*2*math32.Pi)

	seed := uint32(s.Seed)
	n0 := rand.Noise(uint32(step), seed)
	n1 := rand.Noise(uint32(step+1), seed)
	blend := math.Lerp(0, math.Smoothstep(frac), math.Clamp(0, s.Smooth, 1))
	noise := math.Lerp(n0, n1, blend)

	v := math.Lerp(pulse, noise, math.Clamp(0, s.Random, 1))
	return 1 - amount*v
}

// Derived state accessors. They return the values of the last update.

func (l *Light) FOV() float32                       { return l.fov }
func (l *Light) Forward() vec.Vec3                  { return l.forward }
func (l *Light) WorldTransform() mgl32.Mat4         { return l.worldXf }
func (l *Light) ViewProjection() mgl32.Mat4         { return l.viewProj }
func (l *Light) InverseViewProj() mgl32.Mat4        { return l.viewProjInv }
func (l *Light) WorldToTexture() mgl32.Mat4         { return l.worldToTex }
func (l *Light) Frustum() frustum.Frustum           { return l.frustum }
func (l *Light) MaxDistSqr() float32                { return l.maxDistSqr }
func (l *Light) Bounds() (mins, maxs vec.Vec3)      { return l.mins, l.maxs }
func (l *Light) NaiveBounds() (mins, maxs vec.Vec3) { return l.naiveMins, l.naiveMaxs }
func (l *Light) Center() vec.Vec3                   { return l.center }
func (l *Light) Leaves() []int                      { return l.leaves }
