// SPDX-License-Identifier: GPL-2.0-or-later

// Package frustum holds plane sets bounding light and camera views.
package frustum

import (
	"github.com/chewxy/math32"

	"deflight/math/vec"
)

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	signBits uint8 // caching of plane side tests
}

func NewPlane(normal vec.Vec3, dist float32) Plane {
	p := Plane{Normal: normal, Dist: dist}
	p.UpdateSignBits()
	return p
}

func (p *Plane) UpdateSignBits() {
	p.signBits = 0
	if p.Normal[0] < 0 {
		p.signBits |= 1 << 0
	}
	if p.Normal[1] < 0 {
		p.signBits |= 1 << 1
	}
	if p.Normal[2] < 0 {
		p.signBits |= 1 << 2
	}
}

// TurnVector sets the plane through origin whose normal is forward rotated
// by angle degrees towards side.
func (p *Plane) TurnVector(origin, forward, side vec.Vec3, angle float32) {
	ar := angle / 180 * math32.Pi
	scaleSide, scaleForward := math32.Sincos(ar)

	p.Normal = vec.Add(vec.Scale(scaleForward, forward), vec.Scale(scaleSide, side))
	p.Dist = vec.Dot(origin, p.Normal)
	p.UpdateSignBits()
}

// Distance returns the signed distance of point to the plane, positive on
// the inner side.
func (p *Plane) Distance(point vec.Vec3) float32 {
	return vec.Dot(p.Normal, point) - p.Dist
}

// boxOutside returns true if the box is completely on the outer side.
func (p *Plane) boxOutside(mins, maxs vec.Vec3) bool {
	n := p.Normal
	switch p.signBits {
	case 0:
		return n[0]*maxs[0]+n[1]*maxs[1]+n[2]*maxs[2] < p.Dist
	case 1:
		return n[0]*mins[0]+n[1]*maxs[1]+n[2]*maxs[2] < p.Dist
	case 2:
		return n[0]*maxs[0]+n[1]*mins[1]+n[2]*maxs[2] < p.Dist
	case 3:
		return n[0]*mins[0]+n[1]*mins[1]+n[2]*maxs[2] < p.Dist
	case 4:
		return n[0]*maxs[0]+n[1]*maxs[1]+n[2]*mins[2] < p.Dist
	case 5:
		return n[0]*mins[0]+n[1]*maxs[1]+n[2]*mins[2] < p.Dist
	case 6:
		return n[0]*maxs[0]+n[1]*mins[1]+n[2]*mins[2] < p.Dist
	default:
		return n[0]*mins[0]+n[1]*mins[1]+n[2]*mins[2] < p.Dist
	}
}

// Frustum is a convex volume bounded by up to 6 inward facing planes.
type Frustum struct {
	Planes []Plane
}

// NewPerspective builds the 6 planes of a perspective view. fovX and fovY
// are full angles in degrees.
func NewPerspective(origin, forward, right, up vec.Vec3, fovX, fovY, near, far float32) Frustum {
	f := Frustum{Planes: make([]Plane, 6)}
	f.Planes[0].TurnVector(origin, forward, right, fovX/2-90)
	f.Planes[1].TurnVector(origin, forward, right, 90-fovX/2)
	f.Planes[2].TurnVector(origin, forward, up, 90-fovY/2)
	f.Planes[3].TurnVector(origin, forward, up, fovY/2-90)
	f.Planes[4] = NewPlane(forward, vec.Dot(origin, forward)+near)
	f.Planes[5] = NewPlane(forward.Negate(), -(vec.Dot(origin, forward) + far))
	return f
}

// NewOrtho builds the box of an orthographic view with the given half
// extents.
func NewOrtho(origin, forward, right, up vec.Vec3, halfWidth, halfHeight, near, far float32) Frustum {
	f := Frustum{Planes: make([]Plane, 6)}
	f.Planes[0] = NewPlane(right, vec.Dot(origin, right)-halfWidth)
	f.Planes[1] = NewPlane(right.Negate(), -(vec.Dot(origin, right) + halfWidth))
	f.Planes[2] = NewPlane(up, vec.Dot(origin, up)-halfHeight)
	f.Planes[3] = NewPlane(up.Negate(), -(vec.Dot(origin, up) + halfHeight))
	f.Planes[4] = NewPlane(forward, vec.Dot(origin, forward)+near)
	f.Planes[5] = NewPlane(forward.Negate(), -(vec.Dot(origin, forward) + far))
	return f
}

// Empty reports whether the frustum has no planes and so culls nothing.
func (f *Frustum) Empty() bool {
	return len(f.Planes) == 0
}

// CullBox returns true if the box is completely outside the frustum
func (f *Frustum) CullBox(mins, maxs vec.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].boxOutside(mins, maxs) {
			return true
		}
	}
	return false
}

// Contains reports whether p is on the inner side of every plane.
func (f *Frustum) Contains(p vec.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}

// Expanded returns a copy with every plane moved outwards by d.
func (f *Frustum) Expanded(d float32) Frustum {
	r := Frustum{Planes: make([]Plane, len(f.Planes))}
	for i, p := range f.Planes {
		r.Planes[i] = NewPlane(p.Normal, p.Dist-d)
	}
	return r
}
