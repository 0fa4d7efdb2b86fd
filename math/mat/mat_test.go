// SPDX-License-Identifier: GPL-2.0-or-later

package mat

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/vec"
)

func near(a, b vec.Vec3) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > 1e-3 {
			return false
		}
	}
	return true
}

func TestViewLooksDownNegativeZ(t *testing.T) {
	origin := vec.Vec3{10, 20, 30}
	angles := vec.Vec3{0, 90, 0}
	v := ViewFromAngles(origin, angles)
	f, r, u := vec.AngleVectors(angles)
	tests := []struct {
		p    vec.Vec3
		want vec.Vec3
	}{
		{origin, vec.Vec3{0, 0, 0}},
		{vec.MA(origin, 5, f), vec.Vec3{0, 0, -5}},
		{vec.MA(origin, 2, r), vec.Vec3{2, 0, 0}},
		{vec.MA(origin, 3, u), vec.Vec3{0, 3, 0}},
	}
	for _, tc := range tests {
		if got := TransformPoint(v, tc.p); !near(got, tc.want) {
			t.Errorf("View(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestWorld(t *testing.T) {
	w := World(vec.Vec3{1, 2, 3}, vec.Vec3{0, 0, 0})
	if got := TransformPoint(w, vec.Vec3{1, 0, 0}); !near(got, vec.Vec3{2, 2, 3}) {
		t.Errorf("World forward = %v", got)
	}
	if got := TransformPoint(w, vec.Vec3{0, 1, 0}); !near(got, vec.Vec3{1, 3, 3}) {
		t.Errorf("World left = %v", got)
	}
}

func TestScreenToTexture(t *testing.T) {
	m := ScreenToTexture()
	tests := []struct {
		ndc, uv vec.Vec3
	}{
		{vec.Vec3{-1, 1, 0}, vec.Vec3{0, 0, 0}},
		{vec.Vec3{1, -1, 0}, vec.Vec3{1, 1, 0}},
		{vec.Vec3{0, 0, 0.5}, vec.Vec3{0.5, 0.5, 0.5}},
	}
	for _, tc := range tests {
		if got := TransformPoint(m, tc.ndc); !near(got, tc.uv) {
			t.Errorf("ScreenToTexture(%v) = %v, want %v", tc.ndc, got, tc.uv)
		}
	}
}

func TestFovY(t *testing.T) {
	if got := FovY(90, 1); math32.Abs(got-90) > 1e-3 {
		t.Errorf("FovY(90, 1) = %v", got)
	}
	if got := FovY(90, 2); got >= 90 {
		t.Errorf("FovY(90, 2) = %v, want < 90", got)
	}
}

func TestPerspectiveCorners(t *testing.T) {
	p := PerspectiveX(90, 1, 4, 256)
	// a point on the far plane at the right edge maps to x=1, z=1
	got := TransformPoint(p, vec.Vec3{256, 0, -256})
	if !near(got, vec.Vec3{1, 0, 1}) {
		t.Errorf("far right edge = %v", got)
	}
	if !Equal(p, p, 0) || Equal(p, mgl32.Ident4(), 1e-3) {
		t.Errorf("Equal broken")
	}
}
