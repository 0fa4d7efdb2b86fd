// SPDX-License-Identifier: GPL-2.0-or-later

package frustum

import (
	"testing"

	"deflight/math/vec"
)

func TestPerspective(t *testing.T) {
	f := NewPerspective(vec.Vec3{}, vec.Vec3{1, 0, 0}, vec.Vec3{0, -1, 0}, vec.Vec3{0, 0, 1}, 90, 90, 1, 100)
	tests := []struct {
		p    vec.Vec3
		want bool
	}{
		{vec.Vec3{50, 0, 0}, true},
		{vec.Vec3{50, 40, 40}, true},
		{vec.Vec3{50, 60, 0}, false},
		{vec.Vec3{50, 0, -60}, false},
		{vec.Vec3{0.5, 0, 0}, false},
		{vec.Vec3{101, 0, 0}, false},
		{vec.Vec3{-10, 0, 0}, false},
	}
	for _, tc := range tests {
		if got := f.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestCullBox(t *testing.T) {
	f := NewPerspective(vec.Vec3{}, vec.Vec3{1, 0, 0}, vec.Vec3{0, -1, 0}, vec.Vec3{0, 0, 1}, 90, 90, 1, 100)
	tests := []struct {
		mins, maxs vec.Vec3
		want       bool
	}{
		{vec.Vec3{10, -1, -1}, vec.Vec3{12, 1, 1}, false},
		{vec.Vec3{-20, -20, -20}, vec.Vec3{20, 20, 20}, false},
		{vec.Vec3{-20, -1, -1}, vec.Vec3{-10, 1, 1}, true},
		{vec.Vec3{10, 30, -1}, vec.Vec3{12, 40, 1}, true},
		{vec.Vec3{200, -1, -1}, vec.Vec3{210, 1, 1}, true},
	}
	for _, tc := range tests {
		if got := f.CullBox(tc.mins, tc.maxs); got != tc.want {
			t.Errorf("CullBox(%v, %v) = %v, want %v", tc.mins, tc.maxs, got, tc.want)
		}
	}
}

func TestOrthoAndExpand(t *testing.T) {
	f := NewOrtho(vec.Vec3{}, vec.Vec3{0, 0, -1}, vec.Vec3{1, 0, 0}, vec.Vec3{0, 1, 0}, 10, 5, 0, 100)
	if !f.Contains(vec.Vec3{9, 4, -50}) {
		t.Errorf("point inside ortho box not contained")
	}
	if f.Contains(vec.Vec3{11, 0, -50}) {
		t.Errorf("point right of ortho box contained")
	}
	e := f.Expanded(2)
	if !e.Contains(vec.Vec3{11, 0, -50}) {
		t.Errorf("expanded box does not contain 11 0 -50")
	}
	var empty Frustum
	if !empty.Empty() || empty.CullBox(vec.Vec3{}, vec.Vec3{1, 1, 1}) {
		t.Errorf("empty frustum culls")
	}
}
