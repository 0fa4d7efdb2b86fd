// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"strings"
	"testing"

	"deflight/bsp"
	"deflight/cookie"
	qmath "deflight/math"
	"deflight/math/vec"
	rrecord "deflight/render/record"
)

func testCookies() (*cookie.Table, *cookie.Factory) {
	a := rrecord.NewAllocator()
	a.AddTexture("cookies/window", 64, 64)
	return cookie.NewTable(), cookie.NewFactory(a, nil)
}

func TestKeyValueRoundTrip(t *testing.T) {
	names, cookies := testCookies()
	in := bsp.NewEntityFromPairs(
		"classname", ClassName,
		KeyOrigin, "10 -20 30.5",
		KeyDiffuse, "1 1 1",
		KeyRadius, "256",
		KeyConeInner, "35",
		KeyConeOuter, "45",
		KeyType, "1",
		KeyCookie, "cookies/window",
		KeyStyleSeed, "77",
	)
	l, err := FromEntity(in, names, cookies)
	if err != nil {
		t.Fatalf("FromEntity: %v", err)
	}
	if l.Type() != Spot {
		t.Errorf("type = %v", l.Type())
	}
	inner, outer := l.SpotCone()
	if !near(inner, qmath.Deg2Rad(35), 1e-6) || !near(outer, qmath.Deg2Rad(45), 1e-6) {
		t.Errorf("cones not converted to radians: %v %v", inner, outer)
	}
	if l.Origin() != (vec.Vec3{10, -20, 30.5}) {
		t.Errorf("origin = %v", l.Origin())
	}
	if l.CookieIndex() == 0 {
		t.Errorf("cookie not added to the table")
	}
	if l.Dirty() != DirtyAll {
		t.Errorf("applied light not fully dirty: %b", l.Dirty())
	}

	out := l.Entity(names)
	want := map[string]string{
		KeyConeInner: "35",
		KeyConeOuter: "45",
		KeyDiffuse:   "1.00 1.00 1.00",
		KeyRadius:    "256",
		KeyOrigin:    "10.00 -20.00 30.50",
		KeyCookie:    "cookies/window",
		KeyStyleSeed: "77",
		KeyVisDist:   "2048",
	}
	for k, w := range want {
		if got, _ := out.Property(k); got != w {
			t.Errorf("%s = %q, want %q", k, got, w)
		}
	}

	again, err := FromEntity(out, names, cookies)
	if err != nil {
		t.Fatalf("FromEntity(Entity()): %v", err)
	}
	if again.Entity(names).String() != out.String() {
		t.Errorf("second round trip differs:\n%s\n%s", again.Entity(names), out)
	}
}

func TestKeyValueUnknownCookie(t *testing.T) {
	names, cookies := testCookies()
	l, err := FromEntity(bsp.NewEntityFromPairs(KeyCookie, "cookies/missing"), names, cookies)
	if err != nil {
		t.Fatalf("FromEntity: %v", err)
	}
	if l.CookieIndex() != 0 {
		t.Errorf("unknown cookie kept: %d", l.CookieIndex())
	}
	if _, ok := l.Entity(names).Property(KeyCookie); ok {
		t.Errorf("unset cookie written")
	}
}

func TestKeyValueErrors(t *testing.T) {
	for _, e := range []*bsp.Entity{
		bsp.NewEntityFromPairs(KeyType, "5"),
		bsp.NewEntityFromPairs(KeyType, "spot"),
		bsp.NewEntityFromPairs(KeyRadius, "big"),
		bsp.NewEntityFromPairs(KeyOrigin, "1 x 3"),
	} {
		if _, err := FromEntity(e, nil, nil); err == nil {
			t.Errorf("FromEntity(%q) did not fail", strings.TrimSpace(e.String()))
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	names, cookies := testCookies()
	l := New(Spot)
	l.SetOrigin(vec.Vec3{1, 2, 3})
	l.SetRadius(300)
	l.SetFlags(FlagEnabled | FlagVolumetrics)
	l.SetStyle(Style{Seed: 5, Amount: 0.25, Speed: 3})
	l.SetCookieIndex(names.Add("cookies/window"))

	s, err := l.Struct(names)
	if err != nil {
		t.Fatalf("Struct: %v", err)
	}
	if s.GetFields()["id"].GetStringValue() != l.ID().String() {
		t.Errorf("snapshot id missing")
	}
	r, err := FromStruct(s, names, cookies)
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if r.Entity(names).String() != l.Entity(names).String() {
		t.Errorf("restored light differs:\n%s\n%s", r.Entity(names), l.Entity(names))
	}
}

func TestKeyValueClampsLikeSetters(t *testing.T) {
	in := bsp.NewEntityFromPairs(
		KeyType, "1",
		KeyRadius, "-64",
		KeyConeInner, "60",
		KeyConeOuter, "20",
		KeyStyleSeed, "20000",
	)
	l, err := FromEntity(in, nil, nil)
	if err != nil {
		t.Fatalf("FromEntity: %v", err)
	}
	want := New(Spot)
	want.SetRadius(-64)
	want.SetSpotCone(qmath.Deg2Rad(60), qmath.Deg2Rad(20))
	want.SetStyle(Style{Seed: 20000})

	if l.Radius() != want.Radius() || l.Radius() != 0 {
		t.Errorf("radius = %v, want %v", l.Radius(), want.Radius())
	}
	inner, outer := l.SpotCone()
	wi, wo := want.SpotCone()
	if inner != wi || outer != wo {
		t.Errorf("cone = %v %v, want %v %v", inner, outer, wi, wo)
	}
	if inner > outer {
		t.Errorf("inner cone %v wider than outer %v", inner, outer)
	}
	if l.Style().Seed != SeedMax {
		t.Errorf("seed = %d, want %d", l.Style().Seed, SeedMax)
	}
	if l.Dirty() != DirtyAll {
		t.Errorf("applied light not fully dirty: %b", l.Dirty())
	}
}

func TestApplyEntityErrorKeepsLight(t *testing.T) {
	l := New(Point)
	l.SetRadius(100)
	err := l.ApplyEntity(bsp.NewEntityFromPairs(KeyRadius, "300", KeyOrigin, "1 x 3"), nil, nil)
	if err == nil {
		t.Fatalf("ApplyEntity did not fail")
	}
	if l.Radius() != 100 {
		t.Errorf("radius = %v after failed apply, want 100", l.Radius())
	}
}
