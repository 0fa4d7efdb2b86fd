// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"testing"
)

const entityData = `{
"classname" "worldspawn"
"wad" "gfx/base.wad"
}
{
"classname" "light_deferred"
"origin" "64 0 32"
"radius" "256"
}
`

func TestParseEntities(t *testing.T) {
	es := ParseEntities([]byte(entityData))
	if len(es) != 2 {
		t.Fatalf("ParseEntities: got %d entities, want 2", len(es))
	}
	if n, _ := es[1].Name(); n != "light_deferred" {
		t.Errorf("Name() = %q", n)
	}
	if r, ok := es[1].Property("radius"); !ok || r != "256" {
		t.Errorf("Property(radius) = %q, %v", r, ok)
	}
}

func TestWriteEntities(t *testing.T) {
	es := ParseEntities([]byte(entityData))
	if got := string(WriteEntities(es)); got != entityData {
		t.Errorf("WriteEntities =\n%s\nwant\n%s", got, entityData)
	}
}

func TestSetProperty(t *testing.T) {
	e := NewEntityFromPairs("classname", "light_deferred", "radius", "10")
	e.SetProperty("radius", "20")
	e.SetProperty("power", "2")
	want := "{\n\"classname\" \"light_deferred\"\n\"radius\" \"20\"\n\"power\" \"2\"\n}\n"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
