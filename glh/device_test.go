// SPDX-License-Identifier: GPL-2.0-or-later

package glh

import (
	"math/bits"
	"testing"

	"deflight/render"
)

func TestBoxEdges(t *testing.T) {
	seen := make(map[[2]int]bool)
	for i := 0; i < len(boxEdges); i += 2 {
		a, b := boxEdges[i], boxEdges[i+1]
		if bits.OnesCount(uint(a^b)) != 1 {
			t.Errorf("edge %d-%d is not axis aligned", a, b)
		}
		if a > b {
			a, b = b, a
		}
		if seen[[2]int{a, b}] {
			t.Errorf("edge %d-%d twice", a, b)
		}
		seen[[2]int{a, b}] = true
	}
	if len(seen) != 12 {
		t.Errorf("got %d edges, want 12", len(seen))
	}
}

func TestMaterialSources(t *testing.T) {
	for _, m := range []render.Material{
		render.MatLightGlobal,
		render.MatLightPointWorld,
		render.MatLightPointFullscreen,
		render.MatLightSpotWorld,
		render.MatLightSpotFullscreen,
		render.MatComposite,
		render.MatWireframeDebug,
	} {
		src, ok := materialSources[m]
		if !ok {
			t.Errorf("no source for %v", m)
			continue
		}
		for _, s := range []string{src.vertex, src.fragment} {
			if len(s) == 0 || s[len(s)-1] != 0 {
				t.Errorf("%v: shader source not terminated", m)
			}
		}
	}
}
