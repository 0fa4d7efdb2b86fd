// SPDX-License-Identifier: GPL-2.0-or-later

package rand

import (
	"testing"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 16; i++ {
		x, y := a.Intn(10001), b.Intn(10001)
		if x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
	}
}

func TestNewSeedRestarts(t *testing.T) {
	g := New(7)
	first := []int{g.Intn(1000), g.Intn(1000), g.Intn(1000)}
	g.NewSeed(7)
	for i, want := range first {
		if got := g.Intn(1000); got != want {
			t.Errorf("step %d after NewSeed: %d, want %d", i, got, want)
		}
	}
}

func TestNoise(t *testing.T) {
	if Noise(3, 7) != Noise(3, 7) {
		t.Errorf("Noise not deterministic")
	}
	if Noise(3, 7) == Noise(3, 8) && Noise(4, 7) == Noise(4, 8) {
		t.Errorf("Noise ignores the seed")
	}
}

func TestIntn(t *testing.T) {
	g := New(1)
	for i := 0; i < 100; i++ {
		if n := g.Intn(5); n < 0 || n >= 5 {
			t.Fatalf("Intn(5) = %d", n)
		}
	}
}
