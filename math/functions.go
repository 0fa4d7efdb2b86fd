// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
)

const (
	Pi = math32.Pi
)

func Sqrt(x float32) float32 {
	return math32.Sqrt(x)
}

func Trunc(x float32) float32 {
	return math32.Trunc(x)
}

// Lerp computes a weighted average between a and b
func Lerp(a, b, frac float32) float32 {
	return a + (b-a)*frac
}

// Smoothstep returns the hermite interpolation of x between 0 and 1.
func Smoothstep(x float32) float32 {
	x = Clamp(0, x, 1)
	return x * x * (3 - 2*x)
}

func Deg2Rad(a float32) float32 {
	return a * (Pi / 180)
}

func Rad2Deg(a float32) float32 {
	return a * (180 / Pi)
}

// Mod returns the float remainder of x/y with the sign of x.
func Mod(x, y float32) float32 {
	if y == 0 {
		return 0
	}
	return math32.Mod(x, y)
}
