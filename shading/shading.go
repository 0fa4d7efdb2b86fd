// SPDX-License-Identifier: GPL-2.0-or-later

// Package shading is the boundary between the light pipeline and the GPU
// shading stage. All commits are plain value copies.
package shading

import (
	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/vec"
	"deflight/render"
)

type ShadowMode int

const (
	ShadowOrtho ShadowMode = iota
	ShadowProjected
	ShadowDPSM
)

func (m ShadowMode) String() string {
	switch m {
	case ShadowOrtho:
		return "ortho"
	case ShadowProjected:
		return "projected"
	case ShadowDPSM:
		return "dpsm"
	}
	return "unknown"
}

// GlobalLight is the single directional sun light.
type GlobalLight struct {
	Diffuse     mgl32.Vec4
	AmbientHigh mgl32.Vec4
	AmbientLow  mgl32.Vec4
	Enabled     bool
	Shadow      bool
	// Direction points towards the light.
	Direction mgl32.Vec4

	FadeTime    float32
	ShadowBlend float32
}

// DefaultGlobalLight is disabled and points straight down from above.
func DefaultGlobalLight() GlobalLight {
	return GlobalLight{Direction: mgl32.Vec4{0, 0, 1, 0}}
}

type ShadowDataOrtho struct {
	WorldToTexture mgl32.Mat4
	// x, y, width, height of the cascade inside the atlas, in [0,1]
	UVTransform   mgl32.Vec4
	SlopeSettings mgl32.Vec4
	Origin        mgl32.Vec4
	ResX, ResY    int
}

type ShadowProj struct {
	Forward       mgl32.Vec4
	SlopeSettings mgl32.Vec4
	Origin        mgl32.Vec4
}

type ShadowGeneral struct {
	DPSMResX int
	DPSMResY int
	ProjRes  int
}

func DefaultShadowGeneral() ShadowGeneral {
	return ShadowGeneral{DPSMResX: 256, DPSMResY: 256, ProjRes: 256}
}

type VolumeData struct {
	DataOffset    int
	SamplerOffset int
	NumRows       int
	HasCookie     bool
}

// LightCounts is the number of packed lights per category, in packing
// order.
type LightCounts struct {
	ShadowedCookied int
	Shadowed        int
	Cookied         int
	Simple          int
}

func (c LightCounts) Total() int {
	return c.ShadowedCookied + c.Shadowed + c.Cookied + c.Simple
}

// Stage receives per frame constants for the shading stage.
type Stage interface {
	CommitOrigin(origin vec.Vec3)
	CommitViewForward(fwd vec.Vec3)
	CommitZDists(zNear, zFar float32)
	CommitZScale(zFar float32)
	CommitFrustumDeltas(m mgl32.Mat4)
	CommitShadowDataOrtho(index int, d ShadowDataOrtho)
	CommitShadowDataProj(index int, d ShadowProj)
	CommitShadowDataGeneral(d ShadowGeneral)
	CommitVolumeData(d VolumeData)
	CommitLightDataGlobal(d GlobalLight)
	CommitLightDataCommon(rows []mgl32.Vec4, counts LightCounts)
	CommitTextureGeneral(normals, depth, lightAccum *render.Texture)
	CommitTextureCascadedDepth(index int, t *render.Texture)
	CommitTextureDualParaboloidDepth(index int, t *render.Texture)
	CommitTextureProjectedDepth(index int, t *render.Texture)
	CommitTextureCookie(index int, t *render.Texture)
	CommitTextureVolumePrepass(t *render.Texture)
}

// Flush hands queued commits to the shading stage. Draws issued after it
// see every commit made before.
func Flush(s Stage) {
	if f, ok := s.(interface{ Flush() }); ok {
		f.Flush()
	}
}
