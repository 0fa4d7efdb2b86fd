// SPDX-License-Identifier: GPL-2.0-or-later

package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/vec"
)

type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
)

type IntParameter int

const (
	ParamRenderStage IntParameter = iota
	ParamShadowMode
	ParamShadowIndex
	ParamLightType
)

// Render stages set through ParamRenderStage.
const (
	StageInvalid = iota
	StageGBuffer
	StageShadowPass
	StageComposition
	StageVolumePrepass
)

type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAdditive
	BlendAlpha
)

// Device is the small slice of the GPU api the light pipeline needs.
type Device interface {
	SetRenderTarget(t Target)
	Clear(flags ClearFlags, color [4]float32)
	SetIntParameter(p IntParameter, v int)
	SetBlend(b BlendMode)
	HasMaterial(m Material) bool
	// DrawMesh draws m with the world transform xf.
	DrawMesh(m Mesh, xf mgl32.Mat4)
	// DrawFullscreen draws a screen covering quad with mat. instances is
	// the number of lights packed into the constants for this draw.
	DrawFullscreen(mat Material, instances int)
	DrawBox(mins, maxs vec.Vec3, color [4]float32)
}

// Mesh is a static GPU mesh bound to one material.
type Mesh interface {
	Material() Material
	Triangles() int
	Release()
}

// MeshFactory builds static meshes from triangle lists.
type MeshFactory interface {
	CreateStaticMesh(mat Material, tris []vec.Vec3) Mesh
}
