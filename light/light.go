// SPDX-License-Identifier: GPL-2.0-or-later

// Package light holds the definition of a single deferred light and the
// render state derived from it.
package light

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"deflight/cookie"
	"deflight/frustum"
	"deflight/math"
	"deflight/math/vec"
	"deflight/rand"
	"deflight/render"
)

type Type int

const (
	Point Type = iota
	Spot
)

func (t Type) String() string {
	switch t {
	case Point:
		return "point"
	case Spot:
		return "spot"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (t Type) valid() bool {
	return t == Point || t == Spot
}

// Flags are the persisted spawnflags of a light.
type Flags uint8

const (
	FlagEnabled Flags = 1 << iota
	FlagShadow
	FlagVolumetrics
)

// Dirty marks derived state that needs to be recomputed.
type Dirty uint8

const (
	DirtyTransforms Dirty = 1 << iota
	DirtyBounds
	DirtyLeaves
	DirtyRenderMesh
	DirtyVolumetrics
	DirtyCookie

	DirtyAll = DirtyTransforms | DirtyBounds | DirtyLeaves | DirtyRenderMesh | DirtyVolumetrics | DirtyCookie

	dirtyGeometry = DirtyTransforms | DirtyBounds | DirtyLeaves | DirtyRenderMesh | DirtyVolumetrics
)

const (
	MaxLeaves = 512
	SeedMax   = 10000
	SpotZNear = 5

	DefaultRadius      = 256
	DefaultPower       = 2
	DefaultConeInner   = 35
	DefaultConeOuter   = 45
	DefaultVisDist     = 2048
	DefaultVisRange    = 512
	DefaultShadowDist  = 1536
	DefaultShadowRange = 512

	minFOV = 1
	maxFOV = 179
)

// Style animates the intensity of a light over time.
type Style struct {
	Seed   int
	Amount float32
	Speed  float32
	Smooth float32
	Random float32
}

// Light is one placed light source. Mutation goes through the setters which
// only mark dirty flags. Derived state is recomputed by the Update methods or
// by Resolve.
type Light struct {
	id    uuid.UUID
	typ   Type
	world bool

	origin vec.Vec3
	angles vec.Vec3
	radius float32
	power  float32
	// half angles in radians
	coneInner float32
	coneOuter float32

	diffuse vec.Vec3
	ambient vec.Vec3
	cookie  int

	visDist     int
	visRange    int
	shadowDist  int
	shadowRange int
	flags       Flags

	style Style

	dirty Dirty

	fov         float32
	forward     vec.Vec3
	right       vec.Vec3
	up          vec.Vec3
	worldXf     mgl32.Mat4
	view        mgl32.Mat4
	proj        mgl32.Mat4
	projInv     mgl32.Mat4
	viewProj    mgl32.Mat4
	viewProjInv mgl32.Mat4
	worldToTex  mgl32.Mat4
	frustum     frustum.Frustum
	maxDistSqr  float32

	mins, maxs           vec.Vec3
	naiveMins, naiveMaxs vec.Vec3
	center               vec.Vec3
	leaves               []int

	meshWorld   render.Mesh
	meshVolume  render.Mesh
	meshPrepass render.Mesh

	cookieProj  cookie.Projection
	cookieIndex int
}

// New returns a light with default values. It panics if t is not a known
// light type.
func New(t Type) *Light {
	if !t.valid() {
		panic(fmt.Sprintf("light: unknown light type %d", int(t)))
	}
	id := uuid.Must(uuid.NewV7())
	l := &Light{
		id:          id,
		typ:         t,
		radius:      DefaultRadius,
		power:       DefaultPower,
		coneInner:   math.Deg2Rad(DefaultConeInner),
		coneOuter:   math.Deg2Rad(DefaultConeOuter),
		diffuse:     vec.Vec3{1, 1, 1},
		visDist:     DefaultVisDist,
		visRange:    DefaultVisRange,
		shadowDist:  DefaultShadowDist,
		shadowRange: DefaultShadowRange,
		flags:       FlagEnabled,
		dirty:       DirtyAll,
		fov:         90,
		worldXf:     mgl32.Ident4(),
	}
	l.style.Seed = newSeed()
	return l
}

var (
	seedMu sync.Mutex
	seeds  = rand.New(1)
)

// SeedStyles restarts the generator handing out style seeds to new lights.
func SeedStyles(s uint32) {
	seedMu.Lock()
	defer seedMu.Unlock()
	seeds.NewSeed(s)
}

func newSeed() int {
	seedMu.Lock()
	defer seedMu.Unlock()
	return seeds.Intn(SeedMax + 1)
}

// NewWorld returns a light that belongs to the level.
func NewWorld(t Type) *Light {
	l := New(t)
	l.world = true
	return l
}

func (l *Light) ID() uuid.UUID        { return l.id }
func (l *Light) Type() Type           { return l.typ }
func (l *Light) IsWorld() bool        { return l.world }
func (l *Light) Origin() vec.Vec3     { return l.origin }
func (l *Light) Angles() vec.Vec3     { return l.angles }
func (l *Light) Radius() float32      { return l.radius }
func (l *Light) Power() float32       { return l.power }
func (l *Light) Diffuse() vec.Vec3    { return l.diffuse }
func (l *Light) Ambient() vec.Vec3    { return l.ambient }
func (l *Light) CookieIndex() int     { return l.cookie }
func (l *Light) Flags() Flags         { return l.flags }
func (l *Light) Style() Style         { return l.style }
func (l *Light) Dirty() Dirty         { return l.dirty }
func (l *Light) IsDirty(d Dirty) bool { return l.dirty&d != 0 }

// SpotCone returns the inner and outer half angles in radians.
func (l *Light) SpotCone() (inner, outer float32) {
	return l.coneInner, l.coneOuter
}

func (l *Light) Visibility() (dist, fadeRange int) {
	return l.visDist, l.visRange
}

func (l *Light) ShadowDistance() (dist, fadeRange int) {
	return l.shadowDist, l.shadowRange
}

func (l *Light) Enabled() bool        { return l.flags&FlagEnabled != 0 }
func (l *Light) CastsShadow() bool    { return l.flags&FlagShadow != 0 }
func (l *Light) HasVolumetrics() bool { return l.flags&FlagVolumetrics != 0 }

// SetType changes the light type. It panics on an unknown type.
func (l *Light) SetType(t Type) {
	if !t.valid() {
		panic(fmt.Sprintf("light: unknown light type %d", int(t)))
	}
	if t == l.typ {
		return
	}
	l.typ = t
	l.dirty |= dirtyGeometry
}

func (l *Light) SetWorld(w bool) {
	l.world = w
}

func (l *Light) SetOrigin(o vec.Vec3) {
	if o == l.origin {
		return
	}
	l.origin = o
	l.dirty |= DirtyTransforms | DirtyBounds | DirtyLeaves
}

func (l *Light) SetAngles(a vec.Vec3) {
	if a == l.angles {
		return
	}
	l.angles = a
	l.dirty |= DirtyTransforms | DirtyBounds | DirtyLeaves
}

func (l *Light) SetRadius(r float32) {
	if r < 0 {
		r = 0
	}
	if r == l.radius {
		return
	}
	l.radius = r
	l.dirty |= dirtyGeometry
}

func (l *Light) SetPower(p float32) {
	l.power = p
}

// SetSpotCone sets the inner and outer half angles in radians.
func (l *Light) SetSpotCone(inner, outer float32) {
	if inner > outer {
		inner = outer
	}
	if inner == l.coneInner && outer == l.coneOuter {
		return
	}
	l.coneInner = inner
	l.coneOuter = outer
	if l.typ == Spot {
		l.dirty |= dirtyGeometry
	}
}

func (l *Light) SetDiffuse(c vec.Vec3) { l.diffuse = c }
func (l *Light) SetAmbient(c vec.Vec3) { l.ambient = c }

// SetCookieIndex sets the index into the cookie table. 0 removes the cookie.
func (l *Light) SetCookieIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i == l.cookie {
		return
	}
	l.cookie = i
	l.dirty |= DirtyCookie
}

func (l *Light) SetVisibility(dist, fadeRange int) {
	l.visDist = dist
	l.visRange = fadeRange
	l.dirty |= DirtyTransforms
}

func (l *Light) SetShadowDistance(dist, fadeRange int) {
	l.shadowDist = dist
	l.shadowRange = fadeRange
}

func (l *Light) SetFlags(f Flags) {
	if (f^l.flags)&FlagVolumetrics != 0 {
		l.dirty |= DirtyVolumetrics
	}
	l.flags = f
}

func (l *Light) SetStyle(s Style) {
	s.Seed = math.Clamp(0, s.Seed, SeedMax)
	l.style = s
}

// MarkDirty forces d to be recomputed on the next update.
func (l *Light) MarkDirty(d Dirty) {
	l.dirty |= d
}
