// SPDX-License-Identifier: GPL-2.0-or-later

package render

type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatR32F
	FormatDepth24
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA16F:
		return "rgba16f"
	case FormatR32F:
		return "r32f"
	case FormatDepth24:
		return "depth24"
	}
	return "unknown"
}

// Texture describes a texture owned by the device. ID is backend specific.
type Texture struct {
	Name   string
	Width  int
	Height int
	Format Format
	ID     uint32
}

type Viewport struct {
	X, Y          int
	Width, Height int
}

// FullViewport covers the whole of t.
func FullViewport(t *Texture) Viewport {
	if t == nil {
		return Viewport{}
	}
	return Viewport{Width: t.Width, Height: t.Height}
}

// Target is what draws go to. A nil Color with a Depth texture is a depth
// only target.
type Target struct {
	Color    *Texture
	Depth    *Texture
	Viewport Viewport
}

// NewTarget returns a target covering all of color.
func NewTarget(color, depth *Texture) Target {
	vp := FullViewport(color)
	if color == nil {
		vp = FullViewport(depth)
	}
	return Target{Color: color, Depth: depth, Viewport: vp}
}

func (t Target) Name() string {
	switch {
	case t.Color != nil:
		return t.Color.Name
	case t.Depth != nil:
		return t.Depth.Name
	}
	return "backbuffer"
}

// Allocator provides named textures.
type Allocator interface {
	CreateRenderTarget(name string, width, height int, f Format) (*Texture, error)
	FindTexture(name string) (*Texture, bool)
}
