// SPDX-License-Identifier: GPL-2.0-or-later
package glh

import (
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/gopxl/mainthread/v2"

	"deflight/render"
)

type TexID uint32

type Texture2D struct {
	id            uint32
	width, height int32
	format        render.Format
}

func (t *Texture2D) ID() TexID {
	return TexID(t.id)
}

func deleteTexture(id uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteTextures(1, &id)
	})
}

func internalFormat(f render.Format) uint32 {
	switch f {
	case render.FormatRGBA16F:
		return gl.RGBA16F
	case render.FormatR32F:
		return gl.R32F
	case render.FormatDepth24:
		return gl.DEPTH_COMPONENT24
	}
	return gl.RGBA8
}

// NewTexture2D allocates immutable storage of the given size and format.
func NewTexture2D(width, height int, f render.Format) *Texture2D {
	t := &Texture2D{width: int32(width), height: int32(height), format: f}
	gl.CreateTextures(gl.TEXTURE_2D, 1, &t.id)
	gl.TextureStorage2D(t.id, 1, internalFormat(f), t.width, t.height)
	gl.TextureParameteri(t.id, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TextureParameteri(t.id, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TextureParameteri(t.id, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TextureParameteri(t.id, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	runtime.AddCleanup(t, deleteTexture, t.id)
	return t
}

// Upload replaces the pixels of an rgba8 texture.
func (t *Texture2D) Upload(rgba []byte) {
	gl.TextureSubImage2D(t.id, 0, 0, 0, t.width, t.height, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba[0]))
}

func (t *Texture2D) BindUnit(unit uint32) {
	gl.BindTextureUnit(unit, t.id)
}

type Framebuffer struct {
	fbo uint32
}

func deleteFramebuffer(fbo uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteFramebuffers(1, &fbo)
	})
}

// NewFramebuffer attaches color and depth. Either may be nil.
func NewFramebuffer(color, depth *Texture2D) *Framebuffer {
	f := &Framebuffer{}
	gl.CreateFramebuffers(1, &f.fbo)
	if color != nil {
		gl.NamedFramebufferTexture(f.fbo, gl.COLOR_ATTACHMENT0, color.id, 0)
	} else {
		gl.NamedFramebufferDrawBuffer(f.fbo, gl.NONE)
	}
	if depth != nil {
		gl.NamedFramebufferTexture(f.fbo, gl.DEPTH_ATTACHMENT, depth.id, 0)
	}
	runtime.AddCleanup(f, deleteFramebuffer, f.fbo)
	return f
}

func (f *Framebuffer) Complete() bool {
	return gl.CheckNamedFramebufferStatus(f.fbo, gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (f *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
}
