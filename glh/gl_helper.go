// SPDX-License-Identifier: GPL-2.0-or-later

package glh

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/mainthread/v2"
)

const (
	ArrayBuffer        = gl.ARRAY_BUFFER
	ElementArrayBuffer = gl.ELEMENT_ARRAY_BUFFER
)

type Program struct {
	prog     uint32
	uniforms map[string]int32
}

func NewProgram(vertex, fragment string) (*Program, error) {
	p := &Program{
		prog: gl.CreateProgram(),
	}
	vert, err := GetShader(vertex, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	frag, err := GetShader(fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	gl.AttachShader(p.prog, vert)
	gl.AttachShader(p.prog, frag)
	gl.LinkProgram(p.prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	runtime.AddCleanup(p, deleteProgram, p.prog)
	var status int32
	gl.GetProgramiv(p.prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.prog, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p.prog, logLength, nil, gl.Str(log))
		return nil, fmt.Errorf("Failed to link program: %v", log)
	}
	p.uniforms = make(map[string]int32)
	return p, nil
}

func deleteProgram(p uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteProgram(p)
	})
}

func (p *Program) Use() {
	gl.UseProgram(p.prog)
}

func (p *Program) GetAttribLocation(n string) uint32 {
	return uint32(gl.GetAttribLocation(p.prog, gl.Str(n+"\x00")))
}

func (p *Program) GetUniformLocation(n string) int32 {
	if l, ok := p.uniforms[n]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.prog, gl.Str(n+"\x00"))
	p.uniforms[n] = l
	return l
}

// Uniform setters ignore names the linker optimized away.

func (p *Program) SetInt(n string, v int32) {
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.Uniform1i(l, v)
	}
}

func (p *Program) SetFloat(n string, v float32) {
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.Uniform1f(l, v)
	}
}

func (p *Program) SetVec3(n string, v [3]float32) {
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.Uniform3f(l, v[0], v[1], v[2])
	}
}

func (p *Program) SetVec4(n string, v mgl32.Vec4) {
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.Uniform4fv(l, 1, &v[0])
	}
}

func (p *Program) SetIVec4(n string, v [4]int32) {
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.Uniform4iv(l, 1, &v[0])
	}
}

func (p *Program) SetVec4Array(n string, vs []mgl32.Vec4) {
	if len(vs) == 0 {
		return
	}
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.Uniform4fv(l, int32(len(vs)), &vs[0][0])
	}
}

// SetMat4 sets a column major matrix.
func (p *Program) SetMat4(n string, m mgl32.Mat4) {
	if l := p.GetUniformLocation(n); l >= 0 {
		gl.UniformMatrix4fv(l, 1, false, &m[0])
	}
}

type Buffer struct {
	buf    uint32
	target uint32
}

func NewBuffer(target uint32) *Buffer {
	b := &Buffer{
		target: target,
	}
	gl.GenBuffers(1, &b.buf)
	runtime.AddCleanup(b, deleteBuffer, b.buf)
	return b
}

func deleteBuffer(buf uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteBuffers(1, &buf)
	})
}

func (b *Buffer) Bind() {
	gl.BindBuffer(b.target, b.buf)
}

// SetData sets the data for this buffer. It needs to be bound first.
func (b *Buffer) SetData(size int, data unsafe.Pointer) {
	// It would be nice to just call b.Bind() first.
	// But even in the effective noop case this is not free.
	gl.BufferData(b.target, size, data, gl.STATIC_DRAW)
}

// SetDynamicData is SetData for buffers rewritten every frame.
func (b *Buffer) SetDynamicData(size int, data unsafe.Pointer) {
	gl.BufferData(b.target, size, data, gl.STREAM_DRAW)
}

func Ptr(data interface{}) unsafe.Pointer {
	return gl.Ptr(data)
}

type VertexArray struct {
	a uint32
}

func NewVertexArray() *VertexArray {
	va := &VertexArray{}
	gl.GenVertexArrays(1, &va.a)
	runtime.AddCleanup(va, deleteVertexArray, va.a)
	return va
}

func deleteVertexArray(va uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteVertexArrays(1, &va)
	})
}

func (va *VertexArray) Bind() {
	gl.BindVertexArray(va.a)
}

func GetShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(src)
	defer free()
	length := int32(len(src))
	gl.ShaderSource(shader, 1, csource, &length)
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("Failed to compile shader: %v", log)
	}
	return shader, nil
}
