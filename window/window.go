// SPDX-License-Identifier: GPL-2.0-or-later

// Package window opens the SDL window and GL context of the interactive
// runner. All functions must run on the main thread.
package window

import (
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	window  *sdl.Window
	context sdl.GLContext
)

func Get() *sdl.Window {
	return window
}

func Size() (int, int) {
	w, h := window.GetSize()
	return int(w), int(h)
}

func Shutdown() {
	if context != nil {
		sdl.GLDeleteContext(context)
		context = nil
	}
	if window != nil {
		window.Destroy()
		window = nil
	}
	sdl.Quit()
}

func InputFocus() bool {
	return window.GetFlags()&(sdl.WINDOW_MOUSE_FOCUS|sdl.WINDOW_INPUT_FOCUS) != 0
}

// Open creates a window with a GL 4.6 core context.
func Open(title string, width, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl init")
	}
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 6)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 8)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_HIDDEN)
	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, width, height, flags)
	if err != nil {
		sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 0)
		w, err = sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, width, height, flags)
		if err != nil {
			return errors.Wrap(err, "create window")
		}
	}
	window = w
	window.Show()

	context, err = window.GLCreateContext()
	if err != nil {
		return errors.Wrap(err, "create GL context")
	}
	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "init gl")
	}
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.DebugMessageCallback(debugCb, unsafe.Pointer(nil))
	gl.Enable(gl.DEPTH_TEST)
	return nil
}

func debugCb(
	source uint32,
	gltype uint32,
	id uint32,
	severity uint32,
	length int32,
	message string,
	userParam unsafe.Pointer) {
	if severity == gl.DEBUG_SEVERITY_HIGH {
		slog.Error("GL debug", slog.Uint64("source", uint64(source)), slog.Uint64("type", uint64(gltype)), slog.Uint64("id", uint64(id)), slog.String("msg", message))
	} else if severity == gl.DEBUG_SEVERITY_MEDIUM {
		slog.Debug("GL debug", slog.Uint64("id", uint64(id)), slog.String("msg", message))
	}
}

// PollQuit drains the event queue and reports whether the user asked to
// quit.
func PollQuit() bool {
	quit := false
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
			}
		}
	}
	return quit
}

func EndRendering() {
	window.GLSwap()
}
