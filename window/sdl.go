// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/core"
	"github.com/veandco/go-sdl2/sdl"
)

type sdlWindow struct {
	window *sdl.Window
	closed bool
}

func newSDL(cfg core.WindowConfiguration) (Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl.Init()")
	}

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &sdlWindow{window: window}, nil
}

func (s *sdlWindow) RequiredExtensions() []string {
	return s.window.VulkanGetInstanceExtensions()
}

func (s *sdlWindow) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (s *sdlWindow) Poll() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				s.closed = true
			}
		case *sdl.QuitEvent:
			s.closed = true
		}
	}
}

func (s *sdlWindow) ShouldClose() bool {
	return s.closed
}

func (s *sdlWindow) Destroy() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
