// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	window *glfw.Window
}

func newGLFW(cfg core.WindowConfiguration) (Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw.Init()")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw.VulkanSupported(): no Vulkan loader found")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "glfw.CreateWindow()")
	}
	return &glfwWindow{window: window}, nil
}

func (g *glfwWindow) RequiredExtensions() []string {
	return g.window.GetRequiredInstanceExtensions()
}

func (g *glfwWindow) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (g *glfwWindow) Poll() {
	glfw.PollEvents()
}

func (g *glfwWindow) ShouldClose() bool {
	return g.window.ShouldClose()
}

func (g *glfwWindow) Destroy() {
	if g.window != nil {
		g.window.Destroy()
		g.window = nil
	}
	glfw.Terminate()
}
