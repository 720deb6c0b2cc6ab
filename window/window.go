// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window provides the windowing collaborator: it tells the startup
// which instance extensions presentation needs, hands out the loader entry
// point and drives the event loop. It must be used from the main thread.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/core"
)

// Window is a native window the driver can present to
type Window interface {
	// RequiredExtensions lists the instance extensions needed to present
	RequiredExtensions() []string

	// ProcAddr returns vkGetInstanceProcAddr as loaded by the windowing library
	ProcAddr() unsafe.Pointer

	// Poll processes pending events
	Poll()

	// ShouldClose tells whether the user asked to close the window
	ShouldClose() bool

	// Destroy closes the window and shuts the library down
	Destroy()
}

// New creates a window with the configured backend
func New(cfg core.WindowConfiguration) (Window, error) {
	switch cfg.Backend {
	case core.WindowSDL, "":
		return newSDL(cfg)
	case core.WindowGLFW:
		return newGLFW(cfg)
	}
	return nil, errors.Newf("unknown window backend %q", cfg.Backend)
}
