// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"

	"github.com/devblok/vkinit/core"
	"github.com/devblok/vkinit/device"
)

func TestDefaultConfiguration(t *testing.T) {
	c := qt.New(t)
	cfg := core.DefaultConfiguration()

	c.Assert(cfg.Application.Name, qt.Equals, "Hello Triangle")
	c.Assert(cfg.Application.APIVersion, qt.Equals, device.APIVersion10)
	c.Assert(cfg.Diagnostics.Enabled, qt.Equals, core.DiagnosticsEnabled)
	c.Assert(cfg.Diagnostics.Layers, qt.DeepEquals, []string{device.KhronosValidationLayer})
	c.Assert(cfg.Diagnostics.RequireMessenger, qt.IsTrue)
	c.Assert(cfg.Window, qt.Equals, core.WindowConfiguration{
		Backend: core.WindowSDL,
		Title:   "Vulkan",
		Width:   800,
		Height:  600,
	})
}

func TestLoadEnvironment(t *testing.T) {
	c := qt.New(t)
	envy.Temp(func() {
		envy.Set(core.EnvAppName, "Triangle Test")
		envy.Set(core.EnvWindow, core.WindowGLFW)
		envy.Set(core.EnvWidth, "1280")
		envy.Set(core.EnvDiscreteBonus, "500")
		envy.Set(core.EnvRequireFeatures, "geometryShader, samplerAnisotropy,")
		envy.Set(core.EnvRequireMessenger, "false")

		cfg := core.DefaultConfiguration()
		enabled := cfg.Diagnostics.Enabled
		c.Assert(core.LoadEnvironment(&cfg), qt.IsNil)

		c.Assert(cfg.Application.Name, qt.Equals, "Triangle Test")
		c.Assert(cfg.Application.EngineName, qt.Equals, "No Engine")
		c.Assert(cfg.Window.Backend, qt.Equals, core.WindowGLFW)
		c.Assert(cfg.Window.Width, qt.Equals, 1280)
		c.Assert(cfg.Window.Height, qt.Equals, 600)
		c.Assert(cfg.Selection.DiscreteBonus, qt.Equals, float64(500))
		c.Assert(cfg.Selection.RequiredFeatures, qt.DeepEquals, []string{"geometryShader", "samplerAnisotropy"})
		c.Assert(cfg.Diagnostics.RequireMessenger, qt.IsFalse)
		c.Assert(cfg.Diagnostics.Enabled, qt.Equals, enabled)
	})
}

func TestLoadEnvironmentRejects(t *testing.T) {
	c := qt.New(t)
	for key, value := range map[string]string{
		core.EnvWindow:           "wayland",
		core.EnvHeight:           "-1",
		core.EnvWidth:            "wide",
		core.EnvDiscreteBonus:    "lots",
		core.EnvRequireMessenger: "maybe",
	} {
		envy.Temp(func() {
			envy.Set(key, value)
			cfg := core.DefaultConfiguration()
			err := core.LoadEnvironment(&cfg)
			c.Assert(err, qt.ErrorIs, core.ErrConfiguration, qt.Commentf("%s=%s", key, value))
			c.Assert(err, qt.ErrorMatches, key+": .*")
		})
	}
}

func TestLoadEnvironmentFiles(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), ".env")
	err := os.WriteFile(path, []byte("VKINIT_APP_NAME=From File\nVKINIT_WIDTH=1024\n"), 0o644)
	c.Assert(err, qt.IsNil)

	envy.Temp(func() {
		envy.Set(core.EnvWidth, "640")
		c.Assert(core.LoadEnvironmentFiles(path), qt.IsNil)

		cfg := core.DefaultConfiguration()
		c.Assert(core.LoadEnvironment(&cfg), qt.IsNil)
		c.Assert(cfg.Application.Name, qt.Equals, "From File")
		c.Assert(cfg.Window.Width, qt.Equals, 640)
	})
}

func TestLoadEnvironmentFilesMissing(t *testing.T) {
	err := core.LoadEnvironmentFiles(filepath.Join(t.TempDir(), "absent.env"))
	qt.Assert(t, err, qt.Not(qt.IsNil))
}

func TestTime(t *testing.T) {
	c := qt.New(t)

	tm := core.NewTime(core.TimeConfiguration{PollsPerSecond: 50})
	defer tm.Stop()
	c.Assert(tm.PollsPerSecond(), qt.Equals, 50)
	c.Assert(tm.Interval(), qt.Equals, 20*time.Millisecond)
	<-tm.PollTicker().C

	unlimited := core.NewTime(core.TimeConfiguration{})
	defer unlimited.Stop()
	c.Assert(unlimited.Interval(), qt.Equals, time.Nanosecond)
}
