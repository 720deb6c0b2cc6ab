// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
)

// Configuration defines a global startup configuration
type Configuration struct {
	Application ApplicationConfiguration
	Diagnostics DiagnosticsConfiguration
	Selection   SelectionConfiguration
	Time        TimeConfiguration
	Window      WindowConfiguration
}

// ApplicationConfiguration is the metadata handed to the driver on instance creation
type ApplicationConfiguration struct {
	Name          string
	Version       device.Version
	EngineName    string
	EngineVersion device.Version
	APIVersion    device.Version
}

// DiagnosticsConfiguration is used to configure validation and the debug messenger
type DiagnosticsConfiguration struct {
	// Enabled requests validation layers and the debug messenger.
	// Defaults to DiagnosticsEnabled, which is fixed at build time.
	Enabled bool

	// Layers are the validation layers to request
	Layers []string

	// Severities and Categories filter driver messages,
	// zero means everything.
	Severities device.Severity
	Categories device.Category

	// RequireMessenger makes a missing messenger entry point fatal.
	// When false, startup continues without a diagnostic channel.
	RequireMessenger bool
}

// SelectionConfiguration is used to configure physical device selection
type SelectionConfiguration struct {
	// RequiredFeatures disqualifies devices lacking any of these,
	// names are from device.FeatureNames
	RequiredFeatures []string

	// DiscreteBonus is added to the score of discrete GPUs
	DiscreteBonus float64
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// PollsPerSecond caps how often window events are polled
	// To unlimit, set to 0
	PollsPerSecond int
}

// WindowConfiguration is used to configure the windowing collaborator
type WindowConfiguration struct {
	Backend string
	Title   string
	Width   int
	Height  int
}

// Window backends
const (
	WindowSDL  = "sdl"
	WindowGLFW = "glfw"
)

// DefaultConfiguration returns the configuration used when nothing is overridden.
func DefaultConfiguration() Configuration {
	return Configuration{
		Application: ApplicationConfiguration{
			Name:          "Hello Triangle",
			Version:       device.MakeVersion(1, 0, 0),
			EngineName:    "No Engine",
			EngineVersion: device.MakeVersion(1, 0, 0),
			APIVersion:    device.APIVersion10,
		},
		Diagnostics: DiagnosticsConfiguration{
			Enabled:          DiagnosticsEnabled,
			Layers:           []string{device.KhronosValidationLayer},
			Severities:       device.SeverityAll,
			Categories:       device.CategoryAll,
			RequireMessenger: true,
		},
		Time: TimeConfiguration{
			PollsPerSecond: 60,
		},
		Window: WindowConfiguration{
			Backend: WindowSDL,
			Title:   "Vulkan",
			Width:   800,
			Height:  600,
		},
	}
}

// Environment variables read by LoadEnvironment
const (
	EnvAppName          = "VKINIT_APP_NAME"
	EnvEngineName       = "VKINIT_ENGINE_NAME"
	EnvWindow           = "VKINIT_WINDOW"
	EnvWidth            = "VKINIT_WIDTH"
	EnvHeight           = "VKINIT_HEIGHT"
	EnvDiscreteBonus    = "VKINIT_DISCRETE_BONUS"
	EnvRequireFeatures  = "VKINIT_REQUIRE_FEATURES"
	EnvRequireMessenger = "VKINIT_REQUIRE_MESSENGER"
)

// LoadEnvironmentFiles reads dotenv files into the environment,
// variables that are already set win over the files.
func LoadEnvironmentFiles(files ...string) error {
	values, err := godotenv.Read(files...)
	if err != nil {
		return errors.Wrap(err, "godotenv.Read()")
	}
	current := envy.Map()
	for k, v := range values {
		if _, set := current[k]; !set {
			envy.Set(k, v)
		}
	}
	return nil
}

// LoadEnvironment overrides cfg from the environment. Diagnostics can
// not be switched on or off here, only the policy for a missing messenger.
func LoadEnvironment(cfg *Configuration) error {
	cfg.Application.Name = envy.Get(EnvAppName, cfg.Application.Name)
	cfg.Application.EngineName = envy.Get(EnvEngineName, cfg.Application.EngineName)

	switch backend := envy.Get(EnvWindow, cfg.Window.Backend); backend {
	case WindowSDL, WindowGLFW:
		cfg.Window.Backend = backend
	default:
		return configurationErrorf("%s: unknown window backend %q", EnvWindow, backend)
	}

	for key, dst := range map[string]*int{EnvWidth: &cfg.Window.Width, EnvHeight: &cfg.Window.Height} {
		if v := envy.Get(key, ""); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return configurationErrorf("%s: want a positive integer, got %q", key, v)
			}
			*dst = n
		}
	}

	if v := envy.Get(EnvDiscreteBonus, ""); v != "" {
		bonus, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return configurationErrorf("%s: %s", EnvDiscreteBonus, err)
		}
		cfg.Selection.DiscreteBonus = bonus
	}

	if v := envy.Get(EnvRequireFeatures, ""); v != "" {
		cfg.Selection.RequiredFeatures = nil
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Selection.RequiredFeatures = append(cfg.Selection.RequiredFeatures, f)
			}
		}
	}

	if v := envy.Get(EnvRequireMessenger, ""); v != "" {
		require, err := strconv.ParseBool(v)
		if err != nil {
			return configurationErrorf("%s: %s", EnvRequireMessenger, err)
		}
		cfg.Diagnostics.RequireMessenger = require
	}
	return nil
}
