// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkinit/device"
)

func TestVersion(t *testing.T) {
	c := qt.New(t)
	v := device.MakeVersion(1, 2, 189)

	c.Assert(v.Major(), qt.Equals, uint32(1))
	c.Assert(v.Minor(), qt.Equals, uint32(2))
	c.Assert(v.Patch(), qt.Equals, uint32(189))
	c.Assert(uint32(device.APIVersion10), qt.Equals, uint32(1<<22))
	c.Assert(uint32(device.APIVersion11), qt.Equals, uint32(1<<22|1<<12))
}

func TestFeaturesHas(t *testing.T) {
	c := qt.New(t)
	f := device.Features{GeometryShader: true, WideLines: true}

	for _, name := range device.FeatureNames {
		supported, known := f.Has(name)
		c.Assert(known, qt.IsTrue, qt.Commentf(name))
		c.Assert(supported, qt.Equals, name == "geometryShader" || name == "wideLines", qt.Commentf(name))
	}

	supported, known := f.Has("GeometryShader")
	c.Assert(known, qt.IsFalse)
	c.Assert(supported, qt.IsFalse)
}

func TestQueueFamilyGraphics(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.QueueFamilyProperties{Flags: device.QueueGraphics, QueueCount: 1}.Graphics(), qt.IsTrue)
	c.Assert(device.QueueFamilyProperties{Flags: device.QueueGraphics}.Graphics(), qt.IsFalse)
	c.Assert(device.QueueFamilyProperties{Flags: device.QueueCompute, QueueCount: 4}.Graphics(), qt.IsFalse)
}

func TestTypeString(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.TypeDiscreteGPU.String(), qt.Equals, "discrete")
	c.Assert(device.TypeCPU.String(), qt.Equals, "cpu")
	c.Assert(device.Type(42).String(), qt.Equals, "other")
}

func TestSeverityAndCategory(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.SeverityAll.String(), qt.Equals, "verbose|warning|error")
	c.Assert(device.SeverityWarning.String(), qt.Equals, "warning")
	c.Assert(device.Severity(0).String(), qt.Equals, "none")
	c.Assert(device.CategoryAll.String(), qt.Equals, "general|validation|performance")
	c.Assert((device.CategoryGeneral | device.CategoryPerformance).String(), qt.Equals, "general|performance")
}

func TestMessengerAccepts(t *testing.T) {
	c := qt.New(t)
	info := &device.MessengerCreateInfo{
		Severities: device.SeverityWarning | device.SeverityError,
		Categories: device.CategoryValidation,
	}

	c.Assert(info.Accepts(device.Message{Severity: device.SeverityError, Category: device.CategoryValidation}), qt.IsTrue)
	c.Assert(info.Accepts(device.Message{Severity: device.SeverityVerbose, Category: device.CategoryValidation}), qt.IsFalse)
	c.Assert(info.Accepts(device.Message{Severity: device.SeverityError, Category: device.CategoryPerformance}), qt.IsFalse)
}
