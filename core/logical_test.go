// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/vkinit/core"
	"github.com/devblok/vkinit/device"
)

func TestInstanceCreateInfo(t *testing.T) {
	c := qt.New(t)
	n := &core.Negotiation{
		Extensions: []string{"VK_KHR_surface"},
		Layers:     []string{device.KhronosValidationLayer},
	}

	info := core.InstanceCreateInfo(core.DefaultConfiguration().Application, n)
	c.Assert(info.ApplicationVersion, qt.Equals, device.MakeVersion(1, 0, 0))
	c.Assert(info.Extensions, qt.DeepEquals, n.Extensions)

	info.Extensions[0] = "changed"
	c.Assert(n.Extensions[0], qt.Equals, "VK_KHR_surface")
}

func TestCreateLogicalDeviceWithoutGraphics(t *testing.T) {
	c := qt.New(t)
	log, _ := test.NewNullLogger()

	_, _, err := core.CreateLogicalDevice(&core.Candidate{
		Properties: device.Properties{Name: "compute"},
	}, nil, log)
	c.Assert(err, qt.ErrorMatches, `device "compute" has no graphics queue family`)
}

func TestDeviceCreateInfo(t *testing.T) {
	c := qt.New(t)
	layers := []string{device.KhronosValidationLayer}

	info := core.DeviceCreateInfo(&core.Candidate{
		Queues: core.QueueFamilySelection{Found: true, GraphicsFamily: 3},
	}, layers)
	c.Assert(info.Queues, qt.HasLen, 1)
	c.Assert(info.Queues[0].FamilyIndex, qt.Equals, uint32(3))
	c.Assert(info.Queues[0].Priorities, qt.DeepEquals, []float32{1.0})
	c.Assert(info.Layers, qt.DeepEquals, layers)
}
