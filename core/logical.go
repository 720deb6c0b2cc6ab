// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
	"github.com/sirupsen/logrus"
)

// DeviceCreateInfo asks for one queue of the graphics family at the highest
// priority and no optional features. Layers repeat the instance layers
// for drivers that still look at device layers.
func DeviceCreateInfo(c *Candidate, layers []string) *device.DeviceCreateInfo {
	return &device.DeviceCreateInfo{
		Queues: []device.QueueCreateInfo{{
			FamilyIndex: c.Queues.GraphicsFamily,
			Priorities:  device.DefaultQueuePriorities(),
		}},
		Layers: append([]string{}, layers...),
	}
}

// CreateLogicalDevice creates the logical device for c and returns it
// along with queue 0 of the graphics family.
func CreateLogicalDevice(c *Candidate, layers []string, log logrus.FieldLogger) (device.LogicalDevice, device.Queue, error) {
	if !c.Queues.Found {
		return nil, nil, errors.AssertionFailedf("device %q has no graphics queue family", c.Properties.Name)
	}

	ld, err := c.Device.CreateDevice(DeviceCreateInfo(c, layers))
	if err != nil {
		return nil, nil, creationFailure(err, "failed to create logical device")
	}

	queue := ld.Queue(c.Queues.GraphicsFamily, 0)
	log.WithFields(logrus.Fields{
		"device": c.Properties.Name,
		"family": c.Queues.GraphicsFamily,
	}).Info("logical device created")
	return ld, queue, nil
}
