// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package capture records what a driver reports about a machine, stores
// those records in an archive and plays them back as a device.Driver,
// so device negotiation can be examined away from the machine it ran on.
package capture

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/core"
	"github.com/devblok/vkinit/device"
	"github.com/google/uuid"
)

// Snapshot is everything the negotiation looks at, as reported by one driver.
type Snapshot struct {
	ID         string
	Label      string
	Taken      int64
	Extensions []device.ExtensionProperties
	Layers     []device.LayerProperties
	Devices    []DeviceSnapshot
}

// DeviceSnapshot is a physical device as reported by the driver.
type DeviceSnapshot struct {
	Properties    device.Properties
	Features      device.Features
	QueueFamilies []device.QueueFamilyProperties
}

// Take snapshots drv, and the physical devices of instance.
func Take(drv device.Driver, instance device.Instance, label string) (*Snapshot, error) {
	s := &Snapshot{
		ID:    uuid.New().String(),
		Label: label,
		Taken: time.Now().Unix(),
	}

	var err error
	if s.Extensions, err = core.Enumerate[device.ExtensionProperties](drv.InstanceExtensions); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	if s.Layers, err = core.Enumerate[device.LayerProperties](drv.InstanceLayers); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}

	devices, err := core.Enumerate[device.PhysicalDevice](instance.PhysicalDevices)
	if err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	for _, pd := range devices {
		families, _, err := core.FindQueueFamilies(pd)
		if err != nil {
			return nil, err
		}
		s.Devices = append(s.Devices, DeviceSnapshot{
			Properties:    pd.Properties(),
			Features:      pd.Features(),
			QueueFamilies: families,
		})
	}
	return s, nil
}
