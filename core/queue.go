// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
)

// QueueFamilySelection is the outcome of looking for a graphics queue family.
// GraphicsFamily is meaningful only when Found is set.
type QueueFamilySelection struct {
	Found          bool
	GraphicsFamily uint32
}

// GraphicsFamily returns the first family, in driver order, that has
// queues and supports graphics.
func GraphicsFamily(families []device.QueueFamilyProperties) QueueFamilySelection {
	for i, family := range families {
		if family.Graphics() {
			return QueueFamilySelection{Found: true, GraphicsFamily: uint32(i)}
		}
	}
	return QueueFamilySelection{}
}

// FindQueueFamilies enumerates the queue families of pd and picks the
// graphics family. Not finding one is not an error.
func FindQueueFamilies(pd device.PhysicalDevice) ([]device.QueueFamilyProperties, QueueFamilySelection, error) {
	families, err := Enumerate[device.QueueFamilyProperties](pd.QueueFamilies)
	if err != nil {
		return nil, QueueFamilySelection{}, errors.Wrap(err, "vk.GetPhysicalDeviceQueueFamilyProperties()")
	}
	return families, GraphicsFamily(families), nil
}
