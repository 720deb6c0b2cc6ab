// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/vkinit/device"
	"github.com/sirupsen/logrus"
)

// InstanceCreateInfo assembles the creation request out of app metadata
// and the negotiated extensions and layers.
func InstanceCreateInfo(app ApplicationConfiguration, n *Negotiation) *device.InstanceCreateInfo {
	return &device.InstanceCreateInfo{
		ApplicationName:    app.Name,
		ApplicationVersion: app.Version,
		EngineName:         app.EngineName,
		EngineVersion:      app.EngineVersion,
		APIVersion:         app.APIVersion,
		Extensions:         append([]string{}, n.Extensions...),
		Layers:             append([]string{}, n.Layers...),
	}
}

// BuildInstance creates the root handle. There is one attempt only.
func BuildInstance(drv device.Driver, app ApplicationConfiguration, n *Negotiation, log logrus.FieldLogger) (device.Instance, error) {
	info := InstanceCreateInfo(app, n)
	instance, err := drv.CreateInstance(info)
	if err != nil {
		return nil, creationFailure(err, "instance creation failed")
	}
	log.WithFields(logrus.Fields{
		"application": info.ApplicationName,
		"api":         formatVersion(info.APIVersion),
		"extensions":  len(info.Extensions),
		"layers":      len(info.Layers),
	}).Info("instance created")
	return instance, nil
}
