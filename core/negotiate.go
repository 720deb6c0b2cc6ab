// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
	"github.com/sirupsen/logrus"
)

// CapabilityName is an extension or layer name as the driver spells it
type CapabilityName = string

// CapabilitySet is a set of extension or layer names.
// Membership is exact string equality, nothing else.
type CapabilitySet map[CapabilityName]struct{}

// NewCapabilitySet creates a set holding names
func NewCapabilitySet(names ...string) CapabilitySet {
	set := make(CapabilitySet, len(names))
	for _, n := range names {
		set.Add(n)
	}
	return set
}

// Add inserts name
func (s CapabilitySet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set
func (s CapabilitySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len is the number of names in the set
func (s CapabilitySet) Len() int {
	return len(s)
}

// Names returns the sorted contents of the set
func (s CapabilitySet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Availability is the outcome of checking requested names against what the driver has.
type Availability struct {
	Present []string
	Missing []string
}

// All tells whether every requested name is present
func (a Availability) All() bool {
	return len(a.Missing) == 0
}

// CheckAvailability sorts requested into present and missing, logging each name.
func CheckAvailability(kind string, requested []string, available CapabilitySet, log logrus.FieldLogger) Availability {
	var a Availability
	for _, name := range requested {
		entry := log.WithFields(logrus.Fields{"kind": kind, "name": name})
		if available.Has(name) {
			a.Present = append(a.Present, name)
			entry.Info("present")
		} else {
			a.Missing = append(a.Missing, name)
			entry.Warn("not available")
		}
	}
	return a
}

// CheckExtensions checks the requested instance extensions against what the driver has.
func CheckExtensions(requested []string, available CapabilitySet, log logrus.FieldLogger) Availability {
	return CheckAvailability("extension", requested, available, log)
}

// CheckLayers checks the requested validation layers, All on the
// result tells whether every one of them is there.
func CheckLayers(requested []string, available CapabilitySet, log logrus.FieldLogger) Availability {
	return CheckAvailability("layer", requested, available, log)
}

// RequiredExtensions is the window's extensions plus, when diagnostics are
// requested, the debug extension. Order is kept, duplicates are dropped.
func RequiredExtensions(window []string, diagnostics bool) []string {
	names := append([]string{}, window...)
	if diagnostics {
		names = append(names, device.DebugExtensionName)
	}
	seen := make(CapabilitySet, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen.Has(n) {
			seen.Add(n)
			out = append(out, n)
		}
	}
	return out
}

// Negotiation is the extension and layer set to create the instance with.
type Negotiation struct {
	Extensions []string
	Layers     []string

	AvailableExtensions CapabilitySet
	AvailableLayers     CapabilitySet
}

// Messenger reports whether the debug extension made it into the request.
func (n *Negotiation) Messenger() bool {
	return NewCapabilitySet(n.Extensions...).Has(device.DebugExtensionName)
}

// Negotiate works out the extensions and layers to request and makes sure
// the driver has every one of them. Anything missing is a configuration error,
// except the debug extension when cfg.RequireMessenger is off: it is then
// left out and diagnostics run on the layers alone.
func Negotiate(drv device.Driver, windowExtensions []string, cfg DiagnosticsConfiguration, log logrus.FieldLogger) (*Negotiation, error) {
	extensions, err := Enumerate[device.ExtensionProperties](drv.InstanceExtensions)
	if err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}

	n := &Negotiation{
		AvailableExtensions: make(CapabilitySet, len(extensions)),
		AvailableLayers:     CapabilitySet{},
	}
	for _, ext := range extensions {
		n.AvailableExtensions.Add(ext.Name)
		log.WithField("extension", ext.Name).Debug("available")
	}

	messenger := cfg.Enabled
	if messenger && !cfg.RequireMessenger && !n.AvailableExtensions.Has(device.DebugExtensionName) {
		log.WithField("extension", device.DebugExtensionName).Warn("not available, continuing without a debug messenger")
		messenger = false
	}

	n.Extensions = RequiredExtensions(windowExtensions, messenger)
	if a := CheckExtensions(n.Extensions, n.AvailableExtensions, log); !a.All() {
		return nil, configurationErrorf("extensions requested, but not available: %s", strings.Join(a.Missing, ", "))
	}

	if !cfg.Enabled {
		return n, nil
	}

	layers, err := Enumerate[device.LayerProperties](drv.InstanceLayers)
	if err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	for _, layer := range layers {
		n.AvailableLayers.Add(layer.Name)
		log.WithField("layer", layer.Name).Debug("available")
	}

	if a := CheckLayers(cfg.Layers, n.AvailableLayers, log); !a.All() {
		return nil, configurationErrorf("validation layers requested, but not available: %s", strings.Join(a.Missing, ", "))
	}
	n.Layers = append([]string{}, cfg.Layers...)
	return n, nil
}
