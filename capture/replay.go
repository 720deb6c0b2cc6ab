// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
)

// Errors reported by the replay driver, named after the results a real driver returns
var (
	ErrExtensionNotPresent = errors.New("VK_ERROR_EXTENSION_NOT_PRESENT")
	ErrLayerNotPresent     = errors.New("VK_ERROR_LAYER_NOT_PRESENT")
	ErrLiveChildren        = errors.New("destroyed while objects created from it are alive")
)

// NewReplayDriver serves s as if it were a driver. Creation calls succeed
// with inert handles, as long as what they ask for is in the snapshot.
func NewReplayDriver(s *Snapshot) device.Driver {
	return &replayDriver{snapshot: s}
}

func fill[T any](src []T, count *uint32, out []T) error {
	if len(out) == 0 {
		*count = uint32(len(src))
		return nil
	}
	n := copy(out, src)
	*count = uint32(n)
	if n < len(src) {
		return device.ErrIncomplete
	}
	return nil
}

type replayDriver struct {
	snapshot *Snapshot
}

func (r *replayDriver) InstanceExtensions(count *uint32, out []device.ExtensionProperties) error {
	return fill(r.snapshot.Extensions, count, out)
}

func (r *replayDriver) InstanceLayers(count *uint32, out []device.LayerProperties) error {
	return fill(r.snapshot.Layers, count, out)
}

func (r *replayDriver) CreateInstance(info *device.InstanceCreateInfo) (device.Instance, error) {
	for _, name := range info.Extensions {
		if !r.hasExtension(name) {
			return nil, errors.Wrap(ErrExtensionNotPresent, name)
		}
	}
	for _, name := range info.Layers {
		if !r.hasLayer(name) {
			return nil, errors.Wrap(ErrLayerNotPresent, name)
		}
	}

	inst := &replayInstance{procs: map[string]interface{}{}}
	for _, d := range r.snapshot.Devices {
		inst.devices = append(inst.devices, &replayPhysicalDevice{instance: inst, snapshot: d})
	}
	for _, name := range info.Extensions {
		if name == device.DebugExtensionName {
			inst.procs[device.ProcCreateMessenger] = device.CreateMessengerFunc(inst.createMessenger)
			inst.procs[device.ProcDestroyMessenger] = device.DestroyMessengerFunc(inst.destroyMessenger)
		}
	}
	return inst, nil
}

func (r *replayDriver) hasExtension(name string) bool {
	for _, ext := range r.snapshot.Extensions {
		if ext.Name == name {
			return true
		}
	}
	return false
}

func (r *replayDriver) hasLayer(name string) bool {
	for _, layer := range r.snapshot.Layers {
		if layer.Name == name {
			return true
		}
	}
	return false
}

type replayInstance struct {
	devices   []device.PhysicalDevice
	procs     map[string]interface{}
	children  int
	destroyed bool
}

func (i *replayInstance) PhysicalDevices(count *uint32, out []device.PhysicalDevice) error {
	return fill(i.devices, count, out)
}

func (i *replayInstance) ProcAddr(name string) (interface{}, bool) {
	proc, ok := i.procs[name]
	return proc, ok
}

func (i *replayInstance) Inner() interface{} {
	return nil
}

func (i *replayInstance) Destroy() error {
	if i.destroyed {
		return nil
	}
	i.destroyed = true
	if i.children > 0 {
		return errors.Wrapf(ErrLiveChildren, "instance has %d", i.children)
	}
	return nil
}

type replayMessenger struct {
	info device.MessengerCreateInfo
}

func (m *replayMessenger) Inner() interface{} {
	return nil
}

func (i *replayInstance) createMessenger(info *device.MessengerCreateInfo) (device.Messenger, error) {
	i.children++
	return &replayMessenger{info: *info}, nil
}

func (i *replayInstance) destroyMessenger(m device.Messenger) error {
	if _, ok := m.(*replayMessenger); !ok {
		return errors.Newf("foreign messenger %T", m)
	}
	i.children--
	return nil
}

type replayPhysicalDevice struct {
	instance *replayInstance
	snapshot DeviceSnapshot
}

func (d *replayPhysicalDevice) Properties() device.Properties {
	return d.snapshot.Properties
}

func (d *replayPhysicalDevice) Features() device.Features {
	return d.snapshot.Features
}

func (d *replayPhysicalDevice) QueueFamilies(count *uint32, out []device.QueueFamilyProperties) error {
	return fill(d.snapshot.QueueFamilies, count, out)
}

func (d *replayPhysicalDevice) CreateDevice(info *device.DeviceCreateInfo) (device.LogicalDevice, error) {
	for _, q := range info.Queues {
		if int(q.FamilyIndex) >= len(d.snapshot.QueueFamilies) {
			return nil, errors.Newf("queue family %d out of range", q.FamilyIndex)
		}
		if uint32(len(q.Priorities)) > d.snapshot.QueueFamilies[q.FamilyIndex].QueueCount {
			return nil, errors.Newf("queue family %d has %d queues, %d requested",
				q.FamilyIndex, d.snapshot.QueueFamilies[q.FamilyIndex].QueueCount, len(q.Priorities))
		}
	}
	d.instance.children++
	return &replayDevice{instance: d.instance}, nil
}

type replayDevice struct {
	instance  *replayInstance
	destroyed bool
}

func (d *replayDevice) Queue(family, index uint32) device.Queue {
	return replayQueue{family: family, index: index}
}

func (d *replayDevice) Inner() interface{} {
	return nil
}

func (d *replayDevice) Destroy() error {
	if !d.destroyed {
		d.destroyed = true
		d.instance.children--
	}
	return nil
}

type replayQueue struct {
	family, index uint32
}

func (q replayQueue) Family() uint32     { return q.family }
func (q replayQueue) Index() uint32      { return q.index }
func (q replayQueue) Inner() interface{} { return nil }
