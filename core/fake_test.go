// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
)

// query is a scripted count-then-fill driver call.
type query[T any] struct {
	items []T
	// grow is appended once the count call has been answered
	grow  []T
	err   error
	calls int
}

func (q *query[T]) call(count *uint32, out []T) error {
	q.calls++
	if q.err != nil {
		return q.err
	}
	if len(out) == 0 {
		*count = uint32(len(q.items))
		q.items = append(q.items, q.grow...)
		q.grow = nil
		return nil
	}
	n := copy(out, q.items)
	*count = uint32(n)
	if n < len(q.items) {
		return device.ErrIncomplete
	}
	return nil
}

func extensions(names ...string) []device.ExtensionProperties {
	var out []device.ExtensionProperties
	for _, n := range names {
		out = append(out, device.ExtensionProperties{Name: n, SpecVersion: 1})
	}
	return out
}

func layers(names ...string) []device.LayerProperties {
	var out []device.LayerProperties
	for _, n := range names {
		out = append(out, device.LayerProperties{Name: n, SpecVersion: device.APIVersion10})
	}
	return out
}

type fakeDriver struct {
	extensions query[device.ExtensionProperties]
	layers     query[device.LayerProperties]
	devices    []*fakePhysicalDevice

	createErr error
	// withoutProcs hides the messenger entry points even when the
	// debug extension is enabled
	withoutProcs bool
	messengerErr error

	created  *device.InstanceCreateInfo
	instance *fakeInstance
	// destroyed records teardown, in order
	destroyed []string
	// destroyErrs fails the destruction of "device", "messenger" or "instance"
	destroyErrs map[string]error
}

func (d *fakeDriver) destroy(what string) error {
	d.destroyed = append(d.destroyed, what)
	return d.destroyErrs[what]
}

func newDriver(devices ...*fakePhysicalDevice) *fakeDriver {
	return &fakeDriver{
		extensions: query[device.ExtensionProperties]{
			items: extensions("VK_KHR_surface", "VK_KHR_xcb_surface", device.DebugExtensionName),
		},
		layers: query[device.LayerProperties]{
			items: layers(device.KhronosValidationLayer),
		},
		devices: devices,
	}
}

func (d *fakeDriver) InstanceExtensions(count *uint32, out []device.ExtensionProperties) error {
	return d.extensions.call(count, out)
}

func (d *fakeDriver) InstanceLayers(count *uint32, out []device.LayerProperties) error {
	return d.layers.call(count, out)
}

func (d *fakeDriver) CreateInstance(info *device.InstanceCreateInfo) (device.Instance, error) {
	d.created = info
	if d.createErr != nil {
		return nil, d.createErr
	}
	inst := &fakeInstance{driver: d, procs: map[string]interface{}{}}
	for _, pd := range d.devices {
		pd.driver = d
		inst.devices.items = append(inst.devices.items, pd)
	}
	for _, ext := range info.Extensions {
		if ext == device.DebugExtensionName && !d.withoutProcs {
			inst.procs[device.ProcCreateMessenger] = device.CreateMessengerFunc(inst.createMessenger)
			inst.procs[device.ProcDestroyMessenger] = device.DestroyMessengerFunc(inst.destroyMessenger)
		}
	}
	d.instance = inst
	return inst, nil
}

type fakeInstance struct {
	driver  *fakeDriver
	devices query[device.PhysicalDevice]
	procs   map[string]interface{}
	lookups int

	messenger *device.MessengerCreateInfo
}

func (i *fakeInstance) PhysicalDevices(count *uint32, out []device.PhysicalDevice) error {
	return i.devices.call(count, out)
}

func (i *fakeInstance) ProcAddr(name string) (interface{}, bool) {
	i.lookups++
	proc, ok := i.procs[name]
	return proc, ok
}

func (i *fakeInstance) Inner() interface{} { return nil }

func (i *fakeInstance) Destroy() error {
	return i.driver.destroy("instance")
}

type fakeMessenger struct{}

func (fakeMessenger) Inner() interface{} { return nil }

func (i *fakeInstance) createMessenger(info *device.MessengerCreateInfo) (device.Messenger, error) {
	if i.driver.messengerErr != nil {
		return nil, i.driver.messengerErr
	}
	i.messenger = info
	return fakeMessenger{}, nil
}

func (i *fakeInstance) destroyMessenger(device.Messenger) error {
	return i.driver.destroy("messenger")
}

type fakePhysicalDevice struct {
	driver     *fakeDriver
	properties device.Properties
	features   device.Features
	families   query[device.QueueFamilyProperties]

	createErr error
	created   *device.DeviceCreateInfo
}

// gpu is a device with one queue in each of the given families.
func gpu(name string, dim2D, dim3D uint32, families ...device.QueueFlags) *fakePhysicalDevice {
	pd := &fakePhysicalDevice{
		properties: device.Properties{
			Name:       name,
			APIVersion: device.APIVersion11,
			Type:       device.TypeIntegratedGPU,
			Limits: device.Limits{
				MaxImageDimension2D: dim2D,
				MaxImageDimension3D: dim3D,
			},
		},
	}
	for _, flags := range families {
		pd.families.items = append(pd.families.items, device.QueueFamilyProperties{Flags: flags, QueueCount: 1})
	}
	return pd
}

func (p *fakePhysicalDevice) Properties() device.Properties { return p.properties }

func (p *fakePhysicalDevice) Features() device.Features { return p.features }

func (p *fakePhysicalDevice) QueueFamilies(count *uint32, out []device.QueueFamilyProperties) error {
	return p.families.call(count, out)
}

func (p *fakePhysicalDevice) CreateDevice(info *device.DeviceCreateInfo) (device.LogicalDevice, error) {
	p.created = info
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &fakeLogicalDevice{driver: p.driver}, nil
}

type fakeLogicalDevice struct {
	driver *fakeDriver
}

func (d *fakeLogicalDevice) Queue(family, index uint32) device.Queue {
	return fakeQueue{family: family, index: index}
}

func (d *fakeLogicalDevice) Inner() interface{} { return nil }

func (d *fakeLogicalDevice) Destroy() error {
	if d.driver == nil {
		return nil
	}
	return d.driver.destroy("device")
}

type fakeQueue struct {
	family, index uint32
}

func (q fakeQueue) Family() uint32     { return q.family }
func (q fakeQueue) Index() uint32      { return q.index }
func (q fakeQueue) Inner() interface{} { return nil }

var errDriver = errors.New("VK_ERROR_INITIALIZATION_FAILED")
