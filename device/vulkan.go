// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrIncomplete is returned by a fill call when the driver had more
// items than the output buffer could hold.
var ErrIncomplete = errors.New("driver returned an incomplete result")

// NewVulkanDriver loads the Vulkan API. procAddr is vkGetInstanceProcAddr as
// handed out by the windowing layer, when nil the default loader is used.
func NewVulkanDriver(procAddr unsafe.Pointer) (Driver, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}
	return &vulkanDriver{}, nil
}

type vulkanDriver struct{}

func result(ret vk.Result) error {
	if ret == vk.Incomplete {
		return ErrIncomplete
	}
	return vk.Error(ret)
}

// InstanceExtensions implements interface
func (vulkanDriver) InstanceExtensions(count *uint32, out []ExtensionProperties) error {
	if len(out) == 0 {
		return result(vk.EnumerateInstanceExtensionProperties("", count, nil))
	}
	raw := make([]vk.ExtensionProperties, len(out))
	*count = uint32(len(raw))
	if err := result(vk.EnumerateInstanceExtensionProperties("", count, raw)); err != nil {
		return err
	}
	for i := 0; i < int(*count); i++ {
		raw[i].Deref()
		out[i] = ExtensionProperties{
			Name:        vk.ToString(raw[i].ExtensionName[:]),
			SpecVersion: raw[i].SpecVersion,
		}
	}
	return nil
}

// InstanceLayers implements interface
func (vulkanDriver) InstanceLayers(count *uint32, out []LayerProperties) error {
	if len(out) == 0 {
		return result(vk.EnumerateInstanceLayerProperties(count, nil))
	}
	raw := make([]vk.LayerProperties, len(out))
	*count = uint32(len(raw))
	if err := result(vk.EnumerateInstanceLayerProperties(count, raw)); err != nil {
		return err
	}
	for i := 0; i < int(*count); i++ {
		raw[i].Deref()
		out[i] = LayerProperties{
			Name:                  vk.ToString(raw[i].LayerName[:]),
			SpecVersion:           Version(raw[i].SpecVersion),
			ImplementationVersion: raw[i].ImplementationVersion,
			Description:           vk.ToString(raw[i].Description[:]),
		}
	}
	return nil
}

// CreateInstance implements interface
func (vulkanDriver) CreateInstance(info *InstanceCreateInfo) (Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(info.APIVersion),
		ApplicationVersion: uint32(info.ApplicationVersion),
		PApplicationName:   safeString(info.ApplicationName),
		EngineVersion:      uint32(info.EngineVersion),
		PEngineName:        safeString(info.EngineName),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	vk.InitInstance(instance)

	v := &vulkanInstance{
		handle: instance,
		procs:  make(map[string]interface{}),
	}
	// Extension entry points exist exactly when the extension was enabled.
	for _, ext := range info.Extensions {
		if ext == DebugExtensionName {
			v.procs[ProcCreateMessenger] = CreateMessengerFunc(v.createMessenger)
			v.procs[ProcDestroyMessenger] = DestroyMessengerFunc(v.destroyMessenger)
		}
	}
	return v, nil
}

type vulkanInstance struct {
	handle vk.Instance
	procs  map[string]interface{}
}

// PhysicalDevices implements interface
func (v *vulkanInstance) PhysicalDevices(count *uint32, out []PhysicalDevice) error {
	if len(out) == 0 {
		return result(vk.EnumeratePhysicalDevices(v.handle, count, nil))
	}
	raw := make([]vk.PhysicalDevice, len(out))
	*count = uint32(len(raw))
	if err := result(vk.EnumeratePhysicalDevices(v.handle, count, raw)); err != nil {
		return err
	}
	for i := 0; i < int(*count); i++ {
		out[i] = &vulkanPhysicalDevice{handle: raw[i]}
	}
	return nil
}

// ProcAddr implements interface
func (v *vulkanInstance) ProcAddr(name string) (interface{}, bool) {
	proc, ok := v.procs[name]
	return proc, ok
}

// Inner returns internal vk.Instance
func (v *vulkanInstance) Inner() interface{} {
	return v.handle
}

// Destroy implements interface
func (v *vulkanInstance) Destroy() error {
	if v.handle == nil {
		return nil
	}
	vk.DestroyInstance(v.handle, nil)
	v.handle = nil
	v.procs = nil
	return nil
}

type vulkanMessenger struct {
	handle    vk.DebugReportCallback
	destroyed bool
}

func (m *vulkanMessenger) Inner() interface{} {
	return m.handle
}

func (v *vulkanInstance) createMessenger(info *MessengerCreateInfo) (Messenger, error) {
	filter := *info
	callback := func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		msg := translateReport(flags, pLayerPrefix, pMessage)
		if filter.Callback != nil && filter.Accepts(msg) {
			filter.Callback(msg)
		}
		// Never abort the call that triggered the report.
		return vk.Bool32(vk.False)
	}

	var handle vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(v.handle, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       reportFlags(info.Severities, info.Categories),
		PfnCallback: callback,
	}, nil, &handle)
	if err := vk.Error(ret); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDebugReportCallback()")
	}
	return &vulkanMessenger{handle: handle}, nil
}

func (v *vulkanInstance) destroyMessenger(m Messenger) error {
	vm, ok := m.(*vulkanMessenger)
	if !ok {
		return errors.Newf("vk.DestroyDebugReportCallback(): foreign messenger %T", m)
	}
	if vm.destroyed {
		return nil
	}
	vk.DestroyDebugReportCallback(v.handle, vm.handle, nil)
	vm.destroyed = true
	return nil
}

func reportFlags(severities Severity, categories Category) vk.DebugReportFlags {
	var flags vk.DebugReportFlagBits
	if severities&SeverityVerbose != 0 {
		flags |= vk.DebugReportInformationBit | vk.DebugReportDebugBit
	}
	if severities&SeverityWarning != 0 {
		flags |= vk.DebugReportWarningBit
		if categories&CategoryPerformance != 0 {
			flags |= vk.DebugReportPerformanceWarningBit
		}
	}
	if severities&SeverityError != 0 {
		flags |= vk.DebugReportErrorBit
	}
	return vk.DebugReportFlags(flags)
}

func translateReport(flags vk.DebugReportFlags, layer, text string) Message {
	msg := Message{
		Severity: SeverityVerbose,
		Category: CategoryGeneral,
		Layer:    layer,
		Text:     text,
	}
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		msg.Severity = SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		msg.Severity = SeverityWarning
		msg.Category = CategoryPerformance
		return msg
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		msg.Severity = SeverityWarning
	}
	if strings.Contains(strings.ToLower(layer), "validation") {
		msg.Category = CategoryValidation
	}
	return msg
}

type vulkanPhysicalDevice struct {
	handle vk.PhysicalDevice
}

// Properties implements interface
func (d *vulkanPhysicalDevice) Properties() Properties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(d.handle, &properties)
	properties.Deref()
	properties.Limits.Deref()
	return Properties{
		Name:          vk.ToString(properties.DeviceName[:]),
		VendorID:      properties.VendorID,
		DeviceID:      properties.DeviceID,
		DriverVersion: properties.DriverVersion,
		APIVersion:    Version(properties.ApiVersion),
		Type:          Type(properties.DeviceType),
		Limits: Limits{
			MaxImageDimension2D: properties.Limits.MaxImageDimension2D,
			MaxImageDimension3D: properties.Limits.MaxImageDimension3D,
		},
	}
}

// Features implements interface
func (d *vulkanPhysicalDevice) Features() Features {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(d.handle, &features)
	features.Deref()
	return Features{
		GeometryShader:     features.GeometryShader.B(),
		TessellationShader: features.TessellationShader.B(),
		SamplerAnisotropy:  features.SamplerAnisotropy.B(),
		MultiViewport:      features.MultiViewport.B(),
		WideLines:          features.WideLines.B(),
		FillModeNonSolid:   features.FillModeNonSolid.B(),
	}
}

// QueueFamilies implements interface
func (d *vulkanPhysicalDevice) QueueFamilies(count *uint32, out []QueueFamilyProperties) error {
	if len(out) == 0 {
		vk.GetPhysicalDeviceQueueFamilyProperties(d.handle, count, nil)
		return nil
	}
	raw := make([]vk.QueueFamilyProperties, len(out))
	*count = uint32(len(raw))
	vk.GetPhysicalDeviceQueueFamilyProperties(d.handle, count, raw)
	for i := 0; i < int(*count); i++ {
		raw[i].Deref()
		out[i] = QueueFamilyProperties{
			Flags:      QueueFlags(raw[i].QueueFlags),
			QueueCount: raw[i].QueueCount,
		}
	}
	return nil
}

// CreateDevice implements interface
func (d *vulkanPhysicalDevice) CreateDevice(info *DeviceCreateInfo) (LogicalDevice, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(info.Queues))
	for i, q := range info.Queues {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.FamilyIndex,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		}
	}

	dci := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueInfos)),
		PQueueCreateInfos:    queueInfos,
		EnabledLayerCount:    uint32(len(info.Layers)),
		PpEnabledLayerNames:  safeStrings(info.Layers),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			GeometryShader:     bool32(info.Features.GeometryShader),
			TessellationShader: bool32(info.Features.TessellationShader),
			SamplerAnisotropy:  bool32(info.Features.SamplerAnisotropy),
			MultiViewport:      bool32(info.Features.MultiViewport),
			WideLines:          bool32(info.Features.WideLines),
			FillModeNonSolid:   bool32(info.Features.FillModeNonSolid),
		}},
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(d.handle, &dci, nil, &device)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}
	return &vulkanDevice{handle: device}, nil
}

type vulkanDevice struct {
	handle vk.Device
}

// Queue implements interface
func (d *vulkanDevice) Queue(family, index uint32) Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.handle, family, index, &queue)
	return &vulkanQueue{handle: queue, family: family, index: index}
}

// Inner returns internal vk.Device
func (d *vulkanDevice) Inner() interface{} {
	return d.handle
}

// Destroy implements interface
func (d *vulkanDevice) Destroy() error {
	if d.handle == nil {
		return nil
	}
	vk.DestroyDevice(d.handle, nil)
	d.handle = nil
	return nil
}

type vulkanQueue struct {
	handle vk.Queue
	family uint32
	index  uint32
}

func (q *vulkanQueue) Family() uint32     { return q.family }
func (q *vulkanQueue) Index() uint32      { return q.index }
func (q *vulkanQueue) Inner() interface{} { return q.handle }

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.Bool32(vk.True)
	}
	return vk.Bool32(vk.False)
}
