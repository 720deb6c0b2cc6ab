// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device is the boundary to the native graphics driver. Everything
// above it talks to these interfaces, so the negotiation logic never has to
// know which binding, or whether a real driver, is underneath.
package device

// Well known capability names
const (
	DebugExtensionName      = "VK_EXT_debug_report"
	KhronosValidationLayer  = "VK_LAYER_KHRONOS_validation"
	ProcCreateMessenger     = "vkCreateDebugReportCallbackEXT"
	ProcDestroyMessenger    = "vkDestroyDebugReportCallbackEXT"
	defaultQueuePriority    = 1.0
	apiVersionMajorShift    = 22
	apiVersionMinorShift    = 12
	apiVersionComponentMask = 0x3ff
)

// Version is a packed driver version number.
type Version uint32

// MakeVersion packs major, minor and patch the way the driver expects.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<apiVersionMajorShift | minor<<apiVersionMinorShift | patch)
}

// Major version component
func (v Version) Major() uint32 { return uint32(v) >> apiVersionMajorShift }

// Minor version component
func (v Version) Minor() uint32 { return uint32(v) >> apiVersionMinorShift & apiVersionComponentMask }

// Patch version component
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

// API versions
var (
	APIVersion10 = MakeVersion(1, 0, 0)
	APIVersion11 = MakeVersion(1, 1, 0)
)

// ExtensionProperties is an extension as reported by the driver.
type ExtensionProperties struct {
	Name        string
	SpecVersion uint32
}

// LayerProperties is a layer as reported by the driver.
type LayerProperties struct {
	Name                  string
	SpecVersion           Version
	ImplementationVersion uint32
	Description           string
}

// Type classifies a physical device
type Type int

// Physical device types, numbered as the driver numbers them.
const (
	TypeOther Type = iota
	TypeIntegratedGPU
	TypeDiscreteGPU
	TypeVirtualGPU
	TypeCPU
)

func (t Type) String() string {
	switch t {
	case TypeIntegratedGPU:
		return "integrated"
	case TypeDiscreteGPU:
		return "discrete"
	case TypeVirtualGPU:
		return "virtual"
	case TypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// Limits is the subset of device limits used for selection.
type Limits struct {
	MaxImageDimension2D uint32
	MaxImageDimension3D uint32
}

// Properties describes a physical device.
type Properties struct {
	Name          string
	VendorID      uint32
	DeviceID      uint32
	DriverVersion uint32
	APIVersion    Version
	Type          Type
	Limits        Limits
}

// Features is the subset of optional device features that can be required
// by configuration. Field names map to the driver's feature names via FeatureNames.
type Features struct {
	GeometryShader     bool
	TessellationShader bool
	SamplerAnisotropy  bool
	MultiViewport      bool
	WideLines          bool
	FillModeNonSolid   bool
}

// FeatureNames lists every feature name Features.Has understands.
var FeatureNames = []string{
	"geometryShader",
	"tessellationShader",
	"samplerAnisotropy",
	"multiViewport",
	"wideLines",
	"fillModeNonSolid",
}

// Has reports whether the named feature is supported. Unknown
// names are reported as unsupported along with known == false.
func (f Features) Has(name string) (supported, known bool) {
	switch name {
	case "geometryShader":
		return f.GeometryShader, true
	case "tessellationShader":
		return f.TessellationShader, true
	case "samplerAnisotropy":
		return f.SamplerAnisotropy, true
	case "multiViewport":
		return f.MultiViewport, true
	case "wideLines":
		return f.WideLines, true
	case "fillModeNonSolid":
		return f.FillModeNonSolid, true
	}
	return false, false
}

// QueueFlags are queue family capabilities
type QueueFlags uint32

// Queue family capability bits, as the driver defines them
const (
	QueueGraphics      QueueFlags = 0x1
	QueueCompute       QueueFlags = 0x2
	QueueTransfer      QueueFlags = 0x4
	QueueSparseBinding QueueFlags = 0x8
)

// QueueFamilyProperties describes one queue family of a device.
type QueueFamilyProperties struct {
	Flags      QueueFlags
	QueueCount uint32
}

// Graphics tells whether the family can run graphics work at all.
func (q QueueFamilyProperties) Graphics() bool {
	return q.QueueCount > 0 && q.Flags&QueueGraphics != 0
}

// InstanceCreateInfo is everything needed to create an instance.
type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion Version
	EngineName         string
	EngineVersion      Version
	APIVersion         Version
	Extensions         []string
	Layers             []string
}

// QueueCreateInfo requests queues from one family.
type QueueCreateInfo struct {
	FamilyIndex uint32
	Priorities  []float32
}

// DefaultQueuePriorities requests a single queue at the highest priority.
func DefaultQueuePriorities() []float32 {
	return []float32{defaultQueuePriority}
}

// DeviceCreateInfo is everything needed to create a logical device.
type DeviceCreateInfo struct {
	Queues   []QueueCreateInfo
	Features Features
	Layers   []string
}

// Driver is the entry to the native graphics API.
// Enumeration methods follow the count-then-fill convention:
// an empty out only stores the number of items into count,
// otherwise up to len(out) items are written and count is updated.
// A fill call that could not fit everything returns ErrIncomplete.
type Driver interface {
	InstanceExtensions(count *uint32, out []ExtensionProperties) error
	InstanceLayers(count *uint32, out []LayerProperties) error
	CreateInstance(info *InstanceCreateInfo) (Instance, error)
}

// Instance is the root handle, everything else is derived from it.
type Instance interface {
	PhysicalDevices(count *uint32, out []PhysicalDevice) error

	// ProcAddr looks up an extension provided entry point. The returned
	// value is a Go callable whose type is documented next to the proc name,
	// the caller is responsible for asserting it.
	ProcAddr(name string) (interface{}, bool)

	// Inner returns the inner handle of the underlying API
	Inner() interface{}

	Destroy() error
}

// PhysicalDevice is an enumerable GPU.
type PhysicalDevice interface {
	Properties() Properties
	Features() Features
	QueueFamilies(count *uint32, out []QueueFamilyProperties) error
	CreateDevice(info *DeviceCreateInfo) (LogicalDevice, error)
}

// LogicalDevice is an application configured device.
type LogicalDevice interface {
	// Queue returns a non owning reference to a queue,
	// valid as long as the device is alive.
	Queue(family, index uint32) Queue
	Inner() interface{}
	Destroy() error
}

// Queue is a device queue handle
type Queue interface {
	Family() uint32
	Index() uint32
	Inner() interface{}
}
