package domain

import "strings"

// ComponentNameMax is the fixed width, in bytes, of a component name as it
// appears on the remote-key wire and in debug tags. Both the packer and the
// unpacker must agree on this value out of band; names shorter than the
// width are zero-padded.
const ComponentNameMax = 16

// PadComponentName returns name zero-padded (or truncated) to
// ComponentNameMax bytes, as written into a packed remote key.
func PadComponentName(name string) []byte {
	buf := make([]byte, ComponentNameMax)
	copy(buf, name)
	return buf
}

// TrimComponentName reverses PadComponentName: it strips the zero padding
// from a fixed-width name region.
func TrimComponentName(buf []byte) string {
	return strings.TrimRight(string(buf[:min(len(buf), ComponentNameMax)]), "\x00")
}

// MemFlags control memory allocation and registration.
type MemFlags uint64

const (
	// MemAccessRead allows remote read access.
	MemAccessRead MemFlags = 1 << iota
	// MemAccessWrite allows remote write access.
	MemAccessWrite
	// MemAccessAtomic allows remote atomic access.
	MemAccessAtomic
	// MemFlagNonBlock requests non-blocking registration.
	MemFlagNonBlock
	// MemFlagFixed requests allocation at a fixed address.
	MemFlagFixed
)

// MemAccessAll is the mask of remote access rights. Every allocation and
// registration must request at least one of these bits.
const MemAccessAll = MemAccessRead | MemAccessWrite | MemAccessAtomic

// MemAccessRMA is a convenience mask for plain read/write access.
const MemAccessRMA = MemAccessRead | MemAccessWrite

// CapFlags advertise the capabilities of an opened memory domain.
type CapFlags uint64

const (
	// CapAlloc - the MD supports memory allocation.
	CapAlloc CapFlags = 1 << iota
	// CapReg - the MD supports memory registration.
	CapReg
	// CapSockaddr - the MD's transports connect by socket address rather
	// than by named device.
	CapSockaddr
	// CapRkeyPtr - unpacked remote keys can be translated to local
	// addresses for same-node shortcut access.
	CapRkeyPtr
	// CapAdvise - the MD supports memory advice.
	CapAdvise
)

// String returns a comma-separated list of set capability names.
func (f CapFlags) String() string {
	names := []struct {
		flag CapFlags
		name string
	}{
		{CapAlloc, "alloc"},
		{CapReg, "reg"},
		{CapSockaddr, "sockaddr"},
		{CapRkeyPtr, "rkey_ptr"},
		{CapAdvise, "advise"},
	}
	var set []string
	for _, n := range names {
		if f&n.flag != 0 {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, ",")
}

// MemoryType classifies where a memory region physically resides.
type MemoryType int

const (
	// MemoryHost is ordinary host memory.
	MemoryHost MemoryType = iota
	// MemoryDevice is accelerator-attached memory.
	MemoryDevice
	// MemoryManaged is migratable host/device memory.
	MemoryManaged
	// MemoryUnknown is reported when the component cannot classify a region.
	MemoryUnknown
)

// String returns the memory type name.
func (t MemoryType) String() string {
	switch t {
	case MemoryHost:
		return "host"
	case MemoryDevice:
		return "device"
	case MemoryManaged:
		return "managed"
	default:
		return "unknown"
	}
}

// MemAdvice hints the component about expected access patterns.
type MemAdvice int

const (
	// AdviceNormal resets any previous advice.
	AdviceNormal MemAdvice = iota
	// AdviceWillNeed indicates the region will be accessed soon.
	AdviceWillNeed
)

// DeviceType classifies a transport resource's underlying device.
type DeviceType int

const (
	// DeviceNet is a network device.
	DeviceNet DeviceType = iota
	// DeviceShm is a shared-memory path.
	DeviceShm
	// DeviceAccel is an accelerator interconnect.
	DeviceAccel
	// DeviceSelf is a same-process loopback path.
	DeviceSelf
)

// String returns the device type name.
func (t DeviceType) String() string {
	switch t {
	case DeviceNet:
		return "net"
	case DeviceShm:
		return "shm"
	case DeviceAccel:
		return "accel"
	case DeviceSelf:
		return "self"
	default:
		return "unknown"
	}
}

// MDResource is a memory-domain device advertised by a component.
type MDResource struct {
	// MDName is the device name passed back to Open.
	MDName string
}

// ResourceDesc is a communication resource advertised by a transport during
// discovery. The aggregated result set is caller-owned; entries carry no
// nested ownership.
type ResourceDesc struct {
	// TransportName is the advertising transport. Discovery guarantees this
	// matches the transport the descriptor came from; it is the key used by
	// later transport lookups.
	TransportName string

	// DeviceName is the hardware device backing this resource.
	DeviceName string

	// DeviceType classifies the device.
	DeviceType DeviceType
}

// MDAttr describes an opened memory domain.
type MDAttr struct {
	// ComponentName is the owning component. The fabric layer always
	// overwrites this field so callers never need a component back-reference.
	ComponentName string

	// Flags advertise MD capabilities.
	Flags CapFlags

	// MaxAllocLength is the largest supported allocation, 0 if unsupported.
	MaxAllocLength uint64

	// MaxRegLength is the largest supported registration, 0 if unsupported.
	MaxRegLength uint64

	// RkeyPackedSize is the buffer size MkeyPack requires. When the
	// debug-identity guard is enabled the fabric layer adds
	// ComponentNameMax to the component-reported value.
	RkeyPackedSize int

	// AllocMemoryType is the memory type of allocations made through the MD.
	AllocMemoryType MemoryType
}

// Rkey is an opaque remote-key value produced by unpacking a remote-key
// buffer. Its interpretation is private to the producing component.
type Rkey uint64

// OpenMode selects how a communication interface is opened.
type OpenMode uint32

const (
	// OpenModeDevice opens an interface on a named transport device.
	OpenModeDevice OpenMode = 1 << iota
	// OpenModeSockaddrClient opens a client-side address-based interface.
	OpenModeSockaddrClient
	// OpenModeSockaddrServer opens a server-side address-based interface.
	OpenModeSockaddrServer
)

// SockaddrAccessibility selects the scope checked by IsSockaddrAccessible.
type SockaddrAccessibility int

const (
	// SockaddrAccessibilityLocal checks reachability for binding locally.
	SockaddrAccessibilityLocal SockaddrAccessibility = iota
	// SockaddrAccessibilityRemote checks reachability of a remote peer.
	SockaddrAccessibilityRemote
)
