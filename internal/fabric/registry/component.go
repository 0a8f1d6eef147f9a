package registry

import (
	"net"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/conf"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
)

// Mem is an opaque memory-registration handle. Its concrete type is private
// to the component that produced it.
type Mem any

// Component is the pluggable implementation family providing memory-domain
// and remote-key behavior. One component can host many transports; the
// component outlives every MD opened through it.
type Component interface {
	// Name returns the component identity. It doubles as a wire/debug tag
	// and is truncated to domain.ComponentNameMax on the rkey wire.
	Name() string

	// OpenMD opens the named memory-domain device. The returned MD must
	// report this component from its Component method.
	OpenMD(device string, cfg *conf.Bundle) (MD, error)

	// QueryMDResources lists the memory-domain devices this component can
	// open.
	QueryMDResources() ([]domain.MDResource, error)

	// MDConfigTable returns the component's MD configuration field table.
	MDConfigTable() []conf.Field

	// ConfigPrefix returns the configuration-section prefix for the
	// component's options (e.g. "LOOP_").
	ConfigPrefix() string

	// RkeyUnpack decodes a component-defined remote-key payload. The
	// fabric layer strips any debug-identity prefix before delegating.
	RkeyUnpack(buf []byte) (domain.Rkey, any, error)

	// RkeyPtr translates an unpacked remote key plus a remote address into
	// directly accessible local memory. Components without a meaningful
	// translation return domain.ErrUnsupported.
	RkeyPtr(rkey domain.Rkey, handle any, remoteAddr uint64) ([]byte, error)

	// RkeyRelease frees component-owned resources behind an unpacked key.
	RkeyRelease(rkey domain.Rkey, handle any) error
}

// Transport is one communication method offered by a component. A transport
// is registered under exactly one component.
type Transport interface {
	// Name returns the transport identity, unique within its component.
	Name() string

	// QueryResources lists the communication resources this transport
	// offers on the given opened MD.
	QueryResources(md MD) ([]domain.ResourceDesc, error)

	// OpenIface constructs a communication interface on the MD.
	OpenIface(md MD, worker *Worker, params *IfaceParams, cfg *conf.Bundle) (Iface, error)

	// IfaceConfigTable returns the transport's interface configuration
	// field table.
	IfaceConfigTable() []conf.Field

	// ConfigPrefix returns the configuration-section prefix for the
	// transport's options.
	ConfigPrefix() string
}

// MD is an opened memory-domain instance: the unit of memory-registration
// scope. Implementations owe thread-safety for concurrent operations on the
// same MD; the fabric layer does not serialize them.
type MD interface {
	// Component returns the component that opened this MD.
	Component() Component

	// Close releases the MD. All registrations made through the MD must be
	// released before close; that contract binds the component, not this
	// layer.
	Close()

	// Query reports the MD's attributes.
	Query() (*domain.MDAttr, error)

	// MemAlloc allocates registered memory. The returned buffer may be
	// longer than requested.
	MemAlloc(length uint64, flags domain.MemFlags, name string) ([]byte, Mem, error)

	// MemFree releases memory allocated by MemAlloc.
	MemFree(memh Mem) error

	// MemReg registers an existing memory region for remote access.
	MemReg(region []byte, flags domain.MemFlags) (Mem, error)

	// MemDereg removes a registration created by MemReg.
	MemDereg(memh Mem) error

	// MemAdvise hints the expected access pattern for part of a
	// registered region.
	MemAdvise(memh Mem, region []byte, advice domain.MemAdvice) error

	// DetectMemoryType classifies where a region physically resides.
	DetectMemoryType(region []byte) (domain.MemoryType, error)

	// IsSockaddrAccessible reports whether the address is reachable
	// through this MD.
	IsSockaddrAccessible(addr net.Addr, mode domain.SockaddrAccessibility) bool

	// MkeyPack writes the component-defined remote-key payload for a
	// registration into buf.
	MkeyPack(memh Mem, buf []byte) error
}

// HugeTLBReporter is the optional huge-page capability. MDs that do not
// implement it report false through the fabric layer, which is not an
// error.
type HugeTLBReporter interface {
	IsHugeTLB(memh Mem) bool
}

// Iface is an opened communication interface. Data transfer on it is the
// transport's concern, outside this layer.
type Iface interface {
	Close() error
}

// Worker drives progress for interfaces opened on an MD. It is created by
// the caller and shared across interfaces.
type Worker struct {
	log logger.Logger
}

// NewWorker creates a worker. A nil logger falls back to the default.
func NewWorker(log logger.Logger) *Worker {
	if log == nil {
		log = logger.Default()
	}
	return &Worker{log: log}
}

// Log returns the worker's logger.
func (w *Worker) Log() logger.Logger {
	return w.log
}

// DeviceParams name the transport and device for device-mode opens.
type DeviceParams struct {
	TransportName string
	DeviceName    string
}

// SockaddrParams carry the addresses for address-based opens.
type SockaddrParams struct {
	// Local is the address to bind (server mode).
	Local net.Addr
	// Remote is the peer address to connect to (client mode).
	Remote net.Addr
}

// IfaceParams select how an interface is opened. OpenMode is mandatory; a
// zero OpenMode is a parameter-contract violation.
type IfaceParams struct {
	OpenMode domain.OpenMode
	Device   DeviceParams
	Sockaddr SockaddrParams
}
