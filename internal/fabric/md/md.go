package md

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/conf"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
	"github.com/yndnr/fabmesh-go/internal/telemetry/metric"
)

// Options configure the fabric layer around an MD handle.
type Options struct {
	// DebugIdentity enables the component-identity guard on the remote-key
	// wire: MkeyPack prefixes the packed key with the fixed-width component
	// name and UnpackRkey verifies it. Both peers must agree on the
	// setting; it changes the wire layout.
	DebugIdentity bool

	// Logger for operation context. Defaults to logger.Default().
	Logger logger.Logger

	// Metrics is the optional fabric metric set. Nil disables
	// instrumentation.
	Metrics *metric.Fabric
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	return o
}

// Handle is an opened memory domain: the unit of memory-registration scope.
// The handle does not serialize concurrent operations; that contract is
// owed by the underlying component.
type Handle struct {
	md       registry.MD
	entry    *registry.Entry
	opts     Options
	capFlags domain.CapFlags

	// Discovery failures repeat on every query against a broken device;
	// throttle their log lines.
	logLimit *rate.Limiter
}

// Open opens a memory domain on the entry's component.
//
// The open itself is fully delegated; the layer's added guarantee is that
// the returned MD is bound to the component that opened it. A violation is
// a component-implementation bug, not a recoverable input error, and
// panics.
func Open(entry *registry.Entry, device string, cfg *conf.Bundle, opts Options) (*Handle, error) {
	opts = opts.withDefaults()
	comp := entry.Component()

	m, err := comp.OpenMD(device, cfg)
	if err != nil {
		opts.Logger.Error("md open failed",
			"component", comp.Name(),
			"device", device,
			"error", err)
		return nil, err
	}

	if m.Component() != comp {
		panic(fmt.Sprintf("md: component %q returned an MD bound to %q",
			comp.Name(), m.Component().Name()))
	}

	attr, err := m.Query()
	if err != nil {
		opts.Logger.Error("md query failed after open",
			"component", comp.Name(),
			"device", device,
			"error", err)
		m.Close()
		return nil, err
	}

	opts.Metrics.MDOpened(comp.Name())
	return &Handle{
		md:       m,
		entry:    entry,
		opts:     opts,
		capFlags: attr.Flags,
		logLimit: rate.NewLimiter(rate.Every(time.Second), 5),
	}, nil
}

// Close closes the memory domain. All registrations made through the
// handle must be released first; that contract binds the component.
func (h *Handle) Close() {
	h.md.Close()
	h.opts.Metrics.MDClosed(h.entry.Component().Name())
}

// Entry returns the component entry the handle was opened on.
func (h *Handle) Entry() *registry.Entry {
	return h.entry
}

// Query reports the MD's attributes. The component-name field is always
// overwritten with the owning component's name so callers never need a
// component back-reference. With the identity guard enabled the packed
// remote-key size grows by the fixed name width that MkeyPack prepends.
func (h *Handle) Query() (*domain.MDAttr, error) {
	attr, err := h.md.Query()
	if err != nil {
		return nil, err
	}

	attr.ComponentName = h.entry.Component().Name()
	if h.opts.DebugIdentity {
		attr.RkeyPackedSize += domain.ComponentNameMax
	}
	return attr, nil
}

// checkAccessFlags rejects flag sets that request no remote access right.
func checkAccessFlags(flags domain.MemFlags) error {
	if flags&domain.MemAccessAll == 0 {
		return domain.ErrInvalidParam.WithDetails("no access rights requested")
	}
	return nil
}

// MemAlloc allocates memory registered for remote access. The flags must
// request at least one access right; the check never reaches the component.
func (h *Handle) MemAlloc(length uint64, flags domain.MemFlags, name string) ([]byte, registry.Mem, error) {
	comp := h.entry.Component().Name()

	if err := checkAccessFlags(flags); err != nil {
		h.opts.Metrics.ObserveMemOp(comp, "alloc", err)
		return nil, nil, err
	}

	buf, memh, err := h.md.MemAlloc(length, flags, name)
	h.opts.Metrics.ObserveMemOp(comp, "alloc", err)
	if err != nil {
		h.opts.Logger.Error("mem alloc failed",
			"component", comp,
			"length", length,
			"name", name,
			"error", err)
		return nil, nil, err
	}
	return buf, memh, nil
}

// MemFree releases memory allocated by MemAlloc.
func (h *Handle) MemFree(memh registry.Mem) error {
	err := h.md.MemFree(memh)
	h.opts.Metrics.ObserveMemOp(h.entry.Component().Name(), "free", err)
	return err
}

// MemReg registers an existing region for remote access. An empty region
// or a flag set with no access right is rejected before delegation.
func (h *Handle) MemReg(region []byte, flags domain.MemFlags) (registry.Mem, error) {
	comp := h.entry.Component().Name()

	if len(region) == 0 {
		err := domain.ErrInvalidParam.WithDetails("empty memory region")
		h.opts.Metrics.ObserveMemOp(comp, "reg", err)
		return nil, err
	}
	if err := checkAccessFlags(flags); err != nil {
		h.opts.Metrics.ObserveMemOp(comp, "reg", err)
		return nil, err
	}

	memh, err := h.md.MemReg(region, flags)
	h.opts.Metrics.ObserveMemOp(comp, "reg", err)
	if err != nil {
		h.opts.Logger.Error("mem reg failed",
			"component", comp,
			"length", len(region),
			"error", err)
		return nil, err
	}
	return memh, nil
}

// MemDereg removes a registration created by MemReg.
func (h *Handle) MemDereg(memh registry.Mem) error {
	err := h.md.MemDereg(memh)
	h.opts.Metrics.ObserveMemOp(h.entry.Component().Name(), "dereg", err)
	return err
}

// MemAdvise hints the expected access pattern for part of a registered
// region. An empty region is rejected before delegation.
func (h *Handle) MemAdvise(memh registry.Mem, region []byte, advice domain.MemAdvice) error {
	if len(region) == 0 {
		return domain.ErrInvalidParam.WithDetails("empty memory region")
	}
	return h.md.MemAdvise(memh, region, advice)
}

// DetectMemoryType classifies where a region physically resides.
func (h *Handle) DetectMemoryType(region []byte) (domain.MemoryType, error) {
	return h.md.DetectMemoryType(region)
}

// IsSockaddrAccessible reports whether the address is reachable through
// this MD.
func (h *Handle) IsSockaddrAccessible(addr net.Addr, mode domain.SockaddrAccessibility) bool {
	return h.md.IsSockaddrAccessible(addr, mode)
}

// IsHugeTLB reports whether a registration is backed by huge pages. An MD
// without the optional capability reports false; that is not an error.
func (h *Handle) IsHugeTLB(memh registry.Mem) bool {
	if r, ok := h.md.(registry.HugeTLBReporter); ok {
		return r.IsHugeTLB(memh)
	}
	return false
}

// MkeyPack writes a transferable remote key for a registration into buf.
// With the identity guard enabled the leading fixed-width region carries
// the component name; the component payload starts right after it.
func (h *Handle) MkeyPack(memh registry.Mem, buf []byte) error {
	comp := h.entry.Component().Name()
	payload := buf

	if h.opts.DebugIdentity {
		if len(buf) < domain.ComponentNameMax {
			return domain.ErrInvalidParam.WithDetails("rkey buffer shorter than identity prefix")
		}
		copy(buf[:domain.ComponentNameMax], domain.PadComponentName(comp))
		payload = buf[domain.ComponentNameMax:]
	}

	if err := h.md.MkeyPack(memh, payload); err != nil {
		h.opts.Logger.Error("mkey pack failed",
			"component", comp,
			"error", err)
		return err
	}
	return nil
}

// MDConfigRead reads a component's MD configuration bundle.
func MDConfigRead(c registry.Component, envPrefix string, sources ...conf.Source) (*conf.Bundle, error) {
	return conf.Read(c.MDConfigTable(), envPrefix, c.ConfigPrefix(), sources...)
}
