package loopback

import (
	"net"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
)

// baseAddrStart seeds the synthetic address space. Addresses carry no
// machine meaning; they only need to be unique per region within the
// component's lifetime.
const baseAddrStart = 0x1000_0000

// region is one tracked registration.
type region struct {
	id        ulid.ULID
	base      uint64
	buf       []byte
	flags     domain.MemFlags
	name      string
	allocated bool
}

// md is the loopback memory domain. Registrations go into the component's
// shared table so remote keys resolve across MDs.
type md struct {
	comp      *Component
	align     uint64
	allocName string
	nextBase  atomic.Uint64
}

func (m *md) Component() registry.Component { return m.comp }

// Close drops the MD. Regions registered through it stay resolvable until
// individually deregistered; the component owns the table.
func (m *md) Close() {}

func (m *md) Query() (*domain.MDAttr, error) {
	return &domain.MDAttr{
		Flags: domain.CapAlloc | domain.CapReg |
			domain.CapRkeyPtr | domain.CapAdvise,
		MaxAllocLength:  1 << 40,
		MaxRegLength:    1 << 40,
		RkeyPackedSize:  rkeySize,
		AllocMemoryType: domain.MemoryHost,
	}, nil
}

// claimBase reserves an aligned synthetic base address for length bytes.
func (m *md) claimBase(length uint64) uint64 {
	span := (length + m.align - 1) &^ (m.align - 1)
	if span == 0 {
		span = m.align
	}
	return m.nextBase.Add(span) - span
}

func (m *md) track(buf []byte, flags domain.MemFlags, name string, allocated bool) *region {
	reg := &region{
		id:        ulid.Make(),
		base:      m.claimBase(uint64(len(buf))),
		buf:       buf,
		flags:     flags,
		name:      name,
		allocated: allocated,
	}
	m.comp.regions.Set(reg.id.String(), reg)

	m.comp.log.Debug("region registered",
		"id", reg.id.String(),
		"base", reg.base,
		"length", len(buf),
		"allocated", allocated)
	return reg
}

func (m *md) MemAlloc(length uint64, flags domain.MemFlags, name string) ([]byte, registry.Mem, error) {
	if length == 0 {
		return nil, nil, domain.ErrInvalidParam.WithDetails("zero-length allocation")
	}
	if name == "" {
		name = m.allocName
	}

	buf := make([]byte, length)
	reg := m.track(buf, flags, name, true)
	return buf, reg, nil
}

func (m *md) MemFree(memh registry.Mem) error {
	reg, err := m.lookup(memh)
	if err != nil {
		return err
	}
	if !reg.allocated {
		return domain.ErrInvalidParam.WithDetails("region was registered, not allocated")
	}
	m.comp.regions.Delete(reg.id.String())
	return nil
}

func (m *md) MemReg(buf []byte, flags domain.MemFlags) (registry.Mem, error) {
	return m.track(buf, flags, "", false), nil
}

func (m *md) MemDereg(memh registry.Mem) error {
	reg, err := m.lookup(memh)
	if err != nil {
		return err
	}
	if reg.allocated {
		return domain.ErrInvalidParam.WithDetails("region was allocated, use MemFree")
	}
	m.comp.regions.Delete(reg.id.String())
	return nil
}

func (m *md) MemAdvise(memh registry.Mem, region []byte, advice domain.MemAdvice) error {
	if _, err := m.lookup(memh); err != nil {
		return err
	}
	// Heap memory has nothing to prefetch or migrate.
	return nil
}

func (m *md) DetectMemoryType(buf []byte) (domain.MemoryType, error) {
	return domain.MemoryHost, nil
}

func (m *md) IsSockaddrAccessible(addr net.Addr, mode domain.SockaddrAccessibility) bool {
	return false
}

func (m *md) MkeyPack(memh registry.Mem, buf []byte) error {
	reg, err := m.lookup(memh)
	if err != nil {
		return err
	}
	return packRkey(buf, reg.base, uint64(len(reg.buf)), reg.id)
}

// lookup validates a handle and confirms the region is still tracked.
func (m *md) lookup(memh registry.Mem) (*region, error) {
	reg, ok := memh.(*region)
	if !ok {
		return nil, domain.ErrInvalidParam.WithDetails("handle was not produced by loopback")
	}
	if !m.comp.regions.Has(reg.id.String()) {
		return nil, domain.ErrInvalidParam.WithDetails("region is no longer registered")
	}
	return reg, nil
}
