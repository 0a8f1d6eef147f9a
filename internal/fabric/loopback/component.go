package loopback

import (
	"fmt"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/conf"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
	"github.com/yndnr/fabmesh-go/pkg/cmap"
)

// Name is the component and transport identity.
const Name = "loopback"

// deviceName is the single MD device the component advertises.
const deviceName = Name

// Component implements the loopback component family. Registrations from
// every MD opened through it live in one shared table so that remote keys
// unpack regardless of which MD packed them.
type Component struct {
	log     logger.Logger
	regions *cmap.Map[string, *region]
}

// Option configures the component.
type Option func(*Component)

// WithLogger sets the component logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Component) {
		c.log = log
	}
}

// NewComponent creates a loopback component.
func NewComponent(opts ...Option) *Component {
	c := &Component{
		log:     logger.Default(),
		regions: cmap.New[string, *region](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds the loopback component and its transport to the registry.
func Register(r *registry.Registry, opts ...Option) error {
	c := NewComponent(opts...)
	if err := r.RegisterComponent(c); err != nil {
		return err
	}
	return r.RegisterTransport(Name, &transport{comp: c})
}

func (c *Component) Name() string { return Name }

// OpenMD opens the loopback memory domain. The component advertises a
// single device; any other name is a miss.
func (c *Component) OpenMD(device string, cfg *conf.Bundle) (registry.MD, error) {
	if device != deviceName {
		return nil, domain.ErrNoDevice.WithDetails(
			fmt.Sprintf("loopback has no device %q", device))
	}

	// A nil bundle means all defaults.
	if cfg == nil {
		var err error
		cfg, err = conf.Read(c.MDConfigTable(), "", c.ConfigPrefix())
		if err != nil {
			return nil, err
		}
		defer cfg.Release()
	}

	align, err := cfg.Uint(optAddrAlign)
	if err != nil {
		return nil, err
	}
	if align == 0 || align&(align-1) != 0 {
		return nil, domain.ErrInvalidParam.WithDetails(
			fmt.Sprintf("address alignment %d is not a power of two", align))
	}
	allocName, err := cfg.Str(optAllocName)
	if err != nil {
		return nil, err
	}

	m := &md{
		comp:      c,
		align:     align,
		allocName: allocName,
	}
	m.nextBase.Store(baseAddrStart)
	return m, nil
}

func (c *Component) QueryMDResources() ([]domain.MDResource, error) {
	return registry.SingleMDResource(c)
}

func (c *Component) MDConfigTable() []conf.Field { return mdConfigTable() }
func (c *Component) ConfigPrefix() string        { return "LOOP_" }

// RkeyUnpack decodes and verifies the loopback remote-key record. The key
// value is the region's synthetic base address.
func (c *Component) RkeyUnpack(buf []byte) (domain.Rkey, any, error) {
	h, err := unpackRkey(buf)
	if err != nil {
		return 0, nil, err
	}
	return domain.Rkey(h.base), h, nil
}

// RkeyPtr translates a remote address covered by the key into the backing
// registration's memory.
func (c *Component) RkeyPtr(rkey domain.Rkey, handle any, remoteAddr uint64) ([]byte, error) {
	h, ok := handle.(*rkeyHandle)
	if !ok {
		return nil, domain.ErrInvalidParam.WithDetails("handle was not produced by loopback")
	}
	if remoteAddr < h.base || remoteAddr >= h.base+h.length {
		return nil, domain.ErrInvalidParam.WithDetails(
			fmt.Sprintf("address %#x is outside the keyed region", remoteAddr))
	}

	reg, ok := c.regions.Get(h.id.String())
	if !ok {
		return nil, domain.ErrInvalidParam.WithDetails("keyed region is no longer registered")
	}
	return reg.buf[remoteAddr-h.base:], nil
}

func (c *Component) RkeyRelease(rkey domain.Rkey, handle any) error {
	if _, ok := handle.(*rkeyHandle); !ok {
		return domain.ErrInvalidParam.WithDetails("handle was not produced by loopback")
	}
	return nil
}
