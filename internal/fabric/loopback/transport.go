package loopback

import (
	"time"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/conf"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
)

// transport is the component's single same-process transport.
type transport struct {
	comp *Component
}

func (t *transport) Name() string { return Name }

func (t *transport) QueryResources(m registry.MD) ([]domain.ResourceDesc, error) {
	if _, ok := m.(*md); !ok {
		return nil, domain.ErrInvalidParam.WithDetails("MD was not opened by loopback")
	}
	return []domain.ResourceDesc{
		{
			TransportName: Name,
			DeviceName:    deviceName,
			DeviceType:    domain.DeviceSelf,
		},
	}, nil
}

// OpenIface opens the loopback interface. Only device mode is supported;
// the component never advertises sockaddr capability.
func (t *transport) OpenIface(m registry.MD, w *registry.Worker, p *registry.IfaceParams, cfg *conf.Bundle) (registry.Iface, error) {
	if _, ok := m.(*md); !ok {
		return nil, domain.ErrInvalidParam.WithDetails("MD was not opened by loopback")
	}
	if p.OpenMode&domain.OpenModeDevice == 0 {
		return nil, domain.ErrUnsupported.WithDetails("loopback supports device mode only")
	}
	if p.Device.DeviceName != "" && p.Device.DeviceName != deviceName {
		return nil, domain.ErrNoDevice.WithDetails(p.Device.DeviceName)
	}

	if cfg == nil {
		var err error
		cfg, err = conf.Read(t.IfaceConfigTable(), "", t.ConfigPrefix())
		if err != nil {
			return nil, err
		}
		defer cfg.Release()
	}
	segSize, err := cfg.Uint("SEG_SIZE")
	if err != nil {
		return nil, err
	}
	poll, err := cfg.Duration("POLL_INTERVAL")
	if err != nil {
		return nil, err
	}

	return &iface{
		worker:   w,
		segSize:  segSize,
		pollIval: poll,
	}, nil
}

func (t *transport) IfaceConfigTable() []conf.Field { return ifaceConfigTable() }
func (t *transport) ConfigPrefix() string           { return "LOOP_TL_" }

// iface is the opened loopback interface.
type iface struct {
	worker   *registry.Worker
	segSize  uint64
	pollIval time.Duration
	closed   bool
}

// SegSize returns the negotiated maximum segment size.
func (i *iface) SegSize() uint64 { return i.segSize }

// PollInterval returns the configured progress polling interval.
func (i *iface) PollInterval() time.Duration { return i.pollIval }

func (i *iface) Close() error {
	if i.closed {
		return domain.ErrInvalidParam.WithDetails("interface already closed")
	}
	i.closed = true
	return nil
}
