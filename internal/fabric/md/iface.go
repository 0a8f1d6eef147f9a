package md

import (
	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/conf"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
)

// OpenIface opens a communication interface on the memory domain.
//
// The open mode selects the transport lookup: a device mode resolves the
// transport named in the device parameters, a sockaddr mode resolves the
// component's sockaddr-capable transport. Params without a recognized mode
// are a parameter error, rejected before any lookup. A lookup miss is
// ErrNoDevice.
func (h *Handle) OpenIface(worker *registry.Worker, params *registry.IfaceParams, cfg *conf.Bundle) (registry.Iface, error) {
	comp := h.entry.Component().Name()

	if params == nil || params.OpenMode == 0 {
		return nil, domain.ErrInvalidParam.WithDetails("open mode is not set")
	}

	var (
		tl registry.Transport
		ok bool
	)
	switch {
	case params.OpenMode&domain.OpenModeDevice != 0:
		tl, ok = registry.FindTransport(h.entry, h.capFlags, params.Device.TransportName)
		if !ok {
			return nil, domain.ErrNoDevice.WithDetails(
				"transport " + params.Device.TransportName + " is not registered on component " + comp)
		}
	case params.OpenMode&(domain.OpenModeSockaddrClient|domain.OpenModeSockaddrServer) != 0:
		tl, ok = registry.FindTransport(h.entry, h.capFlags, "")
		if !ok {
			h.opts.Logger.Debug("no sockaddr transport on component",
				"component", comp)
			return nil, domain.ErrNoDevice.WithDetails(
				"component " + comp + " has no sockaddr-capable transport")
		}
	default:
		return nil, domain.ErrInvalidParam.WithDetails("unrecognized open mode")
	}

	iface, err := tl.OpenIface(h.md, worker, params, cfg)
	if err != nil {
		h.opts.Logger.Error("iface open failed",
			"component", comp,
			"transport", tl.Name(),
			"error", err)
		return nil, err
	}
	return iface, nil
}

// IfaceConfigRead reads the configuration bundle for one of the handle's
// transports. An empty transport name selects the component's
// sockaddr-capable transport.
func (h *Handle) IfaceConfigRead(tlName, envPrefix string, sources ...conf.Source) (*conf.Bundle, error) {
	comp := h.entry.Component().Name()

	tl, ok := registry.FindTransport(h.entry, h.capFlags, tlName)
	if !ok {
		if tlName == "" {
			h.opts.Logger.Debug("no sockaddr transport on component",
				"component", comp)
			return nil, domain.ErrNoDevice.WithDetails(
				"component " + comp + " has no sockaddr-capable transport")
		}
		return nil, domain.ErrNoDevice.WithDetails(
			"transport " + tlName + " is not registered on component " + comp)
	}

	return conf.Read(tl.IfaceConfigTable(), envPrefix, tl.ConfigPrefix(), sources...)
}
