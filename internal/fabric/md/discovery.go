package md

import "github.com/yndnr/fabmesh-go/internal/core/domain"

// QueryResources aggregates the resources advertised by every transport
// registered on the handle's component.
//
// A transport query failure is non-fatal: it is logged, counted, and the
// remaining transports are still queried, so callers get the partial result
// set. A transport reporting zero resources contributes nothing. Every
// returned descriptor carries its originating transport's name; later
// transport lookups key on it. The result slice is private to the call and
// caller-owned.
func (h *Handle) QueryResources() []domain.ResourceDesc {
	comp := h.entry.Component().Name()

	var out []domain.ResourceDesc
	for _, tl := range h.entry.Transports() {
		rscs, err := tl.QueryResources(h.md)
		if err != nil {
			h.opts.Metrics.ObserveDiscoveryFailure(comp, tl.Name())
			if h.logLimit.Allow() {
				h.opts.Logger.Warn("transport resource query failed",
					"component", comp,
					"transport", tl.Name(),
					"error", err)
			}
			continue
		}
		if len(rscs) == 0 {
			continue
		}

		// The transport name is the discovery contract; normalize any
		// descriptor a component mislabeled.
		for i := range rscs {
			if rscs[i].TransportName != tl.Name() {
				h.opts.Logger.Debug("resource descriptor mislabeled",
					"component", comp,
					"transport", tl.Name(),
					"labeled", rscs[i].TransportName)
				rscs[i].TransportName = tl.Name()
			}
		}

		h.opts.Metrics.ObserveResources(comp, tl.Name(), len(rscs))
		out = append(out, rscs...)
	}
	return out
}
