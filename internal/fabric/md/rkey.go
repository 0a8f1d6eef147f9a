package md

import (
	"bytes"
	"fmt"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
	"github.com/yndnr/fabmesh-go/internal/telemetry/metric"
)

// RkeyBundle is an unpacked remote key: the opaque key value plus the
// component's opaque handle behind it. Released as one unit.
type RkeyBundle struct {
	Rkey   domain.Rkey
	Handle any
}

// UnpackRkey decodes a remote-key buffer received from a peer.
//
// With the identity guard enabled the buffer's leading fixed-width region
// must equal the unpacking component's name; a mismatch means the key was
// packed by a different component family and fails as a parameter error
// without touching the rest of the buffer. The guard protects against
// cross-component key confusion, not against malicious input. With the
// guard disabled the raw buffer goes straight to the component.
func UnpackRkey(c registry.Component, buf []byte, opts Options) (*RkeyBundle, error) {
	opts = opts.withDefaults()

	if opts.DebugIdentity {
		if len(buf) < domain.ComponentNameMax {
			opts.Metrics.ObserveRkeyUnpack(c.Name(), metric.ResultError)
			return nil, domain.ErrInvalidParam.WithDetails("rkey buffer shorter than identity prefix")
		}

		expected := domain.PadComponentName(c.Name())
		if !bytes.Equal(buf[:domain.ComponentNameMax], expected) {
			actual := domain.TrimComponentName(buf[:domain.ComponentNameMax])
			opts.Logger.Error("invalid component for rkey unpack",
				"expected", c.Name(),
				"actual", actual)
			opts.Metrics.ObserveRkeyUnpack(c.Name(), metric.ResultIdentityMismatch)
			return nil, domain.ErrInvalidParam.WithDetails(
				fmt.Sprintf("rkey packed by %q, unpacked by %q", actual, c.Name()))
		}

		buf = buf[domain.ComponentNameMax:]
	}

	rkey, handle, err := c.RkeyUnpack(buf)
	if err != nil {
		opts.Logger.Error("rkey unpack failed",
			"component", c.Name(),
			"error", err)
		opts.Metrics.ObserveRkeyUnpack(c.Name(), metric.ResultError)
		return nil, err
	}

	opts.Metrics.ObserveRkeyUnpack(c.Name(), metric.ResultOK)
	return &RkeyBundle{Rkey: rkey, Handle: handle}, nil
}

// RkeyPtr translates an unpacked remote key plus a remote address into
// directly accessible local memory, for same-node shortcut access.
func RkeyPtr(c registry.Component, b *RkeyBundle, remoteAddr uint64) ([]byte, error) {
	return c.RkeyPtr(b.Rkey, b.Handle, remoteAddr)
}

// ReleaseRkey frees component-owned resources behind an unpacked key. The
// bundle must not be used afterward.
func ReleaseRkey(c registry.Component, b *RkeyBundle) error {
	return c.RkeyRelease(b.Rkey, b.Handle)
}
