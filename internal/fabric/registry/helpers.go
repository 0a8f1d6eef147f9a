package registry

import "github.com/yndnr/fabmesh-go/internal/core/domain"

// StubRkey is the fixed sentinel returned by StubRkeyUnpack for components
// with no real remote-key translation.
const StubRkey domain.Rkey = 0xdeadbeef

// SingleMDResource returns one synthetic memory-domain resource named after
// the component. Used by degenerate components with no meaningful
// per-device resource list.
func SingleMDResource(c Component) ([]domain.MDResource, error) {
	return []domain.MDResource{{MDName: c.Name()}}, nil
}

// EmptyMDResources reports no memory-domain resources, which is not an
// error.
func EmptyMDResources() ([]domain.MDResource, error) {
	return nil, nil
}

// StubRkeyUnpack ignores the buffer and returns the fixed sentinel key with
// a nil handle. Used by loopback-style components whose peers share the
// local address space.
func StubRkeyUnpack(buf []byte) (domain.Rkey, any, error) {
	return StubRkey, nil, nil
}
