package md

import (
	"net"
	"testing"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/fabric/conf"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
)

// fakeMD records which operations the handle layer actually delegated.
type fakeMD struct {
	comp *fakeComponent

	attr     domain.MDAttr
	queryErr error

	allocCalls int
	regCalls   int
	closed     bool

	packedPayload []byte
}

func (m *fakeMD) Component() registry.Component { return m.comp }
func (m *fakeMD) Close()                        { m.closed = true }

func (m *fakeMD) Query() (*domain.MDAttr, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	attr := m.attr
	return &attr, nil
}

func (m *fakeMD) MemAlloc(length uint64, flags domain.MemFlags, name string) ([]byte, registry.Mem, error) {
	m.allocCalls++
	return make([]byte, length), &struct{}{}, nil
}

func (m *fakeMD) MemFree(memh registry.Mem) error { return nil }

func (m *fakeMD) MemReg(region []byte, flags domain.MemFlags) (registry.Mem, error) {
	m.regCalls++
	return &struct{}{}, nil
}

func (m *fakeMD) MemDereg(memh registry.Mem) error { return nil }

func (m *fakeMD) MemAdvise(memh registry.Mem, region []byte, advice domain.MemAdvice) error {
	return nil
}

func (m *fakeMD) DetectMemoryType(region []byte) (domain.MemoryType, error) {
	return domain.MemoryHost, nil
}

func (m *fakeMD) IsSockaddrAccessible(addr net.Addr, mode domain.SockaddrAccessibility) bool {
	return false
}

func (m *fakeMD) MkeyPack(memh registry.Mem, buf []byte) error {
	m.packedPayload = buf
	copy(buf, "payload")
	return nil
}

type fakeComponent struct {
	name string
	md   *fakeMD

	openErr error

	unpackBuf []byte
	unpackErr error
}

func (c *fakeComponent) Name() string { return c.name }

func (c *fakeComponent) OpenMD(device string, cfg *conf.Bundle) (registry.MD, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.md, nil
}

func (c *fakeComponent) QueryMDResources() ([]domain.MDResource, error) {
	return registry.SingleMDResource(c)
}

func (c *fakeComponent) MDConfigTable() []conf.Field {
	return []conf.Field{
		{Name: "DEPTH", Default: "64", Doc: "Queue depth", Type: conf.TypeUint},
	}
}

func (c *fakeComponent) ConfigPrefix() string { return "FAKE_" }

func (c *fakeComponent) RkeyUnpack(buf []byte) (domain.Rkey, any, error) {
	c.unpackBuf = append([]byte(nil), buf...)
	if c.unpackErr != nil {
		return 0, nil, c.unpackErr
	}
	return registry.StubRkeyUnpack(buf)
}

func (c *fakeComponent) RkeyPtr(rkey domain.Rkey, handle any, remoteAddr uint64) ([]byte, error) {
	return nil, domain.ErrUnsupported
}

func (c *fakeComponent) RkeyRelease(rkey domain.Rkey, handle any) error { return nil }

type fakeTransport struct {
	name string

	resources []domain.ResourceDesc
	queryErr  error

	openedWith *registry.IfaceParams
	openErr    error
}

func (t *fakeTransport) Name() string { return t.name }

func (t *fakeTransport) QueryResources(md registry.MD) ([]domain.ResourceDesc, error) {
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	return append([]domain.ResourceDesc(nil), t.resources...), nil
}

func (t *fakeTransport) OpenIface(md registry.MD, w *registry.Worker, p *registry.IfaceParams, cfg *conf.Bundle) (registry.Iface, error) {
	t.openedWith = p
	if t.openErr != nil {
		return nil, t.openErr
	}
	return &fakeIface{}, nil
}

func (t *fakeTransport) IfaceConfigTable() []conf.Field {
	return []conf.Field{
		{Name: "MTU", Default: "4096", Doc: "Maximum transfer unit", Type: conf.TypeUint},
	}
}

func (t *fakeTransport) ConfigPrefix() string { return "FAKE_TL_" }

type fakeIface struct{}

func (i *fakeIface) Close() error { return nil }

// newTestEntry registers a fake component plus transports and returns the
// pieces an md test needs.
func newTestEntry(t *testing.T, comp *fakeComponent, tls ...registry.Transport) *registry.Entry {
	t.Helper()

	r := registry.New(registry.WithLogger(logger.Nop()))
	if err := r.RegisterComponent(comp); err != nil {
		t.Fatalf("RegisterComponent: %v", err)
	}
	for _, tl := range tls {
		if err := r.RegisterTransport(comp.Name(), tl); err != nil {
			t.Fatalf("RegisterTransport %s: %v", tl.Name(), err)
		}
	}
	r.Seal()

	entry, ok := r.Lookup(comp.Name())
	if !ok {
		t.Fatalf("Lookup(%s) missed", comp.Name())
	}
	return entry
}

func newTestComponent(name string, flags domain.CapFlags) *fakeComponent {
	c := &fakeComponent{name: name}
	c.md = &fakeMD{
		comp: c,
		attr: domain.MDAttr{
			Flags:          flags,
			MaxRegLength:   1 << 30,
			RkeyPackedSize: 8,
		},
	}
	return c
}

func testOptions() Options {
	return Options{Logger: logger.Nop()}
}

func openTestHandle(t *testing.T, comp *fakeComponent, opts Options, tls ...registry.Transport) *Handle {
	t.Helper()
	entry := newTestEntry(t, comp, tls...)
	h, err := Open(entry, comp.Name(), nil, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return h
}
