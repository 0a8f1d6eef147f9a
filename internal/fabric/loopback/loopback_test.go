package loopback

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	fmd "github.com/yndnr/fabmesh-go/internal/fabric/md"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
)

func newTestHandle(t *testing.T) *fmd.Handle {
	t.Helper()

	r := registry.New(registry.WithLogger(logger.Nop()))
	if err := Register(r, WithLogger(logger.Nop())); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Seal()

	entry, ok := r.Lookup(Name)
	if !ok {
		t.Fatal("Lookup(loopback) missed")
	}

	h, err := fmd.Open(entry, deviceName, nil, fmd.Options{Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func TestRegister_ComponentAndTransport(t *testing.T) {
	r := registry.New(registry.WithLogger(logger.Nop()))
	if err := Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}

	entry, ok := r.Lookup(Name)
	if !ok {
		t.Fatal("component not registered")
	}
	if len(entry.Transports()) != 1 || entry.Transports()[0].Name() != Name {
		t.Fatalf("transports = %v", entry.Transports())
	}

	rscs, err := entry.Component().QueryMDResources()
	if err != nil || len(rscs) != 1 || rscs[0].MDName != Name {
		t.Fatalf("QueryMDResources = %v, %v", rscs, err)
	}
}

func TestOpenMD_UnknownDevice(t *testing.T) {
	c := NewComponent(WithLogger(logger.Nop()))

	if _, err := c.OpenMD("mlx5_0", nil); !errors.Is(err, domain.ErrNoDevice) {
		t.Fatalf("err = %v, want ErrNoDevice", err)
	}
}

func TestOpenMD_RejectsBadAlignment(t *testing.T) {
	c := NewComponent(WithLogger(logger.Nop()))

	cfg, err := fmd.MDConfigRead(c, "")
	if err != nil {
		t.Fatalf("MDConfigRead: %v", err)
	}
	defer cfg.Release()

	if err := cfg.Set(optAddrAlign, "48"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.OpenMD(deviceName, cfg); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("err = %v, want ErrInvalidParam", err)
	}
}

func TestMDConfig_Defaults(t *testing.T) {
	c := NewComponent(WithLogger(logger.Nop()))

	cfg, err := fmd.MDConfigRead(c, "")
	if err != nil {
		t.Fatalf("MDConfigRead: %v", err)
	}
	defer cfg.Release()

	if prio, err := cfg.Uint(optMemPrio); err != nil || prio != 1000 {
		t.Fatalf("%s = %d, %v, want 1000", optMemPrio, prio, err)
	}
	if ovh, err := cfg.Duration(optOverhead); err != nil || ovh != 90*time.Nanosecond {
		t.Fatalf("%s = %v, %v, want 90ns", optOverhead, ovh, err)
	}
	if modes, err := cfg.Bits(optRegModes); err != nil || modes != 3 {
		t.Fatalf("%s = %d, %v, want read|write = 3", optRegModes, modes, err)
	}
	if on, err := cfg.Bool(optRcacheable); err != nil || !on {
		t.Fatalf("%s = %v, %v, want true", optRcacheable, on, err)
	}
}

func TestQuery_Capabilities(t *testing.T) {
	h := newTestHandle(t)

	attr, err := h.Query()
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if attr.ComponentName != Name {
		t.Fatalf("ComponentName = %q, want %q", attr.ComponentName, Name)
	}
	want := domain.CapAlloc | domain.CapReg | domain.CapRkeyPtr | domain.CapAdvise
	if attr.Flags != want {
		t.Fatalf("Flags = %v, want %v", attr.Flags, want)
	}
	if attr.RkeyPackedSize != rkeySize {
		t.Fatalf("RkeyPackedSize = %d, want %d", attr.RkeyPackedSize, rkeySize)
	}
}

func TestMemAllocFree_RoundTrip(t *testing.T) {
	h := newTestHandle(t)

	buf, memh, err := h.MemAlloc(4096, domain.MemAccessRMA, "test-buf")
	if err != nil {
		t.Fatalf("MemAlloc: %v", err)
	}
	if len(buf) != 4096 {
		t.Fatalf("alloc = %d bytes, want 4096", len(buf))
	}

	if err := h.MemDereg(memh); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("MemDereg on allocated region err = %v, want ErrInvalidParam", err)
	}
	if err := h.MemFree(memh); err != nil {
		t.Fatalf("MemFree: %v", err)
	}
	if err := h.MemFree(memh); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("double free err = %v, want ErrInvalidParam", err)
	}
}

func TestMemRegDereg_RoundTrip(t *testing.T) {
	h := newTestHandle(t)

	region := make([]byte, 256)
	memh, err := h.MemReg(region, domain.MemAccessRead)
	if err != nil {
		t.Fatalf("MemReg: %v", err)
	}

	if err := h.MemAdvise(memh, region[:64], domain.AdviceWillNeed); err != nil {
		t.Fatalf("MemAdvise: %v", err)
	}
	if err := h.MemFree(memh); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("MemFree on registered region err = %v, want ErrInvalidParam", err)
	}
	if err := h.MemDereg(memh); err != nil {
		t.Fatalf("MemDereg: %v", err)
	}
}

func TestRkey_PackUnpackPtr(t *testing.T) {
	h := newTestHandle(t)
	comp := h.Entry().Component()

	buf, memh, err := h.MemAlloc(1024, domain.MemAccessRMA, "rkey-buf")
	if err != nil {
		t.Fatalf("MemAlloc: %v", err)
	}
	copy(buf, "hello fabric")

	packed := make([]byte, rkeySize)
	if err := h.MkeyPack(memh, packed); err != nil {
		t.Fatalf("MkeyPack: %v", err)
	}

	b, err := fmd.UnpackRkey(comp, packed, fmd.Options{Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("UnpackRkey: %v", err)
	}
	defer fmd.ReleaseRkey(comp, b)

	// The rkey value is the region's synthetic base; offsets resolve
	// into the backing buffer.
	base := uint64(b.Rkey)
	mem, err := fmd.RkeyPtr(comp, b, base+6)
	if err != nil {
		t.Fatalf("RkeyPtr: %v", err)
	}
	if !bytes.HasPrefix(mem, []byte("fabric")) {
		t.Fatalf("resolved memory = %q, want suffix of the buffer", mem[:6])
	}

	// Outside the keyed region.
	if _, err := fmd.RkeyPtr(comp, b, base+4096); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("out-of-range err = %v, want ErrInvalidParam", err)
	}
}

func TestRkey_CorruptPayload(t *testing.T) {
	h := newTestHandle(t)
	comp := h.Entry().Component()

	_, memh, err := h.MemAlloc(64, domain.MemAccessRead, "x")
	if err != nil {
		t.Fatalf("MemAlloc: %v", err)
	}

	packed := make([]byte, rkeySize)
	if err := h.MkeyPack(memh, packed); err != nil {
		t.Fatalf("MkeyPack: %v", err)
	}

	packed[8] ^= 0xff
	if _, err := fmd.UnpackRkey(comp, packed, fmd.Options{Logger: logger.Nop()}); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("corrupt payload err = %v, want ErrInvalidParam", err)
	}

	if _, err := fmd.UnpackRkey(comp, packed[:10], fmd.Options{Logger: logger.Nop()}); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("short payload err = %v, want ErrInvalidParam", err)
	}
}

func TestRkey_DebugIdentityEndToEnd(t *testing.T) {
	r := registry.New(registry.WithLogger(logger.Nop()))
	if err := Register(r, WithLogger(logger.Nop())); err != nil {
		t.Fatalf("Register: %v", err)
	}
	entry, _ := r.Lookup(Name)

	opts := fmd.Options{DebugIdentity: true, Logger: logger.Nop()}
	h, err := fmd.Open(entry, deviceName, nil, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	attr, err := h.Query()
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	_, memh, err := h.MemAlloc(128, domain.MemAccessRMA, "tagged")
	if err != nil {
		t.Fatalf("MemAlloc: %v", err)
	}

	packed := make([]byte, attr.RkeyPackedSize)
	if err := h.MkeyPack(memh, packed); err != nil {
		t.Fatalf("MkeyPack: %v", err)
	}

	if _, err := fmd.UnpackRkey(entry.Component(), packed, opts); err != nil {
		t.Fatalf("UnpackRkey: %v", err)
	}
}

func TestQueryResources_SingleSelfDevice(t *testing.T) {
	h := newTestHandle(t)

	rscs := h.QueryResources()
	if len(rscs) != 1 {
		t.Fatalf("resources = %d, want 1", len(rscs))
	}
	if rscs[0].TransportName != Name || rscs[0].DeviceType != domain.DeviceSelf {
		t.Fatalf("resource = %+v", rscs[0])
	}
}

func TestOpenIface_DeviceMode(t *testing.T) {
	h := newTestHandle(t)
	w := registry.NewWorker(logger.Nop())

	params := &registry.IfaceParams{
		OpenMode: domain.OpenModeDevice,
		Device:   registry.DeviceParams{TransportName: Name, DeviceName: deviceName},
	}
	opened, err := h.OpenIface(w, params, nil)
	if err != nil {
		t.Fatalf("OpenIface: %v", err)
	}

	li, ok := opened.(*iface)
	if !ok {
		t.Fatalf("iface type = %T", opened)
	}
	if li.SegSize() != 8*1024 {
		t.Fatalf("SegSize = %d, want 8192 from the default", li.SegSize())
	}
	if li.PollInterval() != 10*time.Microsecond {
		t.Fatalf("PollInterval = %v, want 10us from the default", li.PollInterval())
	}

	if err := opened.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := opened.Close(); !errors.Is(err, domain.ErrInvalidParam) {
		t.Fatalf("double close err = %v, want ErrInvalidParam", err)
	}
}

func TestOpenIface_SockaddrModeMisses(t *testing.T) {
	h := newTestHandle(t)
	w := registry.NewWorker(logger.Nop())

	params := &registry.IfaceParams{OpenMode: domain.OpenModeSockaddrClient}
	if _, err := h.OpenIface(w, params, nil); !errors.Is(err, domain.ErrNoDevice) {
		t.Fatalf("err = %v, want ErrNoDevice", err)
	}
}

func TestIfaceConfigRead_EnvOverride(t *testing.T) {
	h := newTestHandle(t)

	t.Setenv("FMTEST_LOOP_TL_SEG_SIZE", "64K")

	cfg, err := h.IfaceConfigRead(Name, "FMTEST_")
	if err != nil {
		t.Fatalf("IfaceConfigRead: %v", err)
	}
	defer cfg.Release()

	seg, err := cfg.Uint("SEG_SIZE")
	if err != nil || seg != 64*1024 {
		t.Fatalf("SEG_SIZE = %d, %v, want 65536", seg, err)
	}
}
