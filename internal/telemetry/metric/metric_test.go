package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewFabric_CountersWork(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := NewFabric(reg)

	f.ObserveDiscoveryFailure("rc", "rc_verbs")
	f.ObserveDiscoveryFailure("rc", "rc_verbs")
	f.ObserveResources("rc", "rc_mlx5", 3)
	f.ObserveMemOp("rc", "reg", nil)
	f.ObserveMemOp("rc", "reg", errors.New("rejected"))
	f.ObserveRkeyUnpack("rc", ResultIdentityMismatch)
	f.MDOpened("rc")
	f.MDOpened("rc")
	f.MDClosed("rc")

	if got := testutil.ToFloat64(f.DiscoveryFailures.WithLabelValues("rc", "rc_verbs")); got != 2 {
		t.Errorf("discovery failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(f.ResourcesDiscovered.WithLabelValues("rc", "rc_mlx5")); got != 3 {
		t.Errorf("resources discovered = %v, want 3", got)
	}
	if got := testutil.ToFloat64(f.MemOps.WithLabelValues("rc", "reg")); got != 2 {
		t.Errorf("mem ops = %v, want 2", got)
	}
	if got := testutil.ToFloat64(f.MemOpErrors.WithLabelValues("rc", "reg")); got != 1 {
		t.Errorf("mem op errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.RkeyUnpacks.WithLabelValues("rc", ResultIdentityMismatch)); got != 1 {
		t.Errorf("rkey unpacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.OpenMDs.WithLabelValues("rc")); got != 1 {
		t.Errorf("open mds = %v, want 1", got)
	}
}

func TestFabric_NilReceiverIsSafe(t *testing.T) {
	var f *Fabric

	// None of these may panic.
	f.ObserveDiscoveryFailure("rc", "rc_verbs")
	f.ObserveResources("rc", "rc_verbs", 1)
	f.ObserveMemOp("rc", "alloc", nil)
	f.ObserveRkeyUnpack("rc", ResultOK)
	f.MDOpened("rc")
	f.MDClosed("rc")
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := NewFabric(reg)
	f.ObserveResources("rc", "rc_verbs", 5)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "fabmesh_resources_discovered_total") {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
