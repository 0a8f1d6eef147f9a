// Package metric provides Prometheus metrics for FabMesh.
//
// It exposes counters for resource discovery, memory-domain operations,
// and remote-key handling. All Fabric methods are nil-receiver safe so
// instrumentation stays optional at call sites.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rkey unpack result labels.
const (
	ResultOK               = "ok"
	ResultIdentityMismatch = "identity_mismatch"
	ResultError            = "error"
)

// Fabric holds the fabric-layer metric set.
type Fabric struct {
	// DiscoveryFailures counts per-transport resource query failures.
	DiscoveryFailures *prometheus.CounterVec

	// ResourcesDiscovered counts resources returned by discovery.
	ResourcesDiscovered *prometheus.CounterVec

	// MemOps counts memory-domain operations by kind.
	MemOps *prometheus.CounterVec

	// MemOpErrors counts rejected or failed memory-domain operations.
	MemOpErrors *prometheus.CounterVec

	// RkeyUnpacks counts remote-key unpack attempts by result.
	RkeyUnpacks *prometheus.CounterVec

	// OpenMDs tracks currently open memory domains.
	OpenMDs *prometheus.GaugeVec
}

// NewFabric creates the fabric metric set registered on reg. A nil
// registerer uses the default Prometheus registry.
func NewFabric(reg prometheus.Registerer) *Fabric {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Fabric{
		DiscoveryFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabmesh",
			Name:      "discovery_failures_total",
			Help:      "Transport resource queries that failed and were skipped.",
		}, []string{"component", "transport"}),

		ResourcesDiscovered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabmesh",
			Name:      "resources_discovered_total",
			Help:      "Resource descriptors returned by discovery.",
		}, []string{"component", "transport"}),

		MemOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabmesh",
			Name:      "mem_ops_total",
			Help:      "Memory-domain operations by kind.",
		}, []string{"component", "op"}),

		MemOpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabmesh",
			Name:      "mem_op_errors_total",
			Help:      "Memory-domain operations rejected or failed.",
		}, []string{"component", "op"}),

		RkeyUnpacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabmesh",
			Name:      "rkey_unpacks_total",
			Help:      "Remote-key unpack attempts by result.",
		}, []string{"component", "result"}),

		OpenMDs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fabmesh",
			Name:      "open_mds",
			Help:      "Currently open memory domains.",
		}, []string{"component"}),
	}
}

// ObserveDiscoveryFailure records a skipped transport query.
func (f *Fabric) ObserveDiscoveryFailure(component, transport string) {
	if f == nil {
		return
	}
	f.DiscoveryFailures.WithLabelValues(component, transport).Inc()
}

// ObserveResources records resources contributed by one transport.
func (f *Fabric) ObserveResources(component, transport string, count int) {
	if f == nil {
		return
	}
	f.ResourcesDiscovered.WithLabelValues(component, transport).Add(float64(count))
}

// ObserveMemOp records one memory-domain operation.
func (f *Fabric) ObserveMemOp(component, op string, err error) {
	if f == nil {
		return
	}
	f.MemOps.WithLabelValues(component, op).Inc()
	if err != nil {
		f.MemOpErrors.WithLabelValues(component, op).Inc()
	}
}

// ObserveRkeyUnpack records one remote-key unpack attempt.
func (f *Fabric) ObserveRkeyUnpack(component, result string) {
	if f == nil {
		return
	}
	f.RkeyUnpacks.WithLabelValues(component, result).Inc()
}

// MDOpened tracks an MD open.
func (f *Fabric) MDOpened(component string) {
	if f == nil {
		return
	}
	f.OpenMDs.WithLabelValues(component).Inc()
}

// MDClosed tracks an MD close.
func (f *Fabric) MDClosed(component string) {
	if f == nil {
		return
	}
	f.OpenMDs.WithLabelValues(component).Dec()
}

// Handler returns the /metrics HTTP handler for a gatherer. A nil gatherer
// uses the default Prometheus registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
