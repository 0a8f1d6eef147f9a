package registry

import (
	"sync"
	"sync/atomic"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
	"github.com/yndnr/fabmesh-go/pkg/cmap"
)

// Entry pairs a registered component with its ordered transport list.
// Transport order is registration order; lookups use first match.
type Entry struct {
	component  Component
	transports []Transport
}

// Component returns the entry's component.
func (e *Entry) Component() Component {
	return e.component
}

// Transports returns the entry's transports in registration order. The
// slice is shared; callers must not modify it.
func (e *Entry) Transports() []Transport {
	return e.transports
}

// Registry is the process-wide component collection. It is populated by
// explicit registration calls during startup, sealed, and read-only
// thereafter.
type Registry struct {
	mu      sync.Mutex
	sealed  atomic.Bool
	entries []*Entry
	index   *cmap.Map[string, *Entry]
	log     logger.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		index: cmap.New[string, *Entry](),
		log:   logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterComponent adds a component. Component names are unique;
// registration after Seal fails.
func (r *Registry) RegisterComponent(c Component) error {
	if r.sealed.Load() {
		return domain.ErrRegistrySealed.WithDetails(c.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &Entry{component: c}
	if !r.index.SetIfAbsent(c.Name(), entry) {
		return domain.ErrComponentExists.WithDetails(c.Name())
	}
	r.entries = append(r.entries, entry)

	r.log.Debug("component registered", "component", c.Name())
	return nil
}

// RegisterTransport adds a transport under the named component, appending
// to the component's transport list in registration order.
func (r *Registry) RegisterTransport(componentName string, tl Transport) error {
	if r.sealed.Load() {
		return domain.ErrRegistrySealed.WithDetails(tl.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.index.Get(componentName)
	if !ok {
		return domain.ErrComponentUnknown.WithDetails(componentName)
	}
	entry.transports = append(entry.transports, tl)

	r.log.Debug("transport registered",
		"component", componentName,
		"transport", tl.Name())
	return nil
}

// Seal freezes the registry. Lookups after Seal need no synchronization.
func (r *Registry) Seal() {
	r.sealed.Store(true)
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Components returns all entries in registration order.
func (r *Registry) Components() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup finds a component entry by name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	return r.index.Get(name)
}

// FindTransport resolves a transport on a component entry.
//
// With a non-empty tlName the first transport with that exact name wins
// (names are unique per component, so first match is the match). With an
// empty tlName the first transport is returned if the MD capability flags
// advertise sockaddr support. A miss is a sentinel, not an error.
func FindTransport(e *Entry, flags domain.CapFlags, tlName string) (Transport, bool) {
	for _, tl := range e.transports {
		if tlName != "" && tl.Name() == tlName {
			return tl, true
		}
		if tlName == "" && flags&domain.CapSockaddr != 0 {
			return tl, true
		}
	}
	return nil, false
}
