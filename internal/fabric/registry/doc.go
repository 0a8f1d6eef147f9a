// Package registry holds the process-wide set of memory-domain components
// and the transports registered under them.
//
// A Registry is constructed explicitly at startup: components and
// transports are registered by explicit calls, in order, and the registry
// is then sealed. After Seal the registry is read-only and lookups need no
// synchronization. Components and transports are plain interface values;
// there are no function-pointer tables and no registration side effects at
// package load time.
package registry
