// Package md implements the memory-domain handle layer: the uniform
// contract upper layers use to open memory domains, discover transport
// resources, allocate and register memory, and pack and unpack remote keys
// without knowing which component family is underneath.
//
// Every operation is a synchronous delegation to the opened component. The
// layer's own value is the contract around the delegation: parameter checks
// that never reach the component, partial-failure tolerance during
// discovery, the component-identity guard on the remote-key wire, and
// uniform logging and metrics.
package md
