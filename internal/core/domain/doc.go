// Package domain defines the core domain model for FabMesh.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Resource descriptors advertised by memory-domain components and
//     their transports during discovery
//   - Memory access flags, capability flags, and memory types
//   - Interface open modes and remote-key value types
//   - The structured error taxonomy shared by every layer
package domain
