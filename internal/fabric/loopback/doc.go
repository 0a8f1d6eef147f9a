// Package loopback is a self-contained component for same-process fabric
// use and for exercising the full component contract without hardware. Its
// memory domain allocates plain heap buffers, tracks registrations in a
// shared table keyed by registration id, and packs remote keys as a small
// checksummed binary record that its own unpacker can translate back into
// local memory.
package loopback
