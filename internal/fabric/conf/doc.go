// Package conf implements the table-driven configuration subsystem.
//
// A component or transport describes its options as an ordered field table.
// Read produces a Bundle: every field initialized from its default literal
// and overridden by the configured string sources (environment variables,
// optional YAML sections). The bundle is the unit of release; no partially
// initialized bundle ever escapes Read.
//
// Field values are typed. The type tag governs both the parse format and
// the stringify format used by Get and Set.
package conf
