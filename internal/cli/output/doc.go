// Package output provides output formatting for fabmesh-cli.
//
// Command results render as an ASCII table by default; json and yaml
// formats emit the same data machine-readably.
package output
