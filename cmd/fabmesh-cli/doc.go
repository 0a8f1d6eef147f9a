// Package main provides the entry point for fabmesh-cli.
//
// The CLI tool provides command-line access to the in-process fabric for:
//
//   - Component and transport inspection
//   - Resource discovery on memory domains
//   - Component configuration display and validation
//   - Metrics exposition in watch mode
//
// Usage:
//
//	fabmesh-cli [command] [flags]
//	fabmesh-cli resources --component loopback --output json
//	fabmesh-cli config check fabric.yaml
package main
