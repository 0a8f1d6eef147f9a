// Package command provides CLI command definitions for fabmesh-cli.
//
// It uses urfave/cli/v2 for command parsing. Commands operate on an
// in-process component registry built during startup; there is no server
// to connect to.
package command
