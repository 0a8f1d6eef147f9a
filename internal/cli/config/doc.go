// Package config defines the CLI configuration structure.
package config
