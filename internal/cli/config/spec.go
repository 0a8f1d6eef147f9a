package config

import "fmt"

// CLIConfig is the configuration for fabmesh-cli.
type CLIConfig struct {
	// Log controls diagnostic output.
	Log struct {
		Level  string `koanf:"level" yaml:"level"`
		Format string `koanf:"format" yaml:"format"`
	} `koanf:"log" yaml:"log"`

	// Output is the default output format: table, json, yaml.
	Output string `koanf:"output" yaml:"output"`

	// Metrics configures the exposition endpoint served by watch mode.
	Metrics struct {
		Address string `koanf:"address" yaml:"address"`
	} `koanf:"metrics" yaml:"metrics"`

	// Fabric holds fabric-layer settings.
	Fabric struct {
		// DebugIdentity enables the component-identity guard on packed
		// remote keys. Both sides of a key exchange must agree.
		DebugIdentity bool `koanf:"debug_identity" yaml:"debug_identity"`

		// EnvPrefix is the environment prefix for component option
		// overrides (e.g. FABMESH_LOOP_RCACHE_OVERHEAD).
		EnvPrefix string `koanf:"env_prefix" yaml:"env_prefix"`
	} `koanf:"fabric" yaml:"fabric"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	cfg := &CLIConfig{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Output = "table"
	cfg.Metrics.Address = "127.0.0.1:9464"
	cfg.Fabric.EnvPrefix = "FABMESH_"
	return cfg
}

// Validate checks the configuration for values the CLI cannot act on.
func (c *CLIConfig) Validate() error {
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (want table, json or yaml)", c.Output)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if c.Metrics.Address == "" {
		return fmt.Errorf("metrics address must not be empty")
	}
	return nil
}
