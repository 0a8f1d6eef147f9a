package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/fabmesh-go/internal/cli/config"
	"github.com/yndnr/fabmesh-go/internal/fabric/loopback"
	"github.com/yndnr/fabmesh-go/internal/fabric/registry"
	"github.com/yndnr/fabmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "fabmesh-cli",
		Usage:   "FabMesh fabric inspection and management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ComponentsCommand(),
			ResourcesCommand(),
			ConfigCommand(),
			WatchCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := cliconfig.Load(c.String("config"))
			if err != nil {
				return err
			}

			level := cfg.Log.Level
			if c.Bool("verbose") {
				level = "debug"
			}
			log := logger.New(logger.Config{Level: level, Format: cfg.Log.Format})
			logger.SetDefault(log)

			reg, err := buildRegistry(log)
			if err != nil {
				return err
			}

			c.App.Metadata["config"] = cfg
			c.App.Metadata["registry"] = reg
			return nil
		},
	}

	return app
}

// buildRegistry registers every built-in component and seals the result.
func buildRegistry(log logger.Logger) (*registry.Registry, error) {
	reg := registry.New(registry.WithLogger(log))
	if err := loopback.Register(reg, loopback.WithLogger(log)); err != nil {
		return nil, fmt.Errorf("register loopback: %w", err)
	}
	reg.Seal()
	return reg, nil
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the CLI configuration file",
			EnvVars: []string{"FABMESH_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "debug-identity",
			Usage:   "Prefix packed remote keys with the component name",
			EnvVars: []string{"FABMESH_DEBUG_IDENTITY"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config string

	// Output format
	Output string // table, json, yaml
	Wide   bool

	DebugIdentity bool
	Verbose       bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:        c.String("config"),
		Output:        c.String("output"),
		Wide:          c.Bool("wide"),
		DebugIdentity: c.Bool("debug-identity"),
		Verbose:       c.Bool("verbose"),
	}
}

// GetRegistry retrieves the component registry from context.
func GetRegistry(c *cli.Context) *registry.Registry {
	if reg, ok := c.App.Metadata["registry"].(*registry.Registry); ok {
		return reg
	}
	return nil
}

// GetConfig retrieves the loaded CLI configuration from context.
func GetConfig(c *cli.Context) *cliconfig.CLIConfig {
	if cfg, ok := c.App.Metadata["config"].(*cliconfig.CLIConfig); ok {
		return cfg
	}
	return cliconfig.Default()
}

// lookupComponent resolves a component entry by name with a uniform error.
func lookupComponent(c *cli.Context, name string) (*registry.Entry, error) {
	reg := GetRegistry(c)
	if reg == nil {
		return nil, fmt.Errorf("component registry is not initialized")
	}
	entry, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	return entry, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
