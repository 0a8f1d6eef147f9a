package command

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fabmesh-go/internal/cli/output"
	"github.com/yndnr/fabmesh-go/internal/fabric/loopback"
	"github.com/yndnr/fabmesh-go/internal/fabric/md"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
)

// resourceRow is one discovered communication resource in command output.
type resourceRow struct {
	Component string `json:"component" yaml:"component"`
	Transport string `json:"transport" yaml:"transport"`
	Device    string `json:"device" yaml:"device"`
	Type      string `json:"type" yaml:"type"`
}

// ResourcesCommand returns the resource discovery command.
func ResourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "resources",
		Usage: "Discover communication resources on a component's memory domain",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "component",
				Aliases: []string{"C"},
				Usage:   "Component to open",
				Value:   loopback.Name,
			},
			&cli.StringFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "Memory-domain device to open (defaults to the component's first device)",
			},
		},
		Action: resourcesList,
	}
}

func resourcesList(c *cli.Context) error {
	entry, err := lookupComponent(c, c.String("component"))
	if err != nil {
		return err
	}
	comp := entry.Component()

	device := c.String("device")
	if device == "" {
		rscs, err := comp.QueryMDResources()
		if err != nil {
			return err
		}
		if len(rscs) > 0 {
			device = rscs[0].MDName
		}
	}

	flags := ParseGlobalFlags(c)
	h, err := md.Open(entry, device, nil, md.Options{
		DebugIdentity: flags.DebugIdentity,
		Logger:        logger.Default(),
	})
	if err != nil {
		return err
	}
	defer h.Close()

	var rows []resourceRow
	for _, r := range h.QueryResources() {
		rows = append(rows, resourceRow{
			Component: comp.Name(),
			Transport: r.TransportName,
			Device:    r.DeviceName,
			Type:      r.DeviceType.String(),
		})
	}

	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, rows)
}
