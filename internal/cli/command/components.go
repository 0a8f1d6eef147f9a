package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fabmesh-go/internal/cli/output"
)

// componentRow is one registry entry in command output.
type componentRow struct {
	Name       string `json:"name" yaml:"name"`
	Transports string `json:"transports" yaml:"transports"`
	Devices    string `json:"devices" yaml:"devices"`
	Prefix     string `json:"config_prefix" yaml:"config_prefix" table:"wide"`
}

// ComponentsCommand returns the components listing command.
func ComponentsCommand() *cli.Command {
	return &cli.Command{
		Name:   "components",
		Usage:  "List registered components and their transports",
		Action: componentsList,
	}
}

func componentsList(c *cli.Context) error {
	reg := GetRegistry(c)
	if reg == nil {
		return fmt.Errorf("component registry is not initialized")
	}

	var rows []componentRow
	for _, entry := range reg.Components() {
		comp := entry.Component()

		var tls []string
		for _, tl := range entry.Transports() {
			tls = append(tls, tl.Name())
		}

		var devices []string
		rscs, err := comp.QueryMDResources()
		if err != nil {
			PrintError("query devices for %s: %v", comp.Name(), err)
		}
		for _, r := range rscs {
			devices = append(devices, r.MDName)
		}

		rows = append(rows, componentRow{
			Name:       comp.Name(),
			Transports: strings.Join(tls, ","),
			Devices:    strings.Join(devices, ","),
			Prefix:     comp.ConfigPrefix(),
		})
	}

	flags := ParseGlobalFlags(c)
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, rows)
}
