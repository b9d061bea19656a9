package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evroute/core/catalog"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/infra/osmimport"
)

var importOpts struct {
	output         string
	format         string
	defaultPowerKW float64
	defaultPrice   float64
	procs          int
}

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Manage station snapshots",
}

var stationsImportCmd = &cobra.Command{
	Use:     "import <file.osm|file.osm.pbf>",
	Short:   "Extract charging stations from an OpenStreetMap extract",
	Example: "  evroute stations import france.osm.pbf -o stations.yaml",
	Args:    cobra.ExactArgs(1),
	RunE:    runStationsImport,
}

var stationsCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a station snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stations, err := catalog.LoadFile(args[0], "")
		if err != nil {
			return err
		}
		if err := catalog.Validate(stations); err != nil {
			return err
		}
		printCounts(cmd, args[0], stations)
		return nil
	},
}

func init() {
	f := stationsImportCmd.Flags()
	f.StringVarP(&importOpts.output, "output", "o", "stations.json", "snapshot to write")
	f.StringVar(&importOpts.format, "format", "", "snapshot format (json or yaml); inferred from --output when empty")
	f.Float64Var(&importOpts.defaultPowerKW, "default-power-kw", 22, "power used when a station has no output tag")
	f.Float64Var(&importOpts.defaultPrice, "default-price", 0, "price per kWh used when a station has no charge tag")
	f.IntVar(&importOpts.procs, "procs", 1, "pbf decoder goroutines")
	stationsCmd.AddCommand(stationsImportCmd, stationsCheckCmd)
	rootCmd.AddCommand(stationsCmd)
}

func runStationsImport(cmd *cobra.Command, args []string) error {
	stations, err := osmimport.ImportFile(commandContext(cmd), args[0], osmimport.Options{
		DefaultPowerKW:     importOpts.defaultPowerKW,
		DefaultPricePerKWh: importOpts.defaultPrice,
		Procs:              importOpts.procs,
	})
	if err != nil {
		return err
	}
	if err := catalog.WriteFile(importOpts.output, importOpts.format, stations); err != nil {
		return err
	}
	printCounts(cmd, importOpts.output, stations)
	return nil
}

func printCounts(cmd *cobra.Command, name string, stations []model.Station) {
	c := catalog.Counts(stations)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stations (%d available, %d busy, %d offline)\n",
		name, len(stations), c[model.StationAvailable], c[model.StationBusy], c[model.StationOffline])
}
