package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evroute/app"
	"github.com/kilianp07/evroute/core/catalog"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/planlog"
	"github.com/kilianp07/evroute/core/planner"
	"github.com/kilianp07/evroute/infra/logger"
	"github.com/kilianp07/evroute/pkg/export"
)

type planFlags struct {
	from, to     string
	vehicleFile  string
	stationsFile string
	strategy     string
	format       string
	output       string
	noJournal    bool
	vehicle      model.VehicleProfile
}

var pf = planFlags{vehicle: model.DefaultVehicleProfile()}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan one trip and print the result",
	Example: `  evroute plan --from 48.8566,2.3522 --to 43.2965,5.3698 --stations stations.yaml
  evroute plan --from 48.85,2.35 --to 45.76,4.83 --soc 60 --format html -o trip.html`,
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&pf.from, "from", "", "start as lat,lon")
	f.StringVar(&pf.to, "to", "", "destination as lat,lon")
	f.StringVar(&pf.vehicleFile, "vehicle", "", "vehicle profile file (yaml or json); overrides the vehicle flags")
	f.StringVar(&pf.stationsFile, "stations", "", "station snapshot; defaults to the configured catalog")
	f.StringVar(&pf.strategy, "strategy", "", "scoring strategy ("+strings.Join(planner.StrategyNames(), ", ")+")")
	f.StringVar(&pf.format, "format", "json", "output format: json, csv or html")
	f.StringVarP(&pf.output, "output", "o", "", "output file; stdout when empty")
	f.BoolVar(&pf.noJournal, "no-journal", false, "do not record the attempt in the plan journal")
	f.Float64Var(&pf.vehicle.BatteryCapacityKWh, "battery-kwh", pf.vehicle.BatteryCapacityKWh, "battery capacity in kWh")
	f.Float64Var(&pf.vehicle.MaxRangeKm, "range-km", pf.vehicle.MaxRangeKm, "range on a full battery in km")
	f.Float64Var(&pf.vehicle.EfficiencyKmPerKWh, "efficiency", pf.vehicle.EfficiencyKmPerKWh, "consumption in km per kWh")
	f.Float64Var(&pf.vehicle.MaxChargingPowerKW, "max-power-kw", pf.vehicle.MaxChargingPowerKW, "maximum charging power in kW")
	f.Float64Var(&pf.vehicle.CurrentSoCPct, "soc", pf.vehicle.CurrentSoCPct, "current state of charge in percent")
	f.Float64Var(&pf.vehicle.TargetSoCPct, "target-soc", pf.vehicle.TargetSoCPct, "minimum state of charge on arrival in percent")
	_ = planCmd.MarkFlagRequired("from")
	_ = planCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	start, err := parseCoordinate(pf.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	end, err := parseCoordinate(pf.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	vehicle := pf.vehicle
	if pf.vehicleFile != "" {
		if vehicle, err = loadVehicle(pf.vehicleFile); err != nil {
			return err
		}
	}
	var stations []model.Station
	if pf.stationsFile != "" {
		stations, err = catalog.LoadFile(pf.stationsFile, "")
	} else {
		stations, err = app.LoadStations(ctx, cfg.Catalog)
	}
	if err != nil {
		return fmt.Errorf("stations: %w", err)
	}

	p, err := planner.New(cfg.Planner, planner.WithLogger(logger.New("planner")))
	if err != nil {
		return err
	}
	var svc planner.Service = p
	if !pf.noJournal {
		journal, err := planlog.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		defer func() { _ = journal.Close() }()
		svc = planlog.NewRecorder(p, journal, logger.New("planlog"))
	}

	plan, err := svc.Plan(ctx, planner.Request{
		Start:    start,
		End:      end,
		Vehicle:  vehicle,
		Stations: stations,
		Strategy: pf.strategy,
	})
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if pf.output != "" {
		f, err := os.Create(pf.output)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	switch pf.format {
	case "json":
		return export.WriteJSON(out, plan)
	case "csv":
		return export.WriteCSV(out, plan)
	case "html":
		return export.WriteSoCChart(out, plan, vehicle.CurrentSoCPct)
	default:
		return fmt.Errorf("unknown format %q", pf.format)
	}
}

func parseCoordinate(s string) (model.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return model.Coordinate{}, fmt.Errorf("expected lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	c := model.Coordinate{Lat: lat, Lon: lon}
	return c, c.Validate()
}

// loadVehicle reads a profile; yaml.v3 also accepts JSON documents.
func loadVehicle(path string) (model.VehicleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.VehicleProfile{}, err
	}
	var v model.VehicleProfile
	if err := yaml.Unmarshal(data, &v); err != nil {
		return model.VehicleProfile{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
