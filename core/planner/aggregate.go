package planner

import (
	"fmt"
	"math"

	"github.com/kilianp07/evroute/core/geo"
	"github.com/kilianp07/evroute/core/model"
)

// assemble turns the final simulation state into a RoutePlan.
func assemble(id, strategy string, req Request, s State, cfg Config, direct bool) *model.RoutePlan {
	v := req.Vehicle
	total := geo.DistanceKm(req.Start, req.End)
	drive := total / cfg.AverageSpeedKmh * 60
	final := math.Max(0, s.SoCPct-v.SoCDrop(s.RemainingKm))

	stops := make([]model.ChargingStop, len(s.Stops))
	copy(stops, s.Stops)

	plan := &model.RoutePlan{
		ID:                   id,
		Strategy:             strategy,
		Direct:               direct,
		TotalDistanceKm:      total,
		TotalDriveMinutes:    drive,
		TotalChargingMinutes: s.ChargingMinutes,
		TotalWaitMinutes:     s.WaitMinutes,
		TotalTimeMinutes:     drive + s.ChargingMinutes + s.WaitMinutes,
		TotalEnergyKWh:       s.EnergyKWh,
		TotalCost:            s.Cost,
		FinalSoCPct:          final,
		EfficiencyPct:        total / v.EfficiencyKmPerKWh / v.BatteryCapacityKWh * 100,
		Stops:                stops,
		Route:                routePoints(req, stops),
	}
	if final < v.TargetSoCPct {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("arrival state of charge %.1f%% is below the %.1f%% target", final, v.TargetSoCPct))
	}
	for _, st := range stops {
		if st.Station.Status == model.StationBusy {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("station %s reported busy", st.Station.ID))
		}
	}
	return plan
}

func routePoints(req Request, stops []model.ChargingStop) []model.RoutePoint {
	pts := make([]model.RoutePoint, 0, len(stops)+2)
	pts = append(pts, model.RoutePoint{Coordinate: req.Start, Kind: model.PointStart, Label: req.StartLabel})
	for _, st := range stops {
		label := st.Station.Name
		if label == "" {
			label = st.Station.ID
		}
		pts = append(pts, model.RoutePoint{Coordinate: st.Station.Position, Kind: model.PointWaypoint, Label: label})
	}
	return append(pts, model.RoutePoint{Coordinate: req.End, Kind: model.PointEnd, Label: req.EndLabel})
}
