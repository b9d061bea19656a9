// Package export renders route plans for people and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/evroute/core/model"
)

// WriteJSON writes the plan to w as indented JSON.
func WriteJSON(w io.Writer, plan *model.RoutePlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

var csvHeader = []string{
	"stop", "station_id", "station_name", "lat", "lon",
	"distance_from_previous_km", "arrival_soc_pct", "departure_soc_pct",
	"energy_kwh", "charging_minutes", "wait_minutes", "cost",
}

// WriteCSV writes one row per charging stop.
func WriteCSV(w io.Writer, plan *model.RoutePlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, s := range plan.Stops {
		rec := []string{
			strconv.Itoa(i + 1),
			s.Station.ID,
			s.Station.Name,
			num(s.Station.Position.Lat, 6),
			num(s.Station.Position.Lon, 6),
			num(s.DistanceFromPreviousKm, 3),
			num(s.ArrivalSoCPct, 2),
			num(s.DepartureSoCPct, 2),
			num(s.EnergyKWh, 3),
			num(s.ChargingMinutes, 1),
			num(s.WaitMinutes, 1),
			num(s.Cost, 2),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
