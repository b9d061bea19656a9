// Package scenarios runs end-to-end planning fixtures described in YAML.
// Every trip is laid out along the equator so distances can be written in
// kilometres.
package scenarios

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evroute/core/geo"
	"github.com/kilianp07/evroute/core/model"
)

type StationDef struct {
	ID          string              `yaml:"id"`
	Km          float64             `yaml:"km"`
	PowerKW     float64             `yaml:"power_kw"`
	PricePerKWh float64             `yaml:"price_per_kwh"`
	FreeSlots   int                 `yaml:"free_slots"`
	TotalSlots  int                 `yaml:"total_slots"`
	Status      model.StationStatus `yaml:"status,omitempty"`
	WaitMinutes *float64            `yaml:"wait_minutes,omitempty"`
}

func (s StationDef) ToModel() model.Station {
	return model.Station{
		ID:                   s.ID,
		Name:                 s.ID,
		Position:             AtKm(s.Km),
		PowerKW:              s.PowerKW,
		PricePerKWh:          s.PricePerKWh,
		FreeSlots:            s.FreeSlots,
		TotalSlots:           s.TotalSlots,
		Status:               s.Status,
		EstimatedWaitMinutes: s.WaitMinutes,
	}
}

// CorridorDef generates identical stations every SpacingKm along the trip.
type CorridorDef struct {
	SpacingKm   float64 `yaml:"spacing_km"`
	PowerKW     float64 `yaml:"power_kw"`
	PricePerKWh float64 `yaml:"price_per_kwh"`
	FreeSlots   int     `yaml:"free_slots"`
}

type PlannerDef struct {
	SearchRadiusKm float64 `yaml:"search_radius_km"`
	Strategy       string  `yaml:"strategy"`
	RangePolicy    string  `yaml:"range_policy"`
	MaxIterations  int     `yaml:"max_iterations"`
}

type Expected struct {
	Outcome         string   `yaml:"outcome"`
	Stops           *int     `yaml:"stops,omitempty"`
	MinStops        int      `yaml:"min_stops,omitempty"`
	MinDepartureSoC *float64 `yaml:"min_departure_soc,omitempty"`
	MaxDepartureSoC *float64 `yaml:"max_departure_soc,omitempty"`
	CostAbove       *float64 `yaml:"cost_above,omitempty"`
	StationIDs      []string `yaml:"station_ids,omitempty"`
}

type Scenario struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	DistanceKm  float64              `yaml:"distance_km"`
	Vehicle     model.VehicleProfile `yaml:"vehicle"`
	Stations    []StationDef         `yaml:"stations,omitempty"`
	Corridor    *CorridorDef         `yaml:"corridor,omitempty"`
	Planner     PlannerDef           `yaml:"planner,omitempty"`
	Expected    Expected             `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario without name", path)
	}
	return &sc, nil
}

// AtKm is the point km kilometres east of (0,0) along the equator.
func AtKm(km float64) model.Coordinate {
	return model.Coordinate{Lat: 0, Lon: km / (geo.EarthRadiusKm * math.Pi / 180)}
}

// StationList expands the explicit stations and the corridor.
func (sc *Scenario) StationList() []model.Station {
	out := make([]model.Station, 0, len(sc.Stations))
	for _, s := range sc.Stations {
		out = append(out, s.ToModel())
	}
	if c := sc.Corridor; c != nil && c.SpacingKm > 0 {
		for km := c.SpacingKm; km < sc.DistanceKm; km += c.SpacingKm {
			out = append(out, StationDef{
				ID:          fmt.Sprintf("corridor-%04.0f", km),
				Km:          km,
				PowerKW:     c.PowerKW,
				PricePerKWh: c.PricePerKWh,
				FreeSlots:   c.FreeSlots,
				TotalSlots:  c.FreeSlots,
			}.ToModel())
		}
	}
	return out
}
