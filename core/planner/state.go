package planner

import (
	"math"

	"github.com/kilianp07/evroute/core/model"
)

// State is the simulated vehicle between two planning steps. Values are
// never modified in place; advance returns a fresh State.
type State struct {
	Phase           Phase
	Position        model.Coordinate
	SoCPct          float64
	RemainingKm     float64
	Stops           []model.ChargingStop
	Cost            float64
	EnergyKWh       float64
	ChargingMinutes float64
	WaitMinutes     float64
	Iteration       int
}

func initialState(start model.Coordinate, socPct, totalKm float64) State {
	return State{Phase: PhaseIdle, Position: start, SoCPct: socPct, RemainingKm: totalKm}
}

// needsCharge reports whether the remaining distance exceeds the range left.
func (s State) needsCharge(v model.VehicleProfile) bool {
	return s.RemainingKm > v.RangeAt(s.SoCPct)
}

func (s State) visited(stationID string) bool {
	for _, st := range s.Stops {
		if st.Station.ID == stationID {
			return true
		}
	}
	return false
}

// advance drives to the stop and charges there.
func (s State) advance(stop model.ChargingStop) State {
	stops := make([]model.ChargingStop, len(s.Stops), len(s.Stops)+1)
	copy(stops, s.Stops)
	return State{
		Phase:           PhaseCharging,
		Position:        stop.Station.Position,
		SoCPct:          stop.DepartureSoCPct,
		RemainingKm:     math.Max(0, s.RemainingKm-stop.DistanceFromPreviousKm),
		Stops:           append(stops, stop),
		Cost:            s.Cost + stop.Cost,
		EnergyKWh:       s.EnergyKWh + stop.EnergyKWh,
		ChargingMinutes: s.ChargingMinutes + stop.ChargingMinutes,
		WaitMinutes:     s.WaitMinutes + stop.WaitMinutes,
		Iteration:       s.Iteration + 1,
	}
}

func (s State) withPhase(p Phase) State {
	s.Phase = p
	return s
}
