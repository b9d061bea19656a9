package planner

import "math"

// MinChargeMinutes is the plug-in overhead applied to every stop.
const MinChargeMinutes = 15.0

// ChargeEstimate is the sizing of one charging session.
type ChargeEstimate struct {
	EnergyKWh float64
	Minutes   float64
	PowerKW   float64
}

// ChargeEstimator sizes a charging session with a linear charge model.
type ChargeEstimator struct {
	MinMinutes float64
}

// EstimateCharge sizes a session with the default dwell floor.
func EstimateCharge(currentPct, targetPct, capacityKWh, chargerKW, vehicleMaxKW float64) (ChargeEstimate, error) {
	return ChargeEstimator{MinMinutes: MinChargeMinutes}.Estimate(currentPct, targetPct, capacityKWh, chargerKW, vehicleMaxKW)
}

// Estimate returns the energy and dwell time needed to go from currentPct to
// targetPct. The power is the lower of the charger and vehicle limits.
func (e ChargeEstimator) Estimate(currentPct, targetPct, capacityKWh, chargerKW, vehicleMaxKW float64) (ChargeEstimate, error) {
	energy := capacityKWh * (targetPct - currentPct) / 100
	if energy < 0 {
		return ChargeEstimate{}, &PlanError{
			Kind:   ErrInvalidChargeTarget,
			Reason: "target below current state of charge",
		}
	}
	power := math.Min(chargerKW, vehicleMaxKW)
	if power <= 0 {
		return ChargeEstimate{}, &PlanError{
			Kind:   ErrInvalidChargeTarget,
			Reason: "no charging power available",
		}
	}
	minutes := energy / power * 60
	if minutes < e.MinMinutes {
		minutes = e.MinMinutes
	}
	return ChargeEstimate{EnergyKWh: energy, Minutes: minutes, PowerKW: power}, nil
}
