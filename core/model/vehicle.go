package model

import (
	"fmt"
	"math"
)

// VehicleProfile is the energy model of the vehicle being routed.
// State of charge values are percentages of BatteryCapacityKWh.
type VehicleProfile struct {
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh" yaml:"battery_capacity_kwh"`
	MaxRangeKm         float64 `json:"max_range_km" yaml:"max_range_km"`
	EfficiencyKmPerKWh float64 `json:"efficiency_km_per_kwh" yaml:"efficiency_km_per_kwh"`
	MaxChargingPowerKW float64 `json:"max_charging_power_kw" yaml:"max_charging_power_kw"`
	CurrentSoCPct      float64 `json:"current_soc_pct" yaml:"current_soc_pct"`
	// TargetSoCPct is the floor the driver wants to keep at arrival.
	TargetSoCPct float64 `json:"target_soc_pct" yaml:"target_soc_pct"`
}

// DefaultVehicleProfile returns the profile used when the caller provides none.
func DefaultVehicleProfile() VehicleProfile {
	return VehicleProfile{
		BatteryCapacityKWh: 75,
		MaxRangeKm:         400,
		EfficiencyKmPerKWh: 5.3,
		MaxChargingPowerKW: 150,
		CurrentSoCPct:      80,
		TargetSoCPct:       20,
	}
}

// Validate checks that the profile can be used for planning.
func (v VehicleProfile) Validate() error {
	for _, f := range []float64{v.BatteryCapacityKWh, v.MaxRangeKm, v.EfficiencyKmPerKWh, v.MaxChargingPowerKW, v.CurrentSoCPct, v.TargetSoCPct} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("vehicle profile values must be finite numbers")
		}
	}
	switch {
	case v.BatteryCapacityKWh <= 0:
		return fmt.Errorf("battery capacity must be positive")
	case v.MaxRangeKm <= 0:
		return fmt.Errorf("max range must be positive")
	case v.EfficiencyKmPerKWh <= 0:
		return fmt.Errorf("efficiency must be positive")
	case v.MaxChargingPowerKW <= 0:
		return fmt.Errorf("max charging power must be positive")
	case v.CurrentSoCPct < 0 || v.CurrentSoCPct > 100:
		return fmt.Errorf("current soc %.2f outside [0,100]", v.CurrentSoCPct)
	case v.TargetSoCPct < 0 || v.TargetSoCPct > 100:
		return fmt.Errorf("target soc %.2f outside [0,100]", v.TargetSoCPct)
	}
	return nil
}

// EnergyAt converts a state of charge percentage into kWh.
func (v VehicleProfile) EnergyAt(socPct float64) float64 {
	return v.BatteryCapacityKWh * socPct / 100
}

// RangeAt converts a state of charge percentage into drivable kilometres.
func (v VehicleProfile) RangeAt(socPct float64) float64 {
	return v.MaxRangeKm * socPct / 100
}

// SoCDrop returns the percentage points consumed by driving distanceKm.
func (v VehicleProfile) SoCDrop(distanceKm float64) float64 {
	return distanceKm / v.MaxRangeKm * 100
}
