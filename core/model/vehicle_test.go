package model

import (
	"math"
	"testing"
)

func TestVehicleProfileValidate(t *testing.T) {
	ok := DefaultVehicleProfile()
	if err := ok.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}

	cases := map[string]func(p *VehicleProfile){
		"capacity":    func(p *VehicleProfile) { p.BatteryCapacityKWh = 0 },
		"range":       func(p *VehicleProfile) { p.MaxRangeKm = 0 },
		"efficiency":  func(p *VehicleProfile) { p.EfficiencyKmPerKWh = -1 },
		"power":       func(p *VehicleProfile) { p.MaxChargingPowerKW = 0 },
		"current_low": func(p *VehicleProfile) { p.CurrentSoCPct = -0.1 },
		"current_hi":  func(p *VehicleProfile) { p.CurrentSoCPct = 100.5 },
		"target":      func(p *VehicleProfile) { p.TargetSoCPct = 101 },
		"current_nan": func(p *VehicleProfile) { p.CurrentSoCPct = math.NaN() },
		"range_nan":   func(p *VehicleProfile) { p.MaxRangeKm = math.NaN() },
		"power_inf":   func(p *VehicleProfile) { p.MaxChargingPowerKW = math.Inf(1) },
		"target_nan":  func(p *VehicleProfile) { p.TargetSoCPct = math.NaN() },
	}
	for name, mutate := range cases {
		p := DefaultVehicleProfile()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestVehicleProfileConversions(t *testing.T) {
	p := VehicleProfile{BatteryCapacityKWh: 75, MaxRangeKm: 300}
	if got := p.EnergyAt(40); got != 30 {
		t.Fatalf("expected 30 kWh got %v", got)
	}
	if got := p.RangeAt(50); got != 150 {
		t.Fatalf("expected 150 km got %v", got)
	}
	if got := p.SoCDrop(150); got != 50 {
		t.Fatalf("expected 50 pct got %v", got)
	}
}
