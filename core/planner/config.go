package planner

import (
	"fmt"

	"github.com/kilianp07/evroute/core/factory"
)

// RangePolicy decides how candidates beyond the current range are handled.
type RangePolicy string

const (
	// RangeFilter never offers a station the vehicle cannot reach.
	RangeFilter RangePolicy = "filter"
	// RangeReject lets the strategy pick freely and fails the plan when the
	// chosen station cannot be reached.
	RangeReject RangePolicy = "reject"
)

// Config holds the planner tuning knobs.
type Config struct {
	SearchRadiusKm     float64              `json:"search_radius_km"`
	BufferPct          float64              `json:"buffer_pct"`
	MaxDepartureSoCPct float64              `json:"max_departure_soc_pct"`
	AverageSpeedKmh    float64              `json:"average_speed_kmh"`
	MinChargeMinutes   float64              `json:"min_charge_minutes"`
	MaxIterations      int                  `json:"max_iterations"`
	RangePolicy        RangePolicy          `json:"range_policy"`
	Strategy           factory.ModuleConfig `json:"strategy"`
}

// DefaultConfig returns the reference planner settings.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values with the reference settings.
func (c *Config) SetDefaults() {
	if c.SearchRadiusKm == 0 {
		c.SearchRadiusKm = 50
	}
	if c.BufferPct == 0 {
		c.BufferPct = 20
	}
	if c.MaxDepartureSoCPct == 0 {
		c.MaxDepartureSoCPct = 90
	}
	if c.AverageSpeedKmh == 0 {
		c.AverageSpeedKmh = 80
	}
	if c.MinChargeMinutes == 0 {
		c.MinChargeMinutes = 15
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 64
	}
	if c.RangePolicy == "" {
		c.RangePolicy = RangeFilter
	}
	if c.Strategy.Type == "" {
		c.Strategy.Type = StrategyNearest
	}
}

// Validate checks the settings after defaults were applied.
func (c Config) Validate() error {
	if c.SearchRadiusKm < 0 {
		return fmt.Errorf("search_radius_km must be positive")
	}
	if c.BufferPct < 0 || c.BufferPct > 100 {
		return fmt.Errorf("buffer_pct must be within [0,100]")
	}
	if c.MaxDepartureSoCPct <= 0 || c.MaxDepartureSoCPct > 100 {
		return fmt.Errorf("max_departure_soc_pct must be within (0,100]")
	}
	if c.AverageSpeedKmh <= 0 {
		return fmt.Errorf("average_speed_kmh must be positive")
	}
	if c.MinChargeMinutes < 0 {
		return fmt.Errorf("min_charge_minutes must not be negative")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	if c.RangePolicy != RangeFilter && c.RangePolicy != RangeReject {
		return fmt.Errorf("unknown range_policy %s", c.RangePolicy)
	}
	return nil
}
