package model

// ChargingStop is one planned stop along the route.
type ChargingStop struct {
	Station                Station `json:"station"`
	DistanceFromPreviousKm float64 `json:"distance_from_previous_km"`
	ArrivalSoCPct          float64 `json:"arrival_soc_pct"`
	DepartureSoCPct        float64 `json:"departure_soc_pct"`
	EnergyKWh              float64 `json:"energy_kwh"`
	ChargingMinutes        float64 `json:"charging_minutes"`
	WaitMinutes            float64 `json:"wait_minutes"`
	Cost                   float64 `json:"cost"`
}

// DwellMinutes is the time spent stationary at the stop.
func (s ChargingStop) DwellMinutes() float64 {
	return s.ChargingMinutes + s.WaitMinutes
}

// RoutePlan is the result of one planning call. It is not modified after
// being returned.
type RoutePlan struct {
	ID                   string         `json:"id"`
	Strategy             string         `json:"strategy"`
	Direct               bool           `json:"direct"`
	TotalDistanceKm      float64        `json:"total_distance_km"`
	TotalDriveMinutes    float64        `json:"total_drive_minutes"`
	TotalChargingMinutes float64        `json:"total_charging_minutes"`
	TotalWaitMinutes     float64        `json:"total_wait_minutes"`
	TotalTimeMinutes     float64        `json:"total_time_minutes"`
	TotalEnergyKWh       float64        `json:"total_energy_kwh"`
	TotalCost            float64        `json:"total_cost"`
	FinalSoCPct          float64        `json:"final_soc_pct"`
	EfficiencyPct        float64        `json:"efficiency_pct"`
	Stops                []ChargingStop `json:"stops"`
	Route                []RoutePoint   `json:"route"`
	Warnings             []string       `json:"warnings,omitempty"`
}
