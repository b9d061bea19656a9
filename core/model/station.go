package model

// StationStatus mirrors the directory status of a charging station.
type StationStatus string

const (
	StationAvailable StationStatus = "available"
	StationBusy      StationStatus = "busy"
	StationOffline   StationStatus = "offline"
)

// Station is a charging station as published by the station directory.
type Station struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name,omitempty" yaml:"name,omitempty"`
	Address       string        `json:"address,omitempty" yaml:"address,omitempty"`
	Position      Coordinate    `json:"position" yaml:"position"`
	PowerKW       float64       `json:"power_kw" yaml:"power_kw"`
	PricePerKWh   float64       `json:"price_per_kwh" yaml:"price_per_kwh"`
	FreeSlots     int           `json:"free_slots" yaml:"free_slots"`
	TotalSlots    int           `json:"total_slots" yaml:"total_slots"`
	ConnectorType string        `json:"connector_type,omitempty" yaml:"connector_type,omitempty"`
	Status        StationStatus `json:"status,omitempty" yaml:"status,omitempty"`
	// EstimatedWaitMinutes is nil when the directory has no queue estimate.
	EstimatedWaitMinutes *float64 `json:"estimated_wait_minutes,omitempty" yaml:"estimated_wait_minutes,omitempty"`
}

// Available reports whether a vehicle could plug in right now.
func (s Station) Available() bool {
	return s.FreeSlots > 0 && s.Status != StationOffline
}

// WaitMinutes returns the queue estimate or zero when unknown.
func (s Station) WaitMinutes() float64 {
	if s.EstimatedWaitMinutes == nil || *s.EstimatedWaitMinutes < 0 {
		return 0
	}
	return *s.EstimatedWaitMinutes
}

// FreeShare returns the share of slots that are free, in [0,1].
func (s Station) FreeShare() float64 {
	if s.TotalSlots <= 0 {
		if s.FreeSlots > 0 {
			return 1
		}
		return 0
	}
	r := float64(s.FreeSlots) / float64(s.TotalSlots)
	if r > 1 {
		return 1
	}
	return r
}
