package events

import "time"

// Event is implemented by every planning event.
type Event interface {
	EventName() string
}

// Publisher accepts events. *eventbus.TypedBus[Event] satisfies it.
type Publisher interface {
	Publish(Event)
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// PlanEvent summarises one planning call.
type PlanEvent struct {
	PlanID          string
	Outcome         string
	Strategy        string
	Stops           int
	TotalDistanceKm float64
	TotalCost       float64
	ChargingMinutes float64
	TotalMinutes    float64
	Err             error
	Duration        time.Duration
	Time            time.Time
}

func (PlanEvent) EventName() string { return "plan" }

// StopEvent describes a selected charging stop.
type StopEvent struct {
	PlanID          string
	Strategy        string
	Index           int
	StationID       string
	DistanceKm      float64
	ArrivalSoCPct   float64
	DepartureSoCPct float64
	EnergyKWh       float64
	ChargingMinutes float64
	Cost            float64
	Time            time.Time
}

func (StopEvent) EventName() string { return "stop" }
