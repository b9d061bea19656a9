package metrics

import "github.com/kilianp07/evroute/core/events"

// MetricsSink records the outcome of planning calls.
type MetricsSink interface {
	RecordPlan(ev events.PlanEvent) error
}

// StopRecorder is implemented by sinks that track individual charging stops.
type StopRecorder interface {
	RecordStop(ev events.StopEvent) error
}

// CatalogRecorder is implemented by sinks that track the station snapshot.
type CatalogRecorder interface {
	RecordCatalogSize(total, available int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(events.PlanEvent) error { return nil }
func (NopSink) RecordStop(events.StopEvent) error { return nil }
func (NopSink) RecordCatalogSize(int, int) error  { return nil }
