package metrics

import (
	"errors"

	"github.com/kilianp07/evroute/core/events"
)

// MultiSink fans records out to several sinks. Every sink is tried; the
// errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordPlan(ev events.PlanEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordStop forwards to sinks implementing StopRecorder.
func (m *MultiSink) RecordStop(ev events.StopEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(StopRecorder); ok {
			if err := r.RecordStop(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordCatalogSize forwards to sinks implementing CatalogRecorder.
func (m *MultiSink) RecordCatalogSize(total, available int) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(CatalogRecorder); ok {
			if err := r.RecordCatalogSize(total, available); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every sink holding a connection.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		CloseSink(s)
	}
}

// CloseSink releases s when it holds a connection.
func CloseSink(s MetricsSink) {
	switch c := s.(type) {
	case interface{ Close() }:
		c.Close()
	case interface{ Disconnect() }:
		c.Disconnect()
	}
}
