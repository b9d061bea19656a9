package metrics

import (
	"context"

	"github.com/kilianp07/evroute/core/events"
	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/infra/logger"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// StartEventCollector subscribes to bus and forwards planning events to
// sink until ctx is cancelled or the bus is closed. The returned channel is
// closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(sink, ev); err != nil {
					log.Warnf("metrics sink: %v", err)
				}
			}
		}
	}()
	return done
}

func forward(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.PlanEvent:
		return sink.RecordPlan(e)
	case events.StopEvent:
		if r, ok := sink.(coremetrics.StopRecorder); ok {
			return r.RecordStop(e)
		}
	}
	return nil
}
