package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/evroute/core/events"
	coremetrics "github.com/kilianp07/evroute/core/metrics"
)

// PromSink records planning outcomes in Prometheus metrics.
type PromSink struct {
	plans    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stops    *prometheus.HistogramVec
	cost     *prometheus.HistogramVec
	charging *prometheus.CounterVec
	stations *prometheus.CounterVec
	catalog  *prometheus.GaugeVec
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg, reusing collectors that
// are already registered. A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evroute_plans_total",
			Help: "Planning calls by outcome and strategy",
		}, []string{"outcome", "strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evroute_plan_duration_seconds",
			Help:    "Wall time spent computing a plan",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"outcome"}),
		stops: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evroute_plan_stops",
			Help:    "Charging stops per successful plan",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12},
		}, []string{"strategy"}),
		cost: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evroute_plan_cost",
			Help:    "Charging cost per successful plan",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"strategy"}),
		charging: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evroute_charging_minutes_total",
			Help: "Planned charging minutes across all stops",
		}, []string{"strategy"}),
		stations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evroute_station_selections_total",
			Help: "Times a station was selected as a stop",
		}, []string{"station_id"}),
		catalog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evroute_catalog_stations",
			Help: "Stations in the current snapshot",
		}, []string{"state"}),
	}
	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.stops, err = register(reg, s.stops); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, s.cost); err != nil {
		return nil, err
	}
	if s.charging, err = register(reg, s.charging); err != nil {
		return nil, err
	}
	if s.stations, err = register(reg, s.stations); err != nil {
		return nil, err
	}
	if s.catalog, err = register(reg, s.catalog); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the call and, on success, observes stops and cost.
func (s *PromSink) RecordPlan(ev events.PlanEvent) error {
	s.plans.WithLabelValues(ev.Outcome, ev.Strategy).Inc()
	s.duration.WithLabelValues(ev.Outcome).Observe(ev.Duration.Seconds())
	if ev.Err == nil {
		s.stops.WithLabelValues(ev.Strategy).Observe(float64(ev.Stops))
		s.cost.WithLabelValues(ev.Strategy).Observe(ev.TotalCost)
		s.charging.WithLabelValues(ev.Strategy).Add(ev.ChargingMinutes)
	}
	return nil
}

// RecordStop counts station selections.
func (s *PromSink) RecordStop(ev events.StopEvent) error {
	s.stations.WithLabelValues(ev.StationID).Inc()
	return nil
}

// RecordCatalogSize sets the snapshot gauges.
func (s *PromSink) RecordCatalogSize(total, available int) error {
	s.catalog.WithLabelValues("total").Set(float64(total))
	s.catalog.WithLabelValues("available").Set(float64(available))
	return nil
}

var (
	_ coremetrics.MetricsSink     = (*PromSink)(nil)
	_ coremetrics.StopRecorder    = (*PromSink)(nil)
	_ coremetrics.CatalogRecorder = (*PromSink)(nil)
)
