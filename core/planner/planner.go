package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evroute/core/events"
	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/geo"
	"github.com/kilianp07/evroute/core/logger"
	"github.com/kilianp07/evroute/core/model"
)

// rangeEpsilonKm absorbs floating point noise when comparing distances.
const rangeEpsilonKm = 1e-6

// Request is one trip to plan.
type Request struct {
	// ID fixes the plan id so hosts can correlate their own records with the
	// published events. Empty means generated.
	ID         string               `json:"-"`
	Start      model.Coordinate     `json:"start"`
	End        model.Coordinate     `json:"end"`
	StartLabel string               `json:"start_label,omitempty"`
	EndLabel   string               `json:"end_label,omitempty"`
	Vehicle    model.VehicleProfile `json:"vehicle"`
	// Stations is the snapshot to plan against. Hosts may substitute their
	// catalog when it is nil.
	Stations []model.Station `json:"stations"`
	// Strategy overrides the configured strategy by registry name.
	Strategy string `json:"strategy,omitempty"`
}

// Service is what callers of the planner depend on.
type Service interface {
	Plan(ctx context.Context, req Request) (*model.RoutePlan, error)
}

// Option customises a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for step tracing.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// WithPublisher emits plan and stop events to pub.
func WithPublisher(pub events.Publisher) Option {
	return func(p *Planner) {
		if pub != nil {
			p.pub = pub
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator replaces the uuid plan identifiers.
func WithIDGenerator(gen func() string) Option {
	return func(p *Planner) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// Planner computes charging plans. It holds no per-call state and is safe
// for concurrent use.
type Planner struct {
	cfg       Config
	strategy  Strategy
	estimator ChargeEstimator
	log       logger.Logger
	pub       events.Publisher
	now       func() time.Time
	newID     func() string
}

// New validates cfg and builds a planner with its default strategy.
func New(cfg Config, opts ...Option) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	s, err := NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	p := &Planner{
		cfg:       cfg,
		strategy:  s,
		estimator: ChargeEstimator{MinMinutes: cfg.MinChargeMinutes},
		log:       logger.NopLogger{},
		pub:       events.NopPublisher{},
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Planner) Config() Config { return p.cfg }

// Strategy returns the default strategy name.
func (p *Planner) Strategy() string { return p.strategy.Name() }

// Plan computes the charging plan for req. Failures unwrap to one of the
// package sentinels; context errors are returned as is.
func (p *Planner) Plan(ctx context.Context, req Request) (*model.RoutePlan, error) {
	started := p.now()
	id := req.ID
	if id == "" {
		id = p.newID()
	}
	strategy := p.strategy
	if req.Strategy != "" && req.Strategy != strategy.Name() {
		s, err := NewStrategy(factory.ModuleConfig{Type: req.Strategy})
		if err != nil {
			p.publish(id, req.Strategy, nil, err, started)
			return nil, err
		}
		strategy = s
	}
	plan, err := p.plan(ctx, id, strategy, req)
	p.publish(id, strategy.Name(), plan, err, started)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Planner) plan(ctx context.Context, id string, strategy Strategy, req Request) (*model.RoutePlan, error) {
	v := req.Vehicle
	if err := v.Validate(); err != nil {
		return nil, &PlanError{Kind: ErrInvalidProfile, Reason: err.Error()}
	}
	if err := req.Start.Validate(); err != nil {
		return nil, &PlanError{Kind: ErrInvalidRequest, Reason: "start: " + err.Error()}
	}
	if err := req.End.Validate(); err != nil {
		return nil, &PlanError{Kind: ErrInvalidRequest, Reason: "end: " + err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pm := newPhaseMachine(id, p.log)
	total := geo.DistanceKm(req.Start, req.End)
	state := initialState(req.Start, v.CurrentSoCPct, total)

	if v.EnergyAt(v.CurrentSoCPct) >= total/v.EfficiencyKmPerKWh {
		p.transition(pm, eventDirect)
		p.transition(pm, eventArrive)
		p.log.Debugw("direct trip", map[string]any{"plan_id": id, "distance_km": total})
		return assemble(id, strategy.Name(), req, state.withPhase(PhaseComplete), p.cfg, true), nil
	}

	search := NewCandidateSearch(req.Stations)
	for state.needsCharge(v) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if state.Iteration >= p.cfg.MaxIterations {
			p.transition(pm, eventFail)
			return nil, failure(ErrNoProgress, state, "stopped after %d iterations with %.1f km left", state.Iteration, state.RemainingKm)
		}
		state = state.withPhase(p.transition(pm, eventSearch))
		next, err := p.step(state, v, search, strategy, id)
		if err != nil {
			p.transition(pm, eventFail)
			return nil, err
		}
		if next.RemainingKm >= state.RemainingKm && next.SoCPct <= state.SoCPct {
			p.transition(pm, eventFail)
			return nil, failure(ErrNoProgress, state, "stop at %s did not advance the trip", next.Position)
		}
		next.Phase = p.transition(pm, eventCharge)
		state = next
	}
	state = state.withPhase(p.transition(pm, eventArrive))
	return assemble(id, strategy.Name(), req, state, p.cfg, false), nil
}

// step selects and sizes one charging stop from state.
func (p *Planner) step(s State, v model.VehicleProfile, search *CandidateSearch, strategy Strategy, id string) (State, error) {
	reach := v.RangeAt(s.SoCPct)
	found := search.FindReachable(s.Position, p.cfg.SearchRadiusKm)
	usable := make([]Candidate, 0, len(found))
	for _, c := range found {
		switch {
		case c.DistanceKm > s.RemainingKm+rangeEpsilonKm:
		case s.visited(c.Station.ID):
		case p.cfg.RangePolicy == RangeFilter && c.DistanceKm > reach+rangeEpsilonKm:
		case c.Station.PowerKW <= 0:
		case p.departureTarget(v, s.RemainingKm-c.DistanceKm) <= arrivalSoC(v, s.SoCPct, c.DistanceKm):
		default:
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return s, failure(ErrInfeasible, s, "no usable station within %.0f km of %s (%d in radius)", p.cfg.SearchRadiusKm, s.Position, len(found))
	}

	sctx := newScoreContext(s, v, usable)
	best, score := selectCandidate(strategy, usable, sctx)
	if best.DistanceKm > reach+rangeEpsilonKm {
		return s, failure(ErrInfeasible, s, "station %s is %.1f km away with %.1f km of range left", best.Station.ID, best.DistanceKm, reach)
	}

	arrival := arrivalSoC(v, s.SoCPct, best.DistanceKm)
	departure := p.departureTarget(v, s.RemainingKm-best.DistanceKm)
	est, err := p.estimator.Estimate(arrival, departure, v.BatteryCapacityKWh, best.Station.PowerKW, v.MaxChargingPowerKW)
	if err != nil {
		if pe, ok := err.(*PlanError); ok {
			pe.Iteration, pe.Position = s.Iteration, s.Position
		}
		return s, err
	}
	stop := model.ChargingStop{
		Station:                best.Station,
		DistanceFromPreviousKm: best.DistanceKm,
		ArrivalSoCPct:          arrival,
		DepartureSoCPct:        departure,
		EnergyKWh:              est.EnergyKWh,
		ChargingMinutes:        est.Minutes,
		WaitMinutes:            best.Station.WaitMinutes(),
		Cost:                   est.EnergyKWh * best.Station.PricePerKWh,
	}
	p.log.Debugw("charging stop selected", map[string]any{
		"plan_id":     id,
		"iteration":   s.Iteration + 1,
		"station_id":  best.Station.ID,
		"strategy":    strategy.Name(),
		"score":       score,
		"candidates":  len(usable),
		"distance_km": best.DistanceKm,
		"arrival":     arrival,
		"departure":   departure,
	})
	return s.advance(stop), nil
}

// departureTarget is the charge needed for the rest of the trip plus the
// buffer, capped to protect the battery.
func (p *Planner) departureTarget(v model.VehicleProfile, remainingAfterKm float64) float64 {
	need := math.Min(v.MaxRangeKm, math.Max(0, remainingAfterKm))
	return math.Min(p.cfg.MaxDepartureSoCPct, need/v.MaxRangeKm*100+p.cfg.BufferPct)
}

func arrivalSoC(v model.VehicleProfile, socPct, distanceKm float64) float64 {
	return math.Max(0, socPct-v.SoCDrop(distanceKm))
}

func (p *Planner) transition(pm *phaseMachine, event string) Phase {
	ph, err := pm.fire(event)
	if err != nil {
		p.log.Errorf("%v", err)
	}
	return ph
}

func (p *Planner) publish(id, strategy string, plan *model.RoutePlan, err error, started time.Time) {
	now := p.now()
	ev := events.PlanEvent{
		PlanID:   id,
		Outcome:  Outcome(plan, err),
		Strategy: strategy,
		Err:      err,
		Duration: now.Sub(started),
		Time:     now,
	}
	if plan != nil {
		ev.Stops = len(plan.Stops)
		ev.TotalDistanceKm = plan.TotalDistanceKm
		ev.TotalCost = plan.TotalCost
		ev.ChargingMinutes = plan.TotalChargingMinutes
		ev.TotalMinutes = plan.TotalTimeMinutes
		for i, st := range plan.Stops {
			p.pub.Publish(events.StopEvent{
				PlanID:          id,
				Strategy:        strategy,
				Index:           i,
				StationID:       st.Station.ID,
				DistanceKm:      st.DistanceFromPreviousKm,
				ArrivalSoCPct:   st.ArrivalSoCPct,
				DepartureSoCPct: st.DepartureSoCPct,
				EnergyKWh:       st.EnergyKWh,
				ChargingMinutes: st.ChargingMinutes,
				Cost:            st.Cost,
				Time:            now,
			})
		}
	}
	p.pub.Publish(ev)
}
