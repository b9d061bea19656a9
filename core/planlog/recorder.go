package planlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evroute/core/logger"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/core/planner"
)

// Recorder wraps a planner.Service and journals every attempt. It is itself
// a planner.Service so hosts can stack it transparently.
type Recorder struct {
	next  planner.Service
	store Store
	log   logger.Logger
	now   func() time.Time
}

// NewRecorder journals the calls made to next into store.
func NewRecorder(next planner.Service, store Store, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Recorder{next: next, store: store, log: log, now: time.Now}
}

// Plan delegates to the wrapped service and records the result. Requests
// without an id get one here so the record and the planner events share it.
// Journal failures are logged and reported but never change the planning
// result.
func (r *Recorder) Plan(ctx context.Context, req planner.Request) (*model.RoutePlan, error) {
	started := r.now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	plan, err := r.next.Plan(ctx, req)
	rec := r.record(req, plan, err, started)

	if aerr := r.store.Append(context.WithoutCancel(ctx), rec); aerr != nil {
		r.log.Errorf("journal append %s: %v", rec.ID, aerr)
		monitoring.CaptureException(aerr, map[string]string{"module": "planlog", "plan_id": rec.ID})
	}
	if err != nil && rec.Outcome == planner.OutcomeError && !isContextErr(err) {
		monitoring.CaptureException(err, map[string]string{"module": "planner", "plan_id": rec.ID, "outcome": rec.Outcome})
	}
	return plan, err
}

func (r *Recorder) record(req planner.Request, plan *model.RoutePlan, err error, started time.Time) Record {
	rec := Record{
		ID:           req.ID,
		Timestamp:    started.UTC(),
		Strategy:     req.Strategy,
		Start:        req.Start,
		End:          req.End,
		Vehicle:      req.Vehicle,
		StationCount: len(req.Stations),
		Outcome:      planner.Outcome(plan, err),
		DurationMS:   float64(r.now().Sub(started).Microseconds()) / 1000,
		Plan:         plan,
	}
	if plan != nil {
		rec.ID = plan.ID
		rec.Strategy = plan.Strategy
	}
	if rec.Strategy == "" {
		if s, ok := r.next.(interface{ Strategy() string }); ok {
			rec.Strategy = s.Strategy()
		}
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
