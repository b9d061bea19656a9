package planlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/events"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/core/planner"
	"github.com/kilianp07/evroute/internal/eventbus"
)

type mockService struct{ mock.Mock }

func (m *mockService) Plan(ctx context.Context, req planner.Request) (*model.RoutePlan, error) {
	args := m.Called(ctx, req)
	plan, _ := args.Get(0).(*model.RoutePlan)
	return plan, args.Error(1)
}

type memStore struct {
	mu   sync.Mutex
	recs []Record
	err  error
}

func (s *memStore) Append(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, r)
	return nil
}

func (s *memStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.recs {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return finish(out, q.Limit), nil
}

func (s *memStore) Close() error { return nil }

type captureMonitor struct {
	mu   sync.Mutex
	errs []error
}

func (c *captureMonitor) CaptureException(err error, _ map[string]string) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}
func (c *captureMonitor) Recover()            {}
func (c *captureMonitor) Flush(time.Duration) {}

func useMonitor(t *testing.T) *captureMonitor {
	m := &captureMonitor{}
	monitoring.Init(m)
	t.Cleanup(func() { monitoring.Init(monitoring.NopMonitor{}) })
	return m
}

func tripRequest() planner.Request {
	return planner.Request{
		Start:    model.Coordinate{Lat: 48.85, Lon: 2.35},
		End:      model.Coordinate{Lat: 45.76, Lon: 4.83},
		Vehicle:  model.DefaultVehicleProfile(),
		Stations: []model.Station{{ID: "s1"}, {ID: "s2"}},
	}
}

func TestRecorder_RecordsSuccess(t *testing.T) {
	svc := &mockService{}
	plan := &model.RoutePlan{ID: "plan-1", Strategy: "price", Stops: []model.ChargingStop{{Station: model.Station{ID: "s2"}}}}
	svc.On("Plan", mock.Anything, mock.Anything).Return(plan, nil)
	store := &memStore{}
	rec := NewRecorder(svc, store, nil)

	got, err := rec.Plan(context.Background(), tripRequest())
	require.NoError(t, err)
	assert.Same(t, plan, got)
	svc.AssertExpectations(t)

	require.Len(t, store.recs, 1)
	r := store.recs[0]
	assert.Equal(t, "plan-1", r.ID)
	assert.Equal(t, "price", r.Strategy)
	assert.Equal(t, planner.OutcomeComplete, r.Outcome)
	assert.Equal(t, 2, r.StationCount)
	assert.Empty(t, r.Error)
	assert.Equal(t, []string{"s2"}, r.StationIDs())
}

func TestRecorder_RecordsTypedFailure(t *testing.T) {
	mon := useMonitor(t)
	svc := &mockService{}
	failure := &planner.PlanError{Kind: planner.ErrInfeasible, Reason: "no usable station"}
	svc.On("Plan", mock.Anything, mock.Anything).Return(nil, failure)
	store := &memStore{}
	rec := NewRecorder(svc, store, nil)

	req := tripRequest()
	req.Strategy = "nearest"
	_, err := rec.Plan(context.Background(), req)
	require.ErrorIs(t, err, planner.ErrInfeasible)

	require.Len(t, store.recs, 1)
	r := store.recs[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "nearest", r.Strategy)
	assert.Equal(t, planner.OutcomeInfeasible, r.Outcome)
	assert.Contains(t, r.Error, "no usable station")
	assert.Nil(t, r.Plan)
	assert.Empty(t, mon.errs, "typed failures are not reported")
}

func TestRecorder_ReportsUnexpectedErrors(t *testing.T) {
	mon := useMonitor(t)
	svc := &mockService{}
	svc.On("Plan", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	rec := NewRecorder(svc, &memStore{}, nil)

	_, err := rec.Plan(context.Background(), tripRequest())
	require.Error(t, err)
	require.Len(t, mon.errs, 1)
	assert.EqualError(t, mon.errs[0], "boom")
}

func TestRecorder_JournalFailureDoesNotFailPlan(t *testing.T) {
	mon := useMonitor(t)
	svc := &mockService{}
	plan := &model.RoutePlan{ID: "plan-2", Direct: true}
	svc.On("Plan", mock.Anything, mock.Anything).Return(plan, nil)
	rec := NewRecorder(svc, &memStore{err: errors.New("disk full")}, nil)

	got, err := rec.Plan(context.Background(), tripRequest())
	require.NoError(t, err)
	assert.Equal(t, "plan-2", got.ID)
	require.Len(t, mon.errs, 1)
	assert.EqualError(t, mon.errs[0], "disk full")
}

func TestRecorder_WithPlanner(t *testing.T) {
	p, err := planner.New(planner.Config{})
	require.NoError(t, err)
	store := &memStore{}
	rec := NewRecorder(p, store, nil)

	req := tripRequest()
	req.End = model.Coordinate{Lat: 48.86, Lon: 2.36}
	plan, err := rec.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, plan.Direct)

	got, err := Get(context.Background(), store, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, planner.OutcomeDirect, got.Outcome)
	assert.Equal(t, p.Strategy(), got.Strategy)
}

func TestRecorder_FailureSharesEventPlanID(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	sub := bus.Subscribe()
	p, err := planner.New(planner.Config{}, planner.WithPublisher(bus))
	require.NoError(t, err)
	store := &memStore{}
	rec := NewRecorder(p, store, nil)

	req := tripRequest()
	req.Stations = []model.Station{}
	_, err = rec.Plan(context.Background(), req)
	require.ErrorIs(t, err, planner.ErrInfeasible)

	ev, ok := (<-sub).(events.PlanEvent)
	require.True(t, ok)
	require.Len(t, store.recs, 1)
	assert.NotEmpty(t, ev.PlanID)
	assert.Equal(t, ev.PlanID, store.recs[0].ID)
	assert.Equal(t, planner.OutcomeInfeasible, store.recs[0].Outcome)
}

func TestRecorder_AssignsRequestID(t *testing.T) {
	svc := &mockService{}
	svc.On("Plan", mock.Anything, mock.MatchedBy(func(r planner.Request) bool { return r.ID != "" })).
		Return(nil, &planner.PlanError{Kind: planner.ErrInfeasible, Reason: "none"})
	store := &memStore{}
	rec := NewRecorder(svc, store, nil)

	_, err := rec.Plan(context.Background(), tripRequest())
	require.Error(t, err)
	svc.AssertExpectations(t)
	req := svc.Calls[0].Arguments.Get(1).(planner.Request)
	require.Len(t, store.recs, 1)
	assert.Equal(t, req.ID, store.recs[0].ID)
}

func TestOpen(t *testing.T) {
	s, err := Open(journalConfig("none", ""))
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	dir := t.TempDir()
	s, err = Open(journalConfig("jsonl", dir+"/plans.jsonl"))
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	cfg := journalConfig("jsonl", dir+"/rotating.jsonl")
	cfg.MaxSizeMB = 5
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()

	s, err = Open(journalConfig("sqlite", "file:planlog_open.db?mode=memory&cache=shared"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	_ = s.Close()

	_, err = Open(journalConfig("mongo", ""))
	assert.Error(t, err)
}

func journalConfig(backend, path string) config.JournalConfig {
	return config.JournalConfig{Backend: backend, Path: path}
}
