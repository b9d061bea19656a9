package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/api/httpx"
	"github.com/kilianp07/evroute/core/catalog"
	"github.com/kilianp07/evroute/core/geo"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/planlog"
	"github.com/kilianp07/evroute/core/planner"
)

func east(km float64) model.Coordinate {
	return model.Coordinate{Lat: 0, Lon: km / (geo.EarthRadiusKm * math.Pi / 180)}
}

func vehicle() model.VehicleProfile {
	return model.VehicleProfile{
		BatteryCapacityKWh: 75,
		MaxRangeKm:         300,
		EfficiencyKmPerKWh: 4,
		MaxChargingPowerKW: 150,
		CurrentSoCPct:      100,
		TargetSoCPct:       10,
	}
}

type fixture struct {
	mux     *http.ServeMux
	journal planlog.Store
	catalog *catalog.MemoryCatalog
}

func newFixture(t *testing.T, token string) fixture {
	t.Helper()
	p, err := planner.New(planner.DefaultConfig())
	require.NoError(t, err)
	journal, err := planlog.NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	require.NoError(t, err)
	cat := catalog.NewMemoryCatalog()
	require.NoError(t, cat.Replace([]model.Station{{
		ID: "s40", Position: east(40), PowerKW: 150, PricePerKWh: 0.4, FreeSlots: 2, TotalSlots: 4,
	}}))
	mux := http.NewServeMux()
	NewHandlers(planlog.NewRecorder(p, journal, nil), journal, cat, token, 2*time.Second).Register(mux)
	return fixture{mux: mux, journal: journal, catalog: cat}
}

func (f fixture) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func TestHandlePlan_UsesCatalog(t *testing.T) {
	f := newFixture(t, "")
	rr := f.do(t, http.MethodPost, "/api/v1/plans", planner.Request{Start: east(0), End: east(305), Vehicle: vehicle()}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var plan model.RoutePlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	require.Len(t, plan.Stops, 1)
	assert.Equal(t, "s40", plan.Stops[0].Station.ID)
	assert.NotEmpty(t, plan.ID)
}

func TestHandlePlan_InlineStationsOverrideCatalog(t *testing.T) {
	f := newFixture(t, "")
	req := planner.Request{Start: east(0), End: east(305), Vehicle: vehicle(), Stations: []model.Station{}}
	rr := f.do(t, http.MethodPost, "/api/v1/plans", req, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, planner.OutcomeInfeasible, body.Error)
}

func TestHandlePlan_Errors(t *testing.T) {
	f := newFixture(t, "")
	bad := vehicle()
	bad.BatteryCapacityKWh = 0

	rr := f.do(t, http.MethodPost, "/api/v1/plans", planner.Request{Start: east(0), End: east(10), Vehicle: bad}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/v1/plans", planner.Request{Start: east(0), End: east(10), Vehicle: vehicle(), Strategy: "cheapest"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestJournalEndpoints(t *testing.T) {
	f := newFixture(t, "tok")
	rr := f.do(t, http.MethodPost, "/api/v1/plans", planner.Request{Start: east(0), End: east(305), Vehicle: vehicle()}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var plan model.RoutePlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	rr = f.do(t, http.MethodPost, "/api/v1/plans", planner.Request{Start: east(0), End: east(305), Vehicle: vehicle(), Stations: []model.Station{}}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/plans", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/plans", nil, "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []planlog.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	assert.Len(t, recs, 2)

	rr = f.do(t, http.MethodGet, "/api/v1/plans?outcome=infeasible", nil, "tok")
	recs = nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Plan)

	rr = f.do(t, http.MethodGet, "/api/v1/plans?station_id=s40&limit=5", nil, "tok")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, plan.ID, recs[0].ID)

	rr = f.do(t, http.MethodGet, "/api/v1/plans?outcome=no_progress", nil, "tok")
	assert.JSONEq(t, "[]", rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/v1/plans?start=yesterday", nil, "tok")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/v1/plans?limit=-1", nil, "tok")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, nil, "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	var rec planlog.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, planner.OutcomeComplete, rec.Outcome)

	rr = f.do(t, http.MethodGet, "/api/v1/plans/unknown", nil, "tok")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&planner.PlanError{Kind: planner.ErrInvalidProfile}, http.StatusBadRequest},
		{&planner.PlanError{Kind: planner.ErrInvalidRequest}, http.StatusBadRequest},
		{planner.ErrUnknownStrategy, http.StatusBadRequest},
		{&planner.PlanError{Kind: planner.ErrInfeasible}, http.StatusUnprocessableEntity},
		{&planner.PlanError{Kind: planner.ErrNoProgress}, http.StatusUnprocessableEntity},
		{&planner.PlanError{Kind: planner.ErrInvalidChargeTarget}, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
