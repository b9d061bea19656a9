// Package plans exposes the planner and its journal over HTTP.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/evroute/api/httpx"
	"github.com/kilianp07/evroute/core/catalog"
	"github.com/kilianp07/evroute/core/planlog"
	"github.com/kilianp07/evroute/core/planner"
)

// maxBodyBytes bounds request bodies, which may carry inline stations.
const maxBodyBytes = 8 << 20

// Handlers serves POST /api/v1/plans and the journal endpoints.
type Handlers struct {
	svc     planner.Service
	journal planlog.Store
	catalog catalog.Catalog
	token   string
	timeout time.Duration
}

// NewHandlers wires the planning service. journal and cat may be nil.
func NewHandlers(svc planner.Service, journal planlog.Store, cat catalog.Catalog, token string, timeout time.Duration) *Handlers {
	return &Handlers{svc: svc, journal: journal, catalog: cat, token: token, timeout: timeout}
}

// Register mounts the routes on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/plans", h.HandlePlan)
	if h.journal != nil {
		mux.Handle("GET /api/v1/plans", httpx.RequireToken(h.token, http.HandlerFunc(h.HandleList)))
		mux.Handle("GET /api/v1/plans/{id}", httpx.RequireToken(h.token, http.HandlerFunc(h.HandleGet)))
	}
}

// HandlePlan plans the trip in the body. Requests without stations use
// the current catalog snapshot.
func (h *Handlers) HandlePlan(w http.ResponseWriter, r *http.Request) {
	if !httpx.IsJSON(r) {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "invalid_request", "expected application/json")
		return
	}
	var req planner.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Stations == nil && h.catalog != nil {
		req.Stations = h.catalog.Snapshot()
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	plan, err := h.svc.Plan(ctx, req)
	if err != nil {
		httpx.WriteError(w, StatusFor(err), planner.Outcome(nil, err), err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, plan)
}

// StatusFor maps a planning error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	switch planner.Outcome(nil, err) {
	case planner.OutcomeInvalidProfile, planner.OutcomeInvalidRequest:
		return http.StatusBadRequest
	case planner.OutcomeInfeasible, planner.OutcomeNoProgress, planner.OutcomeInvalidChargeTarget:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleList answers GET /api/v1/plans. Filters: start, end (RFC 3339),
// outcome, strategy, station_id and limit.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := planlog.Query{
		Outcome:   v.Get("outcome"),
		Strategy:  v.Get("strategy"),
		StationID: v.Get("station_id"),
	}
	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "start: "+err.Error())
			return
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "end: "+err.Error())
			return
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
	}
	recs, err := h.journal.Query(r.Context(), q)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if recs == nil {
		recs = []planlog.Record{}
	}
	httpx.WriteJSON(w, http.StatusOK, recs)
}

// HandleGet answers GET /api/v1/plans/{id}.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := planlog.Get(r.Context(), h.journal, r.PathValue("id"))
	switch {
	case errors.Is(err, planlog.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "")
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
	default:
		httpx.WriteJSON(w, http.StatusOK, rec)
	}
}
