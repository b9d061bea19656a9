// Package stations serves the charging station catalog and the health
// probe.
package stations

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/kilianp07/evroute/api/httpx"
	"github.com/kilianp07/evroute/core/catalog"
	"github.com/kilianp07/evroute/core/logger"
	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/core/model"
)

const maxBodyBytes = 32 << 20

// Handlers serves /api/v1/stations and /api/v1/health.
type Handlers struct {
	catalog    catalog.Catalog
	token      string
	recorder   coremetrics.CatalogRecorder
	strategies []string
	log        logger.Logger
}

// NewHandlers builds the catalog handlers. recorder may be nil.
func NewHandlers(cat catalog.Catalog, token string, recorder coremetrics.CatalogRecorder, strategies []string, log logger.Logger) *Handlers {
	if recorder == nil {
		recorder = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handlers{catalog: cat, token: token, recorder: recorder, strategies: strategies, log: log}
}

// Register mounts the routes on mux. Replacing the catalog requires the
// bearer token when one is configured.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/stations", h.HandleList)
	mux.HandleFunc("GET /api/v1/stations/{id}", h.HandleGet)
	mux.Handle("PUT /api/v1/stations", httpx.RequireToken(h.token, http.HandlerFunc(h.HandleReplace)))
	mux.HandleFunc("GET /api/v1/health", h.HandleHealth)
}

// HandleList answers GET /api/v1/stations. Filters: status, connector,
// min_power_kw and available.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	f := catalog.Filter{
		Status:        model.StationStatus(v.Get("status")),
		ConnectorType: v.Get("connector"),
	}
	if s := v.Get("min_power_kw"); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "min_power_kw must be a number")
			return
		}
		f.MinPowerKW = p
	}
	if s := v.Get("available"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "available must be a boolean")
			return
		}
		f.AvailableOnly = b
	}
	httpx.WriteJSON(w, http.StatusOK, h.catalog.List(f))
}

func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.catalog.Get(r.PathValue("id"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

// ReplaceResponse reports the size of the new snapshot.
type ReplaceResponse struct {
	Count     int `json:"count"`
	Available int `json:"available"`
}

// HandleReplace swaps the whole snapshot. The body is a station document or
// a bare JSON list.
func (h *Handlers) HandleReplace(w http.ResponseWriter, r *http.Request) {
	if !httpx.IsJSON(r) {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "invalid_request", "expected application/json")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "empty body")
		return
	}
	list, err := catalog.Decode(body, "json")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.catalog.Replace(list); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid_stations", err.Error())
		return
	}
	resp := ReplaceResponse{Count: len(list), Available: catalog.CountAvailable(list)}
	if err := h.recorder.RecordCatalogSize(resp.Count, resp.Available); err != nil {
		h.log.Warnf("record catalog size: %v", err)
	}
	h.log.Infof("station catalog replaced: %d stations, %d available", resp.Count, resp.Available)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status     string   `json:"status"`
	Stations   int      `json:"stations"`
	Strategies []string `json:"strategies"`
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Stations: h.catalog.Len(), Strategies: h.strategies})
}
