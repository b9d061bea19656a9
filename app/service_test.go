package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/planlog"
)

const stationsYAML = `stations:
  - id: lyon-nord
    position: {lat: 45.80, lon: 4.85}
    power_kw: 150
    price_per_kwh: 0.42
    free_slots: 3
    total_slots: 6
  - id: macon
    position: {lat: 46.30, lon: 4.83}
    power_kw: 50
    status: offline
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stationsYAML), 0o644))
	cfg := config.Default()
	cfg.Catalog = config.CatalogConfig{Path: path}
	cfg.Journal = config.JournalConfig{Backend: config.JournalJSONL, Path: filepath.Join(dir, "plans.jsonl")}
	cfg.Server.Address = "127.0.0.1:0"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNew_WiresCatalogAndAPI(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	assert.Equal(t, 2, svc.Catalog.Len())

	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"stations":2`)

	body := `{"start":{"lat":45.76,"lon":4.83},"end":{"lat":45.90,"lon":4.90},"vehicle":{"battery_capacity_kwh":60,"max_range_km":300,"efficiency_km_per_kwh":5,"max_charging_power_kw":100,"current_soc_pct":80,"target_soc_pct":10}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var plan struct {
		ID     string `json:"id"`
		Direct bool   `json:"direct"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	assert.True(t, plan.Direct)

	rec, err := planlog.Get(context.Background(), svc.Journal, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "direct", rec.Outcome)
	assert.Equal(t, 2, rec.StationCount)
}

func TestNew_BadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")
	cfg.Catalog.Format = "json"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoadStations(t *testing.T) {
	list, err := LoadStations(context.Background(), config.CatalogConfig{})
	require.NoError(t, err)
	assert.Empty(t, list)

	path := filepath.Join(t.TempDir(), "extract.osm")
	xml := `<?xml version="1.0"?><osm version="0.6"><node id="7" lat="45.1" lon="4.2"><tag k="amenity" v="charging_station"/></node></osm>`
	require.NoError(t, os.WriteFile(path, []byte(xml), 0o644))
	list, err = LoadStations(context.Background(), config.CatalogConfig{Path: path, Format: "osm", DefaultPowerKW: 11})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 11.0, list[0].PowerKW)
}
