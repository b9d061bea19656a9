package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/core/model"
)

func st(id string, lat float64, power float64, status model.StationStatus, free int) model.Station {
	return model.Station{
		ID:            id,
		Position:      model.Coordinate{Lat: lat, Lon: 2.35},
		PowerKW:       power,
		PricePerKWh:   0.4,
		FreeSlots:     free,
		TotalSlots:    4,
		ConnectorType: "CCS",
		Status:        status,
	}
}

func TestMemoryCatalog_ReplaceAndGet(t *testing.T) {
	c := NewMemoryCatalog()
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.UpdatedAt().IsZero())

	require.NoError(t, c.Replace([]model.Station{st("b", 48, 50, "", 2), st("a", 47, 150, model.StationBusy, 0)}))
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.UpdatedAt().IsZero())

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 150.0, got.PowerKW)
	_, ok = c.Get("zz")
	assert.False(t, ok)

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].ID, "snapshot is sorted by id")
}

func TestMemoryCatalog_SnapshotIsACopy(t *testing.T) {
	c := NewMemoryCatalog()
	src := []model.Station{st("a", 47, 50, "", 1)}
	require.NoError(t, c.Replace(src))
	src[0].PowerKW = 1

	snap := c.Snapshot()
	snap[0].PowerKW = 2
	got, _ := c.Get("a")
	assert.Equal(t, 50.0, got.PowerKW)
}

func TestMemoryCatalog_InvalidReplaceKeepsSnapshot(t *testing.T) {
	c := NewMemoryCatalog()
	require.NoError(t, c.Replace([]model.Station{st("a", 47, 50, "", 1)}))
	err := c.Replace([]model.Station{st("x", 47, 50, "", 1), st("x", 48, 50, "", 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestMemoryCatalog_List(t *testing.T) {
	c := NewMemoryCatalog()
	ac := st("ac", 47, 22, "", 2)
	ac.ConnectorType = "Type2"
	require.NoError(t, c.Replace([]model.Station{
		ac,
		st("busy", 47, 150, model.StationBusy, 0),
		st("fast", 47, 150, model.StationAvailable, 3),
		st("off", 47, 50, model.StationOffline, 4),
	}))
	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"all", Filter{}, []string{"ac", "busy", "fast", "off"}},
		{"status", Filter{Status: model.StationBusy}, []string{"busy"}},
		{"connector", Filter{ConnectorType: "type2"}, []string{"ac"}},
		{"power", Filter{MinPowerKW: 100}, []string{"busy", "fast"}},
		{"available", Filter{AvailableOnly: true}, []string{"ac", "fast"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, s := range c.List(tt.f) {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestValidate(t *testing.T) {
	bad := st("bad", 95, 50, "", 1)
	neg := st("neg", 47, -1, "", 1)
	weird := st("weird", 47, 50, "closed", 1)
	err := Validate([]model.Station{{}, bad, neg, weird})
	require.Error(t, err)
	for _, want := range []string{"missing id", "station bad", "station neg", "unknown status"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NoError(t, Validate(nil))
}

func TestCounts(t *testing.T) {
	got := Counts([]model.Station{
		st("a", 47, 50, "", 1),
		st("b", 47, 50, model.StationBusy, 0),
		st("c", 47, 50, model.StationAvailable, 1),
	})
	assert.Equal(t, 2, got[model.StationAvailable])
	assert.Equal(t, 1, got[model.StationBusy])
	assert.Equal(t, 0, got[model.StationOffline])
}

func TestMemoryCatalog_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCatalog()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Replace([]model.Station{st("a", 47, 50, "", 1), st("b", 48, 50, "", 1)})
		}()
		go func() {
			defer wg.Done()
			snap := c.Snapshot()
			assert.True(t, len(snap) == 0 || len(snap) == 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, c.Len())
}

func TestCountAvailable(t *testing.T) {
	assert.Equal(t, 1, CountAvailable([]model.Station{
		st("a", 47, 50, "", 1),
		st("b", 47, 50, model.StationOffline, 3),
		st("c", 47, 50, "", 0),
	}))
}
