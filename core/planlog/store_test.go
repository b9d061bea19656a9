package planlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/core/model"
)

var epoch = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func sampleRecord(id string, offset time.Duration, outcome string, stations ...string) Record {
	rec := Record{
		ID:        id,
		Timestamp: epoch.Add(offset),
		Strategy:  "nearest",
		Start:     model.Coordinate{Lat: 48.85, Lon: 2.35},
		End:       model.Coordinate{Lat: 45.76, Lon: 4.83},
		Vehicle:   model.DefaultVehicleProfile(),
		Outcome:   outcome,
	}
	if outcome == "complete" || outcome == "direct" {
		rec.Plan = &model.RoutePlan{ID: id, Strategy: "nearest", Stops: []model.ChargingStop{}}
		for _, s := range stations {
			rec.Plan.Stops = append(rec.Plan.Stops, model.ChargingStop{Station: model.Station{ID: s}})
		}
	} else {
		rec.Error = "route infeasible: no usable station"
	}
	return rec
}

func TestQueryMatch(t *testing.T) {
	rec := sampleRecord("p1", time.Hour, "complete", "s1", "s2")
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"in range", Query{Start: epoch, End: epoch.Add(2 * time.Hour)}, true},
		{"before start", Query{Start: epoch.Add(2 * time.Hour)}, false},
		{"after end", Query{End: epoch}, false},
		{"id", Query{ID: "p1"}, true},
		{"other id", Query{ID: "p2"}, false},
		{"outcome", Query{Outcome: "complete"}, true},
		{"other outcome", Query{Outcome: "infeasible"}, false},
		{"strategy", Query{Strategy: "price"}, false},
		{"station", Query{StationID: "s2"}, true},
		{"missing station", Query{StationID: "s3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Match(rec))
		})
	}
}

func TestQueryMatch_StationOnFailedPlan(t *testing.T) {
	rec := sampleRecord("p1", 0, "infeasible")
	assert.Nil(t, rec.StationIDs())
	assert.False(t, Query{StationID: "s1"}.Match(rec))
}

func TestFinishSortsAndLimits(t *testing.T) {
	recs := []Record{
		sampleRecord("c", 3*time.Minute, "complete"),
		sampleRecord("a", time.Minute, "complete"),
		sampleRecord("b", 2*time.Minute, "complete"),
	}
	out := finish(recs, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	recs := []Record{
		sampleRecord("p1", 0, "direct"),
		sampleRecord("p2", time.Minute, "complete", "s1", "s2"),
		sampleRecord("p3", 2*time.Minute, "infeasible"),
		sampleRecord("p4", 3*time.Minute, "complete", "s2"),
	}
	for _, r := range recs {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, "p4", all[3].ID)

	byOutcome, err := store.Query(ctx, Query{Outcome: "complete"})
	require.NoError(t, err)
	assert.Len(t, byOutcome, 2)

	byStation, err := store.Query(ctx, Query{StationID: "s2"})
	require.NoError(t, err)
	require.Len(t, byStation, 2)
	assert.Equal(t, "p2", byStation[0].ID)

	window, err := store.Query(ctx, Query{Start: epoch.Add(30 * time.Second), End: epoch.Add(150 * time.Second)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	latest, err := store.Query(ctx, Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "p4", latest[0].ID)

	got, err := Get(ctx, store, "p3")
	require.NoError(t, err)
	assert.Equal(t, "infeasible", got.Outcome)
	assert.NotEmpty(t, got.Error)
	assert.True(t, got.Timestamp.Equal(epoch.Add(2*time.Minute)))

	_, err = Get(ctx, store, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	withPlan, err := Get(ctx, store, "p2")
	require.NoError(t, err)
	require.NotNil(t, withPlan.Plan)
	assert.Equal(t, []string{"s1", "s2"}, withPlan.StationIDs())
}
