package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/core/model"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			plan, err := Run(context.Background(), sc)
			for _, p := range Check(sc.Expected, plan, err) {
				t.Error(p)
			}
		})
	}
}

func TestStationList_Corridor(t *testing.T) {
	sc := &Scenario{
		DistanceKm: 130,
		Stations:   []StationDef{{ID: "x", Km: 10}},
		Corridor:   &CorridorDef{SpacingKm: 40, PowerKW: 50, FreeSlots: 2},
	}
	list := sc.StationList()
	require.Len(t, list, 4)
	assert.Equal(t, "x", list[0].ID)
	assert.Equal(t, "corridor-0040", list[1].ID)
	assert.Equal(t, "corridor-0120", list[3].ID)
	assert.Equal(t, 2, list[3].TotalSlots)
}

func TestCheck(t *testing.T) {
	one := 1
	hi := 80.0
	plan := &model.RoutePlan{Stops: []model.ChargingStop{{Station: model.Station{ID: "a"}, DepartureSoCPct: 85}}, TotalCost: 3}
	problems := Check(Expected{Outcome: "complete", Stops: &one, MaxDepartureSoC: &hi, StationIDs: []string{"b"}}, plan, nil)
	assert.Len(t, problems, 2)
	assert.Empty(t, Check(Expected{Outcome: "complete", Stops: &one}, plan, nil))
	assert.Len(t, Check(Expected{Outcome: "infeasible"}, plan, nil), 1)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("distance_km: 10\n"), 0o644))
	_, err = Load(unnamed)
	assert.Error(t, err)
}
