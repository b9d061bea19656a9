package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCharge(t *testing.T) {
	cases := []struct {
		name                   string
		cur, target, cap, c, v float64
		energy, minutes, power float64
	}{
		{"vehicle limited", 10, 80, 75, 350, 150, 52.5, 21, 150},
		{"charger limited", 20, 90, 60, 50, 150, 42, 50.4, 50},
		{"floor applies", 80, 90, 50, 150, 150, 5, 15, 150},
		{"zero energy", 50, 50, 50, 150, 150, 0, 15, 150},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			est, err := EstimateCharge(c.cur, c.target, c.cap, c.c, c.v)
			require.NoError(t, err)
			assert.InDelta(t, c.energy, est.EnergyKWh, 1e-9)
			assert.InDelta(t, c.minutes, est.Minutes, 1e-9)
			assert.InDelta(t, c.power, est.PowerKW, 1e-9)
		})
	}
}

func TestEstimateCharge_Invalid(t *testing.T) {
	_, err := EstimateCharge(80, 50, 75, 150, 150)
	require.ErrorIs(t, err, ErrInvalidChargeTarget)

	_, err = EstimateCharge(10, 50, 75, 0, 150)
	require.ErrorIs(t, err, ErrInvalidChargeTarget)
}

func TestChargeEstimator_CustomFloor(t *testing.T) {
	est, err := ChargeEstimator{MinMinutes: 5}.Estimate(80, 90, 50, 150, 150)
	require.NoError(t, err)
	assert.InDelta(t, 5, est.Minutes, 1e-9)
}
