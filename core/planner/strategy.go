package planner

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/evroute/core/model"
)

// Strategy scores a candidate station. Higher scores win; ties go to the
// nearest station, then to the lowest station ID.
type Strategy interface {
	Name() string
	Score(c Candidate, ctx ScoreContext) float64
}

// ScoreContext describes the simulated vehicle and the candidate set being
// scored. Bounds are computed over the usable candidates of one step.
type ScoreContext struct {
	Position    model.Coordinate
	SoCPct      float64
	RemainingKm float64
	Vehicle     model.VehicleProfile

	MinDistanceKm, MaxDistanceKm float64
	MinPrice, MaxPrice           float64
	MinPowerKW, MaxPowerKW       float64
	MaxWaitMinutes               float64
}

func newScoreContext(s State, v model.VehicleProfile, cands []Candidate) ScoreContext {
	ctx := ScoreContext{Position: s.Position, SoCPct: s.SoCPct, RemainingKm: s.RemainingKm, Vehicle: v}
	if len(cands) == 0 {
		return ctx
	}
	dist := make([]float64, len(cands))
	price := make([]float64, len(cands))
	power := make([]float64, len(cands))
	wait := make([]float64, len(cands))
	for i, c := range cands {
		dist[i] = c.DistanceKm
		price[i] = c.Station.PricePerKWh
		power[i] = math.Min(c.Station.PowerKW, v.MaxChargingPowerKW)
		wait[i] = c.Station.WaitMinutes()
	}
	ctx.MinDistanceKm, ctx.MaxDistanceKm = floats.Min(dist), floats.Max(dist)
	ctx.MinPrice, ctx.MaxPrice = floats.Min(price), floats.Max(price)
	ctx.MinPowerKW, ctx.MaxPowerKW = floats.Min(power), floats.Max(power)
	ctx.MaxWaitMinutes = floats.Max(wait)
	return ctx
}

// normalize maps x into [0,1] over [lo,hi]. A degenerate range yields 0.
func normalize(x, lo, hi float64) float64 {
	if hi-lo <= 0 {
		return 0
	}
	n := (x - lo) / (hi - lo)
	return math.Max(0, math.Min(1, n))
}

// NearestStrategy picks the closest usable station.
type NearestStrategy struct{}

func (NearestStrategy) Name() string { return StrategyNearest }

func (NearestStrategy) Score(c Candidate, _ ScoreContext) float64 { return -c.DistanceKm }

// WeightedStrategy blends normalised distance, price, free slots, charging
// power and queue time. All terms are in [0,1] before weighting.
type WeightedStrategy struct {
	DistanceWeight     float64 `json:"distance_weight"`
	PriceWeight        float64 `json:"price_weight"`
	AvailabilityWeight float64 `json:"availability_weight"`
	PowerWeight        float64 `json:"power_weight"`
	WaitWeight         float64 `json:"wait_weight"`
	name               string
}

// NewWeightedStrategy returns a strategy using every criterion.
func NewWeightedStrategy() *WeightedStrategy {
	return &WeightedStrategy{
		DistanceWeight:     0.4,
		PriceWeight:        0.2,
		AvailabilityWeight: 0.15,
		PowerWeight:        0.15,
		WaitWeight:         0.1,
		name:               StrategyWeighted,
	}
}

// NewPriceWeightedStrategy trades distance against energy price.
func NewPriceWeightedStrategy() *WeightedStrategy {
	return &WeightedStrategy{DistanceWeight: 0.4, PriceWeight: 0.6, name: StrategyPrice}
}

// NewAvailabilityWeightedStrategy favours stations with free slots and
// short queues.
func NewAvailabilityWeightedStrategy() *WeightedStrategy {
	return &WeightedStrategy{DistanceWeight: 0.4, AvailabilityWeight: 0.4, WaitWeight: 0.2, name: StrategyAvailability}
}

func (w *WeightedStrategy) Name() string {
	if w.name == "" {
		return StrategyWeighted
	}
	return w.name
}

func (w *WeightedStrategy) Score(c Candidate, ctx ScoreContext) float64 {
	power := math.Min(c.Station.PowerKW, ctx.Vehicle.MaxChargingPowerKW)
	score := w.DistanceWeight * (1 - normalize(c.DistanceKm, ctx.MinDistanceKm, ctx.MaxDistanceKm))
	score += w.PriceWeight * (1 - normalize(c.Station.PricePerKWh, ctx.MinPrice, ctx.MaxPrice))
	score += w.AvailabilityWeight * c.Station.FreeShare()
	score += w.PowerWeight * normalize(power, ctx.MinPowerKW, ctx.MaxPowerKW)
	if ctx.MaxWaitMinutes > 0 {
		score -= w.WaitWeight * c.Station.WaitMinutes() / ctx.MaxWaitMinutes
	}
	return score
}

// selectCandidate returns the best scored candidate. cands must be sorted
// nearest first so the first maximum is also the tie-break winner.
func selectCandidate(s Strategy, cands []Candidate, ctx ScoreContext) (Candidate, float64) {
	best := -1
	bestScore := math.Inf(-1)
	for i, c := range cands {
		sc := s.Score(c, ctx)
		if math.IsNaN(sc) {
			continue
		}
		if best < 0 || sc > bestScore {
			best, bestScore = i, sc
		}
	}
	if best < 0 {
		return cands[0], math.Inf(-1)
	}
	return cands[best], bestScore
}
