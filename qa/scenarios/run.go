package scenarios

import (
	"context"
	"fmt"

	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/planner"
)

// Run plans the scenario trip with its planner settings.
func Run(ctx context.Context, sc *Scenario) (*model.RoutePlan, error) {
	cfg := planner.Config{
		SearchRadiusKm: sc.Planner.SearchRadiusKm,
		MaxIterations:  sc.Planner.MaxIterations,
		RangePolicy:    planner.RangePolicy(sc.Planner.RangePolicy),
		Strategy:       factory.ModuleConfig{Type: sc.Planner.Strategy},
	}
	p, err := planner.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	return p.Plan(ctx, planner.Request{
		Start:    AtKm(0),
		End:      AtKm(sc.DistanceKm),
		Vehicle:  sc.Vehicle,
		Stations: sc.StationList(),
	})
}

// Check compares a planning result with the expectations and lists every
// mismatch.
func Check(exp Expected, plan *model.RoutePlan, err error) []string {
	var problems []string
	if got := planner.Outcome(plan, err); got != exp.Outcome {
		problems = append(problems, fmt.Sprintf("outcome %s, want %s (err: %v)", got, exp.Outcome, err))
		return problems
	}
	if plan == nil {
		return problems
	}
	if exp.Stops != nil && len(plan.Stops) != *exp.Stops {
		problems = append(problems, fmt.Sprintf("%d stops, want %d", len(plan.Stops), *exp.Stops))
	}
	if len(plan.Stops) < exp.MinStops {
		problems = append(problems, fmt.Sprintf("%d stops, want at least %d", len(plan.Stops), exp.MinStops))
	}
	for i, s := range plan.Stops {
		if exp.MinDepartureSoC != nil && s.DepartureSoCPct < *exp.MinDepartureSoC {
			problems = append(problems, fmt.Sprintf("stop %d departs at %.2f%%, want >= %.2f", i, s.DepartureSoCPct, *exp.MinDepartureSoC))
		}
		if exp.MaxDepartureSoC != nil && s.DepartureSoCPct > *exp.MaxDepartureSoC {
			problems = append(problems, fmt.Sprintf("stop %d departs at %.2f%%, want <= %.2f", i, s.DepartureSoCPct, *exp.MaxDepartureSoC))
		}
	}
	if exp.CostAbove != nil && plan.TotalCost <= *exp.CostAbove {
		problems = append(problems, fmt.Sprintf("total cost %.2f, want > %.2f", plan.TotalCost, *exp.CostAbove))
	}
	if len(exp.StationIDs) > 0 {
		ids := make([]string, len(plan.Stops))
		for i, s := range plan.Stops {
			ids[i] = s.Station.ID
		}
		if fmt.Sprint(ids) != fmt.Sprint(exp.StationIDs) {
			problems = append(problems, fmt.Sprintf("stations %v, want %v", ids, exp.StationIDs))
		}
	}
	return problems
}
