package planner

import (
	"fmt"

	"github.com/kilianp07/evroute/core/factory"
)

// Built-in strategy names.
const (
	StrategyNearest      = "nearest"
	StrategyPrice        = "price"
	StrategyAvailability = "availability"
	StrategyWeighted     = "weighted"
)

var strategies = factory.NewRegistry[Strategy]()

func init() {
	strategies.MustRegister(StrategyNearest, func(map[string]any) (Strategy, error) {
		return NearestStrategy{}, nil
	})
	strategies.MustRegister(StrategyPrice, weightedFactory(NewPriceWeightedStrategy))
	strategies.MustRegister(StrategyAvailability, weightedFactory(NewAvailabilityWeightedStrategy))
	strategies.MustRegister(StrategyWeighted, weightedFactory(NewWeightedStrategy))
}

// weightedFactory starts from a preset and lets the raw config override
// individual weights.
func weightedFactory(preset func() *WeightedStrategy) factory.Factory[Strategy] {
	return func(conf map[string]any) (Strategy, error) {
		w := preset()
		if err := factory.Decode(conf, w); err != nil {
			return nil, fmt.Errorf("decode %s weights: %w", w.Name(), err)
		}
		return w, nil
	}
}

// RegisterStrategy adds a strategy factory under name.
func RegisterStrategy(name string, f factory.Factory[Strategy]) error {
	return strategies.Register(name, f)
}

// NewStrategy builds the strategy described by cfg.
func NewStrategy(cfg factory.ModuleConfig) (Strategy, error) {
	if cfg.Type == "" {
		cfg.Type = StrategyNearest
	}
	s, err := strategies.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, err)
	}
	return s, nil
}

// StrategyNames lists the registered strategies in lexical order.
func StrategyNames() []string { return strategies.Names() }
