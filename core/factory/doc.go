// Package factory is a small generic registry used to build pluggable
// components from configuration. A component is described by a type name
// and a map of raw settings which the factory decodes with json tags.
//
//	reg := factory.NewRegistry[planner.Strategy]()
//	reg.MustRegister("weighted", func(conf map[string]any) (planner.Strategy, error) {
//	    w := planner.NewWeightedStrategy()
//	    return w, factory.Decode(conf, w)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "weighted", Conf: map[string]any{"price_weight": 0.5}})
package factory
