package planner

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/kilianp07/evroute/core/logger"
)

// Phase is the lifecycle stage of one planning call.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDirect     Phase = "direct"
	PhaseSearching  Phase = "searching"
	PhaseCharging   Phase = "charging"
	PhaseInfeasible Phase = "infeasible"
	PhaseComplete   Phase = "complete"
)

const (
	eventDirect = "direct"
	eventSearch = "search"
	eventCharge = "charge"
	eventArrive = "arrive"
	eventFail   = "fail"
)

// phaseMachine guards the order of planning phases. One machine serves a
// single Plan call.
type phaseMachine struct {
	fsm *fsm.FSM
}

func newPhaseMachine(planID string, log logger.Logger) *phaseMachine {
	idle, searching, charging := string(PhaseIdle), string(PhaseSearching), string(PhaseCharging)
	m := fsm.NewFSM(
		idle,
		fsm.Events{
			{Name: eventDirect, Src: []string{idle}, Dst: string(PhaseDirect)},
			{Name: eventSearch, Src: []string{idle, charging}, Dst: searching},
			{Name: eventCharge, Src: []string{searching}, Dst: charging},
			{Name: eventArrive, Src: []string{idle, string(PhaseDirect), charging}, Dst: string(PhaseComplete)},
			{Name: eventFail, Src: []string{idle, searching, charging}, Dst: string(PhaseInfeasible)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debugw("planner phase", map[string]any{
					"plan_id": planID,
					"event":   e.Event,
					"from":    e.Src,
					"to":      e.Dst,
				})
			},
		},
	)
	return &phaseMachine{fsm: m}
}

// fire applies event and returns the resulting phase. Cancellation of the
// planning context is handled by the loop, not by the machine.
func (m *phaseMachine) fire(event string) (Phase, error) {
	if err := m.fsm.Event(context.Background(), event); err != nil {
		return m.current(), fmt.Errorf("planner phase %s from %s: %w", event, m.fsm.Current(), err)
	}
	return m.current(), nil
}

func (m *phaseMachine) current() Phase { return Phase(m.fsm.Current()) }
