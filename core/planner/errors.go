package planner

import (
	"errors"
	"fmt"

	"github.com/kilianp07/evroute/core/model"
)

var (
	// ErrInvalidProfile is returned before any search when the vehicle
	// profile cannot be planned with.
	ErrInvalidProfile = errors.New("invalid vehicle profile")
	// ErrInvalidChargeTarget is returned when a stop would not add charge.
	ErrInvalidChargeTarget = errors.New("invalid charge target")
	// ErrInfeasible is returned when no usable station is reachable.
	ErrInfeasible = errors.New("route infeasible")
	// ErrNoProgress is returned when the planning loop stops converging.
	ErrNoProgress = errors.New("planning made no progress")
	// ErrInvalidRequest is returned for unusable trip endpoints.
	ErrInvalidRequest = errors.New("invalid planning request")
	// ErrUnknownStrategy is returned when no scoring strategy matches a name.
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
)

// PlanError carries the context of a planning failure. It unwraps to one of
// the sentinel errors above.
type PlanError struct {
	Kind      error
	Reason    string
	Iteration int
	Position  model.Coordinate
}

func (e *PlanError) Error() string {
	if e.Iteration > 0 {
		return fmt.Sprintf("%v: %s (after %d stops, at %s)", e.Kind, e.Reason, e.Iteration, e.Position)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

func (e *PlanError) Unwrap() error { return e.Kind }

func failure(kind error, s State, format string, args ...any) *PlanError {
	return &PlanError{
		Kind:      kind,
		Reason:    fmt.Sprintf(format, args...),
		Iteration: s.Iteration,
		Position:  s.Position,
	}
}

// Outcome labels used by metrics, journal records and the HTTP API.
const (
	OutcomeDirect              = "direct"
	OutcomeComplete            = "complete"
	OutcomeInvalidProfile      = "invalid_profile"
	OutcomeInvalidChargeTarget = "invalid_charge_target"
	OutcomeInfeasible          = "infeasible"
	OutcomeNoProgress          = "no_progress"
	OutcomeInvalidRequest      = "invalid_request"
	OutcomeError               = "error"
)

// Outcome maps a planning result to a stable label.
func Outcome(plan *model.RoutePlan, err error) string {
	switch {
	case err == nil && plan != nil && plan.Direct:
		return OutcomeDirect
	case err == nil:
		return OutcomeComplete
	case errors.Is(err, ErrInvalidProfile):
		return OutcomeInvalidProfile
	case errors.Is(err, ErrInvalidChargeTarget):
		return OutcomeInvalidChargeTarget
	case errors.Is(err, ErrInfeasible):
		return OutcomeInfeasible
	case errors.Is(err, ErrNoProgress):
		return OutcomeNoProgress
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnknownStrategy):
		return OutcomeInvalidRequest
	default:
		return OutcomeError
	}
}

// IsPlanningFailure reports whether err is one of the typed planning outcomes
// rather than an unexpected error.
func IsPlanningFailure(err error) bool {
	return errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrInvalidChargeTarget) ||
		errors.Is(err, ErrInfeasible) ||
		errors.Is(err, ErrNoProgress)
}
