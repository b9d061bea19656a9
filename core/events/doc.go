// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: one planning call finished, successfully or not
//   - StopEvent: a charging stop was selected in a successful plan
package events
