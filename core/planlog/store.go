// Package planlog journals planning attempts. Every call to the planner,
// successful or not, becomes one Record that can be queried later by time
// range, outcome, plan id or station.
package planlog

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/kilianp07/evroute/core/model"
)

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("plan record not found")

// Record captures one planning attempt.
type Record struct {
	ID           string               `json:"id"`
	Timestamp    time.Time            `json:"timestamp"`
	Strategy     string               `json:"strategy,omitempty"`
	Start        model.Coordinate     `json:"start"`
	End          model.Coordinate     `json:"end"`
	Vehicle      model.VehicleProfile `json:"vehicle"`
	StationCount int                  `json:"station_count"`
	Outcome      string               `json:"outcome"`
	Error        string               `json:"error,omitempty"`
	DurationMS   float64              `json:"duration_ms"`
	Plan         *model.RoutePlan     `json:"plan,omitempty"`
}

// StationIDs lists the stations used by the recorded plan.
func (r Record) StationIDs() []string {
	if r.Plan == nil {
		return nil
	}
	ids := make([]string, len(r.Plan.Stops))
	for i, s := range r.Plan.Stops {
		ids[i] = s.Station.ID
	}
	return ids
}

// Query filters records. Zero fields match everything. Limit keeps the
// most recent records.
type Query struct {
	Start     time.Time
	End       time.Time
	ID        string
	Outcome   string
	Strategy  string
	StationID string
	Limit     int
}

// Match reports whether r satisfies every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.ID != "" && r.ID != q.ID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	if q.StationID != "" {
		for _, id := range r.StationIDs() {
			if id == q.StationID {
				return true
			}
		}
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Get returns the record with the given id.
func Get(ctx context.Context, s Store, id string) (Record, error) {
	recs, err := s.Query(ctx, Query{ID: id})
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[len(recs)-1], nil
}

// finish orders records oldest first and applies the limit.
func finish(recs []Record, limit int) []Record {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Timestamp.Before(recs[j].Timestamp) })
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return recs
}
