// Package catalog holds the charging station snapshot the planner reads.
// Replacements are atomic, so a planning call always sees one consistent
// set of stations.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/evroute/core/model"
)

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Status        model.StationStatus
	ConnectorType string
	MinPowerKW    float64
	AvailableOnly bool
}

func (f Filter) match(s model.Station) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.ConnectorType != "" && !strings.EqualFold(s.ConnectorType, f.ConnectorType) {
		return false
	}
	if s.PowerKW < f.MinPowerKW {
		return false
	}
	return !f.AvailableOnly || s.Available()
}

// Catalog is the station source used by hosts.
type Catalog interface {
	Snapshot() []model.Station
	Replace(stations []model.Station) error
	Get(id string) (model.Station, bool)
	List(f Filter) []model.Station
	Len() int
}

// MemoryCatalog keeps the current snapshot in memory.
type MemoryCatalog struct {
	mu       sync.RWMutex
	stations []model.Station
	index    map[string]int
	updated  time.Time
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{index: map[string]int{}}
}

// Replace validates stations and swaps them in as the new snapshot.
// Nothing changes when validation fails.
func (c *MemoryCatalog) Replace(stations []model.Station) error {
	if err := Validate(stations); err != nil {
		return err
	}
	cp := make([]model.Station, len(stations))
	copy(cp, stations)
	sort.Slice(cp, func(i, j int) bool { return cp[i].ID < cp[j].ID })
	idx := make(map[string]int, len(cp))
	for i, s := range cp {
		idx[s.ID] = i
	}
	c.mu.Lock()
	c.stations, c.index, c.updated = cp, idx, time.Now()
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy callers may keep and modify.
func (c *MemoryCatalog) Snapshot() []model.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Station, len(c.stations))
	copy(out, c.stations)
	return out
}

func (c *MemoryCatalog) Get(id string) (model.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return model.Station{}, false
	}
	return c.stations[i], true
}

func (c *MemoryCatalog) List(f Filter) []model.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Station, 0, len(c.stations))
	for _, s := range c.stations {
		if f.match(s) {
			out = append(out, s)
		}
	}
	return out
}

func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stations)
}

// UpdatedAt is the time of the last successful Replace.
func (c *MemoryCatalog) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Counts tallies stations by status. Stations without a status count as
// available.
func Counts(stations []model.Station) map[model.StationStatus]int {
	out := map[model.StationStatus]int{
		model.StationAvailable: 0,
		model.StationBusy:      0,
		model.StationOffline:   0,
	}
	for _, s := range stations {
		st := s.Status
		if st == "" {
			st = model.StationAvailable
		}
		out[st]++
	}
	return out
}

// CountAvailable counts the stations with a free slot that are not offline.
func CountAvailable(stations []model.Station) int {
	n := 0
	for _, s := range stations {
		if s.Available() {
			n++
		}
	}
	return n
}

// Validate checks ids are present and unique and that every station has
// usable coordinates and non-negative figures.
func Validate(stations []model.Station) error {
	seen := make(map[string]struct{}, len(stations))
	var errs []error
	for i, s := range stations {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("station %d: missing id", i))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			errs = append(errs, fmt.Errorf("station %s: duplicate id", s.ID))
		}
		seen[s.ID] = struct{}{}
		if err := s.Position.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("station %s: %w", s.ID, err))
		}
		if s.PowerKW < 0 || s.PricePerKWh < 0 || s.FreeSlots < 0 || s.TotalSlots < 0 {
			errs = append(errs, fmt.Errorf("station %s: negative power, price or slots", s.ID))
		}
		switch s.Status {
		case "", model.StationAvailable, model.StationBusy, model.StationOffline:
		default:
			errs = append(errs, fmt.Errorf("station %s: unknown status %q", s.ID, s.Status))
		}
	}
	return errors.Join(errs...)
}
