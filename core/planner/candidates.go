package planner

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/kilianp07/evroute/core/geo"
	"github.com/kilianp07/evroute/core/model"
)

// DefaultSearchRadiusKm is used when a search is issued without a radius.
const DefaultSearchRadiusKm = 50.0

// Candidate is a selectable station together with its distance from the
// point the search was issued from.
type Candidate struct {
	Station    model.Station
	DistanceKm float64
}

// CandidateSearch indexes a station snapshot for radius queries. It is
// read-only after construction and safe for concurrent use.
type CandidateSearch struct {
	tree rtree.RTreeG[int]
	all  []model.Station
}

// NewCandidateSearch indexes the available stations of the snapshot. The
// slice is copied so later changes by the caller do not leak in.
func NewCandidateSearch(stations []model.Station) *CandidateSearch {
	cs := &CandidateSearch{all: make([]model.Station, 0, len(stations))}
	for _, st := range stations {
		if !st.Available() {
			continue
		}
		if st.Position.Validate() != nil {
			continue
		}
		pt := [2]float64{st.Position.Lon, st.Position.Lat}
		cs.tree.Insert(pt, pt, len(cs.all))
		cs.all = append(cs.all, st)
	}
	return cs
}

// Len returns the number of indexed stations.
func (cs *CandidateSearch) Len() int { return len(cs.all) }

// FindReachable returns the available stations within maxRadiusKm of point,
// nearest first. Ties are broken by station ID. An empty result is not an
// error.
func (cs *CandidateSearch) FindReachable(point model.Coordinate, maxRadiusKm float64) []Candidate {
	if maxRadiusKm <= 0 {
		maxRadiusKm = DefaultSearchRadiusKm
	}
	box := geo.BoundingBox(point, maxRadiusKm)
	var out []Candidate
	cs.tree.Search(box.Min(), box.Max(), func(_, _ [2]float64, idx int) bool {
		st := cs.all[idx]
		d := geo.DistanceKm(point, st.Position)
		if d <= maxRadiusKm {
			out = append(out, Candidate{Station: st, DistanceKm: d})
		}
		return true
	})
	sortCandidates(out)
	return out
}

func sortCandidates(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].DistanceKm != cs[j].DistanceKm {
			return cs[i].DistanceKm < cs[j].DistanceKm
		}
		return cs[i].Station.ID < cs[j].Station.ID
	})
}
