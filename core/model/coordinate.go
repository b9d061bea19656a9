package model

import (
	"errors"
	"fmt"
	"math"
)

// Coordinate is a WGS-84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Validate reports whether the coordinate is finite and within range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("coordinates out of range: %v,%v", c.Lat, c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// PointKind identifies the role of a RoutePoint.
type PointKind string

const (
	PointStart    PointKind = "start"
	PointWaypoint PointKind = "waypoint"
	PointEnd      PointKind = "end"
)

// RoutePoint is one position of the planned itinerary.
type RoutePoint struct {
	Coordinate
	Kind  PointKind `json:"kind"`
	Label string    `json:"label,omitempty"`
}
