// Package osmimport extracts charging stations from OpenStreetMap data.
//
// Nodes and ways tagged amenity=charging_station become stations. Ways are
// placed at the centroid of their nodes, which needs a second pass over the
// input, so readers must be seekable.
package osmimport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"github.com/kilianp07/evroute/core/model"
)

// Format of the OSM input.
type Format string

const (
	FormatPBF Format = "pbf"
	FormatXML Format = "xml"
)

// Options tune how tags become station fields.
type Options struct {
	// DefaultPowerKW is used when no output tag can be parsed.
	DefaultPowerKW float64
	// DefaultPricePerKWh is used when the charge tag has no per kWh price.
	DefaultPricePerKWh float64
	// Procs is the number of pbf decoders; zero means one.
	Procs int
}

// FormatOf guesses the input format from the file name.
func FormatOf(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".pbf") {
		return FormatPBF
	}
	return FormatXML
}

// ImportFile opens path and imports its charging stations.
func ImportFile(ctx context.Context, path string, opt Options) ([]model.Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	stations, err := Import(ctx, f, FormatOf(path), opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return stations, nil
}

// Import reads every charging station from rs. Stations are sorted by id.
func Import(ctx context.Context, rs io.ReadSeeker, format Format, opt Options) ([]model.Station, error) {
	if format != FormatPBF && format != FormatXML {
		return nil, fmt.Errorf("unknown osm format %q", format)
	}

	// Pass 1: charging station ways and the nodes they reference.
	var ways []*osm.Way
	referenced := make(map[osm.NodeID]struct{})
	err := scan(ctx, rs, format, opt, false, func(o osm.Object) {
		w, ok := o.(*osm.Way)
		if !ok || !isChargingStation(w.Tags) || len(w.Nodes) == 0 {
			return
		}
		ways = append(ways, w)
		for _, wn := range w.Nodes {
			referenced[wn.ID] = struct{}{}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	// Pass 2: charging station nodes and way node coordinates.
	var stations []model.Station
	coords := make(map[osm.NodeID]model.Coordinate, len(referenced))
	err = scan(ctx, rs, format, opt, true, func(o osm.Object) {
		n, ok := o.(*osm.Node)
		if !ok {
			return
		}
		if _, need := referenced[n.ID]; need {
			coords[n.ID] = model.Coordinate{Lat: n.Lat, Lon: n.Lon}
		}
		if isChargingStation(n.Tags) {
			stations = append(stations, fromTags(fmt.Sprintf("osm-node-%d", n.ID), model.Coordinate{Lat: n.Lat, Lon: n.Lon}, n.Tags, opt))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}

	for _, w := range ways {
		var lat, lon float64
		var found int
		for _, wn := range w.Nodes {
			c, ok := coords[wn.ID]
			if !ok {
				continue
			}
			lat += c.Lat
			lon += c.Lon
			found++
		}
		if found == 0 {
			continue
		}
		pos := model.Coordinate{Lat: lat / float64(found), Lon: lon / float64(found)}
		stations = append(stations, fromTags(fmt.Sprintf("osm-way-%d", w.ID), pos, w.Tags, opt))
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

func scan(ctx context.Context, r io.Reader, format Format, opt Options, nodes bool, fn func(osm.Object)) error {
	var scanner osm.Scanner
	switch format {
	case FormatPBF:
		procs := opt.Procs
		if procs <= 0 {
			procs = 1
		}
		s := osmpbf.New(ctx, r, procs)
		s.SkipRelations = true
		s.SkipNodes = !nodes
		s.SkipWays = nodes
		scanner = s
	default:
		scanner = osmxml.New(ctx, r)
	}
	for scanner.Scan() {
		fn(scanner.Object())
	}
	if err := scanner.Err(); err != nil {
		_ = scanner.Close()
		return err
	}
	return scanner.Close()
}

func isChargingStation(tags osm.Tags) bool {
	return tags.Find("amenity") == "charging_station"
}
