package osmimport

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"

	"github.com/kilianp07/evroute/core/model"
)

// Socket tags in preference order; the first present names the connector.
var sockets = []struct {
	tag       string
	connector string
}{
	{"socket:type2_combo", "CCS"},
	{"socket:tesla_supercharger", "Tesla"},
	{"socket:chademo", "CHAdeMO"},
	{"socket:type2", "Type2"},
	{"socket:type1", "Type1"},
	{"socket:schuko", "Schuko"},
}

func fromTags(id string, pos model.Coordinate, tags osm.Tags, opt Options) model.Station {
	s := model.Station{
		ID:            id,
		Name:          firstTag(tags, "name", "operator", "brand"),
		Address:       address(tags),
		Position:      pos,
		PowerKW:       maxPower(tags),
		PricePerKWh:   price(tags.Find("charge")),
		ConnectorType: connector(tags),
		Status:        model.StationAvailable,
	}
	if s.PowerKW <= 0 {
		s.PowerKW = opt.DefaultPowerKW
	}
	if s.PricePerKWh <= 0 {
		s.PricePerKWh = opt.DefaultPricePerKWh
	}
	if n, err := strconv.Atoi(strings.TrimSpace(tags.Find("capacity"))); err == nil && n > 0 {
		s.TotalSlots, s.FreeSlots = n, n
	} else {
		s.TotalSlots, s.FreeSlots = 1, 1
	}
	switch tags.Find("operational_status") {
	case "closed", "out_of_order", "broken":
		s.Status = model.StationOffline
	}
	return s
}

func firstTag(tags osm.Tags, keys ...string) string {
	for _, k := range keys {
		if v := tags.Find(k); v != "" {
			return v
		}
	}
	return ""
}

func address(tags osm.Tags) string {
	street := strings.TrimSpace(tags.Find("addr:housenumber") + " " + tags.Find("addr:street"))
	city := strings.TrimSpace(tags.Find("addr:postcode") + " " + tags.Find("addr:city"))
	switch {
	case street != "" && city != "":
		return street + ", " + city
	case street != "":
		return street
	default:
		return city
	}
}

func connector(tags osm.Tags) string {
	for _, s := range sockets {
		if v := tags.Find(s.tag); v != "" && v != "no" && v != "0" {
			return s.connector
		}
	}
	return ""
}

// maxPower returns the highest kW figure among the output tags.
func maxPower(tags osm.Tags) float64 {
	var best float64
	for _, t := range tags {
		if t.Key != "charging_station:output" && !(strings.HasPrefix(t.Key, "socket:") && strings.HasSuffix(t.Key, ":output")) {
			continue
		}
		for _, part := range strings.Split(t.Value, ";") {
			if kw := parsePowerKW(part); kw > best {
				best = kw
			}
		}
	}
	return best
}

// parsePowerKW reads values like "150 kW", "22kW", "3.7" or "7400 W".
// Bare numbers are taken as kW.
func parsePowerKW(v string) float64 {
	v = strings.ToLower(strings.TrimSpace(v))
	scale := 1.0
	switch {
	case strings.HasSuffix(v, "kw"):
		v = strings.TrimSuffix(v, "kw")
	case strings.HasSuffix(v, "kva"):
		v = strings.TrimSuffix(v, "kva")
	case strings.HasSuffix(v, "w"):
		v = strings.TrimSuffix(v, "w")
		scale = 0.001
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v, ",", ".")), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f * scale
}

// price reads the first per kWh amount of a charge tag such as
// "0.45 EUR/kWh" or "EUR 0.39/kWh; 0.50 EUR/min".
func price(charge string) float64 {
	for _, part := range strings.Split(charge, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasSuffix(strings.ToLower(part), "/kwh") {
			continue
		}
		part = part[:len(part)-len("/kwh")]
		for _, field := range strings.Fields(part) {
			if f, err := strconv.ParseFloat(strings.ReplaceAll(field, ",", "."), 64); err == nil && f >= 0 {
				return f
			}
		}
	}
	return 0
}
