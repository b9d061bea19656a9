package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CatalogConfig points at the station snapshot loaded at startup.
type CatalogConfig struct {
	// Path of the snapshot; empty starts with an empty catalog.
	Path string `json:"path"`
	// Format is json, yaml or osm. It is inferred from the extension when empty.
	Format string `json:"format"`
	// DefaultPowerKW is assigned to OSM stations without an output tag.
	DefaultPowerKW float64 `json:"default_power_kw"`
}

func (c *CatalogConfig) SetDefaults() {
	if c.Format == "" && c.Path != "" {
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case ".yaml", ".yml":
			c.Format = "yaml"
		case ".pbf", ".osm":
			c.Format = "osm"
		default:
			c.Format = "json"
		}
	}
	if c.DefaultPowerKW == 0 {
		c.DefaultPowerKW = 22
	}
}

func (c CatalogConfig) Validate() error {
	switch c.Format {
	case "", "json", "yaml", "osm":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	if c.DefaultPowerKW < 0 {
		return fmt.Errorf("default_power_kw must not be negative")
	}
	return nil
}
