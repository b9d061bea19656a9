package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evroute/core/model"
)

// Document is the on-disk layout of a station snapshot. Files holding a bare
// list of stations are accepted too.
type Document struct {
	Stations []model.Station `json:"stations" yaml:"stations"`
}

// FormatOf infers json or yaml from a file extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// LoadFile reads stations from a json or yaml file. An empty format is
// inferred from the extension.
func LoadFile(path, format string) ([]model.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatOf(path)
	}
	stations, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stations, nil
}

// Decode parses a snapshot document or bare list.
func Decode(data []byte, format string) ([]model.Station, error) {
	var doc Document
	switch format {
	case "yaml", "yml":
		var list []model.Station
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml stations: %w", err)
		}
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var list []model.Station
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("decode json stations: %w", err)
			}
			return list, nil
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode json stations: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported station format %q", format)
	}
	return doc.Stations, nil
}

// WriteFile stores stations as a snapshot document.
func WriteFile(path, format string, stations []model.Station) error {
	if format == "" {
		format = FormatOf(path)
	}
	doc := Document{Stations: stations}
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml", "yml":
		data, err = yaml.Marshal(doc)
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	default:
		return fmt.Errorf("unsupported station format %q", format)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
