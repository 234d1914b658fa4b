package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/huangsam/tally/schema"
	"gopkg.in/yaml.v3"
)

// DecodeJSON reads either a top-level array of objects or an object with a
// "points" array. Numbers are kept as json.Number so large epochs stay exact.
func DecodeJSON(data []byte) ([]schema.Point, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '{' {
		var wrapper struct {
			Points []schema.Point `json:"points"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode JSON points: %w", err)
		}
		return wrapper.Points, nil
	}

	var points []schema.Point
	if err := dec.Decode(&points); err != nil {
		return nil, fmt.Errorf("failed to decode JSON points: %w", err)
	}
	return points, nil
}

// DecodeYAML reads a sequence of mappings.
func DecodeYAML(data []byte) ([]schema.Point, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML points: %w", err)
	}
	points := make([]schema.Point, len(raw))
	for i, m := range raw {
		points[i] = schema.Point(m)
	}
	return points, nil
}

// DecodeCSV reads a header row followed by one point per record. The header
// must name a timestamp column; empty cells are left out of the point.
func DecodeCSV(data []byte) ([]schema.Point, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// Strip a UTF-8 BOM left by spreadsheet exports
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Contains(header, schema.TimestampKey) {
		return nil, fmt.Errorf("CSV header must contain a '%s' column", schema.TimestampKey)
	}

	var points []schema.Point
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		p := make(schema.Point, len(header))
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				p[header[i]] = cell
			}
		}
		points = append(points, p)
	}
	return points, nil
}
