// Package schema has configs, models and enumerations shared by all parts of tally.
package schema

// TimestampKey is the entry under which every Point carries its instant.
const TimestampKey = "timestamp"

// Point is one caller-owned data record: a timestamp plus an open set of named
// numeric-ish fields (numbers, numeric strings, or missing). Points are never
// mutated by the series builder.
type Point map[string]any

// Timestamp returns the raw timestamp value of the point.
func (p Point) Timestamp() any {
	return p[TimestampKey]
}

// Field returns the raw value of a field and whether it is defined.
// A present key holding nil counts as undefined.
func (p Point) Field(name string) (any, bool) {
	v, ok := p[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
