package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Aggregation is the normalized (display, storage) pair of aggregation modes.
// Display decides what a bucket shows; Storage decides what gets carried forward.
type Aggregation struct {
	Display AggregationMode `json:"display"`
	Storage AggregationMode `json:"storage"`
}

// SingleAggregation uses one mode for both display and storage.
func SingleAggregation(mode AggregationMode) Aggregation {
	return Aggregation{Display: mode, Storage: mode}
}

// PairAggregation uses distinct modes for display and storage.
func PairAggregation(display, storage AggregationMode) Aggregation {
	return Aggregation{Display: display, Storage: storage}
}

// IsSingle reports whether display and storage use the same mode.
func (a Aggregation) IsSingle() bool {
	return a.Display == a.Storage
}

// String renders the aggregation the way the CLI accepts it.
func (a Aggregation) String() string {
	if a.IsSingle() {
		return string(a.Display)
	}
	return fmt.Sprintf("%s:%s", a.Display, a.Storage)
}

// MarshalJSON writes a single mode as a bare string and a pair as an object.
func (a Aggregation) MarshalJSON() ([]byte, error) {
	if a.IsSingle() {
		return json.Marshal(string(a.Display))
	}
	type pair Aggregation
	return json.Marshal(pair(a))
}

// UnmarshalJSON accepts either a bare mode string or a {display, storage} object.
func (a *Aggregation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var mode string
		if err := json.Unmarshal(data, &mode); err != nil {
			return err
		}
		*a = SingleAggregation(AggregationMode(mode))
		return nil
	}
	type pair Aggregation
	var p pair
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("aggregation must be a mode string or a display/storage object: %w", err)
	}
	*a = Aggregation(p)
	return nil
}

// SeriesConfig is the immutable configuration of one series build.
type SeriesConfig struct {
	Granularity    Granularity      `json:"granularity"`
	IntervalUnit   IntervalUnit     `json:"interval_unit"`
	IntervalLength int              `json:"interval_length"`
	Aggregation    Aggregation      `json:"aggregation"`
	Accumulation   AccumulationMode `json:"accumulation,omitempty"`
	Historical     bool             `json:"historical,omitempty"`
}

// OutputRecord is one emitted bucket: a formatted label plus one value per field.
// It encodes to JSON as a flat object keyed by "timestamp" and the field names.
type OutputRecord struct {
	Timestamp string
	Values    map[string]float64
}

// MarshalJSON flattens the record into a single object with the label first,
// followed by the fields in FieldNames order.
func (r OutputRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	label, err := json.Marshal(r.Timestamp)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"` + TimestampKey + `":`)
	buf.Write(label)
	for _, name := range r.FieldNames() {
		if name == TimestampKey {
			continue
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Values[name])
		if err != nil {
			return nil, fmt.Errorf("record field %q: %w", name, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a record written by MarshalJSON.
func (r *OutputRecord) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	r.Values = make(map[string]float64, len(flat))
	for k, raw := range flat {
		if k == TimestampKey {
			if err := json.Unmarshal(raw, &r.Timestamp); err != nil {
				return fmt.Errorf("record timestamp: %w", err)
			}
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("record field %q: %w", k, err)
		}
		r.Values[k] = v
	}
	return nil
}

// FieldNames returns the record's field names in sorted order.
func (r OutputRecord) FieldNames() []string {
	return slices.Sorted(maps.Keys(r.Values))
}

// SeriesResult is a built series together with the window it covers.
type SeriesResult struct {
	Fields      []string       `json:"fields"`
	Config      SeriesConfig   `json:"config"`
	Locale      string         `json:"locale"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Records     []OutputRecord `json:"records"`
}
