package core

import (
	"fmt"
	"math"

	"github.com/huangsam/tally/core/agg"
	"github.com/huangsam/tally/schema"
)

// CarryState maps each field to its last known value. It lives for one build only.
type CarryState map[string]float64

// Emit combines a bucket's display aggregate with the carried value.
//
// A falsy display (zero, NaN or absent) emits the carried value when an
// accumulation mode is set and zero otherwise. A truthy display emits the sum
// (total), the larger of the two (max), or itself (current and none).
func Emit(display agg.Value, carried float64, mode schema.AccumulationMode) (float64, error) {
	if _, ok := schema.ValidAccumulationModes[mode]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAccumulation, mode)
	}

	if !display.Truthy() {
		if mode == schema.NoAccumulation {
			return 0, nil
		}
		return carried, nil
	}

	switch mode {
	case schema.TotalAccumulation:
		return display.Number + carried, nil
	case schema.MaxAccumulation:
		return math.Max(display.Number, carried), nil
	default:
		return display.Number, nil
	}
}

// NextCarry returns the carry for the following bucket: the storage aggregate
// when it is truthy, the previous carry otherwise.
func NextCarry(storage agg.Value, carried float64) float64 {
	if storage.Truthy() {
		return storage.Number
	}
	return carried
}
