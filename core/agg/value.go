package agg

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Value is an aggregate that may be absent, as opposed to zero.
type Value struct {
	Number  float64
	Defined bool
}

// Absent is the value of first/last over a bucket where the field never appears.
var Absent = Value{}

// Of wraps a defined number.
func Of(n float64) Value {
	return Value{Number: n, Defined: true}
}

// Coerce turns a defined raw field value into a Value. Non-numeric input stays
// defined but carries NaN, so it behaves like "no data" downstream.
func Coerce(raw any) Value {
	n, ok := ToNumber(raw)
	if !ok {
		return Value{Number: math.NaN(), Defined: true}
	}
	return Of(n)
}

// Truthy reports whether the value counts as data: defined, non-zero and not NaN.
// Zero is deliberately indistinguishable from missing.
func (v Value) Truthy() bool {
	return v.Defined && v.Number != 0 && !math.IsNaN(v.Number)
}

// ToNumber coerces a numeric-ish field value to a finite float64.
// Strings are trimmed and parsed; booleans count as 1 and 0.
func ToNumber(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case bool:
		if v {
			n = 1
		}
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case decimal.Decimal:
		n = v.InexactFloat64()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	case []byte:
		return ToNumber(string(v))
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
