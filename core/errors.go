package core

import (
	"errors"

	"github.com/huangsam/tally/core/agg"
)

// Sentinel errors returned by the series builder. Callers match them with errors.Is;
// the returned errors wrap them with the offending value and position.
var (
	ErrInvalidTimestamp        = errors.New("invalid timestamp")
	ErrUnsupportedGranularity  = errors.New("unsupported granularity")
	ErrUnsupportedIntervalUnit = errors.New("unsupported interval unit")
	ErrUnsupportedAggregation  = agg.ErrUnsupportedAggregation
	ErrUnsupportedAccumulation = errors.New("unsupported accumulation")
	ErrReservedField           = errors.New("reserved field name")
)
