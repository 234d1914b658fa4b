package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/tally/internal/contract"
)

// logSeriesHeader prints a concise, 2-line header before a build.
// It goes to stderr so piped JSON and CSV stay clean.
func logSeriesHeader(cfg *contract.Config, origin string, numPoints int, iv Interval) {
	// Line 1: The build summary (Source and Fields)
	fmt.Fprintf(os.Stderr, "🔎 Source: %s (%d points, fields: %s)\n", origin, numPoints, strings.Join(cfg.Fields, ", "))

	// Line 2: The window being bucketed
	fmt.Fprintf(os.Stderr, "📅 Range: %s → %s (every %s)\n",
		iv.Start.Format(contract.DateTimeFormat), iv.End.Format(contract.DateTimeFormat), cfg.Series.Granularity)
}
