package outwriter

import (
	"os"

	"github.com/huangsam/tally/internal/contract"
	"golang.org/x/term"
)

// Per-column budget of the series table, borders and padding included.
const (
	labelColumnMin   = 10
	labelColumnMax   = 40
	valueColumnWidth = 16
	tableChrome      = 4
)

// getMaxTableLabelWidth calculates the maximum width for tick labels in table output
// based on terminal width and the number of value columns.
func getMaxTableLabelWidth(cfg *contract.Config, numFields int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	available := termWidth - numFields*valueColumnWidth - tableChrome
	if available < labelColumnMin {
		return labelColumnMin
	}
	if available > labelColumnMax {
		return labelColumnMax
	}
	return available
}
