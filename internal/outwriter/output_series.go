package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeSeriesTable prints one row per tick with one column per field.
func writeSeriesTable(w io.Writer, result schema.SeriesResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := append([]string{"Tick"}, result.Fields...)
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	labelWidth := getMaxTableLabelWidth(cfg, len(result.Fields))
	data := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		row := []string{contract.TruncateLabel(rec.Timestamp, labelWidth)}
		for _, f := range result.Fields {
			v := rec.Values[f]
			text := fmtFloat(v)
			if cfg.UseColors {
				text = contract.GetColorValue(v, text)
			}
			row = append(row, text)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	summary := fmt.Sprintf("Showing %d ticks (%s → %s, aggregation: %s",
		len(result.Records),
		result.WindowStart.Format(contract.DateTimeFormat),
		result.WindowEnd.Format(contract.DateTimeFormat),
		result.Config.Aggregation)
	if result.Config.Accumulation != schema.NoAccumulation {
		summary += fmt.Sprintf(", accumulation: %s", result.Config.Accumulation)
	}
	summary += ")"
	if cfg.UseColors {
		summary = contract.HeaderColor.Sprint(summary)
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Series built in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForSeries writes one CSV row per tick: the label, then each field in order.
func writeCSVResultsForSeries(w io.Writer, result schema.SeriesResult, fmtFloat func(float64) string) error {
	header := append([]string{schema.TimestampKey}, result.Fields...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, rec := range result.Records {
			row := make([]string, 0, len(result.Fields)+1)
			row = append(row, rec.Timestamp)
			for _, f := range result.Fields {
				row = append(row, fmtFloat(rec.Values[f]))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
