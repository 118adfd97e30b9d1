// Package anomalies implements the anomalies command
package anomalies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"fjacquet/paycycle/cmd/common"
	"fjacquet/paycycle/cmd/root"
	"fjacquet/paycycle/internal/anomaly"
	"fjacquet/paycycle/internal/extractor"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/snapshot"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Options holds the command flags.
type Options struct {
	Month        string
	Format       string
	Output       string
	AnomalyOnly  bool
	CSVDelimiter rune
}

var opts Options

// Cmd represents the anomalies command
var Cmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Compare spending per category with the previous month",
	Long: `Total the spending of each category for a month and the month before it,
and flag categories whose spending rose sharply.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		o := opts
		o.CSVDelimiter = c.GetConfig().CSVDelimiter()
		return Run(cmd.Context(), c.GetSnapshotBuilder(), cmd.OutOrStdout(), o, time.Now())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Month, "month", "m", "", "Month to analyse (YYYY-MM, default: current month)")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatTable, "Output format (table, json, csv)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to this file instead of stdout")
	Cmd.Flags().BoolVar(&opts.AnomalyOnly, "only-anomalies", false, "Show flagged categories only")
}

// Run computes and prints the category comparison.
func Run(ctx context.Context, b *snapshot.Builder, w io.Writer, o Options, now time.Time) error {
	month, err := common.ParseMonth(o.Month, now)
	if err != nil {
		return err
	}

	rows, err := b.Anomalies(ctx, month)
	if err != nil {
		return err
	}
	if o.AnomalyOnly {
		rows = anomaly.Flagged(rows)
	}

	var buf bytes.Buffer
	switch o.Format {
	case FormatTable, "":
		writeTable(&buf, rows, month, b.Currency())
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return err
		}
	case FormatCSV:
		delim := o.CSVDelimiter
		if delim == 0 {
			delim = ','
		}
		if err := extractor.WriteAnomaliesCSV(&buf, rows, delim); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (must be table, json or csv)", o.Format)
	}
	return common.WriteOutput(w, o.Output, buf.Bytes())
}

func writeTable(w io.Writer, rows []models.CategoryPeriodTotal, month time.Time, currency string) {
	fmt.Fprintf(w, "Spending %s vs %s (%s)\n",
		month.Format("2006-01"), anomaly.PreviousMonth(month).Format("2006-01"), currency)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No spending recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCURRENT\tPREVIOUS\tCHANGE\tFLAG")
	for _, r := range rows {
		change := "new"
		if r.ChangePercent != nil {
			change = fmt.Sprintf("%+d%%", *r.ChangePercent)
		}
		flag := ""
		if r.IsAnomaly {
			flag = "!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Category,
			models.FormatCents(r.CurrentCents, ""), models.FormatCents(r.PreviousCents, ""), change, flag)
	}
	_ = tw.Flush()
}
