// Package safetospend implements the safe-to-spend command
package safetospend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"fjacquet/paycycle/cmd/common"
	"fjacquet/paycycle/cmd/root"
	"fjacquet/paycycle/internal/cashflow"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/snapshot"

	"github.com/spf13/cobra"
)

// Options holds the command flags.
type Options struct {
	Today   string
	Verbose bool
	JSON    bool
}

var opts Options

// Cmd represents the safe-to-spend command
var Cmd = &cobra.Command{
	Use:   "safe-to-spend",
	Short: "Show how much can be spent today without going negative before payday",
	Long: `Project the balance from today to the next pay date, applying every bill,
BNPL instalment and credit card minimum that falls due on the way, and report
the lowest point of that projection as the amount that is safe to spend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c.GetSnapshotBuilder(), cmd.OutOrStdout(), opts, time.Now())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Today, "today", "t", "", "Evaluate as of this date (YYYY-MM-DD)")
	Cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List every projected debit")
	Cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
}

// Run computes and prints the safe-to-spend figure.
func Run(ctx context.Context, b *snapshot.Builder, w io.Writer, o Options, now time.Time) error {
	today, err := common.ParseToday(o.Today, now)
	if err != nil {
		return err
	}

	p, err := b.Projection(ctx, today)
	if err != nil {
		return err
	}

	if o.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if o.Verbose {
			return enc.Encode(p)
		}
		return enc.Encode(p.Result())
	}

	printResult(w, p, b.Currency())
	if o.Verbose {
		printEvents(w, p, b.Currency())
	}
	return nil
}

func printResult(w io.Writer, p cashflow.Projection, currency string) {
	if !p.HasHorizon {
		fmt.Fprintln(w, "No upcoming income: nothing is safe to spend.")
		return
	}
	res := p.Result()
	fmt.Fprintf(w, "Safe to spend: %s\n", models.FormatCents(res.SafeToSpendCents, currency))
	fmt.Fprintf(w, "Next pay:      %s (%d days)\n", dateutils.ToISODate(p.Horizon), res.DaysUntilPay)
}

func printEvents(w io.Writer, p cashflow.Projection, currency string) {
	fmt.Fprintf(w, "\nStarting balance: %s\n", models.FormatCents(p.StartingBalanceCents, currency))
	if len(p.Events) == 0 {
		fmt.Fprintln(w, "No debits before payday.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKIND\tNAME\tAMOUNT\tBALANCE")
	for _, e := range p.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dateutils.ToISODate(e.Date), e.Kind, e.Name,
			models.FormatCents(-e.AmountCents, ""), models.FormatCents(e.BalanceCents, ""))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Lowest balance: %s on %s\n",
		models.FormatCents(p.MinimumBalanceCents, currency), dateutils.ToISODate(p.MinimumDate))
}
