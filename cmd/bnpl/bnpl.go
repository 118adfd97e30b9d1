// Package bnpl implements the buy-now-pay-later plan commands
package bnpl

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"fjacquet/paycycle/cmd/common"
	"fjacquet/paycycle/cmd/root"
	bnplsvc "fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"
	"fjacquet/paycycle/internal/snapshot"

	"github.com/spf13/cobra"
)

// AddOptions holds the flags of bnpl add.
type AddOptions struct {
	Item        string
	Provider    string
	Amount      string
	Frequency   string
	Total       int
	Remaining   int
	NextPayment string
}

var (
	addOpts        AddOptions
	reconcileToday string
)

// Cmd represents the bnpl command
var Cmd = &cobra.Command{
	Use:   "bnpl",
	Short: "Manage buy-now-pay-later plans",
	Long:  `List, add, pay and reconcile buy-now-pay-later instalment plans.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active plans without modifying them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		return RunList(cmd.Context(), c.GetReconciler(), cmd.OutOrStdout(), c.GetSnapshotBuilder().Currency())
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		return RunAdd(cmd.Context(), c.GetReconciler(), cmd.OutOrStdout(), addOpts)
	},
}

var payCmd = &cobra.Command{
	Use:   "pay <plan-id>",
	Short: "Record one instalment paid ahead of schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		return RunPay(cmd.Context(), c.GetReconciler(), cmd.OutOrStdout(), args[0])
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Advance every plan past instalments that have already fallen due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		today, err := common.ParseToday(reconcileToday, time.Now())
		if err != nil {
			return err
		}
		return RunReconcile(cmd.Context(), c.GetReconciler(), cmd.OutOrStdout(), today)
	},
}

func init() {
	addCmd.Flags().StringVar(&addOpts.Item, "item", "", "Item purchased")
	addCmd.Flags().StringVar(&addOpts.Provider, "provider", "", "BNPL provider (e.g. Afterpay, Zip)")
	addCmd.Flags().StringVarP(&addOpts.Amount, "amount", "a", "", "Instalment amount (e.g. 25.00)")
	addCmd.Flags().StringVarP(&addOpts.Frequency, "frequency", "f", string(recurrence.Fortnightly), "Instalment frequency (weekly, fortnightly, monthly, quarterly, yearly)")
	addCmd.Flags().IntVar(&addOpts.Total, "total", 4, "Total number of instalments")
	addCmd.Flags().IntVar(&addOpts.Remaining, "remaining", 0, "Instalments still to pay (default: total)")
	addCmd.Flags().StringVar(&addOpts.NextPayment, "next", "", "Next payment date (YYYY-MM-DD)")
	_ = addCmd.MarkFlagRequired("item")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("next")

	reconcileCmd.Flags().StringVarP(&reconcileToday, "today", "t", "", "Reconcile as of this date (YYYY-MM-DD)")

	Cmd.AddCommand(listCmd, addCmd, payCmd, reconcileCmd)
}

// RunList prints the active plans.
func RunList(ctx context.Context, r *bnplsvc.Reconciler, w io.Writer, currency string) error {
	plans, err := r.List(ctx)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(w, "No active plans.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tPROVIDER\tINSTALMENT\tFREQUENCY\tPAID\tNEXT\tOUTSTANDING")
	var outstanding int64
	for _, p := range plans {
		s := snapshot.Summarize(p)
		outstanding += s.OutstandingCents
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			s.ID, s.ItemName, s.Provider,
			models.FormatCents(s.InstalmentAmountCents, ""), s.Frequency,
			s.InstalmentsPaid, p.InstalmentsTotal, s.NextPaymentDate,
			models.FormatCents(s.OutstandingCents, ""))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Total outstanding: %s\n", models.FormatCents(outstanding, currency))
	return nil
}

// RunAdd validates and stores a new plan.
func RunAdd(ctx context.Context, r *bnplsvc.Reconciler, w io.Writer, o AddOptions) error {
	amount, err := models.ParseCents(o.Amount)
	if err != nil {
		return fmt.Errorf("invalid --amount: %w", err)
	}
	next, err := dateutils.ParseISODate(o.NextPayment)
	if err != nil {
		return fmt.Errorf("invalid --next %q: expected YYYY-MM-DD", o.NextPayment)
	}

	created, err := r.Add(ctx, models.BnplPlan{
		ItemName:              o.Item,
		Provider:              o.Provider,
		InstalmentAmountCents: amount,
		Frequency:             recurrence.ParseFrequency(o.Frequency),
		InstalmentsTotal:      o.Total,
		InstalmentsRemaining:  o.Remaining,
		NextPaymentDate:       next,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added plan %s: %s, %d x %s %s, next payment %s\n",
		created.ID, created.ItemName, created.InstalmentsRemaining,
		models.FormatCents(created.InstalmentAmountCents, ""), created.Frequency,
		dateutils.ToISODate(created.NextPaymentDate))
	return nil
}

// RunPay records one manual payment.
func RunPay(ctx context.Context, r *bnplsvc.Reconciler, w io.Writer, id string) error {
	res, err := r.Pay(ctx, id)
	if err != nil {
		return err
	}
	if res.Completed {
		fmt.Fprintf(w, "Plan %s is now paid off.\n", id)
		return nil
	}
	fmt.Fprintf(w, "Payment recorded for %s: %d remaining, next payment %s\n",
		id, res.Plan.InstalmentsRemaining, dateutils.ToISODate(res.Plan.NextPaymentDate))
	return nil
}

// RunReconcile advances every overdue plan.
func RunReconcile(ctx context.Context, r *bnplsvc.Reconciler, w io.Writer, today time.Time) error {
	summary, err := r.ReconcileAll(ctx, today)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Checked %d plans: %d advanced, %d instalments consumed, %d completed\n",
		summary.Checked, summary.Advanced, summary.Consumed, len(summary.Completed))
	for _, id := range summary.Completed {
		fmt.Fprintf(w, "  completed: %s\n", id)
	}
	return nil
}
