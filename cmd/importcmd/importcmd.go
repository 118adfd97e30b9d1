// Package importcmd implements the import commands for seed files and
// transaction exports
package importcmd

import (
	"context"
	"fmt"
	"io"

	"fjacquet/paycycle/cmd/root"
	"fjacquet/paycycle/internal/extractor"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/obligations"
	"fjacquet/paycycle/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import obligations or transactions into the store",
	Long: `Import a YAML seed of balance, incomes, bills, BNPL plans and credit cards,
or a CSV export of bank transactions used for anomaly detection.`,
}

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Import a YAML seed file (default: seed.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		file := "seed.yaml"
		if len(args) == 1 {
			file = args[0]
		}
		return RunSeed(cmd.Context(), c.GetStore(), c.GetConfig().MinimumPaymentPolicy(), cmd.OutOrStdout(), file, c.GetLogger())
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions <file.csv>",
	Short: "Import transactions from a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		return RunTransactions(cmd.Context(), c.GetStore(), c.GetExtractor(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	Cmd.AddCommand(seedCmd, transactionsCmd)
}

// RunSeed locates, parses and imports a seed file.
func RunSeed(ctx context.Context, repo store.Repository, policy obligations.MinimumPaymentPolicy, w io.Writer, file string, logger logging.Logger) error {
	path, err := store.FindSeedFile(file)
	if err != nil {
		return fmt.Errorf("seed file %s not found: %w", file, err)
	}
	seed, err := store.LoadSeed(path)
	if err != nil {
		return err
	}

	summary, err := store.ImportSeed(ctx, repo, seed, policy, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %s: %d incomes, %d expenses, %d BNPL plans, %d credit cards",
		path, summary.Incomes, summary.Expenses, summary.BnplPlans, summary.CreditCards)
	if summary.BalanceSet {
		fmt.Fprint(w, ", balance set")
	}
	fmt.Fprintln(w)
	return nil
}

// RunTransactions extracts transactions from path and stores them.
func RunTransactions(ctx context.Context, repo store.Repository, ex extractor.DocumentExtractor, w io.Writer, path string) error {
	txns, err := extractor.ExtractFile(ctx, ex, path)
	if err != nil {
		return err
	}
	n, err := repo.CreateTransactions(ctx, txns)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %d transactions from %s\n", n, path)
	return nil
}
