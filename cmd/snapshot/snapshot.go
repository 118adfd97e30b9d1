// Package snapshot implements the snapshot command
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/paycycle/cmd/common"
	"fjacquet/paycycle/cmd/root"
	"fjacquet/paycycle/internal/advisor"
	snap "fjacquet/paycycle/internal/snapshot"

	"github.com/spf13/cobra"
)

// Options holds the command flags.
type Options struct {
	Today   string
	Format  string
	Output  string
	Advise  bool
	Request string
}

var opts Options

// Cmd represents the snapshot command
var Cmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print a financial snapshot, optionally with AI advice",
	Long: `Assemble balance, safe-to-spend, monthly obligations, BNPL plans and spending
anomalies into one snapshot. With --advise the snapshot is sent to the
configured AI model and its answer is printed after it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c.GetSnapshotBuilder(), c.GetRenderer(), c.GetAdvisor(), cmd.OutOrStdout(), opts, time.Now())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Today, "today", "t", "", "Build the snapshot as of this date (YYYY-MM-DD)")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", snap.FormatText, "Output format (text, json, yaml)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to this file instead of stdout")
	Cmd.Flags().BoolVar(&opts.Advise, "advise", false, "Ask the AI model for advice on the snapshot")
	Cmd.Flags().StringVar(&opts.Request, "request", "", "Question to ask with --advise")
}

// Run builds, renders and optionally sends the snapshot for advice.
func Run(ctx context.Context, b *snap.Builder, r *snap.Renderer, adv advisor.Advisor, w io.Writer, o Options, now time.Time) error {
	today, err := common.ParseToday(o.Today, now)
	if err != nil {
		return err
	}

	s, err := b.Build(ctx, today)
	if err != nil {
		return err
	}
	out, err := r.Render(s, o.Format)
	if err != nil {
		return err
	}

	if o.Advise {
		advice, err := adv.Advise(ctx, s, o.Request)
		if errors.Is(err, advisor.ErrDisabled) {
			return fmt.Errorf("--advise requires ai.enabled and GEMINI_API_KEY")
		}
		if err != nil {
			return err
		}
		out = append(out, []byte("\nAdvice:\n"+advice+"\n")...)
	}
	return common.WriteOutput(w, o.Output, out)
}
