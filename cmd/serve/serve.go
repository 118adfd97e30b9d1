// Package serve implements the serve command
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/paycycle/cmd/root"
	"fjacquet/paycycle/internal/api"
	"fjacquet/paycycle/internal/container"
	"fjacquet/paycycle/internal/logging"

	"github.com/spf13/cobra"
)

// Options holds the command flags.
type Options struct {
	Address     string
	NoScheduler bool
}

var opts Options

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled BNPL reconciliation",
	Long: `Serve the forecasting API over HTTP and reconcile BNPL plans on the configured
cron schedule until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.MustContainer()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, c, opts)
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Address, "addr", "a", "", "Listen address (default: api.address)")
	Cmd.Flags().BoolVar(&opts.NoScheduler, "no-scheduler", false, "Do not run scheduled reconciliation")
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, c *container.Container, o Options) error {
	logger := c.GetLogger()
	addr := o.Address
	if addr == "" {
		addr = c.GetConfig().API.Address
	}

	if !o.NoScheduler {
		sched := c.GetScheduler()
		// Catch up once at startup so plans are current before the first tick.
		if _, err := sched.RunOnce(ctx); err != nil {
			logger.WithError(err).Warn("Startup reconciliation failed")
		}
		sched.Start()
		defer func() {
			<-sched.Stop().Done()
			logger.Info("Scheduler stopped")
		}()
	}

	err := api.Serve(ctx, addr, c.HTTPHandler(), logger)
	if err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return err
	}
	logger.Info("Server stopped", logging.F("address", addr))
	return nil
}
