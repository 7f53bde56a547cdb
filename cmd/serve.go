package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
	"github.com/ginjaninja78/funding-dashboard/internal/server"
)

var serveAddr string

// serveCmd loads the dataset once and serves dashboards over HTTP until
// interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP",
	Long: `The serve command loads the dataset once and exposes it to an interactive
front end. Each POST /api/dashboard request carries a selection and receives
freshly computed views. GET /api/options lists the values for the filter
widgets and GET /metrics exposes Prometheus metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveAddr != "" {
		a.cfg.Server.Addr = serveAddr
	}

	opts, err := dashboard.OptionsFromConfig(a.cfg.Dashboard)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(a.dataset, a.cfg.Server, opts, a.logger).Run(ctx)
}
