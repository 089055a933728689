package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/internal/server"
)

func serveCmd(c *cli) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console shell and history bridge",
		Long: `Serve the console over HTTP.

Every path returns the console shell with its initial title. Tabs
connect to the history bridge at /_nav/ws and get one navigation
session each. Prometheus metrics are served at /metrics when
metrics.enabled is set.

Examples:
  navcore serve
  navcore serve --address :9090
  NAVCORE_ROUTES_BASE=/console navcore serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				c.cfg.Server.Address = address
			}
			a, err := c.bootstrap(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printBanner(cmd, a.Config.Server.Address)
			if err := server.New(a).Run(ctx); err != nil {
				return errors.New(errors.CodeServer).
					WithSubject(a.Config.Server.Address).
					Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default server.address)")

	return cmd
}

func printBanner(cmd *cobra.Command, address string) {
	w := cmd.OutOrStdout()
	w.Write([]byte(banner))
	success(w, "serving on %s", address)
	info(w, "bridge:  %s", server.BridgePath)
	info(w, "metrics: %s", server.MetricsPath)
}

