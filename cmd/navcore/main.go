package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┐┌┌─┐┬  ┬┌─┐┌─┐┬─┐┌─┐
  │││├─┤└┐┌┘│  │ │├┬┘├┤
  ┘└┘┴ ┴ └┘ └─┘└─┘┴└─└─┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries state shared by every command.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "navcore",
		Short: "Route resolution and navigation for the console",
		Long: `navcore resolves browser paths against an ordered route table and
drives navigation for connected tabs.

Routes come from the built-in console table or from a JSON/TOML
manifest (local or s3://bucket/key). Use it to:

  • check a route table and its views before deploying
  • resolve a path the way a tab would
  • serve the console shell and its history bridge`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Configuration file (default $NAVCORE_CONFIG or ./navcore.toml)")

	root.AddCommand(
		checkCmd(c),
		resolveCmd(c),
		routesCmd(c),
		serveCmd(c),
		versionCmd(),
	)
	return root
}

// load reads configuration and installs the configured logger.
func (c *cli) load(logOut io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = cfg.Logger(logOut)
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) bootstrap(ctx context.Context, opts ...app.Option) (*app.App, error) {
	opts = append([]app.Option{app.WithLogger(c.logger.With("component", "app"))}, opts...)
	return app.Bootstrap(ctx, c.cfg, opts...)
}

func usageError(format string, args ...any) error {
	return errors.New(errors.CodeUsage).Wrap(fmt.Errorf(format, args...))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
