package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/errors"
)

func checkCmd(c *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration, route table and views",
		Long: `Load the configuration and the route table, then verify that every
pattern compiles, route names are unique and every view has a handler.

Routes that an earlier route always beats are reported as warnings
(N007); with --strict they fail the check.

Examples:
  navcore check
  navcore check --config deploy/navcore.toml --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			shadowed := a.Table.Shadowed()
			for _, s := range shadowed {
				ne := errors.New(errors.CodeShadowedRoute).WithSubject(s.Pattern.Raw)
				warn(w, "%s: %s", ne.Code, s.String())
			}
			if strict && len(shadowed) > 0 {
				return errors.New(errors.CodeShadowedRoute).
					WithSubject(a.Table.Patterns()[shadowed[0].Index].Raw).
					Wrap(fmt.Errorf("%d unreachable route(s)", len(shadowed)))
			}

			success(w, "%d routes, %d views", a.Table.Len(), len(a.Views.IDs()))
			if p := a.Config.Path(); p != "" {
				info(w, "config:    %s", p)
			}
			source := a.Config.Routes.Manifest
			if source == "" {
				source = "built-in"
			}
			info(w, "routes:    %s", source)
			info(w, "not found: %s", a.Config.Routes.NotFoundView)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat unreachable routes as errors")

	return cmd
}
