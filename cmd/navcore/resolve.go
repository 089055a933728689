package main

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/pkg/nav"
	"github.com/vango-dev/navcore/pkg/routepath"
)

type resolveOutput struct {
	Path    string            `json:"path"`
	View    string            `json:"view"`
	Name    string            `json:"name,omitempty"`
	Params  map[string]string `json:"params"`
	Query   string            `json:"query,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
	Title   string            `json:"title"`
	Outcome string            `json:"outcome"`
	Reason  string            `json:"reason,omitempty"`
}

func resolveCmd(c *cli) *cobra.Command {
	var (
		role   string
		lang   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path the way a tab would",
		Long: `Navigate to a path with the application's guards and print the route
that commits: its view, parameters and title.

Guards see the role given with --role (default auth.role), so an
admin-only path resolves to the login page for a guest.

Examples:
  navcore resolve /app/edit/42
  navcore resolve /admin/userManage --role admin
  navcore resolve /user/login --lang zh --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := routepath.ValidateNavPath(path); err != nil {
				return usageError("%v", err)
			}

			var opts []app.Option
			if role != "" {
				r, err := app.ParseRole(role)
				if err != nil {
					return usageError("--role: %v", err)
				}
				opts = append(opts, app.WithAuthorizer(app.StaticAuthorizer{Role: r}))
			}
			a, err := c.bootstrap(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			ctrl, err := a.NewController(nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			if err := ctrl.Start(cmd.Context()); err != nil {
				return err
			}

			route, navErr := ctrl.Navigate(cmd.Context(), path)
			out := resolveOutput{
				Path:    route.Path,
				View:    route.ViewID,
				Name:    route.Name,
				Params:  route.Params,
				Query:   route.Query,
				Meta:    route.Meta,
				Outcome: nav.OutcomeOf(navErr).String(),
			}
			if navErr != nil {
				out.Reason = navErr.Error()
			}
			if lang == "" {
				lang = a.Config.I18n.Lang
			}
			out.Title = a.Titles.RouteTitle(route, a.Config.Routes.NotFoundView, lang)

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			switch out.Outcome {
			case nav.OutcomeCommitted.String():
				success(w, "%s → %s", path, out.View)
			default:
				warn(w, "%s → %s (%s)", path, out.View, out.Outcome)
			}
			if out.Path != path {
				info(w, "path:   %s", out.Path)
			}
			if out.Name != "" {
				info(w, "name:   %s", out.Name)
			}
			info(w, "title:  %s", out.Title)
			for _, k := range sortedKeys(out.Params) {
				info(w, "param:  %s = %s", k, out.Params[k])
			}
			if out.Query != "" {
				info(w, "query:  %s", out.Query)
			}
			for _, k := range sortedKeys(out.Meta) {
				info(w, "meta:   %s = %s", k, out.Meta[k])
			}
			if out.Reason != "" {
				info(w, "reason: %s", out.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role the guards see: guest, user or admin")
	cmd.Flags().StringVar(&lang, "lang", "", "Title language (default i18n.lang)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
