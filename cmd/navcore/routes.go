package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/app"
)

func routesCmd(c *cli) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table in priority order",
		Long: `List every route in the order it is matched, with its view, name,
access level and title.

Examples:
  navcore routes
  navcore routes --lang zh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if lang == "" {
				lang = a.Config.I18n.Lang
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPATH\tVIEW\tNAME\tACCESS\tTITLE")
			for i, p := range a.Table.Patterns() {
				access := p.Meta[app.MetaAccess]
				if access == "" {
					access = "-"
				}
				name := p.Name
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					i, p.Raw, p.ViewID, name, access, a.Titles.Title(p.Name, lang))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Title language (default i18n.lang)")

	return cmd
}
